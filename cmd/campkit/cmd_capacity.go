package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"campkit/internal/backend"
	"campkit/internal/view"
)

func (c *cli) capacityCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "capacity [activity-id]",
		Short: "Show the capacity badge text for an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid activity id %q", args[0])
			}

			if baseURL == "" {
				baseURL = c.cfg.Backend.BaseURL
			}
			client, err := backend.NewClient(backend.Config{
				BaseURL: baseURL,
				Timeout: c.cfg.Backend.Timeout,
			}, c.logger)
			if err != nil {
				return err
			}

			text := view.BadgeText(client.CheckCapacity(cmd.Context(), id))
			if text == "" {
				text = "unavailable"
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "backend", "", "backend base URL (defaults to backend.base_url)")
	return cmd
}
