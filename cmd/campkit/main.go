package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"campkit/internal/app"
	"campkit/internal/config"
	"campkit/internal/infrastructure"
)

// cli carries state shared by every subcommand
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Camp-management front-end companion",
		Long: `campkit serves the camp-management front-end helpers: CSV and XLSX
exports, capacity badges, printable pages and PDFs, locale formatting,
notifications and debounced search over a websocket.

The subcommands run the same operations offline against local files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.yaml (defaults to CAMPKIT_CONFIG or ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.exportCmd(),
		c.capacityCmd(),
		c.printCmd(),
		c.versionCmd(),
	)
	return root
}

// init loads the configuration and a logger writing to stderr
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	c.cfg = cfg
	c.logger = infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(c.cfg, c.logger, nil)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("application error: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}
}
