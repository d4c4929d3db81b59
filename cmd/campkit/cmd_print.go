package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campkit/internal/pdf"
	"campkit/internal/services"
	"campkit/internal/view"
)

func (c *cli) printCmd() *cobra.Command {
	var (
		in     string
		out    string
		title  string
		asPDF  bool
		styles string
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Wrap an HTML fragment into a printable page or a PDF",
		Long: `Sanitizes an HTML fragment and wraps it into a standalone printable
document. With --pdf the document is rendered through headless Chrome,
which must be enabled with pdf.enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment, err := readInput(cmd, in)
			if err != nil {
				return err
			}

			renderer := pdf.New(pdf.Config{
				Enabled:  c.cfg.PDF.Enabled,
				Timeout:  c.cfg.PDF.Timeout,
				ExecPath: c.cfg.PDF.ExecPath,
				Headless: true,
			}, c.logger)
			svc := services.NewPrintService(view.NewPrinter(styles), renderer, c.logger)

			var doc []byte
			if asPDF {
				doc, err = svc.PDF(cmd.Context(), string(fragment), title)
			} else {
				doc, err = svc.Page(cmd.Context(), string(fragment), title)
			}
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "-", "HTML fragment file, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().BoolVar(&asPDF, "pdf", false, "render a PDF instead of an HTML page")
	cmd.Flags().StringVar(&styles, "stylesheet", "", "stylesheet linked from the page")
	return cmd
}
