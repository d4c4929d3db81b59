package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"campkit/internal/exporter"
	"campkit/internal/record"
	"campkit/internal/services"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		in       string
		outDir   string
		filename string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a JSON array of records to CSV or XLSX",
		Long: `Reads a JSON array of flat objects and saves it as a spreadsheet.

Headers come from the keys of the first record. An empty array saves
nothing.

Example:
  campkit export --in participants.json --format csv --name participants.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			rs, err := record.Decode(data)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = c.cfg.Export.DownloadsDir
			}
			sink, err := exporter.NewDirSink(outDir)
			if err != nil {
				return err
			}

			svc := services.NewExportService(c.logger,
				exporter.NewCSV(c.logger,
					exporter.WithDefaultFilename(c.cfg.Export.CSVFilename),
					exporter.WithBOM(c.cfg.Export.BOM)),
				exporter.NewXLSX(c.logger,
					exporter.WithDefaultFilename(c.cfg.Export.XLSXFilename)))

			if err := svc.Export(cmd.Context(), format, rs, sink, filename); err != nil {
				return err
			}

			saved := sink.Saved()
			if len(saved) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}
			for _, p := range saved {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "-", "input JSON file, - for stdin")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (defaults to export.downloads_dir)")
	cmd.Flags().StringVarP(&filename, "name", "n", "", "output file name")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	return cmd
}

// readInput reads path, or the command's stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
