// Package services holds the operations shared by the HTTP handlers and the
// command line: choosing an exporter for a format, turning HTML fragments
// into printable pages or PDFs, and reporting service health.
//
// Services take their collaborators through constructors and log through
// an injected *slog.Logger:
//
//	exports := services.NewExportService(logger, exporter.NewCSV(logger), exporter.NewXLSX(logger))
//	err := exports.Export(ctx, "csv", records, exporter.NewResponseSink(w), "")
package services
