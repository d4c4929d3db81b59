package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"campkit/internal/exporter"
	"campkit/internal/record"
)

// ErrUnknownFormat is returned for an export format with no exporter
var ErrUnknownFormat = errors.New("unknown export format")

// ExportService routes record sets to the exporter for a format
type ExportService struct {
	exporters map[string]*exporter.Exporter
	logger    *slog.Logger
}

// NewExportService registers exporters under their format names
func NewExportService(logger *slog.Logger, exporters ...*exporter.Exporter) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ExportService{
		exporters: make(map[string]*exporter.Exporter, len(exporters)),
		logger:    logger.With(slog.String("service", "export")),
	}
	for _, e := range exporters {
		s.exporters[e.Format()] = e
	}
	return s
}

// Formats lists the registered format names
func (s *ExportService) Formats() []string {
	out := make([]string, 0, len(s.exporters))
	for f := range s.exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Export sends rs through sink using the exporter for format. Empty sets
// are a logged no-op.
func (s *ExportService) Export(ctx context.Context, format string, rs record.RecordSet, sink exporter.DownloadSink, filename string) error {
	e, ok := s.exporters[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if filename != "" {
		filename = exporter.SanitizeFilename(filename, "")
	}

	s.logger.DebugContext(ctx, "export requested",
		slog.String("format", e.Format()),
		slog.Int("records", len(rs)),
		slog.String("filename", filename))

	return e.Export(ctx, rs, sink, filename)
}
