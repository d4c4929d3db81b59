package services

import (
	"context"
	"fmt"
	"log/slog"

	"campkit/internal/pdf"
	"campkit/internal/view"
)

// PrintService builds printable pages and PDFs from HTML fragments
type PrintService struct {
	printer  *view.Printer
	renderer pdf.Renderer
	logger   *slog.Logger
}

// NewPrintService creates a PrintService
func NewPrintService(printer *view.Printer, renderer pdf.Renderer, logger *slog.Logger) *PrintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintService{
		printer:  printer,
		renderer: renderer,
		logger:   logger.With(slog.String("service", "print")),
	}
}

// Page wraps fragment into a page that prints itself when opened
func (s *PrintService) Page(ctx context.Context, fragment, title string) ([]byte, error) {
	page, err := s.printer.Page(fragment, view.PrintOptions{Title: title, AutoPrint: true})
	if err != nil {
		return nil, fmt.Errorf("failed to build print page: %w", err)
	}
	s.logger.DebugContext(ctx, "print page built", slog.Int("bytes", len(page)))
	return page, nil
}

// PDF renders fragment to a PDF document. A disabled renderer yields
// pdf.ErrUnavailable.
func (s *PrintService) PDF(ctx context.Context, fragment, title string) ([]byte, error) {
	page, err := s.printer.Page(fragment, view.PrintOptions{Title: title})
	if err != nil {
		return nil, fmt.Errorf("failed to build print page: %w", err)
	}

	doc, err := s.renderer.Render(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	s.logger.InfoContext(ctx, "pdf rendered", slog.Int("bytes", len(doc)))
	return doc, nil
}
