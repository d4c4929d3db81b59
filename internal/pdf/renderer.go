// Package pdf prints HTML pages to PDF with a headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// UnavailableMessage is shown to users when PDF generation is switched off
const UnavailableMessage = "Fonctionnalité de génération PDF en développement"

// ErrUnavailable is returned by a disabled renderer
var ErrUnavailable = errors.New("pdf rendering unavailable")

const (
	DefaultFilename = "document.pdf"
	MIMEType        = "application/pdf"

	defaultTimeout = 30 * time.Second

	// A4 in inches
	a4Width  = 8.27
	a4Height = 11.69
)

// Renderer turns an HTML document into PDF bytes
type Renderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// Config controls the Chrome renderer
type Config struct {
	Enabled  bool
	Timeout  time.Duration
	ExecPath string
	Headless bool
}

// New returns a Chrome renderer, or a disabled one when cfg.Enabled is false
func New(cfg Config, logger *slog.Logger) Renderer {
	if !cfg.Enabled {
		return Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &ChromeRenderer{cfg: cfg, logger: logger.With(slog.String("component", "pdf"))}
}

// Disabled refuses every render
type Disabled struct{}

// Render always fails with ErrUnavailable
func (Disabled) Render(context.Context, []byte) ([]byte, error) {
	return nil, ErrUnavailable
}

// ChromeRenderer starts a browser per render and prints the page on A4
type ChromeRenderer struct {
	cfg    Config
	logger *slog.Logger
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.DisableGPU,
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	return opts
}

// Render loads html into a blank tab and prints it
func (r *ChromeRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer cancelTimeout()

	var out []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to print page: %w", err)
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "pdf rendering failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	r.logger.InfoContext(ctx, "pdf rendered",
		slog.Int("html_bytes", len(html)),
		slog.Int("pdf_bytes", len(out)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}
