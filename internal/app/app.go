package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"campkit/internal/backend"
	"campkit/internal/config"
	apierrors "campkit/internal/errors"
	"campkit/internal/exporter"
	"campkit/internal/format"
	"campkit/internal/infrastructure"
	customMiddleware "campkit/internal/middleware"
	"campkit/internal/notify"
	"campkit/internal/pdf"
	"campkit/internal/search"
	"campkit/internal/services"
	handlers "campkit/internal/transport/http"
	"campkit/internal/view"
	ws "campkit/internal/websocket"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	WebSocketHub  *ws.Hub
	Backend       *backend.Client
	Notifications *notify.Center
	Services      *ServiceContainer

	errorHandler *apierrors.ErrorHandler
	validator    *customMiddleware.Validator
	upgrader     *websocket.Upgrader
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Export    *services.ExportService
	Print     *services.PrintService
	Health    *services.HealthService
	Formatter *format.Formatter
}

// NewApplication loads the configuration at configPath (empty for the
// default lookup) and builds the application.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, providers)
}

// New wires every component from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if providers == nil {
		var err error
		if providers, err = infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger); err != nil {
			return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
		validator:     customMiddleware.NewValidator(),
		upgrader:      ws.NewUpgrader(cfg.Security.AllowedOrigins),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	cfg := a.Config

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Logger,
		ws.WithMetrics(wsMetrics),
		ws.WithSessions(search.Sessions(cfg.Search.Debounce, a.Logger)))

	a.Notifications = notify.NewCenter(a.WebSocketHub, cfg.Notify.AutoHide, a.Logger)

	a.Backend, err = backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	exportMetrics, err := infrastructure.NewExportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create export metrics: %w", err)
	}
	csvExporter := exporter.NewCSV(a.Logger,
		exporter.WithRecorder(exportMetrics),
		exporter.WithDefaultFilename(cfg.Export.CSVFilename),
		exporter.WithBOM(cfg.Export.BOM))
	xlsxExporter := exporter.NewXLSX(a.Logger,
		exporter.WithRecorder(exportMetrics),
		exporter.WithDefaultFilename(cfg.Export.XLSXFilename))

	formatter, err := format.New(cfg.Locale.Language, cfg.Locale.Currency, cfg.Locale.Location())
	if err != nil {
		return fmt.Errorf("failed to create formatter: %w", err)
	}

	renderer := pdf.New(pdf.Config{
		Enabled:  cfg.PDF.Enabled,
		Timeout:  cfg.PDF.Timeout,
		ExecPath: cfg.PDF.ExecPath,
		Headless: true,
	}, a.Logger)

	a.Services = &ServiceContainer{
		Export:    services.NewExportService(a.Logger, csvExporter, xlsxExporter),
		Print:     services.NewPrintService(view.NewPrinter(""), renderer, a.Logger),
		Formatter: formatter,
		Health: services.NewHealthService(services.HealthOptions{
			Version:      config.AppVersion,
			DownloadsDir: cfg.Export.DownloadsDir,
			PDFEnabled:   cfg.PDF.Enabled,
		}, a.WebSocketHub, a.Logger),
	}

	return nil
}

// setupRouter configures middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// These don't wrap the ResponseWriter, so they are safe for /ws
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.HandleFunc("/ws", a.handleWebSocket)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recovery → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedHeaders: []string{"Content-Type", "X-Request-ID", customMiddleware.CSRFHeader},
				ExposedHeaders: []string{"Content-Disposition", "X-Request-ID", customMiddleware.CSRFHeader},
				MaxAge:         300,
			}))
		}

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
		}

		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		}

		if a.Config.Security.EnableCSRF {
			r.Use(customMiddleware.CSRF([]byte(a.Config.Security.CSRFKey), true,
				a.Config.Security.AllowedOrigins, a.errorHandler, a.Logger))
			r.Use(customMiddleware.CSRFToken)
		}

		a.setupAPIRoutes(r)
		a.setupStaticRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	export := handlers.NewExportHandler(a.Services.Export, a.validator, a.Logger, a.errorHandler)
	capacity := handlers.NewCapacityHandler(a.Backend, a.Logger, a.errorHandler)
	printing := handlers.NewPrintHandler(a.Services.Print, a.validator, a.Logger, a.errorHandler)
	notifications := handlers.NewNotificationHandler(a.Notifications, a.validator, a.Logger, a.errorHandler)
	formatting := handlers.NewFormatHandler(a.Services.Formatter, a.validator, a.Logger, a.errorHandler)
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	clientLog := handlers.NewClientLogHandler(a.validator, a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/export", export.Routes())
		r.Mount("/activities", capacity.Routes())
		r.Mount("/notifications", notifications.Routes())
		r.Mount("/format", formatting.Routes())
		r.Mount("/health", health.Routes())
		r.Post("/print", printing.Print)
		r.Post("/pdf", printing.PDF)
		r.Get("/version", health.Version)
		r.Post("/logs", clientLog.Handle)
	})
}

// setupStaticRoutes serves the page assets, including the print stylesheet
func (a *Application) setupStaticRoutes(r chi.Router) {
	if a.Config.Server.StaticDir == "" {
		return
	}
	r.Route("/static", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Handle("/*", http.StripPrefix("/static", http.FileServer(http.Dir(a.Config.Server.StaticDir))))
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// handleWebSocket upgrades browsers to the notification and search channel
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		a.errorHandler.HandleError(w, r, apierrors.ErrWebSocketUpgrade)
		return
	}
	ws.ServeWS(a.WebSocketHub, a.upgrader, w, r)
}

// Run serves HTTP and the websocket hub until ctx is cancelled, then shuts
// both down.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("backend", a.Config.Backend.BaseURL),
		slog.Bool("pdf_enabled", a.Config.PDF.Enabled),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.WebSocketHub.Run(gctx)
	})

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Notifications.Close()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}
