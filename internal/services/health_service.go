package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
	Done() <-chan struct{}
}

// HealthService provides health check functionality
type HealthService struct {
	version      string
	hub          ClientCounter
	downloadsDir string
	pdfEnabled   bool
	startTime    time.Time
	logger       *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// HealthOptions describes what the readiness check looks at
type HealthOptions struct {
	Version      string
	DownloadsDir string
	PDFEnabled   bool
}

// NewHealthService creates a new health service
func NewHealthService(opts HealthOptions, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:      opts.Version,
		hub:          hub,
		downloadsDir: opts.DownloadsDir,
		pdfEnabled:   opts.PDFEnabled,
		startTime:    time.Now(),
		logger:       logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]interface{}{},
	}
	if hs.hub != nil {
		status.Services["websocket_clients"] = hs.hub.ClientCount()
	}
	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"websocket": hs.checkWebSocketHealth(),
			"downloads": hs.checkDownloadsHealth(),
			"pdf":       hs.checkPDFHealth(),
		},
	}

	for name, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == "not_ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "service not ready",
				slog.String("name", name),
				slog.String("message", sh.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "not_ready", Message: "websocket hub not initialized"}
	}
	select {
	case <-hs.hub.Done():
		return ServiceHealth{Status: "not_ready", Message: "websocket hub stopped"}
	default:
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkDownloadsHealth() ServiceHealth {
	if hs.downloadsDir == "" {
		return ServiceHealth{Status: "ready", Message: "server-side downloads disabled"}
	}
	info, err := os.Stat(hs.downloadsDir)
	switch {
	case os.IsNotExist(err):
		// created on first save
		return ServiceHealth{Status: "ready", Message: "downloads directory not created yet"}
	case err != nil:
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("cannot access downloads directory: %v", err)}
	case !info.IsDir():
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s is not a directory", hs.downloadsDir)}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkPDFHealth() ServiceHealth {
	if !hs.pdfEnabled {
		return ServiceHealth{Status: "disabled"}
	}
	return ServiceHealth{Status: "ready"}
}
