package http

import (
	"context"

	"campkit/internal/backend"
	"campkit/internal/exporter"
	"campkit/internal/record"
	"campkit/internal/services"
)

// ExportService sends record sets through a download sink
type ExportService interface {
	Export(ctx context.Context, format string, rs record.RecordSet, sink exporter.DownloadSink, filename string) error
}

// CapacityChecker looks up an activity's occupancy
type CapacityChecker interface {
	CheckCapacity(ctx context.Context, activityID int) *backend.Capacity
}

// PrintService builds printable pages and PDFs
type PrintService interface {
	Page(ctx context.Context, fragment, title string) ([]byte, error)
	PDF(ctx context.Context, fragment, title string) ([]byte, error)
}

// NotificationCenter shows and hides page notifications
type NotificationCenter interface {
	Show(ctx context.Context, id string) error
	Hide(ctx context.Context, id string) error
}

// HealthService reports service health
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
