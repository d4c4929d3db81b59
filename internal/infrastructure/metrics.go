package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ExportMetrics counts delivered and empty exports per format
type ExportMetrics struct {
	exports metric.Int64Counter
	rows    metric.Int64Counter
	empty   metric.Int64Counter
}

// NewExportMetrics creates the export instruments on meter
func NewExportMetrics(meter metric.Meter) (*ExportMetrics, error) {
	exports, err := meter.Int64Counter(
		"campkit_exports_total",
		metric.WithDescription("Total number of delivered exports"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"campkit_export_rows_total",
		metric.WithDescription("Total number of records written by exports"),
	)
	if err != nil {
		return nil, err
	}

	empty, err := meter.Int64Counter(
		"campkit_empty_exports_total",
		metric.WithDescription("Total number of exports skipped for lack of data"),
	)
	if err != nil {
		return nil, err
	}

	return &ExportMetrics{exports: exports, rows: rows, empty: empty}, nil
}

// RecordExport counts one delivered export of rows records
func (m *ExportMetrics) RecordExport(ctx context.Context, format string, rows int) {
	attrs := metric.WithAttributes(attribute.String("format", format))
	m.exports.Add(ctx, 1, attrs)
	m.rows.Add(ctx, int64(rows), attrs)
}

// RecordEmptyExport counts one export skipped because there was no data
func (m *ExportMetrics) RecordEmptyExport(ctx context.Context, format string) {
	m.empty.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// HTTPMetrics holds request instruments used by the HTTP middleware
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter(
		"campkit_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"campkit_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"campkit_http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration, active: active}, nil
}

// Started marks a request in flight
func (m *HTTPMetrics) Started(ctx context.Context) { m.active.Add(ctx, 1) }

// Finished records a completed request
func (m *HTTPMetrics) Finished(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	m.active.Add(ctx, -1)
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
