package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics receives hub events
type Metrics interface {
	ClientConnected(ctx context.Context, active int)
	ClientDisconnected(ctx context.Context, active int, connected time.Duration)
	Broadcast(ctx context.Context, delivered, dropped int)
}

type nopMetrics struct{}

func (nopMetrics) ClientConnected(context.Context, int)                   {}
func (nopMetrics) ClientDisconnected(context.Context, int, time.Duration) {}
func (nopMetrics) Broadcast(context.Context, int, int)                    {}

// OTelMetrics records hub events as OpenTelemetry instruments
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	clientCount        metric.Int64Gauge
	connectionDuration metric.Float64Histogram
	messagesTotal      metric.Int64Counter
	droppedMessages    metric.Int64Counter
}

// NewOTelMetrics creates the websocket instruments on meter
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	connectionsTotal, err := meter.Int64Counter(
		"campkit_websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	)
	if err != nil {
		return nil, err
	}

	clientCount, err := meter.Int64Gauge(
		"campkit_websocket_clients",
		metric.WithDescription("Number of connected WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	connectionDuration, err := meter.Float64Histogram(
		"campkit_websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	messagesTotal, err := meter.Int64Counter(
		"campkit_websocket_messages_total",
		metric.WithDescription("Messages queued for WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	droppedMessages, err := meter.Int64Counter(
		"campkit_websocket_dropped_messages_total",
		metric.WithDescription("Messages dropped because a client was too slow"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelMetrics{
		connectionsTotal:   connectionsTotal,
		clientCount:        clientCount,
		connectionDuration: connectionDuration,
		messagesTotal:      messagesTotal,
		droppedMessages:    droppedMessages,
	}, nil
}

func (m *OTelMetrics) ClientConnected(ctx context.Context, active int) {
	m.connectionsTotal.Add(ctx, 1)
	m.clientCount.Record(ctx, int64(active))
}

func (m *OTelMetrics) ClientDisconnected(ctx context.Context, active int, connected time.Duration) {
	m.clientCount.Record(ctx, int64(active))
	m.connectionDuration.Record(ctx, connected.Seconds())
}

func (m *OTelMetrics) Broadcast(ctx context.Context, delivered, dropped int) {
	m.messagesTotal.Add(ctx, int64(delivered), metric.WithAttributes(attribute.String("kind", "broadcast")))
	if dropped > 0 {
		m.droppedMessages.Add(ctx, int64(dropped))
	}
}
