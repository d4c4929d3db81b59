package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrHubClosed is returned once the hub has stopped
var ErrHubClosed = errors.New("websocket hub closed")

// ErrClientNotFound is returned when sending to an unknown client
var ErrClientNotFound = errors.New("websocket client not found")

// Session holds per-client state fed by the client's inbound messages
type Session interface {
	Handle(ctx context.Context, msg Inbound)
	Close()
}

// SessionFactory creates the session of a newly connected client
type SessionFactory func(c *Client) Session

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics sets the hub metrics
func WithMetrics(m Metrics) HubOption {
	return func(h *Hub) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithSessions sets the per-client session factory
func WithSessions(f SessionFactory) HubOption {
	return func(h *Hub) { h.sessions = f }
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu     sync.RWMutex
	logger *slog.Logger

	metrics  Metrics
	sessions SessionFactory

	done     chan struct{}
	doneOnce sync.Once
}

// NewHub creates a hub; call Run to start it
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    nopMetrics{},
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves register, unregister and broadcast requests until ctx ends,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			h.metrics.ClientConnected(ctx, count)

			client.SendJSON(newEnvelope(TypeConnection, map[string]any{
				"status":    "connected",
				"client_id": client.id,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			delete(h.clients, client)
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				client.closeSend()
				h.logger.Info("Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
				h.metrics.ClientDisconnected(ctx, count, time.Since(client.connectedAt))
			}

		case message := <-h.broadcast:
			h.fanOut(ctx, message)
		}
	}
}

func (h *Hub) fanOut(ctx context.Context, message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, client := range clients {
		if client.enqueue(message) {
			delivered++
			continue
		}
		dropped++
		// slow consumer
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		client.closeSend()
		h.logger.Warn("Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
	}

	h.logger.Debug("Broadcasting message to clients",
		slog.Int("client_count", len(clients)),
		slog.Int("message_size", len(message)))
	h.metrics.Broadcast(ctx, delivered, dropped)
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} { return h.done }

// Broadcast marshals v and queues it for every connected client
func (h *Hub) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}
	// the buffered send stays ready after Run exits
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// SendTo marshals v and queues it for a single client
func (h *Hub) SendTo(clientID string, v any) error {
	c, ok := h.Client(clientID)
	if !ok {
		return ErrClientNotFound
	}
	return c.SendJSON(v)
}

// Client looks up a connected client by id
func (h *Hub) Client(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Attach wraps conn in a client, registers it and starts its pumps
func (h *Hub) Attach(conn Connection) (*Client, error) {
	c := newClient(h, conn, h.logger)
	if h.sessions != nil {
		c.session = h.sessions(c)
	}

	select {
	case <-h.done:
		h.abandon(c)
		return nil, ErrHubClosed
	default:
	}
	select {
	case h.register <- c:
	case <-h.done:
		h.abandon(c)
		return nil, ErrHubClosed
	}

	go c.WritePump()
	go c.ReadPump()
	return c, nil
}

// abandon releases a client that never registered
func (h *Hub) abandon(c *Client) {
	if c.session != nil {
		c.session.Close()
	}
	c.conn.Close()
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
