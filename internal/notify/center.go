// Package notify shows and hides page notifications across connected
// browsers, hiding them again automatically after a delay.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"campkit/internal/debounce"
	"campkit/internal/websocket"
)

// DefaultAutoHide is how long a notification stays visible
const DefaultAutoHide = 5 * time.Second

// ErrEmptyID is returned for a blank notification id
var ErrEmptyID = errors.New("notification id is required")

// Broadcaster delivers a message to every connected page
type Broadcaster interface {
	Broadcast(v any) error
}

// Center tracks one auto-hide timer per notification id. Showing an id
// again restarts its timer.
type Center struct {
	out      Broadcaster
	autoHide time.Duration
	opts     []debounce.Option
	logger   *slog.Logger

	mu     sync.Mutex
	hiders map[string]*debounce.Debouncer[string]
}

// NewCenter creates a Center; autoHide <= 0 means DefaultAutoHide
func NewCenter(out Broadcaster, autoHide time.Duration, logger *slog.Logger, opts ...debounce.Option) *Center {
	if autoHide <= 0 {
		autoHide = DefaultAutoHide
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{
		out:      out,
		autoHide: autoHide,
		opts:     opts,
		logger:   logger.With(slog.String("component", "notify")),
		hiders:   make(map[string]*debounce.Debouncer[string]),
	}
}

// Show makes id visible and schedules it to hide
func (c *Center) Show(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := c.publish(id, true); err != nil {
		return err
	}
	c.hider(id).Trigger(id)
	c.logger.DebugContext(ctx, "notification shown",
		slog.String("id", id),
		slog.Duration("auto_hide", c.autoHide))
	return nil
}

// Hide hides id immediately and drops its pending auto-hide
func (c *Center) Hide(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	c.mu.Lock()
	if d, ok := c.hiders[id]; ok {
		d.Cancel()
	}
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "notification hidden", slog.String("id", id))
	return c.publish(id, false)
}

// Pending reports whether id has an auto-hide scheduled
func (c *Center) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.hiders[id]
	return ok && d.Pending()
}

// Close stops every auto-hide timer
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, d := range c.hiders {
		d.Stop()
		delete(c.hiders, id)
	}
}

func (c *Center) hider(id string) *debounce.Debouncer[string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.hiders[id]
	if !ok {
		d = debounce.New(c.autoHideFired, c.autoHide, c.opts...)
		c.hiders[id] = d
	}
	return d
}

func (c *Center) autoHideFired(id string) {
	if err := c.publish(id, false); err != nil {
		c.logger.Warn("auto-hide broadcast failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}

func (c *Center) publish(id string, visible bool) error {
	return c.out.Broadcast(websocket.Notification{
		Type:    websocket.TypeNotification,
		ID:      id,
		Visible: visible,
	})
}
