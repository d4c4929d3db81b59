// Package search turns a browser's search keystrokes into a single
// submission once typing pauses.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campkit/internal/backend"
	"campkit/internal/debounce"
	"campkit/internal/websocket"
)

// DefaultWait is the pause after the last keystroke before submitting
const DefaultWait = 500 * time.Millisecond

// Sender delivers a message to one browser
type Sender interface {
	SendJSON(v any) error
}

type input struct {
	scope string
	query string
}

// Session debounces one client's search input. Each client owns its own
// Session, so typing in one page never delays another.
type Session struct {
	out     Sender
	trigger *debounce.Debouncer[input]
	logger  *slog.Logger
}

// NewSession creates a Session sending submissions to out
func NewSession(out Sender, wait time.Duration, logger *slog.Logger, opts ...debounce.Option) *Session {
	if wait <= 0 {
		wait = DefaultWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{out: out, logger: logger.With(slog.String("component", "search"))}
	s.trigger = debounce.New(s.submit, wait, opts...)
	return s
}

// Handle feeds search input messages to the debouncer
func (s *Session) Handle(_ context.Context, msg websocket.Inbound) {
	if msg.Type != websocket.TypeSearchInput {
		return
	}
	s.trigger.Trigger(input{scope: msg.Scope, query: msg.Query})
}

// Pending reports whether a submission is scheduled
func (s *Session) Pending() bool { return s.trigger.Pending() }

// Close drops any pending submission
func (s *Session) Close() { s.trigger.Stop() }

func (s *Session) submit(in input) {
	msg := websocket.SearchSubmit{
		Type:  websocket.TypeSearchSubmit,
		Scope: strings.Trim(in.scope, "/"),
		Query: strings.TrimSpace(in.query),
		URL:   backend.SearchURL(in.scope, in.query),
	}
	if err := s.out.SendJSON(msg); err != nil {
		s.logger.Debug("search submit not delivered", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("search submitted", slog.String("url", msg.URL))
}

// Sessions returns a websocket session factory giving each client its own
// search Session.
func Sessions(wait time.Duration, logger *slog.Logger, opts ...debounce.Option) websocket.SessionFactory {
	return func(c *websocket.Client) websocket.Session {
		return NewSession(c, wait, logger, opts...)
	}
}
