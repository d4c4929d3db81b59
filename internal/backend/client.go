// Package backend talks to the camp-management web application that owns
// activities, participants and registrations.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
	userAgent      = "campkit/1.0"
)

// ErrStatus is wrapped by Fetch for non-2xx responses
var ErrStatus = errors.New("unexpected HTTP status")

// HTTPDoer executes HTTP requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds backend connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithDoer replaces the instrumented default HTTP client
func WithDoer(d HTTPDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// Client issues read-only JSON requests against the backend
type Client struct {
	base   *url.URL
	doer   HTTPDoer
	logger *slog.Logger
}

// NewClient validates cfg and builds a client
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		base: base,
		doer: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "backend")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves path against the base URL
func (c *Client) URL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	return c.base.ResolveReference(ref).String()
}

// Fetch GETs path and decodes the JSON body into v
func (c *Client) Fetch(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "backend response",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchJSON is Fetch for callers that only care about success. Failures are
// logged and reported as false.
func (c *Client) FetchJSON(ctx context.Context, path string, v any) bool {
	if err := c.Fetch(ctx, path, v); err != nil {
		c.logger.ErrorContext(ctx, "Fetch error",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// Capacity is the backend's view of an activity's occupancy. TotalCapacity
// and AvailableSpots are nil when the activity has no maximum.
type Capacity struct {
	Success             bool   `json:"success"`
	IsFull              bool   `json:"is_full"`
	AvailableSpots      *int   `json:"available_spots"`
	TotalCapacity       *int   `json:"total_capacity"`
	CurrentParticipants int    `json:"current_participants"`
	Error               string `json:"error,omitempty"`
}

// CapacityPath returns the backend path for an activity capacity check
func CapacityPath(activityID int) string {
	return "/activities/check-capacity/" + strconv.Itoa(activityID) + "/"
}

// CheckCapacity returns the occupancy of an activity, or nil when the
// backend is unreachable, answers with an error, or reports failure.
func (c *Client) CheckCapacity(ctx context.Context, activityID int) *Capacity {
	var capacity Capacity
	if !c.FetchJSON(ctx, CapacityPath(activityID), &capacity) {
		return nil
	}
	if !capacity.Success {
		c.logger.WarnContext(ctx, "capacity check unsuccessful",
			slog.Int("activity_id", activityID),
			slog.String("error", capacity.Error))
		return nil
	}
	return &capacity
}

// SearchURL returns the list page URL for scope filtered by query, the
// target of a submitted search form.
func SearchURL(scope, query string) string {
	scope = strings.Trim(scope, "/")
	path := "/"
	if scope != "" {
		path = "/" + scope + "/"
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return path
	}
	return path + "?" + url.Values{"q": {query}}.Encode()
}
