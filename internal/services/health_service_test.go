package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeHub struct {
	clients int
	done    chan struct{}
}

func newFakeHub(clients int) *fakeHub {
	return &fakeHub{clients: clients, done: make(chan struct{})}
}

func (h *fakeHub) ClientCount() int      { return h.clients }
func (h *fakeHub) Done() <-chan struct{} { return h.done }

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService(HealthOptions{Version: "1.2.3"}, newFakeHub(3), nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, 3, status.Services["websocket_clients"])
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	stopped := newFakeHub(0)
	close(stopped.done)

	tests := []struct {
		name       string
		opts       HealthOptions
		hub        ClientCounter
		wantStatus string
	}{
		{"all ready", HealthOptions{DownloadsDir: dir, PDFEnabled: true}, newFakeHub(1), "ready"},
		{"missing downloads dir is created later", HealthOptions{DownloadsDir: filepath.Join(dir, "later")}, newFakeHub(0), "ready"},
		{"downloads path is a file", HealthOptions{DownloadsDir: file}, newFakeHub(0), "not_ready"},
		{"hub stopped", HealthOptions{}, stopped, "not_ready"},
		{"no hub", HealthOptions{}, nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(tt.opts, tt.hub, nil)
			assert.Equal(t, tt.wantStatus, hs.ReadinessCheck(context.Background()).Status)
		})
	}
}

func TestHealthService_PDFDisabledIsNotFailure(t *testing.T) {
	hs := NewHealthService(HealthOptions{PDFEnabled: false}, newFakeHub(0), nil)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, ServiceHealth{Status: "disabled"}, status.Services["pdf"])
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService(HealthOptions{Version: "1.0.0"}, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Contains(t, v, "go_version")
}
