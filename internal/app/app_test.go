package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campkit/internal/config"
	"campkit/internal/infrastructure"
	"campkit/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	cfg.Export.DownloadsDir = t.TempDir()
	cfg.Server.StaticDir = t.TempDir()
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   "campkit-test",
		EnableMetrics: true,
	}, logger)
	require.NoError(t, err)

	a, err := New(cfg, logger, providers)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.WebSocketHub.Run(ctx)
	}()

	srv := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
		a.Notifications.Close()
		_ = providers.Shutdown(context.Background())
	})
	return a, srv
}

func TestApplication_Health(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, config.AppVersion, body["version"])
}

func TestApplication_VersionIsJSON(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/api/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestApplication_ExportAndMetrics(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Post(srv.URL+"/api/export/csv?filename=inscrits.csv", "application/json",
		strings.NewReader(`[{"nom":"Dupont","age":12}]`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nom,age\n\"Dupont\",\"12\"\n", string(body))

	resp, err = http.Post(srv.URL+"/api/export/csv", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(metrics), "campkit_exports_total")
	assert.Contains(t, string(metrics), "campkit_empty_exports_total")
	assert.Contains(t, string(metrics), "campkit_http_requests_total")
}

func TestApplication_NotFoundIsProblem(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.EqualValues(t, http.StatusNotFound, problem["status"])
}

func TestApplication_PDFDisabled(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Post(srv.URL+"/api/pdf", "application/json", strings.NewReader(`{"html":"<p>x</p>"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestApplication_StaticFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Server.StaticDir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.StaticDir, "css", "tailwind.css"), []byte("body{}"), 0o644))
	_, srv := newTestApp(t, cfg)

	resp, err := http.Get(srv.URL + "/static/css/tailwind.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestApplication_WebSocketNotifications(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connection", readJSON(t, conn)["type"])

	resp, err := http.Post(srv.URL+"/api/notifications/flash/show", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readJSON(t, conn)
	assert.Equal(t, "notification", msg["type"])
	assert.Equal(t, "flash", msg["id"])
	assert.Equal(t, true, msg["visible"])
}

func TestApplication_WebSocketSearch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Debounce = 50 * time.Millisecond
	_, srv := newTestApp(t, cfg)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	readJSON(t, conn)

	for _, q := range []string{"k", "ka", "kayak"} {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "search:input", "scope": "activities", "query": q}))
	}

	msg := readJSON(t, conn)
	assert.Equal(t, "search:submit", msg["type"])
	assert.Equal(t, "/activities/?q=kayak", msg["url"])
}

func TestApplication_WebSocketRequiresUpgrade(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestApplication_RunAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)

	logger, _ := testutil.NewTestLogger(t)
	a, err := New(cfg, logger, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	url := "http://" + cfg.Server.Addr() + "/api/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not shut down")
	}

	select {
	case <-a.WebSocketHub.Done():
	default:
		t.Error("hub still running after shutdown")
	}
}
