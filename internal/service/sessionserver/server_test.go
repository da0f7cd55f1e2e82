package sessionserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/soccer-timer/internal/config"
)

// TestNewRouter serves sessions at the root and metrics beside them.
func TestNewRouter(t *testing.T) {
	t.Parallel()

	settings := &config.Config{SessionDir: filepath.Join(t.TempDir(), "sessions")}
	require.NoError(t, config.Validate(settings))

	router := NewRouter(settings, prometheus.NewRegistry())

	req := httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/",
		strings.NewReader(`{"action":"save","password":"derby","data":{"score":"1-0"}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `match_clock_session_requests_total{action="save",outcome="ok"} 1`)
}

// TestRun_StopsOnCancel serves until the context ends.
func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		SessionAddress: "127.0.0.1:0",
		SessionDir:     filepath.Join(dir, "sessions"),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{ConfigPath: cfgPath, Ready: ready})
	}()

	addr := <-ready

	resp, err := http.Post("http://"+addr+"/", "application/json", //nolint:noctx // Short-lived test request.
		strings.NewReader(`{"action":"check","password":"derby"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	cancel()
	require.NoError(t, <-done)
}
