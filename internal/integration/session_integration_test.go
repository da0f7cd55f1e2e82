package integration

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/service/sessionserver"
)

// TestSessionServer_Roundtrip shares a match between two clients.
func TestSessionServer_Roundtrip(t *testing.T) {
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
		done <- sessionserver.Run(ctx, &sessionserver.Options{ConfigPath: cfgPath, Ready: ready})
	}()

	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	url := "http://" + <-ready + "/"

	send := func(body string) (int, string) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		defer func() {
			_ = resp.Body.Close()
		}()

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return resp.StatusCode, string(data)
	}

	code, body := send(`{"action":"save","password":"derby","data":{"home":1,"away":0,"period":2}}`)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"success":true}`, body)

	code, body = send(`{"action":"check","password":"derby"}`)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"exists":true}`, body)

	code, body = send(`{"action":"load","password":"derby"}`)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"home":1,"away":0,"period":2}`, body)

	code, _ = send(`{"action":"load","password":"rivals"}`)
	require.Equal(t, http.StatusNotFound, code)
}
