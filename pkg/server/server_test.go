package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(
		WithListener(l),
		WithSimpleHealth(),
		WithHandler("GET /ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		})),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, srv.IsRunning, time.Second, 10*time.Millisecond)

	base := "http://" + l.Addr().String()
	for path, want := range map[string]string{"/healthz": "ok", "/ping": "pong"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, string(b))
	}

	cancel()
	require.NoError(t, <-done)
	assert.False(t, srv.IsRunning())
}

func TestServeBadTLS(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(WithListener(l), WithTLS(TLSConfig{CertFile: "missing.pem", KeyFile: "missing.key"}))
	err = srv.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLS certificate")
}
