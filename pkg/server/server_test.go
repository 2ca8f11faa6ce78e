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

	"taskflow/pkg/config"
	"taskflow/pkg/logger"
)

func init() {
	logger.Init("error")
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "test-app", Version: "test"},
		HTTP: config.HTTPConfig{Port: 8085, EnableH2C: true, ShutdownTimeout: time.Second},
	}
}

func TestNewServer(t *testing.T) {
	srv := New(testConfig(), http.NotFoundHandler())
	require.NotNil(t, srv)
	require.NotNil(t, srv.GetEngine())

	assert.Equal(t, ":8085", srv.GetEngine().Addr)
	assert.Nil(t, srv.metricsServer)
}

func TestNewServer_MetricsPort(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics = config.MetricsConfig{Enabled: true, Port: 9191, Path: "/metrics"}

	srv := New(cfg, http.NotFoundHandler())
	require.NotNil(t, srv.metricsServer)
	assert.Equal(t, ":9191", srv.metricsServer.Addr)
}

func TestNewRateLimiter(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, NewRateLimiter(cfg))

	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 5, Window: time.Second, Backend: "memory"}
	limiter := NewRateLimiter(cfg)
	require.NotNil(t, limiter)
	assert.NoError(t, limiter.Close())

	// token bucket в redis не поддерживается, сервис работает без ограничений
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 5, Window: time.Second, Backend: "redis", Strategy: "token_bucket"}
	assert.Nil(t, NewRateLimiter(cfg))
}

func TestServe_GracefulShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	var hookCalled bool
	srv := NewWithOptions(testConfig(), handler, &ServerOptions{
		OnShutdown: []func(context.Context) error{
			func(context.Context) error { hookCalled = true; return nil },
		},
	})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	resp, err := http.Get("http://" + lis.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, hookCalled)
}
