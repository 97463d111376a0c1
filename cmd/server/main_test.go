package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/config"
	"github.com/Skufu/medicare-assistant/internal/server"
	"github.com/Skufu/medicare-assistant/internal/session"
	"github.com/Skufu/medicare-assistant/internal/transcript"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.csv")
	require.NoError(t, os.WriteFile(path, []byte("text,date\nfever today,2022-01-01\n"), 0o600))
	return path
}

func TestBuildAppDefaults(t *testing.T) {
	cfg := &config.Config{
		DatasetPath:    writeDataset(t),
		SessionTTL:     time.Hour,
		GatewayTimeout: 30 * time.Second,
		AllowedOrigins: config.DefaultAllowedOrigins,
	}

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.close()

	assert.IsType(t, &session.MemoryStore{}, a.deps.Sessions)
	assert.Equal(t, transcript.Nop{}, a.deps.Transcripts)
	assert.Nil(t, a.deps.DB)
	assert.Equal(t, 1, a.deps.Dataset.Current().Len())
}

func TestBuildAppMissingDatasetIsNotFatal(t *testing.T) {
	cfg := &config.Config{
		DatasetPath:    filepath.Join(t.TempDir(), "missing.csv"),
		SessionTTL:     time.Hour,
		GatewayTimeout: 30 * time.Second,
	}

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.close()
	assert.True(t, a.deps.Dataset.Current().IsEmpty())
}

func TestBuildAppBadRedisURL(t *testing.T) {
	cfg := &config.Config{
		DatasetPath: filepath.Join(t.TempDir(), "missing.csv"),
		RedisURL:    "not a url",
		SessionTTL:  time.Hour,
	}

	_, err := buildApp(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewHTTPServerTimeouts(t *testing.T) {
	srv := newHTTPServer(&config.Config{Port: "9090", GatewayTimeout: 30 * time.Second}, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Greater(t, srv.WriteTimeout, 30*time.Second)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := &config.Config{
		Port:           strconv.Itoa(port),
		DatasetPath:    writeDataset(t),
		SessionTTL:     time.Hour,
		GatewayTimeout: time.Second,
		AllowedOrigins: config.DefaultAllowedOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.Port + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRouterFromBuiltApp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		DatasetPath:    writeDataset(t),
		SessionTTL:     time.Hour,
		GatewayTimeout: time.Second,
		AllowedOrigins: config.DefaultAllowedOrigins,
	}
	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.close()

	w := httptest.NewRecorder()
	server.NewRouter(a.deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dataset_rows":1`)
}
