package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Skufu/medicare-assistant/internal/chat"
	"github.com/Skufu/medicare-assistant/internal/config"
	"github.com/Skufu/medicare-assistant/internal/dataset"
	"github.com/Skufu/medicare-assistant/internal/llm"
	"github.com/Skufu/medicare-assistant/internal/logging"
	"github.com/Skufu/medicare-assistant/internal/server"
	"github.com/Skufu/medicare-assistant/internal/session"
	"github.com/Skufu/medicare-assistant/internal/transcript"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// app holds everything the router needs plus what must be closed on exit.
type app struct {
	deps    server.Deps
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires the components described by cfg. Postgres and Redis are
// only contacted when configured.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	store := dataset.NewStore(logger)
	rows := store.Load(cfg.DatasetPath)
	logger.Info("dataset ready", zap.String("path", cfg.DatasetPath), zap.Int("rows", rows))

	for name, p := range map[string]config.ProviderConfig{
		llm.GeminiProvider:    cfg.Gemini,
		llm.OpenAIProvider:    cfg.OpenAI,
		llm.AnthropicProvider: cfg.Anthropic,
	} {
		if !p.Configured() {
			logger.Info("provider not configured, template fallback in use", zap.String("provider", name))
		}
	}
	chain := llm.NewChainFromConfig(cfg, logger)

	var sessions session.Store = session.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisURL != "" {
		client, err := session.ConnectRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
		logger.Info("session store: redis")
	}

	var recorder transcript.Recorder = transcript.Nop{}
	var db server.HealthChecker
	if cfg.EnableDB {
		pool, err := transcript.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		ts := transcript.NewStore(pool)
		if err := ts.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
		recorder = ts
		db = ts
		logger.Info("transcript store: postgres")
	}

	a.deps = server.Deps{
		Config:      cfg,
		Responder:   chat.NewResponder(chain, store, logger),
		Answerer:    chat.NewDataAnswerer(store),
		Dataset:     store,
		Sessions:    sessions,
		Transcripts: recorder,
		DB:          db,
		Logger:      logger,
	}
	return a, nil
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// generation may take the full gateway timeout per provider
		WriteTimeout: 3*cfg.GatewayTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	srv := newHTTPServer(cfg, server.NewRouter(a.deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
