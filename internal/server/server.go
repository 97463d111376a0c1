// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/chat"
	"github.com/Skufu/medicare-assistant/internal/config"
	"github.com/Skufu/medicare-assistant/internal/logging"
	"github.com/Skufu/medicare-assistant/internal/session"
	"github.com/Skufu/medicare-assistant/internal/transcript"
)

const maxBodyBytes = 1 << 20

// HealthChecker is pinged by /readyz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ChatResponder answers chat messages. *chat.Responder implements it.
type ChatResponder interface {
	Respond(ctx context.Context, req chat.Request) chat.Reply
}

// DataAnswerer answers dataset questions. *chat.DataAnswerer implements it.
type DataAnswerer interface {
	Answer(query string) string
}

// Deps are the collaborators the router serves. DB may be nil when the
// database is disabled.
type Deps struct {
	Config      *config.Config
	Responder   ChatResponder
	Answerer    DataAnswerer
	Dataset     chat.DatasetSource
	Sessions    session.Store
	Transcripts transcript.Recorder
	DB          HealthChecker
	Logger      *zap.Logger
}

type handler struct {
	Deps
	logger *zap.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Transcripts == nil {
		deps.Transcripts = transcript.Nop{}
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(deps.Config.SessionTTL)
	}
	h := &handler{Deps: deps, logger: deps.Logger.Named("server")}

	router := gin.New()
	router.Use(
		logging.GinLogger(deps.Logger),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(corsConfig(deps.Config.AllowedOrigins)),
	)

	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.GET("/healthz", h.healthz)
	router.GET("/readyz", h.readyz)

	api := router.Group("/api")
	api.POST("/chat", h.chat)
	api.POST("/data/query", h.dataQuery)
	api.GET("/dataset/stats", h.datasetStats)
	api.GET("/dataset/search", h.datasetSearch)
	api.GET("/dataset/keywords", h.datasetKeywords)
	api.GET("/sessions/:id/history", h.sessionHistory)
	api.DELETE("/sessions/:id/history", h.resetSession)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		origins = config.DefaultAllowedOrigins
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
