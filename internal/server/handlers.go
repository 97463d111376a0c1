package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/chat"
	"github.com/Skufu/medicare-assistant/internal/dataset"
	"github.com/Skufu/medicare-assistant/internal/logging"
	"github.com/Skufu/medicare-assistant/internal/session"
	"github.com/Skufu/medicare-assistant/internal/transcript"
)

const (
	serviceName    = "MediCare AI API"
	maxSearchLimit = 100
)

type chatRequest struct {
	Message         string `json:"message"`
	UserName        string `json:"userName"`
	SelectedService string `json:"selectedService"`
	SessionID       string `json:"sessionId"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
	Source    string `json:"source,omitempty"`
}

type dataQueryRequest struct {
	Message string `json:"message"`
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "MediCare AI API is running",
		"status":  "healthy",
		"endpoints": gin.H{
			"chat":   "/api/chat",
			"health": "/health",
		},
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"gemini_api":    h.Config.Gemini.Status(),
		"openai_api":    h.Config.OpenAI.Status(),
		"anthropic_api": h.Config.Anthropic.Status(),
		"service":       serviceName,
		"dataset_rows":  h.Dataset.Current().Len(),
	})
}

func (h *handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) readyz(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

// chat never fails visibly: a malformed request still gets the general
// template with success=true.
func (h *handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("malformed chat request", zap.Error(err))
		c.JSON(http.StatusOK, chatResponse{
			Response: chat.Template(chat.ServiceUnspecified, "", ""),
			Success:  true,
			Source:   chat.SourceTemplate,
		})
		return
	}

	ctx := c.Request.Context()
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = session.NewID()
	}

	history, err := h.Sessions.History(ctx, sessionID)
	if err != nil {
		h.logger.Warn("load session history", zap.String("session_id", sessionID), zap.Error(err))
		history = nil
	}

	service := chat.ParseService(req.SelectedService)
	h.logger.Debug("chat request",
		zap.String("session_id", sessionID),
		zap.Stringer("service", service),
		zap.String("message", logging.Truncate(req.Message, 80)))

	reply := h.Responder.Respond(ctx, chat.Request{
		Message:  req.Message,
		UserName: req.UserName,
		Service:  service,
		History:  history,
	})

	now := time.Now().UTC()
	err = h.Sessions.Append(ctx, sessionID,
		chat.Turn{Role: chat.RoleUser, Content: req.Message, Timestamp: now},
		chat.Turn{Role: chat.RoleAssistant, Content: reply.Text, Timestamp: now},
	)
	if err != nil {
		h.logger.Warn("append session history", zap.String("session_id", sessionID), zap.Error(err))
	}

	err = h.Transcripts.Record(ctx, transcript.Entry{
		SessionID: sessionID,
		Service:   service.String(),
		Category:  string(reply.Category),
		Source:    reply.Source,
		Message:   req.Message,
		Response:  reply.Text,
		CreatedAt: now,
	})
	if err != nil {
		h.logger.Warn("record transcript", zap.String("session_id", sessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:  reply.Text,
		Success:   true,
		SessionID: sessionID,
		Source:    reply.Source,
	})
}

func (h *handler) dataQuery(c *gin.Context) {
	var req dataQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("malformed data query", zap.Error(err))
	}
	c.JSON(http.StatusOK, chatResponse{
		Response: h.Answerer.Answer(req.Message),
		Success:  true,
	})
}

func (h *handler) datasetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Dataset.Current().Statistics())
}

func (h *handler) datasetSearch(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := dataset.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	if limit <= 0 {
		limit = dataset.DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results := h.Dataset.Current().Search(term, limit)
	c.JSON(http.StatusOK, gin.H{
		"query":   term,
		"limit":   limit,
		"count":   len(results),
		"results": results,
	})
}

func (h *handler) datasetKeywords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"keywords": h.Dataset.Current().KeywordFrequency()})
}

func (h *handler) sessionHistory(c *gin.Context) {
	id := c.Param("id")
	turns, err := h.Sessions.History(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("load session history", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": id, "turns": turns})
}

func (h *handler) resetSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.Sessions.Reset(c.Request.Context(), id); err != nil {
		h.logger.Error("reset session", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": id, "status": "cleared"})
}
