package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mindline/pkg/chat"
	"mindline/pkg/session"
)

// ChatService processes one chat turn. Satisfied by chat.Orchestrator.
type ChatService interface {
	Chat(ctx context.Context, text, sessionID string) (reply, id string, err error)
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the POST /api/chat reply.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// SessionResponse is the POST /api/sessions reply.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryMessage is one entry in the history reply.
type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse is the GET /api/sessions/:id/history reply.
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

// StatsResponse is the GET /api/sessions/stats reply.
type StatsResponse struct {
	TotalSessions     int `json:"total_sessions"`
	MaxSessions       int `json:"max_sessions"`
	TTLHours          int `json:"ttl_hours"`
	InactivityMinutes int `json:"inactivity_minutes"`
}

type handlers struct {
	store   *session.Store
	chatSvc ChatService
	stats   StatsConfig
}

func newHandlers(store *session.Store, chatSvc ChatService, stats StatsConfig) *handlers {
	return &handlers{store: store, chatSvc: chatSvc, stats: stats}
}

func (h *handlers) register(engine *gin.Engine) {
	engine.GET("/", h.root)
	engine.GET("/health", h.health)

	api := engine.Group("/api")
	api.POST("/sessions", h.createSession)
	api.GET("/sessions/stats", h.sessionStats)
	api.GET("/sessions/:id/history", h.history)
	api.POST("/chat", h.chat)
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "mindline API is running"})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *handlers) createSession(c *gin.Context) {
	sess := h.store.Create()
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
	})
}

func (h *handlers) sessionStats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		TotalSessions:     h.store.Len(),
		MaxSessions:       h.stats.MaxSessions,
		TTLHours:          h.stats.TTLHours,
		InactivityMinutes: h.stats.InactivityMinutes,
	})
}

func (h *handlers) history(c *gin.Context) {
	sess, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	messages := make([]HistoryMessage, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		messages = append(messages, HistoryMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	c.JSON(http.StatusOK, HistoryResponse{
		SessionID: sess.ID,
		Messages:  messages,
	})
}

func (h *handlers) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}

	reply, sessionID, err := h.chatSvc.Chat(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		h.chatError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:  reply,
		SessionID: sessionID,
	})
}

// chatError maps orchestrator failures onto HTTP statuses: unknown session
// is the caller's fault, collaborator timeouts and failures are upstream
// problems.
func (h *handlers) chatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
	case errors.Is(err, chat.ErrRetrievalTimeout), errors.Is(err, chat.ErrCompletionTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "upstream request timed out"})
	case errors.Is(err, chat.ErrRetrieval), errors.Is(err, chat.ErrCompletion):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "failed to process chat request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}
