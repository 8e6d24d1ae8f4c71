package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// ChatHandlers exposes the kiosk assistant
type ChatHandlers struct {
	chatService    *services.ChatService
	funnelService  *services.FunnelService
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewChatHandlers creates chat handlers with injected dependencies
func NewChatHandlers(chatService *services.ChatService, funnelService *services.FunnelService, sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ChatHandlers {
	return &ChatHandlers{
		chatService:    chatService,
		funnelService:  funnelService,
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// ChatRequest is the body for POST /chat
type ChatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// PostChat handles POST /api/v1/chat
func (h *ChatHandlers) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.sessionService.Touch(req.SessionID)
	reply := h.chatService.Ask(c.Request.Context(), req.SessionID, req.Message)
	h.funnelService.LogStep(c.Request.Context(), funnel.StepChatted, req.SessionID, nil)

	c.JSON(http.StatusOK, reply)
}
