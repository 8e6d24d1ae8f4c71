// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/messaging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// SessionHandlers contains session lifecycle and SSE handlers
type SessionHandlers struct {
	sessionService *services.SessionService
	broadcaster    messaging.Broadcaster
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(sessionService *services.SessionService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		broadcaster:    broadcaster,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostSession handles POST /api/v1/auth/session - mints a new kiosk session
func (h *SessionHandlers) PostSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_session_request", "")
	defer marker.Complete()

	sessionID := h.sessionService.CreateSession(c.Request.Context())

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// GetSSE handles GET /api/v1/auth/sse - establishes the Server-Sent Events
// stream that carries scan reveal stages and signals to the kiosk screen.
func (h *SessionHandlers) GetSSE(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		h.logger.SSE().Error("SSE connection request missing session ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required for SSE connection"})
		return
	}

	if h.broadcaster.GetSessionConnectionCount(sessionID) >= config.MaxSessionConnections {
		h.logger.SSE().Warn("SSE connection limit reached for session",
			"sessionId", sessionID,
			"maxConnections", config.MaxSessionConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "SSE connection limit reached. Please try again later.",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	h.sessionService.Touch(sessionID)
	ch := h.broadcaster.AddClientWithSession(sessionID)
	defer h.broadcaster.RemoveClientWithSession(ch, sessionID)

	fmt.Fprintf(c.Writer, "data: {\"type\":\"connected\",\"sessionId\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		sessionID, time.Now().Format(time.RFC3339))
	c.Writer.Flush()

	h.logger.LogSSEEvent("connected", sessionID, h.broadcaster.GetSessionConnectionCount(sessionID))

	heartbeat := time.NewTicker(time.Duration(config.SSEHeartbeatIntervalSeconds) * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-ch:
			if !ok {
				return false
			}
			fmt.Fprint(w, message)
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.LogSSEEvent("disconnected", sessionID, h.broadcaster.GetSessionConnectionCount(sessionID))
}
