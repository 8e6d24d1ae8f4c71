package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/session"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// EventHandlers ingests kiosk telemetry: funnel steps, page transitions,
// dwell durations and heatmap clicks. Every endpoint is fire-and-forget from
// the kiosk's point of view and always answers 202.
type EventHandlers struct {
	funnelService    *services.FunnelService
	sessionService   *services.SessionService
	analyticsService *services.AnalyticsService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(funnelService *services.FunnelService, sessionService *services.SessionService, analyticsService *services.AnalyticsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		funnelService:    funnelService,
		sessionService:   sessionService,
		analyticsService: analyticsService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// FunnelStepRequest is the body for POST /events/step
type FunnelStepRequest struct {
	SessionID      string         `json:"sessionId" binding:"required"`
	Step           string         `json:"step" binding:"required"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// PageTransitionRequest is the body for POST /events/page
type PageTransitionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	From      string `json:"from"`
	To        string `json:"to" binding:"required"`
}

// DurationRequest is the body for POST /events/duration
type DurationRequest struct {
	SessionID       string                `json:"sessionId" binding:"required"`
	Page            string                `json:"page" binding:"required"`
	DurationSeconds float64               `json:"durationSeconds"`
	Demographics    *session.Demographics `json:"demographics,omitempty"`
}

// HeatmapRequest is the body for POST /events/heatmap
type HeatmapRequest struct {
	SessionID string  `json:"sessionId" binding:"required"`
	Page      string  `json:"page" binding:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Element   string  `json:"element,omitempty"`
}

// PostStep handles POST /api/v1/events/step
func (h *EventHandlers) PostStep(c *gin.Context) {
	var req FunnelStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.sessionService.Touch(req.SessionID)
	h.funnelService.LogStep(c.Request.Context(), funnel.Step(req.Step), req.SessionID, req.AdditionalData)
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// PostPageTransition handles POST /api/v1/events/page
func (h *EventHandlers) PostPageTransition(c *gin.Context) {
	var req PageTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.sessionService.LogPageTransition(c.Request.Context(), req.SessionID, req.From, req.To)
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// PostDuration handles POST /api/v1/events/duration
func (h *EventHandlers) PostDuration(c *gin.Context) {
	var req DurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.sessionService.LogSessionDuration(c.Request.Context(), req.SessionID, req.Page, req.DurationSeconds, req.Demographics)
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// PostHeatmap handles POST /api/v1/events/heatmap
func (h *EventHandlers) PostHeatmap(c *gin.Context) {
	var req HeatmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.analyticsService.LogHeatmapClick(c.Request.Context(), services.HeatmapClick{
		SessionID: req.SessionID,
		Page:      req.Page,
		X:         req.X,
		Y:         req.Y,
		Element:   req.Element,
	})
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
