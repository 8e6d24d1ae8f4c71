package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/media"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// AdminHandlers serves the dashboard analytics endpoints
type AdminHandlers struct {
	analyticsService *services.AnalyticsService
	funnelService    *services.FunnelService
	sessionService   *services.SessionService
	leadService      *services.LeadService
	snapshots        *media.SnapshotProcessor
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(analyticsService *services.AnalyticsService, funnelService *services.FunnelService, sessionService *services.SessionService, leadService *services.LeadService, snapshots *media.SnapshotProcessor, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AdminHandlers {
	return &AdminHandlers{
		analyticsService: analyticsService,
		funnelService:    funnelService,
		sessionService:   sessionService,
		leadService:      leadService,
		snapshots:        snapshots,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// queryLimit parses the limit query parameter with a default and cap.
func queryLimit(c *gin.Context, fallback, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

// GetFunnel handles GET /api/v1/admin/analytics/funnel
func (h *AdminHandlers) GetFunnel(c *gin.Context) {
	stats, err := h.funnelService.ComputeFunnel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "funnel query failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetOverview handles GET /api/v1/admin/analytics/overview
func (h *AdminHandlers) GetOverview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetSessions handles GET /api/v1/admin/analytics/sessions
func (h *AdminHandlers) GetSessions(c *gin.Context) {
	stats, err := h.sessionService.SessionAnalytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session query failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRecentSessions handles GET /api/v1/admin/sessions/recent
func (h *AdminHandlers) GetRecentSessions(c *gin.Context) {
	sessions, err := h.sessionService.RecentSessions(c.Request.Context(), queryLimit(c, 50, 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetHeatmap handles GET /api/v1/admin/analytics/heatmap
func (h *AdminHandlers) GetHeatmap(c *gin.Context) {
	clicks, err := h.analyticsService.RecentHeatmap(c.Request.Context(), c.Query("page"), queryLimit(c, 500, 5000))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heatmap query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicks": clicks})
}

// GetLeads handles GET /api/v1/admin/leads
func (h *AdminHandlers) GetLeads(c *gin.Context) {
	leads, err := h.leadService.RecentLeads(c.Request.Context(), queryLimit(c, 50, 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// SnapshotDeleteRequest is the body for DELETE /admin/snapshots
type SnapshotDeleteRequest struct {
	SnapshotURL string `json:"snapshotUrl" binding:"required"`
}

// DeleteSnapshot handles DELETE /api/v1/admin/snapshots - removes a reviewed
// scan snapshot and its thumbnail from disk.
func (h *AdminHandlers) DeleteSnapshot(c *gin.Context) {
	var req SnapshotDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := h.snapshots.DeleteSnapshot(req.SnapshotURL); err != nil {
		h.logger.System().Warn("Snapshot deletion failed",
			"snapshotUrl", req.SnapshotURL,
			"error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot deletion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetPerformance handles GET /api/v1/admin/performance
func (h *AdminHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"snapshot": h.perfTracker.TakeSnapshot(),
		"stats":    h.perfTracker.GetOverallStats(),
	})
}
