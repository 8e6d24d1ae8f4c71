package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/media"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// ScanHandlers contains the face-scan pipeline HTTP handlers
type ScanHandlers struct {
	scanService *services.ScanService
	snapshots   *media.SnapshotProcessor
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewScanHandlers creates scan handlers with injected dependencies
func NewScanHandlers(scanService *services.ScanService, snapshots *media.SnapshotProcessor, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ScanHandlers {
	return &ScanHandlers{
		scanService: scanService,
		snapshots:   snapshots,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ScanStartRequest is the body for POST /scan/start. Snapshot is an optional
// base64 data URL of the camera frame, stored for the admin review screen.
type ScanStartRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Snapshot  string `json:"snapshot,omitempty"`
}

// ConsentRequest is the body for POST /scan/consent.
type ConsentRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Granted   bool   `json:"granted"`
}

// SessionIDRequest is the body for scan endpoints that only need a session.
type SessionIDRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// PostStart handles POST /api/v1/scan/start
func (h *ScanHandlers) PostStart(c *gin.Context) {
	var req ScanStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	marker := h.perfTracker.StartOperation("post_scan_start", req.SessionID)
	defer marker.Complete()

	response := gin.H{}
	if req.Snapshot != "" {
		encodeMarker := h.perfTracker.StartOperation("snapshot_encoding", req.SessionID)
		snapshotURL, thumbURL, err := h.snapshots.ProcessScanSnapshot(req.Snapshot, req.SessionID)
		h.perfTracker.CompleteOperation(encodeMarker)
		if err != nil {
			// The snapshot is a nicety; the scan proceeds without it.
			h.logger.Scan().Warn("Snapshot processing failed",
				"sessionId", req.SessionID,
				"error", err.Error())
		} else {
			response["snapshotUrl"] = snapshotURL
			response["thumbnailUrl"] = thumbURL
		}
	}

	state := h.scanService.Start(req.SessionID)
	response["state"] = state

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, response)
}

// PostConsent handles POST /api/v1/scan/consent
func (h *ScanHandlers) PostConsent(c *gin.Context) {
	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	state, err := h.scanService.Consent(req.SessionID, req.Granted)
	if err != nil {
		if errors.Is(err, scan.ErrInvalidInput) {
			c.JSON(http.StatusConflict, gin.H{"error": "no consent pending for this session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "consent processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// PostReset handles POST /api/v1/scan/reset
func (h *ScanHandlers) PostReset(c *gin.Context) {
	var req SessionIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	state := h.scanService.Reset(req.SessionID)
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// GetState handles GET /api/v1/scan/state
func (h *ScanHandlers) GetState(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId query parameter required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.scanService.State(sessionID)})
}

// GetRecommendations handles GET /api/v1/scan/recommendations
func (h *ScanHandlers) GetRecommendations(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId query parameter required"})
		return
	}

	recommendations, ready := h.scanService.Recommendations(sessionID)
	if !ready {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed scan for this session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
