package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// LeadHandlers captures admissions enquiries from the kiosk contact form
type LeadHandlers struct {
	leadService *services.LeadService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLeadHandlers creates lead handlers with injected dependencies
func NewLeadHandlers(leadService *services.LeadService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LeadRequest is the body for POST /leads
type LeadRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PostLead handles POST /api/v1/leads
func (h *LeadHandlers) PostLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	marker := h.perfTracker.StartOperation("post_lead_request", req.SessionID)
	defer marker.Complete()

	lead, err := h.leadService.CreateLead(c.Request.Context(), services.Lead{
		SessionID: req.SessionID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Interest:  req.Interest,
		Message:   req.Message,
	})
	if err != nil {
		if errors.Is(err, scan.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store lead"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{"id": lead.ID})
}
