package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// ContentHandlers serves the career catalog and tuition table
type ContentHandlers struct {
	contentService *services.ContentService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewContentHandlers creates content handlers with injected dependencies
func NewContentHandlers(contentService *services.ContentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentHandlers {
	return &ContentHandlers{
		contentService: contentService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetCareers handles GET /api/v1/careers
func (h *ContentHandlers) GetCareers(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_careers_request", "")
	defer marker.Complete()

	careers := h.contentService.Careers(c.Request.Context())
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"careers": careers})
}

// GetCareer handles GET /api/v1/careers/:id
func (h *ContentHandlers) GetCareer(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_career_request", "")
	defer marker.Complete()

	id := catalog.CategoryID(c.Param("id"))
	career, ok := h.contentService.Career(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown career category"})
		return
	}
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"career": career})
}

// GetTuition handles GET /api/v1/tuition
func (h *ContentHandlers) GetTuition(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_tuition_request", "")
	defer marker.Complete()

	tuition := h.contentService.Tuition(c.Request.Context())
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"tuition": tuition})
}
