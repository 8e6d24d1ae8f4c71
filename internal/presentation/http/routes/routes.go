// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/container"
	"github.com/lannapoly/pathfinder-go/internal/presentation/http/handlers"
	"github.com/lannapoly/pathfinder-go/internal/presentation/http/middleware"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Scan snapshots and thumbnails for the admin review screen.
	r.Static("/media/snapshots", config.MediaBasePath+"/snapshots")

	// Initialize handlers
	sessionHandlers := handlers.NewSessionHandlers(container.SessionService, container.Broadcaster, container.Logger, container.PerfTracker)
	scanHandlers := handlers.NewScanHandlers(container.ScanService, container.Snapshots, container.Logger, container.PerfTracker)
	contentHandlers := handlers.NewContentHandlers(container.ContentService, container.Logger, container.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(container.FunnelService, container.SessionService, container.AnalyticsService, container.Logger, container.PerfTracker)
	chatHandlers := handlers.NewChatHandlers(container.ChatService, container.FunnelService, container.SessionService, container.Logger, container.PerfTracker)
	leadHandlers := handlers.NewLeadHandlers(container.LeadService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	adminHandlers := handlers.NewAdminHandlers(container.AnalyticsService, container.FunnelService, container.SessionService, container.LeadService, container.Snapshots, container.Logger, container.PerfTracker)
	opsHandlers := handlers.NewOpsHandlers(container.OpsBroadcaster, container.Logger)

	api := r.Group("/api/v1")
	{
		// Session lifecycle and the reveal stream
		auth := api.Group("/auth")
		{
			auth.POST("/session", sessionHandlers.PostSession)
			auth.GET("/sse", sessionHandlers.GetSSE)
		}

		// Face-scan pipeline
		scan := api.Group("/scan")
		{
			scan.POST("/start", scanHandlers.PostStart)
			scan.POST("/consent", scanHandlers.PostConsent)
			scan.POST("/reset", scanHandlers.PostReset)
			scan.GET("/state", scanHandlers.GetState)
			scan.GET("/recommendations", scanHandlers.GetRecommendations)
		}

		// Kiosk content
		api.GET("/careers", contentHandlers.GetCareers)
		api.GET("/careers/:id", contentHandlers.GetCareer)
		api.GET("/tuition", contentHandlers.GetTuition)

		// Telemetry ingestion
		events := api.Group("/events")
		{
			events.POST("/step", eventHandlers.PostStep)
			events.POST("/page", eventHandlers.PostPageTransition)
			events.POST("/duration", eventHandlers.PostDuration)
			events.POST("/heatmap", eventHandlers.PostHeatmap)
		}

		// Assistant and lead capture
		api.POST("/chat", chatHandlers.PostChat)
		api.POST("/leads", leadHandlers.PostLead)

		// Admin dashboard
		admin := api.Group("/admin")
		{
			admin.POST("/auth/login", authHandlers.PostLogin)
			admin.GET("/auth/status", authHandlers.GetStatus)

			protected := admin.Group("")
			protected.Use(authHandlers.AuthMiddleware())
			{
				protected.GET("/analytics/funnel", adminHandlers.GetFunnel)
				protected.GET("/analytics/overview", adminHandlers.GetOverview)
				protected.GET("/analytics/sessions", adminHandlers.GetSessions)
				protected.GET("/analytics/heatmap", adminHandlers.GetHeatmap)
				protected.GET("/sessions/recent", adminHandlers.GetRecentSessions)
				protected.GET("/leads", adminHandlers.GetLeads)
				protected.DELETE("/snapshots", adminHandlers.DeleteSnapshot)
				protected.GET("/performance", adminHandlers.GetPerformance)

				protected.GET("/ops/stream", opsHandlers.StreamOps)
				protected.GET("/logs/stream", opsHandlers.StreamLogs)
				protected.GET("/logs/levels", opsHandlers.GetLogLevels)
				protected.POST("/logs/levels", opsHandlers.SetLogLevel)
			}
		}
	}

	return r
}
