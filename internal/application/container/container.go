// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/application/services"
	"github.com/lannapoly/pathfinder-go/internal/domain/catalog"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/email"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/faceapi"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/media"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/messaging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/database"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Infrastructure
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
	DB             *database.DB
	Store          docstore.Store
	Writer         *docstore.ResilientWriter
	Broadcaster    *messaging.SSEBroadcaster
	OpsBroadcaster *messaging.OpsBroadcaster
	FaceProvider   faceapi.Provider
	Snapshots      *media.SnapshotProcessor
	Mailer         email.Service

	// Application services
	SessionService   *services.SessionService
	FunnelService    *services.FunnelService
	InterestService  *services.InterestService
	ScanService      *services.ScanService
	ContentService   *services.ContentService
	AnalyticsService *services.AnalyticsService
	LeadService      *services.LeadService
	ChatService      *services.ChatService
	AuthService      *services.AuthService
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) (*Container, error) {
	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBDataSource, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)

	if err := database.VerifyConnection(db.DB, config.DBDriver, logger); err != nil {
		return nil, fmt.Errorf("database verification failed: %w", err)
	}

	creator := database.NewTableCreator()
	if err := creator.CreateSchema(db.DB); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := creator.SeedInitialContent(db.DB); err != nil {
		return nil, fmt.Errorf("failed to seed content: %w", err)
	}

	store := docstore.NewSQLStore(db, logger)
	writer := docstore.NewResilientWriter(store, logger)
	broadcaster := messaging.NewSSEBroadcaster(logger)

	// The email provider is optional; the kiosk runs without notifications.
	mailer, err := email.NewService()
	if err != nil {
		logger.System().Warn("Email notifications disabled", "reason", err.Error())
		mailer = nil
	}

	sessionService := services.NewSessionService(writer, logger)
	funnelService := services.NewFunnelService(writer, logger)
	contentService := services.NewContentService(store, catalog.Default(), logger)
	interestService := services.NewInterestService(catalog.Default(), nil, config.TopInterestCount, logger, perfTracker)
	faceProvider := faceapi.NewHTTPProvider(config.FaceProviderURL, config.FaceProviderTimeout, logger)

	scanService := services.NewScanService(
		faceProvider,
		interestService,
		broadcaster,
		funnelService,
		sessionService,
		nil,
		services.ScanConfig{
			RevealDelays: [4]time.Duration{
				config.RevealStage1Delay,
				config.RevealStage2Delay,
				config.RevealStage3Delay,
				config.RevealStage4Delay,
			},
			RetryInterval: config.ScanRetryInterval,
			MaxAttempts:   config.ScanMaxAttempts,
			ConsentAge:    config.GuardianConsentAge,
		},
		logger,
		perfTracker,
	)

	analyticsService := services.NewAnalyticsService(writer, funnelService, sessionService, logger, perfTracker)
	leadService := services.NewLeadService(writer, funnelService, sessionService, mailer, logger)
	chatService := services.NewChatService(config.AssemblyAIAPIKey, logger, perfTracker)
	authService := services.NewAuthService(config.AdminPasswordHash, config.JWTSecret, config.JWTExpiry, logger)

	opsBroadcaster := messaging.NewOpsBroadcaster(sessionService, config.OpsTickInterval)

	return &Container{
		Logger:         logger,
		PerfTracker:    perfTracker,
		DB:             db,
		Store:          store,
		Writer:         writer,
		Broadcaster:    broadcaster,
		OpsBroadcaster: opsBroadcaster,
		FaceProvider:   faceProvider,
		Snapshots:      media.NewSnapshotProcessor(config.MediaBasePath),
		Mailer:         mailer,

		SessionService:   sessionService,
		FunnelService:    funnelService,
		InterestService:  interestService,
		ScanService:      scanService,
		ContentService:   contentService,
		AnalyticsService: analyticsService,
		LeadService:      leadService,
		ChatService:      chatService,
		AuthService:      authService,
	}, nil
}

// Close releases container-held resources in reverse dependency order.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
