// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lannapoly/pathfinder-go/internal/application/container"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
	"github.com/lannapoly/pathfinder-go/internal/presentation/http/server"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// sessionEvictInterval controls how often dormant in-memory sessions are
// dropped. Stored records are unaffected.
const (
	sessionEvictInterval = 10 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
)

// Initialize performs the complete kiosk startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  ____       _   _     _____ _           _
 |  _ \ __ _| |_| |__ |  ___(_)_ __   __| | ___ _ __
 | |_) / _` + "`" + ` | __| '_ \| |_  | | '_ \ / _` + "`" + ` |/ _ \ '__|
 |  __/ (_| | |_| | | |  _| | | | | | (_| |  __/ |
 |_|   \__,_|\__|_| |_|_|   |_|_| |_|\__,_|\___|_|
` + "\033[97m" + `
  Lanna Polytechnic College career-guidance kiosk
` + "\033[0m")

	// Step 1: Channeled logging comes up first so every later phase is logged.
	log.Println("Initializing...")
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	// Step 2: Performance tracking.
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	startupMarker := perfTracker.StartOperation("application_startup", "")

	// Step 3: Dependency injection container (database, stores, services).
	containerStart := time.Now()
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(logger, perfTracker)
	if err != nil {
		startupMarker.SetError(err)
		perfTracker.CompleteOperation(startupMarker)
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.LogStartupPhase("container_build", time.Since(containerStart), true, nil)

	// Step 4: Background workers.
	logger.Startup().Info("Starting ops broadcaster...")
	go appContainer.OpsBroadcaster.Run()

	logger.Startup().Info("Starting session eviction worker...")
	go func() {
		ticker := time.NewTicker(sessionEvictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := appContainer.SessionService.Evict(sessionMaxIdle)
				for _, sessionID := range evicted {
					appContainer.ScanService.Drop(sessionID)
				}
				if len(evicted) > 0 {
					logger.System().Info("Evicted dormant sessions", "count", len(evicted))
				}
			}
		}
	}()

	// Step 5: HTTP server.
	serverStart := time.Now()
	httpServer := server.New(config.Port, appContainer)
	logger.LogStartupPhase("http_server_init", time.Since(serverStart), true, map[string]any{
		"port": config.Port,
	})

	// Step 6: Graceful shutdown wiring.
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	startupMarker.SetSuccess(true)
	perfTracker.CompleteOperation(startupMarker)
	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing container resources...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing container", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))
	logger.Close()

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
