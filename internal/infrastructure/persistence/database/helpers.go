// Package database provides database helper functions
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/pkg/config"
)

// VerifyConnection proves the database answers queries. Ping is a no-op for
// the libsql HTTP driver, so a SELECT round trip is the only reliable check
// before the schema runs.
func VerifyConnection(db *sql.DB, driverName string, logger *logging.ChanneledLogger) error {
	start := time.Now()

	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		logger.Database().Error("Connection verification query failed", "error", err.Error(), "driverName", driverName)
		return fmt.Errorf("connection verification failed: %w", err)
	}

	if result != 1 {
		logger.Database().Error("Unexpected verification query result", "result", result, "driverName", driverName)
		return fmt.Errorf("unexpected query result: %d", result)
	}

	logger.Database().Info("Database connection verified", "driverName", driverName, "duration", time.Since(start))
	return nil
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds threshold
// and logs it using the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if duration > GetSlowQueryThreshold() {
		logger.LogSlowQuery(query, duration)
	}
}
