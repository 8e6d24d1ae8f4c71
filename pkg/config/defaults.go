// Package config provides centralized default values for the PathFinder kiosk
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver                 string
	DBDataSource             string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Scan Pipeline
	TopInterestCount    int
	GuardianConsentAge  int
	ScanMaxAttempts     int
	ScanRetryInterval   time.Duration
	RevealStage1Delay   time.Duration
	RevealStage2Delay   time.Duration
	RevealStage3Delay   time.Duration
	RevealStage4Delay   time.Duration
	FaceProviderURL     string
	FaceProviderTimeout time.Duration

	// SSE Configuration
	MaxSessionConnections       int
	SSEHeartbeatIntervalSeconds int

	// Media
	MediaBasePath string

	// Admin Authentication
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiry         time.Duration

	// Ops console
	OpsTickInterval time.Duration

	// Assistant chat
	AssemblyAIAPIKey string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Configuration
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBDataSource = getEnvString("DB_DATA_SOURCE", "pathfinder.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Scan Pipeline
	TopInterestCount = getEnvInt("TOP_INTEREST_COUNT", 3)
	GuardianConsentAge = getEnvInt("GUARDIAN_CONSENT_AGE", 13)
	ScanMaxAttempts = getEnvInt("SCAN_MAX_ATTEMPTS", 5)
	ScanRetryInterval = getEnvDuration("SCAN_RETRY_INTERVAL", 2*time.Second)
	RevealStage1Delay = getEnvDuration("REVEAL_STAGE1_DELAY", 1*time.Second)
	RevealStage2Delay = getEnvDuration("REVEAL_STAGE2_DELAY", 3*time.Second)
	RevealStage3Delay = getEnvDuration("REVEAL_STAGE3_DELAY", 5500*time.Millisecond)
	RevealStage4Delay = getEnvDuration("REVEAL_STAGE4_DELAY", 8*time.Second)
	FaceProviderURL = getEnvString("FACE_PROVIDER_URL", "http://127.0.0.1:9090")
	FaceProviderTimeout = getEnvDuration("FACE_PROVIDER_TIMEOUT", 10*time.Second)

	// SSE Configuration
	MaxSessionConnections = getEnvInt("MAX_SESSION_CONNECTIONS", 3)
	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)

	// Media
	MediaBasePath = getEnvString("MEDIA_BASE_PATH", "media")

	// Admin Authentication
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	JWTSecret = getEnvString("JWT_SECRET", "")
	JWTExpiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

	// Ops console
	OpsTickInterval = getEnvDuration("OPS_TICK_INTERVAL", 20*time.Second)

	// Assistant chat
	AssemblyAIAPIKey = getEnvString("AAI_API_KEY", "")
}
