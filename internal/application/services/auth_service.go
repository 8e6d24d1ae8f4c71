package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/security"
)

// ErrInvalidCredentials is returned for a wrong password. The handler maps it
// to a 401 without leaking which check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates the admin console. The kiosk itself is
// unauthenticated; only the dashboard behind /api/v1/admin needs a token.
type AuthService struct {
	passwordHash string
	jwtSecret    string
	tokenExpiry  time.Duration
	logger       *logging.ChanneledLogger
}

// NewAuthService creates the admin authenticator. A password hash without a
// configured JWT secret gets an ephemeral signing key; admin tokens then stop
// validating on restart.
func NewAuthService(passwordHash, jwtSecret string, tokenExpiry time.Duration, logger *logging.ChanneledLogger) *AuthService {
	if passwordHash != "" && jwtSecret == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			logger.Auth().Error("Ephemeral signing key generation failed", "error", err.Error())
		} else {
			jwtSecret = key
			logger.Auth().Warn("JWT_SECRET not configured, using an ephemeral signing key")
		}
	}
	return &AuthService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
}

// Enabled reports whether admin login is configured at all.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != "" && s.jwtSecret != ""
}

// Login checks the admin password and mints a JWT on success.
func (s *AuthService) Login(password string) (string, error) {
	if !s.Enabled() {
		s.logger.Auth().Warn("Admin login attempted but authentication is not configured")
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.logger.LogAuthOperation("admin_login", false, nil)
		return "", ErrInvalidCredentials
	}

	token, err := security.GenerateAdminToken(s.jwtSecret, s.tokenExpiry)
	if err != nil {
		s.logger.Auth().Error("Admin token generation failed", "error", err.Error())
		return "", err
	}

	s.logger.LogAuthOperation("admin_login", true, map[string]any{
		"expiresIn": s.tokenExpiry.String(),
	})
	return token, nil
}

// ValidateToken checks an admin bearer token.
func (s *AuthService) ValidateToken(token string) bool {
	if !s.Enabled() {
		return false
	}
	claims, err := security.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return false
	}
	return security.IsAdminClaims(claims)
}
