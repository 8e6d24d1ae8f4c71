package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(string(hash), "test-jwt-secret", time.Hour, testLogger(t))
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newTestAuthService(t, "kiosk-admin")

	token, err := svc.Login("kiosk-admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, svc.ValidateToken(token))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t, "kiosk-admin")

	_, err := svc.Login("guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newTestAuthService(t, "kiosk-admin")
	assert.False(t, svc.ValidateToken("not-a-jwt"))
	assert.False(t, svc.ValidateToken(""))
}

func TestLoginWithEphemeralSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("kiosk-admin"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(string(hash), "", time.Hour, testLogger(t))
	require.True(t, svc.Enabled())

	token, err := svc.Login("kiosk-admin")
	require.NoError(t, err)
	assert.True(t, svc.ValidateToken(token))

	// A second service generates its own key, so tokens do not cross over.
	other := NewAuthService(string(hash), "", time.Hour, testLogger(t))
	assert.False(t, other.ValidateToken(token))
}

func TestLoginDisabledWhenUnconfigured(t *testing.T) {
	svc := NewAuthService("", "", time.Hour, testLogger(t))
	assert.False(t, svc.Enabled())

	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, svc.ValidateToken("anything"))
}
