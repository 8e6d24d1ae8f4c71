package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("secret-key", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "secret-key")
	require.NoError(t, err)
	assert.True(t, IsAdminClaims(claims))
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateAdminToken("secret-key", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-key")
	assert.Error(t, err)
}

func TestValidateJWTExpiredToken(t *testing.T) {
	token, err := GenerateAdminToken("secret-key", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-key")
	assert.Error(t, err)
}

func TestGenerateULIDIsSortableAndUnique(t *testing.T) {
	first := GenerateULID()
	second := GenerateULID()

	assert.Len(t, first, 26)
	assert.NotEqual(t, first, second)
}
