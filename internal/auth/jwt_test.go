package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/permission"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "capybara", "moderator", false, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	p, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), p.ID)
	assert.Equal(t, "capybara", p.Username)
	assert.Equal(t, permission.RoleModerator, p.Role)
	assert.False(t, p.Superuser)
	assert.True(t, p.Authenticated)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "u", "user", false, 15)
	require.NoError(t, err)

	p, err := ParseAccessToken("another-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, p.Authenticated)
}

func TestParseAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "u", "user", false, -5)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// A forged role claim outside the closed set must degrade to plain
// user, never escalate.
func TestParseAccessTokenUnknownRoleDegrades(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":      float64(5),
		"username": "u",
		"role":     "root",
		"su":       false,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	p, err := ParseAccessToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, permission.RoleUser, p.Role)
}

func TestParseAccessTokenMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"username": "u",
		"role":     "user",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
