package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatsync_errors "chatsync/pkg/errors"
)

func signToken(t *testing.T, secret []byte, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestParseAccessToken(t *testing.T) {
	secret := []byte("test-secret")
	token := signToken(t, secret, "user-1", time.Hour)

	claims, err := ParseAccessToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseAccessTokenRejectsBadInput(t *testing.T) {
	secret := []byte("test-secret")

	_, err := ParseAccessToken(secret, "")
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)

	other := signToken(t, []byte("other-secret"), "user-1", time.Hour)
	_, err = ParseAccessToken(secret, other)
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)

	expired := signToken(t, secret, "user-1", -time.Hour)
	_, err = ParseAccessToken(secret, expired)
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)

	missingUser := signToken(t, secret, "", time.Hour)
	_, err = ParseAccessToken(secret, missingUser)
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)
}
