package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestVerifyTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), testSecret, time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, testSecret)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	_, err := VerifyToken("not.a.token", testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeWithoutVerifyAcceptsExpired(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, testSecret, -time.Hour)
	require.NoError(t, err)

	claims, err := DecodeWithoutVerify(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
}
