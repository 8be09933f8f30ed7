package token

import (
	"run_the_numbers/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := GenerateAccessToken(&model.User{ID: "u-1", IsAdmin: true}, secret, time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.True(t, claims.Admin)
}

func TestAccessTokenRejected(t *testing.T) {
	expired, err := GenerateAccessToken(&model.User{ID: "u-1"}, secret, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err := GenerateAccessToken(&model.User{ID: "u-1"}, secret, time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(tok, []byte("another-secret-another-secret-xx"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	plain, hash, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, hash)
	assert.True(t, VerifyRefreshToken(plain, hash))
	assert.False(t, VerifyRefreshToken(plain+"x", hash))
}
