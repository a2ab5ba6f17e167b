package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(accessTTL time.Duration) *TokenManager {
	return NewTokenManager("access-secret-access-secret-xxxx", "refresh-secret-refresh-secret-yy", accessTTL, time.Hour)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := newTestTokens(time.Minute)
	pair, err := m.GeneratePair("user-1")
	require.NoError(t, err)

	claims, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	rc, err := m.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.UserID)
}

func TestTokenManager_TokensAreNotInterchangeable(t *testing.T) {
	m := newTestTokens(time.Minute)
	pair, err := m.GeneratePair("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = m.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestTokens(-time.Minute)
	pair, err := m.GeneratePair("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRandDigits(t *testing.T) {
	code, err := RandDigits(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}
