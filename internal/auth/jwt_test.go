package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expires, err := m.Issue("session-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Issue("session-1")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).ParseAndValidate(token)
	assert.Error(t, err, "wrong secret")

	expired, _, err := NewTokenManager("secret", -time.Minute).Issue("session-1")
	require.NoError(t, err)
	_, err = m.ParseAndValidate(expired)
	assert.Error(t, err, "expired")

	_, err = m.ParseAndValidate("not-a-token")
	assert.Error(t, err)
}
