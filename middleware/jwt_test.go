package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "test-jwt-secret-32bytes-padded!!"

func TestToken_RoundTrip(t *testing.T) {
	tok, err := GenerateToken(99, jwtSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseToken(tok, jwtSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.UserID)
}

func TestToken_ClaimsPerUser(t *testing.T) {
	t1, err := GenerateToken(1, jwtSecret, time.Hour)
	require.NoError(t, err)
	t2, err := GenerateToken(2, jwtSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	c1, err := ParseToken(t1, jwtSecret)
	require.NoError(t, err)
	c2, err := ParseToken(t2, jwtSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c1.UserID)
	assert.Equal(t, int64(2), c2.UserID)
}

func TestParseToken_Rejections(t *testing.T) {
	expired, err := GenerateToken(1, jwtSecret, -time.Second)
	require.NoError(t, err)
	foreign, err := GenerateToken(1, "some-other-secret", time.Hour)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"malformed":    "not.a.jwt",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(raw, jwtSecret)
			assert.Error(t, err)
		})
	}
}
