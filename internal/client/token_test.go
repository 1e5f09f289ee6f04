package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenExpired(t *testing.T) {
	t.Run("expired jwt", func(t *testing.T) {
		tok := signedJWT(t, time.Now().Add(-time.Minute))
		assert.True(t, tokenExpired(tok))
	})

	t.Run("valid jwt", func(t *testing.T) {
		tok := signedJWT(t, time.Now().Add(time.Hour))
		assert.False(t, tokenExpired(tok))
	})

	t.Run("opaque token", func(t *testing.T) {
		assert.False(t, tokenExpired("not-a-jwt"))
	})

	t.Run("empty token", func(t *testing.T) {
		assert.False(t, tokenExpired(""))
	})
}
