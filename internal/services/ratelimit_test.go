package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckMailRateLimit(t *testing.T) {
	newTestRedis(t)

	for i := 0; i < 5; i++ {
		assert.True(t, CheckMailRateLimit("10.0.0.1", 5, time.Hour), "request %d should pass", i+1)
	}
	assert.False(t, CheckMailRateLimit("10.0.0.1", 5, time.Hour))

	// Other identities keep their own budget
	assert.True(t, CheckMailRateLimit("10.0.0.2", 5, time.Hour))
}

func TestCheckMailRateLimitWindowExpiry(t *testing.T) {
	mr := newTestRedis(t)

	assert.True(t, CheckMailRateLimit("10.0.0.3", 1, time.Minute))
	assert.False(t, CheckMailRateLimit("10.0.0.3", 1, time.Minute))

	mr.FastForward(2 * time.Minute)

	assert.True(t, CheckMailRateLimit("10.0.0.3", 1, time.Minute))
}

func TestCheckMailRateLimitFailsOpen(t *testing.T) {
	mr := newTestRedis(t)
	mr.Close()

	assert.True(t, CheckMailRateLimit("10.0.0.4", 1, time.Minute))
}
