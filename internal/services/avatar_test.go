package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGravatarURL(t *testing.T) {
	// md5 is computed over the trimmed, lowercased address
	url := GravatarURL(" Jane@Example.COM ", 80)
	assert.Equal(t, GravatarURL("jane@example.com", 80), url)
	assert.Contains(t, url, "s=80")
	assert.Contains(t, url, "d=identicon")
}

func TestFallbackAvatarURL(t *testing.T) {
	url := FallbackAvatarURL(32)
	assert.Contains(t, url, "d=mp")
	assert.Contains(t, url, "s=32")
}

func TestAvatarSizes(t *testing.T) {
	for _, size := range []int{24, 32, 80, 128} {
		assert.True(t, AvatarSizes[size], "size %d", size)
	}
	assert.False(t, AvatarSizes[100])
}

func TestCacheService(t *testing.T) {
	newTestRedis(t)

	_, ok := Cache.GetBytes("missing")
	assert.False(t, ok)

	require.NoError(t, Cache.SetBytes("avatar", []byte{1, 2, 3}, time.Minute))
	data, ok := Cache.GetBytes("avatar")
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, Cache.Delete("avatar"))
	_, ok = Cache.GetBytes("avatar")
	assert.False(t, ok)
}
