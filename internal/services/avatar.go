package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Allowed avatar sizes.
var AvatarSizes = map[int]bool{24: true, 32: true, 80: true, 128: true}

const (
	avatarCacheTTL   = 24 * time.Hour
	gravatarEndpoint = "https://www.gravatar.com/avatar"
)

var avatarHTTPClient = &http.Client{Timeout: 10 * time.Second}

func emailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// GravatarURL returns the Gravatar URL for an email at the given size.
func GravatarURL(email string, size int) string {
	return fmt.Sprintf("%s/%s?d=identicon&s=%d", gravatarEndpoint, emailHash(email), size)
}

// FallbackAvatarURL is the static avatar used for system accounts.
func FallbackAvatarURL(size int) string {
	return fmt.Sprintf("%s/?d=mp&s=%d", gravatarEndpoint, size)
}

// GetAvatarImage returns the avatar PNG for an email, fetching from Gravatar
// and caching the bytes in redis for a day.
func GetAvatarImage(email string, size int) ([]byte, error) {
	cacheKey := fmt.Sprintf("avatar:%s:%d", emailHash(email), size)
	if data, ok := Cache.GetBytes(cacheKey); ok {
		return data, nil
	}

	resp, err := avatarHTTPClient.Get(GravatarURL(email, size))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Cache failures are not fatal, the image is already in hand
	Cache.SetBytes(cacheKey, data, avatarCacheTTL)

	return data, nil
}
