package services

import (
	"context"
	"time"

	"github.com/glossahub/glossahub-backend/internal/database"
)

// MailRateLimitKeyPrefix is the Redis key prefix for the contact relay counter.
const MailRateLimitKeyPrefix = "mail_ratelimit:"

// CheckMailRateLimit reports whether the given client identity may send
// another contact/hosting message. Counting is a redis INCR with a window
// TTL; redis failure allows the request (fail open, matching the per-IP
// middleware behavior).
func CheckMailRateLimit(identity string, max int, window time.Duration) bool {
	ctx := context.Background()
	key := MailRateLimitKeyPrefix + identity

	count, err := database.RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		database.RedisClient.Expire(ctx, key, window)
	}

	return count <= int64(max)
}
