package services

import (
	"context"
	"time"

	"github.com/glossahub/glossahub-backend/internal/database"
)

// CacheKeyPrefix is the Redis key prefix for cached data
const CacheKeyPrefix = "cache:"

// CacheService provides redis-backed caching, used for avatar images.
type CacheService struct{}

// GetBytes retrieves raw bytes from cache. A miss is not an error.
func (c *CacheService) GetBytes(key string) ([]byte, bool) {
	ctx := context.Background()
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetBytes stores raw bytes in cache with the given TTL.
func (c *CacheService) SetBytes(key string, value []byte, ttl time.Duration) error {
	ctx := context.Background()
	return database.RedisClient.Set(ctx, CacheKeyPrefix+key, value, ttl).Err()
}

// Delete removes a value from cache
func (c *CacheService) Delete(key string) error {
	ctx := context.Background()
	return database.RedisClient.Del(ctx, CacheKeyPrefix+key).Err()
}

// Global cache service instance
var Cache = &CacheService{}
