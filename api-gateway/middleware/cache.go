package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/freshsave/pkg/logger"
)

const cachePrefix = "cache:"

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL       time.Duration
	CacheableMethods []string
	CacheableStatus  []int
	// SkipPrefixes are never cached: per-user data and scans that must reach
	// the resolver every time.
	SkipPrefixes []string
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:       5 * time.Minute,
		CacheableMethods: []string{"GET", "HEAD"},
		CacheableStatus:  []int{200},
		SkipPrefixes:     []string{"/api/scan", "/api/favorites", "/health", "/metrics", "/gateway"},
	}
}

// CacheMiddleware caches public GET responses in Redis. A successful write
// anywhere under /api drops every cached response.
func CacheMiddleware(redisClient redis.Cmdable, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || skipCache(c.Path(), config.SkipPrefixes) {
			return c.Next()
		}

		ctx := c.UserContext()

		if !contains(config.CacheableMethods, c.Method()) {
			err := c.Next()
			if err == nil && c.Response().StatusCode() < 400 && strings.HasPrefix(c.Path(), "/api/") {
				if ierr := InvalidateCache(ctx, redisClient, cachePrefix+"/api/*"); ierr != nil {
					logger.WithContext(ctx).Warn().Err(ierr).Msg("Failed to invalidate cache")
				}
			}
			return err
		}

		cacheKey := generateCacheKey(c)

		cachedResponse, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cachedResponse) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", fiber.MIMEApplicationJSON)
			return c.Send(cachedResponse)
		}

		err = c.Next()

		if err == nil && containsInt(config.CacheableStatus, c.Response().StatusCode()) {
			responseBody := c.Response().Body()
			if err := redisClient.Set(ctx, cacheKey, responseBody, config.DefaultTTL).Err(); err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// generateCacheKey keeps the path readable so invalidation can match on it.
// Query string and Authorization header are hashed.
func generateCacheKey(c *fiber.Ctx) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s",
		c.Method(),
		string(c.Request().URI().QueryString()),
		c.Get("Authorization"),
	)))
	return cachePrefix + c.Path() + ":" + hex.EncodeToString(hash[:8])
}

func skipCache(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// InvalidateCache deletes every key matching pattern.
func InvalidateCache(ctx context.Context, redisClient redis.Cmdable, pattern string) error {
	iter := redisClient.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := redisClient.Del(ctx, keys...).Err(); err != nil {
			return err
		}
		logger.Logger.Debug().
			Int("count", len(keys)).
			Str("pattern", pattern).
			Msg("Cache invalidated")
	}
	return nil
}
