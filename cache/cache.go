// Package cache provides chunk translation caches. A cache lets a run that
// failed halfway be repeated without paying for the chunks that already
// succeeded.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotdoc"
)

// TranslationCache is the interface for chunk translation caching.
type TranslationCache = gotdoc.TranslationCache

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend    string        // none, memory, redis or sqlite
	TTL        time.Duration // Entry lifetime, 0 = no expiration
	RedisURL   string        // Used by the redis backend
	SQLitePath string        // Used by the sqlite backend
	KeyPrefix  string        // Redis key prefix (default: "gotdoc:")
}

// Open creates the cache selected by cfg. It returns nil, nil for the none
// backend. Caches holding connections implement io.Closer.
func Open(ctx context.Context, cfg Config) (TranslationCache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewInMemoryCache(cfg.TTL), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{URL: cfg.RedisURL, TTL: cfg.TTL, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			return nil, &gotdoc.CacheError{Message: "connecting to redis", Cause: err}
		}
		return c, nil
	case BackendSQLite:
		c, err := NewSQLiteCache(ctx, SQLiteConfig{Path: cfg.SQLitePath, TTL: cfg.TTL})
		if err != nil {
			return nil, &gotdoc.CacheError{Message: "opening sqlite cache", Cause: err}
		}
		return c, nil
	default:
		return nil, &gotdoc.CacheError{Message: fmt.Sprintf("unknown cache backend %q", cfg.Backend)}
	}
}
