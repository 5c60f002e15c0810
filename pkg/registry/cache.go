package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/internal/metrics"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
)

// ErrCacheMiss is returned by a Cache that holds no entry for a document
var ErrCacheMiss = errors.New("registry cache miss")

// Cache stores registry records for a bounded time
type Cache interface {
	Get(ctx context.Context, doc attestation.IdentityDocument) (*Record, error)
	Set(ctx context.Context, r *Record) error
}

// Cached serves lookups from cache and falls back to the source registry on a miss.
// Cache failures are logged and never fail a lookup. Negative results are not cached.
type Cached struct {
	source Registry
	cache  Cache
	logger *zap.Logger
}

// NewCached creates a cache-aside registry
func NewCached(source Registry, cache Cache, logger *zap.Logger) *Cached {
	return &Cached{source: source, cache: cache, logger: logger}
}

// Lookup implements Registry
func (c *Cached) Lookup(ctx context.Context, doc attestation.IdentityDocument) (*Record, error) {
	r, err := c.cache.Get(ctx, doc)
	switch {
	case err == nil:
		metrics.RegistryCacheTotal.WithLabelValues("hit").Inc()
		return r, nil
	case errors.Is(err, ErrCacheMiss):
		metrics.RegistryCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.RegistryCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("registry cache read failed", zap.String("kind", string(doc.Kind)), zap.Error(err))
	}

	r, err = c.source.Lookup(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, r); err != nil {
		c.logger.Warn("registry cache write failed", zap.String("kind", string(doc.Kind)), zap.Error(err))
	}
	return r, nil
}

// RedisCache is a Cache backed by redis. Records are stored as JSON under
// prefix + kind + ":" + id and expire after ttl.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed cache
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(doc attestation.IdentityDocument) string {
	return c.prefix + string(doc.Kind) + ":" + doc.ID
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, doc attestation.IdentityDocument) (*Record, error) {
	raw, err := c.client.Get(ctx, c.key(doc)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode cached record: %w", err)
	}
	return &r, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, r *Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := c.client.Set(ctx, c.key(r.Document), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
