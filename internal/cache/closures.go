// Package cache keeps closure lists in redis between writes.
//
// Every key embeds a per-partner generation number. A closure write bumps the generation,
// which orphans all cached lists of that partner at once; orphans expire through their TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/metrics"
)

type ClosureLister interface {
	ListClosuresForLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error)
}

type ClosureCache struct {
	rdb  *redis.Client
	next ClosureLister
	ttl  time.Duration
}

// NewClosureCache wraps next. A nil client or a non-positive ttl turns the cache into a
// pass-through.
func NewClosureCache(rdb *redis.Client, next ClosureLister, ttl time.Duration) *ClosureCache {
	return &ClosureCache{rdb: rdb, next: next, ttl: ttl}
}

func (c *ClosureCache) enabled() bool {
	return c.rdb != nil && c.ttl > 0
}

// ListClosuresForLocation serves from redis when possible. Redis failures are logged and
// the call falls through to the store; store failures are returned unchanged.
func (c *ClosureCache) ListClosuresForLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error) {
	if !c.enabled() {
		return c.next.ListClosuresForLocation(ctx, partnerID, locationID)
	}

	gen, err := c.rdb.Get(ctx, generationKey(partnerID)).Int64()
	if err != nil && err != redis.Nil {
		slog.Warn("failed to read closure cache generation", "partner", partnerID, "error", err)
		return c.next.ListClosuresForLocation(ctx, partnerID, locationID)
	}

	key := listKey(partnerID, gen, locationID)
	if closures, ok := c.read(ctx, key); ok {
		metrics.IncCacheHit()
		return closures, nil
	}
	metrics.IncCacheMiss()

	closures, err := c.next.ListClosuresForLocation(ctx, partnerID, locationID)
	if err != nil {
		return nil, err
	}
	c.write(ctx, key, closures)
	return closures, nil
}

// Invalidate drops every cached list of the partner.
func (c *ClosureCache) Invalidate(ctx context.Context, partnerID uuid.UUID) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, generationKey(partnerID)).Err()
}

func (c *ClosureCache) read(ctx context.Context, key string) ([]domain.ClosureEntry, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("failed to read closure cache", "key", key, "error", err)
		}
		return nil, false
	}

	var closures []domain.ClosureEntry
	if err := json.Unmarshal(val, &closures); err != nil {
		slog.Warn("discarding undecodable closure cache entry", "key", key, "error", err)
		return nil, false
	}
	for i := range closures {
		closures[i].Normalize()
	}
	return closures, true
}

func (c *ClosureCache) write(ctx context.Context, key string, closures []domain.ClosureEntry) {
	data, err := json.Marshal(closures)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("failed to write closure cache", "key", key, "error", err)
	}
}

func generationKey(partnerID uuid.UUID) string {
	return fmt.Sprintf("closures:gen:%s", partnerID)
}

func listKey(partnerID uuid.UUID, gen int64, locationID uuid.UUID) string {
	return fmt.Sprintf("closures:%s:%d:%s", partnerID, gen, locationID)
}
