// Package cache shares the loaded dashboard snapshot between replicas via Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/logging"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SnapshotCacheEntry wraps a cached snapshot with metadata.
type SnapshotCacheEntry struct {
	Snapshot *models.Snapshot `json:"snapshot"`
	CachedAt time.Time        `json:"cached_at"`
}

// SnapshotCacheStats tracks cache performance metrics
type SnapshotCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisSnapshotCache stores the current snapshot under a single key. Entries
// carry no TTL: a snapshot stays valid until the next refresh replaces it.
type RedisSnapshotCache struct {
	redis  *redis.Client
	key    string
	stats  *SnapshotCacheStats
	logger *logrus.Entry
}

// NewRedisSnapshotCache creates a Redis-backed snapshot cache.
func NewRedisSnapshotCache(redisClient *redis.Client, key string, logger logrus.FieldLogger) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		redis:  redisClient,
		key:    key,
		stats:  &SnapshotCacheStats{},
		logger: logging.WithComponent(logger, "snapshot_cache"),
	}
}

// Get returns the cached snapshot. Any Redis or decode failure is a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context) (*models.Snapshot, bool) {
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("Redis error reading snapshot")
		c.miss()
		return nil, false
	}

	var entry SnapshotCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Snapshot == nil {
		c.logger.WithError(err).Warn("Discarding undecodable cached snapshot")
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"snapshot_id": entry.Snapshot.ID.String(),
		"cached_at":   entry.CachedAt,
	}).Debug("Snapshot cache hit")
	return entry.Snapshot, true
}

// Set replaces the cached snapshot.
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot == nil {
		return errors.New("cannot cache nil snapshot")
	}

	data, err := json.Marshal(SnapshotCacheEntry{Snapshot: snapshot, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	if err := c.redis.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID.String(),
		"bytes":       len(data),
	}).Info("Cached snapshot")
	return nil
}

// Invalidate removes the cached snapshot.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}

// GetStats returns current cache statistics
func (c *RedisSnapshotCache) GetStats() SnapshotCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return SnapshotCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

func (c *RedisSnapshotCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
