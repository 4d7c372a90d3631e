// Package cache memoizes ranked recommendation results in Redis.
//
// The scoring core itself never caches; this is an explicit
// collaborator keyed by a fingerprint of the full ranking request,
// with caller-controlled invalidation (the admin popularity
// recalculation flushes it).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamio/tripscout/internal/recommend"
)

const (
	defaultTTL = 10 * time.Minute
	keyPrefix  = "recommendations:"
)

// Cache wraps a Redis client and provides typed get/set/invalidate
// for ranked recommendation lists.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 10-minute TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// Connect parses redisURL, creates a client, and verifies
// connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Fingerprint derives a stable cache key from a ranking request. Two
// requests with identical filters, sort, limit, duration, currency,
// and user location share a key.
func Fingerprint(req recommend.Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request for fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get retrieves a ranked result set by fingerprint.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, key string) ([]recommend.Recommendation, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var recs []recommend.Recommendation
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, fmt.Errorf("unmarshaling cached recommendations: %w", err)
	}
	return recs, nil
}

// Set stores a ranked result set under the given fingerprint with the
// configured TTL. An empty result set is cached too: "no matches" is
// a valid, repeatable answer.
func (c *Cache) Set(ctx context.Context, key string, recs []recommend.Recommendation) error {
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling recommendations for cache: %w", err)
	}

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every cached recommendation result. Used after
// the popularity batch job changes the scores feeding the ranker.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	return nil
}
