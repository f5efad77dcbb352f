// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"khabarcms/internal/models"
)

const (
	// listKeyPrefix is the Valkey key prefix for cached post listings.
	listKeyPrefix = "posts:list:"

	// generationKey counts list cache clears. It sits outside listKeyPrefix
	// so Clear never unlinks it.
	generationKey = "posts:generation"

	// DefaultListTTL is how long a listing stays cached.
	DefaultListTTL = 30 * time.Second

	clearBatch = 100
)

// errStale aborts a Set whose generation has moved on.
var errStale = errors.New("list cache generation changed")

// ListCache stores post listings as JSON in Valkey, keyed by the
// normalized filter. Errors are logged and treated as misses.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a listing cache backed by the given Valkey client.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Get returns the cached listing for key.
func (lc *ListCache) Get(ctx context.Context, key string) ([]models.Post, bool) {
	val, err := lc.client.Get(ctx, listKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("list cache get error", "key", key, "error", err)
		return nil, false
	}

	var posts []models.Post
	if err := json.Unmarshal(val, &posts); err != nil {
		slog.Warn("list cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("list cache hit", "key", key)
	return posts, true
}

// Generation returns the current clear count. ok is false when Valkey
// cannot be read, in which case callers skip the cache.
func (lc *ListCache) Generation(ctx context.Context) (uint64, bool) {
	gen, err := lc.client.Get(ctx, generationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("list cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Set stores a listing under key with the configured TTL, provided no Clear
// has run since gen was read. The check and the write share one WATCH
// transaction.
func (lc *ListCache) Set(ctx context.Context, key string, gen uint64, posts []models.Post) {
	payload, err := json.Marshal(posts)
	if err != nil {
		slog.Warn("list cache encode error", "key", key, "error", err)
		return
	}

	err = lc.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listKeyPrefix+key, payload, lc.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		slog.Debug("list cache skipped stale listing", "key", key, "generation", gen)
	default:
		slog.Warn("list cache set error", "key", key, "error", err)
	}
}

// Clear advances the generation and removes every cached listing. Keys are
// unlinked in batches as the scan finds them.
func (lc *ListCache) Clear(ctx context.Context) {
	if err := lc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("list cache generation bump error", "error", err)
	}

	iter := lc.client.Scan(ctx, 0, listKeyPrefix+"*", clearBatch).Iterator()
	batch := make([]string, 0, clearBatch)
	removed := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := lc.client.Unlink(ctx, batch...).Err(); err != nil {
			slog.Warn("list cache unlink error", "keys", len(batch), "error", err)
		} else {
			removed += len(batch)
		}
		batch = batch[:0]
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			flush()
		}
	}
	flush()

	if err := iter.Err(); err != nil {
		slog.Warn("list cache scan error", "error", err)
	}
	if removed > 0 {
		slog.Debug("list cache cleared", "removed", removed)
	}
}
