package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"guestbook/internal/model"
)

const (
	// PopularCacheKey is the hash holding one popular list per requested limit
	PopularCacheKey = "cache:popular"

	// PopularGenerationKey is bumped by every invalidation
	PopularGenerationKey = "cache:popular:gen"

	// PopularCacheTTL bounds staleness when an invalidation is missed
	PopularCacheTTL = 30 * time.Second
)

// PopularCache holds the most-liked message lists between like changes.
// The paginated feed is never cached; only the popular sidebar is.
type PopularCache interface {
	// Get returns the cached list for limit. found is false on a miss.
	// gen is the invalidation generation seen by this read; pass it to Set.
	Get(ctx context.Context, limit int) (items []model.Message, gen int64, found bool, err error)

	// Set stores the list for limit and refreshes the TTL, unless an
	// invalidation ran after the Get that returned gen.
	// Uses WATCH on the generation key + MULTI: HSET + EXPIRE
	Set(ctx context.Context, limit int, gen int64, items []model.Message) error

	// Invalidate drops every cached list and bumps the generation.
	Invalidate(ctx context.Context) error
}

// RedisPopularCache implements PopularCache with a Redis hash keyed by limit.
type RedisPopularCache struct {
	client *redis.Client
}

// NewPopularCache creates a new PopularCache backed by Redis.
func NewPopularCache(client *redis.Client) PopularCache {
	return &RedisPopularCache{client: client}
}

func (c *RedisPopularCache) Get(ctx context.Context, limit int) ([]model.Message, int64, bool, error) {
	pipe := c.client.Pipeline()
	genCmd := pipe.Get(ctx, PopularGenerationKey)
	itemCmd := pipe.HGet(ctx, PopularCacheKey, strconv.Itoa(limit))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[PopularCache] Get FAILED: limit=%d err=%v", limit, err)
		return nil, 0, false, fmt.Errorf("get popular cache: %w", err)
	}

	gen, err := readGeneration(genCmd)
	if err != nil {
		return nil, 0, false, fmt.Errorf("get popular generation: %w", err)
	}

	raw, err := itemCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("get popular cache: %w", err)
	}

	var items []model.Message
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it
		log.Printf("[PopularCache] Get decode error: limit=%d err=%v", limit, err)
		return nil, gen, false, nil
	}
	return items, gen, true, nil
}

func (c *RedisPopularCache) Set(ctx context.Context, limit int, gen int64, items []model.Message) error {
	startTime := time.Now()

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode popular cache: %w", err)
	}

	stale := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(tx.Get(ctx, PopularGenerationKey))
		if err != nil {
			return err
		}
		if current != gen {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, PopularCacheKey, strconv.Itoa(limit), raw)
			pipe.Expire(ctx, PopularCacheKey, PopularCacheTTL)
			return nil
		})
		return err
	}, PopularGenerationKey)

	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated between the generation check and EXEC
		stale, err = true, nil
	}
	if err != nil {
		log.Printf("[PopularCache] Set FAILED: limit=%d err=%v", limit, err)
		return fmt.Errorf("set popular cache: %w", err)
	}
	if stale {
		log.Printf("[PopularCache] Set skipped: limit=%d gen=%d is stale", limit, gen)
		return nil
	}

	log.Printf("[PopularCache] Set OK: limit=%d items=%d duration=%v", limit, len(items), time.Since(startTime))
	return nil
}

func (c *RedisPopularCache) Invalidate(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, PopularGenerationKey)
	pipe.Del(ctx, PopularCacheKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[PopularCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("invalidate popular cache: %w", err)
	}
	return nil
}

// readGeneration treats a missing generation key as generation 0.
func readGeneration(cmd *redis.StringCmd) (int64, error) {
	gen, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
