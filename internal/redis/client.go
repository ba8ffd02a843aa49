package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Client wraps the Redis client backing the change stream.
// A single shared client is used by the publisher and the stream consumer.
type Client struct {
	*redis.Client
}

// Connect creates a client from the given URL and verifies it is reachable.
// URL format: redis://[:password@]host:port[/db]
func Connect(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := &Client{Client: redis.NewClient(opts)}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Ping verifies the connection to Redis. It backs the health check.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// StreamLength reports how many change events are retained in stream.
func (c *Client) StreamLength(ctx context.Context, stream string) (int64, error) {
	n, err := c.XLen(ctx, stream).Result()
	if err != nil {
		return 0, fmt.Errorf("redis xlen %s: %w", stream, err)
	}
	return n, nil
}
