package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event ChangeEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD, trimming it to roughly StreamMaxLen entries.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ChangeEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s table=%s event=%s err=%v", stream, event.Table, event.Event, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	// XADD stream MAXLEN ~ n * field value [field value ...]
	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: StreamMaxLen,
		Approx: true,
		Values: values,
	}).Result()

	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s table=%s event=%s err=%v", stream, event.Table, event.Event, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s table=%s event=%s id=%s msgID=%s duration=%v",
		stream, event.Table, event.Event, event.AffectedID, messageID, time.Since(startTime))

	return messageID, nil
}
