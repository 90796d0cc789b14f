package observer

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher adapts *redis.Client to the Publisher interface Sink
// consumes.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing go-redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish issues a Redis PUBLISH on channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, message any) error {
	return p.client.Publish(ctx, channel, message).Err()
}
