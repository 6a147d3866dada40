package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire format delivered to channel subscribers.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RedisPublisher implements service.EventPublisher over Redis Pub/Sub.
// Delivery is at-most-once to current subscribers only; there is no replay.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	body, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event, err)
	}

	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}
