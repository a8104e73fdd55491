package events

import (
	"context"
	"fmt"

	amredis "github.com/PSM90/fuorid20-arena-market/pkg/redis"
)

// RedisTransport mirrors envelopes over a Redis pub/sub channel.
type RedisTransport struct {
	client  *amredis.Client
	channel string
}

// NewRedisTransport wires the transport to a channel on the given client.
func NewRedisTransport(client *amredis.Client, channel string) (*RedisTransport, error) {
	if client == nil {
		return nil, fmt.Errorf("events: redis client is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("events: channel name is required")
	}
	return &RedisTransport{client: client, channel: channel}, nil
}

// Publish sends one serialized envelope to the channel.
func (t *RedisTransport) Publish(ctx context.Context, payload []byte) error {
	return t.client.Publish(ctx, t.channel, payload)
}

// Subscribe opens the channel and returns a message stream plus a closer.
func (t *RedisTransport) Subscribe(ctx context.Context) (<-chan []byte, func() error, error) {
	sub, err := t.client.Subscribe(ctx, t.channel)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}
