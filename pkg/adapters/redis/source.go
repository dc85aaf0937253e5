package redis

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel carries ingestion messages.
const DefaultChannel = "patchbay:ingest"

// Source implements ports.MessageSource over a Redis pub/sub channel.
type Source struct {
	client  *backend.Client
	channel string
}

// NewSource creates a Source listening on channel (DefaultChannel if empty).
func NewSource(client *backend.Client, channel string) *Source {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Source{client: client, channel: channel}
}

// Messages subscribes to the channel. The subscription is released when ctx ends.
func (s *Source) Messages(ctx context.Context) (<-chan []byte, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	// Wait for confirmation so no message published after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publish sends a raw message to the channel.
func (s *Source) Publish(ctx context.Context, raw []byte) error {
	if err := s.client.Publish(ctx, s.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", s.channel, err)
	}
	return nil
}
