package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
)

// NodeSink receives normalized nodes. *graph.Store satisfies it.
type NodeSink interface {
	AddNodes(nodes ...domain.Node) []string
}

// Channel normalizes inbound device records and appends them to a sink.
type Channel struct {
	sink       NodeSink
	normalizer *Normalizer
	logger     *slog.Logger
}

// Option configures the Channel.
type Option func(*Channel)

// WithLogger configures a logger for the Channel.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// WithNormalizer replaces the default Normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(c *Channel) {
		c.normalizer = n
	}
}

// NewChannel creates a Channel writing into sink.
func NewChannel(sink NodeSink, opts ...Option) *Channel {
	c := &Channel{
		sink:   sink,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.normalizer == nil {
		c.normalizer = NewNormalizer()
	}
	return c
}

// Handle decodes one raw message and ingests its payload.
// Messages with another discriminator are ignored. It returns the ids of the added nodes.
func (c *Channel) Handle(raw []byte) ([]string, error) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		c.logger.Warn("Dropping malformed message", "err", err, "size", len(raw))
		return nil, err
	}
	if msg.Kind != KindAddNodes {
		c.logger.Debug("Ignoring message", "type", msg.Type)
		return nil, nil
	}
	return c.ingestEntries(msg.Entries), nil
}

// Ingest normalizes a decoded payload (one record or a sequence) and appends it.
func (c *Channel) Ingest(payload any) []string {
	return c.ingestEntries(Entries(payload))
}

// Normalize converts payload entries into nodes without touching the sink.
// Non-object entries are skipped.
func (c *Channel) Normalize(entries []any) []domain.Node {
	nodes := make([]domain.Node, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			c.logger.Warn("Skipping non-object device record", "index", i, "type", fmt.Sprintf("%T", entry))
			continue
		}
		rec, err := DecodeRecord(raw)
		if err != nil {
			c.logger.Warn("Device record repaired with defaults", "index", i, "err", err)
		}
		nodes = append(nodes, c.normalizer.Node(rec))
	}
	return nodes
}

func (c *Channel) ingestEntries(entries []any) []string {
	nodes := c.Normalize(entries)
	if len(nodes) == 0 {
		return nil
	}
	added := c.sink.AddNodes(nodes...)
	c.logger.Info("Ingested devices", "received", len(entries), "added", len(added))
	return added
}

// Subscription is an active binding between a Channel and a MessageSource.
// It owns one goroutine, released by Close.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Subscribe starts pumping messages from src into the channel until ctx ends,
// the source is exhausted, or the returned Subscription is closed.
func (c *Channel) Subscribe(ctx context.Context, src ports.MessageSource) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	messages, err := src.Messages(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to message source: %w", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.Canceled) {
					sub.err = ctx.Err()
				}
				return
			case raw, ok := <-messages:
				if !ok {
					return
				}
				// Errors are already logged; a bad message never stops the listener.
				_, _ = c.Handle(raw)
			}
		}
	}()
	return sub, nil
}

// Done is closed once the listener has stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close stops the listener and waits for it to exit.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	return s.err
}
