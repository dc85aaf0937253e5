package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Source implements ports.MessageSource over an in-process queue.
// It stands in for the host page posting messages to the editor.
type Source struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// NewSource creates a Source buffering up to size messages.
func NewSource(size int) *Source {
	return &Source{ch: make(chan []byte, size)}
}

// NewSourceFrom creates a Source preloaded with the given messages, closed after them.
// Each value is marshaled to JSON, which keeps test fixtures readable.
func NewSourceFrom(messages ...any) (*Source, error) {
	s := NewSource(len(messages))
	for i, m := range messages {
		raw, ok := m.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(m)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal message %d: %w", i, err)
			}
		}
		s.ch <- raw
	}
	s.Close()
	return s, nil
}

// Publish enqueues a raw message. It blocks while the buffer is full.
func (s *Source) Publish(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("source closed")
	}
	select {
	case s.ch <- raw:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the source exhausted; pending messages are still delivered.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Messages returns the queue. Only one consumer is expected.
func (s *Source) Messages(ctx context.Context) (<-chan []byte, error) {
	return s.ch, nil
}
