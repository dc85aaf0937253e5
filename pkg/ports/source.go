package ports

import "context"

// MessageSource delivers raw inbound messages from a host (a parent page, a pub/sub
// channel, a file). The channel closes when the source is exhausted or ctx ends.
type MessageSource interface {
	Messages(ctx context.Context) (<-chan []byte, error)
}
