package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// MessageKind is the decoded discriminator of an inbound message.
type MessageKind string

const (
	KindAddNodes MessageKind = "add_nodes"
	KindUnknown  MessageKind = "unknown"
)

// Message is an inbound message after the envelope has been decoded.
// Entries holds the raw payload items; they are not validated yet.
type Message struct {
	Kind    MessageKind
	Type    string // discriminator as sent
	Entries []any
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Nodes   json.RawMessage `json:"nodes"`
	Node    json.RawMessage `json:"node"`
}

// DecodeMessage decodes a raw JSON envelope.
// It fails with domain.ErrMalformedMessage only when raw is not a JSON object.
func DecodeMessage(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}

	msg := Message{Type: env.Type, Kind: kindOf(env.Type)}
	if msg.Kind != KindAddNodes {
		return msg, nil
	}

	body := env.Payload
	if len(body) == 0 {
		body = env.Nodes
	}
	if len(body) == 0 {
		body = env.Node
	}
	if len(body) == 0 {
		return msg, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Message{}, fmt.Errorf("%w: payload: %v", domain.ErrMalformedMessage, err)
	}
	msg.Entries = Entries(payload)
	return msg, nil
}

// Entries flattens a payload into its items: a sequence yields its elements,
// null yields nothing and anything else is a single entry.
func Entries(payload any) []any {
	switch v := payload.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	default:
		return []any{v}
	}
}

func kindOf(discriminator string) MessageKind {
	norm := strings.ToLower(strings.ReplaceAll(discriminator, "_", ""))
	switch norm {
	case "addnodes", "addnode":
		return KindAddNodes
	}
	return KindUnknown
}
