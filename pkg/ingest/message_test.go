package ingest_test

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    ingest.MessageKind
		entries int
	}{
		{"single record", `{"type":"ADD_NODES","payload":{"model":"Router-X"}}`, ingest.KindAddNodes, 1},
		{"sequence", `{"type":"ADD_NODES","payload":[{},{},{}]}`, ingest.KindAddNodes, 3},
		{"camel case", `{"type":"addNodes","payload":[{}]}`, ingest.KindAddNodes, 1},
		{"singular", `{"type":"ADD_NODE","node":{"id":"x"}}`, ingest.KindAddNodes, 1},
		{"nodes field", `{"type":"add_nodes","nodes":[{},{}]}`, ingest.KindAddNodes, 2},
		{"no payload", `{"type":"ADD_NODES"}`, ingest.KindAddNodes, 0},
		{"null payload", `{"type":"ADD_NODES","payload":null}`, ingest.KindAddNodes, 0},
		{"other type", `{"type":"RESIZE","payload":[{}]}`, ingest.KindUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ingest.DecodeMessage([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, msg.Kind)
			assert.Len(t, msg.Entries, tt.entries)
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	for _, raw := range []string{``, `not json`, `[1,2]`, `"ADD_NODES"`} {
		_, err := ingest.DecodeMessage([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrMalformedMessage, raw)
	}
}
