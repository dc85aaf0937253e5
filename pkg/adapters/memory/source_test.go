package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_DeliversInOrderThenCloses(t *testing.T) {
	src, err := memory.NewSourceFrom(
		map[string]any{"type": "ADD_NODES", "payload": map[string]any{"id": "a"}},
		[]byte(`not json`),
	)
	require.NoError(t, err)

	ch, err := src.Messages(context.Background())
	require.NoError(t, err)

	var got []string
	for raw := range ch {
		got = append(got, string(raw))
	}
	assert.Equal(t, []string{`{"payload":{"id":"a"},"type":"ADD_NODES"}`, "not json"}, got)

	assert.Error(t, src.Publish(context.Background(), []byte("late")))
}
