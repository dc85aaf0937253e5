package ingest_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_Handle(t *testing.T) {
	store := graph.NewStore()
	ch := ingest.NewChannel(store, ingest.WithNormalizer(fixedNormalizer()))

	added, err := ch.Handle([]byte(`{"type":"ADD_NODES","payload":{"model":"Router-X"}}`))
	require.NoError(t, err)
	require.Len(t, added, 1)

	node, ok := store.Node(added[0])
	require.True(t, ok)
	assert.Equal(t, "Router-X", node.Label)
	assert.Equal(t, domain.DefaultNodeColor, node.Color)
}

func TestChannel_EmptyRecordGetsDefaults(t *testing.T) {
	store := graph.NewStore()
	ch := ingest.NewChannel(store)

	added := ch.Ingest(map[string]any{})
	require.Len(t, added, 1)

	node, _ := store.Node(added[0])
	assert.Equal(t, domain.DefaultNodeLabel, node.Label)
	assert.NotEmpty(t, node.ID)
	assert.Empty(t, node.Pins)
}

func TestChannel_BatchPreservesOrderAndExistingGraph(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(
		domain.Node{ID: "A", Pins: []domain.Pin{{ID: "o", Type: domain.PinOutput, Spec: "eth"}}},
		domain.Node{ID: "B", Pins: []domain.Pin{{ID: "i", Type: domain.PinInput, Spec: "eth"}}},
	)
	require.True(t, store.Connect(domain.Connection{Source: "A", SourceHandle: "o", Target: "B", TargetHandle: "i"}))
	edgesBefore := store.Edges()

	ch := ingest.NewChannel(store)
	added, err := ch.Handle([]byte(`{"type":"ADD_NODES","payload":[
		{"id":"n1","label":"first"},
		42,
		{"id":"n2","label":"second"},
		{"id":"A","label":"duplicate"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2"}, added)

	var ids []string
	for _, n := range store.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"A", "B", "n1", "n2"}, ids)
	assert.Equal(t, edgesBefore, store.Edges())
}

func TestChannel_IgnoresOtherMessages(t *testing.T) {
	store := graph.NewStore()
	ch := ingest.NewChannel(store)

	added, err := ch.Handle([]byte(`{"type":"PING","payload":{"id":"x"}}`))
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = ch.Handle([]byte(`garbage`))
	assert.ErrorIs(t, err, domain.ErrMalformedMessage)
	assert.Empty(t, store.Nodes())
}

func TestChannel_Subscribe(t *testing.T) {
	store := graph.NewStore()
	ch := ingest.NewChannel(store)
	src := memory.NewSource(4)

	sub, err := ch.Subscribe(context.Background(), src)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, src.Publish(ctx, []byte(`{"type":"ADD_NODES","payload":{"id":"one"}}`)))
	require.NoError(t, src.Publish(ctx, []byte(`broken`)))
	require.NoError(t, src.Publish(ctx, []byte(`{"type":"ADD_NODES","payload":[{"id":"two"}]}`)))

	assert.Eventually(t, func() bool { return len(store.Nodes()) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sub.Close())
	select {
	case <-sub.Done():
	default:
		t.Fatal("listener still running after Close")
	}

	require.NoError(t, src.Publish(ctx, []byte(`{"type":"ADD_NODES","payload":{"id":"late"}}`)))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, store.Nodes(), 2, "messages after Close are not ingested")
}

func TestChannel_SubscribeEndsWithSource(t *testing.T) {
	store := graph.NewStore()
	src, err := memory.NewSourceFrom(map[string]any{"type": "ADD_NODES", "payload": []any{map[string]any{}, map[string]any{}}})
	require.NoError(t, err)

	sub, err := ingest.NewChannel(store).Subscribe(context.Background(), src)
	require.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after source closed")
	}
	assert.Len(t, store.Nodes(), 2)
	assert.NoError(t, sub.Close())
}

func TestChannel_ConcurrentIngest(t *testing.T) {
	store := graph.NewStore()
	ch := ingest.NewChannel(store)

	const writers, perWriter = 8, 200
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				ch.Ingest(map[string]any{"model": "Router-X"})
			}
		}()
	}
	wg.Wait()

	nodes := store.Nodes()
	require.Len(t, nodes, writers*perWriter)
	for _, n := range nodes {
		assert.GreaterOrEqual(t, n.Position.X, float64(domain.PlacementMinX))
		assert.LessOrEqual(t, n.Position.X, float64(domain.PlacementMaxX))
		assert.GreaterOrEqual(t, n.Position.Y, float64(domain.PlacementMinY))
		assert.LessOrEqual(t, n.Position.Y, float64(domain.PlacementMaxY))
	}
}
