package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	diagramID := "contract-test-diagram-" + time.Now().Format("20060102150405")

	sample := func() *domain.Snapshot {
		return &domain.Snapshot{
			Nodes: []domain.Node{
				{
					ID:       "amp",
					Label:    "Amplifier",
					Color:    domain.DefaultNodeColor,
					Position: domain.Position{X: 120, Y: 240},
					Pins:     []domain.Pin{{ID: "out", Label: "Speaker Out", Type: domain.PinOutput, Spec: "speakon"}},
				},
				{
					ID:           "spk",
					Label:        "Speaker",
					Color:        "#aa3300",
					Manufacturer: "Acme",
					Model:        "S-1",
					Position:     domain.Position{X: 480, Y: 240},
					Pins:         []domain.Pin{{ID: "in", Type: domain.PinInput, Spec: "speakon"}},
				},
			},
			Edges: []domain.Edge{
				domain.Connection{Source: "amp", SourceHandle: "out", Target: "spk", TargetHandle: "in"}.Edge(),
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := sample()

		err := store.Save(ctx, diagramID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap, loaded)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		snap := sample()
		require.NoError(t, store.Save(ctx, diagramID, snap))

		snap.Nodes[0].Label = "mutated after save"

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err)
		assert.Equal(t, "Amplifier", loaded.Nodes[0].Label)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+diagramID)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, diagramID, sample())
		require.NoError(t, err)

		err = store.Delete(ctx, diagramID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, diagramID)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound, "Load after Delete should return ErrDiagramNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := diagramID + "-1"
		id2 := diagramID + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, domain.NewSnapshot())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
