package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/patchbay/pkg/adapters/file"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements SnapshotStore
var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	for _, format := range []file.Format{file.FormatYAML, file.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			ports.RunSnapshotStoreContract(t, file.New(t.TempDir(), format))
		})
	}
}

func TestFileStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir, file.FormatJSON)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "rack", domain.NewSnapshot()))
	require.NoError(t, store.Save(ctx, "rack", domain.NewSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rack.json", entries[0].Name())
}

func TestFileStore_RejectsPathLikeIDs(t *testing.T) {
	store := file.New(t.TempDir(), file.FormatYAML)
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, store.Save(ctx, id, domain.NewSnapshot()), id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"), file.FormatYAML)
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadWriteDiagram(t *testing.T) {
	snap := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "a", Label: "Mixer", Color: "#3366FF", Pins: []domain.Pin{{ID: "o", Type: domain.PinOutput, Spec: "xlr"}}},
			{ID: "b", Label: "Amp", Color: "#3366FF", Pins: []domain.Pin{{ID: "i", Type: domain.PinInput, Spec: "xlr"}}},
		},
		Edges: []domain.Edge{domain.Connection{Source: "a", SourceHandle: "o", Target: "b", TargetHandle: "i"}.Edge()},
	}

	for _, name := range []string{"stage.yaml", "stage.yml", "stage.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, file.WriteDiagram(path, snap))

			loaded, err := file.ReadDiagram(path)
			require.NoError(t, err)
			assert.Equal(t, snap, loaded)
		})
	}

	t.Run("yaml keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keys.yaml")
		require.NoError(t, file.WriteDiagram(path, snap))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "sourceHandle: o")
	})

	t.Run("empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
		loaded, err := file.ReadDiagram(path)
		require.NoError(t, err)
		assert.Equal(t, domain.NewSnapshot(), loaded)
	})
}
