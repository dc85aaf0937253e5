package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_SaveNil(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), "empty", nil))

	snap, err := store.Load(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, domain.NewSnapshot(), snap)
}
