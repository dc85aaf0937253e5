package ports

import (
	"context"

	"github.com/aretw0/patchbay/pkg/domain"
)

// SnapshotStore defines the interface for persisting diagrams.
// Persistence is an external concern: the editor only hands over and takes back snapshots.
type SnapshotStore interface {
	// Save persists the snapshot for a given diagram ID.
	Save(ctx context.Context, diagramID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given diagram ID.
	// Returns domain.ErrDiagramNotFound if the diagram does not exist.
	Load(ctx context.Context, diagramID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given diagram ID.
	Delete(ctx context.Context, diagramID string) error

	// List returns the IDs of stored diagrams.
	List(ctx context.Context) ([]string, error)
}
