package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, diagramID string, snap *domain.Snapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := snap.Clone()
	if copied == nil {
		copied = domain.NewSnapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[diagramID] = copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[diagramID]
	if !ok {
		return nil, domain.ErrDiagramNotFound
	}

	// Copy on read so callers can't mutate stored diagrams through the pointer
	return snap.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, diagramID)
	return nil
}

// List returns stored diagram IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
