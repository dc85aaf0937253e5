package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed diagram lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to saved diagrams, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new diagram Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(diagramID) after unlocking.
func (m *Manager) acquire(diagramID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[diagramID]
	if !exists {
		entry = &lockEntry{}
		m.locks[diagramID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(diagramID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[diagramID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, diagramID)
	}
}

// Load retrieves a saved diagram.
func (m *Manager) Load(ctx context.Context, diagramID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, diagramID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, diagramID)
		return err
	})
	return snap, err
}

// LoadOrCreate loads a diagram, saving an empty one first if it does not exist yet.
func (m *Manager) LoadOrCreate(ctx context.Context, diagramID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, diagramID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, diagramID)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrDiagramNotFound) {
			return fmt.Errorf("failed to check diagram existence: %w", err)
		}

		snap = domain.NewSnapshot()
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, diagramID, snap); err != nil {
			return fmt.Errorf("failed to initialize diagram: %w", err)
		}
		return nil
	})
	return snap, err
}

// Save persists a diagram.
func (m *Manager) Save(ctx context.Context, diagramID string, snap *domain.Snapshot) error {
	return m.WithLock(ctx, diagramID, func(ctx context.Context) error {
		return m.store.Save(ctx, diagramID, snap)
	})
}

// Delete removes the diagram from the store.
func (m *Manager) Delete(ctx context.Context, diagramID string) error {
	return m.WithLock(ctx, diagramID, func(ctx context.Context) error {
		return m.store.Delete(ctx, diagramID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the diagram.
func (m *Manager) WithLock(ctx context.Context, diagramID string, fn func(context.Context) error) error {
	entry := m.acquire(diagramID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(diagramID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, diagramID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"diagram_id", diagramID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
