package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/patchbay/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the adapters.
const DefaultPrefix = "patchbay:diagram:"

// Store implements ports.SnapshotStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for diagrams.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for diagrams.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so the locker and source can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(diagramID string) string {
	return s.prefix + diagramID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the diagram to Redis.
func (s *Store) Save(ctx context.Context, diagramID string, snap *domain.Snapshot) error {
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}

	pipe := s.client.Pipeline()

	// 1. Save JSON with TTL (0 = no expiration)
	pipe.Set(ctx, s.key(diagramID), data, s.ttl)

	// 2. Add to Index (ZSET)
	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: diagramID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the diagram from Redis.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(diagramID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrDiagramNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	snap := domain.NewSnapshot()
	if err := json.Unmarshal(val, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram: %w", err)
	}
	return snap, nil
}

// Delete removes the diagram.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(diagramID))
	pipe.ZRem(ctx, s.indexKey(), diagramID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored diagrams from the index, pruning expired entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	// Lazy Cleanup: Remove expired keys from Index
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired diagrams: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
