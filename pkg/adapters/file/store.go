package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// DefaultDir is where diagrams are kept when no directory is configured.
var DefaultDir = filepath.Join(".patchbay", "diagrams")

// Store implements ports.SnapshotStore using the local filesystem.
// Each diagram is one document named after its ID.
type Store struct {
	BasePath string
	Format   Format
}

// New creates a new Store with the given base path and format.
// An empty basePath defaults to DefaultDir and an empty format to YAML.
func New(basePath string, format Format) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	if format == "" {
		format = FormatYAML
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) path(diagramID string) (string, error) {
	if diagramID == "" {
		return "", fmt.Errorf("diagramID cannot be empty")
	}
	if strings.ContainsAny(diagramID, `/\`) || diagramID == "." || diagramID == ".." {
		return "", fmt.Errorf("invalid diagramID %q", diagramID)
	}
	return filepath.Join(s.BasePath, diagramID+s.Format.Ext()), nil
}

// Save persists the diagram atomically.
func (s *Store) Save(ctx context.Context, diagramID string, snap *domain.Snapshot) error {
	dest, err := s.path(diagramID)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	data, err := s.Format.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}
	return writeAtomic(dest, data)
}

// Load retrieves the diagram.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.Snapshot, error) {
	src, err := s.path(diagramID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrDiagramNotFound
		}
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}

	snap, err := s.Format.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram: %w", err)
	}
	return snap, nil
}

// Delete removes the diagram file.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	target, err := s.path(diagramID)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete diagram file: %w", err)
	}
	return nil
}

// List returns the stored diagram IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}

	ext := s.Format.Ext()
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") || filepath.Ext(name) != ext {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
