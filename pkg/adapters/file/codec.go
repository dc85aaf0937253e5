package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is a diagram document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Ext returns the file extension used for the format, dot included.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal encodes a diagram.
func (f Format) Marshal(snap *domain.Snapshot) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(snap)
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Unmarshal decodes a diagram. Missing collections come back empty, never nil.
func (f Format) Unmarshal(data []byte) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, snap)
	} else {
		err = json.Unmarshal(data, snap)
	}
	if err != nil {
		return nil, err
	}
	if snap.Nodes == nil {
		snap.Nodes = []domain.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []domain.Edge{}
	}
	return snap, nil
}

// ReadDiagram loads a single diagram document, choosing the codec by extension.
func ReadDiagram(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram %s: %w", path, err)
	}
	snap, err := FormatFor(path).Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diagram %s: %w", path, err)
	}
	return snap, nil
}

// WriteDiagram atomically writes a single diagram document, choosing the codec by extension.
func WriteDiagram(path string, snap *domain.Snapshot) error {
	data, err := FormatFor(path).Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure diagram directory: %w", err)
	}

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Close before rename (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists. We must remove it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing diagram for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}
