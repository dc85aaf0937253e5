package ingest

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Record is the recognised shape of an external device record.
// Unrecognised fields are ignored.
type Record struct {
	ID           string           `mapstructure:"id"`
	Position     *domain.Position `mapstructure:"position"`
	Label        string           `mapstructure:"label"`
	Color        string           `mapstructure:"color"`
	Pins         []domain.Pin     `mapstructure:"pins"`
	Notes        string           `mapstructure:"notes"`
	Manufacturer string           `mapstructure:"manufacturer"`
	Model        string           `mapstructure:"model"`
	DeviceType   string           `mapstructure:"device_type"`
}

// DecodeRecord decodes an untyped record.
// Fields of the wrong shape are left at their zero value (and later defaulted);
// the returned error lists them for logging but the record is still usable.
func DecodeRecord(raw map[string]any) (Record, error) {
	var rec Record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to build record decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return rec, fmt.Errorf("record partially decoded: %w", err)
	}
	return rec, nil
}

// Normalizer substitutes defaults for every absent field of a record.
// Safe for concurrent use.
type Normalizer struct {
	mu    sync.Mutex // guards rng
	rng   *rand.Rand
	newID func() string
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithRand sets the source used to scatter nodes without a position.
func WithRand(rng *rand.Rand) NormalizerOption {
	return func(n *Normalizer) {
		n.rng = rng
	}
}

// WithIDGenerator sets the generator used for records without an id.
func WithIDGenerator(gen func() string) NormalizerOption {
	return func(n *Normalizer) {
		n.newID = gen
	}
}

// NewNormalizer creates a Normalizer with random placement and UUID ids.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Node builds a domain node from a record.
//
// Label falls back to the model, then the device type, then "Unnamed Node".
// Colour defaults to the accent colour and pins to an empty list; pins without
// an id are dropped. A missing position becomes a random point inside the
// placement region so simultaneous nodes do not overlap.
func (n *Normalizer) Node(rec Record) domain.Node {
	node := domain.Node{
		ID:           rec.ID,
		Label:        firstNonEmpty(rec.Label, rec.Model, rec.DeviceType, domain.DefaultNodeLabel),
		Color:        firstNonEmpty(rec.Color, domain.DefaultNodeColor),
		Manufacturer: rec.Manufacturer,
		Model:        rec.Model,
		DeviceType:   rec.DeviceType,
		Notes:        rec.Notes,
		Pins:         make([]domain.Pin, 0, len(rec.Pins)),
	}
	for _, p := range rec.Pins {
		// a pin without an id can never be wired
		if p.ID != "" {
			node.Pins = append(node.Pins, p)
		}
	}

	if node.ID == "" {
		node.ID = n.newID()
	}

	if rec.Position != nil {
		node.Position = *rec.Position
	} else {
		n.mu.Lock()
		node.Position = domain.Position{
			X: domain.PlacementMinX + n.rng.Float64()*(domain.PlacementMaxX-domain.PlacementMinX),
			Y: domain.PlacementMinY + n.rng.Float64()*(domain.PlacementMaxY-domain.PlacementMinY),
		}
		n.mu.Unlock()
	}
	return node
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
