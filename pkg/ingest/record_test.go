package ingest_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNormalizer() *ingest.Normalizer {
	n := 0
	return ingest.NewNormalizer(
		ingest.WithRand(rand.New(rand.NewPCG(1, 2))),
		ingest.WithIDGenerator(func() string {
			n++
			return "gen-" + string(rune('0'+n))
		}),
	)
}

func TestNormalizer_LabelFallbacks(t *testing.T) {
	tests := []struct {
		name string
		rec  ingest.Record
		want string
	}{
		{"explicit label", ingest.Record{Label: "Core", Model: "Router-X"}, "Core"},
		{"model", ingest.Record{Model: "Router-X", DeviceType: "router"}, "Router-X"},
		{"device type", ingest.Record{DeviceType: "router"}, "router"},
		{"nothing", ingest.Record{}, domain.DefaultNodeLabel},
	}
	norm := fixedNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, norm.Node(tt.rec).Label)
		})
	}
}

func TestNormalizer_Defaults(t *testing.T) {
	node := fixedNormalizer().Node(ingest.Record{})

	assert.Equal(t, "gen-1", node.ID)
	assert.Equal(t, domain.DefaultNodeColor, node.Color)
	assert.NotNil(t, node.Pins)
	assert.Empty(t, node.Pins)
	assert.GreaterOrEqual(t, node.Position.X, float64(domain.PlacementMinX))
	assert.LessOrEqual(t, node.Position.X, float64(domain.PlacementMaxX))
	assert.GreaterOrEqual(t, node.Position.Y, float64(domain.PlacementMinY))
	assert.LessOrEqual(t, node.Position.Y, float64(domain.PlacementMaxY))
}

func TestNormalizer_KeepsProvidedFields(t *testing.T) {
	rec := ingest.Record{
		ID:       "sw-1",
		Position: &domain.Position{X: 0, Y: 0},
		Color:    "#000000",
		Pins:     []domain.Pin{{ID: "p1", Type: domain.PinInput, Spec: "eth"}},
		Notes:    "rack 3",
	}
	node := fixedNormalizer().Node(rec)

	assert.Equal(t, "sw-1", node.ID)
	assert.Equal(t, domain.Position{}, node.Position, "an explicit origin is not replaced")
	assert.Equal(t, "#000000", node.Color)
	assert.Equal(t, "rack 3", node.Notes)
	require.Len(t, node.Pins, 1)

	rec.Pins[0].Spec = "mutated"
	assert.Equal(t, "eth", node.Pins[0].Spec)
}

func TestNormalizer_DropsPinsWithoutID(t *testing.T) {
	node := fixedNormalizer().Node(ingest.Record{Pins: []domain.Pin{
		{Type: domain.PinInput, Spec: "eth"},
		{ID: "p1", Type: domain.PinOutput, Spec: "eth"},
	}})
	require.Len(t, node.Pins, 1)
	assert.Equal(t, "p1", node.Pins[0].ID)
}

func TestDecodeRecord(t *testing.T) {
	rec, err := ingest.DecodeRecord(map[string]any{
		"id":          "r1",
		"model":       "Router-X",
		"device_type": "router",
		"position":    map[string]any{"x": "120", "y": 80},
		"pins": []any{
			map[string]any{"id": "wan", "type": "input", "spec": "eth", "label": "WAN"},
		},
		"unknown": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, "Router-X", rec.Model)
	require.NotNil(t, rec.Position)
	assert.Equal(t, domain.Position{X: 120, Y: 80}, *rec.Position)
	assert.Equal(t, []domain.Pin{{ID: "wan", Label: "WAN", Type: domain.PinInput, Spec: "eth"}}, rec.Pins)

	t.Run("wrong shapes are reported but tolerated", func(t *testing.T) {
		rec, err := ingest.DecodeRecord(map[string]any{
			"label": "Switch",
			"color": map[string]any{"r": 1},
		})
		assert.Error(t, err)
		assert.Equal(t, "Switch", rec.Label)
		assert.Equal(t, domain.DefaultNodeColor, fixedNormalizer().Node(rec).Color)
	})
}
