package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNodeInfoMarkdown(t *testing.T) {
	md := tui.NodeInfoMarkdown(domain.Node{
		ID:           "r1",
		Label:        "Router-X",
		Manufacturer: "Acme",
		Color:        "#ff0000",
		Position:     domain.Position{X: 150, Y: 200.5},
		Notes:        "rack 2\nshelf 3",
		Pins: []domain.Pin{
			{ID: "p1", Label: "LAN|1", Type: domain.PinOutput, Spec: "eth"},
			{ID: "p2", Type: domain.PinInput},
		},
	})

	assert.Contains(t, md, "# Router-X")
	assert.Contains(t, md, "- **Manufacturer:** Acme")
	assert.NotContains(t, md, "**Model:**")
	assert.Contains(t, md, "- **Position:** (150, 200.5)")
	assert.Contains(t, md, "> rack 2\n> shelf 3")
	assert.Contains(t, md, "| `p1` | LAN\\|1 | output | eth |")
	assert.Contains(t, md, "| `p2` | - | input | - |")
}

func TestNodeInfoMarkdown_NoPins(t *testing.T) {
	md := tui.NodeInfoMarkdown(domain.Node{ID: "x"})
	assert.Contains(t, md, "# x")
	assert.Contains(t, md, "_No pins._")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
