package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/domain"
)

func diagram() *domain.Snapshot {
	return &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "sw-1", Label: "Switch", Model: "SG350", Color: "#3366FF",
				Pins: []domain.Pin{{ID: "p1", Label: "Port 1", Type: domain.PinOutput, Spec: "eth"}}},
			{ID: "rt.1", Label: `Edge "Router"`,
				Pins: []domain.Pin{{ID: "wan", Type: domain.PinInput, Spec: "eth"}}},
			{ID: "ups", Label: "UPS",
				Pins: []domain.Pin{{ID: "o", Type: domain.PinOutput, Spec: "power"}}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sw-1", SourceHandle: "p1", Target: "rt.1", TargetHandle: "wan"},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Devices and Wires",
			contains: []string{
				"graph LR",
				`sw_1["Switch<br/>SG350"]`,
				`rt_1["Edge 'Router'"]`,
				`sw_1 -- "Port 1 → wan (eth)" --> rt_1`,
				"style sw_1 stroke:#3366FF",
			},
			excludes: []string{"classDef"},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{Selected: "sw-1", Unwired: []string{"ups", "ups"}},
			contains: []string{
				"class ups unwired;",
				"class sw_1 selected;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(diagram(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if n := strings.Count(got, "class ups unwired;"); n > 1 {
				t.Errorf("unwired class emitted %d times", n)
			}
		})
	}
}

func TestOverlayFor(t *testing.T) {
	overlay := graph.OverlayFor(diagram(), domain.NodeMenuOpen("rt.1"))
	if overlay.Selected != "rt.1" {
		t.Errorf("Selected = %q, want rt.1", overlay.Selected)
	}
	if len(overlay.Unwired) != 1 || overlay.Unwired[0] != "ups" {
		t.Errorf("Unwired = %v, want [ups]", overlay.Unwired)
	}

	idle := graph.OverlayFor(nil, domain.Idle())
	if idle.Selected != "" || len(idle.Unwired) != 0 {
		t.Errorf("empty overlay expected, got %+v", idle)
	}
}
