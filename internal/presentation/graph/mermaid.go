package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// GraphOverlay contains interaction state to highlight on the diagram.
type GraphOverlay struct {
	// Selected is the node whose context menu is open.
	Selected string
	// Unwired lists nodes to flag, typically those with no connected pin.
	Unwired []string
}

// OverlayFor derives the overlay of a live diagram: the node menu target and
// every device with pins but no wire.
func OverlayFor(snap *domain.Snapshot, state domain.Interaction) *GraphOverlay {
	overlay := &GraphOverlay{}
	if state.Kind == domain.InteractionNodeMenu {
		overlay.Selected = state.NodeID
	}
	if snap == nil {
		return overlay
	}
	wired := make(map[string]bool, len(snap.Nodes))
	for _, e := range snap.Edges {
		wired[e.Source] = true
		wired[e.Target] = true
	}
	for _, n := range snap.Nodes {
		if len(n.Pins) > 0 && !wired[n.ID] {
			overlay.Unwired = append(overlay.Unwired, n.ID)
		}
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a wiring diagram.
// Devices are rectangles labelled with their label and model, wires are
// arrows labelled "pin → pin (spec)". The overlay, if provided, adds styles.
func GenerateMermaid(snap *domain.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if snap == nil {
		return sb.String()
	}

	for _, node := range snap.Nodes {
		label := escapeLabel(nodeCaption(node))
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeMermaidID(node.ID), label))
	}

	for _, e := range snap.Edges {
		src, _ := snap.Node(e.Source)
		dst, _ := snap.Node(e.Target)
		srcPin, _ := src.Pin(e.SourceHandle)
		dstPin, _ := dst.Pin(e.TargetHandle)

		caption := fmt.Sprintf("%s → %s", pinCaption(srcPin, e.SourceHandle), pinCaption(dstPin, e.TargetHandle))
		if srcPin.Spec != "" {
			caption += " (" + srcPin.Spec + ")"
		}
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(e.Source), escapeLabel(caption), sanitizeMermaidID(e.Target)))
	}

	// Node colours
	for _, node := range snap.Nodes {
		if node.Color != "" {
			sb.WriteString(fmt.Sprintf("    style %s stroke:%s,stroke-width:2px\n", sanitizeMermaidID(node.ID), node.Color))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef unwired fill:#fff3e0,stroke:#e65100,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Unwired {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s unwired;\n", safeID))
			}
		}
		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

func nodeCaption(n domain.Node) string {
	caption := n.Label
	if caption == "" {
		caption = n.ID
	}
	if n.Model != "" && n.Model != caption {
		caption += "<br/>" + n.Model
	}
	return caption
}

func pinCaption(p domain.Pin, fallback string) string {
	if p.ID == "" {
		return fallback
	}
	return p.DisplayLabel()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
