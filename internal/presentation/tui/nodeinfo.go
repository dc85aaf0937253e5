package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// NodeInfoMarkdown describes a device as markdown: its attributes followed by a pin table.
func NodeInfoMarkdown(n domain.Node) string {
	var sb strings.Builder

	title := n.Label
	if title == "" {
		title = n.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", name, value)
		}
	}
	field("ID", "`"+n.ID+"`")
	field("Manufacturer", n.Manufacturer)
	field("Model", n.Model)
	field("Device type", n.DeviceType)
	field("Color", n.Color)
	fmt.Fprintf(&sb, "- **Position:** (%g, %g)\n", n.Position.X, n.Position.Y)

	if n.Notes != "" {
		fmt.Fprintf(&sb, "\n> %s\n", strings.ReplaceAll(n.Notes, "\n", "\n> "))
	}

	if len(n.Pins) == 0 {
		sb.WriteString("\n_No pins._\n")
		return sb.String()
	}

	sb.WriteString("\n| Pin | Label | Direction | Spec |\n|---|---|---|---|\n")
	for _, p := range n.Pins {
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", p.ID, cell(p.Label), cell(p.Type), cell(p.Spec))
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
