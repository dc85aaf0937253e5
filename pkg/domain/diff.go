package domain

import (
	"reflect"
)

// GraphDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type GraphDiff struct {
	// DiagramID identifies the target; empty for the live diagram.
	DiagramID string `json:"diagram_id,omitempty"`

	AddedNodes   []Node   `json:"added_nodes,omitempty"`
	UpdatedNodes []Node   `json:"updated_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge   `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *GraphDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &GraphDiff{}

	oldNodes := make(map[string]Node, len(oldSnap.Nodes))
	for _, n := range oldSnap.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]struct{}, len(newSnap.Nodes))
	for _, n := range newSnap.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, existed := oldNodes[n.ID]
		switch {
		case !existed:
			diff.AddedNodes = append(diff.AddedNodes, n)
		case !reflect.DeepEqual(prev, n):
			diff.UpdatedNodes = append(diff.UpdatedNodes, n)
		}
	}
	for _, n := range oldSnap.Nodes {
		if _, ok := newNodes[n.ID]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]struct{}, len(oldSnap.Edges))
	for _, e := range oldSnap.Edges {
		oldEdges[e.ID] = struct{}{}
	}
	newEdges := make(map[string]struct{}, len(newSnap.Edges))
	for _, e := range newSnap.Edges {
		newEdges[e.ID] = struct{}{}
		if _, ok := oldEdges[e.ID]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for _, e := range oldSnap.Edges {
		if _, ok := newEdges[e.ID]; !ok {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.UpdatedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}
