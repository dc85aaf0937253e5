package domain

// Edge is a committed wire from an output pin (source side) to an input pin (target side).
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target" yaml:"target"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
}

// Touches reports whether the edge references the node.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Connection is a candidate wire, not yet validated or committed.
// ID is optional; when empty the store derives one with EdgeID.
type Connection struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Source       string `json:"source" yaml:"source"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target" yaml:"target"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
}

// Edge converts the candidate into the edge that would be committed.
func (c Connection) Edge() Edge {
	id := c.ID
	if id == "" {
		id = EdgeID(c.Source, c.SourceHandle, c.Target, c.TargetHandle)
	}
	return Edge{
		ID:           id,
		Source:       c.Source,
		SourceHandle: c.SourceHandle,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
	}
}

// EdgeID derives a deterministic id from the wire endpoints.
// The format matches the one produced by React Flow canvases so ids survive a round trip.
// Endpoints are joined without a separator, so distinct wires may derive the same id.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return "xy-edge__" + source + sourceHandle + "-" + target + targetHandle
}
