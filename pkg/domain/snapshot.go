package domain

// Snapshot is the serialisable form of a whole diagram.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewSnapshot returns an empty diagram with non-nil collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Nodes: []Node{},
		Edges: []Edge{},
	}
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		c.Nodes[i] = n.Clone()
	}
	copy(c.Edges, s.Edges)
	return c
}

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
