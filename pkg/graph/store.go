package graph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Store holds a diagram in memory.
// Safe for concurrent use; mutations are serialised.
type Store struct {
	mu    sync.RWMutex
	nodes []domain.Node
	edges []domain.Edge

	hooks  domain.GraphHooks
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.GraphHooks) Option {
	return func(s *Store) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty diagram.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nodes:  []domain.Node{},
		edges:  []domain.Edge{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNodes appends nodes in order without touching existing nodes or edges.
// A node whose id is already present is skipped. It returns the ids that were added.
func (s *Store) AddNodes(nodes ...domain.Node) []string {
	s.mu.Lock()
	added := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s.indexOf(n.ID) >= 0 {
			s.logger.Warn("Skipping node with duplicate id", "node_id", n.ID)
			continue
		}
		s.nodes = append(s.nodes, n.Clone())
		added = append(added, n.ID)
	}
	s.mu.Unlock()

	if len(added) > 0 && s.hooks.OnNodesAdded != nil {
		s.hooks.OnNodesAdded(context.Background(), &domain.NodeEvent{
			EventBase: event(domain.EventNodesAdded),
			NodeIDs:   added,
		})
	}
	return added
}

// RemoveNode deletes a node together with every edge touching it.
// It reports false when the node does not exist.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.nodes = slices.Delete(s.nodes, idx, idx+1)
	removed := s.removeEdgesTouchingLocked(id)
	s.mu.Unlock()

	s.logger.Debug("Node removed", "node_id", id, "edges_removed", len(removed))
	if len(removed) > 0 && s.hooks.OnEdgeRemoved != nil {
		s.hooks.OnEdgeRemoved(context.Background(), &domain.EdgeEvent{
			EventBase: event(domain.EventEdgesRemoved),
			Edges:     removed,
		})
	}
	if s.hooks.OnNodeRemoved != nil {
		s.hooks.OnNodeRemoved(context.Background(), &domain.NodeEvent{
			EventBase: event(domain.EventNodeRemoved),
			NodeIDs:   []string{id},
		})
	}
	return true
}

// RelabelNode replaces the label of one node.
// Pins, position, metadata and every other node are left untouched.
func (s *Store) RelabelNode(id, label string) bool {
	return s.updateNode(id, func(n *domain.Node) { n.Label = label })
}

// MoveNode records a new canvas position for a node (the result of a drag).
func (s *Store) MoveNode(id string, pos domain.Position) bool {
	return s.updateNode(id, func(n *domain.Node) { n.Position = pos })
}

func (s *Store) updateNode(id string, mutate func(*domain.Node)) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	mutate(&s.nodes[idx])
	s.mu.Unlock()

	if s.hooks.OnNodeUpdated != nil {
		s.hooks.OnNodeUpdated(context.Background(), &domain.NodeEvent{
			EventBase: event(domain.EventNodeUpdated),
			NodeIDs:   []string{id},
		})
	}
	return true
}

// AddEdge commits a candidate connection if it passes validation.
// On rejection the store is unchanged and the returned error is a
// *domain.RejectionError naming the refused rule.
func (s *Store) AddEdge(c domain.Connection) (domain.Edge, error) {
	s.mu.Lock()
	if err := domain.ValidateConnection(c, s.nodes, s.edges); err != nil {
		s.mu.Unlock()
		s.logger.Debug("Connection rejected", "source", c.Source, "target", c.Target, "rule", domain.RejectionRule(err))
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected(context.Background(), &domain.RejectionEvent{
				EventBase:  event(domain.EventConnectionRejected),
				Connection: c,
				Rule:       domain.RejectionRule(err),
			})
		}
		return domain.Edge{}, err
	}
	edge := c.Edge()
	// Derived ids join endpoints without a separator, so distinct wires can share one.
	base := edge.ID
	for n := 1; s.edgeIndexOf(edge.ID) >= 0; n++ {
		edge.ID = fmt.Sprintf("%s#%d", base, n)
	}
	s.edges = append(s.edges, edge)
	s.mu.Unlock()

	if s.hooks.OnEdgeAdded != nil {
		s.hooks.OnEdgeAdded(context.Background(), &domain.EdgeEvent{
			EventBase: event(domain.EventEdgeAdded),
			Edges:     []domain.Edge{edge},
		})
	}
	return edge, nil
}

// Connect is the boolean form of AddEdge.
func (s *Store) Connect(c domain.Connection) bool {
	_, err := s.AddEdge(c)
	return err == nil
}

// RemoveEdge deletes a single edge by id.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	idx := s.edgeIndexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.edges[idx]
	s.edges = slices.Delete(s.edges, idx, idx+1)
	s.mu.Unlock()

	if s.hooks.OnEdgeRemoved != nil {
		s.hooks.OnEdgeRemoved(context.Background(), &domain.EdgeEvent{
			EventBase: event(domain.EventEdgesRemoved),
			Edges:     []domain.Edge{removed},
		})
	}
	return true
}

// RemoveEdgesTouching deletes every edge whose source or target is nodeID.
// It returns the removed edges.
func (s *Store) RemoveEdgesTouching(nodeID string) []domain.Edge {
	s.mu.Lock()
	removed := s.removeEdgesTouchingLocked(nodeID)
	s.mu.Unlock()

	if len(removed) > 0 && s.hooks.OnEdgeRemoved != nil {
		s.hooks.OnEdgeRemoved(context.Background(), &domain.EdgeEvent{
			EventBase: event(domain.EventEdgesRemoved),
			Edges:     removed,
		})
	}
	return removed
}

func (s *Store) removeEdgesTouchingLocked(nodeID string) []domain.Edge {
	var removed []domain.Edge
	kept := make([]domain.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if e.Touches(nodeID) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) > 0 {
		s.edges = kept
	}
	return removed
}

// Clear empties both node and edge collections.
func (s *Store) Clear() {
	s.mu.Lock()
	s.nodes = []domain.Node{}
	s.edges = []domain.Edge{}
	s.mu.Unlock()

	if s.hooks.OnCleared != nil {
		base := event(domain.EventGraphCleared)
		s.hooks.OnCleared(context.Background(), &base)
	}
}

// Restore replaces the whole diagram with snap.
// Snapshots breaking an invariant are refused and the store is left unchanged.
func (s *Store) Restore(snap *domain.Snapshot) error {
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	if errs := CheckInvariants(snap); len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, errs[0])
	}
	c := snap.Clone()

	s.mu.Lock()
	s.nodes = c.Nodes
	s.edges = c.Edges
	s.mu.Unlock()

	if s.hooks.OnRestored != nil {
		base := event(domain.EventGraphRestored)
		s.hooks.OnRestored(context.Background(), &base)
	}
	return nil
}

// Node returns a copy of a node by id.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Node{}, false
	}
	return s.nodes[idx].Clone(), true
}

// Nodes returns the current nodes in insertion order.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns the current edges in insertion order.
func (s *Store) Edges() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.edges)
}

// Snapshot returns a deep copy of the whole diagram.
func (s *Store) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&domain.Snapshot{Nodes: s.nodes, Edges: s.edges}).Clone()
}

// Validate checks a candidate against the current state without committing it.
func (s *Store) Validate(c domain.Connection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ValidateConnection(c, s.nodes, s.edges)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.nodes, func(n domain.Node) bool { return n.ID == id })
}

func (s *Store) edgeIndexOf(id string) int {
	return slices.IndexFunc(s.edges, func(e domain.Edge) bool { return e.ID == id })
}

func event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t}
}
