package graph_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeA() domain.Node {
	return domain.Node{
		ID:       "A",
		Label:    "Switch",
		Color:    domain.DefaultNodeColor,
		Position: domain.Position{X: 120, Y: 140},
		Pins:     []domain.Pin{{ID: "out1", Label: "Port 1", Type: domain.PinOutput, Spec: "eth"}},
	}
}

func nodeB() domain.Node {
	return domain.Node{
		ID:       "B",
		Label:    "Router",
		Color:    "#ff0000",
		Position: domain.Position{X: 400, Y: 300},
		Pins:     []domain.Pin{{ID: "in1", Label: "WAN", Type: domain.PinInput, Spec: "eth"}},
	}
}

var aToB = domain.Connection{Source: "A", SourceHandle: "out1", Target: "B", TargetHandle: "in1"}

func TestStore_ConnectScenario(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA(), nodeB())

	edge, err := store.AddEdge(aToB)
	require.NoError(t, err)
	assert.Equal(t, "A", edge.Source)
	assert.Len(t, store.Edges(), 1)

	_, err = store.AddEdge(aToB)
	require.Error(t, err)
	assert.Equal(t, domain.RuleSourceOccupied, domain.RejectionRule(err))
	assert.Len(t, store.Edges(), 1, "rejected candidate must not change the store")

	t.Run("delete cascades", func(t *testing.T) {
		assert.True(t, store.RemoveNode("A"))

		nodes := store.Nodes()
		require.Len(t, nodes, 1)
		assert.Equal(t, "B", nodes[0].ID)
		assert.Empty(t, store.Edges())
	})
}

func TestStore_RemoveNode_CascadesOnlyTouchingEdges(t *testing.T) {
	hub := domain.Node{ID: "hub", Pins: []domain.Pin{
		{ID: "o1", Type: domain.PinOutput, Spec: "eth"},
		{ID: "o2", Type: domain.PinOutput, Spec: "eth"},
		{ID: "i1", Type: domain.PinInput, Spec: "eth"},
	}}
	peer := func(id string) domain.Node {
		return domain.Node{ID: id, Pins: []domain.Pin{
			{ID: "in", Type: domain.PinInput, Spec: "eth"},
			{ID: "out", Type: domain.PinOutput, Spec: "eth"},
		}}
	}

	store := graph.NewStore()
	store.AddNodes(hub, peer("p1"), peer("p2"), peer("p3"))

	require.True(t, store.Connect(domain.Connection{Source: "hub", SourceHandle: "o1", Target: "p1", TargetHandle: "in"}))
	require.True(t, store.Connect(domain.Connection{Source: "hub", SourceHandle: "o2", Target: "p2", TargetHandle: "in"}))
	require.True(t, store.Connect(domain.Connection{Source: "p3", SourceHandle: "out", Target: "hub", TargetHandle: "i1"}))
	unrelated := domain.Connection{Source: "p1", SourceHandle: "out", Target: "p3", TargetHandle: "in"}
	require.True(t, store.Connect(unrelated))

	assert.True(t, store.RemoveNode("hub"))

	edges := store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, unrelated.Edge().ID, edges[0].ID)
}

func TestStore_NotFoundIsNoop(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA(), nodeB())
	require.True(t, store.Connect(aToB))
	before := store.Snapshot()

	assert.False(t, store.RemoveNode("ghost"))
	assert.False(t, store.RelabelNode("ghost", "x"))
	assert.False(t, store.MoveNode("ghost", domain.Position{}))
	assert.False(t, store.RemoveEdge("ghost"))
	assert.Empty(t, store.RemoveEdgesTouching("ghost"))

	assert.Equal(t, before, store.Snapshot())
}

func TestStore_RelabelIsolation(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA(), nodeB())
	before := store.Snapshot()

	require.True(t, store.RelabelNode("A", "Core Switch"))

	after := store.Snapshot()
	a, _ := after.Node("A")
	wantA := nodeA()
	wantA.Label = "Core Switch"
	assert.Equal(t, wantA, a)

	b, _ := after.Node("B")
	prevB, _ := before.Node("B")
	assert.Equal(t, prevB, b)
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA())

	nodes := store.Nodes()
	nodes[0].Label = "mutated"
	nodes[0].Pins[0].Spec = "mutated"

	n, ok := store.Node("A")
	require.True(t, ok)
	assert.Equal(t, "Switch", n.Label)
	assert.Equal(t, "eth", n.Pins[0].Spec)
}

func TestStore_AddNodes_SkipsDuplicates(t *testing.T) {
	store := graph.NewStore()
	added := store.AddNodes(nodeA(), nodeB(), nodeA())
	assert.Equal(t, []string{"A", "B"}, added)

	added = store.AddNodes(domain.Node{ID: "C"}, nodeB())
	assert.Equal(t, []string{"C"}, added)

	var ids []string
	for _, n := range store.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestStore_MoveAndRemoveEdge(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA(), nodeB())
	edge, err := store.AddEdge(aToB)
	require.NoError(t, err)

	require.True(t, store.MoveNode("B", domain.Position{X: 10, Y: 20}))
	b, _ := store.Node("B")
	assert.Equal(t, domain.Position{X: 10, Y: 20}, b.Position)

	require.True(t, store.RemoveEdge(edge.ID))
	assert.Empty(t, store.Edges())
	assert.True(t, store.Connect(aToB), "freed pins accept a new wire")
}

func TestStore_ClearAndRestore(t *testing.T) {
	store := graph.NewStore()
	store.AddNodes(nodeA(), nodeB())
	require.True(t, store.Connect(aToB))
	saved := store.Snapshot()

	store.Clear()
	assert.Empty(t, store.Nodes())
	assert.Empty(t, store.Edges())

	require.NoError(t, store.Restore(saved))
	assert.Equal(t, saved, store.Snapshot())

	t.Run("invalid snapshot is refused", func(t *testing.T) {
		bad := saved.Clone()
		bad.Edges = append(bad.Edges, domain.Edge{ID: "loop", Source: "A", SourceHandle: "out1", Target: "A", TargetHandle: "out1"})

		err := store.Restore(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
		assert.Equal(t, saved, store.Snapshot())
	})
}

func TestStore_Hooks(t *testing.T) {
	var events []domain.EventType
	record := func(t domain.EventType) { events = append(events, t) }
	hooks := domain.GraphHooks{
		OnNodesAdded:  func(_ context.Context, e *domain.NodeEvent) { record(e.Type) },
		OnNodeRemoved: func(_ context.Context, e *domain.NodeEvent) { record(e.Type) },
		OnNodeUpdated: func(_ context.Context, e *domain.NodeEvent) { record(e.Type) },
		OnEdgeAdded:   func(_ context.Context, e *domain.EdgeEvent) { record(e.Type) },
		OnEdgeRemoved: func(_ context.Context, e *domain.EdgeEvent) { record(e.Type) },
		OnRejected:    func(_ context.Context, e *domain.RejectionEvent) { record(e.Type) },
		OnCleared:     func(_ context.Context, e *domain.EventBase) { record(e.Type) },
	}

	store := graph.NewStore(graph.WithHooks(hooks))
	store.AddNodes(nodeA(), nodeB())
	store.Connect(aToB)
	store.Connect(aToB)
	store.RelabelNode("B", "Edge Router")
	store.RemoveNode("A")
	store.Clear()

	assert.Equal(t, []domain.EventType{
		domain.EventNodesAdded,
		domain.EventEdgeAdded,
		domain.EventConnectionRejected,
		domain.EventNodeUpdated,
		domain.EventEdgesRemoved,
		domain.EventNodeRemoved,
		domain.EventGraphCleared,
	}, events)
}

// TestStore_RandomOperationsKeepInvariants drives the store with a seeded
// random sequence of operations and checks the invariants after every step.
func TestStore_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	specs := []string{"eth", "power", "hdmi"}
	types := []string{domain.PinInput, domain.PinOutput}

	store := graph.NewStore()
	nextID := 0
	newNode := func() domain.Node {
		nextID++
		n := domain.Node{ID: fmt.Sprintf("n%d", nextID)}
		for p := 0; p < 1+rng.IntN(4); p++ {
			n.Pins = append(n.Pins, domain.Pin{
				ID:   fmt.Sprintf("p%d", p),
				Type: types[rng.IntN(len(types))],
				Spec: specs[rng.IntN(len(specs))],
			})
		}
		return n
	}
	pick := func() (domain.Node, bool) {
		nodes := store.Nodes()
		if len(nodes) == 0 {
			return domain.Node{}, false
		}
		return nodes[rng.IntN(len(nodes))], true
	}

	for step := 0; step < 2000; step++ {
		switch op := rng.IntN(10); {
		case op < 2:
			store.AddNodes(newNode())
		case op < 7:
			src, ok1 := pick()
			dst, ok2 := pick()
			if !ok1 || !ok2 || len(src.Pins) == 0 || len(dst.Pins) == 0 {
				continue
			}
			store.Connect(domain.Connection{
				Source:       src.ID,
				SourceHandle: src.Pins[rng.IntN(len(src.Pins))].ID,
				Target:       dst.ID,
				TargetHandle: dst.Pins[rng.IntN(len(dst.Pins))].ID,
			})
		case op < 8:
			if n, ok := pick(); ok {
				store.RemoveNode(n.ID)
			}
		case op < 9:
			if n, ok := pick(); ok {
				store.RelabelNode(n.ID, fmt.Sprintf("label-%d", step))
			}
		default:
			edges := store.Edges()
			if len(edges) > 0 {
				store.RemoveEdge(edges[rng.IntN(len(edges))].ID)
			}
		}

		if errs := graph.CheckInvariants(store.Snapshot()); len(errs) > 0 {
			t.Fatalf("step %d: invariants broken: %v", step, errs)
		}
	}
}

func TestStore_AddEdge_CollidingDerivedIDs(t *testing.T) {
	device := func(id, pin, dir string) domain.Node {
		return domain.Node{ID: id, Label: id, Pins: []domain.Pin{{ID: pin, Type: dir, Spec: "eth"}}}
	}
	store := graph.NewStore()
	store.AddNodes(
		device("a", "bcd", domain.PinOutput), device("ab", "cd", domain.PinOutput), device("abc", "d", domain.PinOutput),
		device("w", "xyz", domain.PinInput), device("wx", "yz", domain.PinInput), device("wxy", "z", domain.PinInput),
	)

	wires := []domain.Connection{
		{Source: "a", SourceHandle: "bcd", Target: "w", TargetHandle: "xyz"},
		{Source: "ab", SourceHandle: "cd", Target: "wx", TargetHandle: "yz"},
		{Source: "abc", SourceHandle: "d", Target: "wxy", TargetHandle: "z"},
	}
	for _, c := range wires {
		_, err := store.AddEdge(c)
		require.NoError(t, err)
	}
	ids := func() []string {
		var out []string
		for _, e := range store.Edges() {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []string{"xy-edge__abcd-wxyz", "xy-edge__abcd-wxyz#1", "xy-edge__abcd-wxyz#2"}, ids())

	// Re-adding after a removal must not reuse a live id.
	require.True(t, store.RemoveEdge("xy-edge__abcd-wxyz#1"))
	edge, err := store.AddEdge(wires[1])
	require.NoError(t, err)
	assert.Equal(t, "xy-edge__abcd-wxyz#1", edge.ID)
	assert.ElementsMatch(t, []string{"xy-edge__abcd-wxyz", "xy-edge__abcd-wxyz#1", "xy-edge__abcd-wxyz#2"}, ids())

	snap := store.Snapshot()
	assert.Empty(t, graph.CheckInvariants(snap))
	require.NoError(t, graph.NewStore().Restore(snap))
}
