package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodesAdded         EventType = "nodes_added"
	EventNodeRemoved        EventType = "node_removed"
	EventNodeUpdated        EventType = "node_updated"
	EventEdgeAdded          EventType = "edge_added"
	EventEdgesRemoved       EventType = "edges_removed"
	EventConnectionRejected EventType = "connection_rejected"
	EventGraphCleared       EventType = "graph_cleared"
	EventGraphRestored      EventType = "graph_restored"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent reports nodes entering, changing or leaving the diagram.
type NodeEvent struct {
	EventBase
	NodeIDs []string `json:"node_ids"`
}

// EdgeEvent reports committed or removed wires.
type EdgeEvent struct {
	EventBase
	Edges []Edge `json:"edges"`
}

// RejectionEvent reports a candidate connection refused by the validator.
type RejectionEvent struct {
	EventBase
	Connection Connection `json:"connection"`
	Rule       Rule       `json:"rule"`
}

// GraphHooks defines callbacks for store observability.
// Every hook is optional and fires after the mutation is visible.
type GraphHooks struct {
	OnNodesAdded  func(context.Context, *NodeEvent)
	OnNodeRemoved func(context.Context, *NodeEvent)
	OnNodeUpdated func(context.Context, *NodeEvent)
	OnEdgeAdded   func(context.Context, *EdgeEvent)
	OnEdgeRemoved func(context.Context, *EdgeEvent)
	OnRejected    func(context.Context, *RejectionEvent)
	OnCleared     func(context.Context, *EventBase)
	OnRestored    func(context.Context, *EventBase)
}

// Merge returns hooks that call h first and then other.
func (h GraphHooks) Merge(other GraphHooks) GraphHooks {
	return GraphHooks{
		OnNodesAdded:  chain(h.OnNodesAdded, other.OnNodesAdded),
		OnNodeRemoved: chain(h.OnNodeRemoved, other.OnNodeRemoved),
		OnNodeUpdated: chain(h.OnNodeUpdated, other.OnNodeUpdated),
		OnEdgeAdded:   chain(h.OnEdgeAdded, other.OnEdgeAdded),
		OnEdgeRemoved: chain(h.OnEdgeRemoved, other.OnEdgeRemoved),
		OnRejected:    chain(h.OnRejected, other.OnRejected),
		OnCleared:     chain(h.OnCleared, other.OnCleared),
		OnRestored:    chain(h.OnRestored, other.OnRestored),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
