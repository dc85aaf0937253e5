package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/patchbay/pkg/domain"
)

// LogHooks returns graph hooks writing one structured line per event.
func LogHooks(logger *slog.Logger) domain.GraphHooks {
	return domain.GraphHooks{
		OnNodesAdded: func(_ context.Context, e *domain.NodeEvent) {
			logger.Info("nodes_added", "node_ids", e.NodeIDs)
		},
		OnNodeRemoved: func(_ context.Context, e *domain.NodeEvent) {
			logger.Info("node_removed", "node_ids", e.NodeIDs)
		},
		OnNodeUpdated: func(_ context.Context, e *domain.NodeEvent) {
			logger.Debug("node_updated", "node_ids", e.NodeIDs)
		},
		OnEdgeAdded: func(_ context.Context, e *domain.EdgeEvent) {
			for _, edge := range e.Edges {
				logger.Info("edge_added", "edge_id", edge.ID)
			}
		},
		OnEdgeRemoved: func(_ context.Context, e *domain.EdgeEvent) {
			for _, edge := range e.Edges {
				logger.Info("edge_removed", "edge_id", edge.ID)
			}
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			logger.Debug("connection_rejected",
				"source", e.Connection.Source+"."+e.Connection.SourceHandle,
				"target", e.Connection.Target+"."+e.Connection.TargetHandle,
				"rule", e.Rule,
			)
		},
		OnCleared: func(context.Context, *domain.EventBase) {
			logger.Info("graph_cleared")
		},
		OnRestored: func(context.Context, *domain.EventBase) {
			logger.Info("graph_restored")
		},
	}
}
