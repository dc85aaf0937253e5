package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sizer reports the current size of a diagram. *graph.Store satisfies it.
type Sizer interface {
	Nodes() []domain.Node
	Edges() []domain.Edge
}

// Metrics holds the editor's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	nodesAdded   prometheus.Counter
	nodesRemoved prometheus.Counter
	nodesUpdated prometheus.Counter
	edgesAdded   prometheus.Counter
	edgesRemoved prometheus.Counter
	rejections   *prometheus.CounterVec
	resets       *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patchbay_nodes_added_total",
			Help: "Total number of devices added to the diagram",
		}),
		nodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patchbay_nodes_removed_total",
			Help: "Total number of devices deleted from the diagram",
		}),
		nodesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patchbay_nodes_updated_total",
			Help: "Total number of device relabels and moves",
		}),
		edgesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patchbay_edges_added_total",
			Help: "Total number of committed connections",
		}),
		edgesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patchbay_edges_removed_total",
			Help: "Total number of removed connections, including cascades",
		}),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patchbay_connections_rejected_total",
				Help: "Candidate connections refused by the validator",
			},
			[]string{"rule"},
		),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patchbay_graph_resets_total",
				Help: "Whole-diagram replacements",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.nodesAdded, m.nodesRemoved, m.nodesUpdated,
		m.edgesAdded, m.edgesRemoved,
		m.rejections, m.resets,
	)
	return m
}

// TrackSize registers node and edge gauges sampled from sizer at scrape time.
// Call it once per Metrics.
func (m *Metrics) TrackSize(sizer Sizer) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "patchbay_nodes",
			Help: "Devices currently on the canvas",
		}, func() float64 { return float64(len(sizer.Nodes())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "patchbay_edges",
			Help: "Connections currently on the canvas",
		}, func() float64 { return float64(len(sizer.Edges())) }),
	)
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns graph hooks that record every store event.
func (m *Metrics) Hooks() domain.GraphHooks {
	return domain.GraphHooks{
		OnNodesAdded: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesAdded.Add(float64(len(e.NodeIDs)))
		},
		OnNodeRemoved: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesRemoved.Add(float64(len(e.NodeIDs)))
		},
		OnNodeUpdated: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesUpdated.Add(float64(len(e.NodeIDs)))
		},
		OnEdgeAdded: func(_ context.Context, e *domain.EdgeEvent) {
			m.edgesAdded.Add(float64(len(e.Edges)))
		},
		OnEdgeRemoved: func(_ context.Context, e *domain.EdgeEvent) {
			m.edgesRemoved.Add(float64(len(e.Edges)))
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			m.rejections.WithLabelValues(string(e.Rule)).Inc()
		},
		OnCleared: func(context.Context, *domain.EventBase) {
			m.resets.WithLabelValues("clear").Inc()
		},
		OnRestored: func(context.Context, *domain.EventBase) {
			m.resets.WithLabelValues("restore").Inc()
		},
	}
}
