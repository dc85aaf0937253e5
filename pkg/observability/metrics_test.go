package observability_test

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordStoreEvents(t *testing.T) {
	metrics := observability.NewMetrics()
	store := graph.NewStore(graph.WithHooks(metrics.Hooks()))
	metrics.TrackSize(store)

	store.AddNodes(
		domain.Node{ID: "A", Pins: []domain.Pin{{ID: "o", Type: domain.PinOutput, Spec: "eth"}}},
		domain.Node{ID: "B", Pins: []domain.Pin{{ID: "i", Type: domain.PinInput, Spec: "eth"}}},
	)
	aToB := domain.Connection{Source: "A", SourceHandle: "o", Target: "B", TargetHandle: "i"}
	store.Connect(aToB)
	store.Connect(aToB)
	store.Connect(domain.Connection{Source: "A", SourceHandle: "o", Target: "A", TargetHandle: "o"})

	expected := `
# HELP patchbay_connections_rejected_total Candidate connections refused by the validator
# TYPE patchbay_connections_rejected_total counter
patchbay_connections_rejected_total{rule="self_loop"} 1
patchbay_connections_rejected_total{rule="source_occupied"} 1
# HELP patchbay_edges Connections currently on the canvas
# TYPE patchbay_edges gauge
patchbay_edges 1
# HELP patchbay_nodes_added_total Total number of devices added to the diagram
# TYPE patchbay_nodes_added_total counter
patchbay_nodes_added_total 2
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected),
		"patchbay_connections_rejected_total", "patchbay_edges", "patchbay_nodes_added_total"))

	store.RemoveNode("A")

	expected = `
# HELP patchbay_edges_removed_total Total number of removed connections, including cascades
# TYPE patchbay_edges_removed_total counter
patchbay_edges_removed_total 1
# HELP patchbay_nodes Devices currently on the canvas
# TYPE patchbay_nodes gauge
patchbay_nodes 1
# HELP patchbay_nodes_removed_total Total number of devices deleted from the diagram
# TYPE patchbay_nodes_removed_total counter
patchbay_nodes_removed_total 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected),
		"patchbay_edges_removed_total", "patchbay_nodes", "patchbay_nodes_removed_total"))
}

func TestMetrics_Handler(t *testing.T) {
	metrics := observability.NewMetrics()
	store := graph.NewStore(graph.WithHooks(metrics.Hooks()))
	store.Clear()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `patchbay_graph_resets_total{kind="clear"} 1`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := graph.NewStore(graph.WithHooks(observability.LogHooks(logger)))

	store.AddNodes(domain.Node{ID: "A"})
	store.Connect(domain.Connection{Source: "A", SourceHandle: "x", Target: "A", TargetHandle: "y"})

	out := buf.String()
	assert.Contains(t, out, "nodes_added")
	assert.Contains(t, out, "rule=self_loop")
}
