package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	editor, err := patchbay.New()
	require.NoError(t, err)
	return NewServer(editor)
}

const devices = `[
	{"id":"A","label":"Switch","pins":[{"id":"o","type":"output","spec":"eth"}]},
	{"id":"B","label":"Router","pins":[{"id":"i","type":"input","spec":"eth"}]}
]`

func TestServer_AddAndConnect(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	added, err := s.handleAddDevices(ctx, mcp.CallToolRequest{}, AddDevicesArgs{Devices: devices})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, added.Added)

	again, err := s.handleAddDevices(ctx, mcp.CallToolRequest{}, AddDevicesArgs{Devices: devices})
	require.NoError(t, err)
	assert.Empty(t, again.Added)
	assert.NotNil(t, again.Added)

	wire := ConnectionArgs{Source: "A", SourceHandle: "o", Target: "B", TargetHandle: "i"}

	check, err := s.handleValidate(ctx, mcp.CallToolRequest{}, wire)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Empty(t, s.editor.Store().Edges())

	res, err := s.handleConnect(ctx, mcp.CallToolRequest{}, wire)
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, "xy-edge__Ao-Bi", res.Edge.ID)

	res, err = s.handleConnect(ctx, mcp.CallToolRequest{}, wire)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.RuleSourceOccupied, res.Rule)
	assert.Nil(t, res.Edge)
}

func TestServer_AddDevicesRejectsBadJSON(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleAddDevices(context.Background(), mcp.CallToolRequest{}, AddDevicesArgs{Devices: "{"})
	assert.Error(t, err)
}

func TestServer_NodeTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleAddDevices(ctx, mcp.CallToolRequest{}, AddDevicesArgs{Devices: devices})
	require.NoError(t, err)

	res, err := s.handleRelabelNode(ctx, mcp.CallToolRequest{}, NodeArgs{NodeID: "A", Label: "Core"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	a, _ := s.editor.Store().Node("A")
	assert.Equal(t, "Core", a.Label)

	res, err = s.handleRelabelNode(ctx, mcp.CallToolRequest{}, NodeArgs{NodeID: "A"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleRemoveNode(ctx, mcp.CallToolRequest{}, NodeArgs{NodeID: "B"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleRemoveNode(ctx, mcp.CallToolRequest{}, NodeArgs{NodeID: "B"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_ListTools(t *testing.T) {
	s := newTestServer(t)

	msg := s.mcpServer.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"get_graph", "render_diagram", "add_devices", "connect",
		"validate_connection", "disconnect", "remove_node", "relabel_node", "clear_graph"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
