package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const graphURI = "patchbay://graph"

// ConnectionArgs names the two endpoints of a candidate wire.
type ConnectionArgs struct {
	Source       string `json:"source"`
	SourceHandle string `json:"source_handle"`
	Target       string `json:"target"`
	TargetHandle string `json:"target_handle"`
}

func (a ConnectionArgs) connection() domain.Connection {
	return domain.Connection{
		Source:       a.Source,
		SourceHandle: a.SourceHandle,
		Target:       a.Target,
		TargetHandle: a.TargetHandle,
	}
}

// ConnectResponse is the structured result of connect and validate_connection.
type ConnectResponse struct {
	Valid bool         `json:"valid" jsonschema_description:"Whether every wiring rule passed"`
	Rule  domain.Rule  `json:"rule,omitempty" jsonschema_description:"The first rule that refused the wire"`
	Edge  *domain.Edge `json:"edge,omitempty" jsonschema_description:"The committed wire (connect only)"`
}

// AddDevicesArgs carries device records as JSON text.
type AddDevicesArgs struct {
	Devices string `json:"devices"`
}

// AddDevicesResponse lists the ids of the devices actually added.
type AddDevicesResponse struct {
	Added []string `json:"added" jsonschema_description:"IDs of the added devices; duplicates are skipped"`
}

// NodeArgs identifies a device, with an optional new label.
type NodeArgs struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label,omitempty"`
}

// Server exposes a patchbay Editor as an MCP Server.
type Server struct {
	editor    *patchbay.Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor *patchbay.Editor) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("patchbay-mcp", strings.TrimSpace(patchbay.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func connectionParams(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("source", mcp.Required(), mcp.Description("ID of the device owning the output pin")),
		mcp.WithString("source_handle", mcp.Required(), mcp.Description("ID of the output pin")),
		mcp.WithString("target", mcp.Required(), mcp.Description("ID of the device owning the input pin")),
		mcp.WithString("target_handle", mcp.Required(), mcp.Description("ID of the input pin")),
		mcp.WithOutputSchema[ConnectResponse](),
	}
}

func (s *Server) registerTools() {
	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the live wiring diagram: devices with their pins, and wires."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.editor.Store().Snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: render_diagram
	s.mcpServer.AddTool(mcp.NewTool("render_diagram",
		mcp.WithDescription("Render the live diagram as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := s.editor.Store().Snapshot()
		overlay := graph.OverlayFor(snap, s.editor.Controller().State())
		return mcp.NewToolResultText(graph.GenerateMermaid(snap, overlay)), nil
	})

	// TOOL: add_devices
	s.mcpServer.AddTool(mcp.NewTool("add_devices",
		mcp.WithDescription("Add devices from a JSON device record or array of records. "+
			"Recognised fields: id, label, model, device_type, manufacturer, color, notes, position {x,y}, pins [{id,label,type,spec}]."),
		mcp.WithString("devices", mcp.Required(), mcp.Description("JSON object or array of device records")),
		mcp.WithOutputSchema[AddDevicesResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddDevices))

	// TOOL: connect
	s.mcpServer.AddTool(mcp.NewTool("connect",
		connectionParams("Wire an output pin to an input pin. The wire is refused unless every rule passes.")...,
	), mcp.NewStructuredToolHandler(s.handleConnect))

	// TOOL: validate_connection
	s.mcpServer.AddTool(mcp.NewTool("validate_connection",
		connectionParams("Check whether a wire would be accepted, without adding it.")...,
	), mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: disconnect
	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a wire by id."),
		mcp.WithString("edge_id", mcp.Required(), mcp.Description("ID of the wire")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["edge_id"].(string)
		if !s.editor.Store().RemoveEdge(id) {
			return mcp.NewToolResultError(fmt.Sprintf("wire %q not found", id)), nil
		}
		return mcp.NewToolResultText("removed " + id), nil
	})

	// TOOL: remove_node
	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Delete a device and every wire touching it."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("ID of the device")),
	), mcp.NewTypedToolHandler(s.handleRemoveNode))

	// TOOL: relabel_node
	s.mcpServer.AddTool(mcp.NewTool("relabel_node",
		mcp.WithDescription("Change the label of a device."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("ID of the device")),
		mcp.WithString("label", mcp.Required(), mcp.Description("New non-empty label")),
	), mcp.NewTypedToolHandler(s.handleRelabelNode))

	// TOOL: clear_graph
	s.mcpServer.AddTool(mcp.NewTool("clear_graph",
		mcp.WithDescription("Remove every device and wire from the live diagram."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.editor.Store().Clear()
		return mcp.NewToolResultText("cleared"), nil
	})
}

func (s *Server) handleAddDevices(ctx context.Context, request mcp.CallToolRequest, args AddDevicesArgs) (AddDevicesResponse, error) {
	var payload any
	if err := json.Unmarshal([]byte(args.Devices), &payload); err != nil {
		return AddDevicesResponse{}, fmt.Errorf("devices must be JSON: %w", err)
	}
	ids := s.editor.Ingestion().Ingest(payload)
	if ids == nil {
		ids = []string{}
	}
	return AddDevicesResponse{Added: ids}, nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args ConnectionArgs) (ConnectResponse, error) {
	edge, err := s.editor.Store().AddEdge(args.connection())
	if err != nil {
		return ConnectResponse{Rule: domain.RejectionRule(err)}, nil
	}
	return ConnectResponse{Valid: true, Edge: &edge}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ConnectionArgs) (ConnectResponse, error) {
	err := s.editor.Store().Validate(args.connection())
	return ConnectResponse{Valid: err == nil, Rule: domain.RejectionRule(err)}, nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (*mcp.CallToolResult, error) {
	if !s.editor.Store().RemoveNode(args.NodeID) {
		return mcp.NewToolResultError(fmt.Sprintf("device %q not found", args.NodeID)), nil
	}
	return mcp.NewToolResultText("removed " + args.NodeID), nil
}

func (s *Server) handleRelabelNode(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (*mcp.CallToolResult, error) {
	if args.Label == "" {
		return mcp.NewToolResultError("label must not be empty"), nil
	}
	if !s.editor.Store().RelabelNode(args.NodeID, args.Label) {
		return mcp.NewToolResultError(fmt.Sprintf("device %q not found", args.NodeID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("relabelled %s to %q", args.NodeID, args.Label)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: patchbay://graph
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Live Wiring Diagram",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.editor.Store().Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode diagram: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
