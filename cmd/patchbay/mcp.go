package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes a live diagram to AI agents as MCP tools (add_devices, connect,
validate_connection, render_diagram, ...) and the patchbay://graph resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		logLevel, _ := cmd.Flags().GetString("log-level")

		logger, err := cli.CreateLogger(logLevel, false)
		if err != nil {
			log.Fatalf("Error configuring logger: %v", err)
		}
		slog.SetDefault(logger)

		// Create a context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := editorOptions(cmd).Env()
		components, err := cli.BuildEditor(ctx, opts, logger)
		if err != nil {
			log.Fatalf("Error initializing patchbay: %v", err)
		}
		defer components.Close()

		sub, err := components.Subscribe(ctx)
		if err != nil {
			log.Fatalf("Error subscribing to ingestion: %v", err)
		}
		if sub != nil {
			defer sub.Close()
		}

		srv := mcp.NewServer(components.Editor)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			slog.Info("Starting patchbay MCP Server (Stdio)...")
			err = srv.ServeStdio()
		case "sse":
			slog.Info("Starting patchbay MCP Server (SSE)", "port", port)
			err = srv.ServeSSE(ctx, port)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}

		if opts.Load != "" {
			if saveErr := components.Editor.SaveDiagram(context.WithoutCancel(ctx), opts.Load); saveErr != nil {
				slog.Error("Autosave failed", "diagram_id", opts.Load, "err", saveErr)
			}
		}
		if err != nil {
			slog.Error("MCP Server execution failed", "err", err)
			os.Exit(1)
		}
		slog.Info("MCP Server stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addStorageFlags(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
