package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves one live diagram over a JSON API, with Server-Sent Events for
graph diffs and interaction changes and Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetString("log-level")
		port, _ := cmd.Flags().GetString("port")

		opts := cli.ServeOptions{
			EditorOptions: editorOptions(cmd),
			LogLevel:      logLevel,
			Port:          port,
		}
		if err := cli.RunServe(opts); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addStorageFlags(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
