package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export a diagram as Mermaid",
	Long:  `Reads a diagram document and outputs a Mermaid flowchart (graph LR), flagging devices with no wire.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RenderDiagram(os.Stdout, args[0]); err != nil {
			fmt.Printf("Error rendering diagram: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
