package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a diagram document for broken wiring",
	Long:  `Replays every wire of a YAML or JSON diagram through the connection rules and reports each one that would be refused.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		errs, err := cli.ValidateDiagram(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Printf("  - %v\n", e)
			}
			fmt.Printf("Validation failed: %d problem(s)\n", len(errs))
			os.Exit(1)
		}
		fmt.Println("Diagram is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
