package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a diagram interactively",
	Long: `Opens a wiring session on the terminal. Type 'help' for the commands.
With --load the diagram is opened (or created) at start and saved on exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetString("log-level")
		headless, _ := cmd.Flags().GetBool("headless")

		opts := cli.EditOptions{
			EditorOptions: editorOptions(cmd),
			LogLevel:      logLevel,
			Headless:      headless,
		}
		if err := cli.RunEdit(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	addStorageFlags(editCmd)
	editCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompts or rendering)")

	rootCmd.Run = editCmd.Run
}
