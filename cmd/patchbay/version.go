package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/patchbay"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the patchbay release and Go runtime",
	Long:  `Prints the patchbay release embedded from the VERSION file, followed by the Go version and platform the binary was built for.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "patchbay %s (%s %s/%s)\n",
			strings.TrimSpace(patchbay.Version), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
