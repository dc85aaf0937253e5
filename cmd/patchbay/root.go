package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patchbay",
	Short: "Patchbay is a typed device wiring editor",
	Long: `Patchbay keeps a diagram of devices and the wires between their pins,
refusing any wire whose pins disagree on direction or spec.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory; diagrams are kept under .patchbay/diagrams")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

// addStorageFlags registers the flags read by editorOptions.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "yaml", "Diagram file format: yaml or json")
	cmd.Flags().String("redis-addr", "", "Redis address for persistence and ingestion (env "+cli.EnvRedisAddr+")")
	cmd.Flags().String("redis-prefix", "", "Key prefix for diagrams stored in Redis")
	cmd.Flags().String("channel", "", "Redis channel carrying ingestion messages")
	cmd.Flags().Duration("ttl", 0, "Expiry of diagrams stored in Redis (0 keeps them)")
	cmd.Flags().String("catalog-url", "", "Device catalog endpoint (env "+cli.EnvCatalogURL+")")
	cmd.Flags().String("load", "", "Diagram to open at start and save on exit")
}

func editorOptions(cmd *cobra.Command) cli.EditorOptions {
	dir, _ := cmd.Flags().GetString("dir")
	format, _ := cmd.Flags().GetString("format")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	redisPrefix, _ := cmd.Flags().GetString("redis-prefix")
	channel, _ := cmd.Flags().GetString("channel")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	catalogURL, _ := cmd.Flags().GetString("catalog-url")
	load, _ := cmd.Flags().GetString("load")

	return cli.EditorOptions{
		Dir:         dir,
		Format:      format,
		RedisAddr:   redisAddr,
		RedisPrefix: redisPrefix,
		Channel:     channel,
		TTL:         ttl,
		CatalogURL:  catalogURL,
		Load:        load,
	}
}
