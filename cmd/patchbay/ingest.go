package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Send device records to a running editor",
	Long: `Publishes an ADD_NODES message on the Redis ingestion channel. Input is a
JSON message or bare device records, read from the file or Stdin.
Without Redis the devices the records would become are printed instead.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		channel, _ := cmd.Flags().GetString("channel")

		opts := cli.IngestOptions{RedisAddr: redisAddr, Channel: channel}
		if len(args) > 0 {
			opts.Path = args[0]
		}
		if err := cli.RunIngest(cmd.Context(), opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().String("redis-addr", "", "Redis address (env "+cli.EnvRedisAddr+")")
	ingestCmd.Flags().String("channel", "", "Redis channel carrying ingestion messages")
}
