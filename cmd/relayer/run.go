package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chainsafe/lockmint-relayer/pkg/app/relayer"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
)

var memoryStore bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the relayer until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []relayer.Option
		if memoryStore {
			opts = append(opts, relayer.WithMemoryStore())
		}
		return relayer.NewServer(cfg, opts...).Run(ctx)
	},
}

func init() {
	runCmd.Flags().BoolVar(&memoryStore, "memory", false, "Keep relay state in memory instead of PostgreSQL")
}
