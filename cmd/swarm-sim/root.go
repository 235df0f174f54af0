package main

import (
	"os"

	"tarun-kavipurapu/swarm-sim/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swarm-sim",
	Short: "Chunked file distribution simulator",
	Long: `Simulates how a file split into chunks spreads from seeds to a swarm of
peers over discrete rounds, under per-peer bandwidth, chunk selection
strategy and cooperation policy.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Sugar.Error(err)
		os.Exit(1)
	}
}
