package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/results"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	redisAddr     string
	redisPassword string
	redisDB       int
	redisTTL      time.Duration
	listLimit     int
)

func addRedisFlags(flags *pflag.FlagSet) {
	flags.StringVar(&redisAddr, "redis", os.Getenv("SIM_REDIS_ADDR"), "Redis address for stored runs")
	flags.StringVar(&redisPassword, "redis-password", "", "Redis password")
	flags.IntVar(&redisDB, "redis-db", 0, "Redis database")
	flags.DurationVar(&redisTTL, "redis-ttl", 0, "Expire stored runs after this long (0 keeps them)")
}

func openStore(ctx context.Context) (results.Storage, error) {
	if redisAddr == "" {
		return nil, fmt.Errorf("no redis address (use --redis or SIM_REDIS_ADDR)")
	}
	return results.NewRedisStorage(ctx, redisAddr, redisPassword, redisDB, redisTTL)
}

// openRunStore keeps the run in memory when no redis address is given.
func openRunStore(ctx context.Context) (results.Storage, error) {
	if redisAddr == "" {
		return results.NewMemoryStorage(), nil
	}
	return openStore(ctx)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse stored runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.ListRuns(listLimit)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No stored runs.")
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%-32s %s seed=%d peers=%d chunks=%d rounds=%d exchanged=%d\n",
				info.ID, info.CreatedAt.Format("2006/01/02 15:04:05"),
				info.Seed, info.Peers, info.Chunks, info.Rounds, info.ExchangedChunks)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the summary of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.GetRun(args[0])
		if err != nil {
			return err
		}
		printQuery(rep, "summary")
		printQuery(rep, "policies")
		return nil
	},
}

var runsShellCmd = &cobra.Command{
	Use:   "shell <id>",
	Short: "Open a query shell over a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.GetRun(args[0])
		if err != nil {
			return err
		}
		runShell(rep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsShellCmd)
	addRedisFlags(runsCmd.PersistentFlags())
	runsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
}
