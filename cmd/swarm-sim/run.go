package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/pkg/logger"
	"tarun-kavipurapu/swarm-sim/pkg/monitor"
	"tarun-kavipurapu/swarm-sim/pkg/report"
	"tarun-kavipurapu/swarm-sim/progress"
	"tarun-kavipurapu/swarm-sim/swarm"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*report.Format)(nil)

var (
	numChunks       int
	numPeers        int
	numSeeds        int
	numSelfish      int
	numFreeriders   int
	strategy        = config.RarestFirst
	speedFast       int
	speedMedium     int
	speedSlow       int
	peerConfig      string
	randomSeed      uint64
	silent          bool
	verbose         bool
	showProgress    bool
	outputPath      string
	outputFormat    = report.JSON
	metricsInterval time.Duration
	runInteractive  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		d := swarm.New(cfg)
		collector := report.NewCollector(cfg.Peers)
		metrics := monitor.NewMetrics()

		var renderer *progress.Renderer
		var out swarm.Observer
		switch {
		case silent:
			out = swarm.Silent{}
		case verbose:
			out = swarm.NewVerbose(os.Stdout)
		case showProgress:
			tracker := progress.NewTracker(cfg.Peers, cfg.Seeds, cfg.Chunks)
			renderer = progress.NewRenderer(tracker, os.Stdout, true)
			out = tracker
			go renderer.Start()
		default:
			out = swarm.NewSummary(os.Stdout)
		}

		metricsCtx, stopMetrics := context.WithCancel(cmd.Context())
		defer stopMetrics()
		if metricsInterval > 0 {
			go metrics.LogPeriodic(metricsCtx, metricsInterval)
		}

		var opts []swarm.RunOption
		if cmd.Flags().Changed("random-seed") {
			opts = append(opts, swarm.WithSeed(randomSeed))
		}
		rounds := d.Run(swarm.Multi{out, collector, metrics}, opts...)
		stopMetrics()
		if renderer != nil {
			renderer.StopAndWait()
		}

		totals := monitor.Summarize(rounds)
		metrics.LogRun(totals)
		fmt.Printf("Number of rounds: %d\n", totals.Rounds)
		fmt.Printf("Chunks exchanged: %d\n", totals.ExchangedChunks)
		fmt.Printf("Execution time: %s\n", totals.ExecutionTime)

		rep := report.Build(d, collector, rounds)
		if outputPath != "" {
			if err := exportReport(rep, outputPath, outputFormat); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", outputPath)
		}
		store, err := openRunStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(rep); err != nil {
			return err
		}
		if redisAddr != "" {
			fmt.Printf("Run saved as %s\n", rep.ID)
		}

		if runInteractive {
			saved, err := store.GetRun(rep.ID)
			if err != nil {
				return err
			}
			runShell(saved)
		}
		return nil
	},
}

func buildConfig() (*config.Config, error) {
	params := config.Params{
		Chunks: numChunks,
		Peers:  numPeers,
		Seeds:  numSeeds,
		Speeds: config.Speeds{Fast: speedFast, Medium: speedMedium, Slow: speedSlow},
	}

	if peerConfig != "" {
		descriptors, err := config.LoadDescriptors(peerConfig)
		if err != nil {
			return nil, err
		}
		logger.Sugar.Infof("[Config] loaded %d peer descriptors from %s", len(descriptors), peerConfig)
		cfg, err := config.NewExplicit(params, descriptors)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.NewUniform(params, numSelfish, numFreeriders, strategy)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func exportReport(rep *report.Report, path string, format report.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := report.Encode(file, rep, format); err != nil {
		return err
	}
	return file.Sync()
}

func init() {
	rootCmd.AddCommand(runCmd)
	flags := runCmd.Flags()
	flags.IntVarP(&numChunks, "chunks", "c", 0, "Number of chunks in the file")
	flags.IntVarP(&numPeers, "peers", "p", 0, "Number of peers, seeds included")
	flags.IntVarP(&numSeeds, "seeds", "s", 1, "Number of seeds")
	flags.IntVar(&numSelfish, "selfish", 0, "Number of selfish peers")
	flags.IntVar(&numFreeriders, "freerider", 0, "Number of freerider peers")
	flags.Var(&strategy, "strategy", "Chunk selection strategy: rarest-first, most-common-first or uniform")
	flags.IntVar(&speedFast, "speed-fast", 4, "Fast tier bandwidth")
	flags.IntVar(&speedMedium, "speed-medium", 2, "Medium tier bandwidth")
	flags.IntVar(&speedSlow, "speed-slow", 1, "Slow tier bandwidth")
	flags.StringVar(&peerConfig, "peer-config", "", "File of per-peer descriptors")
	flags.Uint64Var(&randomSeed, "random-seed", 0, "Random seed (default derived from the clock)")
	flags.BoolVarP(&silent, "silent", "S", false, "Print nothing while running")
	flags.BoolVarP(&verbose, "verbose", "V", false, "Print every event")
	flags.BoolVarP(&showProgress, "progress", "P", false, "Show a live progress bar")
	flags.StringVarP(&outputPath, "output", "o", "", "Write the run report to a file")
	flags.Var(&outputFormat, "format", "Report format: json or bencode")
	flags.DurationVar(&metricsInterval, "metrics-interval", 0, "Log runtime metrics at this interval (0 disables)")
	flags.BoolVarP(&runInteractive, "interactive", "i", false, "Open a shell over the report when the run ends")
	addRedisFlags(flags)

	runCmd.MarkFlagRequired("chunks")
	runCmd.MarkFlagRequired("peers")
	runCmd.MarkFlagsMutuallyExclusive("peer-config", "selfish")
	runCmd.MarkFlagsMutuallyExclusive("peer-config", "freerider")
	runCmd.MarkFlagsMutuallyExclusive("peer-config", "strategy")
	runCmd.MarkFlagsMutuallyExclusive("silent", "verbose", "progress")
}
