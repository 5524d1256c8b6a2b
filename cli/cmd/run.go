package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/runtime"
	"github.com/justapithecus/seam/types"
)

// RunCommand returns the run command.
// This is the only command that executes work.
func RunCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:    "asset",
			Aliases: []string{"a"},
			Usage:   "Restrict the run to one asset; upstreams must already be satisfied in the store",
		},
		&cli.StringFlag{
			Name:    "partition",
			Aliases: []string{"p"},
			Usage:   "Restrict the run to one partition key (dim=value|dim=value), requires --asset",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Worker pool size",
			Value: runtime.DefaultParallel,
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Rematerialize partitions that already succeeded",
		},
		&cli.StringFlag{
			Name:  "trigger",
			Usage: "What initiated the run (recorded in logs and events)",
			Value: "manual",
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "Path to dataset fixture file (YAML); empty materializes declared schemas with no rows",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress run summary output",
		},
		&cli.StringFlag{
			Name:  "webhook-url",
			Usage: "POST completion events to this URL",
		},
		&cli.StringFlag{
			Name:  "publish-redis-url",
			Usage: "Publish completion events to this Redis instance",
		},
		&cli.StringFlag{
			Name:  "publish-redis-channel",
			Usage: "Redis pub/sub channel for completion events",
		},
	}
	flags = append(flags, StoreFlags()...)

	return &cli.Command{
		Name:   "run",
		Usage:  "Materialize outstanding asset-partitions in dependency order",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	opts := runtime.RunOptions{
		Asset:    c.String("asset"),
		Parallel: c.Int("parallel"),
		Force:    c.Bool("force"),
		Trigger:  c.String("trigger"),
	}

	if p := c.String("partition"); p != "" {
		if opts.Asset == "" {
			return cli.Exit("--partition requires --asset", runtime.ExitCodeConfig)
		}
		key, err := types.ParsePartitionKey(p)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid partition key: %v", err), runtime.ExitCodeConfig)
		}
		opts.Key = key
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid config: %v", err), runtime.ExitCodeConfig)
	}

	var df *DataFile
	if path := c.String("data"); path != "" {
		df, err = loadDataFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid data file: %v", err), runtime.ExitCodeConfig)
		}
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	st, err := buildStore(ctx, c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid store config: %v", err), runtime.ExitCodeConfig)
	}
	defer func() { _ = st.Close() }()

	pub, err := buildAdapter(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), runtime.ExitCodeConfig)
	}
	if pub != nil {
		defer func() { _ = pub.Close() }()
	}

	collector := metrics.NewCollector("", c.String("store-backend"))
	orch, err := runtime.NewOrchestrator(runtime.OrchestratorConfig{
		Config:    cfg,
		Registry:  buildRegistry(cfg, df),
		Store:     st,
		Logger:    log.NewLogger(&types.RunMeta{Trigger: opts.Trigger, Attempt: 1}),
		Collector: collector,
		Adapter:   pub,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid pipeline: %v", err), runtime.ExitCodeConfig)
	}

	report, err := orch.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if !c.Bool("quiet") {
		runtime.PrintRunSummary(report)
	}

	return cli.Exit("", report.ExitCode())
}
