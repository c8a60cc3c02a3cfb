// Command controller runs the Controller loop: it reads per-container
// cgroup counters, consults a pluggable Policy, writes soft/hard limits
// back to cgroupfs, and records the outcome to the configured journal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Samarth827/cgroup-governor/internal/config"
	"github.com/Samarth827/cgroup-governor/internal/controller"
	"github.com/Samarth827/cgroup-governor/internal/journal"
	"github.com/Samarth827/cgroup-governor/internal/policy"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

func main() {
	var (
		configPath string
		dryRun     bool
	)

	root := &cobra.Command{
		Use:   "controller",
		Short: "Adjusts per-container cgroup v2 soft limits in response to throttling",
		Long: `controller is the decision-making half of the cgroup governor: on a
fixed interval it reads each managed container's cpu.stat, memory.current
and io.stat, consults the configured policy (heuristic or model-backed) for
a suggested soft limit, writes the result to cgroupfs, and records the
decision and its later effectiveness to the configured journal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, dryRun)
		},
	}

	root.Flags().StringVar(&configPath, "config", "config/containers.yml", "path to the governor configuration file")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "leave cgroupfs untouched and print events/samples to stdout instead of writing the journal (would-be cgroupfs writes are not printed)")
	root.Flags().Bool("version", false, "print version and exit")
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println("controller", Version)
			os.Exit(0)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, configPath string, dryRun bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	containers, err := cfg.ContainerSpecs()
	if err != nil {
		return fmt.Errorf("validate containers: %w", err)
	}

	j, err := journal.Open(journal.Config{
		EventsSink:  cfg.Events.Sink,
		SamplesSink: cfg.Metrics.SamplesSink,
		SQLitePath:  cfg.Metrics.SQLitePath,
		PostgresDSN: cfg.Events.PostgresDSN,
		DryRun:      dryRun,
	})
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	p, loaded := policy.Load(cfg.ML.ModelPath)
	if cfg.ML.ModelPath != "" && !loaded {
		log.Printf("controller: model %s unavailable, falling back to heuristic policy", cfg.ML.ModelPath)
	}

	interval := time.Duration(cfg.Events.SampleIntervalMs) * time.Millisecond
	c := controller.New(containers, j, p, interval, dryRun)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return c.Run(ctx)
}
