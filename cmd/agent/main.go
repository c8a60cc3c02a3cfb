// Command agent runs the Observer loop: it samples system-wide PSI and
// per-container cgroup statistics and appends events/samples to the
// configured journal. It never writes to cgroupfs.
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
	"github.com/Samarth827/cgroup-governor/internal/journal"
	"github.com/Samarth827/cgroup-governor/internal/observer"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

func main() {
	var (
		configPath string
		dryRun     bool
	)

	root := &cobra.Command{
		Use:   "agent",
		Short: "Samples PSI and cgroup counters and emits a descriptive event stream",
		Long: `agent is the observer half of the cgroup governor: it reads
/proc/pressure/{cpu,memory,io} and each managed container's cgroup v2
counters on a fixed interval, and appends what it finds to the configured
event and sample journals. It holds no write access to cgroupfs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, dryRun)
		},
	}

	root.Flags().StringVar(&configPath, "config", "config/containers.yml", "path to the governor configuration file")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "print events/samples to stdout instead of writing the journal")
	root.Flags().Bool("version", false, "print version and exit")
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println("agent", Version)
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

	interval := time.Duration(cfg.Events.SampleIntervalMs) * time.Millisecond
	o := observer.New(containers, j, interval)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return o.Run(ctx)
}
