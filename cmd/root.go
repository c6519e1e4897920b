package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/revise/internal/config"
	"github.com/abhisek/revise/internal/logger"
	"github.com/abhisek/revise/internal/spacedrep"
)

var rootCmd = &cobra.Command{
	Use:          "revise",
	Short:        "Spaced-repetition review scheduler",
	Long:         "Revise decays stored outcome mastery over time and tells a student what to review next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides REVISE_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(upcomingCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtime bundles what every command needs once flags are parsed.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	sched *spacedrep.Scheduler
}

// setup loads configuration, builds the logger and the scheduler.
func setup(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	params, err := cfg.SchedulerParams()
	if err != nil {
		return nil, err
	}
	sched, err := spacedrep.NewScheduler(params, spacedrep.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	return &runtime{cfg: cfg, log: log, sched: sched}, nil
}
