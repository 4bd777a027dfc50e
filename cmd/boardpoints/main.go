package main

import (
	"fmt"
	"os"
	"time"

	"boardpoints/internal/config"
	"boardpoints/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration

	// Loaded by PersistentPreRunE; nil in tests that call commands directly.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "boardpoints",
	Short: "Story point totals for project boards",
	Long: `boardpoints reads story points from card labels ("3 points", "points: 5", "8")
and writes running totals onto each card, column and the project header.

It works on saved HTML snapshots of a board (annotate, watch) or on a live
Chrome page driven over the DevTools protocol (live).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := resolveWorkspace()
		path := configPath
		if path == "" {
			path = config.DefaultPath(ws)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		cfg = loaded

		if err := logging.Initialize(ws, cfg.Logging, logger); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("config loaded", zap.String("path", path), zap.String("interval", cfg.GetInterval().String()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.boardpoints/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	annotateCmd.Flags().IntVarP(&annotateJobs, "jobs", "j", 4, "Files annotated in parallel")
	annotateCmd.Flags().BoolVarP(&annotateInPlace, "in-place", "i", false, "Rewrite files instead of printing HTML")
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Write the annotated HTML to this path")

	liveCmd.Flags().StringVar(&liveTarget, "target", "", "Attach to an existing page by DevTools target ID")

	browserCmd.AddCommand(browserLaunchCmd)

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(browserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the --workspace flag or the working directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// currentConfig returns the loaded config, or defaults when commands run
// without the root pre-run.
func currentConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

func getLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
