package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanjanaganesh14/survis/internal/config"
	"github.com/sanjanaganesh14/survis/internal/importer"
	"github.com/sanjanaganesh14/survis/internal/model"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd 不接受任何参数与选项，行为完全由固定路径与内置配色决定
func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		cfg    *config.AppConfig
		logger *zap.Logger
	)

	return &cobra.Command{
		Use:           "histogram",
		Short:         "Plot bibliography entries per publication year, stacked by category",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = newLogger(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, logger, stdout)
		},
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(cfg *config.AppConfig, logger *zap.Logger, stdout io.Writer) error {
	opts := importer.OptionsFromConfig(cfg)
	opts.Progress = func(evt importer.ProgressEvent) {
		logger.Info("stage",
			zap.String("stage", evt.Stage),
			zap.Int("step", evt.Step),
			zap.Int("steps", evt.Steps),
		)
	}

	coord := importer.NewCoordinator(logger, model.DefaultPalette())
	report, err := coord.Run(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s saved\n", filepath.Base(report.OutputPath))
	return nil
}
