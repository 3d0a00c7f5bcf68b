package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/pipeline"
	"github.com/lu-christina/viewer/internal/store"
)

var (
	prepareInputDir  string
	prepareOutputDir string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare evaluation datasets for the viewer",
	Long:  "Transforms per-model evaluation JSONL files into the viewer's lazy-loading JSON layout. Each model is processed independently; a failing model never aborts the batch.",
}

func init() {
	prepareCmd.PersistentFlags().StringVar(&prepareInputDir, "input-dir", "", "evaluation data root containing per-model directories (default from config)")
	prepareCmd.PersistentFlags().StringVar(&prepareOutputDir, "output-dir", "", "output root for prepared viewer data (default from config)")
	rootCmd.AddCommand(prepareCmd)
}

// resolvePrepareDirs applies the flag-over-config precedence. Without flags,
// the eval name is appended to the configured roots so both variants share
// one config.
func resolvePrepareDirs(evalName string) (inputDir, outputDir string) {
	inputDir = prepareInputDir
	if inputDir == "" {
		inputDir = filepath.Join(cfg.Prepare.InputDir, evalName)
	}
	outputDir = prepareOutputDir
	if outputDir == "" {
		outputDir = filepath.Join(cfg.Prepare.OutputDir, evalName)
	}
	return inputDir, outputDir
}

// loadSortPolicy returns the configured magnitude sort policy, falling back
// to the shipped default (llama ascending, everything else descending).
func loadSortPolicy() (pipeline.SortPolicy, error) {
	if cfg.Prepare.SortPolicyFile == "" {
		return pipeline.DefaultSortPolicy(), nil
	}
	return pipeline.LoadSortPolicy(cfg.Prepare.SortPolicyFile)
}

// runPrepare discovers models under the input root and runs prep over each,
// recording run history best-effort. Partial failure is reported in the
// summary, not in the exit code.
func runPrepare(cmd *cobra.Command, evalName string, buildPrep func(sort pipeline.SortPolicy, outputDir string) pipeline.PrepareFunc) error {
	ctx := cmd.Context()

	inputDir, outputDir := resolvePrepareDirs(evalName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", outputDir)
	}

	sortPolicy, err := loadSortPolicy()
	if err != nil {
		return err
	}

	models, err := pipeline.DiscoverModels(inputDir)
	if err != nil {
		return err
	}
	zap.L().Info("discovered models",
		zap.String("eval", evalName),
		zap.Strings("models", models))

	st := openRunStore(ctx)
	if st != nil {
		defer st.Close() //nolint:errcheck
	}

	results := pipeline.Run(ctx, st, evalName, inputDir, models, buildPrep(sortPolicy, outputDir))
	pipeline.Summarize(os.Stdout, results)
	return nil
}

// openRunStore opens the configured run-history store. Run recording is
// best-effort: any failure here downgrades to a warning and a nil store.
func openRunStore(ctx context.Context) store.Store {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		zap.L().Warn("run store unavailable, continuing without run history", zap.Error(err))
		return nil
	}
	if st == nil {
		return nil
	}
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run store migration failed, continuing without run history", zap.Error(err))
		_ = st.Close()
		return nil
	}
	return st
}
