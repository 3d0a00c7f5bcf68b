package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "viewer-data",
	Short: "Evaluation data preparation for the viewer",
	Long:  "Reshapes steering-evaluation JSONL datasets into the chunked, indexed JSON layout the lazy-loading viewer consumes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
