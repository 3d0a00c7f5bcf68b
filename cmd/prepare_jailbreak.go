package main

import (
	"github.com/spf13/cobra"

	"github.com/lu-christina/viewer/internal/model"
	"github.com/lu-christina/viewer/internal/pipeline"
)

var jailbreakCmd = &cobra.Command{
	Use:   "jailbreak",
	Short: "Prepare jailbreak evaluation data (one file per prompt)",
	Long:  "Inner-joins unsteered and steered jailbreak records on prompt id and writes an index.json plus individual prompt documents for lazy loading. A model missing any input file is disqualified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrepare(cmd, "jailbreak", func(sort pipeline.SortPolicy, outputDir string) pipeline.PrepareFunc {
			opts := pipeline.JailbreakOptions{
				OutputDir:       outputDir,
				Sort:            sort,
				PersonaMaxWords: cfg.Prepare.PersonaMaxWords,
			}
			return func(modelDir string) (*model.RunResult, error) {
				return pipeline.PrepareJailbreakModel(modelDir, opts)
			}
		})
	},
}

func init() {
	prepareCmd.AddCommand(jailbreakCmd)
}
