package main

import (
	"github.com/spf13/cobra"

	"github.com/lu-christina/viewer/internal/model"
	"github.com/lu-christina/viewer/internal/pipeline"
)

var susceptibilityChunkSize int

var susceptibilityCmd = &cobra.Command{
	Use:   "susceptibility",
	Short: "Prepare susceptibility evaluation data (chunked layout)",
	Long:  "Groups records by (id, sample_id) and question, pairs steered with unsteered responses, and writes fixed-size chunk files plus an index with an id-to-chunk lookup map. Missing input files are tolerated per model.",
	RunE: func(cmd *cobra.Command, args []string) error {
		chunkSize := susceptibilityChunkSize
		if chunkSize <= 0 {
			chunkSize = cfg.Prepare.ChunkSize
		}
		return runPrepare(cmd, "susceptibility", func(sort pipeline.SortPolicy, outputDir string) pipeline.PrepareFunc {
			opts := pipeline.SusceptibilityOptions{
				OutputDir: outputDir,
				ChunkSize: chunkSize,
				Sort:      sort,
			}
			return func(modelDir string) (*model.RunResult, error) {
				return pipeline.PrepareSusceptibilityModel(modelDir, opts)
			}
		})
	},
}

func init() {
	susceptibilityCmd.Flags().IntVar(&susceptibilityChunkSize, "chunk-size", 0, "items per chunk file (default from config)")
	prepareCmd.AddCommand(susceptibilityCmd)
}
