// Package pipeline implements the grouping-and-chunking transforms that
// reshape evaluation JSONL datasets into the viewer's lazy-loading layout,
// plus the multi-model supervisor that runs them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/model"
	"github.com/lu-christina/viewer/internal/store"
)

// ErrDatasetMissing marks a model whose required input files are absent. The
// model is disqualified (no output directory) but the batch continues.
var ErrDatasetMissing = eris.New("required dataset missing")

// PrepareFunc prepares a single model directory and reports counts.
type PrepareFunc func(modelDir string) (*model.RunResult, error)

// ModelResult is the outcome of preparing one model.
type ModelResult struct {
	Model  string
	Status model.RunStatus
	Result *model.RunResult
	Err    error
}

// DiscoverModels lists model dataset directories under root: immediate
// subdirectories holding a steered/ or unsteered/ directory. Hidden
// directories and unrelated ones (scripts, viewer output) are skipped.
func DiscoverModels(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read input dir %s", root)
	}

	var models []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if dirExists(filepath.Join(dir, "steered")) || dirExists(filepath.Join(dir, "unsteered")) {
			models = append(models, e.Name())
		}
	}
	if len(models) == 0 {
		return nil, eris.Errorf("pipeline: no model directories under %s", root)
	}
	sort.Strings(models)
	return models, nil
}

// Run processes each model sequentially and independently. Failures are
// caught at the model boundary, logged, recorded in the store when one is
// configured, and never stop the remaining models. Store writes are
// best-effort: the filesystem output is the contract.
func Run(ctx context.Context, st store.Store, evalName, inputDir string, models []string, prep PrepareFunc) []ModelResult {
	results := make([]ModelResult, 0, len(models))
	for _, name := range models {
		log := zap.L().With(zap.String("model", name), zap.String("eval", evalName))
		log.Info("pipeline: preparing model")

		var runID string
		if st != nil {
			run, err := st.CreateRun(ctx, name, evalName)
			if err != nil {
				log.Warn("pipeline: failed to record run start", zap.Error(err))
			} else {
				runID = run.ID
			}
		}

		res, err := prep(filepath.Join(inputDir, name))
		mr := ModelResult{Model: name, Status: model.RunStatusComplete, Result: res, Err: err}
		if err != nil {
			mr.Status = model.RunStatusFailed
			mr.Result = &model.RunResult{Error: err.Error()}
			if errors.Is(err, ErrDatasetMissing) {
				log.Warn("pipeline: model disqualified", zap.Error(err))
			} else {
				log.Error("pipeline: model failed", zap.Error(err))
			}
		}

		if runID != "" {
			if err := st.UpdateRunResult(ctx, runID, mr.Status, mr.Result); err != nil {
				log.Warn("pipeline: failed to record run result", zap.Error(err))
			}
		}
		results = append(results, mr)
	}
	return results
}

// Summarize writes the per-model outcome table and returns the failure count.
func Summarize(out io.Writer, results []ModelResult) int {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MODEL\tSTATUS\tITEMS\tCHUNKS\tMAGNITUDES\tERROR")

	var failed int
	for _, r := range results {
		var items, chunks, mags, errMsg string
		if r.Result != nil && r.Err == nil {
			items = fmt.Sprintf("%d", r.Result.Items)
			chunks = fmt.Sprintf("%d", r.Result.Chunks)
			mags = fmt.Sprintf("%d", r.Result.Magnitudes)
		}
		if r.Err != nil {
			failed++
			errMsg = r.Err.Error()
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Model, r.Status, items, chunks, mags, errMsg)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\n%d/%d models prepared\n", len(results)-failed, len(results))
	return failed
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
