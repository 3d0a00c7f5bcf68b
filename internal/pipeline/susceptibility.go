package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/jsonl"
	"github.com/lu-christina/viewer/internal/model"
	"github.com/lu-christina/viewer/internal/normalize"
)

const (
	evalSusceptibility = "susceptibility"

	// The susceptibility evaluation asks a fixed battery of five questions
	// (ids 0 through 4) per persona.
	susceptibilityQuestions = 5
)

var susceptibilityDatasets = []datasetFile{
	{"steered_susceptibility", "steered/susceptibility_50_scores.jsonl"},
	{"unsteered_susceptibility", "unsteered/susceptibility_50_scores.jsonl"},
	{"steered_default", "steered/default_50_scores.jsonl"},
	{"unsteered_default", "unsteered/default_50_scores.jsonl"},
}

// SusceptibilityOptions configure the chunked (indexed) preparation variant.
type SusceptibilityOptions struct {
	OutputDir string
	ChunkSize int
	Sort      SortPolicy
}

// PrepareSusceptibilityModel reshapes one model's susceptibility evaluation
// data into the chunked viewer layout: <out>/<model>/index.json plus
// fixed-size chunk files under chunks/. Records group by (id, sample_id) and
// question; items missing either side of the steered/unsteered pair are
// dropped. Individual missing input files are tolerated, but a model with no
// data at all is disqualified.
func PrepareSusceptibilityModel(modelDir string, opts SusceptibilityOptions) (*model.RunResult, error) {
	modelName := filepath.Base(modelDir)
	log := zap.L().With(zap.String("model", modelName))

	data := make(map[string][]model.Record, len(susceptibilityDatasets))
	for _, ds := range susceptibilityDatasets {
		records, err := jsonl.Load(filepath.Join(modelDir, ds.rel), jsonl.MissingSkip)
		if err != nil {
			return nil, err
		}
		data[ds.name] = records
		log.Info("pipeline: loaded dataset",
			zap.String("dataset", ds.name),
			zap.Int("records", len(records)))
	}

	allRole := append(append([]model.Record{}, data["steered_susceptibility"]...), data["unsteered_susceptibility"]...)
	allDefault := append(append([]model.Record{}, data["steered_default"]...), data["unsteered_default"]...)
	if len(allRole) == 0 && len(allDefault) == 0 {
		return nil, eris.Wrapf(ErrDatasetMissing, "susceptibility: no data under %s", modelDir)
	}

	// The indexed layout lists zero (unsteered) alongside the steered
	// magnitudes so the viewer renders the full sweep.
	magSet := map[string]bool{MagnitudeKey(0): true}
	for _, rec := range append(append([]model.Record{}, allRole...), allDefault...) {
		if rec.Magnitude != 0 {
			magSet[MagnitudeKey(rec.Magnitude)] = true
		}
	}
	magnitudes, err := parseMagnitudeSet(magSet)
	if err != nil {
		return nil, err
	}
	SortMagnitudes(magnitudes, opts.Sort.DirectionFor(modelName))

	roleGrouped := GroupBySample(allRole)
	defaultGrouped := GroupBySample(allDefault)

	modelOut := filepath.Join(opts.OutputDir, modelName)
	chunksDir := filepath.Join(modelOut, "chunks")
	if err := ensureDir(chunksDir); err != nil {
		return nil, err
	}

	questions := make(map[string]model.QuestionManifest, susceptibilityQuestions)
	var totalItems, totalChunks int

	for q := 0; q < susceptibilityQuestions; q++ {
		roleEntries := buildQuestionEntries(roleGrouped, q, false)
		defaultEntries := buildQuestionEntries(defaultGrouped, q, true)

		roleChunks, roleItems, err := writeQuestionChunks(chunksDir, q, "role", roleEntries, opts.ChunkSize)
		if err != nil {
			return nil, err
		}
		defaultChunks, defaultItems, err := writeQuestionChunks(chunksDir, q, "default", defaultEntries, opts.ChunkSize)
		if err != nil {
			return nil, err
		}

		questions[strconv.Itoa(q)] = model.QuestionManifest{
			RolePromptedChunks: roleChunks,
			DefaultChunks:      defaultChunks,
			RolePromptedItems:  roleItems,
			DefaultItems:       defaultItems,
		}
		totalItems += len(roleEntries) + len(defaultEntries)
		totalChunks += len(roleChunks) + len(defaultChunks)

		log.Info("pipeline: question prepared",
			zap.Int("question", q),
			zap.Int("role_entries", len(roleEntries)),
			zap.Int("default_entries", len(defaultEntries)))
	}

	index := model.SusceptibilityIndex{
		Model:          modelName,
		Eval:           evalSusceptibility,
		TotalQuestions: susceptibilityQuestions,
		Magnitudes:     magnitudes,
		Questions:      questions,
	}
	if err := writeJSON(filepath.Join(modelOut, "index.json"), index); err != nil {
		return nil, err
	}

	log.Info("pipeline: susceptibility model prepared",
		zap.Int("items", totalItems),
		zap.Int("chunks", totalChunks),
		zap.Int("magnitudes", len(magnitudes)))

	return &model.RunResult{
		Items:      totalItems,
		Chunks:     totalChunks,
		Magnitudes: len(magnitudes),
	}, nil
}

// buildQuestionEntries assembles the grouped items for one question, dropping
// any item that lacks either side of the steered/unsteered pair. Entries sort
// by (prompt_id, id) for stable chunk boundaries.
func buildQuestionEntries(grouped map[Key]map[int][]model.Record, questionID int, forceDefault bool) []model.QuestionEntry {
	var entries []model.QuestionEntry
	for key, byQuestion := range grouped {
		recs := byQuestion[questionID]
		if len(recs) == 0 {
			continue
		}
		responses := BuildResponses(recs)
		if !Paired(responses) {
			zap.L().Info("pipeline: item missing one side of the steered/unsteered pair, dropped",
				zap.String("id", key.ID),
				zap.Int("sample_id", key.SampleID),
				zap.Int("question_id", questionID))
			continue
		}

		first := recs[0]
		role := first.Role
		if forceDefault {
			role = "default"
		} else if role == "" {
			role = "unknown"
		}

		entries = append(entries, model.QuestionEntry{
			ID:           key.ID + "_" + strconv.Itoa(key.SampleID),
			Role:         role,
			Question:     first.Question,
			SystemPrompt: normalize.SystemPrompt(first.Prompt, first.Question, role),
			PromptID:     first.PromptID,
			Responses:    responses,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PromptID != entries[j].PromptID {
			return entries[i].PromptID < entries[j].PromptID
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// writeQuestionChunks paginates one question's entries into chunk files named
// q<question>_<kind>_<n>.json and returns the chunk names along with the
// id -> (chunk, offset) lookup map.
func writeQuestionChunks(chunksDir string, questionID int, kind string, entries []model.QuestionEntry, chunkSize int) ([]string, map[string]model.ChunkRef, error) {
	chunks := SplitChunks(entries, chunkSize)
	names := make([]string, 0, len(chunks))
	items := make(map[string]model.ChunkRef, len(entries))

	for i, chunk := range chunks {
		name := fmt.Sprintf("q%d_%s_%d", questionID, kind, i)
		if err := writeJSON(filepath.Join(chunksDir, name+".json"), chunk); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		for offset, entry := range chunk {
			items[entry.ID] = model.ChunkRef{Chunk: i, Offset: offset}
		}
	}
	return names, items, nil
}
