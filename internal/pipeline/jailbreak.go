package pipeline

import (
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
	evalJailbreak = "jailbreak"

	kindJailbreak = "jailbreak"
	kindDefault   = "default"
)

// datasetFile names one JSONL input relative to a model directory.
type datasetFile struct {
	name string
	rel  string
}

var jailbreakDatasets = []datasetFile{
	{"unsteered_jailbreak", "unsteered/unsteered_scores.jsonl"},
	{"unsteered_default", "unsteered/unsteered_default_scores.jsonl"},
	{"steered_jailbreak", "steered/jailbreak_1100_scores.jsonl"},
	{"steered_default", "steered/default_1100_scores.jsonl"},
}

// JailbreakOptions configure the per-prompt (non-indexed) preparation variant.
type JailbreakOptions struct {
	OutputDir       string
	Sort            SortPolicy
	PersonaMaxWords int
}

// PrepareJailbreakModel reshapes one model's jailbreak evaluation data into
// the per-prompt viewer layout: <out>/<model>/index.json plus one document
// per prompt under prompts/. Prompt ids are inner-joined across the unsteered
// and steered jailbreak sets; a missing input file disqualifies the whole
// model.
func PrepareJailbreakModel(modelDir string, opts JailbreakOptions) (*model.RunResult, error) {
	modelName := filepath.Base(modelDir)
	log := zap.L().With(zap.String("model", modelName))

	for _, ds := range jailbreakDatasets {
		if !jsonl.Exists(filepath.Join(modelDir, ds.rel)) {
			return nil, eris.Wrapf(ErrDatasetMissing, "jailbreak: %s (%s)", ds.name, filepath.Join(modelDir, ds.rel))
		}
	}

	data := make(map[string][]model.Record, len(jailbreakDatasets))
	for _, ds := range jailbreakDatasets {
		records, err := jsonl.Load(filepath.Join(modelDir, ds.rel), jsonl.MissingFail)
		if err != nil {
			return nil, err
		}
		data[ds.name] = records
		log.Info("pipeline: loaded dataset",
			zap.String("dataset", ds.name),
			zap.Int("records", len(records)))
	}

	// Inner join: only prompts present in both the unsteered and steered
	// jailbreak sets survive.
	unsteeredIDs := idSet(data["unsteered_jailbreak"])
	steeredIDs := idSet(data["steered_jailbreak"])
	validIDs := make(map[string]bool, len(unsteeredIDs))
	for id := range unsteeredIDs {
		if steeredIDs[id] {
			validIDs[id] = true
		}
	}
	log.Info("pipeline: joined prompt ids",
		zap.Int("valid", len(validIDs)),
		zap.Int("unsteered_only", len(unsteeredIDs)-len(validIDs)))

	maxWords := opts.PersonaMaxWords
	if maxWords <= 0 {
		maxWords = normalize.DefaultPersonaWords
	}

	prompts := make(map[string]*model.PromptItem, len(validIDs))
	categories := make(map[string]bool)

	for _, rec := range data["unsteered_jailbreak"] {
		id := rec.ID.String()
		if !validIDs[id] {
			continue
		}
		if _, dup := prompts[id]; dup {
			log.Warn("pipeline: duplicate unsteered prompt record, keeping the later record",
				zap.String("id", id))
		}
		prompts[id] = &model.PromptItem{
			ID:           id,
			Question:     rec.Question,
			Persona:      normalize.TruncatePersona(rec.Persona, maxWords),
			HarmCategory: rec.HarmCategory,
			Responses: model.PromptResponses{
				Unsteered: map[string]model.ResponseScore{
					kindJailbreak: {Response: rec.Response, Score: normalize.Score(rec.Score)},
				},
			},
		}
		if rec.HarmCategory != "" {
			categories[rec.HarmCategory] = true
		}
	}

	for _, rec := range data["unsteered_default"] {
		if item, ok := prompts[rec.ID.String()]; ok {
			item.Responses.Unsteered[kindDefault] = model.ResponseScore{
				Response: rec.Response,
				Score:    normalize.Score(rec.Score),
			}
		}
	}

	// magnitude key -> kind -> prompt id -> response
	steeredByMag := make(map[string]map[string]map[string]model.ResponseScore)
	collectSteered(steeredByMag, data["steered_jailbreak"], kindJailbreak, log)
	collectSteered(steeredByMag, data["steered_default"], kindDefault, log)

	// Left-attach steered responses, then prune prompts whose steered side
	// ended up empty.
	for id, item := range prompts {
		item.Responses.Steered = make(map[string]map[string]model.ResponseScore)
		for magKey, byKind := range steeredByMag {
			slot := make(map[string]model.ResponseScore, 2)
			for _, kind := range []string{kindJailbreak, kindDefault} {
				if rs, ok := byKind[kind][id]; ok {
					slot[kind] = rs
				}
			}
			if len(slot) > 0 {
				item.Responses.Steered[magKey] = slot
			}
		}
		if len(item.Responses.Steered) == 0 {
			log.Info("pipeline: prompt has no steered data, dropped", zap.String("id", id))
			delete(prompts, id)
		}
	}

	promptIDs := make([]string, 0, len(prompts))
	magSet := make(map[string]bool)
	for id, item := range prompts {
		promptIDs = append(promptIDs, id)
		for magKey := range item.Responses.Steered {
			magSet[magKey] = true
		}
	}
	sortPromptIDs(promptIDs)

	magnitudes, err := parseMagnitudeSet(magSet)
	if err != nil {
		return nil, err
	}
	SortMagnitudes(magnitudes, opts.Sort.DirectionFor(modelName))

	modelOut := filepath.Join(opts.OutputDir, modelName)
	promptsDir := filepath.Join(modelOut, "prompts")
	if err := ensureDir(promptsDir); err != nil {
		return nil, err
	}
	for id, item := range prompts {
		if err := writeJSON(filepath.Join(promptsDir, id+".json"), item); err != nil {
			return nil, err
		}
	}

	index := model.JailbreakIndex{
		Model:          modelName,
		Eval:           evalJailbreak,
		PromptIDs:      promptIDs,
		Magnitudes:     magnitudes,
		HarmCategories: sortedKeys(categories),
		TotalPrompts:   len(promptIDs),
	}
	if err := writeJSON(filepath.Join(modelOut, "index.json"), index); err != nil {
		return nil, err
	}

	log.Info("pipeline: jailbreak model prepared",
		zap.Int("prompts", len(promptIDs)),
		zap.Int("magnitudes", len(magnitudes)))

	return &model.RunResult{
		Items:      len(promptIDs),
		Magnitudes: len(magnitudes),
	}, nil
}

// collectSteered indexes steered records by magnitude key, kind, and prompt
// id, warning loudly when a slot is already occupied.
func collectSteered(byMag map[string]map[string]map[string]model.ResponseScore, records []model.Record, kind string, log *zap.Logger) {
	for _, rec := range records {
		id := rec.ID.String()
		if id == "" {
			continue
		}
		magKey := MagnitudeKey(rec.Magnitude)
		byKind := byMag[magKey]
		if byKind == nil {
			byKind = map[string]map[string]model.ResponseScore{
				kindJailbreak: {},
				kindDefault:   {},
			}
			byMag[magKey] = byKind
		}
		if _, dup := byKind[kind][id]; dup {
			log.Warn("pipeline: duplicate steered record, keeping the later record",
				zap.String("id", id),
				zap.String("kind", kind),
				zap.String("magnitude", magKey))
		}
		byKind[kind][id] = model.ResponseScore{
			Response: rec.Response,
			Score:    normalize.Score(rec.Score),
		}
	}
}

// idSet collects the distinct string ids of a record set.
func idSet(records []model.Record) map[string]bool {
	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		if id := rec.ID.String(); id != "" {
			ids[id] = true
		}
	}
	return ids
}

// sortPromptIDs orders ids numerically when every id parses as an integer,
// falling back to lexicographic comparison otherwise.
func sortPromptIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
}

// parseMagnitudeSet converts a set of magnitude keys back to numeric values.
func parseMagnitudeSet(keys map[string]bool) ([]float64, error) {
	mags := make([]float64, 0, len(keys))
	for key := range keys {
		m, err := ParseMagnitude(key)
		if err != nil {
			return nil, err
		}
		mags = append(mags, m)
	}
	return mags, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
