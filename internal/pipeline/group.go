package pipeline

import (
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/model"
	"github.com/lu-christina/viewer/internal/normalize"
)

// Key identifies one logical evaluation item across its steered, unsteered,
// and default variants.
type Key struct {
	ID       string
	SampleID int
}

// GroupBySample buckets records by (id, sample_id) and then by question id.
// Records lacking an id or a question id are dropped. Buckets preserve file
// order.
func GroupBySample(records []model.Record) map[Key]map[int][]model.Record {
	grouped := make(map[Key]map[int][]model.Record)
	for _, rec := range records {
		if rec.ID == "" || rec.QuestionID == nil {
			continue
		}
		k := Key{ID: rec.ID.String(), SampleID: rec.SampleID}
		byQuestion := grouped[k]
		if byQuestion == nil {
			byQuestion = make(map[int][]model.Record)
			grouped[k] = byQuestion
		}
		byQuestion[*rec.QuestionID] = append(byQuestion[*rec.QuestionID], rec)
	}
	return grouped
}

// BuildResponses partitions one bucket's records into the unsteered slot
// (magnitude exactly 0) and one steered slot per distinct non-zero magnitude.
// A record landing in an occupied slot is a data defect: it is logged loudly
// and the later record in file order wins.
func BuildResponses(entries []model.Record) model.EntryResponses {
	resp := model.EntryResponses{Steered: make(map[string]model.MagnitudeResponse)}
	for _, rec := range entries {
		r := model.MagnitudeResponse{
			Response:  rec.Response,
			Score:     normalize.Score(rec.Score),
			Magnitude: rec.Magnitude,
		}
		if rec.Magnitude == 0 {
			if resp.Unsteered != nil {
				zap.L().Warn("pipeline: duplicate unsteered response, keeping the later record",
					zap.String("id", rec.ID.String()),
					zap.Int("sample_id", rec.SampleID))
			}
			resp.Unsteered = &r
			continue
		}
		key := MagnitudeKey(rec.Magnitude)
		if _, dup := resp.Steered[key]; dup {
			zap.L().Warn("pipeline: duplicate steered response, keeping the later record",
				zap.String("id", rec.ID.String()),
				zap.Int("sample_id", rec.SampleID),
				zap.String("magnitude", key))
		}
		resp.Steered[key] = r
	}
	return resp
}

// Paired reports whether a response set has data on both sides of the
// steered/unsteered join.
func Paired(resp model.EntryResponses) bool {
	return resp.Unsteered != nil && len(resp.Steered) > 0
}
