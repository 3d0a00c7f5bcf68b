// Package model defines the data types shared across the viewer data pipeline:
// raw evaluation records, grouped viewer documents, index manifests, and
// preparation run bookkeeping.
package model

import "encoding/json"

// Record is one line of an evaluation scores JSONL file as produced by the
// upstream evaluation harness. Records are immutable once read.
type Record struct {
	ID           FlexID  `json:"id"`
	SampleID     int     `json:"sample_id"`
	QuestionID   *int    `json:"question_id,omitempty"`
	PromptID     int     `json:"prompt_id"`
	Question     string  `json:"question"`
	Prompt       string  `json:"prompt"`
	Role         string  `json:"role"`
	Persona      string  `json:"persona"`
	HarmCategory string  `json:"harm_category"`
	Response     string  `json:"response"`
	Score        string  `json:"score"`
	Magnitude    float64 `json:"magnitude"`
}

// FlexID is a record identifier that upstream files encode inconsistently as
// either a JSON number or a JSON string. It always normalizes to the string
// form, which is what the viewer layout uses as well.
type FlexID string

// UnmarshalJSON accepts both `"7"` and `7`.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }
