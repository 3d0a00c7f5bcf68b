package pipeline

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MagnitudeKey renders a steering magnitude as a stable mapping key: integral
// values without a fractional part ("300", "-300"), everything else in
// shortest-float form ("1.5"). Keys round-trip through ParseMagnitude so the
// index can sort them numerically.
func MagnitudeKey(m float64) string {
	if m == math.Trunc(m) && !math.IsInf(m, 0) {
		return strconv.FormatInt(int64(m), 10)
	}
	return strconv.FormatFloat(m, 'g', -1, 64)
}

// ParseMagnitude inverts MagnitudeKey.
func ParseMagnitude(key string) (float64, error) {
	f, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "pipeline: bad magnitude key %q", key)
	}
	return f, nil
}

// SortDirection orders a magnitude list.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// SortRule maps a model family, matched as a case-insensitive substring of
// the model name, to a magnitude sort direction.
type SortRule struct {
	Family    string        `yaml:"family"`
	Direction SortDirection `yaml:"direction"`
}

// SortPolicy resolves the magnitude sort direction for a model name. Rules
// are checked in order; the first family substring match wins, otherwise the
// default direction applies.
type SortPolicy struct {
	Rules   []SortRule    `yaml:"rules"`
	Default SortDirection `yaml:"default"`
}

// DefaultSortPolicy preserves the viewer's shipped behavior: llama-family
// models list magnitudes ascending, every other family descending.
func DefaultSortPolicy() SortPolicy {
	return SortPolicy{
		Rules:   []SortRule{{Family: "llama", Direction: Ascending}},
		Default: Descending,
	}
}

// DirectionFor returns the sort direction for modelName.
func (p SortPolicy) DirectionFor(modelName string) SortDirection {
	lower := strings.ToLower(modelName)
	for _, r := range p.Rules {
		if r.Family != "" && strings.Contains(lower, strings.ToLower(r.Family)) {
			return r.Direction
		}
	}
	if p.Default == "" {
		return Descending
	}
	return p.Default
}

// LoadSortPolicy reads a sort policy from a YAML file with a top-level
// "sort" key.
func LoadSortPolicy(path string) (SortPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SortPolicy{}, eris.Wrapf(err, "pipeline: read sort policy %s", path)
	}

	var wrapper struct {
		Sort SortPolicy `yaml:"sort"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return SortPolicy{}, eris.Wrapf(err, "pipeline: parse sort policy %s", path)
	}

	p := wrapper.Sort
	for _, r := range p.Rules {
		if r.Direction != Ascending && r.Direction != Descending {
			return SortPolicy{}, eris.Errorf("pipeline: sort policy %s: family %q has invalid direction %q", path, r.Family, r.Direction)
		}
	}
	if p.Default != "" && p.Default != Ascending && p.Default != Descending {
		return SortPolicy{}, eris.Errorf("pipeline: sort policy %s: invalid default direction %q", path, p.Default)
	}
	return p, nil
}

// SortMagnitudes orders magnitudes in place.
func SortMagnitudes(mags []float64, dir SortDirection) {
	sort.Float64s(mags)
	if dir == Descending {
		for i, j := 0, len(mags)-1; i < j; i, j = i+1, j-1 {
			mags[i], mags[j] = mags[j], mags[i]
		}
	}
}
