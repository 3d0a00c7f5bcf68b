package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-christina/viewer/internal/model"
)

func intPtr(n int) *int { return &n }

func TestGroupBySample(t *testing.T) {
	records := []model.Record{
		{ID: "7", SampleID: 0, QuestionID: intPtr(0), Response: "a"},
		{ID: "7", SampleID: 0, QuestionID: intPtr(1), Response: "b"},
		{ID: "7", SampleID: 1, QuestionID: intPtr(0), Response: "c"},
		{ID: "8", SampleID: 0, QuestionID: intPtr(0), Response: "d"},
		{ID: "", SampleID: 0, QuestionID: intPtr(0)},  // no id, dropped
		{ID: "9", SampleID: 0},                        // no question id, dropped
	}

	grouped := GroupBySample(records)
	require.Len(t, grouped, 3)

	bucket := grouped[Key{ID: "7", SampleID: 0}]
	require.Len(t, bucket, 2)
	assert.Equal(t, "a", bucket[0][0].Response)
	assert.Equal(t, "b", bucket[1][0].Response)

	assert.Len(t, grouped[Key{ID: "7", SampleID: 1}], 1)
	assert.Len(t, grouped[Key{ID: "8", SampleID: 0}], 1)
	assert.NotContains(t, grouped, Key{ID: "9", SampleID: 0})
}

func TestGroupBySample_PreservesFileOrderWithinQuestion(t *testing.T) {
	records := []model.Record{
		{ID: "1", QuestionID: intPtr(2), Response: "first"},
		{ID: "1", QuestionID: intPtr(2), Response: "second"},
	}
	bucket := GroupBySample(records)[Key{ID: "1", SampleID: 0}]
	require.Len(t, bucket[2], 2)
	assert.Equal(t, "first", bucket[2][0].Response)
	assert.Equal(t, "second", bucket[2][1].Response)
}

func TestBuildResponses(t *testing.T) {
	resp := BuildResponses([]model.Record{
		{ID: "7", Response: "base", Score: "normal", Magnitude: 0},
		{ID: "7", Response: "pos", Score: "weird_ai", Magnitude: 300},
		{ID: "7", Response: "neg", Score: "normal", Magnitude: -300},
	})

	require.NotNil(t, resp.Unsteered)
	assert.Equal(t, "base", resp.Unsteered.Response)
	assert.Equal(t, 0.0, resp.Unsteered.Magnitude)

	require.Len(t, resp.Steered, 2)
	assert.Equal(t, "pos", resp.Steered["300"].Response)
	assert.Equal(t, "weird_role", resp.Steered["300"].Score)
	assert.Equal(t, "neg", resp.Steered["-300"].Response)
	assert.Equal(t, -300.0, resp.Steered["-300"].Magnitude)
}

func TestBuildResponses_DuplicateSlotLaterWins(t *testing.T) {
	resp := BuildResponses([]model.Record{
		{ID: "7", Response: "first", Magnitude: 0},
		{ID: "7", Response: "second", Magnitude: 0},
		{ID: "7", Response: "s1", Magnitude: 300},
		{ID: "7", Response: "s2", Magnitude: 300},
	})

	require.NotNil(t, resp.Unsteered)
	assert.Equal(t, "second", resp.Unsteered.Response)
	assert.Equal(t, "s2", resp.Steered["300"].Response)
}

func TestPaired(t *testing.T) {
	base := model.MagnitudeResponse{Response: "base"}

	assert.True(t, Paired(model.EntryResponses{
		Unsteered: &base,
		Steered:   map[string]model.MagnitudeResponse{"300": {}},
	}))
	assert.False(t, Paired(model.EntryResponses{
		Steered: map[string]model.MagnitudeResponse{"300": {}},
	}))
	assert.False(t, Paired(model.EntryResponses{Unsteered: &base}))
	assert.False(t, Paired(model.EntryResponses{}))
}
