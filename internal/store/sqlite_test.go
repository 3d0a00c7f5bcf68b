package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-christina/viewer/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "qwen-2.5", "susceptibility")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "qwen-2.5", got.Model)
	assert.Equal(t, "susceptibility", got.Eval)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "qwen-2.5", "jailbreak")
	require.NoError(t, err)

	result := &model.RunResult{Items: 40, Chunks: 4, Magnitudes: 3}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, model.RunStatusComplete, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 40, got.Result.Items)
	assert.Equal(t, 4, got.Result.Chunks)
	assert.Equal(t, 3, got.Result.Magnitudes)
}

func TestSQLite_UpdateRunResult_Failed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "broken", "jailbreak")
	require.NoError(t, err)

	result := &model.RunResult{Error: "required dataset missing"}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, model.RunStatusFailed, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "required dataset missing", got.Result.Error)
}

func TestSQLite_UpdateRunResult_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunResult(context.Background(), "nonexistent", model.RunStatusComplete, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "qwen-2.5", "susceptibility")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "llama-3-8b", "susceptibility")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "qwen-2.5", "jailbreak")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunResult(ctx, a.ID, model.RunStatusComplete, &model.RunResult{Items: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byModel, err := st.ListRuns(ctx, RunFilter{Model: "qwen-2.5"})
	require.NoError(t, err)
	assert.Len(t, byModel, 2)

	byEval, err := st.ListRuns(ctx, RunFilter{Eval: "jailbreak"})
	require.NoError(t, err)
	require.Len(t, byEval, 1)
	assert.Equal(t, "qwen-2.5", byEval[0].Model)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_ListRuns_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	runs, err := st.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(ctx, "none", "")
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(ctx, "sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NotNil(t, st)
	st.Close() //nolint:errcheck

	_, err = Open(ctx, "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
