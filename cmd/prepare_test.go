package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-christina/viewer/internal/config"
	"github.com/lu-christina/viewer/internal/pipeline"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	orig := cfg
	cfg = c
	t.Cleanup(func() { cfg = orig })
}

func TestResolvePrepareDirs_FromConfig(t *testing.T) {
	withConfig(t, &config.Config{
		Prepare: config.PrepareConfig{
			InputDir:  "evals",
			OutputDir: "viewer/evals/data",
		},
	})
	prepareInputDir = ""
	prepareOutputDir = ""

	in, out := resolvePrepareDirs("susceptibility")
	assert.Equal(t, filepath.Join("evals", "susceptibility"), in)
	assert.Equal(t, filepath.Join("viewer", "evals", "data", "susceptibility"), out)
}

func TestResolvePrepareDirs_FlagsWinVerbatim(t *testing.T) {
	withConfig(t, &config.Config{
		Prepare: config.PrepareConfig{InputDir: "evals", OutputDir: "out"},
	})
	prepareInputDir = "/explicit/in"
	prepareOutputDir = "/explicit/out"
	t.Cleanup(func() {
		prepareInputDir = ""
		prepareOutputDir = ""
	})

	in, out := resolvePrepareDirs("jailbreak")
	assert.Equal(t, "/explicit/in", in)
	assert.Equal(t, "/explicit/out", out)
}

func TestLoadSortPolicy_DefaultWhenUnconfigured(t *testing.T) {
	withConfig(t, &config.Config{})

	p, err := loadSortPolicy()
	require.NoError(t, err)
	assert.Equal(t, pipeline.Ascending, p.DirectionFor("llama-3"))
	assert.Equal(t, pipeline.Descending, p.DirectionFor("qwen-2.5"))
}

func TestLoadSortPolicy_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sort.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sort:
  rules:
    - family: qwen
      direction: ascending
  default: descending
`), 0o644))
	withConfig(t, &config.Config{
		Prepare: config.PrepareConfig{SortPolicyFile: path},
	})

	p, err := loadSortPolicy()
	require.NoError(t, err)
	assert.Equal(t, pipeline.Ascending, p.DirectionFor("qwen-2.5"))
}

func TestOpenRunStore_BadDriverIsBestEffort(t *testing.T) {
	withConfig(t, &config.Config{
		Store: config.StoreConfig{Driver: "mysql", DatabaseURL: "dsn"},
	})

	st := openRunStore(context.Background())
	assert.Nil(t, st)
}

func TestOpenRunStore_DisabledDriver(t *testing.T) {
	withConfig(t, &config.Config{
		Store: config.StoreConfig{Driver: "none"},
	})

	st := openRunStore(context.Background())
	assert.Nil(t, st)
}

func TestOpenRunStore_SQLite(t *testing.T) {
	withConfig(t, &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "runs.db"),
		},
	})

	st := openRunStore(context.Background())
	require.NotNil(t, st)
	st.Close() //nolint:errcheck
}

func TestInitRunsStore_DisabledIsHardError(t *testing.T) {
	withConfig(t, &config.Config{
		Store: config.StoreConfig{Driver: "none"},
	})

	_, err := initRunsStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}
