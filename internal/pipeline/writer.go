package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// writeJSON marshals v with two-space indentation and fully overwrites path.
// Field order is fixed by struct definitions and Go's sorted map keys, so
// reruns over unchanged input produce byte-identical files.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "pipeline: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// ensureDir creates a directory (and parents) if needed.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: mkdir %s", path)
	}
	return nil
}
