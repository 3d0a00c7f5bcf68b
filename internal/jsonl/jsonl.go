// Package jsonl reads newline-delimited JSON evaluation files.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lu-christina/viewer/internal/model"
)

// MissingPolicy decides what a missing input file means. The two pipeline
// variants disagree on this, so it is a parameter rather than a constant.
type MissingPolicy int

const (
	// MissingFail treats an absent file as an error.
	MissingFail MissingPolicy = iota
	// MissingSkip treats an absent file as an empty dataset, with a warning.
	MissingSkip
)

// maxLineBytes bounds a single record line. Model responses routinely run to
// hundreds of kilobytes; 32 MiB leaves generous headroom.
const maxLineBytes = 32 << 20

// Load reads one record per non-empty line, in file order. A malformed line
// fails the whole load with the offending path and line number; there is no
// partial recovery.
func Load(path string, policy MissingPolicy) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && policy == MissingSkip {
			zap.L().Warn("jsonl: file not found, treating as empty",
				zap.String("path", path))
			return nil, nil
		}
		return nil, eris.Wrapf(err, "jsonl: open %s", path)
	}
	defer f.Close()

	var records []model.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, eris.Wrapf(err, "jsonl: parse %s line %d", path, line)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "jsonl: read %s", path)
	}
	return records, nil
}

// Exists reports whether a dataset file is present.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
