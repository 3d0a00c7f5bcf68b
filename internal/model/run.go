package model

import "time"

// RunStatus is the lifecycle state of a per-model preparation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunResult summarizes one model's preparation outcome.
type RunResult struct {
	Items      int    `json:"items"`
	Chunks     int    `json:"chunks"`
	Magnitudes int    `json:"magnitudes"`
	Error      string `json:"error,omitempty"`
}

// Run is one recorded preparation run for a single model.
type Run struct {
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	Eval      string     `json:"eval"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
