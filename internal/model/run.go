package model

import "time"

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// SourceStats holds per-source counters for a run.
type SourceStats struct {
	Source     string `json:"source"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	RawRecords int    `json:"raw_records"`
	UniqueRaw  int    `json:"unique_raw"`
	Geocoded   int    `json:"geocoded"`
}

// Run summarizes one normalize (and optionally load) execution.
type Run struct {
	ID         string        `json:"id"`
	Status     RunStatus     `json:"status"`
	Sources    []SourceStats `json:"sources"`
	Normalized int           `json:"normalized"`
	Merged     int           `json:"merged"`
	Output     string        `json:"output"`
	Loaded     int64         `json:"loaded"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}
