package domain

import "time"

// FileOutcome says what happened to one harvested file.
type FileOutcome string

const (
	OutcomeDownloaded FileOutcome = "downloaded"
	OutcomeSkipped    FileOutcome = "skipped"
	OutcomeDryRun     FileOutcome = "dry_run"
)

// FileEvent is published for every harvested file that was processed.
type FileEvent struct {
	ID          string      `json:"id"`
	RunID       string      `json:"run_id"`
	Receiver    string      `json:"receiver"`
	SourcePath  string      `json:"source_path"`
	Format      string      `json:"format"`
	LocalPath   string      `json:"local_path,omitempty"`
	Outcome     FileOutcome `json:"outcome"`
	Bytes       int64       `json:"bytes"`
	CSVPath     string      `json:"csv_path,omitempty"`
	CSVRows     int         `json:"csv_rows,omitempty"`
	CSVError    string      `json:"csv_error,omitempty"`
	CompletedAt time.Time   `json:"completed_at"`
}
