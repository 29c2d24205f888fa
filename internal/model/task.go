package model

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the result of one Asset Fetcher invocation
type Outcome struct {
	Status FetchStatus
	Err    error // set only when Status is FetchStatusFailed
}

// Skipped returns an outcome for a destination that already exists
func Skipped() Outcome {
	return Outcome{Status: FetchStatusSkipped}
}

// Fetched returns an outcome for a completed transfer
func Fetched() Outcome {
	return Outcome{Status: FetchStatusFetched}
}

// Failed returns an outcome carrying the failure reason
func Failed(err error) Outcome {
	return Outcome{Status: FetchStatusFailed, Err: err}
}

// AssetTask represents a single asset handled during a run
type AssetTask struct {
	ID          string
	RunID       string
	Kind        AssetKind
	LessonTitle string      // title of the owning lesson
	URL         string      // resolved source URL
	Destination string      // final destination path
	Status      FetchStatus
	LastError   string    // last error message if any
	Size        int64     // destination size in bytes once fetched or skipped
	StartedAt   time.Time // when the fetch started
	FinishedAt  time.Time // when the fetch finished
}

// Apply records an outcome on the task
func (at *AssetTask) Apply(outcome Outcome) {
	at.Status = outcome.Status
	if outcome.Err != nil {
		at.LastError = outcome.Err.Error()
	}
	at.FinishedAt = time.Now()
}

// Duration returns how long the fetch took, or zero if it has not finished
func (at *AssetTask) Duration() time.Duration {
	if at.StartedAt.IsZero() || at.FinishedAt.IsZero() {
		return 0
	}
	return at.FinishedAt.Sub(at.StartedAt)
}

// GetDurationString returns the duration formatted as hh:mm:ss, or "—" if unknown
func (at *AssetTask) GetDurationString() string {
	secs := int(at.Duration().Seconds())
	if secs <= 0 {
		return "—"
	}

	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayName returns the destination file name, or the URL when no destination is set
func (at *AssetTask) GetDisplayName() string {
	if at.Destination != "" {
		parts := strings.FieldsFunc(at.Destination, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	return at.URL
}

// RunSummary aggregates the outcome of one archive run
type RunSummary struct {
	RunID      string
	Input      string
	Output     string
	Modules    int
	Lessons    int
	Fetched    int
	Skipped    int
	Failed     int
	Error      string // fatal error that stopped the run, if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Record counts a finished asset task
func (rs *RunSummary) Record(task *AssetTask) {
	switch task.Status {
	case FetchStatusFetched:
		rs.Fetched++
	case FetchStatusSkipped:
		rs.Skipped++
	case FetchStatusFailed:
		rs.Failed++
	}
}

// Assets returns the number of assets that reached a terminal state
func (rs *RunSummary) Assets() int {
	return rs.Fetched + rs.Skipped + rs.Failed
}

// HasFailures reports whether any asset failed
func (rs *RunSummary) HasFailures() bool {
	return rs.Failed > 0
}

// IsFinished reports whether the run has ended
func (rs *RunSummary) IsFinished() bool {
	return !rs.FinishedAt.IsZero()
}

// Duration returns the wall time of the run
func (rs *RunSummary) Duration() time.Duration {
	if rs.FinishedAt.IsZero() {
		return 0
	}
	return rs.FinishedAt.Sub(rs.StartedAt)
}

// PlannedAsset is one file an archive run would produce
type PlannedAsset struct {
	Kind        AssetKind
	LessonTitle string
	Path        string
	URL         string // resolved source, empty for metadata and content
	Err         error  // why the asset cannot be fetched, if known in advance
}
