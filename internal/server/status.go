package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/ytget/course-archiver/internal/model"
)

// RunView is the JSON form of a run summary
type RunView struct {
	RunID      string    `json:"run_id"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Modules    int       `json:"modules"`
	Lessons    int       `json:"lessons"`
	Fetched    int       `json:"fetched"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// AssetView is the JSON form of an asset in progress
type AssetView struct {
	Kind        string    `json:"kind"`
	Lesson      string    `json:"lesson"`
	Destination string    `json:"destination"`
	StartedAt   time.Time `json:"started_at"`
}

// StatusView is the body of /status
type StatusView struct {
	Running bool       `json:"running"`
	Current *RunView   `json:"current,omitempty"`
	Asset   *AssetView `json:"asset,omitempty"`
	Last    *RunView   `json:"last,omitempty"`
}

// Status tracks the current and last run. Its On* methods are meant to be
// registered as archive callbacks; they may be called from the run goroutine
// while HTTP handlers read.
type Status struct {
	mu      sync.RWMutex
	current *RunView
	asset   *AssetView
	last    *RunView
}

// NewStatus creates an empty run status
func NewStatus() *Status {
	return &Status{}
}

// OnRun records the start or end of a run
func (s *Status) OnRun(summary *model.RunSummary) {
	view := newRunView(summary)

	s.mu.Lock()
	defer s.mu.Unlock()
	if summary.IsFinished() {
		s.current = nil
		s.asset = nil
		s.last = view
		return
	}
	s.current = view
}

// OnAsset tracks the asset being fetched and the running counts
func (s *Status) OnAsset(task *model.AssetTask) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.Status.IsActive() {
		s.asset = &AssetView{
			Kind:        task.Kind.String(),
			Lesson:      task.LessonTitle,
			Destination: task.Destination,
			StartedAt:   task.StartedAt,
		}
		return
	}
	if !task.Status.IsFinished() {
		return
	}

	s.asset = nil
	if s.current == nil {
		return
	}
	switch task.Status {
	case model.FetchStatusFetched:
		s.current.Fetched++
	case model.FetchStatusSkipped:
		s.current.Skipped++
	case model.FetchStatusFailed:
		s.current.Failed++
	}
}

// Snapshot returns a copy of the tracked state
func (s *Status) Snapshot() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := StatusView{Running: s.current != nil}
	if s.current != nil {
		current := *s.current
		view.Current = &current
	}
	if s.asset != nil {
		asset := *s.asset
		view.Asset = &asset
	}
	if s.last != nil {
		last := *s.last
		view.Last = &last
	}
	return view
}

// ServeHTTP serves the snapshot as JSON
func (s *Status) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func newRunView(summary *model.RunSummary) *RunView {
	return &RunView{
		RunID:      summary.RunID,
		Input:      summary.Input,
		Output:     summary.Output,
		Modules:    summary.Modules,
		Lessons:    summary.Lessons,
		Fetched:    summary.Fetched,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		Error:      summary.Error,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}
}
