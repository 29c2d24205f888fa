package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/model"
)

// writeTimeout bounds a single journal write
const writeTimeout = 5 * time.Second

// Recorder adapts a Store to the archive callbacks. Write failures are logged
// and never affect the run.
type Recorder struct {
	store  *Store
	logger zerolog.Logger
}

// NewRecorder creates a recorder writing to store
func NewRecorder(store *Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With().Str("component", "journal").Logger(),
	}
}

// OnRun records the start and the end of a run
func (r *Recorder) OnRun(summary *model.RunSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	if summary.IsFinished() {
		err = r.store.FinishRun(ctx, summary)
	} else {
		err = r.store.StartRun(ctx, summary)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("run", summary.RunID).Msg("failed to journal run")
	}
}

// OnAsset records assets that reached a terminal state
func (r *Recorder) OnAsset(task *model.AssetTask) {
	if !task.Status.IsFinished() || task.RunID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.store.RecordAsset(ctx, task); err != nil {
		r.logger.Warn().Err(err).Str("asset", task.ID).Msg("failed to journal asset")
	}
}
