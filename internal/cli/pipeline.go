package cli

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/archive"
	"github.com/ytget/course-archiver/internal/config"
	"github.com/ytget/course-archiver/internal/download"
	"github.com/ytget/course-archiver/internal/journal"
	"github.com/ytget/course-archiver/internal/metrics"
	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/remux"
	"github.com/ytget/course-archiver/internal/server"
)

// readyChecker is implemented by tools backed by an external binary
type readyChecker interface {
	AssertReady() error
}

// pipeline holds the services of one archiver process
type pipeline struct {
	archive archive.Archiver
	remux   remux.Remuxer
	files   download.FileFetcher
	metrics *metrics.Collector
	status  *server.Status
	journal *journal.DB
	logger  zerolog.Logger
}

func newPipeline(s *config.Settings, logger zerolog.Logger) (*pipeline, error) {
	p := &pipeline{
		remux:   remux.NewService(s.Tools.FFmpeg, logger),
		files:   newFileFetcher(s, logger),
		metrics: metrics.New(),
		status:  server.NewStatus(),
		logger:  logger,
	}

	fetcher := download.NewService(download.Tools{Remuxer: p.remux, Files: p.files}, logger)
	fetcher.SetTimeout(s.Tools.FetchTimeout)
	p.archive = archive.NewService(fetcher, archiveOptions(s), logger)

	var recorder *journal.Recorder
	if s.JournalEnabled() {
		db, err := journal.OpenAndMigrate(s.Journal.Path)
		if err != nil {
			return nil, err
		}
		p.journal = db
		recorder = journal.NewRecorder(journal.NewStore(db), logger)
	}

	p.archive.SetUpdateCallback(func(task *model.AssetTask) {
		p.metrics.ObserveAsset(task)
		p.status.OnAsset(task)
		if recorder != nil {
			recorder.OnAsset(task)
		}
	})
	p.archive.SetRunCallback(func(summary *model.RunSummary) {
		p.metrics.ObserveRun(summary)
		p.status.OnRun(summary)
		if recorder != nil {
			recorder.OnRun(summary)
		}
	})

	return p, nil
}

func newFileFetcher(s *config.Settings, logger zerolog.Logger) download.FileFetcher {
	if s.Tools.PlainTransport == config.PlainTransportHTTP {
		return download.NewHTTPFetcher(&http.Client{}, logger)
	}
	return download.NewWgetFetcher(s.Tools.Wget, logger)
}

// checkTools warns about missing binaries. Assets needing them fail one by one.
func (p *pipeline) checkTools() []error {
	var errs []error
	for _, tool := range []any{p.remux, p.files} {
		checker, ok := tool.(readyChecker)
		if !ok {
			continue
		}
		if err := checker.AssertReady(); err != nil {
			p.logger.Warn().Err(err).Msg("fetch tool unavailable")
			errs = append(errs, err)
		}
	}
	return errs
}

func (p *pipeline) Close() {
	if p.journal != nil {
		p.journal.Close()
	}
}
