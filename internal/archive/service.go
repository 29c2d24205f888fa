package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/download"
	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/platform"
)

// Options configures an archive run
type Options struct {
	Input       string // course document path
	OutputRoot  string // directory receiving course.json and the module tree
	BaseURL     string // prefix for relative thumbnail and file references
	SectionDirs bool   // give each section its own directory
}

// Service archives course documents. Runs are serialized: a second Run waits
// for the first to finish.
type Service struct {
	fetcher download.Fetcher
	opts    Options
	logger  zerolog.Logger

	onUpdate func(*model.AssetTask) // callback for asset state changes
	onRun    func(*model.RunSummary)

	runMutex   sync.Mutex
	summary    *model.RunSummary
	moduleDirs map[string]bool
}

// NewService creates a new archive service
func NewService(fetcher download.Fetcher, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With().Str("component", "archive").Logger(),
	}
}

// Options returns the options the service was created with
func (s *Service) Options() Options {
	return s.opts
}

// SetUpdateCallback sets the callback function for asset updates
func (s *Service) SetUpdateCallback(callback func(*model.AssetTask)) {
	s.onUpdate = callback
}

// SetRunCallback sets the callback function called at run start and end
func (s *Service) SetRunCallback(callback func(*model.RunSummary)) {
	s.onRun = callback
}

// Run loads the document and archives it. Only a missing or unparseable
// document, an output root that cannot be created and an interrupted run are
// reported as errors; asset failures are counted in the summary.
func (s *Service) Run(ctx context.Context) (*model.RunSummary, error) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	summary := &model.RunSummary{
		RunID:     generateRunID(),
		Input:     s.opts.Input,
		Output:    s.opts.OutputRoot,
		StartedAt: time.Now(),
	}
	s.summary = summary
	s.moduleDirs = make(map[string]bool)
	s.notifyRun(summary)

	err := s.run(ctx)

	summary.FinishedAt = time.Now()
	if err != nil {
		summary.Error = err.Error()
	}
	s.summary = nil
	s.moduleDirs = nil
	s.notifyRun(summary)

	level := zerolog.InfoLevel
	if err != nil {
		level = zerolog.ErrorLevel
	}
	s.logger.WithLevel(level).
		Err(err).
		Str("run", summary.RunID).
		Int("modules", summary.Modules).
		Int("lessons", summary.Lessons).
		Int("fetched", summary.Fetched).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration()).
		Msg("run finished")

	return summary, err
}

func (s *Service) run(ctx context.Context) error {
	doc, err := platform.LoadDocument(s.opts.Input)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	root := s.opts.OutputRoot
	if err := platform.CreateDirectoryIfNotExists(root); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	if err := platform.WriteFile(filepath.Join(root, CourseFile), doc.Source); err != nil {
		return fmt.Errorf("write course metadata: %w", err)
	}

	course := doc.Course
	if !course.IsSectioned() && course.Modules == nil {
		s.logger.Warn().Str("input", s.opts.Input).Msg("course has neither sections nor modules")
	}

	for _, group := range moduleGroups(course, root, s.opts.SectionDirs) {
		if course.IsSectioned() {
			s.logger.Info().Str("section", group.section).Int("modules", len(group.modules)).Msg("section")
		}
		if err := s.WalkModules(ctx, group.modules, group.root); err != nil {
			return err
		}
	}
	return nil
}

// WalkModules materializes modules in document order under root. Module and
// lesson directories are named by ordinal and sanitized name. A lesson that
// cannot be written is logged and skipped; only cancellation stops the walk.
func (s *Service) WalkModules(ctx context.Context, modules []*model.Module, root string) error {
	for m, module := range modules {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted: %w", err)
		}
		if module == nil {
			s.logger.Warn().Int("ordinal", m).Msg("skipping null module")
			continue
		}

		moduleDir := ModuleDir(root, m, module)
		s.logger.Info().Str("module", module.Name).Str("path", moduleDir).Msg("module")
		s.trackModuleDir(moduleDir)

		if err := s.writeModule(module, moduleDir); err != nil {
			s.logger.Error().Err(err).Str("module", module.Name).Msg("module skipped")
			continue
		}
		if s.summary != nil {
			s.summary.Modules++
		}

		for l, lesson := range module.Lessons {
			if lesson == nil {
				s.logger.Warn().Str("module", module.Name).Int("ordinal", l).Msg("skipping null lesson")
				continue
			}
			err := s.MaterializeLesson(ctx, lesson, LessonDir(moduleDir, l, lesson))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("run interrupted: %w", ctxErr)
			}
			if err != nil {
				s.logger.Error().Err(err).Str("lesson", lesson.Title).Msg("lesson incomplete")
			}
		}
	}
	return nil
}

func (s *Service) writeModule(module *model.Module, moduleDir string) error {
	if err := platform.CreateDirectoryIfNotExists(moduleDir); err != nil {
		return fmt.Errorf("create module directory: %w", err)
	}
	return platform.WriteJSONFile(filepath.Join(moduleDir, ModuleFile), module)
}

// trackModuleDir warns when two modules of one run map to the same directory,
// which happens when sections share the output root.
func (s *Service) trackModuleDir(moduleDir string) {
	if s.moduleDirs == nil {
		return
	}
	if s.moduleDirs[moduleDir] {
		s.logger.Warn().Str("path", moduleDir).Msg("module directory reused; lessons of both modules are merged")
		return
	}
	s.moduleDirs[moduleDir] = true
}

// MaterializeLesson writes lesson.json, fetches the lesson's video, thumbnail
// and files, and writes content.md. Every asset is fetched independently: a
// failure is recorded and the next asset is attempted. The returned error
// covers directory and metadata writes only.
func (s *Service) MaterializeLesson(ctx context.Context, lesson *model.Lesson, lessonPath string) error {
	s.logger.Info().Str("lesson", lesson.Title).Str("path", lessonPath).Msg("lesson")

	if err := platform.CreateDirectoryIfNotExists(lessonPath); err != nil {
		return fmt.Errorf("create lesson directory: %w", err)
	}
	if err := platform.WriteJSONFile(filepath.Join(lessonPath, LessonFile), lesson); err != nil {
		return err
	}
	if s.summary != nil {
		s.summary.Lessons++
	}

	for _, asset := range lessonAssets(lesson, lessonPath, s.opts.BaseURL) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("lesson interrupted: %w", err)
		}
		s.fetchAsset(ctx, asset)
	}

	if lesson.HasContent() {
		if err := platform.WriteFile(filepath.Join(lessonPath, ContentFile), []byte(lesson.Content)); err != nil {
			return err
		}
	}
	return nil
}

// fetchAsset runs one asset through the fetcher and publishes its state
func (s *Service) fetchAsset(ctx context.Context, asset model.PlannedAsset) *model.AssetTask {
	task := &model.AssetTask{
		ID:          generateTaskID(),
		Kind:        asset.Kind,
		LessonTitle: asset.LessonTitle,
		URL:         asset.URL,
		Destination: asset.Path,
		Status:      model.FetchStatusPending,
		StartedAt:   time.Now(),
	}
	if s.summary != nil {
		task.RunID = s.summary.RunID
	}

	if asset.Err != nil {
		task.Apply(model.Failed(asset.Err))
	} else {
		task.Status = model.FetchStatusFetching
		s.notifyUpdate(task)
		task.Apply(s.fetcher.Fetch(ctx, asset.URL, asset.Path, asset.Kind.Mode()))
	}

	if task.Status != model.FetchStatusFailed {
		task.Size = platform.FileSize(task.Destination)
	}
	s.narrate(task)
	if s.summary != nil {
		s.summary.Record(task)
	}
	s.notifyUpdate(task)
	return task
}

func (s *Service) narrate(task *model.AssetTask) {
	switch task.Status {
	case model.FetchStatusSkipped:
		s.logger.Info().Str("kind", task.Kind.String()).Str("path", task.Destination).Msg("asset skipped")
	case model.FetchStatusFetched:
		s.logger.Info().
			Str("kind", task.Kind.String()).
			Str("path", task.Destination).
			Int64("bytes", task.Size).
			Str("took", task.GetDurationString()).
			Msg("asset fetched")
	default:
		s.logger.Error().
			Str("kind", task.Kind.String()).
			Str("url", task.URL).
			Str("path", task.Destination).
			Str("error", task.LastError).
			Msg("asset failed")
	}
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.AssetTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

func (s *Service) notifyRun(summary *model.RunSummary) {
	if s.onRun != nil {
		s.onRun(summary)
	}
}

// IsInterrupted reports whether err ended a run early because its context was done
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// generateTaskID generates a unique, time-ordered task ID
func generateTaskID() string {
	return "asset-" + newID()
}

func generateRunID() string {
	return "run-" + newID()
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
