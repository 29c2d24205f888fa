package archive

import (
	"context"

	"github.com/ytget/course-archiver/internal/model"
)

// Archiver defines the interface for the archive service.
type Archiver interface {
	// Run archives the configured document into the output root
	Run(ctx context.Context) (*model.RunSummary, error)

	// WalkModules materializes modules, in order, under root
	WalkModules(ctx context.Context, modules []*model.Module, root string) error

	// MaterializeLesson writes one lesson directory
	MaterializeLesson(ctx context.Context, lesson *model.Lesson, lessonPath string) error

	// SetUpdateCallback registers a function called on every asset state change
	SetUpdateCallback(func(*model.AssetTask))

	// SetRunCallback registers a function called when a run starts and when it ends
	SetRunCallback(func(*model.RunSummary))
}
