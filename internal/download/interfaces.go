package download

import (
	"context"

	"github.com/ytget/course-archiver/internal/model"
)

// Fetcher defines the interface for the asset fetch service.
type Fetcher interface {
	// Fetch brings sourceURL to dest unless dest already exists. It never
	// returns an error: failures are reported in the Outcome.
	Fetch(ctx context.Context, sourceURL, dest string, mode model.FetchMode) model.Outcome
}

// Transport performs the raw transfer into a temporary path.
type Transport interface {
	// FetchStream remuxes a media stream without re-encoding
	FetchStream(ctx context.Context, sourceURL, outputPath string) error

	// FetchPlain copies the source bytes as they are
	FetchPlain(ctx context.Context, sourceURL, outputPath string) error
}

// FileFetcher copies a single remote or local file
type FileFetcher interface {
	FetchFile(ctx context.Context, sourceURL, outputPath string) error
}
