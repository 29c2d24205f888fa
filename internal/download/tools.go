package download

import (
	"context"
	"errors"

	"github.com/ytget/course-archiver/internal/remux"
)

// ErrToolMissing is returned when a transfer needs a tool that was not configured
var ErrToolMissing = errors.New("fetch tool not configured")

// Tools is the production Transport: ffmpeg for streams and a FileFetcher for plain files
type Tools struct {
	Remuxer remux.Remuxer
	Files   FileFetcher
}

// FetchStream implements Transport
func (t Tools) FetchStream(ctx context.Context, sourceURL, outputPath string) error {
	if t.Remuxer == nil {
		return ErrToolMissing
	}
	return t.Remuxer.Remux(ctx, sourceURL, outputPath)
}

// FetchPlain implements Transport
func (t Tools) FetchPlain(ctx context.Context, sourceURL, outputPath string) error {
	if t.Files == nil {
		return ErrToolMissing
	}
	return t.Files.FetchFile(ctx, sourceURL, outputPath)
}
