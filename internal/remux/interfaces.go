package remux

import "context"

// Remuxer repackages a media stream into a local container without re-encoding.
type Remuxer interface {
	// Remux reads sourceURL and writes the remuxed stream to outputPath.
	// outputPath is overwritten if present.
	Remux(ctx context.Context, sourceURL, outputPath string) error
}
