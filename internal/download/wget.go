package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Wget constants
const (
	WgetCommand = "wget"
)

// wgetExitReasons maps documented wget exit statuses to short descriptions
var wgetExitReasons = map[int]string{
	1: "generic error",
	2: "parse error",
	3: "file I/O error",
	4: "network failure",
	5: "SSL verification failure",
	6: "authentication failure",
	7: "protocol error",
	8: "server issued an error response",
}

// WgetFetcher copies plain files with the wget binary
type WgetFetcher struct {
	wgetPath string
	logger   zerolog.Logger
}

// NewWgetFetcher creates a wget based FileFetcher. An empty path uses wget from PATH.
func NewWgetFetcher(wgetPath string, logger zerolog.Logger) *WgetFetcher {
	if wgetPath == "" {
		wgetPath = WgetCommand
	}
	return &WgetFetcher{
		wgetPath: wgetPath,
		logger:   logger.With().Str("component", "wget").Logger(),
	}
}

// AssertReady checks that the wget binary can be found
func (w *WgetFetcher) AssertReady() error {
	if _, err := exec.LookPath(w.wgetPath); err != nil {
		return fmt.Errorf("missing required binary %q: %w", w.wgetPath, err)
	}
	return nil
}

// BuildWgetArgs builds the wget command arguments
func (w *WgetFetcher) BuildWgetArgs(sourceURL, outputPath string) []string {
	return []string{
		"--quiet",
		"--output-document", outputPath,
		sourceURL,
	}
}

// FetchFile implements FileFetcher
func (w *WgetFetcher) FetchFile(ctx context.Context, sourceURL, outputPath string) error {
	cmd := exec.CommandContext(ctx, w.wgetPath, w.BuildWgetArgs(sourceURL, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	w.logger.Debug().Str("url", sourceURL).Str("output", outputPath).Msg("wget start")

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("wget interrupted: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			reason, ok := wgetExitReasons[code]
			if !ok {
				reason = "unknown error"
			}
			return fmt.Errorf("wget exited with code %d (%s): %w; out=%s", code, reason, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("wget failed: %w", err)
	}
	return nil
}
