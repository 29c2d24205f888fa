package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/platform"
)

// HTTP constants
const (
	UserAgent = "course-archiver"
)

// HTTPFetcher copies plain files with the Go HTTP client. file:// URLs are
// copied from the local filesystem.
type HTTPFetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPFetcher creates an HTTP based FileFetcher. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, logger zerolog.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client: client,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// FetchFile implements FileFetcher
func (h *HTTPFetcher) FetchFile(ctx context.Context, sourceURL, outputPath string) error {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	switch u.Scheme {
	case "file":
		return copyLocal(filepath.FromSlash(u.Path), outputPath)
	case "http", "https":
	default:
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("get %s: unexpected status %s", sourceURL, resp.Status)
	}

	n, err := writeTo(outputPath, resp.Body)
	if err != nil {
		return err
	}

	h.logger.Debug().Str("url", sourceURL).Int64("bytes", n).Msg("http fetch complete")
	return nil
}

func copyLocal(sourcePath, outputPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	_, err = writeTo(outputPath, src)
	return err
}

func writeTo(outputPath string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, platform.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}

	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("copy body: %w", err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close output: %w", err)
	}
	return n, nil
}
