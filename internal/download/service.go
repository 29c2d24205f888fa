package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/platform"
)

var (
	// ErrEmptySource is returned for an asset without a source URL
	ErrEmptySource = errors.New("empty source URL")

	// ErrInvalidDestination is returned when the destination has no usable file name
	ErrInvalidDestination = errors.New("invalid destination file name")

	// ErrNoOutput is returned when a tool exits cleanly without writing anything
	ErrNoOutput = errors.New("transfer produced no output")
)

// Service handles asset fetch operations
type Service struct {
	transport Transport
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewService creates a new fetch service on top of transport
func NewService(transport Transport, logger zerolog.Logger) *Service {
	return &Service{
		transport: transport,
		logger:    logger.With().Str("component", "fetch").Logger(),
	}
}

// SetTimeout limits the duration of a single transfer. Zero disables the limit.
func (s *Service) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.timeout = d
}

// Fetch implements Fetcher. An existing destination is never touched; otherwise
// the asset is transferred to a temporary file and renamed onto dest.
func (s *Service) Fetch(ctx context.Context, sourceURL, dest string, mode model.FetchMode) (outcome model.Outcome) {
	if err := validateDestination(dest); err != nil {
		return model.Failed(err)
	}
	if platform.FileExists(dest) {
		return model.Skipped()
	}
	if strings.TrimSpace(sourceURL) == "" {
		return model.Failed(ErrEmptySource)
	}
	if err := ctx.Err(); err != nil {
		return model.Failed(err)
	}

	tempPath, err := platform.CreateTempPath(dest)
	if err != nil {
		return model.Failed(err)
	}

	// A misbehaving transport must not take the run down with it
	defer func() {
		if r := recover(); r != nil {
			s.discard(tempPath)
			outcome = model.Failed(fmt.Errorf("%s fetch panicked: %v", mode, r))
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.transfer(ctx, sourceURL, tempPath, mode); err != nil {
		s.discard(tempPath)
		return model.Failed(err)
	}

	if !platform.FileExists(tempPath) {
		return model.Failed(ErrNoOutput)
	}

	if err := platform.CommitFile(tempPath, dest); err != nil {
		s.discard(tempPath)
		return model.Failed(err)
	}

	return model.Fetched()
}

func (s *Service) transfer(ctx context.Context, sourceURL, tempPath string, mode model.FetchMode) error {
	switch mode {
	case model.FetchModeStream:
		if err := s.transport.FetchStream(ctx, sourceURL, tempPath); err != nil {
			return fmt.Errorf("stream fetch: %w", err)
		}
	case model.FetchModePlain:
		if err := s.transport.FetchPlain(ctx, sourceURL, tempPath); err != nil {
			return fmt.Errorf("plain fetch: %w", err)
		}
	default:
		return fmt.Errorf("unknown fetch mode %q", mode)
	}
	return nil
}

// discard removes a partial temporary file
func (s *Service) discard(tempPath string) {
	if err := platform.RemoveIfExists(tempPath); err != nil {
		s.logger.Warn().Err(err).Str("path", tempPath).Msg("failed to remove temporary file")
	}
}

func validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}
	switch name := filepath.Base(dest); name {
	case ".", "..", string(filepath.Separator):
		return fmt.Errorf("%w: %q", ErrInvalidDestination, name)
	}
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrInvalidDestination, dest)
	}
	return nil
}
