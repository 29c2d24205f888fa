// Package remux drives ffmpeg to copy media streams (HLS playlists, remote
// files, local files) into a local container with codecs copied as-is.
package remux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FFmpeg constants for stream copy
const (
	// Input protocols ffmpeg may follow from a playlist
	ProtocolWhitelist = "file,http,https,tcp,tls"

	// Allow HLS segments with any extension
	AllowedExtensions = "ALL"

	// ADTS framed AAC cannot be stored in MP4 as is
	AudioBitstreamFilter = "aac_adtstoasc"

	// Copy every codec without re-encoding
	CopyCodec = "copy"

	// Executable and I/O constants
	FFmpegCommand      = "ffmpeg"
	FFmpegLogLevel     = "error"
	ProgressPipeTarget = "pipe:2"
	ProgressTimeKey    = "out_time_us"
	ProgressSizeKey    = "total_size"
	ProgressStateKey   = "progress"
	ProgressStateEnd   = "end"

	// Reporting
	ProgressLogInterval = 5 * time.Second
	StderrTailLines     = 20
)

// Service remuxes streams with the ffmpeg binary
type Service struct {
	ffmpegPath  string
	logInterval time.Duration
	logger      zerolog.Logger
}

// NewService creates a remux service. An empty ffmpegPath uses ffmpeg from PATH.
func NewService(ffmpegPath string, logger zerolog.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	return &Service{
		ffmpegPath:  ffmpegPath,
		logInterval: ProgressLogInterval,
		logger:      logger.With().Str("component", "remux").Logger(),
	}
}

// AssertReady checks that the ffmpeg binary can be found
func (s *Service) AssertReady() error {
	if _, err := exec.LookPath(s.ffmpegPath); err != nil {
		return fmt.Errorf("missing required binary %q: %w", s.ffmpegPath, err)
	}
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func (s *Service) BuildFFmpegArgs(sourceURL, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", FFmpegLogLevel,
		"-y", // Overwrite a stale temporary file
		"-protocol_whitelist", ProtocolWhitelist,
		"-allowed_extensions", AllowedExtensions,
		"-i", sourceURL,
		"-bsf:a", AudioBitstreamFilter,
		"-c", CopyCodec,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// Remux runs ffmpeg and waits for it to finish
func (s *Service) Remux(ctx context.Context, sourceURL, outputPath string) error {
	cmd := exec.CommandContext(ctx, s.ffmpegPath, s.BuildFFmpegArgs(sourceURL, outputPath)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// All reads must complete before Wait
	tail := s.monitorProgress(stderr, outputPath)
	err = cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("ffmpeg exited with code %d: %w; out=%s", exitErr.ExitCode(), err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// progress is the state reported by ffmpeg's -progress output
type progress struct {
	outTime   time.Duration
	totalSize int64
	finished  bool
}

// update applies one key=value line and reports whether it was a progress line
func (p *progress) update(line string) bool {
	key, value, ok := strings.Cut(line, "=")
	if !ok || !isProgressKey(key) {
		return false
	}

	switch key {
	case ProgressTimeKey:
		if us, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.outTime = time.Duration(us) * time.Microsecond
		}
	case ProgressSizeKey:
		if size, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.totalSize = size
		}
	case ProgressStateKey:
		p.finished = value == ProgressStateEnd
	}
	return true
}

func isProgressKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// monitorProgress consumes ffmpeg's stderr, logging progress periodically and
// returning the last non-progress lines for error reporting
func (s *Service) monitorProgress(stderr io.Reader, outputPath string) []string {
	scanner := bufio.NewScanner(stderr)
	var (
		state   progress
		tail    []string
		lastLog time.Time
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !state.update(line) {
			tail = append(tail, line)
			if len(tail) > StderrTailLines {
				tail = tail[1:]
			}
			continue
		}

		if time.Since(lastLog) >= s.logInterval || state.finished {
			lastLog = time.Now()
			s.logger.Debug().
				Str("output", outputPath).
				Dur("position", state.outTime).
				Int64("bytes", state.totalSize).
				Bool("finished", state.finished).
				Msg("remux progress")
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn().Err(err).Str("output", outputPath).Msg("stopped parsing ffmpeg output")
	}

	// ffmpeg blocks on a full stderr pipe, so the rest is read and dropped
	_, _ = io.Copy(io.Discard, stderr)

	return tail
}
