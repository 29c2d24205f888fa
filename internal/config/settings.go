// Package config loads archiver settings from an optional YAML file, a .env
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PlainTransport selects the tool used for plain file fetches
type PlainTransport string

const (
	PlainTransportWget PlainTransport = "wget"
	PlainTransportHTTP PlainTransport = "http"
)

// Environment variable keys
const (
	KeyBaseURL         = "BASE_URL"
	KeyInput           = "ARCHIVER_INPUT"
	KeyOutput          = "ARCHIVER_OUTPUT"
	KeySectionDirs     = "ARCHIVER_SECTION_DIRS"
	KeyLogLevel        = "ARCHIVER_LOG_LEVEL"
	KeyLogFormat       = "ARCHIVER_LOG_FORMAT"
	KeyFFmpegPath      = "ARCHIVER_FFMPEG"
	KeyWgetPath        = "ARCHIVER_WGET"
	KeyPlainTransport  = "ARCHIVER_PLAIN_TRANSPORT"
	KeyFetchTimeout    = "ARCHIVER_FETCH_TIMEOUT"
	KeyJournalPath     = "ARCHIVER_JOURNAL"
	KeyMetricsTextfile = "ARCHIVER_METRICS_TEXTFILE"
	KeyListenAddr      = "ARCHIVER_LISTEN"
)

// Default values
const (
	DefaultConfigFile     = "course-archiver.yaml"
	DefaultEnvFile        = ".env"
	DefaultInput          = "data.json"
	DefaultOutput         = "downloads"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultFFmpegPath     = "ffmpeg"
	DefaultWgetPath       = "wget"
	DefaultPlainTransport = PlainTransportWget
	DefaultJournalPath    = ".course-archiver.db"
	MaxFetchTimeout       = 24 * time.Hour
)

// Settings is the complete archiver configuration
type Settings struct {
	Input       string          `yaml:"input"`
	Output      string          `yaml:"output"`
	BaseURL     string          `yaml:"base_url"`
	SectionDirs bool            `yaml:"section_dirs"`
	Tools       ToolsSettings   `yaml:"tools"`
	Logging     LoggingSettings `yaml:"logging"`
	Journal     JournalSettings `yaml:"journal"`
	Metrics     MetricsSettings `yaml:"metrics"`
}

// ToolsSettings configures the external fetch tools
type ToolsSettings struct {
	FFmpeg         string         `yaml:"ffmpeg"`
	Wget           string         `yaml:"wget"`
	PlainTransport PlainTransport `yaml:"plain_transport"`
	FetchTimeout   time.Duration  `yaml:"fetch_timeout"` // 0 means no limit per asset
}

// LoggingSettings configures logging
type LoggingSettings struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "console" or "json"
}

// JournalSettings configures the run journal
type JournalSettings struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

// MetricsSettings configures metrics export
type MetricsSettings struct {
	Textfile string `yaml:"textfile"` // write metrics here when a run ends
	Listen   string `yaml:"listen"`   // serve /metrics and /archive on this address
}

// Load reads settings from a YAML file, then applies environment overrides
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&s)
}

// LoadFromEnv creates settings from defaults and environment variables only
func LoadFromEnv() (*Settings, error) {
	return finish(&Settings{})
}

// LoadWithFallback loads the .env file if present, then the YAML file when it
// exists, falling back to environment-only settings.
func LoadWithFallback(path string) (*Settings, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func finish(s *Settings) (*Settings, error) {
	if err := applyEnvOverrides(s); err != nil {
		return nil, err
	}
	setDefaults(s)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return s, nil
}

func applyEnvOverrides(s *Settings) error {
	overrideString(&s.BaseURL, KeyBaseURL)
	overrideString(&s.Input, KeyInput)
	overrideString(&s.Output, KeyOutput)
	overrideString(&s.Logging.Level, KeyLogLevel)
	overrideString(&s.Logging.Format, KeyLogFormat)
	overrideString(&s.Tools.FFmpeg, KeyFFmpegPath)
	overrideString(&s.Tools.Wget, KeyWgetPath)
	overrideString(&s.Journal.Path, KeyJournalPath)
	overrideString(&s.Metrics.Textfile, KeyMetricsTextfile)
	overrideString(&s.Metrics.Listen, KeyListenAddr)

	if v := os.Getenv(KeyPlainTransport); v != "" {
		s.Tools.PlainTransport = PlainTransport(strings.ToLower(v))
	}
	if v := os.Getenv(KeySectionDirs); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeySectionDirs, err)
		}
		s.SectionDirs = b
	}
	if v := os.Getenv(KeyFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyFetchTimeout, err)
		}
		s.Tools.FetchTimeout = d
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDefaults(s *Settings) {
	if s.Input == "" {
		s.Input = DefaultInput
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.Logging.Level == "" {
		s.Logging.Level = DefaultLogLevel
	}
	if s.Logging.Format == "" {
		s.Logging.Format = DefaultLogFormat
	}
	if s.Tools.FFmpeg == "" {
		s.Tools.FFmpeg = DefaultFFmpegPath
	}
	if s.Tools.Wget == "" {
		s.Tools.Wget = DefaultWgetPath
	}
	if s.Tools.PlainTransport == "" {
		s.Tools.PlainTransport = DefaultPlainTransport
	}
	if s.Journal.Path == "" {
		s.Journal.Path = DefaultJournalPath
	}
	s.SetFetchTimeout(s.Tools.FetchTimeout)
}

// Validate checks values that cannot be defaulted
func (s *Settings) Validate() error {
	switch s.Tools.PlainTransport {
	case PlainTransportWget, PlainTransportHTTP:
	default:
		return fmt.Errorf("unknown plain transport %q (want %s or %s)", s.Tools.PlainTransport, PlainTransportWget, PlainTransportHTTP)
	}
	switch strings.ToLower(s.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", s.Logging.Format)
	}
	if s.Input == s.Output {
		return fmt.Errorf("input and output must differ: %s", s.Input)
	}
	return nil
}

// SetFetchTimeout sets the per-asset timeout, clamped to [0, MaxFetchTimeout]
func (s *Settings) SetFetchTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if d > MaxFetchTimeout {
		d = MaxFetchTimeout
	}
	s.Tools.FetchTimeout = d
}

// JournalEnabled reports whether runs should be recorded
func (s *Settings) JournalEnabled() bool {
	return !s.Journal.Disabled && s.Journal.Path != ""
}
