// Package cli wires the archiver packages into the course-archiver command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/config"
	"github.com/ytget/course-archiver/internal/platform"
)

// Exit codes
const (
	ExitOK           = 0
	ExitError        = 1
	ExitAssetsFailed = 2
)

// ErrAssetsFailed is returned by a strict run in which some assets failed
var ErrAssetsFailed = errors.New("some assets failed")

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// app is the state shared by all commands
type app struct {
	info       BuildInfo
	configPath string
	logLevel   string
	logFormat  string

	settings *config.Settings
	logger   zerolog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// Execute runs the command line and returns the process exit code.
func Execute(info BuildInfo) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr, info)
}

// Run executes the command line args with the given output streams.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, info BuildInfo) int {
	root := NewRootCommand(info, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrAssetsFailed):
		fmt.Fprintln(stderr, err)
		return ExitAssetsFailed
	default:
		fmt.Fprintln(stderr, err)
		return ExitError
	}
}

// NewRootCommand builds the command tree
func NewRootCommand(info BuildInfo, stdout, stderr io.Writer) *cobra.Command {
	a := &app{info: info, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "course-archiver",
		Short: "Mirror a course description into a local directory tree",
		Long: `course-archiver reads a course document (sections, modules, lessons) and
materializes it on disk: one directory per module and lesson, metadata next to
every node, and each video, thumbnail and attachment fetched exactly once.

Re-running is safe: files that already exist are skipped, metadata is rewritten.

Quick start:
  course-archiver validate   # Check the document and the configuration
  course-archiver plan       # List what a run would write
  course-archiver run        # Archive the course`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newPlanCmd(a),
		newValidateCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// setup loads settings and builds the logger before any subcommand runs
func (a *app) setup(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadWithFallback(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		settings.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		settings.Logging.Format = a.logFormat
	}

	logger, err := platform.NewLogger(settings.Logging.Level, settings.Logging.Format, a.stderr)
	if err != nil {
		return err
	}

	a.settings = settings
	a.logger = logger
	return nil
}
