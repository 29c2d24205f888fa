package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/archive"
	"github.com/ytget/course-archiver/internal/config"
	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/server"
	"github.com/ytget/course-archiver/internal/watch"
)

type runFlags struct {
	document       documentFlags
	watch          bool
	listen         string
	strict         bool
	plainTransport string
	textfile       string
	journal        string
	noJournal      bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Archive the course document",
		Long: `Archive the course document into the output root.

Existing files are kept; everything else is fetched. Failed assets are
reported and skipped, and the run continues.

Examples:
  course-archiver run
  course-archiver run --input course.json --output backup --base-url https://school.test
  course-archiver run --watch --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a.settings); err != nil {
				return err
			}
			return a.run(cmd.Context(), f)
		},
	}

	f.document.register(cmd)
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "run again whenever the document changes")
	cmd.Flags().StringVar(&f.listen, "listen", "", "serve /healthz, /status, /metrics and /archive on this address")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit with status 2 when any asset failed")
	cmd.Flags().StringVar(&f.plainTransport, "plain-transport", "", "tool for plain files: wget or http")
	cmd.Flags().StringVar(&f.textfile, "metrics-textfile", "", "write Prometheus metrics to this file after each run")
	cmd.Flags().StringVar(&f.journal, "journal", "", "run journal database path")
	cmd.Flags().BoolVar(&f.noJournal, "no-journal", false, "do not record the run")
	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		s.Metrics.Listen = f.listen
	}
	if flags.Changed("plain-transport") {
		s.Tools.PlainTransport = config.PlainTransport(f.plainTransport)
	}
	if flags.Changed("metrics-textfile") {
		s.Metrics.Textfile = f.textfile
	}
	if flags.Changed("journal") {
		s.Journal.Path = f.journal
	}
	if f.noJournal {
		s.Journal.Disabled = true
	}
	return f.document.apply(cmd, s)
}

func (a *app) run(ctx context.Context, f *runFlags) error {
	p, err := newPipeline(a.settings, a.logger)
	if err != nil {
		return err
	}
	defer p.Close()
	p.checkTools()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	if addr := a.settings.Metrics.Listen; addr != "" {
		router := server.NewRouter(server.Config{
			Status:         p.status,
			MetricsHandler: p.metrics.Handler(),
			ArchiveRoot:    a.settings.Output,
		}, a.logger)
		go func() {
			serverErr <- server.Serve(ctx, addr, router, a.logger)
		}()
	}

	summary, err := a.runOnce(ctx, p)
	if err != nil && (!f.watch || archive.IsInterrupted(err)) {
		return err
	}

	if f.watch {
		w, err := watch.New(a.settings.Input, watch.DefaultDebounce, a.logger)
		if err != nil {
			return err
		}
		watchErr := make(chan error, 1)
		go func() {
			watchErr <- w.Watch(ctx, func(ctx context.Context) {
				_, _ = a.runOnce(ctx, p)
			})
		}()

		select {
		case err := <-watchErr:
			cancel()
			return err
		case err := <-serverErr:
			cancel()
			<-watchErr
			return err
		}
	}

	cancel()
	if a.settings.Metrics.Listen != "" {
		if err := <-serverErr; err != nil {
			return err
		}
	}

	if f.strict && summary.HasFailures() {
		return fmt.Errorf("%w: %d of %d", ErrAssetsFailed, summary.Failed, summary.Assets())
	}
	return nil
}

// runOnce performs one archive run and reports it
func (a *app) runOnce(ctx context.Context, p *pipeline) (*model.RunSummary, error) {
	summary, err := p.archive.Run(ctx)
	if summary != nil {
		a.printSummary(summary)
	}
	if textfile := a.settings.Metrics.Textfile; textfile != "" {
		if err := p.metrics.WriteTextfile(textfile); err != nil {
			a.logger.Warn().Err(err).Str("path", textfile).Msg("failed to export metrics")
		}
	}
	if err != nil && archive.IsInterrupted(err) {
		a.logger.Warn().Msg("run interrupted; re-run to resume")
	}
	return summary, err
}

func (a *app) printSummary(s *model.RunSummary) {
	fmt.Fprintf(a.stdout, "run %s: %d modules, %d lessons, %d fetched, %d skipped, %d failed in %s\n",
		s.RunID, s.Modules, s.Lessons, s.Fetched, s.Skipped, s.Failed, s.Duration().Round(time.Millisecond))
	if s.Error != "" {
		fmt.Fprintf(a.stdout, "run %s stopped: %s\n", s.RunID, s.Error)
	}
}
