package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/journal"
	"github.com/ytget/course-archiver/internal/model"
)

// DefaultHistoryLimit is the number of runs listed by default
const DefaultHistoryLimit = 10

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit      int
		runID      string
		failedOnly bool
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show runs recorded in the journal, newest first. With --run, list the
assets of one run.

Examples:
  course-archiver history
  course-archiver history --run run-0190c8e2-... --failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.settings.Journal.Path
			if cmd.Flags().Changed("journal") {
				path = dbPath
			}
			db, err := journal.OpenAndMigrate(path)
			if err != nil {
				return err
			}
			defer db.Close()
			store := journal.NewStore(db)

			if runID != "" {
				var status model.FetchStatus
				if failedOnly {
					status = model.FetchStatusFailed
				}
				return a.printRunAssets(cmd, store, runID, status)
			}
			return a.printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "show the assets of this run")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "with --run, show failed assets only")
	cmd.Flags().StringVar(&dbPath, "journal", "", "run journal database path")
	return cmd
}

func (a *app) printRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tFETCHED\tSKIPPED\tFAILED\tERROR")
	for _, run := range runs {
		duration := "running"
		if run.IsFinished() {
			duration = run.Duration().Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.RunID, run.StartedAt.Local().Format(time.DateTime), duration,
			run.Fetched, run.Skipped, run.Failed, run.Error)
	}
	return tw.Flush()
}

func (a *app) printRunAssets(cmd *cobra.Command, store *journal.Store, runID string, status model.FetchStatus) error {
	if _, err := store.GetRun(cmd.Context(), runID); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	tasks, err := store.RunAssets(cmd.Context(), runID, status)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tKIND\tDURATION\tDESTINATION\tERROR")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			task.Status, task.Kind, task.GetDurationString(), task.GetDisplayName(), task.LastError)
	}
	return tw.Flush()
}
