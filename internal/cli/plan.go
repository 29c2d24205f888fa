package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/archive"
	"github.com/ytget/course-archiver/internal/model"
	"github.com/ytget/course-archiver/internal/platform"
)

// Plan entry states
const (
	planStateExists = "exists"
	planStateNew    = "new"
	planStateError  = "error"
	planStateWrite  = "write"
)

func newPlanCmd(a *app) *cobra.Command {
	f := &documentFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the files a run would write",
		Long: `List every file a run would write, in order, without fetching anything.

Metadata is always rewritten ("write"). Assets are either already present
("exists"), to be fetched ("new"), or cannot be fetched ("error").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a.settings); err != nil {
				return err
			}

			doc, err := platform.LoadDocument(a.settings.Input)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATE\tKIND\tPATH\tSOURCE")
			counts := make(map[string]int)
			for _, entry := range archive.Plan(doc, archiveOptions(a.settings)) {
				state, source := planState(entry)
				counts[state]++
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", state, entry.Kind, entry.Path, source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "\n%d to write, %d new, %d existing, %d with errors\n",
				counts[planStateWrite], counts[planStateNew], counts[planStateExists], counts[planStateError])
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func planState(entry model.PlannedAsset) (state, source string) {
	switch {
	case !entry.Kind.IsFetched():
		return planStateWrite, "-"
	case entry.Err != nil:
		return planStateError, entry.Err.Error()
	case platform.FileExists(entry.Path):
		return planStateExists, entry.URL
	default:
		return planStateNew, entry.URL
	}
}
