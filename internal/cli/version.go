package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version works without a valid configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "course-archiver %s\n", a.info.Version)
			fmt.Fprintf(a.stdout, "  commit:  %s\n", a.info.Commit)
			fmt.Fprintf(a.stdout, "  built:   %s\n", a.info.BuildDate)
		},
	}
}
