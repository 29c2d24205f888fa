package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/archive"
	"github.com/ytget/course-archiver/internal/platform"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

func newValidateCmd(a *app) *cobra.Command {
	f := &documentFlags{}
	var checkTools bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the course document and configuration",
		Long: `Check that the course document parses and that every asset can be
resolved to a destination and a source URL.

Examples:
  course-archiver validate
  course-archiver validate --input course.json --check-tools`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a.settings); err != nil {
				return err
			}
			s := a.settings
			out := a.stdout

			fmt.Fprintf(out, "Validating %s...\n\n", s.Input)

			doc, err := platform.LoadDocument(s.Input)
			if err != nil {
				fmt.Fprintf(out, "  %s Document valid\n", crossMark)
				return err
			}
			fmt.Fprintf(out, "  %s Document valid\n", checkMark)

			shape := "modules"
			if doc.Course.IsSectioned() {
				shape = "sections"
			}
			stats := doc.Course.Stats()
			fmt.Fprintf(out, "  %s Shape: %s (%d sections, %d modules, %d lessons)\n",
				checkMark, shape, stats.Sections, stats.Modules, stats.Lessons)
			fmt.Fprintf(out, "  %s Assets: %d videos, %d thumbnails, %d files, %d content pages\n",
				checkMark, stats.Videos, stats.Thumbnails, stats.Files, stats.Contents)
			if s.BaseURL == "" {
				fmt.Fprintf(out, "  - Base URL: not set\n")
			} else {
				fmt.Fprintf(out, "  %s Base URL: %s\n", checkMark, s.BaseURL)
			}

			problems := 0
			for _, entry := range archive.Plan(doc, archiveOptions(s)) {
				if entry.Err == nil {
					continue
				}
				problems++
				fmt.Fprintf(out, "  %s %s in %q: %v\n", crossMark, entry.Kind, entry.LessonTitle, entry.Err)
			}

			if checkTools {
				toolSettings := *s
				toolSettings.Journal.Disabled = true
				p, err := newPipeline(&toolSettings, a.logger)
				if err != nil {
					return err
				}
				defer p.Close()
				errs := p.checkTools()
				for _, err := range errs {
					fmt.Fprintf(out, "  %s %v\n", crossMark, err)
				}
				if len(errs) == 0 {
					fmt.Fprintf(out, "  %s Fetch tools available\n", checkMark)
				}
				problems += len(errs)
			}

			if problems > 0 {
				return fmt.Errorf("%d problems found", problems)
			}
			fmt.Fprintf(out, "\nDocument valid\n")
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&checkTools, "check-tools", false, "check that ffmpeg and the plain file tool are available")
	return cmd
}
