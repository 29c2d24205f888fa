package cli

import (
	"github.com/spf13/cobra"

	"github.com/ytget/course-archiver/internal/archive"
	"github.com/ytget/course-archiver/internal/config"
)

// documentFlags select the document and the layout of the archive
type documentFlags struct {
	input       string
	output      string
	baseURL     string
	sectionDirs bool
}

func (f *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "course document (default "+config.DefaultInput+")")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output root (default "+config.DefaultOutput+")")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "prefix for relative thumbnail and file URLs (env "+config.KeyBaseURL+")")
	cmd.Flags().BoolVar(&f.sectionDirs, "section-dirs", false, "give every section its own directory")
}

// apply overrides settings with the flags set on the command line
func (f *documentFlags) apply(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		s.Input = f.input
	}
	if flags.Changed("output") {
		s.Output = f.output
	}
	if flags.Changed("base-url") {
		s.BaseURL = f.baseURL
	}
	if flags.Changed("section-dirs") {
		s.SectionDirs = f.sectionDirs
	}
	return s.Validate()
}

func archiveOptions(s *config.Settings) archive.Options {
	return archive.Options{
		Input:       s.Input,
		OutputRoot:  s.Output,
		BaseURL:     s.BaseURL,
		SectionDirs: s.SectionDirs,
	}
}
