package main

import (
	"os"

	"github.com/ytget/course-archiver/internal/cli"
)

// Set during build via -ldflags "-X main.version=X.Y.Z"
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	}))
}
