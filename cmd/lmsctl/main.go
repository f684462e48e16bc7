// lmsctl - command-line client for the Akili LMS
package main

import (
	"os"

	"github.com/akiliapp/lms/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Execute())
}
