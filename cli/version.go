package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/randalmurphal/pipekit/cli.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// VersionString describes the running binary.
func VersionString() string {
	return fmt.Sprintf("pipekit %s (commit=%s, date=%s)", Version, Commit, Date)
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, VersionString())
		},
	}
}
