package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd reports the build stamped in at link time, for bug reports
// and install checks.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the flowcast build information.",
	Long:  `Print the release version, git commit, build timestamp and Go runtime.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("flowcast %s\n", version)
		cmd.Printf("  commit:  %s\n", commit)
		cmd.Printf("  built:   %s\n", date)
		cmd.Printf("  runtime: %s\n", runtime.Version())
	},
}
