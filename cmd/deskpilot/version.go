package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(fmt.Sprintf("deskpilot %s (commit %s, built %s, %s %s/%s)",
			version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH))
	},
}
