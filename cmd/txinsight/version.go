package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the version of the application.
// This can be overridden at build time using ldflags.
var Version = "v0.1.0"

// Commit is the git commit hash.
// This can be overridden at build time using ldflags.
var Commit = "dev"

// BuildTime is the build timestamp.
// This can be overridden at build time using ldflags.
var BuildTime = "unknown"

// versionCmd 打印版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "txinsight %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}
