// Package main is the entry point for the tide CLI.
package main

import (
	"fmt"
	"os"

	"github.com/bethropolis/tide/internal/cli"
	"github.com/bethropolis/tide/internal/logger"
)

// Set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("command failed: %v", err)
		fmt.Fprintln(os.Stderr, "tide:", err)
		return 1
	}
	return 0
}
