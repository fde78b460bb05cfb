package main

import (
	"fmt"
	"os"

	"github.com/xolan/worklog/cmd"
	"github.com/xolan/worklog/internal/config"
)

// Version information injected by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run checks the config file before any command so a broken file is reported
// once, up front, instead of by whichever command touches it first.
func run(args []string) int {
	configPath, err := config.GetConfigPath()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: Failed to determine config file location: %v\n", err)
		return 1
	}
	if _, err := config.LoadOrDefault(configPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_, _ = fmt.Fprintln(os.Stderr, "Hint: Fix the file or run 'worklog config init' after moving it aside")
		return 1
	}

	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.ExecuteArgs(args); err != nil {
		return 1
	}
	return 0
}
