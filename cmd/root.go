package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/cli"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "A work event log for IT support",
	Long: `worklog records what you worked on, one category per event, in a CSV file
that opens directly in a spreadsheet.

Usage:
  worklog                                   Open the terminal UI
  worklog log <category>                    Record an event (e.g., worklog log 打印机维护)
  worklog log 其他 <content...>              Record a free-form event
  worklog undo                              Remove the last event (within 60 seconds)
  worklog list                              Show the most recent events
  worklog stats                             Count events per category
  worklog serve                             Accept events from a phone on the local network
  worklog categories                        List the recognised categories
  worklog validate                          Check log file health
  worklog restore [n]                       Restore from backup (default: most recent)

The log lives in ~/Documents/WorkLog/worklog.csv unless log_path is set in the
config file (see 'worklog config').`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTUI()
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check log file health",
	Long:  `Validate the log file and report on its health status, including any corrupted rows.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		validateLog()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"worklog version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadServices builds the services, reporting failures the usual way.
// It returns nil after calling deps.Exit.
func loadServices() *service.Services {
	services, err := deps.Services()
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to initialize worklog")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Check your config file with 'worklog config' and that your home directory is accessible")
		deps.Exit(1)
		return nil
	}
	return services
}

// printCorruptionWarnings lists skipped rows on stderr.
func printCorruptionWarnings(warnings []storage.ParseWarning) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: Found %d corrupted %s in log file:\n", len(warnings), cli.Pluralize("row", len(warnings)))
	for _, warning := range warnings {
		_, _ = fmt.Fprintln(deps.Stderr, cli.FormatCorruptionWarning(warning))
	}
	_, _ = fmt.Fprintln(deps.Stderr)
}

// validateLog checks the log file health and reports status
func validateLog() {
	services := loadServices()
	if services == nil {
		return
	}

	logPath := services.Entry.LogPath()
	health, err := services.Entry.Health()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to validate log: %v\n", err)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Log file: %s\n", logPath)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	if !health.Exists {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: Log file does not exist yet; it is created with the first entry")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Header:            %s\n", headerStatus(health.HeaderOK))
	_, _ = fmt.Fprintf(deps.Stdout, "Total rows:        %d\n", health.TotalRows)
	_, _ = fmt.Fprintf(deps.Stdout, "Valid entries:     %d\n", health.ValidEntries)
	_, _ = fmt.Fprintf(deps.Stdout, "Corrupted entries: %d\n", health.CorruptedEntries)

	if len(health.Warnings) > 0 {
		_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintln(deps.Stdout, "Corrupted rows:")
		for _, warning := range health.Warnings {
			_, _ = fmt.Fprintln(deps.Stdout, cli.FormatCorruptionWarning(warning))
		}
	}

	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	if health.CorruptedEntries == 0 && health.HeaderOK {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Log file is healthy")
	} else {
		_, _ = fmt.Fprintf(deps.Stderr, "Status: ⚠ Log file has %d corrupted %s\n", health.CorruptedEntries, cli.Pluralize("row", health.CorruptedEntries))
	}
}

func headerStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "missing or unexpected"
}

// ExecuteArgs runs the root command with args instead of os.Args
func ExecuteArgs(args []string) error {
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}
