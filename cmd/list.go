package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/cli"
	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/filter"
	"github.com/xolan/worklog/internal/storage"
	"github.com/xolan/worklog/internal/timeutil"
)

const defaultListCount = 20

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recorded entries",
	Long: `Show the most recent entries of the log, oldest first.

Filters can be combined; an entry must match all of them.

Examples:
  worklog list                             Show the last 20 entries
  worklog list --last 50                   Show the last 50 entries
  worklog list --last 0                    Show every entry
  worklog list --from 2024-03-01 --to 2024-03-04
  worklog list --category 打印机维护         Only one category (repeatable)
  worklog list --grep 机柜                  Category or content contains a keyword`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runList(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntP("last", "n", defaultListCount, "Number of entries to show (0 for all)")
	listCmd.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	listCmd.Flags().String("to", "", "Last day to include (YYYY-MM-DD)")
	listCmd.Flags().StringSliceP("category", "c", nil, "Only show this category (repeatable)")
	listCmd.Flags().StringP("grep", "g", "", "Only show entries whose category or content contains this keyword")
}

// runList prints the selected entries
func runList(cmd *cobra.Command) {
	last, _ := cmd.Flags().GetInt("last")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	categories, _ := cmd.Flags().GetStringSlice("category")
	keyword, _ := cmd.Flags().GetString("grep")

	if last < 0 {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid --last value %d: must not be negative\n", last)
		deps.Exit(1)
		return
	}

	var start, end time.Time
	if fromStr != "" {
		d, err := timeutil.ParseDate(fromStr)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid --from date: %v\n", err)
			deps.Exit(1)
			return
		}
		start = d
	}
	if toStr != "" {
		d, err := timeutil.ParseDate(toStr)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid --to date: %v\n", err)
			deps.Exit(1)
			return
		}
		end = timeutil.EndOfDay(d)
	}

	services := loadServices()
	if services == nil {
		return
	}

	f := filter.NewFilter(keyword, categories)
	var (
		entries  []entry.Entry
		warnings []storage.ParseWarning
		total    int
	)
	if f.IsEmpty() && start.IsZero() && end.IsZero() {
		result, err := services.Entry.Recent(last)
		if err != nil {
			printReadError(err, services.Entry.LogPath())
			return
		}
		entries, warnings, total = result.Entries, result.Warnings, result.Total
	} else {
		result, err := services.Search.Search(f, start, end)
		if err != nil {
			printReadError(err, services.Entry.LogPath())
			return
		}
		entries, warnings, total = result.Entries, result.Warnings, result.Total
		if last > 0 && len(entries) > last {
			entries = entries[len(entries)-last:]
		}
	}

	printCorruptionWarnings(warnings)

	if len(entries) == 0 {
		if f.IsEmpty() && start.IsZero() && end.IsZero() {
			_, _ = fmt.Fprintln(deps.Stdout, "No entries recorded yet")
		} else {
			_, _ = fmt.Fprintln(deps.Stdout, cli.BuildPeriodWithFilters("No matching entries", f))
		}
		return
	}

	for _, e := range entries {
		_, _ = fmt.Fprintln(deps.Stdout, cli.FormatEntryLine(e))
	}
	if len(entries) < total {
		_, _ = fmt.Fprintf(deps.Stdout, "\nShowing %d of %d %s (use --last 0 to show all)\n", len(entries), total, cli.Pluralize("entry", total))
	}
}

func printReadError(err error, logPath string) {
	_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to read entries from the log")
	_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
	_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check that the file is readable: %s\n", logPath)
	deps.Exit(1)
}
