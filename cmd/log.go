package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/cli"
	"github.com/xolan/worklog/internal/entry"
)

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log <category> [content...]",
	Short: "Record a work event",
	Long: `Record a work event under one category, stamped with the current time.

Content is only kept for the free-form category 其他, where it is required.
For every other category any content given is ignored.

Examples:
  worklog log 打印机维护
  worklog log 其他 搬机柜, 接线

Run 'worklog categories' to see the recognised categories.`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		services, err := deps.Services()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return services.Entry.Catalog(), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		recordEntry(args)
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}

// recordEntry validates and appends one entry
func recordEntry(args []string) {
	services := loadServices()
	if services == nil {
		return
	}

	category := args[0]
	content := strings.Join(args[1:], " ")

	e, err := services.Entry.Record(category, content)
	if err != nil {
		var verr *entry.ValidationError
		if errors.As(err, &verr) {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", verr.Message)
			if verr.Field == "content" {
				_, _ = fmt.Fprintf(deps.Stderr, "Hint: Describe the work, e.g. worklog log %s 搬机柜\n", entry.OtherCategory)
			} else {
				_, _ = fmt.Fprintln(deps.Stderr, "Hint: Run 'worklog categories' to list the recognised categories")
			}
			deps.Exit(1)
			return
		}
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to record entry")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check that the log file is writable and not open elsewhere: %s\n", services.Entry.LogPath())
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Recorded: %s (%s)\n", cli.FormatEntry(e), e.Timestamp)
	if content != "" && e.Content == "" {
		_, _ = fmt.Fprintf(deps.Stdout, "Note: content is only kept for %s\n", entry.OtherCategory)
	}
}
