package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/cli"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/storage"
)

// undoCmd represents the undo command
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recently recorded entry",
	Long: `Remove the last row of the log if it was recorded within the undo window
(60 seconds unless undo_window is configured).

Example:
  worklog undo`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		undoLast()
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

// undoLast removes the newest entry if it is still within the undo window
func undoLast() {
	services := loadServices()
	if services == nil {
		return
	}

	removed, err := services.Entry.Undo()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", service.DescribeUndoError(err))
		switch {
		case errors.Is(err, storage.ErrWindowExpired):
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Older entries can be edited in the CSV file directly")
		case errors.Is(err, storage.ErrNoSuchLog), errors.Is(err, storage.ErrNothingToUndo):
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Record an entry first with 'worklog log <category>'")
		}
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Removed: %s (%s)\n", cli.FormatEntry(removed), removed.Timestamp)
}
