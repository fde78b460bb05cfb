package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long: `Launch the terminal UI. Running worklog without a command does the same.

Tabs:
  Record  Pick a category (or 其他 with a description) and record it; u undoes
  Stats   Count entries per category for a day range; x exports to Excel
  Mobile  Start or stop the entry server for phones and show its address

Keyboard shortcuts:
  Tab/Shift+Tab  Switch tabs
  1-3            Jump to a tab
  ?              Show help
  q, Ctrl+C      Quit (stops the entry server)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTUI()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI initializes and runs the TUI application
func runTUI() {
	services := loadServices()
	if services == nil {
		return
	}

	if err := tui.Run(services, logger()); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error running TUI: %v\n", err)
		deps.Exit(1)
	}
}
