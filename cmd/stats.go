package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/stats"
	"github.com/xolan/worklog/internal/timeutil"
)

// xlsxDefaultPath is the --xlsx value when the flag is given without a path.
const xlsxDefaultPath = "-"

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count entries per category",
	Long: `Count how often each category was recorded in a day range. Both ends of
the range are whole days. Every category of the catalog is listed, including
the ones with no entries.

Without flags the range runs from stats_default_days before today (5 unless
configured) through today.

Examples:
  worklog stats                                 Default range
  worklog stats --last 7                        The last 7 days including today
  worklog stats --from 2024-03-01 --to 2024-03-31
  worklog stats --xlsx                          Also write 工作统计.xlsx next to the log
  worklog stats --xlsx report.xlsx              Also write the table to report.xlsx
  worklog stats --csv > report.csv              Print the table as CSV instead`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runStats(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("from", "", "First day of the range (YYYY-MM-DD)")
	statsCmd.Flags().String("to", "", "Last day of the range (YYYY-MM-DD)")
	statsCmd.Flags().Int("last", 0, "Use the last N days including today")
	statsCmd.Flags().String("xlsx", "", "Export the table to an Excel workbook")
	statsCmd.Flags().Lookup("xlsx").NoOptDefVal = xlsxDefaultPath
	statsCmd.Flags().Bool("csv", false, "Print the table as CSV")
	statsCmd.Flags().Bool("hide-zero", false, "Leave out categories with no entries")
}

// runStats handles the stats command logic
func runStats(cmd *cobra.Command) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	lastDays, _ := cmd.Flags().GetInt("last")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	asCSV, _ := cmd.Flags().GetBool("csv")
	hideZero, _ := cmd.Flags().GetBool("hide-zero")

	services := loadServices()
	if services == nil {
		return
	}

	start, end, err := timeutil.ParseDateRangeFlags(fromStr, toStr, lastDays, services.Stats.DefaultDays(), time.Now())
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Dates are YYYY-MM-DD, e.g. --from 2024-03-01 --to 2024-03-31")
		deps.Exit(1)
		return
	}

	result, err := services.Stats.ForRange(start, end)
	if err != nil {
		printReadError(err, services.Entry.LogPath())
		return
	}

	printCorruptionWarnings(result.Warnings)

	if asCSV {
		if err := services.Stats.ExportCSV(deps.Stdout, result); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to write CSV: %v\n", err)
			deps.Exit(1)
			return
		}
	} else if err := stats.WriteReport(deps.Stdout, result.Counts, start, end, stats.ReportOptions{HideZero: hideZero}); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to write report: %v\n", err)
		deps.Exit(1)
		return
	}

	if xlsxPath == "" {
		return
	}
	if xlsxPath == xlsxDefaultPath {
		xlsxPath = services.Stats.DefaultExportPath()
	}
	if err := services.Stats.ExportXLSX(xlsxPath, result); err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to export statistics")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Close the workbook if it is open in a spreadsheet and try again")
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Exported to %s\n", xlsxPath)
}
