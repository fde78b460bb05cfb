package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/storage"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [backup_number]",
	Short: "Restore the log from a backup",
	Long: fmt.Sprintf(`Replace the log file with one of its backups.

A backup is taken before every rewrite of the log (each undo), and the
last %d are kept as worklog.csv.bak.1 (most recent) to .bak.%d.

Examples:
  worklog restore       Restore from the most recent backup
  worklog restore 2     Restore from backup #2`, storage.MaxBackupCount, storage.MaxBackupCount),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		restoreFromBackup(args)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// restoreFromBackup handles the restore command logic
func restoreFromBackup(args []string) {
	backupNum := 1
	if len(args) > 0 {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid backup number '%s'\n", args[0])
			deps.Exit(1)
			return
		}
		if num < 1 || num > storage.MaxBackupCount {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup number must be between 1 and %d (got %d)\n", storage.MaxBackupCount, num)
			deps.Exit(1)
			return
		}
		backupNum = num
	}

	services := loadServices()
	if services == nil {
		return
	}

	backups := services.Entry.Backups()
	if len(backups) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No backups available")
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Available backups:")
	found := false
	for _, backup := range backups {
		marker := ""
		if backup.Number == 1 {
			marker = " (most recent)"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s%s\n", backup.Number, backup.Path, marker)
		found = found || backup.Number == backupNum
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if !found {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup %d does not exist\n", backupNum)
		deps.Exit(1)
		return
	}

	if err := services.Entry.Restore(backupNum); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to restore backup: %v\n", err)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Successfully restored from backup %d\n", backupNum)
}
