package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const (
	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"
	// MaxBackupCount is the maximum number of backup files to keep
	MaxBackupCount = 3
)

// GetBackupPath returns the path of backup n for the log at logPath.
// Backups are named worklog.csv.bak.N; lower numbers are more recent.
func GetBackupPath(logPath string, n int) string {
	return fmt.Sprintf("%s%s.%d", logPath, BackupSuffix, n)
}

// rotateBackups shifts .bak.1 -> .bak.2 -> .bak.3, dropping the oldest.
// Missing files are skipped.
func rotateBackups(logPath string) error {
	if err := os.Remove(GetBackupPath(logPath, MaxBackupCount)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for i := MaxBackupCount - 1; i >= 1; i-- {
		if err := os.Rename(GetBackupPath(logPath, i), GetBackupPath(logPath, i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// CreateBackup copies the log to .bak.1 after rotating older backups.
// A missing log is not an error; there is nothing to back up.
func CreateBackup(logPath string) error {
	if _, err := os.Stat(logPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := rotateBackups(logPath); err != nil {
		return err
	}

	return copyFile(logPath, GetBackupPath(logPath, 1))
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Number int    // The backup number (1, 2, or 3)
	Path   string // The full path to the backup file
}

// ListBackups returns the backups of this store, most recent first.
func (s *LogStore) ListBackups() []BackupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	backups := []BackupInfo{}
	for i := 1; i <= MaxBackupCount; i++ {
		path := GetBackupPath(s.path, i)
		if _, err := os.Stat(path); err == nil {
			backups = append(backups, BackupInfo{Number: i, Path: path})
		}
	}
	return backups
}

// RestoreBackup replaces the log with backup n (1 is most recent).
// The current log is backed up first and becomes the new .bak.1. The swap
// is atomic: a failed restore leaves the log as it was.
func (s *LogStore) RestoreBackup(n int) error {
	if n < 1 || n > MaxBackupCount {
		return fmt.Errorf("invalid backup number %d, must be between 1 and %d", n, MaxBackupCount)
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	backupPath := GetBackupPath(s.path, n)
	if _, err := os.Stat(backupPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("backup %d does not exist", n)
		}
		return storageErr("stat", backupPath, err)
	}

	// Read the chosen backup before rotation renames it.
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return storageErr("read", backupPath, err)
	}

	if err := CreateBackup(s.path); err != nil {
		return storageErr("backup", s.path, err)
	}

	return s.replaceLocked(data)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
