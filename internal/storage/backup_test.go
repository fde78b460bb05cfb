package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Helper to create a temporary log file with content
func createTempLog(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "worklog.csv")
	if content != "" {
		if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create temp log file: %v", err)
		}
	}
	return tmpFile
}

// Helper to check if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Helper to read file content
func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func TestGetBackupPath(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{1, "/logs/worklog.csv.bak.1"},
		{2, "/logs/worklog.csv.bak.2"},
		{3, "/logs/worklog.csv.bak.3"},
	}

	for _, tt := range tests {
		if got := GetBackupPath("/logs/worklog.csv", tt.n); got != tt.expected {
			t.Errorf("GetBackupPath(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}
}

func TestCreateBackup_NoExistingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does_not_exist.csv")

	if err := CreateBackup(missing); err != nil {
		t.Errorf("CreateBackup() with non-existent file returned error: %v, expected nil", err)
	}
	if fileExists(GetBackupPath(missing, 1)) {
		t.Errorf("CreateBackup() created backup for non-existent file")
	}
}

func TestCreateBackup_FirstBackup(t *testing.T) {
	content := "时间,工作类别,工作内容\r\n2024-01-15 10:00:00,会议,\r\n"
	tmpFile := createTempLog(t, content)

	if err := CreateBackup(tmpFile); err != nil {
		t.Fatalf("CreateBackup() returned unexpected error: %v", err)
	}

	backup1 := GetBackupPath(tmpFile, 1)
	if !fileExists(backup1) {
		t.Fatalf("CreateBackup() did not create .bak.1 file")
	}
	if got := readFileContent(t, backup1); got != content {
		t.Errorf("Backup content = %q, expected %q", got, content)
	}
	if got := readFileContent(t, tmpFile); got != content {
		t.Errorf("Original file was modified")
	}
}

func TestCreateBackup_RotatesAndDropsOldest(t *testing.T) {
	tmpFile := createTempLog(t, "current\n")
	for i, content := range []string{"backup 1\n", "backup 2\n", "backup 3 (oldest)\n"} {
		if err := os.WriteFile(GetBackupPath(tmpFile, i+1), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create backup %d: %v", i+1, err)
		}
	}

	if err := CreateBackup(tmpFile); err != nil {
		t.Fatalf("CreateBackup() returned unexpected error: %v", err)
	}

	expected := map[int]string{
		1: "current\n",
		2: "backup 1\n",
		3: "backup 2\n",
	}
	for n, want := range expected {
		if got := readFileContent(t, GetBackupPath(tmpFile, n)); got != want {
			t.Errorf(".bak.%d content = %q, expected %q", n, got, want)
		}
	}
	if fileExists(GetBackupPath(tmpFile, 4)) {
		t.Errorf("CreateBackup() kept more than %d backups", MaxBackupCount)
	}
}

func TestListBackups(t *testing.T) {
	tmpFile := createTempLog(t, "current\n")
	store := NewLogStore(tmpFile)

	if got := store.ListBackups(); len(got) != 0 {
		t.Fatalf("ListBackups() = %v, expected none", got)
	}

	if err := os.WriteFile(GetBackupPath(tmpFile, 1), []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(GetBackupPath(tmpFile, 3), []byte("three"), 0644); err != nil {
		t.Fatal(err)
	}

	backups := store.ListBackups()
	if len(backups) != 2 {
		t.Fatalf("ListBackups() returned %d backups, expected 2", len(backups))
	}
	if backups[0].Number != 1 || backups[1].Number != 3 {
		t.Errorf("ListBackups() numbers = %d, %d, expected 1, 3", backups[0].Number, backups[1].Number)
	}
}

func TestRestoreBackup(t *testing.T) {
	tmpFile := createTempLog(t, "current\n")
	if err := os.WriteFile(GetBackupPath(tmpFile, 2), []byte("older\n"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewLogStore(tmpFile)
	if err := store.RestoreBackup(2); err != nil {
		t.Fatalf("RestoreBackup(2) returned unexpected error: %v", err)
	}

	if got := readFileContent(t, tmpFile); got != "older\n" {
		t.Errorf("log content = %q, expected restored %q", got, "older\n")
	}
	if got := readFileContent(t, GetBackupPath(tmpFile, 1)); got != "current\n" {
		t.Errorf(".bak.1 content = %q, expected pre-restore state %q", got, "current\n")
	}
}

func TestRestoreBackup_FailedSwapKeepsLog(t *testing.T) {
	tmpFile := createTempLog(t, "current\n")
	if err := os.WriteFile(GetBackupPath(tmpFile, 1), []byte("older\n"), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewLogStore(tmpFile)

	orig := renameFile
	renameFile = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { renameFile = orig })

	err := store.RestoreBackup(1)
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("RestoreBackup() error = %v, expected a StorageError", err)
	}

	if got := readFileContent(t, tmpFile); got != "current\n" {
		t.Errorf("log content = %q after a failed restore, expected it unchanged", got)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(tmpFile), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("failed restore left temp files: %v", leftovers)
	}
}

func TestRestoreBackup_Invalid(t *testing.T) {
	store := NewLogStore(createTempLog(t, "current\n"))

	tests := []struct {
		n       int
		wantErr string
	}{
		{0, "invalid backup number"},
		{MaxBackupCount + 1, "invalid backup number"},
		{1, "does not exist"},
	}

	for _, tt := range tests {
		err := store.RestoreBackup(tt.n)
		if err == nil {
			t.Errorf("RestoreBackup(%d) expected error, got nil", tt.n)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("RestoreBackup(%d) error = %q, expected to contain %q", tt.n, err, tt.wantErr)
		}
	}
}

func TestUndoLast_CreatesBackup(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 30, 0, time.Local)
	tmpFile := filepath.Join(t.TempDir(), "worklog.csv")
	store := NewLogStore(tmpFile, WithClock(func() time.Time { return now }))

	if err := store.Append(now, "会议", ""); err != nil {
		t.Fatalf("Append() returned unexpected error: %v", err)
	}
	before := readFileContent(t, tmpFile)

	if _, err := store.UndoLast(); err != nil {
		t.Fatalf("UndoLast() returned unexpected error: %v", err)
	}

	if got := readFileContent(t, GetBackupPath(tmpFile, 1)); got != before {
		t.Errorf(".bak.1 content = %q, expected pre-undo log %q", got, before)
	}
}

func TestUndoLast_BackupsDisabled(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 30, 0, time.Local)
	tmpFile := filepath.Join(t.TempDir(), "worklog.csv")
	store := NewLogStore(tmpFile, WithClock(func() time.Time { return now }), WithBackups(false))

	if err := store.Append(now, "会议", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UndoLast(); err != nil {
		t.Fatal(err)
	}

	if fileExists(GetBackupPath(tmpFile, 1)) {
		t.Errorf("UndoLast() created a backup with backups disabled")
	}
}
