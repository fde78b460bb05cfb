package cmd

import (
	"strings"
	"testing"
	"time"
)

func TestRestoreFromBackup_NoBackups(t *testing.T) {
	env := newTestEnv(t)

	restoreFromBackup(nil)

	env.assertExit(t, 1)
	if !strings.Contains(env.stdout.String(), "No backups available") {
		t.Errorf("expected no-backups message, got: %s", env.stdout.String())
	}
}

func TestRestoreFromBackup_AfterUndo(t *testing.T) {
	env := newTestEnv(t)
	env.append(t, time.Now().Add(-time.Hour), "会议", "")
	env.append(t, time.Now(), "打印机维护", "")

	undoLast()
	env.assertExit(t, 0)
	if entries, _ := env.store().ReadAll(); len(entries) != 1 {
		t.Fatalf("expected 1 entry after undo, got %d", len(entries))
	}
	env.stdout.Reset()

	restoreFromBackup(nil)

	env.assertExit(t, 0)
	output := env.stdout.String()
	if !strings.Contains(output, "1: ") || !strings.Contains(output, "(most recent)") {
		t.Errorf("expected the backup listing, got: %s", output)
	}
	if !strings.Contains(output, "Successfully restored from backup 1") {
		t.Errorf("expected success message, got: %s", output)
	}
	if entries, _ := env.store().ReadAll(); len(entries) != 2 {
		t.Errorf("expected 2 entries after restore, got %d", len(entries))
	}
}

func TestRestoreFromBackup_InvalidArgs(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr string
	}{
		{"not a number", "abc", "Invalid backup number 'abc'"},
		{"zero", "0", "must be between 1 and 3"},
		{"too large", "4", "must be between 1 and 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			restoreFromBackup([]string{tt.arg})

			env.assertExit(t, 1)
			if !strings.Contains(env.stderr.String(), tt.wantErr) {
				t.Errorf("expected %q, got: %s", tt.wantErr, env.stderr.String())
			}
		})
	}
}

func TestRestoreFromBackup_MissingNumber(t *testing.T) {
	env := newTestEnv(t)
	env.append(t, time.Now(), "会议", "")
	undoLast()
	env.assertExit(t, 0)

	restoreFromBackup([]string{"2"})

	env.assertExit(t, 1)
	if !strings.Contains(env.stderr.String(), "Backup 2 does not exist") {
		t.Errorf("expected missing-backup error, got: %s", env.stderr.String())
	}
}
