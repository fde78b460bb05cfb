package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/storage"
)

// EntryService records, lists and undoes log entries
type EntryService struct {
	store   *storage.LogStore
	catalog entry.Catalog
	clock   func() time.Time
}

// NewEntryService creates a new EntryService
func NewEntryService(store *storage.LogStore, catalog entry.Catalog) *EntryService {
	if len(catalog) == 0 {
		catalog = entry.DefaultCatalog()
	}
	return &EntryService{
		store:   store,
		catalog: catalog,
		clock:   time.Now,
	}
}

// Catalog returns the categories entries may be recorded under
func (s *EntryService) Catalog() entry.Catalog {
	return s.catalog
}

// LogPath returns the CSV log file
func (s *EntryService) LogPath() string {
	return s.store.Path()
}

// Record validates and appends one entry stamped with the current time.
// Content is only kept for the Other category.
func (s *EntryService) Record(category, content string) (entry.Entry, error) {
	category, content, err := entry.Validate(s.catalog, category, content)
	if err != nil {
		return entry.Entry{}, err
	}

	e := entry.New(s.clock(), category, content)
	if err := s.store.AppendEntry(e); err != nil {
		return entry.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}
	return e, nil
}

// Undo removes the most recently appended entry if it is still within the
// undo window, and returns it.
func (s *EntryService) Undo() (entry.Entry, error) {
	return s.store.UndoLast()
}

// Recent returns the last n entries in append order. n <= 0 returns all.
// A log that does not exist yet lists as empty.
func (s *EntryService) Recent(n int) (*ListResult, error) {
	result, err := s.store.ReadAllWithWarnings()
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	entries := result.Entries
	total := len(entries)
	if n > 0 && n < total {
		entries = entries[total-n:]
	}

	return &ListResult{
		Entries:  entries,
		Warnings: result.Warnings,
		Total:    total,
	}, nil
}

// Health checks the log file for corruption
func (s *EntryService) Health() (storage.Health, error) {
	return s.store.Validate()
}

// Backups lists the available backups, most recent first
func (s *EntryService) Backups() []storage.BackupInfo {
	return s.store.ListBackups()
}

// Restore replaces the log with backup n
func (s *EntryService) Restore(n int) error {
	return s.store.RestoreBackup(n)
}

// DescribeUndoError turns an UndoLast failure into a message for the operator.
func DescribeUndoError(err error) string {
	switch {
	case errors.Is(err, storage.ErrNoSuchLog):
		return "The log file does not exist yet"
	case errors.Is(err, storage.ErrNothingToUndo):
		return "There is no entry to undo"
	case errors.Is(err, storage.ErrUnparseableTimestamp):
		return "Cannot read the time of the last entry"
	case errors.Is(err, storage.ErrWindowExpired):
		var undoErr *storage.UndoError
		if errors.As(err, &undoErr) && undoErr.Age > 0 {
			return fmt.Sprintf("Only entries from the last minute can be undone (last entry is %s old)", undoErr.Age.Round(time.Second))
		}
		return "Only entries from the last minute can be undone"
	case err == nil:
		return ""
	}
	return fmt.Sprintf("Undo failed: %v", err)
}
