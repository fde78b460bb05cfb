package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/osutil"
)

const (
	// LogDirName is the directory under ~/Documents holding the log file
	LogDirName = "WorkLog"
	// LogFile is the name of the CSV log file
	LogFile = "worklog.csv"
	// DefaultUndoWindow is how long after its timestamp the last entry may be undone
	DefaultUndoWindow = 60 * time.Second
	// LockSuffix names the sidecar file other worklog processes lock on
	LockSuffix = ".lock"
)

// renameFile swaps a finished temp file over the log. Tests replace it to
// simulate a failing swap.
var renameFile = os.Rename

// Header is the first row of every log file: timestamp, category, content.
var Header = []string{"时间", "工作类别", "工作内容"}

// ParseWarning represents a warning about a corrupted or malformed row
type ParseWarning struct {
	LineNumber int    // Line number in the file (1-indexed)
	Content    string // Raw content of the corrupted row
	Error      string // Description of the parsing error
}

// ReadResult contains the results of reading the log,
// including both well-formed entries and warnings about skipped rows.
type ReadResult struct {
	Entries  []entry.Entry
	Warnings []ParseWarning
}

// LogStore owns one append-only CSV log file and the lock guarding it.
// Every method that touches the file holds the lock for its whole duration,
// so appends and undos from different front ends never interleave.
//
// The lock has two halves: mu orders the goroutines of this process, and an
// advisory lock on <log>.lock orders this process against other worklog
// processes (a `worklog serve` next to the desktop UI, a one-off
// `worklog log`).
type LogStore struct {
	path       string
	clock      func() time.Time
	undoWindow time.Duration
	backups    bool

	mu    sync.Mutex
	flock *flock.Flock
}

// Option customizes a LogStore.
type Option func(*LogStore)

// WithClock overrides the wall clock used to evaluate the undo window.
func WithClock(clock func() time.Time) Option {
	return func(s *LogStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithUndoWindow overrides DefaultUndoWindow.
func WithUndoWindow(d time.Duration) Option {
	return func(s *LogStore) {
		if d > 0 {
			s.undoWindow = d
		}
	}
}

// WithBackups toggles the rotating backup taken before every rewrite.
func WithBackups(enabled bool) Option {
	return func(s *LogStore) {
		s.backups = enabled
	}
}

// NewLogStore returns a store for the log file at path. The file is not touched
// until the first operation.
func NewLogStore(path string, opts ...Option) *LogStore {
	s := &LogStore{
		path:       path,
		clock:      time.Now,
		undoWindow: DefaultUndoWindow,
		backups:    true,
		flock:      flock.New(path + LockSuffix),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Path returns the file backing this store.
func (s *LogStore) Path() string {
	return s.path
}

// lock takes the process mutex and then the file lock. The returned func
// releases both.
func (s *LogStore) lock() (func(), error) {
	s.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		s.mu.Unlock()
		return nil, storageErr("mkdir", filepath.Dir(s.path), err)
	}
	if err := s.flock.Lock(); err != nil {
		s.mu.Unlock()
		return nil, storageErr("lock", s.flock.Path(), err)
	}
	return func() {
		_ = s.flock.Unlock()
		s.mu.Unlock()
	}, nil
}

// UndoWindow returns the grace period applied by UndoLast.
func (s *LogStore) UndoWindow() time.Duration {
	return s.undoWindow
}

// GetDefaultLogPath returns ~/Documents/WorkLog/worklog.csv,
// creating the directory if it doesn't exist.
func GetDefaultLogPath() (string, error) {
	home, err := osutil.Provider.UserHomeDir()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(home, "Documents", LogDirName)
	if err := osutil.Provider.MkdirAll(logDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(logDir, LogFile), nil
}

// EnsureInitialized creates the log with its header row if it does not exist yet.
// It is idempotent and safe to call before every mutation.
func (s *LogStore) EnsureInitialized() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.ensureInitializedLocked()
}

// Append writes one row at the end of the log. The existence check, the header
// creation and the row write happen under one lock acquisition.
func (s *LogStore) Append(ts time.Time, category, content string) error {
	return s.AppendEntry(entry.New(ts, category, content))
}

// AppendEntry is Append for an already formatted entry.
func (s *LogStore) AppendEntry(e entry.Entry) error {
	var buf bytes.Buffer
	if err := writeRecords(&buf, [][]string{e.Record()}); err != nil {
		return storageErr("encode", s.path, err)
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.ensureInitializedLocked(); err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return storageErr("open", s.path, err)
	}

	// One Write call per row keeps a row from ever being split across writers.
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return storageErr("append", s.path, err)
	}
	return storageErr("close", s.path, file.Close())
}

// UndoLast removes the most recently appended row if its timestamp is within the
// undo window of now. The read, the decision and the rewrite form one critical
// section. The removed entry is returned on success.
//
// Undo always targets the last appended row, which is not necessarily the
// chronologically latest one when two front ends append concurrently.
func (s *LogStore) UndoLast() (entry.Entry, error) {
	unlock, err := s.lock()
	if err != nil {
		return entry.Entry{}, err
	}
	defer unlock()

	records, _, err := s.readRecordsLocked()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry.Entry{}, &UndoError{Kind: ErrNoSuchLog}
		}
		return entry.Entry{}, err
	}

	if len(records) <= 1 {
		return entry.Entry{}, &UndoError{Kind: ErrNothingToUndo}
	}

	last := records[len(records)-1]
	ts, err := entry.ParseTimestamp(last.fields[0])
	if err != nil {
		return entry.Entry{}, &UndoError{Kind: ErrUnparseableTimestamp, Timestamp: last.fields[0]}
	}

	age := s.clock().Sub(ts)
	if age > s.undoWindow {
		return entry.Entry{}, &UndoError{Kind: ErrWindowExpired, Timestamp: last.fields[0], Age: age}
	}

	if s.backups {
		if err := CreateBackup(s.path); err != nil {
			return entry.Entry{}, storageErr("backup", s.path, err)
		}
	}

	if err := s.rewriteLocked(records[:len(records)-1]); err != nil {
		return entry.Entry{}, err
	}

	return entryFromRecord(last), nil
}

// ReadAll returns a copy of every well-formed data row in append order.
// A missing log reads as empty.
func (s *LogStore) ReadAll() ([]entry.Entry, error) {
	result, err := s.ReadAllWithWarnings()
	return result.Entries, err
}

// ReadAllWithWarnings is ReadAll plus a warning for every skipped row.
func (s *LogStore) ReadAllWithWarnings() (ReadResult, error) {
	result := ReadResult{
		Entries:  []entry.Entry{},
		Warnings: []ParseWarning{},
	}

	unlock, err := s.lock()
	if err != nil {
		return result, err
	}
	records, warnings, err := s.readRecordsLocked()
	unlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return result, err
	}

	result.Warnings = append(result.Warnings, warnings...)
	for i, r := range records {
		if i == 0 {
			continue
		}
		if r.len() != len(Header) {
			result.Warnings = append(result.Warnings, fieldCountWarning(r))
			continue
		}
		result.Entries = append(result.Entries, entryFromRecord(r))
	}

	return result, nil
}

// Health contains information about the health status of the log file.
type Health struct {
	Exists           bool
	HeaderOK         bool
	TotalRows        int // data rows, header excluded
	ValidEntries     int
	CorruptedEntries int
	Warnings         []ParseWarning
}

// Validate analyzes the log file and returns health status information.
func (s *LogStore) Validate() (Health, error) {
	health := Health{Warnings: []ParseWarning{}}

	unlock, err := s.lock()
	if err != nil {
		return health, err
	}
	records, warnings, err := s.readRecordsLocked()
	unlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return health, nil
		}
		return health, err
	}

	health.Exists = true
	health.Warnings = append(health.Warnings, warnings...)
	if len(records) > 0 {
		health.HeaderOK = equalFields(records[0].fields, Header)
		health.TotalRows = len(records) - 1
	}
	for _, r := range records[min(1, len(records)):] {
		if r.len() == len(Header) {
			health.ValidEntries++
			continue
		}
		health.Warnings = append(health.Warnings, fieldCountWarning(r))
	}
	health.CorruptedEntries = len(health.Warnings)

	return health, nil
}

// ensureInitializedLocked must be called with s.mu held.
func (s *LogStore) ensureInitializedLocked() error {
	info, err := os.Stat(s.path)
	if err == nil {
		if info.Size() > 0 {
			return nil
		}
		// An empty file has no header yet; treat it as fresh.
		return s.rewriteLocked(nil)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return storageErr("stat", s.path, err)
	}

	return s.rewriteLocked(nil)
}

// record is one CSV row together with the line it started on.
type record struct {
	fields []string
	line   int
}

func (r record) len() int { return len(r.fields) }

// readRecordsLocked reads every row of the log, header included. Rows the CSV
// reader rejects outright are reported as warnings and skipped. The returned
// error wraps fs.ErrNotExist when the log does not exist.
func (s *LogStore) readRecordsLocked() ([]record, []ParseWarning, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		return nil, nil, storageErr("open", s.path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(transform.NewReader(file, unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []record
	var warnings []ParseWarning
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				warnings = append(warnings, ParseWarning{
					LineNumber: parseErr.StartLine,
					Content:    strings.Join(fields, ","),
					Error:      parseErr.Err.Error(),
				})
				continue
			}
			return nil, nil, storageErr("read", s.path, err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record{fields: fields, line: line})
	}

	return records, warnings, nil
}

// rewriteLocked replaces the log with the header followed by records.
func (s *LogStore) rewriteLocked(records []record) error {
	rows := [][]string{Header}
	if len(records) > 0 {
		rows = rows[:0]
		for _, r := range records {
			rows = append(rows, r.fields)
		}
	}

	var buf bytes.Buffer
	bom := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
	if err := writeRecords(bom, rows); err != nil {
		return storageErr("encode", s.path, err)
	}
	if err := bom.Close(); err != nil {
		return storageErr("encode", s.path, err)
	}
	return s.replaceLocked(buf.Bytes())
}

// replaceLocked swaps data in as the whole log. It is written to a temporary
// file in the same directory, synced and renamed over the log, so a failure
// never leaves a partially written file. The log keeps its permissions; a new
// log gets 0644.
func (s *LogStore) replaceLocked(data []byte) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storageErr("create temp", s.path, err)
	}
	tmpPath := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return storageErr(op, s.path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return storageErr("close", s.path, err)
	}
	if err := renameFile(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return storageErr("rename", s.path, err)
	}
	return nil
}

// writeRecords encodes rows the way the log has always been written:
// comma separated, CRLF line endings.
func writeRecords(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func fieldCountWarning(r record) ParseWarning {
	return ParseWarning{
		LineNumber: r.line,
		Content:    strings.Join(r.fields, ","),
		Error:      fmt.Sprintf("expected %d fields, got %d", len(Header), r.len()),
	}
}

func entryFromRecord(r record) entry.Entry {
	var e entry.Entry
	if len(r.fields) > 0 {
		e.Timestamp = r.fields[0]
	}
	if len(r.fields) > 1 {
		e.Category = r.fields[1]
	}
	if len(r.fields) > 2 {
		e.Content = r.fields[2]
	}
	return e
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
