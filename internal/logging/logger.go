package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileName is the diagnostic log file inside the logs directory.
const FileName = "worklog.log"

// Printer is the logging surface the rest of the application depends on.
type Printer interface {
	Printf(format string, args ...any)
}

// Nop discards everything.
var Nop Printer = nopPrinter{}

type nopPrinter struct{}

func (nopPrinter) Printf(string, ...any) {}

// Logger appends timestamped lines to logs/worklog.log so server and storage
// failures can be inspected after the desktop UI has closed.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// New creates (or reuses) the log file in logDir.
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f, now: time.Now}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}

// Printf writes a single timestamped line to the log file.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	timestamp := l.now().Format(time.RFC3339)
	_, _ = fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
}

// Slog adapts a slog.Logger; every line is logged at info level.
func Slog(logger *slog.Logger) Printer {
	if logger == nil {
		return Nop
	}
	return slogPrinter{logger: logger}
}

type slogPrinter struct {
	logger *slog.Logger
}

func (p slogPrinter) Printf(format string, args ...any) {
	p.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Tee fans every line out to all non-nil printers.
func Tee(printers ...Printer) Printer {
	var out teePrinter
	for _, p := range printers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

type teePrinter []Printer

func (t teePrinter) Printf(format string, args ...any) {
	for _, p := range t {
		p.Printf(format, args...)
	}
}

// OrNop returns p, or Nop if p is nil.
func OrNop(p Printer) Printer {
	if p == nil {
		return Nop
	}
	return p
}
