package cmd

import (
	"io"
	"os"
	"sync"

	"github.com/xolan/worklog/internal/config"
	"github.com/xolan/worklog/internal/logging"
	"github.com/xolan/worklog/internal/service"
)

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
	Exit       func(code int)
	ConfigPath func() (string, error)
	Services   func() (*service.Services, error)
	Logger     func() logging.Printer
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
		Exit:       os.Exit,
		ConfigPath: config.GetConfigPath,
		Services: func() (*service.Services, error) {
			return service.NewServices(openLogFile())
		},
		Logger: openLogFile,
	}
}

var (
	logFileOnce sync.Once
	logFile     logging.Printer = logging.Nop
)

// openLogFile opens the diagnostic log under the config directory once per
// process. Without it, logging is a no-op.
func openLogFile() logging.Printer {
	logFileOnce.Do(func() {
		dir, err := config.GetLogsDir()
		if err != nil {
			return
		}
		if l, err := logging.New(dir); err == nil {
			logFile = l
		}
	})
	return logFile
}

// deps is the global dependencies instance used by commands.
// In production, this is DefaultDeps(). Tests can replace it.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}

// logger returns the diagnostic logger, or a no-op one when deps has none.
func logger() logging.Printer {
	if deps.Logger == nil {
		return logging.Nop
	}
	return logging.OrNop(deps.Logger())
}
