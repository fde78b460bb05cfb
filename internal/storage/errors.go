package storage

import (
	"errors"
	"fmt"
	"time"
)

// Undo outcome kinds. They are expected, reportable results rather than defects;
// match them with errors.Is on the error returned by UndoLast.
var (
	ErrNoSuchLog            = errors.New("log file does not exist")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrUnparseableTimestamp = errors.New("cannot parse timestamp of the last entry")
	ErrWindowExpired        = errors.New("undo window expired")
)

// StorageError reports an underlying I/O failure. The log is left in its
// last known good state whenever one is returned.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UndoError carries one of the undo outcome kinds plus the row it concerned.
type UndoError struct {
	Kind      error
	Timestamp string        // timestamp of the last row, when one was inspected
	Age       time.Duration // now minus the row timestamp, for ErrWindowExpired
}

func (e *UndoError) Error() string {
	switch e.Kind {
	case ErrUnparseableTimestamp:
		return fmt.Sprintf("%v: %q", e.Kind, e.Timestamp)
	case ErrWindowExpired:
		return fmt.Sprintf("%v: last entry %s is %s old", e.Kind, e.Timestamp, e.Age.Truncate(time.Second))
	}
	return e.Kind.Error()
}

func (e *UndoError) Unwrap() error {
	return e.Kind
}

func storageErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Path: path, Err: err}
}
