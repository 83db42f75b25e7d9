// Package stageerr classifies pipeline failures as recoverable or fatal.
//
// A recoverable error affects one chunk or frame; the caller logs it and moves
// on. A fatal error (bad configuration, missing tool, model that cannot be
// loaded) aborts the run.
package stageerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Recoverable Kind = iota + 1
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type Error struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewRecoverable wraps err as a per-item failure of stage.
func NewRecoverable(stage string, err error) *Error {
	return &Error{Stage: stage, Kind: Recoverable, Err: err}
}

// NewFatal wraps err as a failure that must abort the run.
func NewFatal(stage string, err error) *Error {
	return &Error{Stage: stage, Kind: Fatal, Err: err}
}

// IsRecoverable reports whether err carries a recoverable stage error.
// Plain errors are not recoverable.
func IsRecoverable(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == Recoverable
}

// IsFatal reports whether err must abort the run. Any error that is not
// explicitly recoverable counts as fatal.
func IsFatal(err error) bool {
	return err != nil && !IsRecoverable(err)
}
