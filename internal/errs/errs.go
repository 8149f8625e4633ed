// Package errs defines the structured error taxonomy every stage of the
// engine raises instead of ad hoc error strings.
package errs

import (
	"fmt"
	"time"
)

// Kind identifies which taxonomy bucket an error belongs to, per the
// error handling design: each kind carries its own propagation policy.
type Kind string

const (
	KindConfig       Kind = "ConfigError"
	KindDownload     Kind = "DownloadError"
	KindFileTooLarge Kind = "FileTooLarge"
	KindParse        Kind = "ParseError"
	KindSchema       Kind = "SchemaError"
	KindLoad         Kind = "LoadError"
	KindValidation   Kind = "ValidationError"
	KindCleanup      Kind = "CleanupError"
	KindCancel       Kind = "CancelError"
)

// StageError is the single structured error type stages raise. It
// carries (stage, date, kind, cause) so the sequencer and logger can
// report a uniform shape regardless of origin.
type StageError struct {
	Kind    Kind
	Stage   string
	Date    string
	Message string
	Cause   error
	At      time.Time
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s[stage=%s date=%s]: %s: %v", e.Kind, e.Stage, e.Date, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s[stage=%s date=%s]: %s", e.Kind, e.Stage, e.Date, e.Message)
}

func (e *StageError) Unwrap() error { return e.Cause }

// New constructs a StageError with a fixed kind; stage/date are filled
// in by the caller since a package-level constructor can't know them.
func New(kind Kind, stage, date, message string, cause error) *StageError {
	return &StageError{
		Kind:    kind,
		Stage:   stage,
		Date:    date,
		Message: message,
		Cause:   cause,
		At:      time.Now(),
	}
}

func Config(stage, date, message string, cause error) *StageError {
	return New(KindConfig, stage, date, message, cause)
}

func Download(stage, date, message string, cause error) *StageError {
	return New(KindDownload, stage, date, message, cause)
}

func FileTooLarge(stage, date, message string, cause error) *StageError {
	return New(KindFileTooLarge, stage, date, message, cause)
}

func Parse(stage, date, message string, cause error) *StageError {
	return New(KindParse, stage, date, message, cause)
}

func Schema(stage, date, message string, cause error) *StageError {
	return New(KindSchema, stage, date, message, cause)
}

func Load(stage, date, message string, cause error) *StageError {
	return New(KindLoad, stage, date, message, cause)
}

func Validation(stage, date, message string, cause error) *StageError {
	return New(KindValidation, stage, date, message, cause)
}

func Cleanup(stage, date, message string, cause error) *StageError {
	return New(KindCleanup, stage, date, message, cause)
}

func Cancel(stage, date, message string, cause error) *StageError {
	return New(KindCancel, stage, date, message, cause)
}

// Is reports whether err is a *StageError of the given kind, walking
// the unwrap chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		if se, ok := err.(*StageError); ok {
			if se.Kind == kind {
				return true
			}
			err = se.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ExitCode maps a terminal error to the CLI exit code contract: 2 for
// config-time failures, 3 for anything else unexpected. Day failures
// that already occurred are reported via exit code 1 by the caller,
// not derived here.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if Is(err, KindConfig) {
		return 2
	}
	return 3
}
