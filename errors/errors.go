// Package errors defines the error taxonomy of the tape toolchain: compile
// errors carrying source locations, runtime errors carrying machine state,
// and the sentinels both unwrap to.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels matched with errors.Is.
var (
	ErrUnmatchedOpen    = stderrors.New("unmatched '['")
	ErrUnmatchedClose   = stderrors.New("unmatched ']'")
	ErrInfiniteLoop     = stderrors.New("loop never terminates")
	ErrInputUnavailable = stderrors.New("input is not implemented")
	ErrEndOfInput       = stderrors.New("end of input")
	ErrNonTerminating   = stderrors.New("replicated loop never reaches zero")
	ErrHalted           = stderrors.New("execution halted")
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
