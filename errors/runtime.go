package errors

import (
	"fmt"
	"strings"
)

// RuntimeError is returned when execution of a compiled program fails.
type RuntimeError struct {
	Code     ErrorCode
	Message  string
	IP       int // index of the failing instruction
	Pointer  int // data pointer at the time of failure
	Location SourceLocation
	Err      error // sentinel or underlying I/O error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(e.Message)
	fmt.Fprintf(&b, " (ip %d, pointer %d)", e.IP, e.Pointer)
	if !e.Location.IsZero() {
		b.WriteString("\n\nlocation: ")
		b.WriteString(e.Location.String())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     "runtime error",
		Message:  e.Message,
		Filename: e.Location.Filename,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
		Note:     fmt.Sprintf("instruction %d, data pointer %d", e.IP, e.Pointer),
	}
	if e.Location.Source != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	return fe
}
