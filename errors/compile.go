package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// CompileError represents a compilation error with rich context.
type CompileError struct {
	Code       ErrorCode
	Message    string
	Filename   string
	Line       int
	Column     int
	SourceLine string
	Note       string
	Err        error // sentinel the error unwraps to
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Message)
	if e.Filename != "" || e.Line > 0 {
		b.WriteString("\n\nlocation: ")
		if e.Filename != "" {
			b.WriteString(e.Filename)
			b.WriteString(":")
		}
		fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	}
	return b.String()
}

// Unwrap returns the sentinel describing the kind of error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     "error",
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Note:     e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	return fe
}

// Combine merges compile errors into a single error. It returns nil for no
// errors and the error itself when there is exactly one.
func Combine(errs []*CompileError) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	var result *multierror.Error
	for _, err := range errs {
		result = multierror.Append(result, err)
	}
	result.ErrorFormat = formatCombined
	return result
}

func formatCombined(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}

// Unpack returns the individual errors held by an error produced by
// Combine, or a single element slice for any other non-nil error.
func Unpack(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}
