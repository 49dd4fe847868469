// Package testing runs golden-output tests for tape programs.
//
// A test case is a program "name.b" next to a file "name.out" holding the
// exact bytes the program must write. An optional "name.in" supplies its
// input. Every case runs twice, once naive and once optimized, and both runs
// must produce the expected output.
package testing

import "time"

// Status represents the outcome of a test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusError
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASS"
	case StatusFailed:
		return "FAIL"
	case StatusSkipped:
		return "SKIP"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Mismatch describes where a run's output diverged from the golden file.
type Mismatch struct {
	Offset int    // first differing byte
	Got    string // output around Offset
	Want   string // expected output around Offset
}

// TestResult holds the outcome of a single run of one case.
type TestResult struct {
	Name     string        // case name and mode, e.g. "hello/optimized"
	Status   Status        // Pass, fail, skip, or error
	Duration time.Duration // How long the run took
	Steps    int64         // Instructions dispatched
	Mismatch *Mismatch     // Set when Status == StatusFailed
	Error    error         // Error if Status == StatusError
}

// FileResult holds the results of all runs of a single program.
type FileResult struct {
	Filename   string        // Path to the program
	Tests      []*TestResult // Results for each mode
	CompileErr error         // Error if the program failed to compile
}

func (f *FileResult) count(status Status) int {
	count := 0
	for _, t := range f.Tests {
		if t.Status == status {
			count++
		}
	}
	return count
}

// Passed returns the number of passed runs in this file.
func (f *FileResult) Passed() int { return f.count(StatusPassed) }

// Failed returns the number of failed runs in this file.
func (f *FileResult) Failed() int { return f.count(StatusFailed) }

// Skipped returns the number of skipped runs in this file.
func (f *FileResult) Skipped() int { return f.count(StatusSkipped) }

// Errors returns the number of errored runs in this file.
func (f *FileResult) Errors() int { return f.count(StatusError) }

// Summary aggregates results across all test files.
type Summary struct {
	Files    []*FileResult // Results for each program
	Passed   int           // Total passed runs
	Failed   int           // Total failed runs
	Skipped  int           // Total skipped runs
	Errors   int           // Total errored runs
	Duration time.Duration // Total time for all runs
}

// TotalTests returns the total number of runs.
func (s *Summary) TotalTests() int {
	return s.Passed + s.Failed + s.Skipped + s.Errors
}

// Success returns true if nothing failed, errored or failed to compile.
func (s *Summary) Success() bool {
	for _, f := range s.Files {
		if f.CompileErr != nil {
			return false
		}
	}
	return s.Failed == 0 && s.Errors == 0
}

// ComputeTotals recalculates the aggregate counts from all file results.
func (s *Summary) ComputeTotals() {
	s.Passed = 0
	s.Failed = 0
	s.Skipped = 0
	s.Errors = 0
	for _, f := range s.Files {
		s.Passed += f.Passed()
		s.Failed += f.Failed()
		s.Skipped += f.Skipped()
		s.Errors += f.Errors()
	}
}
