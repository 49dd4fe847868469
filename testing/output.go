package testing

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Writer is where output is written.
	Writer io.Writer

	// Verbose shows passing runs as well as failures.
	Verbose bool

	// UseColor enables ANSI color codes.
	UseColor bool
}

// Output handles formatting and printing test results.
type Output struct {
	w        io.Writer
	verbose  bool
	useColor bool
}

// NewOutput creates a new Output formatter.
func NewOutput(cfg OutputConfig) *Output {
	return &Output{
		w:        cfg.Writer,
		verbose:  cfg.Verbose,
		useColor: cfg.UseColor,
	}
}

// StartTest prints the "=== RUN" line for a test.
func (o *Output) StartTest(name string) {
	fmt.Fprintf(o.w, "=== RUN   %s\n", name)
}

// EndTest prints the result line for a test (--- PASS, --- FAIL, etc.).
func (o *Output) EndTest(result *TestResult) {
	var statusStr string
	switch result.Status {
	case StatusPassed:
		statusStr = o.colorize(color.FgGreen, "--- PASS:")
	case StatusFailed:
		statusStr = o.colorize(color.FgRed, "--- FAIL:")
	case StatusSkipped:
		statusStr = o.colorize(color.FgYellow, "--- SKIP:")
	case StatusError:
		statusStr = o.colorize(color.FgRed, "--- ERROR:")
	default:
		statusStr = fmt.Sprintf("--- %s:", result.Status)
	}

	fmt.Fprintf(o.w, "%s %s (%.3fs, %d steps)\n", statusStr, result.Name, result.Duration.Seconds(), result.Steps)

	if result.Status == StatusError && result.Error != nil {
		for _, line := range strings.Split(strings.TrimRight(result.Error.Error(), "\n"), "\n") {
			fmt.Fprintf(o.w, "    %s\n", line)
		}
	}
	if result.Mismatch != nil {
		o.printMismatch(result.Mismatch)
	}
}

func (o *Output) printMismatch(m *Mismatch) {
	fmt.Fprintf(o.w, "    output differs at byte %d\n", m.Offset)
	fmt.Fprintf(o.w, "        %s:  %s\n", o.colorize(color.FgRed, "got"), m.Got)
	fmt.Fprintf(o.w, "        %s: %s\n", o.colorize(color.FgGreen, "want"), m.Want)
}

// CompileError prints a compilation error for a test file.
func (o *Output) CompileError(filename string, err error) {
	fmt.Fprintf(o.w, "%s %s\n", o.colorize(color.FgRed, "COMPILE ERROR:"), filename)
	fmt.Fprintf(o.w, "    %s\n", err.Error())
}

// Summary prints the final summary line.
func (o *Output) Summary(summary *Summary) {
	fmt.Fprintln(o.w)

	if summary.Success() {
		fmt.Fprintln(o.w, o.colorize(color.FgGreen, "PASS"))
	} else {
		fmt.Fprintln(o.w, o.colorize(color.FgRed, "FAIL"))
	}

	parts := []string{}
	if summary.Passed > 0 {
		parts = append(parts, o.colorize(color.FgGreen, fmt.Sprintf("%d passed", summary.Passed)))
	}
	if summary.Failed > 0 {
		parts = append(parts, o.colorize(color.FgRed, fmt.Sprintf("%d failed", summary.Failed)))
	}
	if summary.Skipped > 0 {
		parts = append(parts, o.colorize(color.FgYellow, fmt.Sprintf("%d skipped", summary.Skipped)))
	}
	if summary.Errors > 0 {
		parts = append(parts, o.colorize(color.FgRed, fmt.Sprintf("%d errors", summary.Errors)))
	}

	if len(parts) > 0 {
		fmt.Fprintf(o.w, "%s (%.3fs)\n", strings.Join(parts, ", "), summary.Duration.Seconds())
	}
}

// colorize applies color if enabled.
func (o *Output) colorize(attr color.Attribute, s string) string {
	if !o.useColor {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// PrintResults prints all results in Go test style. Passing runs are only
// listed in verbose mode.
func (o *Output) PrintResults(summary *Summary) {
	for _, file := range summary.Files {
		if file.CompileErr != nil {
			o.CompileError(file.Filename, file.CompileErr)
		}
	}

	for _, file := range summary.Files {
		for _, test := range file.Tests {
			if !o.verbose && test.Status == StatusPassed {
				continue
			}
			o.StartTest(test.Name)
			o.EndTest(test)
		}
	}

	o.Summary(summary)
}
