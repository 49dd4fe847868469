package testing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/deepnoodle-ai/tape"
	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/vm"
)

const (
	// SourceExt is the extension of test programs.
	SourceExt = ".b"
	// OutputExt is the extension of the golden output file.
	OutputExt = ".out"
	// InputExt is the extension of the optional input file.
	InputExt = ".in"

	// DefaultStepLimit bounds each run so a broken program fails instead of
	// hanging the suite.
	DefaultStepLimit = 100_000_000

	// context shown on each side of a mismatch
	mismatchContext = 16
)

// Modes run for every test case, in order.
var Modes = []string{"naive", "optimized"}

// Config holds configuration for running tests.
type Config struct {
	// Patterns specifies files or directories to search for tests.
	// Default is current directory.
	Patterns []string

	// RunPattern filters runs by name regex, e.g. "hello/optimized".
	RunPattern string

	// Verbose prints passing runs too.
	Verbose bool

	// EOFPolicy is handed to every run.
	EOFPolicy vm.EOFPolicy

	// StepLimit halts a run after this many instructions. Zero means
	// DefaultStepLimit.
	StepLimit int64
}

// DiscoverTestFiles finds all programs with a golden output file matching
// the given patterns. If no patterns are provided, searches the current
// directory. A trailing "..." searches recursively.
func DiscoverTestFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if isTestFile(path) && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}

	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		recursive := false
		searchDir := pattern
		if strings.HasSuffix(pattern, "...") {
			recursive = true
			searchDir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if searchDir == "" {
				searchDir = "."
			}
		}

		info, err := os.Stat(searchDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", searchDir)
			}
			return nil, err
		}

		switch {
		case !info.IsDir():
			add(pattern)
		case recursive:
			err = filepath.WalkDir(searchDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		default:
			entries, err := os.ReadDir(searchDir)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if !e.IsDir() {
					add(filepath.Join(searchDir, e.Name()))
				}
			}
		}
	}

	return files, nil
}

// isTestFile returns true for a program that has a golden output file.
func isTestFile(path string) bool {
	if filepath.Ext(path) != SourceExt {
		return false
	}
	info, err := os.Stat(siblingPath(path, OutputExt))
	return err == nil && !info.IsDir()
}

func siblingPath(path, ext string) string {
	return strings.TrimSuffix(path, SourceExt) + ext
}

// CaseName returns the name used for a program in run names.
func CaseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), SourceExt)
}

// Run executes tests according to the given configuration.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	files, err := DiscoverTestFiles(cfg.Patterns)
	if err != nil {
		return nil, err
	}

	var runRe *regexp.Regexp
	if cfg.RunPattern != "" {
		runRe, err = regexp.Compile(cfg.RunPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid run pattern: %w", err)
		}
	}

	summary := &Summary{}
	start := time.Now()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, runTestFile(ctx, cfg, file, runRe))
	}

	summary.Duration = time.Since(start)
	summary.ComputeTotals()

	return summary, nil
}

type testCase struct {
	name   string
	input  []byte
	want   []byte
	source string
}

// runTestFile runs one program in every mode.
func runTestFile(ctx context.Context, cfg *Config, filename string, runRe *regexp.Regexp) *FileResult {
	result := &FileResult{Filename: filename}

	tc, err := loadCase(filename)
	if err != nil {
		result.CompileErr = err
		return result
	}

	for _, mode := range Modes {
		name := tc.name + "/" + mode
		if runRe != nil && !runRe.MatchString(name) {
			continue
		}
		program, err := tape.Compile(tc.source,
			tape.WithFilename(filename),
			tape.WithOptimize(mode == "optimized"),
		)
		if err != nil {
			result.CompileErr = err
			return result
		}
		result.Tests = append(result.Tests, runSingleTest(ctx, cfg, program, tc, name))
	}

	return result
}

func loadCase(filename string) (*testCase, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	want, err := os.ReadFile(siblingPath(filename, OutputExt))
	if err != nil {
		return nil, err
	}
	input, err := os.ReadFile(siblingPath(filename, InputExt))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &testCase{
		name:   CaseName(filename),
		input:  input,
		want:   want,
		source: string(source),
	}, nil
}

// runSingleTest executes one compiled program and compares its output.
func runSingleTest(ctx context.Context, cfg *Config, program *bytecode.Program, tc *testCase, name string) *TestResult {
	result := &TestResult{Name: name}

	limit := cfg.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}

	var out bytes.Buffer
	start := time.Now()
	machine, err := tape.Run(ctx, program,
		tape.WithInput(bytes.NewReader(tc.input)),
		tape.WithOutput(&out),
		tape.WithEOFPolicy(cfg.EOFPolicy),
		tape.WithObserver(&vm.StepCounter{Limit: limit}),
	)
	result.Duration = time.Since(start)
	if machine != nil {
		result.Steps = machine.Steps()
	}

	if err != nil {
		result.Status = StatusError
		result.Error = err
		return result
	}

	if m := compareOutput(out.Bytes(), tc.want); m != nil {
		result.Status = StatusFailed
		result.Mismatch = m
		return result
	}
	result.Status = StatusPassed
	return result
}

// compareOutput returns nil when got equals want.
func compareOutput(got, want []byte) *Mismatch {
	if bytes.Equal(got, want) {
		return nil
	}
	offset := 0
	for offset < len(got) && offset < len(want) && got[offset] == want[offset] {
		offset++
	}
	return &Mismatch{
		Offset: offset,
		Got:    excerpt(got, offset),
		Want:   excerpt(want, offset),
	}
}

func excerpt(b []byte, offset int) string {
	lo := max(offset-mismatchContext, 0)
	hi := min(offset+mismatchContext, len(b))
	if lo > len(b) {
		lo = len(b)
	}
	return fmt.Sprintf("%q", b[lo:hi])
}
