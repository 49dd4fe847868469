package testing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	stdt "testing"
	"time"

	"github.com/deepnoodle-ai/tape/errors"
	"github.com/deepnoodle-ai/tape/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCase(t *stdt.T, dir, name, source, want string, input ...string) string {
	t.Helper()
	path := filepath.Join(dir, name+SourceExt)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+OutputExt), []byte(want), 0o644))
	if len(input) > 0 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+InputExt), []byte(input[0]), 0o644))
	}
	return path
}

func TestStatus_String(t *stdt.T) {
	assert.Equal(t, "PASS", StatusPassed.String())
	assert.Equal(t, "FAIL", StatusFailed.String())
	assert.Equal(t, "SKIP", StatusSkipped.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "UNKNOWN", Status(99).String())
}

func TestRunExamples(t *stdt.T) {
	summary, err := Run(context.Background(), &Config{Patterns: []string{"../examples"}})
	require.NoError(t, err)
	require.True(t, summary.Success())
	require.Len(t, summary.Files, 3)
	assert.Equal(t, 6, summary.Passed)
	assert.Equal(t, 6, summary.TotalTests())

	for _, f := range summary.Files {
		require.Len(t, f.Tests, 2)
		naive, optimized := f.Tests[0], f.Tests[1]
		assert.Equal(t, CaseName(f.Filename)+"/naive", naive.Name)
		assert.Equal(t, CaseName(f.Filename)+"/optimized", optimized.Name)
		assert.GreaterOrEqual(t, naive.Steps, optimized.Steps, f.Filename)
		if CaseName(f.Filename) == "hello" {
			assert.Greater(t, naive.Steps, optimized.Steps)
		}
	}
}

func TestDiscoverTestFiles(t *stdt.T) {
	dir := t.TempDir()
	a := writeCase(t, dir, "a", "+", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "no_golden.b"), []byte("+"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.out"), []byte(""), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	b := writeCase(t, sub, "b", "+", "")

	t.Run("directory", func(t *stdt.T) {
		files, err := DiscoverTestFiles([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, files)
	})

	t.Run("recursive", func(t *stdt.T) {
		files, err := DiscoverTestFiles([]string{dir + "/..."})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, b}, files)
	})

	t.Run("glob", func(t *stdt.T) {
		files, err := DiscoverTestFiles([]string{filepath.Join(dir, "*.b")})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, files)
	})

	t.Run("file", func(t *stdt.T) {
		files, err := DiscoverTestFiles([]string{b, b})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, files)
	})

	t.Run("missing", func(t *stdt.T) {
		_, err := DiscoverTestFiles([]string{filepath.Join(dir, "nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path not found")
	})
}

func TestRunMismatch(t *stdt.T) {
	dir := t.TempDir()
	// prints "B" where "A" is expected
	writeCase(t, dir, "wrong", "++++++++[>++++++++<-]>++.", "A")

	summary, err := Run(context.Background(), &Config{Patterns: []string{dir}})
	require.NoError(t, err)
	require.False(t, summary.Success())
	assert.Equal(t, 2, summary.Failed)

	m := summary.Files[0].Tests[0].Mismatch
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Offset)
	assert.Equal(t, `"B"`, m.Got)
	assert.Equal(t, `"A"`, m.Want)
}

func TestRunWithInput(t *stdt.T) {
	dir := t.TempDir()
	writeCase(t, dir, "cat", ",[.,]", "abc", "abc")

	summary, err := Run(context.Background(), &Config{
		Patterns:  []string{dir},
		EOFPolicy: vm.EOFZero,
	})
	require.NoError(t, err)
	assert.True(t, summary.Success())
	assert.Equal(t, 2, summary.Passed)
}

func TestRunEndOfInputError(t *stdt.T) {
	dir := t.TempDir()
	writeCase(t, dir, "read", ",.", "")

	summary, err := Run(context.Background(), &Config{
		Patterns:  []string{dir},
		EOFPolicy: vm.EOFError,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Errors)
	assert.True(t, errors.Is(summary.Files[0].Tests[0].Error, errors.ErrEndOfInput))
}

func TestRunStepLimit(t *stdt.T) {
	dir := t.TempDir()
	writeCase(t, dir, "forever", "+[.]", "")

	summary, err := Run(context.Background(), &Config{
		Patterns:  []string{dir},
		StepLimit: 1000,
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Errors)
	for _, r := range summary.Files[0].Tests {
		assert.True(t, errors.Is(r.Error, errors.ErrHalted), r.Name)
	}
}

func TestRunCompileError(t *stdt.T) {
	dir := t.TempDir()
	writeCase(t, dir, "broken", "+[", "")

	summary, err := Run(context.Background(), &Config{Patterns: []string{dir}})
	require.NoError(t, err)
	require.False(t, summary.Success())
	require.Error(t, summary.Files[0].CompileErr)
	assert.True(t, errors.Is(summary.Files[0].CompileErr, errors.ErrUnmatchedOpen))
	assert.Empty(t, summary.Files[0].Tests)
}

func TestRunPattern(t *stdt.T) {
	summary, err := Run(context.Background(), &Config{
		Patterns:   []string{"../examples"},
		RunPattern: "^hello/opt",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTests())

	_, err = Run(context.Background(), &Config{
		Patterns:   []string{"../examples"},
		RunPattern: "(",
	})
	require.Error(t, err)
}

func TestRunCanceled(t *stdt.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &Config{Patterns: []string{"../examples"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompareOutput(t *stdt.T) {
	assert.Nil(t, compareOutput([]byte("same"), []byte("same")))

	m := compareOutput([]byte("hello"), []byte("help"))
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Offset)

	m = compareOutput([]byte("ab"), []byte("abc"))
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Offset)
	assert.Equal(t, `"ab"`, m.Got)
	assert.Equal(t, `"abc"`, m.Want)
}

func TestOutput(t *stdt.T) {
	summary := &Summary{
		Files: []*FileResult{
			{
				Filename: "ok.b",
				Tests: []*TestResult{
					{Name: "ok/naive", Status: StatusPassed, Steps: 10},
				},
			},
			{
				Filename: "bad.b",
				Tests: []*TestResult{
					{Name: "bad/naive", Status: StatusFailed, Mismatch: &Mismatch{Offset: 1, Got: `"ax"`, Want: `"ay"`}},
				},
			},
			{Filename: "broken.b", CompileErr: errors.ErrUnmatchedOpen},
		},
		Duration: time.Millisecond,
	}
	summary.ComputeTotals()

	t.Run("quiet", func(t *stdt.T) {
		var buf bytes.Buffer
		NewOutput(OutputConfig{Writer: &buf}).PrintResults(summary)
		out := buf.String()
		assert.Contains(t, out, "COMPILE ERROR: broken.b")
		assert.Contains(t, out, "--- FAIL: bad/naive")
		assert.Contains(t, out, "output differs at byte 1")
		assert.Contains(t, out, `want: "ay"`)
		assert.NotContains(t, out, "ok/naive")
		assert.Contains(t, out, "FAIL\n1 passed, 1 failed")
	})

	t.Run("verbose", func(t *stdt.T) {
		var buf bytes.Buffer
		NewOutput(OutputConfig{Writer: &buf, Verbose: true}).PrintResults(summary)
		assert.Contains(t, buf.String(), "=== RUN   ok/naive\n--- PASS: ok/naive (0.000s, 10 steps)")
	})
}
