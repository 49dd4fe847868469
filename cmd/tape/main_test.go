package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRunFile(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)
	out, err := execute(t, "", path)
	require.NoError(t, err)
	require.Equal(t, "Hello World!\n", out)
}

func TestRunWithoutOptimizer(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)
	out, err := execute(t, "", "--optimize=false", path)
	require.NoError(t, err)
	require.Equal(t, "Hello World!\n", out)
}

func TestRunMissingArgument(t *testing.T) {
	_, err := execute(t, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "accepts 1 arg(s), received 0")
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "", filepath.Join(t.TempDir(), "missing.b"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCompileError(t *testing.T) {
	path := writeFile(t, "broken.b", "+\n+[")
	_, err := execute(t, "", path)
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "E1001")
	require.Contains(t, msg, "broken.b:2:2")
	require.Contains(t, msg, "this loop is never closed")
}

func TestRunInfiniteLoopError(t *testing.T) {
	path := writeFile(t, "spin.b", "+[>+<]")
	_, err := execute(t, "", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "E2001")
}

func TestRunStdinInput(t *testing.T) {
	path := writeFile(t, "echo.b", ",[.,]")
	out, err := execute(t, "from stdin", "--eof", "zero", path)
	require.NoError(t, err)
	require.Equal(t, "from stdin", out)
}

func TestRunInputFile(t *testing.T) {
	path := writeFile(t, "echo.b", ",[.,]")
	input := writeFile(t, "input.txt", "from file")
	out, err := execute(t, "ignored", "--eof", "zero", "--input", input, path)
	require.NoError(t, err)
	require.Equal(t, "from file", out)
}

func TestRunEOFError(t *testing.T) {
	path := writeFile(t, "echo.b", ",[.,]")
	out, err := execute(t, "ab", "--eof", "error", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "E3002")
	require.Equal(t, "ab", out)
}

func TestRunEnvironment(t *testing.T) {
	t.Setenv("TAPE_EOF", "zero")
	path := writeFile(t, "echo.b", ",[.,]")
	out, err := execute(t, "env", path)
	require.NoError(t, err)
	require.Equal(t, "env", out)
}

func TestRunConfigFile(t *testing.T) {
	cfg := writeFile(t, "tape.yaml", "eof: zero\noptimize: false\n")
	path := writeFile(t, "echo.b", ",[.,]")
	out, err := execute(t, "cfg", "--config", cfg, path)
	require.NoError(t, err)
	require.Equal(t, "cfg", out)
}

func TestRunMissingConfigFile(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), path)
	require.Error(t, err)
}

func TestRunInvalidOptions(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)

	_, err := execute(t, "", "--eof", "sometimes", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid eof policy")

	_, err = execute(t, "", "--log-level", "loud", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log level")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "dev\n", out)

	out, err = execute(t, "", "version", "--output", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "dev", info["version"])
}

func TestBenchText(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)
	out, err := execute(t, "", "bench", "-n", "2", path)
	require.NoError(t, err)
	require.Contains(t, out, "Tape Benchmark")
	require.Contains(t, out, "RESULTS")
	require.Contains(t, out, "naive")
	require.Contains(t, out, "optimized")
	require.Contains(t, out, "Speedup")
}

func TestBenchJSON(t *testing.T) {
	path := writeFile(t, "hello.b", helloWorld)
	out, err := execute(t, "", "bench", "-n", "3", "-o", "json", path)
	require.NoError(t, err)

	var report BenchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 3, report.Iterations)
	require.Equal(t, len("Hello World!\n"), report.OutputBytes)
	require.Equal(t, 3, report.Optimizer.Loops)
	require.Equal(t, 1, report.Optimizer.Kept)
	require.Equal(t, "naive", report.Naive.Mode)
	require.Equal(t, "optimized", report.Optimized.Mode)
	require.Less(t, report.Optimized.Steps, report.Naive.Steps)
	require.Less(t, report.Optimized.Instructions, report.Naive.Instructions)
}

func TestBenchWithInput(t *testing.T) {
	path := writeFile(t, "upper.b", ",[--------------------------------.,]")
	out, err := execute(t, "abc", "--eof", "zero", "bench", "-n", "2", "-o", "json", path)
	require.NoError(t, err)
	var report BenchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 3, report.OutputBytes)
}

func TestDis(t *testing.T) {
	path := writeFile(t, "copy.b", "+++[->+<]")
	out, err := execute(t, "", "dis", path)
	require.NoError(t, err)
	require.Contains(t, out, "REPLICATE")
	require.NotContains(t, out, "LOOP_START")

	out, err = execute(t, "", "dis", "--optimize=false", path)
	require.NoError(t, err)
	require.Contains(t, out, "LOOP_START")
}

func TestGoldenExamples(t *testing.T) {
	out, err := execute(t, "", "test", "-v", "../../examples")
	require.NoError(t, err)
	require.Contains(t, out, "--- PASS: hello/optimized")
	require.Contains(t, out, "PASS\n6 passed")
}

func TestGoldenFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.b"), []byte("+++[>++++++++++++++++<-]>+."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.out"), []byte("2"), 0o644))

	out, err := execute(t, "", "test", "--run", "naive", dir)
	require.EqualError(t, err, "tests failed")
	require.Contains(t, out, "--- FAIL: one/naive")
	require.Contains(t, out, `want: "2"`)
	require.NotContains(t, out, "one/optimized")
}
