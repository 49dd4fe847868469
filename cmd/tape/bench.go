package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/deepnoodle-ai/tape"
	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/loader"
	"github.com/deepnoodle-ai/tape/op"
	"github.com/deepnoodle-ai/tape/optimizer"
	"github.com/deepnoodle-ai/tape/vm"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BenchResult holds timing statistics for one execution mode.
type BenchResult struct {
	Mode          string `json:"mode"`
	Instructions  int    `json:"instructions"`
	Steps         int64  `json:"steps"`
	TotalNs       int64  `json:"total_ns"`
	TotalDuration string `json:"total_duration"`
	MinNs         int64  `json:"min_ns"`
	MaxNs         int64  `json:"max_ns"`
	AvgNs         int64  `json:"avg_ns"`
}

// BenchReport compares naive and optimized execution of one program.
type BenchReport struct {
	File        string          `json:"file"`
	Iterations  int             `json:"iterations"`
	OutputBytes int             `json:"output_bytes"`
	Optimizer   optimizer.Stats `json:"optimizer"`
	Naive       BenchResult     `json:"naive"`
	Optimized   BenchResult     `json:"optimized"`
	Speedup     float64         `json:"speedup"`
}

func newBenchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench <file>",
		Short: "Compare naive and optimized execution of a program",
		Args:  cobra.ExactArgs(1),
		RunE:  a.benchHandler,
	}
	cmd.Flags().IntP("iterations", "n", 10, "number of runs per mode")
	cmd.Flags().StringP("output", "o", "text", "output format (text or json)")
	return cmd
}

func (a *app) benchHandler(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	noColor := a.v.GetBool("no-color")

	iterations, _ := cmd.Flags().GetInt("iterations")
	if iterations <= 0 {
		iterations = 10
	}
	format, _ := cmd.Flags().GetString("output")

	src, err := loader.Load(ctx, args[0], loader.WithLogger(a.log))
	if err != nil {
		return err
	}
	policy, err := vm.ParseEOFPolicy(a.v.GetString("eof"))
	if err != nil {
		return err
	}

	naive, err := tape.Compile(src.Text, tape.WithFilename(src.Name), tape.WithOptimize(false))
	if err != nil {
		return formatError(err, noColor)
	}
	optimized, stats, err := optimizer.OptimizeWithStats(naive, optimizer.WithLogger(a.log))
	if err != nil {
		return formatError(err, noColor)
	}

	// Every run gets the same input, so it is read once up front.
	var input []byte
	if reads(naive) {
		input, err = a.readBenchInput(cmd)
		if err != nil {
			return err
		}
	}

	bench := func(mode string, program *bytecode.Program) (BenchResult, []byte, error) {
		return runBench(ctx, mode, program, iterations, input, policy)
	}
	runtime.GC()
	naiveResult, naiveOut, err := bench("naive", naive)
	if err != nil {
		return formatError(err, noColor)
	}
	runtime.GC()
	optimizedResult, optimizedOut, err := bench("optimized", optimized)
	if err != nil {
		return formatError(err, noColor)
	}
	if !bytes.Equal(naiveOut, optimizedOut) {
		return fmt.Errorf("output differs: naive wrote %d bytes, optimized wrote %d bytes",
			len(naiveOut), len(optimizedOut))
	}

	report := BenchReport{
		File:        src.Name,
		Iterations:  iterations,
		OutputBytes: len(naiveOut),
		Optimizer:   stats,
		Naive:       naiveResult,
		Optimized:   optimizedResult,
	}
	if optimizedResult.TotalNs > 0 {
		report.Speedup = float64(naiveResult.TotalNs) / float64(optimizedResult.TotalNs)
	}
	a.log.Debug().
		Str("file", src.Name).
		Int("iterations", iterations).
		Float64("speedup", report.Speedup).
		Msg("bench complete")

	if strings.ToLower(format) == "json" {
		data, err := marshalJSON(report, noColor)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func (a *app) readBenchInput(cmd *cobra.Command) ([]byte, error) {
	if a.v.GetString("input") == "" && isTerminal(os.Stdin) && cmd.InOrStdin() == os.Stdin {
		return nil, errors.New("program reads input: pass --input or pipe data to stdin")
	}
	r, closeInput, err := a.openInput(cmd)
	if err != nil {
		return nil, err
	}
	defer closeInput()
	return io.ReadAll(r)
}

func reads(program *bytecode.Program) bool {
	for _, code := range program.Opcodes() {
		if code == op.Read {
			return true
		}
	}
	return false
}

// runBench runs program iterations times and returns the output of the first
// run along with the timings.
func runBench(
	ctx context.Context,
	mode string,
	program *bytecode.Program,
	iterations int,
	input []byte,
	policy vm.EOFPolicy,
) (BenchResult, []byte, error) {
	result := BenchResult{Mode: mode, Instructions: program.InstructionCount()}
	var first []byte
	var total time.Duration
	minDuration := time.Duration(1<<63 - 1)
	var maxDuration time.Duration

	for i := 0; i < iterations; i++ {
		var out bytes.Buffer
		counter := &vm.StepCounter{}
		opts := []vm.Option{
			vm.WithOutput(&out),
			vm.WithObserver(counter),
			vm.WithEOFPolicy(policy),
		}
		if input != nil {
			opts = append(opts, vm.WithInput(bytes.NewReader(input)))
		}
		start := time.Now()
		_, err := vm.Run(ctx, program, opts...)
		elapsed := time.Since(start)
		if err != nil {
			return result, nil, err
		}
		if i == 0 {
			first = out.Bytes()
			result.Steps = counter.Steps()
		}
		total += elapsed
		minDuration = min(minDuration, elapsed)
		maxDuration = max(maxDuration, elapsed)
	}

	result.TotalNs = total.Nanoseconds()
	result.TotalDuration = total.Round(time.Microsecond).String()
	result.MinNs = minDuration.Nanoseconds()
	result.MaxNs = maxDuration.Nanoseconds()
	result.AvgNs = (total / time.Duration(iterations)).Nanoseconds()
	return result, first, nil
}

func printReport(w io.Writer, r BenchReport) {
	title := color.New(color.FgYellow, color.Bold).SprintFunc()
	label := color.New(color.FgMagenta).SprintFunc()
	value := color.New(color.FgGreen).SprintFunc()
	muted := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintln(w, title("Tape Benchmark"))
	fmt.Fprintf(w, "%s %s\n", label("File:       "), value(r.File))
	fmt.Fprintf(w, "%s %s\n", label("Iterations: "), value(r.Iterations))
	fmt.Fprintf(w, "%s %s\n", label("Output:     "), value(fmt.Sprintf("%d bytes (identical)", r.OutputBytes)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, title("OPTIMIZER"))
	fmt.Fprintf(w, "%s %s\n", label("Loops:      "), value(r.Optimizer.Loops))
	fmt.Fprintf(w, "%s %s\n", label("Zeroed:     "), value(r.Optimizer.Zeroed))
	fmt.Fprintf(w, "%s %s\n", label("Stationary: "), value(r.Optimizer.Stationary))
	fmt.Fprintf(w, "%s %s\n", label("Marching:   "), value(r.Optimizer.Marching))
	fmt.Fprintf(w, "%s %s\n", label("Kept:       "), value(r.Optimizer.Kept))
	fmt.Fprintln(w)

	fmt.Fprintln(w, title("RESULTS"))
	fmt.Fprintln(w, muted(strings.Repeat("-", 60)))
	fmt.Fprintf(w, "%-10s %12s %14s %12s %12s\n", "", "instructions", "steps", "avg", "total")
	for _, res := range []BenchResult{r.Naive, r.Optimized} {
		fmt.Fprintf(w, "%-10s %12d %14d %12v %12s\n",
			label(res.Mode),
			res.Instructions,
			res.Steps,
			time.Duration(res.AvgNs).Round(time.Microsecond),
			res.TotalDuration)
	}
	fmt.Fprintln(w, muted(strings.Repeat("-", 60)))
	fmt.Fprintf(w, "%s %s\n", label("Speedup:    "), value(fmt.Sprintf("%.2fx", r.Speedup)))
}
