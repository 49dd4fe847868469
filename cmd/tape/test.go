package main

import (
	"errors"

	tapetest "github.com/deepnoodle-ai/tape/testing"
	"github.com/deepnoodle-ai/tape/vm"
	"github.com/spf13/cobra"
)

var errTestsFailed = errors.New("tests failed")

func newTestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [patterns...]",
		Short: "Run golden-output tests",
		Long: `Run every program that has a golden output file.

A test is a program name.b next to name.out, with an optional name.in as its
input. Each program runs naive and optimized and both outputs must match.
Patterns are files, directories, globs or dir/... for a recursive search.`,
		RunE: a.testHandler,
	}
	f := cmd.Flags()
	f.BoolP("verbose", "v", false, "list passing runs too")
	f.String("run", "", "only run tests whose name matches this regex")
	f.Int64("step-limit", tapetest.DefaultStepLimit, "halt a run after this many instructions")
	return cmd
}

func (a *app) testHandler(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	eof, err := vm.ParseEOFPolicy(a.v.GetString("eof"))
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	run, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt64("step-limit")

	summary, err := tapetest.Run(cmd.Context(), &tapetest.Config{
		Patterns:   args,
		RunPattern: run,
		Verbose:    verbose,
		EOFPolicy:  eof,
		StepLimit:  limit,
	})
	if err != nil {
		return err
	}
	a.log.Debug().
		Int("files", len(summary.Files)).
		Int("passed", summary.Passed).
		Dur("duration", summary.Duration).
		Msg("tests finished")

	out := cmd.OutOrStdout()
	tapetest.NewOutput(tapetest.OutputConfig{
		Writer:   out,
		Verbose:  verbose,
		UseColor: !a.v.GetBool("no-color") && isTerminal(out),
	}).PrintResults(summary)

	if !summary.Success() {
		return errTestsFailed
	}
	return nil
}
