package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   "tape <file>",
		Short: "Run programs for the eight-symbol tape machine",
		Long: `Compile, optimize and run a tape program.

The program is read from a local path or from s3://bucket/key. Bytes read by
"," come from --input or standard input; bytes written by "." go to standard
output.`,
		Args:              cobra.ExactArgs(1),
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runHandler,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.tape.yaml)")
	pf.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("eof", "unchanged", "what ',' does at end of input: unchanged, zero or error")
	pf.String("input", "", "file to read program input from (default is stdin)")

	f := rootCmd.Flags()
	f.Bool("optimize", true, "replace pure loops before running")
	f.Bool("timing", false, "print the execution time to stderr")

	a.bind(pf)
	a.bind(f)

	rootCmd.AddCommand(newBenchCmd(a), newDisCmd(a), newTestCmd(a), newVersionCmd(a))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fatal(err)
	}
}
