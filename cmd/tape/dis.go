package main

import (
	"github.com/deepnoodle-ai/tape"
	"github.com/deepnoodle-ai/tape/dis"
	"github.com/deepnoodle-ai/tape/loader"
	"github.com/spf13/cobra"
)

func newDisCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis <file>",
		Short: "Disassemble a program",
		Args:  cobra.ExactArgs(1),
		RunE:  a.disHandler,
	}
	cmd.Flags().Bool("optimize", true, "show the optimized program")
	return cmd
}

func (a *app) disHandler(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	src, err := loader.Load(cmd.Context(), args[0], loader.WithLogger(a.log))
	if err != nil {
		return err
	}
	optimize, _ := cmd.Flags().GetBool("optimize")
	program, err := tape.Compile(src.Text,
		tape.WithFilename(src.Name),
		tape.WithOptimize(optimize),
		tape.WithLogger(a.log))
	if err != nil {
		return formatError(err, a.v.GetBool("no-color"))
	}
	return dis.Print(dis.Disassemble(program), cmd.OutOrStdout())
}
