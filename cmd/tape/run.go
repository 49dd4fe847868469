package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/deepnoodle-ai/tape"
	"github.com/deepnoodle-ai/tape/loader"
	"github.com/spf13/cobra"
)

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	noColor := a.v.GetBool("no-color")

	src, err := loader.Load(ctx, args[0], loader.WithLogger(a.log))
	if err != nil {
		return err
	}

	opts, closeInput, err := a.tapeOptions(cmd)
	if err != nil {
		return err
	}
	defer closeInput()
	opts = append(opts,
		tape.WithFilename(src.Name),
		tape.WithOptimize(a.v.GetBool("optimize")),
	)

	program, err := tape.Compile(src.Text, opts...)
	if err != nil {
		return formatError(err, noColor)
	}
	a.log.Debug().
		Str("file", src.Name).
		Int("instructions", program.InstructionCount()).
		Bool("optimized", a.v.GetBool("optimize")).
		Msg("compiled")

	start := time.Now()
	_, err = tape.Run(ctx, program, opts...)
	dt := time.Since(start)
	if err != nil {
		return formatError(err, noColor)
	}

	// Optionally print execution time
	if a.v.GetBool("timing") {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", dt)
	}
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if strings.ToLower(format) != "json" {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			}
			info, err := marshalJSON(map[string]any{
				"version": version,
				"commit":  commit,
				"date":    date,
			}, a.v.GetBool("no-color"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(info))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format (text or json)")
	return cmd
}
