package main

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/deepnoodle-ai/tape/errors"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func disableColor() {
	color.NoColor = true
}

// newLogger returns a console logger tagged with the run id.
func newLogger(w io.Writer, level string, noColor bool, runID string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor || !isTerminal(w),
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(console).Level(lvl).With().Timestamp().Str("run_id", runID).Logger(), nil
}

// formatError renders compile and runtime errors with source context.
func formatError(err error, noColor bool) error {
	useColor := !noColor && !color.NoColor && isTerminal(os.Stderr)
	return goerrors.New(strings.TrimRight(errors.NewFormatter(useColor).FormatError(err), "\n"))
}

func marshalJSON(v any, noColor bool) ([]byte, error) {
	if noColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
