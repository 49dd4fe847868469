// Package tape compiles and runs programs written for the eight-symbol tape
// machine: "+-<>[],." over a fixed tape of byte cells.
//
// The quickest way to run a program is Eval:
//
//	_, err := tape.Eval(ctx, source, tape.WithOutput(os.Stdout))
//
// Compile and Run split the two phases so one compiled program can be run
// many times, including concurrently.
package tape

import (
	"context"
	"io"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/compiler"
	"github.com/deepnoodle-ai/tape/optimizer"
	"github.com/deepnoodle-ai/tape/vm"
	"github.com/rs/zerolog"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	filename  string
	optimize  bool
	input     io.Reader
	output    io.Writer
	eofPolicy vm.EOFPolicy
	log       zerolog.Logger
	observer  vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{optimize: true, log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithEOFPolicy(o.eofPolicy),
		vm.WithLogger(o.log),
	}
	if o.input != nil {
		opts = append(opts, vm.WithInput(o.input))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithFilename sets the filename for the source code being compiled.
// This is used in error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithOptimize turns loop optimization on or off. It is on by default.
func WithOptimize(enabled bool) Option {
	return func(o *options) {
		o.optimize = enabled
	}
}

// WithInput sets the reader consumed by "," instructions. Without one, a
// program that reads fails with errors.ErrInputUnavailable.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the writer that "." instructions write to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithEOFPolicy sets what "," does once the input is exhausted.
func WithEOFPolicy(policy vm.EOFPolicy) Option {
	return func(o *options) {
		o.eofPolicy = policy
	}
}

// WithLogger sets the logger handed to the optimizer and the VM.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// Compile parses source and, unless disabled with WithOptimize(false),
// optimizes it. The returned Program is immutable and safe for concurrent
// use.
func Compile(source string, opts ...Option) (*bytecode.Program, error) {
	o := collectOptions(opts...)
	var compilerOpts []compiler.Option
	if o.filename != "" {
		compilerOpts = append(compilerOpts, compiler.WithFilename(o.filename))
	}
	program, err := compiler.Compile(source, compilerOpts...)
	if err != nil {
		return nil, err
	}
	if !o.optimize {
		return program, nil
	}
	return optimizer.Optimize(program, optimizer.WithLogger(o.log))
}

// Run executes a compiled program on a fresh machine and returns the machine
// so its final state can be inspected. Each call creates fresh runtime state,
// allowing concurrent execution of the same Program.
func Run(ctx context.Context, program *bytecode.Program, opts ...Option) (*vm.VirtualMachine, error) {
	o := collectOptions(opts...)
	return vm.Run(ctx, program, o.vmOpts()...)
}

// Eval is a convenience function that compiles and runs source code.
// It is equivalent to Compile() followed by Run().
func Eval(ctx context.Context, source string, opts ...Option) (*vm.VirtualMachine, error) {
	program, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, program, opts...)
}
