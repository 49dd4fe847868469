package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithInput sets the reader that READ instructions consume bytes from.
// Without an input, READ fails with errors.ErrInputUnavailable.
func WithInput(r io.Reader) Option {
	return func(vm *VirtualMachine) {
		vm.input = newByteReader(r)
	}
}

// WithOutput sets the writer that WRITE instructions emit bytes to. Output is
// buffered and flushed before every READ and when execution stops. The
// default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = newByteWriter(w)
	}
}

// WithEOFPolicy sets what READ does when the input is exhausted.
func WithEOFPolicy(policy EOFPolicy) Option {
	return func(vm *VirtualMachine) {
		vm.eofPolicy = policy
	}
}

// WithLogger sets the logger used for debug events. The default discards
// everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.log = logger
	}
}

// WithContextCheckInterval sets how often Run checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of 0
// disables deterministic checking, relying only on the background goroutine
// that monitors the context. The default is DefaultContextCheckInterval (1000).
//
// Lower values provide more responsive cancellation but may slightly impact
// performance due to more frequent checks.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from OnStep halts execution with errors.ErrHalted.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
		if observer != nil {
			vm.observerConfig = NormalizeConfig(observer.Config())
		}
	}
}
