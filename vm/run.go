package vm

import (
	"context"

	"github.com/deepnoodle-ai/tape/bytecode"
)

// Run the given program in a new Virtual Machine and return it, so callers
// can inspect the final tape.
func Run(ctx context.Context, program *bytecode.Program, options ...Option) (*VirtualMachine, error) {
	machine := New(program, options...)
	if err := machine.Run(ctx); err != nil {
		return machine, err
	}
	return machine, nil
}
