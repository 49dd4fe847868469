// Package vm provides a VirtualMachine that executes compiled tape programs.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/errors"
	"github.com/deepnoodle-ai/tape/op"
	"github.com/rs/zerolog"
)

const (
	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// EOFPolicy decides what READ does once the input is exhausted.
type EOFPolicy uint8

const (
	// EOFUnchanged leaves the cell as it was.
	EOFUnchanged EOFPolicy = iota
	// EOFZero stores 0 in the cell.
	EOFZero
	// EOFError stops execution with errors.ErrEndOfInput.
	EOFError
)

// String returns the policy name as accepted by ParseEOFPolicy.
func (p EOFPolicy) String() string {
	switch p {
	case EOFUnchanged:
		return "unchanged"
	case EOFZero:
		return "zero"
	case EOFError:
		return "error"
	default:
		return fmt.Sprintf("EOFPolicy(%d)", uint8(p))
	}
}

// ParseEOFPolicy converts "unchanged", "zero" or "error" to an EOFPolicy.
func ParseEOFPolicy(s string) (EOFPolicy, error) {
	switch s {
	case "unchanged", "":
		return EOFUnchanged, nil
	case "zero":
		return EOFZero, nil
	case "error":
		return EOFError, nil
	default:
		return EOFUnchanged, fmt.Errorf("invalid eof policy %q (expected unchanged, zero or error)", s)
	}
}

// VirtualMachine runs a single program over a fixed size tape of byte cells.
// It is not safe for concurrent use.
type VirtualMachine struct {
	ip       int // instruction pointer
	pointer  int // data pointer
	halt     atomic.Bool
	steps    int64
	program  *bytecode.Program
	tape     [bytecode.TapeSize]byte
	input    io.ByteReader
	output   byteWriter
	running  bool
	runMutex sync.Mutex

	// stopWatch ends the goroutine watching the context of the current Run.
	stopWatch func()

	eofPolicy EOFPolicy
	log       zerolog.Logger

	// contextCheckInterval is the number of instructions between deterministic
	// checks of ctx.Done(). A value of 0 disables deterministic checking,
	// relying only on the background goroutine.
	contextCheckInterval int

	// observer receives step callbacks. If nil, no callbacks are made.
	observer       Observer
	observerConfig ObserverConfig
	lastLocation   bytecode.SourceLocation
}

// New creates a Virtual Machine ready to run the given program from its first
// instruction with an all-zero tape.
func New(program *bytecode.Program, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		program:              program,
		log:                  zerolog.Nop(),
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.output == nil {
		vm.output = newByteWriter(os.Stdout)
	}
	return vm
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	// Halt execution when the context is cancelled
	vm.halt.Store(false)
	if doneChan := ctx.Done(); doneChan != nil {
		stopped := make(chan struct{})
		go func() {
			select {
			case <-doneChan:
				vm.halt.Store(true)
			case <-stopped:
			}
		}()
		vm.stopWatch = func() { close(stopped) }
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
	if vm.stopWatch != nil {
		vm.stopWatch()
		vm.stopWatch = nil
	}
}

// Run executes the program until the instruction pointer passes the last
// instruction, an error occurs or ctx is cancelled. Buffered output is flushed
// before Run returns.
func (vm *VirtualMachine) Run(ctx context.Context) (err error) {
	if vm.program == nil {
		return fmt.Errorf("no program available")
	}
	if err := vm.start(ctx); err != nil {
		return err
	}
	defer vm.stop()
	defer func() {
		if flushErr := vm.flush(); err == nil {
			err = flushErr
		}
	}()

	started := time.Now()
	startSteps := vm.steps
	err = vm.eval(ctx)
	vm.log.Debug().
		Int64("steps", vm.steps-startSteps).
		Int("ip", vm.ip).
		Int("pointer", vm.pointer).
		Dur("elapsed", time.Since(started)).
		Err(err).
		Msg("run finished")
	return err
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	// Instruction counter for deterministic context checking
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	count := vm.program.InstructionCount()

	for vm.ip < count {
		if vm.halt.Load() {
			return ctx.Err()
		}

		// Deterministic check of ctx.Done() every N instructions.
		// This guarantees responsiveness regardless of goroutine scheduling.
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					vm.halt.Store(true)
					return ctx.Err()
				default:
				}
			}
		}

		if err := vm.exec(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one instruction. It reports done once the
// instruction pointer has moved past the last instruction, at which point
// buffered output has been flushed.
func (vm *VirtualMachine) Step() (done bool, err error) {
	if vm.program == nil {
		return true, fmt.Errorf("no program available")
	}
	if vm.ip >= vm.program.InstructionCount() {
		return true, vm.flush()
	}
	if err := vm.exec(); err != nil {
		_ = vm.flush()
		return true, err
	}
	if vm.ip >= vm.program.InstructionCount() {
		return true, vm.flush()
	}
	return false, nil
}

// exec dispatches the instruction at vm.ip.
func (vm *VirtualMachine) exec() error {
	instr := vm.program.InstructionAt(vm.ip)
	if vm.observer != nil && !vm.notify(instr) {
		return vm.runtimeError(errors.E3004, errors.ErrHalted, "execution halted by observer")
	}
	vm.steps++

	switch instr.Op {
	case op.Add:
		vm.tape[vm.pointer] += instr.Value
		vm.ip++
	case op.Shift:
		vm.pointer = wrapPointer(vm.pointer + instr.Offset)
		vm.ip++
	case op.LoopStart:
		if vm.tape[vm.pointer] == 0 {
			vm.ip = instr.Target + 1
		} else {
			vm.ip++
		}
	case op.LoopEnd:
		if vm.tape[vm.pointer] != 0 {
			vm.ip = instr.Target + 1
		} else {
			vm.ip++
		}
	case op.Zero:
		vm.tape[vm.pointer] = 0
		vm.ip++
	case op.Replicate:
		return vm.replicate(instr.Effects)
	case op.Read:
		return vm.read()
	case op.Write:
		if err := vm.output.WriteByte(vm.tape[vm.pointer]); err != nil {
			return vm.runtimeError(errors.E3005, err, fmt.Sprintf("write failed: %v", err))
		}
		vm.ip++
	default:
		return fmt.Errorf("unknown opcode %d at instruction %d", instr.Op, vm.ip)
	}
	return nil
}

// replicate applies a pure loop. A stationary loop is applied in one step:
// the number of passes the loop would have made is solved for directly and
// every delta is scaled by it. A marching loop runs one pass per dispatch
// and leaves the instruction pointer in place until the cell it lands on is
// zero, exactly as the loop it replaces would.
func (vm *VirtualMachine) replicate(e *bytecode.Effects) error {
	cell := vm.tape[vm.pointer]
	if cell == 0 {
		vm.ip++
		return nil
	}
	if !e.IsStationary() {
		vm.applyDeltas(e, 1)
		vm.pointer = wrapPointer(vm.pointer + e.Shift())
		return nil
	}
	reps, ok := repetitions(cell, e.Delta(0))
	if !ok {
		return vm.runtimeError(errors.E3003, errors.ErrNonTerminating,
			fmt.Sprintf("loop never brings cell value %d to zero in steps of %d", cell, e.Delta(0)))
	}
	vm.applyDeltas(e, reps)
	vm.ip++
	return nil
}

func (vm *VirtualMachine) applyDeltas(e *bytecode.Effects, reps byte) {
	for i := 0; i < e.DeltaCount(); i++ {
		d := e.DeltaAt(i)
		vm.tape[wrapPointer(vm.pointer+d.Offset)] += d.Value * reps
	}
}

func (vm *VirtualMachine) read() error {
	if vm.input == nil {
		return vm.runtimeError(errors.E3001, errors.ErrInputUnavailable, "read instruction executed with no input")
	}
	// Anything written so far must be visible before blocking on input.
	if err := vm.flush(); err != nil {
		return err
	}
	b, err := vm.input.ReadByte()
	switch {
	case err == io.EOF:
		switch vm.eofPolicy {
		case EOFZero:
			vm.tape[vm.pointer] = 0
		case EOFError:
			return vm.runtimeError(errors.E3002, errors.ErrEndOfInput, "read past the end of input")
		}
	case err != nil:
		return vm.runtimeError(errors.E3001, err, fmt.Sprintf("read failed: %v", err))
	default:
		vm.tape[vm.pointer] = b
	}
	vm.ip++
	return nil
}

func (vm *VirtualMachine) flush() error {
	if err := vm.output.Flush(); err != nil {
		return vm.runtimeError(errors.E3005, err, fmt.Sprintf("write failed: %v", err))
	}
	return nil
}

func (vm *VirtualMachine) notify(instr bytecode.Instruction) bool {
	cfg := vm.observerConfig
	switch cfg.StepMode {
	case StepNone:
		return true
	case StepSampled:
		if vm.steps%int64(cfg.SampleInterval) != 0 {
			return true
		}
	case StepOnLine:
		loc := vm.program.LocationAt(vm.ip)
		if loc.Line == vm.lastLocation.Line && vm.steps > 0 {
			return true
		}
		vm.lastLocation = loc
	}
	return vm.observer.OnStep(StepEvent{
		IP:         vm.ip,
		Opcode:     instr.Op,
		OpcodeName: op.GetInfo(instr.Op).Name,
		Location:   vm.program.LocationAt(vm.ip),
		Pointer:    vm.pointer,
		Cell:       vm.tape[vm.pointer],
	})
}

// Reset rewinds the machine to the first instruction with an all-zero tape.
// Input and output collaborators are kept.
func (vm *VirtualMachine) Reset() {
	vm.tape = [bytecode.TapeSize]byte{}
	vm.pointer = 0
	vm.ip = 0
	vm.steps = 0
	vm.lastLocation = bytecode.SourceLocation{}
}

// Program returns the program the machine runs.
func (vm *VirtualMachine) Program() *bytecode.Program {
	return vm.program
}

// IP returns the index of the next instruction to execute.
func (vm *VirtualMachine) IP() int {
	return vm.ip
}

// Pointer returns the data pointer.
func (vm *VirtualMachine) Pointer() int {
	return vm.pointer
}

// Cell returns the value of the cell at index, wrapped onto the tape.
func (vm *VirtualMachine) Cell(index int) byte {
	return vm.tape[wrapPointer(index)]
}

// SetCell stores value in the cell at index, wrapped onto the tape.
func (vm *VirtualMachine) SetCell(index int, value byte) {
	vm.tape[wrapPointer(index)] = value
}

// SetPointer moves the data pointer, wrapped onto the tape.
func (vm *VirtualMachine) SetPointer(pointer int) {
	vm.pointer = wrapPointer(pointer)
}

// Tape returns a copy of the tape.
func (vm *VirtualMachine) Tape() []byte {
	out := make([]byte, len(vm.tape))
	copy(out, vm.tape[:])
	return out
}

// Steps returns the number of instructions dispatched since creation or the
// last Reset. A marching REPLICATE counts once per pass.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

func (vm *VirtualMachine) runtimeError(code errors.ErrorCode, cause error, msg string) *errors.RuntimeError {
	loc := vm.program.LocationAt(vm.ip)
	return &errors.RuntimeError{
		Code:    code,
		Message: msg,
		IP:      vm.ip,
		Pointer: vm.pointer,
		Location: errors.SourceLocation{
			Filename: vm.program.Filename(),
			Line:     loc.Line,
			Column:   loc.Column,
			Source:   vm.program.GetSourceLine(loc.Line),
		},
		Err: cause,
	}
}
