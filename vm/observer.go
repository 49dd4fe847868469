package vm

import (
	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every dispatched instruction.
	// Use for: detailed tracing, step counting.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	StepNone

	// StepSampled calls OnStep every N instructions.
	// Use for: statistical profiling of long running programs.
	StepSampled

	// StepOnLine calls OnStep when the source location changes.
	// Use for: coverage tools, line-level debugging.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int
}

// NewObserverConfig creates a config with safe defaults.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution. Implementations can
// be used for step counting, tracing or coverage without modifying the VM.
//
// Observer methods are called synchronously during VM execution.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the observer is attached to the VM.
	Config() ObserverConfig

	// OnStep is called based on the StepMode in the observer's config,
	// before the instruction executes. Returns false to halt execution.
	OnStep(event StepEvent) bool
}

// StepEvent describes the machine state just before an instruction runs.
type StepEvent struct {
	// IP is the instruction pointer (index into the instruction array).
	IP int

	// Opcode is the operation about to execute.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Location is the source location of the instruction.
	Location bytecode.SourceLocation

	// Pointer is the data pointer.
	Pointer int

	// Cell is the value of the cell under the data pointer.
	Cell byte
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to inherit the StepAll configuration.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

// StepCounter is an Observer that counts dispatched instructions, optionally
// halting once a limit is reached.
type StepCounter struct {
	NoOpObserver

	// Limit halts execution after this many steps. Zero means no limit.
	Limit int64

	steps int64
}

// OnStep counts the step.
func (c *StepCounter) OnStep(StepEvent) bool {
	c.steps++
	return c.Limit == 0 || c.steps <= c.Limit
}

// Steps returns the number of steps observed.
func (c *StepCounter) Steps() int64 {
	return c.steps
}

// Reset sets the count back to zero.
func (c *StepCounter) Reset() {
	c.steps = 0
}
