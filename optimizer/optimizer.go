// Package optimizer replaces loops whose bodies are provably pure with
// closed-form instructions.
//
// Every LOOP_START is handed to the effects analyzer together with its body:
//
//   - a body that only moves its own cell by one ("[-]", "[+]") becomes ZERO
//   - any other pure body becomes REPLICATE carrying the body's effects
//   - an impure body is kept, and the scan continues inside it so that the
//     loops it contains are still considered
//
// Replaced loops are never revisited. Because the program is flat the pass
// is a single linear walk with no recursion.
package optimizer

import (
	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/effects"
	"github.com/deepnoodle-ai/tape/errors"
	"github.com/deepnoodle-ai/tape/op"
	"github.com/rs/zerolog"
)

// Stats summarizes what an optimization pass did.
type Stats struct {
	Loops      int `json:"loops"`      // loops examined
	Zeroed     int `json:"zeroed"`     // loops replaced with ZERO
	Stationary int `json:"stationary"` // loops replaced with a stationary REPLICATE
	Marching   int `json:"marching"`   // loops replaced with a marching REPLICATE
	Kept       int `json:"kept"`       // impure loops left in place
}

// Option configures an optimization pass.
type Option func(*optimizer)

// WithLogger sets the logger that receives one debug event per replaced loop.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *optimizer) {
		o.log = logger
	}
}

type optimizer struct {
	log   zerolog.Logger
	prog  *bytecode.Program
	body  []bytecode.Instruction
	out   []bytecode.Instruction
	locs  []bytecode.SourceLocation
	stats Stats
	errs  []*errors.CompileError
}

// Optimize returns a new program in which every pure loop of prog has been
// replaced. The input program is not modified.
func Optimize(prog *bytecode.Program, opts ...Option) (*bytecode.Program, error) {
	optimized, _, err := OptimizeWithStats(prog, opts...)
	return optimized, err
}

// OptimizeWithStats is like Optimize and also reports what was replaced.
func OptimizeWithStats(prog *bytecode.Program, opts ...Option) (*bytecode.Program, Stats, error) {
	o := &optimizer{log: zerolog.Nop(), prog: prog}
	for _, opt := range opts {
		opt(o)
	}
	o.body = make([]bytecode.Instruction, prog.InstructionCount())
	for i := range o.body {
		o.body[i] = prog.InstructionAt(i)
	}

	o.run()
	if err := errors.Combine(o.errs); err != nil {
		return nil, o.stats, err
	}

	optimized, err := bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: o.out,
		Locations:    o.locs,
		Source:       prog.Source(),
		Filename:     prog.Filename(),
	})
	if err != nil {
		return nil, o.stats, err
	}
	o.log.Debug().
		Int("loops", o.stats.Loops).
		Int("zeroed", o.stats.Zeroed).
		Int("stationary", o.stats.Stationary).
		Int("marching", o.stats.Marching).
		Int("kept", o.stats.Kept).
		Int("instructions_before", prog.InstructionCount()).
		Int("instructions_after", optimized.InstructionCount()).
		Msg("optimization complete")
	return optimized, o.stats, nil
}

func (o *optimizer) run() {
	for ip := 0; ip < len(o.body); {
		instr := o.body[ip]
		if instr.Op != op.LoopStart {
			o.emit(instr, ip)
			ip++
			continue
		}
		o.stats.Loops++
		end := instr.Target
		res, err := effects.Analyze(o.body[ip+1 : end])
		switch {
		case err != nil:
			o.errs = append(o.errs, o.infiniteLoopError(ip, err))
			ip = end + 1
		case res.Pure:
			o.replace(ip, res.Effects)
			ip = end + 1
		default:
			// Keep the loop and descend into its body
			o.stats.Kept++
			o.emit(instr, ip)
			ip++
		}
	}
}

func (o *optimizer) replace(ip int, e *bytecode.Effects) {
	kind := "replicate"
	switch {
	case effects.IsZeroing(e):
		kind = "zero"
		o.stats.Zeroed++
		o.emit(bytecode.NewZero(), ip)
	case e.IsStationary():
		o.stats.Stationary++
		o.emit(bytecode.NewReplicate(e), ip)
	default:
		o.stats.Marching++
		o.emit(bytecode.NewReplicate(e), ip)
	}
	o.log.Debug().
		Int("ip", ip).
		Str("kind", kind).
		Int("shift", e.Shift()).
		Int("offsets", e.DeltaCount()).
		Str("location", o.prog.LocationAt(ip).String()).
		Msg("loop replaced")
}

func (o *optimizer) emit(instr bytecode.Instruction, ip int) {
	o.out = append(o.out, instr)
	if o.prog.LocationCount() > 0 {
		o.locs = append(o.locs, o.prog.LocationAt(ip))
	}
}

func (o *optimizer) infiniteLoopError(ip int, cause error) *errors.CompileError {
	loc := o.prog.LocationAt(ip)
	filename := o.prog.Filename()
	if filename == "" {
		filename = "unknown"
	}
	return &errors.CompileError{
		Code:       errors.E2001,
		Message:    "loop never terminates",
		Filename:   filename,
		Line:       loc.Line,
		Column:     loc.Column,
		SourceLine: o.prog.GetSourceLine(loc.Line),
		Note:       "the body leaves the pointer in place and never changes the tested cell",
		Err:        cause,
	}
}
