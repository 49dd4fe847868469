// Package effects decides whether a loop body is pure and, if so, computes
// what one pass through it does to the tape.
//
// A body is pure when it contains only ADD and SHIFT instructions. One pass
// then moves the pointer by a fixed amount and adds a fixed delta at each
// offset relative to where the pass started, whatever the tape holds. Any
// READ, WRITE, nested loop or already replaced loop makes the body impure:
// I/O must keep its per-iteration order, and a nested loop touches cells
// whose position or count depends on the tape.
package effects

import (
	"fmt"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/errors"
	"github.com/deepnoodle-ai/tape/op"
)

// Result is the outcome of analyzing a loop body.
type Result struct {
	// Pure is true when the body consists only of ADD and SHIFT.
	Pure bool

	// Effects holds the net shift and deltas of one pass. Nil unless Pure.
	Effects *bytecode.Effects

	// Blocker is the index within the body of the first instruction that
	// made it impure, or -1.
	Blocker int
}

// Marching reports whether a pure body moves the pointer on every pass.
func (r Result) Marching() bool {
	return r.Pure && !r.Effects.IsStationary()
}

// Stationary reports whether a pure body returns the pointer to where it
// started.
func (r Result) Stationary() bool {
	return r.Pure && r.Effects.IsStationary()
}

// Analyze walks body once, tracking the running pointer offset and the
// delta accumulated at every offset.
//
// A pure stationary body must change the cell the loop tests, otherwise the
// loop can never exit once entered. Such a body yields an error wrapping
// errors.ErrInfiniteLoop.
func Analyze(body []bytecode.Instruction) (Result, error) {
	offset := 0
	var deltas []bytecode.Delta
	for i, instr := range body {
		switch instr.Op {
		case op.Add:
			deltas = append(deltas, bytecode.Delta{Offset: offset, Value: instr.Value})
		case op.Shift:
			offset = bytecode.WrapOffset(offset + instr.Offset)
		default:
			return Result{Blocker: i}, nil
		}
	}
	e := bytecode.NewEffects(offset, deltas)
	if e.IsStationary() && e.Delta(0) == 0 {
		return Result{}, fmt.Errorf("%w: body leaves the pointer in place and never changes the tested cell",
			errors.ErrInfiniteLoop)
	}
	return Result{Pure: true, Effects: e, Blocker: -1}, nil
}

// IsZeroing reports whether the effects are exactly those of "[-]" or
// "[+]": stationary, touching only offset 0 by one in either direction.
// Running such a loop to completion always leaves the cell at zero.
func IsZeroing(e *bytecode.Effects) bool {
	if e == nil || !e.IsStationary() || e.DeltaCount() != 1 {
		return false
	}
	d := e.DeltaAt(0)
	return d.Offset == 0 && (d.Value == 1 || d.Value == 255)
}
