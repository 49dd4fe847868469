package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/tape/op"
)

// Mismatch identifies a loop instruction with no partner.
type Mismatch struct {
	Index int     // index of the unmatched instruction
	Op    op.Code // LoopStart or LoopEnd
}

func (m Mismatch) String() string {
	if m.Op == op.LoopStart {
		return fmt.Sprintf("unmatched loop start at instruction %d", m.Index)
	}
	return fmt.Sprintf("unmatched loop end at instruction %d", m.Index)
}

// Link resolves the jump targets of every LOOP_START / LOOP_END pair in
// place: each records the index of its partner. Every unmatched LOOP_END is
// reported in order of appearance, followed by every unclosed LOOP_START in
// order of appearance. The targets of unmatched instructions are set to -1.
func Link(instructions []Instruction) []Mismatch {
	var mismatches []Mismatch
	var stack []int
	for i := range instructions {
		switch instructions[i].Op {
		case op.LoopStart:
			stack = append(stack, i)
		case op.LoopEnd:
			if len(stack) == 0 {
				instructions[i].Target = -1
				mismatches = append(mismatches, Mismatch{Index: i, Op: op.LoopEnd})
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			instructions[start].Target = i
			instructions[i].Target = start
		}
	}
	for _, start := range stack {
		instructions[start].Target = -1
		mismatches = append(mismatches, Mismatch{Index: start, Op: op.LoopStart})
	}
	return mismatches
}
