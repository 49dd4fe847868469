package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/tape/op"
)

// Instruction is a single operation together with its operand. Only the
// operand field matching Op is meaningful:
//
//   - ADD uses Value, the amount added to the current cell (mod 256)
//   - SHIFT uses Offset, the signed pointer movement (mod TapeSize)
//   - LOOP_START and LOOP_END use Target, the index of the matching bracket
//   - REPLICATE uses Effects
type Instruction struct {
	Op      op.Code
	Value   byte
	Offset  int
	Target  int
	Effects *Effects
}

// NewAdd returns an ADD instruction.
func NewAdd(value byte) Instruction {
	return Instruction{Op: op.Add, Value: value}
}

// NewShift returns a SHIFT instruction. The offset is reduced with WrapOffset.
func NewShift(offset int) Instruction {
	return Instruction{Op: op.Shift, Offset: WrapOffset(offset)}
}

// NewLoopStart returns a LOOP_START whose target is resolved later by Link.
func NewLoopStart() Instruction {
	return Instruction{Op: op.LoopStart, Target: -1}
}

// NewLoopEnd returns a LOOP_END whose target is resolved later by Link.
func NewLoopEnd() Instruction {
	return Instruction{Op: op.LoopEnd, Target: -1}
}

// NewZero returns a ZERO instruction.
func NewZero() Instruction {
	return Instruction{Op: op.Zero}
}

// NewReplicate returns a REPLICATE instruction carrying the given effects.
func NewReplicate(effects *Effects) Instruction {
	return Instruction{Op: op.Replicate, Effects: effects}
}

// NewRead returns a READ instruction.
func NewRead() Instruction {
	return Instruction{Op: op.Read}
}

// NewWrite returns a WRITE instruction.
func NewWrite() Instruction {
	return Instruction{Op: op.Write}
}

// String returns a human readable form of the instruction, for debugging.
func (i Instruction) String() string {
	switch i.Op {
	case op.Add:
		return fmt.Sprintf("%s %d", i.Op, i.Value)
	case op.Shift:
		return fmt.Sprintf("%s %d", i.Op, i.Offset)
	case op.LoopStart, op.LoopEnd:
		return fmt.Sprintf("%s -> %d", i.Op, i.Target)
	case op.Replicate:
		return fmt.Sprintf("%s %s", i.Op, i.Effects)
	default:
		return i.Op.String()
	}
}
