package bytecode

import "github.com/deepnoodle-ai/tape/op"

// Stats contains statistics about a compiled program.
type Stats struct {
	// InstructionCount is the total number of instructions.
	InstructionCount int

	// LoopCount is the number of LOOP_START / LOOP_END pairs left in the
	// program.
	LoopCount int

	// ZeroCount is the number of ZERO instructions.
	ZeroCount int

	// ReplicateCount is the number of REPLICATE instructions.
	ReplicateCount int

	// IOCount is the number of READ and WRITE instructions.
	IOCount int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}

func computeStats(p *Program) Stats {
	s := Stats{
		InstructionCount: len(p.instructions),
		SourceBytes:      len(p.source),
	}
	for _, instr := range p.instructions {
		switch instr.Op {
		case op.LoopStart:
			s.LoopCount++
		case op.Zero:
			s.ZeroCount++
		case op.Replicate:
			s.ReplicateCount++
		case op.Read, op.Write:
			s.IOCount++
		}
	}
	return s
}
