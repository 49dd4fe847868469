// Package dis supports analysis of compiled programs by disassembling them
// into a listing of instructions with their operands and source locations.
package dis

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/op"
)

// Instruction represents a single instruction and its operand.
type Instruction struct {
	Index      int
	Name       string
	Opcode     op.Code
	Operand    string
	Location   bytecode.SourceLocation
	Annotation string
}

// Disassemble returns a parsed representation of the given program.
func Disassemble(program *bytecode.Program) []Instruction {
	instructions := make([]Instruction, 0, program.InstructionCount())
	for i := 0; i < program.InstructionCount(); i++ {
		instr := program.InstructionAt(i)
		var operand, annotation string
		switch instr.Op {
		case op.Add:
			operand = fmt.Sprintf("%d", instr.Value)
			annotation = fmt.Sprintf("%+d", int8(instr.Value))
		case op.Shift:
			operand = fmt.Sprintf("%d", instr.Offset)
		case op.LoopStart, op.LoopEnd:
			operand = fmt.Sprintf("%d", instr.Target)
			annotation = fmt.Sprintf("-> %d", instr.Target)
		case op.Replicate:
			operand = fmt.Sprintf("%d", instr.Effects.Shift())
			if instr.Effects.IsStationary() {
				annotation = "stationary " + instr.Effects.String()
			} else {
				annotation = "marching " + instr.Effects.String()
			}
		}
		instructions = append(instructions, Instruction{
			Index:      i,
			Name:       instr.Op.String(),
			Opcode:     instr.Op,
			Operand:    operand,
			Location:   program.LocationAt(i),
			Annotation: annotation,
		})
	}
	return instructions
}

// Print a tabular representation of the given instructions to the writer.
func Print(instructions []Instruction, writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "INDEX\tOPCODE\tOPERAND\tLOCATION\t")
	for _, instr := range instructions {
		loc := ""
		if !instr.Location.IsZero() {
			loc = instr.Location.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t  %s\n",
			instr.Index, instr.Name, instr.Operand, loc, instr.Annotation)
	}
	return tw.Flush()
}
