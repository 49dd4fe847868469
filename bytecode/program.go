package bytecode

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/tape/op"
)

// Program represents a compiled tape program.
// It is immutable after creation and safe for concurrent use.
type Program struct {
	instructions []Instruction
	source       string
	filename     string

	// Source map: one location per instruction for error reporting
	locations []SourceLocation
}

// ProgramParams contains parameters for creating a new Program.
type ProgramParams struct {
	Instructions []Instruction
	Locations    []SourceLocation
	Source       string
	Filename     string
}

// NewProgram creates a new immutable Program from the given parameters.
// Input slices are copied and loop targets are resolved with Link. An error
// is returned if the loops are not balanced.
func NewProgram(params ProgramParams) (*Program, error) {
	if params.Locations != nil && len(params.Locations) != len(params.Instructions) {
		return nil, fmt.Errorf("bytecode: %d locations for %d instructions",
			len(params.Locations), len(params.Instructions))
	}
	p := &Program{
		instructions: copyInstructions(params.Instructions),
		locations:    copyLocations(params.Locations),
		source:       params.Source,
		filename:     params.Filename,
	}
	if mismatches := Link(p.instructions); len(mismatches) > 0 {
		return nil, fmt.Errorf("bytecode: %s", mismatches[0])
	}
	return p, nil
}

// InstructionCount returns the number of instructions.
func (p *Program) InstructionCount() int {
	return len(p.instructions)
}

// InstructionAt returns the instruction at the given index.
func (p *Program) InstructionAt(index int) Instruction {
	return p.instructions[index]
}

// Opcodes returns a newly allocated slice of the program's opcodes.
func (p *Program) Opcodes() []op.Code {
	codes := make([]op.Code, len(p.instructions))
	for i, instr := range p.instructions {
		codes[i] = instr.Op
	}
	return codes
}

// LocationAt returns the source location for the instruction at the given index.
func (p *Program) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(p.locations) {
		return SourceLocation{}
	}
	return p.locations[ip]
}

// LocationCount returns the number of recorded source locations.
func (p *Program) LocationCount() int {
	return len(p.locations)
}

// Source returns the source code the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// Filename returns the source filename.
func (p *Program) Filename() string {
	return p.filename
}

// GetSourceLine returns the source code line at the given 1-based line number.
func (p *Program) GetSourceLine(lineNum int) string {
	if lineNum < 1 || p.source == "" {
		return ""
	}
	lines := strings.Split(p.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Stats returns statistics about this program.
func (p *Program) Stats() Stats {
	return computeStats(p)
}
