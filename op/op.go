// Package op defines the opcodes used by the tape compiler, optimizer and
// virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Cell and pointer arithmetic
	Add   Code = 1
	Shift Code = 2

	// Jump
	LoopStart Code = 10
	LoopEnd   Code = 11

	// Replaced loops
	Zero      Code = 20
	Replicate Code = 21

	// I/O
	Read  Code = 30
	Write Code = 31
)

// Info contains information about an opcode.
type Info struct {
	Code   Code
	Name   string
	Symbol string // source symbol the opcode is folded from, if any
	IsJump bool
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op     Code
		name   string
		symbol string
		jump   bool
	}
	ops := []opInfo{
		{Add, "ADD", "+", false},
		{Shift, "SHIFT", ">", false},
		{LoopStart, "LOOP_START", "[", true},
		{LoopEnd, "LOOP_END", "]", true},
		{Zero, "ZERO", "", false},
		{Replicate, "REPLICATE", "", false},
		{Read, "READ", ",", false},
		{Write, "WRITE", ".", false},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:   o.op,
			Name:   o.name,
			Symbol: o.symbol,
			IsJump: o.jump,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the opcode name, for example "LOOP_START".
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "INVALID"
}
