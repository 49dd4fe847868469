package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/tape/compiler"
	"github.com/deepnoodle-ai/tape/op"
	"github.com/deepnoodle-ai/tape/optimizer"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	prog, err := compiler.Compile("+++[->>+<<]\n-.")
	require.NoError(t, err)
	prog, err = optimizer.Optimize(prog)
	require.NoError(t, err)

	instructions := Disassemble(prog)
	require.Len(t, instructions, 4)

	require.Equal(t, Instruction{
		Index: 0, Name: "ADD", Opcode: op.Add, Operand: "3",
		Location: prog.LocationAt(0), Annotation: "+3",
	}, instructions[0])
	require.Equal(t, op.Replicate, instructions[1].Opcode)
	require.Equal(t, "0", instructions[1].Operand)
	require.Equal(t, "stationary shift=0 {0:255 2:1}", instructions[1].Annotation)
	require.Equal(t, "-1", instructions[2].Annotation)
	require.Equal(t, 2, instructions[2].Location.Line)
	require.Equal(t, "WRITE", instructions[3].Name)
}

func TestDisassembleLoops(t *testing.T) {
	prog, err := compiler.Compile(",[.,]")
	require.NoError(t, err)
	instructions := Disassemble(prog)
	require.Equal(t, "-> 4", instructions[1].Annotation)
	require.Equal(t, "-> 1", instructions[4].Annotation)
}

func TestPrint(t *testing.T) {
	prog, err := compiler.Compile("+>[<]")
	require.NoError(t, err)
	prog, err = optimizer.Optimize(prog)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(Disassemble(prog), &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "INDEX")
	require.Contains(t, lines[0], "OPCODE")
	require.Contains(t, lines[1], "ADD")
	require.Contains(t, lines[2], "SHIFT")
	require.Contains(t, lines[3], "REPLICATE")
	require.Contains(t, lines[3], "marching shift=-1 {}")
	require.Contains(t, lines[3], "1:3")
}
