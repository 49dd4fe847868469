// Package compiler turns tape source code into a bytecode.Program.
//
// # Folding
//
// The compiler consumes the instruction symbols in a single pass. Runs of
// '+' and '-' accumulate into one wrapping byte delta and runs of '<' and '>'
// accumulate into one pointer offset. A pending accumulator is flushed as a
// single ADD or SHIFT as soon as a symbol of another class arrives, and at
// end of input. An accumulator that nets out to zero is dropped, so ADD and
// SHIFT operands are never zero:
//
//	"+++--"  -> ADD 1
//	"+-"     -> (nothing)
//	"<<<"    -> SHIFT -3
//
// # Loops
//
// '[' and ']' are emitted as LOOP_START and LOOP_END placeholders. Once the
// scan completes, bytecode.Link pairs them with a stack and stores each
// partner's index, so the VM jumps in O(1) and nesting depth never turns into
// recursion depth. Every unmatched bracket is reported, each with its source
// position; any of them fails the compilation.
package compiler

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/errors"
	"github.com/deepnoodle-ai/tape/internal/lexer"
	"github.com/deepnoodle-ai/tape/internal/token"
	"github.com/deepnoodle-ai/tape/op"
)

// Compiler is used to compile tape source code into bytecode.
type Compiler struct {
	// Source filename, used in error messages
	filename string

	// Original source code (for better error messages)
	source string

	instructions []bytecode.Instruction
	positions    []token.Position

	// Pending run of '+'/'-' and where it started
	add      byte
	addStart token.Position

	// Pending run of '<'/'>' and where it started
	shift      int
	shiftStart token.Position

	// Class of the previous symbol, used to detect the start of a run
	prev token.Type
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithFilename sets the filename used in error messages.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// New creates and returns a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles the given source and returns immutable bytecode.
func Compile(source string, opts ...Option) (*bytecode.Program, error) {
	return New(opts...).Compile(source)
}

// Compile compiles the given source. A Compiler may be reused; each call
// starts from a clean state.
func (c *Compiler) Compile(source string) (*bytecode.Program, error) {
	c.reset(source)

	l := lexer.New(source, lexer.WithFile(c.filename))
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			break
		}
		c.compileToken(tok)
	}
	c.flushAdd()
	c.flushShift()

	mismatches := bytecode.Link(c.instructions)
	if len(mismatches) > 0 {
		errs := make([]*errors.CompileError, 0, len(mismatches))
		for _, m := range mismatches {
			errs = append(errs, c.mismatchError(m))
		}
		return nil, errors.Combine(errs)
	}

	locations := make([]bytecode.SourceLocation, len(c.positions))
	for i, pos := range c.positions {
		locations[i] = bytecode.SourceLocation{
			Line:   pos.LineNumber(),
			Column: pos.ColumnNumber(),
		}
	}
	return bytecode.NewProgram(bytecode.ProgramParams{
		Instructions: c.instructions,
		Locations:    locations,
		Source:       source,
		Filename:     c.filename,
	})
}

func (c *Compiler) reset(source string) {
	c.source = source
	c.instructions = nil
	c.positions = nil
	c.add = 0
	c.shift = 0
	c.prev = ""
}

func (c *Compiler) compileToken(tok token.Token) {
	// Any symbol outside a class ends the pending run of that class
	if !tok.Type.IsCellOp() {
		c.flushAdd()
	}
	if !tok.Type.IsPointerOp() {
		c.flushShift()
	}
	switch tok.Type {
	case token.INCREMENT, token.DECREMENT:
		if !c.prev.IsCellOp() {
			c.addStart = tok.Position
		}
		if tok.Type == token.INCREMENT {
			c.add++
		} else {
			c.add--
		}
	case token.LEFT, token.RIGHT:
		if !c.prev.IsPointerOp() {
			c.shiftStart = tok.Position
		}
		if tok.Type == token.RIGHT {
			c.shift = bytecode.WrapOffset(c.shift + 1)
		} else {
			c.shift = bytecode.WrapOffset(c.shift - 1)
		}
	case token.OPEN:
		c.emit(bytecode.NewLoopStart(), tok.Position)
	case token.CLOSE:
		c.emit(bytecode.NewLoopEnd(), tok.Position)
	case token.READ:
		c.emit(bytecode.NewRead(), tok.Position)
	case token.WRITE:
		c.emit(bytecode.NewWrite(), tok.Position)
	}
	c.prev = tok.Type
}

func (c *Compiler) flushAdd() {
	if c.add != 0 {
		c.emit(bytecode.NewAdd(c.add), c.addStart)
		c.add = 0
	}
}

func (c *Compiler) flushShift() {
	if c.shift != 0 {
		c.emit(bytecode.NewShift(c.shift), c.shiftStart)
		c.shift = 0
	}
}

func (c *Compiler) emit(instr bytecode.Instruction, pos token.Position) int {
	c.instructions = append(c.instructions, instr)
	c.positions = append(c.positions, pos)
	return len(c.instructions) - 1
}

func (c *Compiler) mismatchError(m bytecode.Mismatch) *errors.CompileError {
	pos := c.positions[m.Index]
	filename := c.filename
	if filename == "" {
		filename = "unknown"
	}
	err := &errors.CompileError{
		Filename:   filename,
		Line:       pos.LineNumber(),
		Column:     pos.ColumnNumber(),
		SourceLine: c.getSourceLine(pos.Line),
	}
	if m.Op == op.LoopStart {
		err.Code = errors.E1001
		err.Message = "unmatched '['"
		err.Note = "this loop is never closed"
		err.Err = errors.ErrUnmatchedOpen
	} else {
		err.Code = errors.E1002
		err.Message = "unmatched ']'"
		err.Note = fmt.Sprintf("no loop is open at offset %d", pos.Char)
		err.Err = errors.ErrUnmatchedClose
	}
	return err
}

// getSourceLine returns the 0-indexed line of the source being compiled.
func (c *Compiler) getSourceLine(line int) string {
	lines := strings.Split(c.source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}
