// Package token defines the instruction symbols recognized when lexing
// tape source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one instruction symbol lexed from the input source code.
type Token struct {
	Type     Type
	Literal  string
	Position Position
}

// Token types
const (
	EOF     Type = "EOF"
	COMMENT Type = "COMMENT"

	INCREMENT Type = "+"
	DECREMENT Type = "-"
	LEFT      Type = "<"
	RIGHT     Type = ">"
	OPEN      Type = "["
	CLOSE     Type = "]"
	READ      Type = ","
	WRITE     Type = "."
)

var symbols = map[rune]Type{
	'+': INCREMENT,
	'-': DECREMENT,
	'<': LEFT,
	'>': RIGHT,
	'[': OPEN,
	']': CLOSE,
	',': READ,
	'.': WRITE,
}

// Lookup classifies a single source character. Anything that is not one of
// the eight instruction symbols is a COMMENT.
func Lookup(ch rune) Type {
	if t, ok := symbols[ch]; ok {
		return t
	}
	return COMMENT
}

// IsCellOp reports whether the token changes the value of the current cell.
func (t Type) IsCellOp() bool {
	return t == INCREMENT || t == DECREMENT
}

// IsPointerOp reports whether the token moves the data pointer.
func (t Type) IsPointerOp() bool {
	return t == LEFT || t == RIGHT
}
