// Package lexer filters tape source code down to its instruction symbols.
package lexer

import (
	"unicode/utf8"

	"github.com/deepnoodle-ai/tape/internal/token"
)

// Lexer walks source text and yields one token per instruction symbol.
// Every other character is skipped as a comment.
type Lexer struct {
	input     string
	file      string
	pos       int
	line      int
	lineStart int
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFile sets the filename recorded in token positions.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// New returns a Lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Next returns the next instruction token, or a token of type EOF once the
// input is exhausted.
func (l *Lexer) Next() token.Token {
	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		pos := token.Position{
			Char:      l.pos,
			LineStart: l.lineStart,
			Line:      l.line,
			Column:    l.pos - l.lineStart,
			File:      l.file,
		}
		l.pos += size
		if ch == '\n' {
			l.line++
			l.lineStart = l.pos
			continue
		}
		if typ := token.Lookup(ch); typ != token.COMMENT {
			return token.Token{Type: typ, Literal: string(ch), Position: pos}
		}
	}
	return token.Token{
		Type: token.EOF,
		Position: token.Position{
			Char:      l.pos,
			LineStart: l.lineStart,
			Line:      l.line,
			Column:    l.pos - l.lineStart,
			File:      l.file,
		},
	}
}

// Tokens lexes the remaining input. The trailing EOF token is not included.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}
