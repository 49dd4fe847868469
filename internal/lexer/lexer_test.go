package lexer

import (
	"testing"

	"github.com/deepnoodle-ai/tape/internal/token"
	"github.com/stretchr/testify/require"
)

func TestNextToken(t *testing.T) {
	input := "+a-<\n >[ ] , .#"

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
		line            int
		column          int
	}{
		{token.INCREMENT, "+", 0, 0},
		{token.DECREMENT, "-", 0, 2},
		{token.LEFT, "<", 0, 3},
		{token.RIGHT, ">", 1, 1},
		{token.OPEN, "[", 1, 2},
		{token.CLOSE, "]", 1, 4},
		{token.READ, ",", 1, 6},
		{token.WRITE, ".", 1, 8},
		{token.EOF, "", 1, 10},
	}
	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d]", i)
		require.Equal(t, tt.line, tok.Position.Line, "tests[%d]", i)
		require.Equal(t, tt.column, tok.Position.Column, "tests[%d]", i)
	}
}

func TestOnlyComments(t *testing.T) {
	l := New("hello world\nthis is prose")
	require.Empty(t, l.Tokens())
	require.Equal(t, token.EOF, l.Next().Type)
}

func TestMultibyteComments(t *testing.T) {
	toks := New("ä+ö-", WithFile("x.b")).Tokens()
	require.Len(t, toks, 2)
	require.Equal(t, token.INCREMENT, toks[0].Type)
	require.Equal(t, 2, toks[0].Position.Char)
	require.Equal(t, "x.b", toks[0].Position.File)
	require.Equal(t, token.DECREMENT, toks[1].Type)
	require.Equal(t, 5, toks[1].Position.Char)
}
