package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoopStart)
	require.Equal(t, "LOOP_START", info.Name)
	require.Equal(t, "[", info.Symbol)
	require.True(t, info.IsJump)
	require.Equal(t, LoopStart, info.Code)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code Code
		name string
		jump bool
	}{
		{Add, "ADD", false},
		{Shift, "SHIFT", false},
		{LoopStart, "LOOP_START", true},
		{LoopEnd, "LOOP_END", true},
		{Zero, "ZERO", false},
		{Replicate, "REPLICATE", false},
		{Read, "READ", false},
		{Write, "WRITE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.jump, info.IsJump)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestInvalid(t *testing.T) {
	require.Equal(t, "INVALID", Invalid.String())
	require.Equal(t, "INVALID", Code(99).String())
	require.Equal(t, Info{}, GetInfo(Code(99)))
}
