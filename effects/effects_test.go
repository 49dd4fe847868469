package effects

import (
	"testing"

	"github.com/deepnoodle-ai/tape/bytecode"
	"github.com/deepnoodle-ai/tape/errors"
	"github.com/stretchr/testify/require"
)

var (
	add   = bytecode.NewAdd
	shift = bytecode.NewShift
)

func TestAnalyzePure(t *testing.T) {
	tests := []struct {
		name       string
		body       []bytecode.Instruction
		shift      int
		deltas     []bytecode.Delta
		stationary bool
	}{
		{
			name:       "decrement",
			body:       []bytecode.Instruction{add(255)},
			deltas:     []bytecode.Delta{{Offset: 0, Value: 255}},
			stationary: true,
		},
		{
			name:       "multiply",
			body:       []bytecode.Instruction{add(255), shift(2), add(1), shift(-2)},
			deltas:     []bytecode.Delta{{Offset: 0, Value: 255}, {Offset: 2, Value: 1}},
			stationary: true,
		},
		{
			name: "copy to two cells",
			body: []bytecode.Instruction{add(255), shift(1), add(3), shift(1), add(253), shift(-2)},
			deltas: []bytecode.Delta{
				{Offset: 0, Value: 255}, {Offset: 1, Value: 3}, {Offset: 2, Value: 253},
			},
			stationary: true,
		},
		{
			name:   "scan right",
			body:   []bytecode.Instruction{shift(1)},
			shift:  1,
			deltas: nil,
		},
		{
			name:   "marching with deltas",
			body:   []bytecode.Instruction{add(1), shift(-3), add(2)},
			shift:  -3,
			deltas: []bytecode.Delta{{Offset: -3, Value: 2}, {Offset: 0, Value: 1}},
		},
		{
			name:       "revisited offset",
			body:       []bytecode.Instruction{add(2), shift(1), add(1), shift(-1), add(255)},
			deltas:     []bytecode.Delta{{Offset: 0, Value: 1}, {Offset: 1, Value: 1}},
			stationary: true,
		},
		{
			name:       "wrapping shifts",
			body:       []bytecode.Instruction{add(255), shift(bytecode.TapeSize / 2), shift(bytecode.TapeSize / 2)},
			deltas:     []bytecode.Delta{{Offset: 0, Value: 255}},
			stationary: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Analyze(tt.body)
			require.NoError(t, err)
			require.True(t, res.Pure)
			require.Equal(t, -1, res.Blocker)
			require.Equal(t, tt.stationary, res.Stationary())
			require.Equal(t, !tt.stationary, res.Marching())
			require.True(t, bytecode.NewEffects(tt.shift, tt.deltas).Equal(res.Effects),
				"got %s", res.Effects)
		})
	}
}

func TestAnalyzeImpure(t *testing.T) {
	loopStart := bytecode.NewLoopStart()
	loopEnd := bytecode.NewLoopEnd()
	tests := []struct {
		name    string
		body    []bytecode.Instruction
		blocker int
	}{
		{"write", []bytecode.Instruction{add(255), bytecode.NewWrite()}, 1},
		{"read", []bytecode.Instruction{bytecode.NewRead(), add(255)}, 0},
		{"nested loop", []bytecode.Instruction{add(255), shift(1), loopStart, add(255), loopEnd}, 2},
		{"zero", []bytecode.Instruction{add(255), shift(1), bytecode.NewZero(), shift(-1)}, 2},
		{"replicate", []bytecode.Instruction{
			bytecode.NewReplicate(bytecode.NewEffects(1, nil)), add(255),
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Analyze(tt.body)
			require.NoError(t, err)
			require.False(t, res.Pure)
			require.False(t, res.Stationary())
			require.False(t, res.Marching())
			require.Nil(t, res.Effects)
			require.Equal(t, tt.blocker, res.Blocker)
		})
	}
}

func TestAnalyzeInfiniteLoop(t *testing.T) {
	bodies := map[string][]bytecode.Instruction{
		"empty":             nil,
		"cancelling":        {add(1), add(255)},
		"touches neighbour": {shift(1), add(1), shift(-1)},
		"nets to zero":      {add(1), shift(1), shift(-1), add(255)},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Analyze(body)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrInfiniteLoop))
		})
	}
}

func TestIsZeroing(t *testing.T) {
	require.True(t, IsZeroing(bytecode.NewEffects(0, []bytecode.Delta{{Offset: 0, Value: 255}})))
	require.True(t, IsZeroing(bytecode.NewEffects(0, []bytecode.Delta{{Offset: 0, Value: 1}})))
	require.False(t, IsZeroing(bytecode.NewEffects(0, []bytecode.Delta{{Offset: 0, Value: 2}})))
	require.False(t, IsZeroing(bytecode.NewEffects(1, []bytecode.Delta{{Offset: 0, Value: 255}})))
	require.False(t, IsZeroing(bytecode.NewEffects(0, []bytecode.Delta{
		{Offset: 0, Value: 255}, {Offset: 1, Value: 1},
	})))
	require.False(t, IsZeroing(nil))
}
