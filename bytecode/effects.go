package bytecode

import (
	"fmt"
	"sort"
	"strings"
)

// TapeSize is the number of cells on the tape.
const TapeSize = 100_000

// WrapOffset reduces a pointer offset modulo TapeSize into the signed range
// (-TapeSize/2, TapeSize/2].
func WrapOffset(n int) int {
	m := n % TapeSize
	if m < 0 {
		m += TapeSize
	}
	if m > TapeSize/2 {
		m -= TapeSize
	}
	return m
}

// Delta is the net amount one pass of a loop body adds to the cell at
// Offset, relative to the pointer position at loop entry.
type Delta struct {
	Offset int
	Value  byte
}

// Effects describes the net result of one pass through a pure loop body: the
// pointer moves by Shift and each listed offset changes by its delta.
// Effects is immutable after construction.
type Effects struct {
	shift  int
	deltas []Delta // sorted by offset, no zero values, no duplicate offsets
}

// NewEffects returns Effects for the given shift and deltas. Offsets are
// wrapped, deltas at the same offset are summed and zero deltas dropped.
func NewEffects(shift int, deltas []Delta) *Effects {
	merged := map[int]byte{}
	for _, d := range deltas {
		merged[WrapOffset(d.Offset)] += d.Value
	}
	var out []Delta
	for off, v := range merged {
		if v != 0 {
			out = append(out, Delta{Offset: off, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return &Effects{shift: WrapOffset(shift), deltas: copyDeltas(out)}
}

// Shift returns the net pointer movement of one pass.
func (e *Effects) Shift() int {
	return e.shift
}

// IsStationary returns true if one pass leaves the pointer where it started.
func (e *Effects) IsStationary() bool {
	return e.shift == 0
}

// DeltaCount returns the number of offsets touched by one pass.
func (e *Effects) DeltaCount() int {
	return len(e.deltas)
}

// DeltaAt returns the delta at the given index. Deltas are ordered by offset.
func (e *Effects) DeltaAt(index int) Delta {
	return e.deltas[index]
}

// Delta returns the net delta at the given relative offset, or 0 when the
// offset is not touched.
func (e *Effects) Delta(offset int) byte {
	offset = WrapOffset(offset)
	i := sort.Search(len(e.deltas), func(i int) bool { return e.deltas[i].Offset >= offset })
	if i < len(e.deltas) && e.deltas[i].Offset == offset {
		return e.deltas[i].Value
	}
	return 0
}

// Equal reports whether two Effects describe the same shift and deltas.
func (e *Effects) Equal(other *Effects) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.shift != other.shift || len(e.deltas) != len(other.deltas) {
		return false
	}
	for i := range e.deltas {
		if e.deltas[i] != other.deltas[i] {
			return false
		}
	}
	return true
}

// String returns a compact representation such as "shift=0 {0:255 2:1}".
func (e *Effects) String() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, len(e.deltas))
	for i, d := range e.deltas {
		parts[i] = fmt.Sprintf("%d:%d", d.Offset, d.Value)
	}
	return fmt.Sprintf("shift=%d {%s}", e.shift, strings.Join(parts, " "))
}
