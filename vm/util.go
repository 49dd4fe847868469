package vm

import (
	"bufio"
	"io"
	"math/bits"

	"github.com/deepnoodle-ai/tape/bytecode"
)

// wrapPointer maps any index onto the tape.
func wrapPointer(p int) int {
	p %= bytecode.TapeSize
	if p < 0 {
		p += bytecode.TapeSize
	}
	return p
}

// repetitions returns the smallest reps in [0, 256) such that
// cell + reps*incr == 0 (mod 256), i.e. the number of passes a stationary
// loop stepping its cell by incr makes before exiting. ok is false when no
// such count exists and the loop would never exit. incr must be nonzero.
func repetitions(cell, incr byte) (reps byte, ok bool) {
	target := -cell
	// incr = 2^k * u with u odd. A solution exists only if 2^k divides the
	// target, and it is unique modulo 256 >> k.
	k := bits.TrailingZeros8(incr)
	if target&(1<<k-1) != 0 {
		return 0, false
	}
	u := incr >> k
	inv := u // correct to 3 bits for any odd u; each step doubles that
	inv *= 2 - u*inv
	inv *= 2 - u*inv
	mask := byte(0xff >> k)
	return (target >> k) * inv & mask, true
}

type byteWriter interface {
	io.ByteWriter
	Flush() error
}

func newByteWriter(w io.Writer) byteWriter {
	if bw, ok := w.(*bufio.Writer); ok {
		return bw
	}
	return bufio.NewWriter(w)
}

func newByteReader(r io.Reader) io.ByteReader {
	if r == nil {
		return nil
	}
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}
