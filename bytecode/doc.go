// Package bytecode provides immutable representations of compiled tape
// programs.
//
// This package defines the output of compilation: a flat sequence of
// instructions in which every loop is a LOOP_START / LOOP_END pair whose
// jump targets are resolved once, at build time, so the virtual machine never
// scans for a matching bracket.
//
// # Key Types
//
//   - [Program]: An immutable compiled program
//   - [Instruction]: One operation plus its operand (value type)
//   - [Effects]: The net pointer shift and per-offset cell deltas of a loop
//     body that the optimizer proved pure
//   - [SourceLocation]: Maps instructions to source positions (value type)
//
// # Immutability Guarantees
//
// A Program is immutable after construction. Constructors copy input slices
// and accessors return values, never the backing slices:
//
//	prog.InstructionAt(0)
//	prog.LocationAt(i)
//
// The optimizer therefore produces a new Program rather than rewriting one in
// place, and a single Program may be executed by many VMs concurrently.
//
// # Tape geometry
//
// [TapeSize] is fixed. Pointer movements are stored as signed offsets already
// reduced modulo TapeSize (see [WrapOffset]), so a SHIFT operand is never zero
// and never larger in magnitude than half the tape.
//
// # Package Dependencies
//
// This package depends only on [github.com/deepnoodle-ai/tape/op].
package bytecode
