package bytecode

// copyInstructions returns a copy of the given instruction slice.
func copyInstructions(src []Instruction) []Instruction {
	if src == nil {
		return nil
	}
	dst := make([]Instruction, len(src))
	copy(dst, src)
	return dst
}

// copyLocations returns a copy of the given location slice.
func copyLocations(src []SourceLocation) []SourceLocation {
	if src == nil {
		return nil
	}
	dst := make([]SourceLocation, len(src))
	copy(dst, src)
	return dst
}

// copyDeltas returns a copy of the given delta slice.
func copyDeltas(src []Delta) []Delta {
	if src == nil {
		return nil
	}
	dst := make([]Delta, len(src))
	copy(dst, src)
	return dst
}
