package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Optimization errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unmatched '['
	E1002 ErrorCode = "E1002" // Unmatched ']'

	// Optimization errors (E2xxx)
	E2001 ErrorCode = "E2001" // Detected infinite loop

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Input not available
	E3002 ErrorCode = "E3002" // End of input
	E3003 ErrorCode = "E3003" // Non-terminating replicated loop
	E3004 ErrorCode = "E3004" // Execution halted
	E3005 ErrorCode = "E3005" // Output failed
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unmatched '['",
	E1002: "unmatched ']'",

	E2001: "detected infinite loop",

	E3001: "input not available",
	E3002: "end of input",
	E3003: "non-terminating loop",
	E3004: "execution halted",
	E3005: "output failed",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "optimize"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
