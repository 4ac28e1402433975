package arith

import "fmt"

// invariantViolation raises an InternalInvariantError: a coder precondition
// the caller was required to establish (symbol in range, non-zero
// frequency, ...) did not hold. These signal programmer error in a caller
// and are not meant to be recovered from mid-stream.
func invariantViolation(format string, args ...any) {
	panic(fmt.Errorf("arith: internal invariant violated: "+format, args...))
}
