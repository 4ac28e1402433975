// Package arith implements the classical Witten-Neal-Cleary binary
// arithmetic coder over a 32 bit code range, with the low/high
// underflow-counter ("bit_plus_follow") trick.
//
// Based on Witten, I.H., Neal, R. and Cleary, J.G. (1987) "Arithmetic coding
// for data compression," Comm ACM: 30(6): 520-540; June.
package arith

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Coder-wide constants  - - - - - - - - - - - - - - - - - - - - - - - - -

const (
	// CodeBits is the width of the coder's low/high registers.
	CodeBits = 32

	// Top is the all-ones value spanning CodeBits.
	Top uint64 = (1 << CodeBits) - 1

	// Qtr, Half and ThreeQtr divide the code range into quarters; these
	// are the thresholds the renormalization loop straddles.
	Qtr      uint64 = (Top + 1) / 4
	Half     uint64 = 2 * Qtr
	ThreeQtr uint64 = 3 * Qtr

	// MaxFreq is the largest cumulative frequency a distribution may carry
	// — chosen so range*freq fits comfortably in 64 bits.
	MaxFreq uint32 = (1 << 16) - 1

	// Rescale is the threshold on a distribution's total (R(EOS)) above
	// which the model must rescale before the next symbol is coded.
	Rescale uint32 = MaxFreq
)
