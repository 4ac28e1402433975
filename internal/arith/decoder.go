package arith

import "github.com/jkataja/pompom/internal/bitio"

// Decoder mirrors Encoder: it narrows [low, high] against cumulative
// frequency tables and reconstructs, from the bits already consumed, which
// sub-range the encoder's "value" fell into.
type Decoder struct {
	r *bitio.Reader

	low   uint64
	high  uint64
	value uint64
}

// NewDecoder returns a Decoder primed by reading CodeBits/8 bytes (one bit
// at a time) from r.
func NewDecoder(r *bitio.Reader) *Decoder {
	d := &Decoder{r: r, low: 0, high: Top}
	for i := 0; i < CodeBits; i++ {
		d.value = (d.value << 1) | b2u(r.ReadBit())
	}
	return d
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Target returns the cumulative frequency that the currently buffered value
// falls at, given the distribution's total. The caller uses this to find
// which symbol's [L(c), R(c)) range contains it, then calls Narrow with
// that symbol's endpoints to consume the bits belonging to it.
func (d *Decoder) Target(total uint32) uint32 {
	rng := (d.high - d.low) + 1
	freq := (((d.value-d.low)+1)*uint64(total) - 1) / rng
	if freq >= uint64(total) {
		invariantViolation("decoder target %d exceeds total %d", freq, total)
	}
	return uint32(freq)
}

// Narrow consumes the bits belonging to the symbol whose cumulative range is
// [lo, hi) out of total, renormalizing and pulling fresh bits from r as
// needed.
func (d *Decoder) Narrow(lo, hi, total uint32) {
	if hi <= lo {
		invariantViolation("zero frequency for decoded symbol")
	}
	rng := (d.high - d.low) + 1
	d.high = d.low + (rng*uint64(hi))/uint64(total) - 1
	d.low = d.low + (rng*uint64(lo))/uint64(total)

	d.renormalize()
}

func (d *Decoder) renormalize() {
	for {
		switch {
		case (d.high & Half) == (d.low & Half):
			// matching top bit, nothing to undo
		case d.low&Qtr != 0 && d.high&Qtr == 0:
			d.value ^= Qtr
			d.low &= Qtr - 1
			d.high |= Qtr
		default:
			return
		}
		d.low = (d.low << 1) & Top
		d.high = ((d.high << 1) | 1) & Top
		d.value = ((d.value << 1) | b2u(d.r.ReadBit())) & Top
	}
}

// EOF reports whether the underlying bit reader has been exhausted. The
// driver treats running past end-of-input before EOS was decoded as a
// TruncationError.
func (d *Decoder) EOF() bool {
	return d.r.EOF()
}
