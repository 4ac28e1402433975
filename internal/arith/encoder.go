package arith

import "github.com/jkataja/pompom/internal/bitio"

// Encoder narrows a [low, high] code range (high inclusive) symbol by symbol against
// cumulative-frequency tables supplied by the caller, emitting bits to a
// bitio.Writer as the range renormalizes.
type Encoder struct {
	w *bitio.Writer

	low  uint64
	high uint64

	// bitsToFollow counts opposite bits pending emission across the E3
	// ("straddling the middle half") renormalization case.
	bitsToFollow uint64
}

// NewEncoder returns an Encoder that writes its bitstream to w.
func NewEncoder(w *bitio.Writer) *Encoder {
	return &Encoder{w: w, low: 0, high: Top}
}

// Encode narrows the code range to the sub-range [lo, hi) out of total, then
// renormalizes, emitting bits as needed.
//
// lo and hi are a symbol's left/right endpoints in the caller's
// cumulative-frequency table, and total is that table's overall total
// (dist[R(eos)], where eos is the caller's largest symbol index). The same
// values must reach the paired Decoder's Target and Narrow calls.
func (e *Encoder) Encode(lo, hi, total uint32) {
	if total == 0 {
		invariantViolation("zero total frequency")
	}
	if hi <= lo {
		invariantViolation("zero frequency for encoded symbol")
	}

	rng := (e.high - e.low) + 1
	e.high = e.low + (rng*uint64(hi))/uint64(total) - 1
	e.low = e.low + (rng*uint64(lo))/uint64(total)

	e.renormalize()
}

func (e *Encoder) renormalize() {
	for {
		switch {
		case (e.high & Half) == (e.low & Half):
			e.bitPlusFollow(e.high&Half != 0)
		case e.low&Qtr != 0 && e.high&Qtr == 0:
			e.bitsToFollow++
			e.low &= Qtr - 1
			e.high |= Qtr
		default:
			return
		}
		e.low = (e.low << 1) & Top
		e.high = ((e.high << 1) | 1) & Top
	}
}

// Finish emits the bits needed to disambiguate the final range and pads the
// output to a byte boundary. It does not flush the underlying bitio.Writer
// — call Flush on that separately, before anything else (such as a CRC
// trailer) is written to the same underlying stream.
func (e *Encoder) Finish() {
	e.bitsToFollow++
	e.bitPlusFollow(e.low >= Qtr)
	e.w.Pad()
}

func (e *Encoder) bitPlusFollow(bit bool) {
	e.w.WriteBit(bit)
	for ; e.bitsToFollow > 0; e.bitsToFollow-- {
		e.w.WriteBit(!bit)
	}
}
