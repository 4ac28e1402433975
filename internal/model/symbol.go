// Package model implements the PPM modeller: it drives per-order
// cumulative-frequency distribution queries and the update/rescale policy
// over a cuckoo.Table, maintains the recent-text window used to build
// context keys, and performs bootstrap replay after a table reset.
package model

// Symbol is a code in the 258 symbol alphabet: bytes 0..255, Escape (256),
// EOS (257).
type Symbol uint16

const (
	// Escape is the distinguished escape-to-lower-order symbol.
	Escape Symbol = 256
	// EOS is the distinguished end-of-stream symbol.
	EOS Symbol = 257

	// DistLen is the length of a cumulative-frequency array: indices
	// 0..EOS are L(s) values, EOS+1 is R(EOS).
	DistLen = int(EOS) + 2

	// MinOrder and MaxOrder bound the user-chosen model order.
	MinOrder = 1
	MaxOrder = 6
)

// L returns the left (exclusive-below) endpoint index for symbol s in a
// cumulative distribution array.
func L(s Symbol) int { return int(s) }

// R returns the right endpoint index for symbol s in a cumulative
// distribution array.
func R(s Symbol) int { return int(s) + 1 }

// Dist is a cumulative-frequency table over the 258 symbol alphabet, plus
// EOS: Dist[L(s)] and Dist[R(s)] are s's left/right endpoints, and
// Dist[R(EOS)] is the total any caller must pass to the arithmetic coder.
type Dist [DistLen]uint32
