package arith

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/jkataja/pompom/internal/bitio"
	"github.com/stretchr/testify/require"
)

// uniformDist returns a trivial cumulative-frequency table over n symbols,
// each with frequency 1.
func uniformDist(n int) []uint32 {
	dist := make([]uint32, n+1)
	for i := range dist {
		dist[i] = uint32(i)
	}
	return dist
}

func findSymbol(dist []uint32, freq uint32) int {
	for c := 0; c < len(dist)-1; c++ {
		if dist[c+1] > freq {
			return c
		}
	}
	return len(dist) - 2
}

func TestEncodeDecodeUniformRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const alphabet = 258
	dist := uniformDist(alphabet)
	total := dist[alphabet]

	syms := make([]int, 5000)
	for i := range syms {
		syms[i] = rng.Intn(alphabet)
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	enc := NewEncoder(w)
	for _, s := range syms {
		enc.Encode(dist[s], dist[s+1], total)
	}
	enc.Finish()
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	dec := NewDecoder(r)
	for i, want := range syms {
		freq := dec.Target(total)
		got := findSymbol(dist, freq)
		require.Equal(t, want, got, "symbol %d", i)
		dec.Narrow(dist[got], dist[got+1], total)
	}
}

func TestEncodeDecodeSkewedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	// A few symbols with widely different frequencies, biasing the coder
	// the way real PPM escape distributions do.
	freqs := []uint32{1, 1, 2000, 5, 50, 3}
	dist := make([]uint32, len(freqs)+1)
	for i, f := range freqs {
		dist[i+1] = dist[i] + f
	}
	total := dist[len(dist)-1]

	syms := make([]int, 3000)
	for i := range syms {
		syms[i] = rng.Intn(len(freqs))
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	enc := NewEncoder(w)
	for _, s := range syms {
		enc.Encode(dist[s], dist[s+1], total)
	}
	enc.Finish()
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	dec := NewDecoder(r)
	for i, want := range syms {
		freq := dec.Target(total)
		got := findSymbol(dist, freq)
		require.Equal(t, want, got, "symbol %d", i)
		dec.Narrow(dist[got], dist[got+1], total)
	}
}

func TestEncodeRejectsZeroFrequency(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	enc := NewEncoder(w)
	require.Panics(t, func() {
		enc.Encode(3, 3, 10)
	})
}
