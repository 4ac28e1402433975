package bitio

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bits := make([]bool, 10000)
	for i := range bits {
		bits[i] = rng.Intn(2) == 1
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, b := range bits {
		w.WriteBit(b)
	}
	w.Pad()
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	for i, want := range bits {
		got := r.ReadBit()
		require.Equal(t, want, got, "bit %d", i)
	}
}

func TestWriterPadsPartialByte(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteBit(true)
	w.WriteBit(false)
	w.WriteBit(true)
	w.Pad()
	require.NoError(t, w.Flush())
	require.Equal(t, 1, buf.Len())
	require.Equal(t, byte(0b10100000), buf.Bytes()[0])
}

func TestReaderEOFReturnsZeroBits(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	require.False(t, r.EOF())
	got := r.ReadBit()
	require.False(t, got)
	require.True(t, r.EOF())
}
