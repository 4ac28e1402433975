package pompom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cfg := Config{Order: 4, MemoryMiB: 64, BootstrapKiB: 16, AdaptExp: 5}
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, cfg))
	require.Equal(t, headerSize, buf.Len())

	got, err := readHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	cfg := Config{Order: 3, MemoryMiB: 8}
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, cfg))

	tampered := buf.Bytes()
	tampered[0] ^= 0x01

	_, err := readHeader(bytes.NewReader(tampered))
	require.Error(t, err)
	var herr *HeaderError
	require.ErrorAs(t, err, &herr)
}

func TestReadHeaderRejectsOutOfRangeOrder(t *testing.T) {
	cfg := Config{Order: 3, MemoryMiB: 8}
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, cfg))

	tampered := buf.Bytes()
	tampered[4] = MaxOrder + 1

	_, err := readHeader(bytes.NewReader(tampered))
	require.Error(t, err)
}

func TestReadHeaderRejectsShortInput(t *testing.T) {
	_, err := readHeader(bytes.NewReader([]byte{'p', 'i', 'm'}))
	require.Error(t, err)
}
