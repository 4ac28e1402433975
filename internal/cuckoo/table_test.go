package cuckoo

import (
	"math/rand"
	"testing"

	"github.com/jkataja/pompom/internal/bitset256"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, n uint32) *Table {
	tbl, err := New(n, CRC32c)
	require.NoError(t, err)
	return tbl
}

func TestRootSeededOnReset(t *testing.T) {
	tbl := newTestTable(t, 256)
	require.True(t, tbl.Contains(RootKey))
	require.Equal(t, uint16(1), tbl.Count(RootKey))
}

func TestInsertThenContains(t *testing.T) {
	tbl := newTestTable(t, 1024)
	key := ContextKey([]byte{'a'}, 1)
	require.False(t, tbl.Contains(key))
	require.True(t, tbl.Insert(key))
	require.True(t, tbl.Contains(key))
	require.GreaterOrEqual(t, tbl.Count(key), uint16(0))
}

func TestSeenIncrementsCountAndFollower(t *testing.T) {
	tbl := newTestTable(t, 1024)
	parent := ContextKey([]byte{'a'}, 1)
	require.True(t, tbl.Seen(parent))
	child := parent.Child('b')
	require.True(t, tbl.Seen(child))
	require.Equal(t, uint16(1), tbl.Count(child))
	require.True(t, tbl.HasFollower(parent, 'b'))
	require.False(t, tbl.HasFollower(parent, 'c'))

	require.True(t, tbl.Seen(child))
	require.Equal(t, uint16(2), tbl.Count(child))
}

func TestExclusivityAcrossManyKeys(t *testing.T) {
	tbl := newTestTable(t, 4096)
	seen := map[Key]bool{RootKey: true}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		b := byte(rng.Intn(256))
		k := ContextKey([]byte{b, byte(i)}, 2)
		if tbl.Full() {
			break
		}
		if !tbl.Seen(k) {
			break
		}
		seen[k] = true
	}
	for k := range seen {
		require.True(t, tbl.Contains(k))
	}
}

func TestRescaleHalvesCountsFloorsAtZero(t *testing.T) {
	tbl := newTestTable(t, 1024)
	key := ContextKey([]byte{'x'}, 1)
	require.True(t, tbl.Seen(key))
	require.True(t, tbl.Seen(key))
	require.True(t, tbl.Seen(key))
	before := tbl.Count(key)
	require.Equal(t, uint16(3), before)

	tbl.Rescale()
	require.Equal(t, before>>1, tbl.Count(key))
	require.True(t, tbl.Contains(key))

	tbl.Rescale()
	require.Equal(t, uint16(0), tbl.Count(key))
	require.True(t, tbl.Contains(key), "rescale must not evict")
}

func TestResetClearsEverythingButRoot(t *testing.T) {
	tbl := newTestTable(t, 1024)
	key := ContextKey([]byte{'z'}, 1)
	require.True(t, tbl.Seen(key))
	require.True(t, tbl.Contains(key))

	tbl.Reset()
	require.False(t, tbl.Contains(key))
	require.True(t, tbl.Contains(RootKey))
	require.False(t, tbl.Full())
}

func TestSaturationEventuallySignalsFull(t *testing.T) {
	tbl := newTestTable(t, 64)
	inserted := 0
	for i := 0; i < 100000; i++ {
		k := Key(uint64(i+1)<<8 | 0x8100000000000000)
		if !tbl.Seen(k) {
			require.True(t, tbl.Full())
			return
		}
		inserted++
	}
	t.Fatalf("table of capacity 64 never saturated after %d inserts", inserted)
}

func TestFollowerVecZeroForUnknownKey(t *testing.T) {
	tbl := newTestTable(t, 1024)
	v := tbl.FollowerVec(ContextKey([]byte{'q'}, 1))
	require.Equal(t, bitset256.Set{}, v)
}

func TestHasherKindsAgreeOnExistence(t *testing.T) {
	crc := newTestTable(t, 2048)
	fnv, err := New(2048, FNVJenkins)
	require.NoError(t, err)

	keys := []Key{
		ContextKey([]byte{'a'}, 1),
		ContextKey([]byte{'a', 'b'}, 2),
		ContextKey([]byte{'a', 'b', 'c'}, 3),
	}
	for _, k := range keys {
		require.True(t, crc.Seen(k))
		require.True(t, fnv.Seen(k))
		require.True(t, crc.Contains(k))
		require.True(t, fnv.Contains(k))
	}
}
