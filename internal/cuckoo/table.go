// Package cuckoo implements the fixed-capacity context-frequency table at
// the heart of the PPM model: a two-function cuckoo hash keyed by
// variable-length byte contexts, storing per-context symbol counts and,
// per occupied context, a 256 bit follower bitmap recording which trailing
// bytes the context has direct children for.
//
// The table never rehashes or resizes. Once it saturates — either the kick
// loop in Insert terminates without finding an empty slot, or the follower
// bitmap pool runs out of free slots — it self-declares full and must be
// Reset before more inserts succeed. Reset is the model's responsibility,
// not the table's: the table only reports saturation.
package cuckoo

import (
	"fmt"

	"github.com/jkataja/pompom/internal/bitset256"
)

// maxKicks bounds the cuckoo displacement loop in Insert.
const maxKicks = 10000

// followersBase is the first usable index in the follower pool; index 0 is
// the reserved "no followers known yet" sentinel.
const followersBase = 1

// Table is a fixed-capacity context -> (count, follower bitmap) store.
//
// Cyclic-free by construction: Table holds no reference back to whatever
// owns it, and the parent/child relationship between contexts is encoded
// purely in follower bitmap bits, never as a pointer.
type Table struct {
	hasher Hasher
	n      uint32 // capacity of keys/counts/followerIdx

	keys        []Key
	counts      []uint16
	followerIdx []uint32

	// followerVecs holds M 256 bit bitmaps. Index 0 is the null slot.
	followerVecs   []bitset256.Set
	followerVecsAt uint32
	followerVecsN  uint32 // M, count of bitmaps (including the null one)

	// Cached follower index lookup for the most recently queried key,
	// avoiding a repeat hash when distribute() and update() probe the
	// same parent context back to back.
	followerLastKey Key
	followerLastIdx uint32

	isFull bool
}

// Capacity computes N, the number of context slots a table built with a
// memMiB mebibyte budget should have: N = (memMiB*2^20) / (8+2+4+16),
// accounting for the key, count, follower-index and half-share-of-a-bitmap
// cost of each slot.
func Capacity(memMiB uint16) uint32 {
	const bytesPerSlot = 8 + 2 + 4 + 16
	return uint32((uint64(memMiB) << 20) / bytesPerSlot)
}

// HasherKind selects which Hasher implementation a new Table uses.
type HasherKind int

const (
	// CRC32c selects the hardware-eligible CRC-32C pair.
	CRC32c HasherKind = iota
	// FNVJenkins selects the portable FNV-1a / Jenkins pair.
	FNVJenkins
)

// New allocates a table with room for n contexts. It returns an
// *AllocationError if allocation fails (Go slice allocation failures surface
// as a runtime panic, not an error return, so New recovers the panic at the
// boundary the way the original C++ malloc/throw pairing did).
func New(n uint32, kind HasherKind) (t *Table, err error) {
	if n < 2 {
		return nil, fmt.Errorf("cuckoo: capacity %d too small", n)
	}

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			t, err = nil, &AllocationError{cause: rerr}
		}
	}()

	m := n / 2
	if m < 2 {
		m = 2
	}

	tbl := &Table{n: n}
	switch kind {
	case CRC32c:
		tbl.hasher = newCRC32cHasher(n)
	case FNVJenkins:
		tbl.hasher = newFNVJenkinsHasher(n)
	default:
		return nil, fmt.Errorf("cuckoo: unknown hasher kind %d", kind)
	}

	tbl.keys = make([]Key, n)
	tbl.counts = make([]uint16, n)
	tbl.followerIdx = make([]uint32, n)
	tbl.followerVecsN = m
	tbl.followerVecs = make([]bitset256.Set, m)

	tbl.reset()
	return tbl, nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Lookups  - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Contains reports whether key occupies one of its two candidate slots.
func (t *Table) Contains(key Key) bool {
	return t.keys[t.hasher.H1(key)] == key || t.keys[t.hasher.H2(key)] == key
}

// Count returns the stored frequency for key, or 0 if key is absent.
func (t *Table) Count(key Key) uint16 {
	a := t.hasher.H1(key)
	if t.keys[a] == key {
		return t.counts[a]
	}
	b := t.hasher.H2(key)
	if t.keys[b] == key {
		return t.counts[b]
	}
	return 0
}

// Full reports whether the table has declared itself saturated.
func (t *Table) Full() bool {
	return t.isFull
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Insert / Seen  - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Insert ensures key is present with count 0 and a freshly allocated
// follower slot, using bounded cuckoo displacement. It returns false, and
// marks the table full, if the kick loop doesn't terminate in maxKicks
// steps or the follower pool has no free slot left.
func (t *Table) Insert(key Key) bool {
	if t.Contains(key) {
		return true
	}
	if t.isFull {
		return false
	}
	if t.followerVecsAt >= t.followerVecsN {
		t.isFull = true
		return false
	}

	pos := t.hasher.H1(key)
	var value uint16
	follower := t.followerVecsAt
	t.followerVecsAt++

	for i := 0; i < maxKicks; i++ {
		if t.keys[pos] == 0 {
			t.keys[pos] = key
			t.counts[pos] = value
			t.followerIdx[pos] = follower
			return true
		}

		key, t.keys[pos] = t.keys[pos], key
		value, t.counts[pos] = t.counts[pos], value
		follower, t.followerIdx[pos] = t.followerIdx[pos], follower

		if pos == t.hasher.H1(key) {
			pos = t.hasher.H2(key)
		} else {
			pos = t.hasher.H1(key)
		}
	}

	t.isFull = true
	return false
}

// Seen ensures key is present, increments its count, and — unless key is
// the root — sets key's trailing byte in its parent's follower bitmap. It
// returns false if the table was, or became, full.
func (t *Table) Seen(key Key) bool {
	if !t.Contains(key) {
		if !t.Insert(key) {
			return false
		}
	}

	a := t.hasher.H1(key)
	if t.keys[a] == key {
		t.counts[a]++
	} else {
		t.counts[t.hasher.H2(key)]++
	}

	if key != RootKey {
		t.setFollower(key.Parent(), key.Trailing())
	}
	return true
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Follower bitmaps  - - - - - - - - - - - - - - - - - - - - - - - - - - -

func (t *Table) followerIndex(key Key) uint32 {
	if key == t.followerLastKey {
		return t.followerLastIdx
	}
	a := t.hasher.H1(key)
	if t.keys[a] == key {
		t.followerLastKey, t.followerLastIdx = key, t.followerIdx[a]
		return t.followerLastIdx
	}
	b := t.hasher.H2(key)
	if t.keys[b] == key {
		t.followerLastKey, t.followerLastIdx = key, t.followerIdx[b]
		return t.followerLastIdx
	}
	return 0
}

func (t *Table) setFollower(key Key, c byte) {
	p := t.followerIndex(key)
	if p == 0 {
		return
	}
	t.followerVecs[p].Set(c)
}

// HasFollower reports whether key has a direct child context whose
// trailing byte is c.
func (t *Table) HasFollower(key Key, c byte) bool {
	p := t.followerIndex(key)
	if p == 0 {
		return false
	}
	return t.followerVecs[p].Test(c)
}

// FollowerVec returns the 256 bit follower bitmap for key. If key is
// absent, or has no followers yet, the result is the zero value.
func (t *Table) FollowerVec(key Key) bitset256.Set {
	p := t.followerIndex(key)
	if p == 0 {
		return bitset256.Set{}
	}
	return t.followerVecs[p]
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Rescale / Reset  - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Rescale halves every occupied count, flooring at 0. No key is evicted;
// follower bitmaps are untouched. Zero-frequency entries are treated by
// Distribute as "not present" without needing eviction.
func (t *Table) Rescale() {
	for i, c := range t.counts {
		if c == 0 {
			continue
		}
		t.counts[i] = c >> 1
	}
}

// Reset zeroes all backing storage, clears the saturation flag, and
// reseeds the reserved root context. It is the only path by which the
// table recovers from saturation.
func (t *Table) Reset() {
	t.reset()
}

func (t *Table) reset() {
	for i := range t.keys {
		t.keys[i] = 0
	}
	for i := range t.counts {
		t.counts[i] = 0
	}
	for i := range t.followerIdx {
		t.followerIdx[i] = 0
	}
	for i := range t.followerVecs {
		t.followerVecs[i] = bitset256.Set{}
	}
	t.followerVecsAt = followersBase
	t.followerLastKey = 0
	t.followerLastIdx = 0
	t.isFull = false

	t.Seen(RootKey)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Diagnostics  - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Stats summarizes a table's occupancy, recovered from the original
// source's filled_verbose() diagnostic for use behind a verbose CLI flag.
type Stats struct {
	Filled         uint32
	Capacity       uint32
	FollowersUsed  uint32
	FollowersTotal uint32
	LoadFactor     float64
	HardwareCRC32c bool
}

// Stats reports the table's current occupancy.
func (t *Table) Stats() Stats {
	var filled uint32
	for _, k := range t.keys {
		if k != 0 {
			filled++
		}
	}
	return Stats{
		Filled:         filled,
		Capacity:       t.n,
		FollowersUsed:  t.followerVecsAt,
		FollowersTotal: t.followerVecsN,
		LoadFactor:     float64(filled) / float64(t.n) * 100,
		HardwareCRC32c: HardwareAccelerated(),
	}
}
