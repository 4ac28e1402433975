package cuckoo

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/klauspost/cpuid/v2"
)

// Hasher reduces a 64 bit context Key to two candidate table slots. h1 and
// h2 must disagree on at least one bit for substantially all keys — both
// implementations below satisfy that by construction.
type Hasher interface {
	H1(k Key) uint32
	H2(k Key) uint32
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - CRC32c hasher  - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// crcInit is the value passed to crc32.Update for the first fold. Update
// inverts the register on entry and on exit, so the effective register seed
// is zero and the result is post-inverted.
const crcInit = 0xFFFFFFFF

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// crc32cHasher computes h1 and h2 as two CRC-32C evaluations over the two
// 32 bit halves of the key, swapping the fold order between h1 and h2. The
// standard library's hash/crc32 dispatches to SSE4.2 / ARMv8 CRC32
// instructions for the Castagnoli table on supporting hardware, so this is
// the "hardware CRC32c" path spec.md describes — no third-party CRC package
// adds anything the standard library doesn't already do here.
type crc32cHasher struct {
	n uint32
}

func newCRC32cHasher(n uint32) *crc32cHasher {
	return &crc32cHasher{n: n}
}

func halves(k Key) (lo, hi [4]byte) {
	binary.LittleEndian.PutUint32(lo[:], uint32(k))
	binary.LittleEndian.PutUint32(hi[:], uint32(k>>32))
	return
}

func (h *crc32cHasher) H1(k Key) uint32 {
	lo, hi := halves(k)
	crc := crc32.Update(crcInit, castagnoli, hi[:])
	crc = crc32.Update(crc, castagnoli, lo[:])
	return crc % h.n
}

func (h *crc32cHasher) H2(k Key) uint32 {
	lo, hi := halves(k)
	crc := crc32.Update(crcInit, castagnoli, lo[:])
	crc = crc32.Update(crc, castagnoli, hi[:])
	return crc % h.n
}

// HardwareAccelerated reports whether the running CPU exposes the
// instruction set (SSE4.2 on amd64, CRC32 on arm64) that lets the standard
// library's Castagnoli CRC32 implementation skip the generic table-driven
// path. It is purely diagnostic — nothing in the hashing logic above
// branches on it; the standard library makes that decision for itself.
func HardwareAccelerated() bool {
	return cpuid.CPU.Supports(cpuid.SSE42) || cpuid.CPU.Supports(cpuid.CRC32)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - FNV-1a / Jenkins software fallback hasher  - - - - - - - - - - - - - -

const (
	fnvPrime       uint64 = 1099511628211
	fnvOffsetBasis uint64 = 14695981039346656037
)

// fnvJenkinsHasher is the portable fallback: FNV-1a for h1, Jenkins
// one-at-a-time for h2. Used when CRC32c determinism across platforms
// matters more than speed, e.g. in tests.
type fnvJenkinsHasher struct {
	n uint32
}

func newFNVJenkinsHasher(n uint32) *fnvJenkinsHasher {
	return &fnvJenkinsHasher{n: n}
}

func keyBytes(k Key) [8]byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(k >> (i * 8))
	}
	return b
}

func (h *fnvJenkinsHasher) H1(k Key) uint32 {
	hash := fnvOffsetBasis
	for _, b := range keyBytes(k) {
		hash = (hash ^ uint64(b)) * fnvPrime
	}
	return uint32(hash % uint64(h.n))
}

func (h *fnvJenkinsHasher) H2(k Key) uint32 {
	var hash uint32
	for _, b := range keyBytes(k) {
		hash += uint32(b)
		hash += hash << 10
		hash ^= hash >> 6
	}
	hash += hash << 3
	hash ^= hash >> 11
	hash += hash << 15
	return hash % h.n
}
