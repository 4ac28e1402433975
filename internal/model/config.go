package model

import "github.com/jkataja/pompom/internal/cuckoo"

// Config bundles the parameters a Model is built from. Callers are
// expected to have already range-checked these (internal/pompom's
// Config.Validate does this for the values that round-trip through the
// compressed file header); Model trusts its caller.
type Config struct {
	// Order is the fixed prediction order, [MinOrder, MaxOrder].
	Order int
	// MemoryMiB sizes the underlying cuckoo.Table, [8, 2048].
	MemoryMiB uint16
	// BootstrapKiB, if non-zero, is the retained history window size in
	// KiB replayed into a fresh table after saturation. Zero means
	// reset-only: saturation just wipes the table.
	BootstrapKiB uint8
	// AdaptExp, if non-zero, enables fast local adaptation with
	// threshold 2^AdaptExp - 1.
	AdaptExp uint8
	// HasherKind selects the cuckoo table's hash strategy. Tests pin this
	// to FNVJenkins for determinism across platforms; production code
	// leaves it at the zero value (CRC32c).
	HasherKind cuckoo.HasherKind
}

func (c Config) windowCapacity() int {
	if c.BootstrapKiB == 0 {
		return c.Order + 1
	}
	return int(c.BootstrapKiB) * 1024
}

func (c Config) adaptThreshold() uint32 {
	if c.AdaptExp == 0 {
		return 0
	}
	return (uint32(1) << c.AdaptExp) - 1
}
