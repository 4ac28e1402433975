package pompom

import (
	"github.com/jkataja/pompom/internal/cuckoo"
	"github.com/jkataja/pompom/internal/model"
)

// Header field bounds, mirrored in the compressed stream's parameter block
// (see writeHeader/readHeader).
const (
	MinOrder = 1
	MaxOrder = 6
	DefaultOrder = 3

	MinMemoryMiB = 8
	MaxMemoryMiB = 2048
	DefaultMemoryMiB = 32

	MinBootstrapKiB = 1
	MaxBootstrapKiB = 255
	DefaultBootstrapKiB = 32

	MinAdaptExp = 1
	MaxAdaptExp = 32
)

// magic is the 4-byte stream tag: 'p', 'i', 'm', 0x00.
var magic = [4]byte{'p', 'i', 'm', 0x00}

// Config bundles the parameters that round-trip through a compressed
// stream's header. Zero-value BootstrapKiB means "no bootstrap — reset
// only"; zero-value AdaptExp means "fast adaptation disabled".
type Config struct {
	Order        int
	MemoryMiB    uint16
	BootstrapKiB uint8
	AdaptExp     uint8
}

// Validate range-checks every field, matching spec.md §6/§7's
// ConfigurationError contract. It does not know about CLI-level concerns
// like mutually exclusive flags; cmd/pompom enforces those before building
// a Config.
func (c Config) Validate() error {
	switch {
	case c.Order < MinOrder || c.Order > MaxOrder:
		return configError("order %d out of range [%d,%d]", c.Order, MinOrder, MaxOrder)
	case c.MemoryMiB < MinMemoryMiB || c.MemoryMiB > MaxMemoryMiB:
		return configError("memory %dMiB out of range [%d,%d]", c.MemoryMiB, MinMemoryMiB, MaxMemoryMiB)
	case c.BootstrapKiB != 0 && (c.BootstrapKiB < MinBootstrapKiB || c.BootstrapKiB > MaxBootstrapKiB):
		return configError("bootstrap %dKiB out of range [%d,%d]", c.BootstrapKiB, MinBootstrapKiB, MaxBootstrapKiB)
	case c.AdaptExp != 0 && (c.AdaptExp < MinAdaptExp || c.AdaptExp > MaxAdaptExp):
		return configError("adapt exponent %d out of range [%d,%d]", c.AdaptExp, MinAdaptExp, MaxAdaptExp)
	}
	return nil
}

// modelConfig adapts a validated Config to the parameters model.New wants,
// pinning the production hasher.
func (c Config) modelConfig() model.Config {
	return model.Config{
		Order:        c.Order,
		MemoryMiB:    c.MemoryMiB,
		BootstrapKiB: c.BootstrapKiB,
		AdaptExp:     c.AdaptExp,
		HasherKind:   cuckoo.CRC32c,
	}
}
