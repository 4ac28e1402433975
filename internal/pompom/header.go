package pompom

import (
	"encoding/binary"
	"io"
)

// headerSize is the fixed byte length of the parameter block preceding the
// coder payload: 4-byte magic, 1-byte order, 2-byte memory (BE), 1-byte
// bootstrap, 1-byte adapt.
const headerSize = 4 + 1 + 2 + 1 + 1

// writeHeader emits the fixed-layout parameter block spec.md §6 specifies.
func writeHeader(w io.Writer, cfg Config) error {
	var buf [headerSize]byte
	copy(buf[0:4], magic[:])
	buf[4] = byte(cfg.Order)
	binary.BigEndian.PutUint16(buf[5:7], cfg.MemoryMiB)
	buf[7] = cfg.BootstrapKiB
	buf[8] = cfg.AdaptExp
	_, err := w.Write(buf[:])
	return err
}

// readHeader parses and validates the parameter block, returning a
// *HeaderError for any magic mismatch or out-of-range field.
func readHeader(r io.Reader) (Config, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Config{}, headerError(err, "short read")
	}
	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return Config{}, headerError(nil, "magic mismatch: got %v", buf[0:4])
	}

	cfg := Config{
		Order:        int(buf[4]),
		MemoryMiB:    binary.BigEndian.Uint16(buf[5:7]),
		BootstrapKiB: buf[7],
		AdaptExp:     buf[8],
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, headerError(err, "invalid parameter block")
	}
	return cfg, nil
}
