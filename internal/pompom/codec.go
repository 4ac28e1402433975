package pompom

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/jkataja/pompom/internal/arith"
	"github.com/jkataja/pompom/internal/bitio"
	"github.com/jkataja/pompom/internal/bitset256"
	"github.com/jkataja/pompom/internal/model"
)

// CompressResult reports what a Compress call actually did, recovered from
// the original source's success diagnostic (spec.md's distillation names
// the byte-limit flag but not the line printed on success).
type CompressResult struct {
	InBytes  int64
	OutBytes int64
	// Saturated counts how many times the model's table reset and, if
	// configured, replayed its bootstrap window.
	Saturated int
}

// Limit caps the number of plaintext bytes Compress reads from r before
// stopping, matching the CLI's `-n` flag. Zero means unlimited.
type Limit int64

// Compress reads plaintext from r (stopping at limit bytes if limit > 0),
// writes the self-describing compressed stream to w, and returns byte
// counts for the CLI's success diagnostic.
func Compress(r io.Reader, w io.Writer, cfg Config, limit Limit) (CompressResult, error) {
	if err := cfg.Validate(); err != nil {
		return CompressResult{}, err
	}
	if err := writeHeader(w, cfg); err != nil {
		return CompressResult{}, err
	}

	m, err := model.New(cfg.modelConfig())
	if err != nil {
		return CompressResult{}, err
	}

	bw := bitio.NewWriter(w)
	enc := arith.NewEncoder(bw)

	crc := crc32.NewIEEE()
	var dist model.Dist
	var exclude, check bitset256.Set

	var in int64
	buf := make([]byte, 32768)
	for {
		if limit > 0 && in >= int64(limit) {
			break
		}
		n, rerr := r.Read(buf)
		for i := 0; i < n; i++ {
			if limit > 0 && in >= int64(limit) {
				break
			}
			c := buf[i]
			encodeByte(m, enc, &dist, &exclude, &check, c)
			crc.Write(buf[i : i+1])
			in++
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return CompressResult{}, rerr
		}
	}

	encodeEOS(m, enc, &dist, &exclude, &check)
	enc.Finish()

	if err := bw.Flush(); err != nil {
		return CompressResult{}, err
	}
	if err := writeUint32BE(w, crc.Sum32()); err != nil {
		return CompressResult{}, err
	}

	return CompressResult{
		InBytes:   in,
		OutBytes:  int64(headerSize) + int64(bw.Written) + 4,
		Saturated: m.Saturated,
	}, nil
}

// encodeByte walks the order ladder from cfg.Order down to -1 for a single
// plaintext byte, encoding ESCAPE at every order that doesn't yet predict
// it and the byte itself at the order that does.
func encodeByte(m *model.Model, enc *arith.Encoder, dist *model.Dist, exclude, check *bitset256.Set, c byte) {
	sym := model.Symbol(c)
	for ord := m.Order(); ord >= -1; ord-- {
		m.Distribute(ord, dist, exclude, check)
		if check.Test(c) {
			enc.Encode(dist[model.L(sym)], dist[model.R(sym)], dist[model.R(model.EOS)])
			m.Update(c)
			return
		}
		enc.Encode(dist[model.L(model.Escape)], dist[model.R(model.Escape)], dist[model.R(model.EOS)])
	}
	// ord == -1's fallback always claims every remaining byte (P6/§4.2
	// step 8 guarantees this), so the loop above always returns from
	// inside its Encode-then-return branch before falling off here.
}

// encodeEOS walks the same ladder, encoding ESCAPE at every real order and
// EOS at -1, terminating the stream.
func encodeEOS(m *model.Model, enc *arith.Encoder, dist *model.Dist, exclude, check *bitset256.Set) {
	for ord := m.Order(); ord >= -1; ord-- {
		m.Distribute(ord, dist, exclude, check)
		if ord == -1 {
			enc.Encode(dist[model.L(model.EOS)], dist[model.R(model.EOS)], dist[model.R(model.EOS)])
			return
		}
		enc.Encode(dist[model.L(model.Escape)], dist[model.R(model.Escape)], dist[model.R(model.EOS)])
	}
}

// DecompressResult mirrors CompressResult for the decode direction.
type DecompressResult struct {
	OutBytes  int64
	Saturated int
}

// Decompress reads a compressed stream produced by Compress from r, writes
// the reconstructed plaintext to w, and verifies the trailing CRC-32.
func Decompress(r io.Reader, w io.Writer) (DecompressResult, error) {
	cfg, err := readHeader(r)
	if err != nil {
		return DecompressResult{}, err
	}

	m, err := model.New(cfg.modelConfig())
	if err != nil {
		return DecompressResult{}, err
	}

	// The WNC decoder's renormalization structurally reads a handful of
	// bits (fewer than 32) past what the encoder actually wrote for the
	// coder payload (the low/high straddle scheme requires it). Read the
	// whole remainder up front and take the last 4 bytes as the CRC,
	// mirroring the original's own "read everything, keep the last four
	// bytes" approach. The bit reader runs over the whole remainder, so
	// those lookahead bits come from the trailer, and only a read past the
	// trailer sets EOF and is reported as a TruncationError.
	body, err := io.ReadAll(r)
	if err != nil {
		return DecompressResult{}, err
	}
	if len(body) < 4 {
		return DecompressResult{}, &TruncationError{}
	}
	trailer := body[len(body)-4:]

	br := bitio.NewReader(bytes.NewReader(body))
	dec := arith.NewDecoder(br)

	crc := crc32.NewIEEE()
	var dist model.Dist
	var exclude, check bitset256.Set

	var out int64
	for {
		c, isEOS, err := decodeByte(m, dec, &dist, &exclude, &check)
		if err != nil {
			return DecompressResult{}, err
		}
		if isEOS {
			break
		}
		if _, err := w.Write([]byte{c}); err != nil {
			return DecompressResult{}, err
		}
		crc.Write([]byte{c})
		out++
		m.Update(c)
	}

	want := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
	if got := crc.Sum32(); got != want {
		return DecompressResult{}, &ChecksumError{want: want, got: got}
	}

	return DecompressResult{OutBytes: out, Saturated: m.Saturated}, nil
}

// decodeByte walks the order ladder exactly as encodeByte does, decoding
// one symbol per order until a non-ESCAPE symbol (a plaintext byte, or EOS
// at -1) is produced.
func decodeByte(m *model.Model, dec *arith.Decoder, dist *model.Dist, exclude, check *bitset256.Set) (c byte, isEOS bool, err error) {
	for ord := m.Order(); ord >= -1; ord-- {
		m.Distribute(ord, dist, exclude, check)
		total := dist[model.R(model.EOS)]
		freq := dec.Target(total)

		sym, found := findSymbol(dist, check, freq, ord)
		if dec.EOF() {
			return 0, false, &TruncationError{}
		}
		if !found {
			invariantViolation("decoder target %d matched no symbol at order %d", freq, ord)
		}
		if sym == model.Escape {
			dec.Narrow(dist[model.L(model.Escape)], dist[model.R(model.Escape)], total)
			continue
		}
		dec.Narrow(dist[model.L(sym)], dist[model.R(sym)], total)
		if sym == model.EOS {
			return 0, true, nil
		}
		return byte(sym), false, nil
	}
	return 0, false, &TruncationError{}
}

// findSymbol locates the smallest symbol whose distCheck bit is set (or
// ESCAPE, at real orders) with dist[R(c)] > freq, per spec.md §4.4.
func findSymbol(dist *model.Dist, check *bitset256.Set, freq uint32, ord int) (model.Symbol, bool) {
	for c := 0; c < 256; c++ {
		if !check.Test(byte(c)) {
			continue
		}
		sym := model.Symbol(c)
		if dist[model.R(sym)] > freq {
			return sym, true
		}
	}
	if ord == -1 {
		if dist[model.R(model.EOS)] > freq {
			return model.EOS, true
		}
		return 0, false
	}
	if dist[model.R(model.Escape)] > freq {
		return model.Escape, true
	}
	return 0, false
}

func writeUint32BE(w io.Writer, v uint32) error {
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	_, err := w.Write(buf[:])
	return err
}
