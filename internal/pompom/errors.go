// Package pompom drives the compress/decompress loops over a model.Model
// and an arith.Encoder/Decoder pair: file-header framing, the per-byte
// escape-to-lower-order ladder, and plaintext CRC-32 verification.
package pompom

import (
	"fmt"

	"github.com/pkg/errors"
)

// invariantViolation raises an InternalInvariantError: the decoder produced
// a target frequency no symbol's range covers, which can only mean the
// encoder and decoder disagreed about the model state. Not recoverable.
func invariantViolation(format string, args ...any) {
	panic(fmt.Errorf("pompom: internal invariant violated: "+format, args...))
}

// ConfigurationError reports an out-of-range Config field, caught by
// Config.Validate before any I/O happens. Conflicting CLI flags are
// reported by cmd/pompom as plain errors, not through this type.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string { return "pompom: configuration: " + e.msg }

func configError(format string, args ...any) error {
	return &ConfigurationError{msg: errors.Errorf(format, args...).Error()}
}

// HeaderError reports a magic mismatch or an out-of-range header field read
// back from a compressed stream.
type HeaderError struct {
	msg   string
	cause error
}

func (e *HeaderError) Error() string { return "pompom: header: " + e.msg }
func (e *HeaderError) Unwrap() error { return e.cause }

func headerError(cause error, format string, args ...any) error {
	msg := errors.Errorf(format, args...).Error()
	if cause != nil {
		msg = errors.Wrapf(cause, format, args...).Error()
	}
	return &HeaderError{msg: msg, cause: cause}
}

// TruncationError reports that the decoder reached end-of-input before EOS
// was produced.
type TruncationError struct {
	cause error
}

func (e *TruncationError) Error() string {
	return "pompom: unexpected end of compressed data"
}
func (e *TruncationError) Unwrap() error { return e.cause }

// ChecksumError reports that the trailing CRC-32 did not match the running
// CRC of the emitted plaintext.
type ChecksumError struct {
	want, got uint32
}

func (e *ChecksumError) Error() string {
	return errors.Errorf("pompom: checksum mismatch: want %08x, got %08x", e.want, e.got).Error()
}
