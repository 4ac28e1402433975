package cuckoo

import "github.com/pkg/errors"

// AllocationError indicates the initial allocation of one of the table's
// four backing buffers failed.
type AllocationError struct {
	cause error
}

func (e *AllocationError) Error() string {
	return errors.Wrap(e.cause, "cuckoo: allocation failed").Error()
}

func (e *AllocationError) Unwrap() error {
	return e.cause
}
