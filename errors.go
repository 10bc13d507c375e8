package glstate

import (
	"errors"
	"fmt"
)

// Error kinds returned by the library. Callers match them with errors.Is.
var (
	// ErrResourceCreation is returned when the underlying context refuses
	// to create a resource. The resource is unusable; retry with different
	// parameters or abort.
	ErrResourceCreation = errors.New("glstate: resource creation failed")

	// ErrInvalidDescriptor is returned when a descriptor violates a
	// structural invariant at construction. Always a caller bug; nothing
	// was issued to the context.
	ErrInvalidDescriptor = errors.New("glstate: invalid descriptor")

	// ErrInvalidHandle is returned on use of a destroyed or unknown
	// handle. Always a caller bug.
	ErrInvalidHandle = errors.New("glstate: invalid handle")

	// ErrAttributeMismatch is returned when a mesh layout or uniform set
	// is incompatible with the program it is drawn with. Caught before
	// any context call.
	ErrAttributeMismatch = errors.New("glstate: attribute mismatch")
)

// ContextError reports a failure from the underlying context on an emitted
// call. It is surfaced as-is and never retried; retrying a stateful call
// without knowing why it failed is unsafe.
type ContextError struct {
	// Call is the name of the adapter call that failed.
	Call string
	// Err is the error the device reported.
	Err error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("glstate: context call %s: %v", e.Call, e.Err)
}

func (e *ContextError) Unwrap() error { return e.Err }

// ctxErr wraps a device error with the identity of the failed call.
// A nil err passes through untouched.
func ctxErr(call string, err error) error {
	if err == nil {
		return nil
	}
	return &ContextError{Call: call, Err: err}
}
