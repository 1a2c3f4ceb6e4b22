package viewer

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports that an operation is not available for the
// receiver, such as warping the pointer on a context without a cursor or
// ray casting from a Window. Capability probes return false instead of
// this error; it is provided for callers that surface the outcome.
var ErrUnsupported = errors.New("viewer: operation not supported")

// ErrNoContext is returned when a Window is asked to render without a
// graphics context.
var ErrNoContext = errors.New("viewer: window has no graphics context")

// UnsupportedError names the unsupported operation.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("viewer: %s not supported", e.Op)
}

// Unwrap makes errors.Is(err, ErrUnsupported) hold.
func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// invariant panics with a viewer-prefixed message. It is reserved for
// programmer errors that leave the object graph inconsistent.
func invariant(format string, args ...any) {
	panic(fmt.Sprintf("viewer: "+format, args...))
}
