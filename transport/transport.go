package transport

import (
	"context"
	"errors"
	"fmt"
)

// ErrDeviceNotFound is returned when no device in FEL mode is attached.
var ErrDeviceNotFound = errors.New("no FEL device found")

// ErrShortTransfer indicates the device moved fewer bytes than requested.
var ErrShortTransfer = errors.New("short transfer")

// Transport is a raw bulk pipe to a device in boot-ROM recovery mode.
//
// Every call blocks until the transfer completes, the per-transfer timeout
// elapses or ctx is done. Implementations never retry; a failed call is
// reported as *Error and the caller decides what to do next.
type Transport interface {
	// Write sends all of p to the device.
	Write(ctx context.Context, p []byte) error

	// Read fills p entirely from the device.
	Read(ctx context.Context, p []byte) error

	// Close releases the underlying handle.
	Close() error
}

// Error reports a failed bulk transfer.
type Error struct {
	// Op is "read" or "write"
	Op string

	// Len is the requested transfer length in bytes
	Len int

	// Err is the underlying cause
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s (%d bytes): %v", e.Op, e.Len, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the transfer failed because a deadline elapsed.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// IsTransportError returns true if err is or wraps a *Error.
func IsTransportError(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
