package fel

import (
	"errors"
	"fmt"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/protocol"
)

// ErrUnsupportedDevice is matched by errors returned from Open when the
// device does not answer with a valid FEL identity.
var ErrUnsupportedDevice = errors.New("unsupported FEL device")

// ErrNoPayloads is returned by stub-based operations when the session has no
// payload store.
var ErrNoPayloads = errors.New("no payload store configured")

// IdentityError reports a malformed identity block. Identity holds the raw
// fields when enough bytes were received, for diagnostics.
type IdentityError struct {
	Identity *protocol.Identity
	Err      error
}

func (e *IdentityError) Error() string {
	if e.Identity == nil {
		return fmt.Sprintf("%v: %v", ErrUnsupportedDevice, e.Err)
	}
	return fmt.Sprintf("%v: %v (%s)", ErrUnsupportedDevice, e.Err, e.Identity)
}

func (e *IdentityError) Unwrap() error { return e.Err }

func (e *IdentityError) Is(target error) bool { return target == ErrUnsupportedDevice }

// TransferError reports a memory transfer that failed part way. Bytes
// before Addr+Done were transferred; nothing after is guaranteed.
type TransferError struct {
	// Op is OpRead or OpWrite
	Op string

	// Addr is the start address of the whole transfer
	Addr uint32

	// Done is the number of bytes completed before the failure
	Done int

	// Err is the underlying cause
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s at 0x%08x failed after %d bytes: %v", e.Op, e.Addr, e.Done, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// VerificationError indicates that memory read back differs from what was
// written.
type VerificationError struct {
	Addr   uint32
	Offset int
	Want   byte
	Got    byte
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed at 0x%08x (offset %d): wrote 0x%02x, read 0x%02x",
		e.Addr+uint32(e.Offset), e.Offset, e.Want, e.Got)
}

// DRAMError indicates that the DRAM init stub reported failure or never
// reported completion.
type DRAMError struct {
	// Type is the parameter set that was used
	Type string

	// Status is the last status word read
	Status uint32

	// Polls is the number of status reads performed
	Polls int
}

func (e *DRAMError) Error() string {
	if e.Status == chip.DRAMFail {
		return fmt.Sprintf("dram init (%s) failed", e.Type)
	}
	return fmt.Sprintf("dram init (%s) timed out after %d polls, status 0x%08x", e.Type, e.Polls, e.Status)
}
