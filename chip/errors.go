package chip

import (
	"errors"
	"fmt"
)

// ErrUnsupported matches every *UnsupportedError via errors.Is.
var ErrUnsupported = errors.New("operation not supported on this chip")

// UnsupportedError indicates that the attached chip is unknown or lacks the
// capability an operation needs. Nothing was sent to the device.
type UnsupportedError struct {
	// Chip is the descriptor name, empty when the chip is unknown
	Chip string

	// Op is the capability that was requested
	Op string
}

func (e *UnsupportedError) Error() string {
	if e.Chip == "" {
		return fmt.Sprintf("%s: unknown chip, %v", e.Op, ErrUnsupported)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, ErrUnsupported, e.Chip)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }
