package protocol

import (
	"errors"
	"fmt"
)

// MalformedResponseError reports a frame that is too short or fails a
// structural check. It is a protocol violation and aborts the operation.
type MalformedResponseError struct {
	// What names the frame being parsed
	What string

	// Reason describes the failed check
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.What, e.Reason)
}

// IsMalformedResponse returns true if err is or wraps a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
