package fel

import (
	"context"
	"fmt"

	"github.com/xboot/xfel-go/protocol"
)

// usbWrite sends p as one wrapped transfer and checks the trailing status.
func (s *Session) usbWrite(ctx context.Context, p []byte) error {
	req, err := protocol.BuildUSBRequest(protocol.USBWrite, len(p))
	if err != nil {
		return err
	}
	if err := s.t.Write(ctx, req); err != nil {
		return err
	}
	if err := s.t.Write(ctx, p); err != nil {
		return err
	}
	return s.usbStatus(ctx)
}

// usbRead fills p with one wrapped transfer and checks the trailing status.
func (s *Session) usbRead(ctx context.Context, p []byte) error {
	req, err := protocol.BuildUSBRequest(protocol.USBRead, len(p))
	if err != nil {
		return err
	}
	if err := s.t.Write(ctx, req); err != nil {
		return err
	}
	if err := s.t.Read(ctx, p); err != nil {
		return err
	}
	return s.usbStatus(ctx)
}

func (s *Session) usbStatus(ctx context.Context) error {
	buf := make([]byte, protocol.USBStatusSize)
	if err := s.t.Read(ctx, buf); err != nil {
		return err
	}
	st, err := protocol.ParseUSBStatus(buf)
	if err != nil {
		return err
	}
	if st.Status != 0 {
		// The boot ROM does not document this byte; xfel-compatible hosts ignore it.
		s.config.Logger.Debug("nonzero USB status", "status", st.Status)
	}
	return nil
}

// exchange runs one FEL command: request, optional data phase, status.
// in is filled from the device, out is sent to it; at most one is non-nil.
func (s *Session) exchange(ctx context.Context, frame []byte, in, out []byte) error {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	if err := s.usbWrite(ctx, frame); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	switch {
	case in != nil:
		if err := s.usbRead(ctx, in); err != nil {
			return fmt.Errorf("read data: %w", err)
		}
	case out != nil:
		if err := s.usbWrite(ctx, out); err != nil {
			return fmt.Errorf("write data: %w", err)
		}
	}

	status := make([]byte, protocol.StatusSize)
	if err := s.usbRead(ctx, status); err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	return protocol.ParseStatus(status)
}
