package fel

import (
	"context"
	"fmt"

	"github.com/xboot/xfel-go/protocol"
)

// Exec makes the device branch to addr and waits for the FEL status.
//
// Exec writes nothing itself; the code at addr must have been uploaded.
// Code that never returns to the boot ROM leaves the device unresponsive:
// the call then fails with a transport timeout and the session is unusable
// until the device is power cycled.
func (s *Session) Exec(ctx context.Context, addr uint32) error {
	s.config.Logger.Debug("exec", "addr", fmt.Sprintf("0x%08x", addr))
	if err := s.exchange(ctx, protocol.BuildExecRequest(addr), nil, nil); err != nil {
		return fmt.Errorf("exec 0x%08x: %w", addr, err)
	}
	return nil
}

// Upload loads the named stub from the payload store and writes it to addr.
func (s *Session) Upload(ctx context.Context, name string, addr uint32) error {
	if s.config.Payloads == nil {
		return fmt.Errorf("stub %q: %w", name, ErrNoPayloads)
	}
	code, err := s.config.Payloads.Load(name)
	if err != nil {
		return err
	}
	if err := (Region{Addr: addr, Len: len(code)}).Validate(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	s.config.Logger.Debug("upload stub", "name", name, "addr", fmt.Sprintf("0x%08x", addr), "size", len(code))
	if err := s.write(ctx, addr, code, nil); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}
