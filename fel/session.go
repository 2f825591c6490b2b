package fel

import (
	"context"
	"errors"
	"fmt"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/payload"
	"github.com/xboot/xfel-go/protocol"
	"github.com/xboot/xfel-go/transport"
)

// Session is an open conversation with one device in FEL mode.
//
// A Session owns its transport and is not safe for concurrent use: FEL is a
// strict request/response protocol and interleaved exchanges corrupt it.
type Session struct {
	t      transport.Transport
	id     protocol.Identity
	chip   *chip.Descriptor
	config Config
}

// Open performs the version handshake on t and resolves the chip
// descriptor. An unknown chip is not an error: Chip returns nil and
// extended operations fail with *chip.UnsupportedError.
//
// A malformed identity is reported as *IdentityError, which matches
// ErrUnsupportedDevice. Open does not close t on failure.
//
// Example:
//
//	t, err := usb.Open(usb.VendorID, usb.ProductID, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := fel.Open(ctx, t, fel.WithLogger(logger))
func Open(ctx context.Context, t transport.Transport, opts ...Option) (*Session, error) {
	if t == nil {
		return nil, errors.New("fel: transport is nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{t: t, config: cfg}

	data := make([]byte, protocol.IdentitySize)
	if err := s.exchange(ctx, protocol.BuildVersionRequest(), data, nil); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}

	id, err := protocol.ParseIdentity(data)
	if err != nil {
		return nil, &IdentityError{Identity: id, Err: err}
	}
	s.id = *id

	if d, ok := chip.Lookup(id.ID); ok {
		s.chip = d
		s.config.Logger.Info("connected", "chip", d.Name, "id", fmt.Sprintf("0x%08x", id.ID))
	} else {
		s.config.Logger.Info("connected to unknown chip", "identity", id.String())
	}

	return s, nil
}

// Identity returns the identity block read during Open.
func (s *Session) Identity() protocol.Identity { return s.id }

// Chip returns the resolved descriptor, or nil for an unknown chip.
func (s *Session) Chip() *chip.Descriptor { return s.chip }

// Scratchpad returns the device address the boot ROM leaves free for
// host/stub handshakes.
func (s *Session) Scratchpad() uint32 { return s.id.Scratchpad }

// Logger returns the session logger, never nil.
func (s *Session) Logger() Logger { return s.config.Logger }

// ProgressFunc returns the session progress callback, possibly nil.
func (s *Session) ProgressFunc() ProgressFunc { return s.config.Progress }

// Payloads returns the session payload store, possibly nil.
func (s *Session) Payloads() payload.Store { return s.config.Payloads }

// Close closes the transport.
func (s *Session) Close() error {
	return s.t.Close()
}

// Require fails with *chip.UnsupportedError unless the chip supports c.
// Nothing is sent to the device.
func (s *Session) Require(c chip.Capability) error {
	if err := s.chip.Require(c); err != nil {
		s.config.Logger.Debug("capability missing", "capability", c.String(), "chip", chipName(s.chip))
		return err
	}
	return nil
}

func chipName(d *chip.Descriptor) string {
	if d == nil {
		return "unknown"
	}
	return d.Name
}
