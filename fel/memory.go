package fel

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/xboot/xfel-go/protocol"
)

// Region is a range of device memory.
type Region struct {
	Addr uint32
	Len  int
}

// Validate checks that r is non-empty and stays within the 32-bit address
// space.
func (r Region) Validate() error {
	if r.Len <= 0 {
		return fmt.Errorf("region 0x%08x: length must be positive, got %d", r.Addr, r.Len)
	}
	if uint64(r.Addr)+uint64(r.Len) > 1<<32 {
		return fmt.Errorf("region 0x%08x+0x%x exceeds the 32-bit address space", r.Addr, r.Len)
	}
	return nil
}

// End returns the first address past r, as a 64-bit value.
func (r Region) End() uint64 { return uint64(r.Addr) + uint64(r.Len) }

// Read returns n bytes of device memory starting at addr. The transfer is
// split into chunks of at most protocol.MaxTransferSize, issued in address
// order. On failure the error is a *TransferError and no data is returned.
func (s *Session) Read(ctx context.Context, addr uint32, n int) ([]byte, error) {
	if err := (Region{Addr: addr, Len: n}).Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := s.read(ctx, addr, buf, NewTracker(s.config.Progress, OpRead, addr, n)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write stores p in device memory starting at addr. Writing nothing is a
// no-op that does not touch the device.
func (s *Session) Write(ctx context.Context, addr uint32, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := (Region{Addr: addr, Len: len(p)}).Validate(); err != nil {
		return err
	}
	return s.write(ctx, addr, p, NewTracker(s.config.Progress, OpWrite, addr, len(p)))
}

// WriteVerify writes p and reads it back, failing with *VerificationError
// at the first differing byte.
func (s *Session) WriteVerify(ctx context.Context, addr uint32, p []byte) error {
	if err := s.Write(ctx, addr, p); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	got := make([]byte, len(p))
	if err := s.read(ctx, addr, got, NewTracker(s.config.Progress, OpVerify, addr, len(p))); err != nil {
		return err
	}
	for i := range p {
		if got[i] != p[i] {
			return &VerificationError{Addr: addr, Offset: i, Want: p[i], Got: got[i]}
		}
	}
	return nil
}

// ReadWord reads the little-endian 32-bit word at addr.
func (s *Session) ReadWord(ctx context.Context, addr uint32) (uint32, error) {
	if err := (Region{Addr: addr, Len: 4}).Validate(); err != nil {
		return 0, err
	}
	var buf [4]byte
	if err := s.read(ctx, addr, buf[:], nil); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteWord stores v as a little-endian 32-bit word at addr.
func (s *Session) WriteWord(ctx context.Context, addr, v uint32) error {
	if err := (Region{Addr: addr, Len: 4}).Validate(); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return s.write(ctx, addr, buf[:], nil)
}

// WriteWords stores consecutive little-endian words starting at addr.
func (s *Session) WriteWords(ctx context.Context, addr uint32, words []uint32) error {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return s.Write(ctx, addr, buf)
}

func (s *Session) read(ctx context.Context, addr uint32, buf []byte, tr *Tracker) error {
	for done := 0; done < len(buf); {
		if err := ctx.Err(); err != nil {
			return &TransferError{Op: OpRead, Addr: addr, Done: done, Err: err}
		}
		n := min(len(buf)-done, protocol.MaxTransferSize)
		at := addr + uint32(done)

		frame, err := protocol.BuildReadRequest(at, n)
		if err != nil {
			return &TransferError{Op: OpRead, Addr: addr, Done: done, Err: err}
		}
		if err := s.exchange(ctx, frame, buf[done:done+n], nil); err != nil {
			s.config.Logger.Error("read failed", "addr", fmt.Sprintf("0x%08x", at), "len", n, "error", err)
			return &TransferError{Op: OpRead, Addr: addr, Done: done, Err: err}
		}
		done += n
		tr.Report(done)
	}
	return nil
}

func (s *Session) write(ctx context.Context, addr uint32, p []byte, tr *Tracker) error {
	for done := 0; done < len(p); {
		if err := ctx.Err(); err != nil {
			return &TransferError{Op: OpWrite, Addr: addr, Done: done, Err: err}
		}
		n := min(len(p)-done, protocol.MaxTransferSize)
		at := addr + uint32(done)

		frame, err := protocol.BuildWriteRequest(at, n)
		if err != nil {
			return &TransferError{Op: OpWrite, Addr: addr, Done: done, Err: err}
		}
		if err := s.exchange(ctx, frame, nil, p[done:done+n]); err != nil {
			s.config.Logger.Error("write failed", "addr", fmt.Sprintf("0x%08x", at), "len", n, "error", err)
			return &TransferError{Op: OpWrite, Addr: addr, Done: done, Err: err}
		}
		done += n
		tr.Report(done)
	}
	return nil
}

// Load fills buf from device memory at addr. It is Read without progress
// reporting, for drivers that report progress in their own terms.
func (s *Session) Load(ctx context.Context, addr uint32, buf []byte) error {
	if err := (Region{Addr: addr, Len: len(buf)}).Validate(); err != nil {
		return err
	}
	return s.read(ctx, addr, buf, nil)
}

// Store is Write without progress reporting.
func (s *Session) Store(ctx context.Context, addr uint32, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := (Region{Addr: addr, Len: len(p)}).Validate(); err != nil {
		return err
	}
	return s.write(ctx, addr, p, nil)
}
