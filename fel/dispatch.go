package fel

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/xboot/xfel-go/chip"
)

// SID_PRCTL protocol, relative to SIDParams.Base.
const (
	sidPRCTL    = 0x40
	sidRDKEY    = 0x60
	sidOpLock   = 0xac
	sidReadBusy = 1 << 1
)

// RunScript applies a register script in order.
func (s *Session) RunScript(ctx context.Context, ops []chip.RegOp) error {
	for _, op := range ops {
		if err := s.applyRegOp(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) applyRegOp(ctx context.Context, op chip.RegOp) error {
	v := op.Value
	if op.Mask != 0 {
		old, err := s.ReadWord(ctx, op.Addr)
		if err != nil {
			return err
		}
		v = old&^op.Mask | op.Value
	}
	return s.WriteWord(ctx, op.Addr, v)
}

// Reset reboots the device through its watchdog. The device drops off the
// bus while the last register write is in flight, so transport errors on
// that write are ignored.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.Require(chip.CapReset); err != nil {
		return err
	}
	ops := s.chip.Watchdog
	if len(ops) == 0 {
		return nil
	}
	if err := s.RunScript(ctx, ops[:len(ops)-1]); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := s.applyRegOp(ctx, ops[len(ops)-1]); err != nil {
		s.config.Logger.Debug("reset: device gone during final write", "error", err)
	}
	s.config.Logger.Info("reset issued", "chip", s.chip.Name)
	return nil
}

// SID returns the 128-bit security ID as four words in register order.
func (s *Session) SID(ctx context.Context) ([4]uint32, error) {
	var sid [4]uint32
	if err := s.Require(chip.CapSID); err != nil {
		return sid, err
	}

	p := s.chip.SID
	switch p.Method {
	case chip.SIDDirect:
		return s.readSID(ctx, p.Base+p.Offset)

	case chip.SIDControl:
		for i := range sid {
			v, err := s.sidControlWord(ctx, p.Base, p.Offset+uint32(4*i))
			if err != nil {
				return sid, fmt.Errorf("sid word %d: %w", i, err)
			}
			sid[i] = v
		}
		return sid, nil

	case chip.SIDStub:
		if err := s.Upload(ctx, p.Stub, p.StubAddr); err != nil {
			return sid, err
		}
		if err := s.Exec(ctx, p.StubAddr); err != nil {
			return sid, err
		}
		return s.readSID(ctx, s.id.Scratchpad)
	}
	return sid, fmt.Errorf("sid: unknown method %d for %s", p.Method, s.chip.Name)
}

func (s *Session) readSID(ctx context.Context, addr uint32) ([4]uint32, error) {
	var sid [4]uint32
	buf := make([]byte, 16)
	if err := s.read(ctx, addr, buf, nil); err != nil {
		return sid, err
	}
	for i := range sid {
		sid[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return sid, nil
}

func (s *Session) sidControlWord(ctx context.Context, base, offset uint32) (uint32, error) {
	ctl := base + sidPRCTL
	if err := s.WriteWord(ctx, ctl, offset<<16|sidOpLock<<8|sidReadBusy); err != nil {
		return 0, err
	}
	idle := false
	for i := 0; i < s.config.PollAttempts; i++ {
		v, err := s.ReadWord(ctx, ctl)
		if err != nil {
			return 0, err
		}
		if v&sidReadBusy == 0 {
			idle = true
			break
		}
	}
	if !idle {
		return 0, fmt.Errorf("SID_PRCTL busy after %d polls", s.config.PollAttempts)
	}
	v, err := s.ReadWord(ctx, base+sidRDKEY)
	if err != nil {
		return 0, err
	}
	return v, s.WriteWord(ctx, ctl, 0)
}

// JTAG routes the JTAG signals to their pins.
func (s *Session) JTAG(ctx context.Context) error {
	if err := s.Require(chip.CapJTAG); err != nil {
		return err
	}
	if err := s.RunScript(ctx, s.chip.JTAG); err != nil {
		return fmt.Errorf("jtag: %w", err)
	}
	return nil
}

// InitDRAM brings up the DRAM controller with the named parameter set, or
// the chip default when typ is empty.
func (s *Session) InitDRAM(ctx context.Context, typ string) error {
	if err := s.Require(chip.CapDDR); err != nil {
		return err
	}

	p := s.chip.DRAM
	if typ == "" {
		typ = p.Default
	}
	words, ok := p.Types[typ]
	if !ok {
		return fmt.Errorf("unknown dram type %q for %s, known: %s",
			typ, s.chip.Name, strings.Join(p.TypeNames(), ", "))
	}

	s.config.Logger.Info("dram init", "chip", s.chip.Name, "type", typ)
	if err := s.Upload(ctx, p.Stub, p.StubAddr); err != nil {
		return err
	}
	if err := s.WriteWords(ctx, p.ParamAddr, words); err != nil {
		return fmt.Errorf("dram parameters: %w", err)
	}
	if err := s.WriteWord(ctx, p.StatusAddr, 0); err != nil {
		return fmt.Errorf("dram status: %w", err)
	}
	if err := s.Exec(ctx, p.StubAddr); err != nil {
		return err
	}

	var status uint32
	for i := 1; i <= s.config.PollAttempts; i++ {
		v, err := s.ReadWord(ctx, p.StatusAddr)
		if err != nil {
			return fmt.Errorf("dram status: %w", err)
		}
		status = v
		switch status {
		case chip.DRAMDone:
			s.config.Logger.Info("dram ready", "type", typ, "polls", i)
			return nil
		case chip.DRAMFail:
			return &DRAMError{Type: typ, Status: status, Polls: i}
		}
		if err := sleep(ctx, s.config.PollInterval); err != nil {
			return err
		}
	}
	return &DRAMError{Type: typ, Status: status, Polls: s.config.PollAttempts}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
