package spiflash

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
)

// headerSize is the controller base and stream length preceding a stream.
const headerSize = 8

// Bus runs command streams through the SPI stub of the attached chip.
type Bus struct {
	s *fel.Session
	p chip.SPIParams
}

// Open checks that the chip supports c (CapSPINOR or CapSPINAND), routes
// the controller to its pins, uploads the stub and initialises the
// controller.
func Open(ctx context.Context, s *fel.Session, c chip.Capability) (*Bus, error) {
	if err := s.Require(c); err != nil {
		return nil, err
	}
	b := &Bus{s: s, p: s.Chip().SPI}
	if b.p.CmdLen <= headerSize+1 || b.p.SwapLen <= 0 {
		return nil, fmt.Errorf("spi: %s has no usable command or swap buffer", s.Chip().Name)
	}

	if err := s.RunScript(ctx, b.p.Pins); err != nil {
		return nil, fmt.Errorf("spi pins: %w", err)
	}
	if err := s.Upload(ctx, b.p.Stub, b.p.StubAddr); err != nil {
		return nil, err
	}
	if err := b.Run(ctx, new(Stream).Init()); err != nil {
		return nil, fmt.Errorf("spi init: %w", err)
	}
	return b, nil
}

// Session returns the session the bus runs on.
func (b *Bus) Session() *fel.Session { return b.s }

// MaxStream returns the largest stream, without terminator, Run accepts.
func (b *Bus) MaxStream() int { return b.p.CmdLen - headerSize - 1 }

// SwapBuf returns the device address of the data window.
func (b *Bus) SwapBuf() uint32 { return b.p.SwapBuf }

// SwapLen returns the size of the data window.
func (b *Bus) SwapLen() int { return b.p.SwapLen }

// Run uploads st and executes it.
func (b *Bus) Run(ctx context.Context, st *Stream) error {
	body := st.Bytes()
	if len(body)+headerSize > b.p.CmdLen {
		return fmt.Errorf("spi: command stream of %d bytes exceeds %d byte buffer", len(body), b.p.CmdLen-headerSize)
	}
	buf := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], b.p.Base)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[headerSize:], body)

	if err := b.s.Store(ctx, b.p.CmdBuf, buf); err != nil {
		return fmt.Errorf("spi command buffer: %w", err)
	}
	return b.s.Exec(ctx, b.p.StubAddr)
}

// Transfer sends tx with chip select held and returns the rxLen bytes
// clocked in afterwards.
func (b *Bus) Transfer(ctx context.Context, tx []byte, rxLen int) ([]byte, error) {
	if rxLen > b.p.SwapLen {
		return nil, fmt.Errorf("spi: receive of %d bytes exceeds swap buffer", rxLen)
	}
	st := new(Stream).Select().Fast(tx...)
	if rxLen > 0 {
		st.RxBuf(b.p.SwapBuf, rxLen)
	}
	st.Deselect()
	if err := b.Run(ctx, st); err != nil {
		return nil, err
	}
	if rxLen == 0 {
		return nil, nil
	}
	rx := make([]byte, rxLen)
	if err := b.s.Load(ctx, b.p.SwapBuf, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// batch accumulates commands and runs them whenever the next one would not
// fit the command buffer.
type batch struct {
	bus *Bus
	st  Stream
}

// add appends the commands built by fn, flushing first when needed.
func (bt *batch) add(ctx context.Context, fn func(*Stream)) error {
	var tmp Stream
	fn(&tmp)
	if tmp.Len() > bt.bus.MaxStream() {
		return fmt.Errorf("spi: single command of %d bytes exceeds command buffer", tmp.Len())
	}
	if bt.st.Len()+tmp.Len() > bt.bus.MaxStream() {
		if err := bt.flush(ctx); err != nil {
			return err
		}
	}
	bt.st.b = append(bt.st.b, tmp.b...)
	return nil
}

func (bt *batch) flush(ctx context.Context) error {
	if bt.st.Empty() {
		return nil
	}
	err := bt.bus.Run(ctx, &bt.st)
	bt.st.Reset()
	return err
}
