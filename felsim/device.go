package felsim

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/xboot/xfel-go/protocol"
	"github.com/xboot/xfel-go/transport"
)

const pageSize = 4096

// ExecHook runs when the host executes code at a registered address.
type ExecHook func(d *Device) error

// WriteHook runs after the host wrote the word at a registered address.
type WriteHook func(d *Device, v uint32)

// Fault decides whether the FEL request req fails. A non-nil error is
// returned from the next transport call and the exchange is abandoned.
type Fault func(req protocol.Request) error

type phase int

const (
	idle phase = iota
	dataPhase
	statusPhase
)

// Device is a simulated boot ROM speaking the FEL protocol. It implements
// transport.Transport. It is not safe for concurrent use.
type Device struct {
	id     protocol.Identity
	mem    map[uint32]*[pageSize]byte
	exec   map[uint32]ExecHook
	writes map[uint32]WriteHook
	fault  Fault

	// wire state
	pendingWrite int
	req          protocol.Request
	phase        phase
	outbox       []byte
	err          error
	closed       bool

	exchanges int
	execLog   []uint32
}

// New returns a device reporting the given SoC id and scratchpad address.
func New(socID, scratchpad uint32) *Device {
	d := &Device{
		mem:    make(map[uint32]*[pageSize]byte),
		exec:   make(map[uint32]ExecHook),
		writes: make(map[uint32]WriteHook),
	}
	copy(d.id.Signature[:], protocol.IdentitySignature)
	d.id.ID = socID
	d.id.Protocol = 1
	d.id.Scratchpad = scratchpad
	return d
}

// SetIdentity replaces the identity block returned by the version command.
func (d *Device) SetIdentity(id protocol.Identity) { d.id = id }

// OnExec registers a hook for addr.
func (d *Device) OnExec(addr uint32, h ExecHook) { d.exec[addr] = h }

// OnWrite registers a hook for the word at addr.
func (d *Device) OnWrite(addr uint32, h WriteHook) { d.writes[addr] = h }

// SetFault installs f, or removes the fault when f is nil.
func (d *Device) SetFault(f Fault) { d.fault = f }

// Exchanges returns the number of FEL requests received.
func (d *Device) Exchanges() int { return d.exchanges }

// ExecLog returns every address executed, in order.
func (d *Device) ExecLog() []uint32 { return append([]uint32(nil), d.execLog...) }

// Peek returns a copy of n bytes at addr. Unwritten memory reads as zero.
func (d *Device) Peek(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		a := addr + uint32(i)
		if pg, ok := d.mem[a/pageSize]; ok {
			out[i] = pg[a%pageSize]
		}
	}
	return out
}

// Poke stores p at addr without going through the protocol.
func (d *Device) Poke(addr uint32, p []byte) {
	for i, b := range p {
		a := addr + uint32(i)
		pg, ok := d.mem[a/pageSize]
		if !ok {
			pg = new([pageSize]byte)
			d.mem[a/pageSize] = pg
		}
		pg[a%pageSize] = b
	}
}

// PeekWord reads a little-endian word.
func (d *Device) PeekWord(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(d.Peek(addr, 4))
}

// PokeWord stores a little-endian word.
func (d *Device) PokeWord(addr, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	d.Poke(addr, b[:])
}

// Write implements transport.Transport.
func (d *Device) Write(ctx context.Context, p []byte) error {
	if err := d.check(ctx, "write", len(p)); err != nil {
		return err
	}

	if d.pendingWrite > 0 {
		if len(p) != d.pendingWrite {
			return d.fail("write", len(p), fmt.Errorf("data phase of %d bytes, announced %d", len(p), d.pendingWrite))
		}
		d.pendingWrite = 0
		if err := d.handleData(p); err != nil {
			return d.fail("write", len(p), err)
		}
		d.outbox = append(d.outbox, protocol.BuildUSBStatus(0)...)
		return nil
	}

	dir, n, err := protocol.ParseUSBRequest(p)
	if err != nil {
		return d.fail("write", len(p), err)
	}
	switch dir {
	case protocol.USBWrite:
		d.pendingWrite = n
		if n == 0 {
			d.outbox = append(d.outbox, protocol.BuildUSBStatus(0)...)
		}
	case protocol.USBRead:
		data, err := d.produce(n)
		if err != nil {
			return d.fail("write", len(p), err)
		}
		d.outbox = append(d.outbox, data...)
		d.outbox = append(d.outbox, protocol.BuildUSBStatus(0)...)
	}
	return nil
}

// Read implements transport.Transport.
func (d *Device) Read(ctx context.Context, p []byte) error {
	if err := d.check(ctx, "read", len(p)); err != nil {
		return err
	}
	if len(d.outbox) < len(p) {
		return d.fail("read", len(p), transport.ErrShortTransfer)
	}
	copy(p, d.outbox)
	d.outbox = d.outbox[len(p):]
	return nil
}

// Close implements transport.Transport.
func (d *Device) Close() error {
	d.closed = true
	return nil
}

func (d *Device) check(ctx context.Context, op string, n int) error {
	if d.closed {
		return &transport.Error{Op: op, Len: n, Err: errors.New("device closed")}
	}
	if err := ctx.Err(); err != nil {
		return &transport.Error{Op: op, Len: n, Err: err}
	}
	if d.err != nil {
		err := d.err
		d.reset()
		return &transport.Error{Op: op, Len: n, Err: err}
	}
	return nil
}

func (d *Device) fail(op string, n int, err error) error {
	d.reset()
	return &transport.Error{Op: op, Len: n, Err: err}
}

func (d *Device) reset() {
	d.err = nil
	d.pendingWrite = 0
	d.phase = idle
	d.outbox = nil
}

// handleData consumes the payload of a wrapped write.
func (d *Device) handleData(p []byte) error {
	switch d.phase {
	case idle:
		req, err := protocol.ParseRequest(p)
		if err != nil {
			return err
		}
		d.exchanges++
		d.req = req
		if d.fault != nil {
			if err := d.fault(req); err != nil {
				d.err = err
				return nil
			}
		}
		switch req.Cmd {
		case protocol.CmdVersion, protocol.CmdRead, protocol.CmdWrite:
			d.phase = dataPhase
		case protocol.CmdExec:
			d.phase = statusPhase
			d.execLog = append(d.execLog, req.Addr)
			if h, ok := d.exec[req.Addr]; ok {
				return h(d)
			}
		default:
			return fmt.Errorf("unknown command 0x%03x", req.Cmd)
		}
		return nil

	case dataPhase:
		if d.req.Cmd != protocol.CmdWrite || uint32(len(p)) != d.req.Len {
			return fmt.Errorf("unexpected data phase for command 0x%03x", d.req.Cmd)
		}
		d.Poke(d.req.Addr, p)
		d.runWriteHooks(d.req.Addr, len(p))
		d.phase = statusPhase
		return nil
	}
	return errors.New("unexpected write during status phase")
}

// produce returns the payload of a wrapped read.
func (d *Device) produce(n int) ([]byte, error) {
	switch d.phase {
	case dataPhase:
		d.phase = statusPhase
		switch d.req.Cmd {
		case protocol.CmdVersion:
			out := make([]byte, n)
			copy(out, protocol.MarshalIdentity(d.id))
			return out, nil
		case protocol.CmdRead:
			if uint32(n) != d.req.Len {
				return nil, fmt.Errorf("read of %d bytes, requested %d", n, d.req.Len)
			}
			return d.Peek(d.req.Addr, n), nil
		}
	case statusPhase:
		if n != protocol.StatusSize {
			return nil, fmt.Errorf("status read of %d bytes", n)
		}
		d.phase = idle
		return make([]byte, protocol.StatusSize), nil
	}
	return nil, fmt.Errorf("unexpected read of %d bytes", n)
}

func (d *Device) runWriteHooks(addr uint32, n int) {
	for a, h := range d.writes {
		if a >= addr && uint64(a)+4 <= uint64(addr)+uint64(n) {
			h(d, d.PeekWord(a))
		}
	}
}
