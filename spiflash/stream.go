package spiflash

import "encoding/binary"

// Command stream opcodes executed by the SPI stub.
const (
	opEnd         = 0x00
	opInit        = 0x01
	opSelect      = 0x02
	opDeselect    = 0x03
	opFast        = 0x04
	opTxBuf       = 0x05
	opRxBuf       = 0x06
	opSPINORWait  = 0x07
	opSPINANDWait = 0x08
)

// maxFast is the longest inline transmit a single FAST op can carry.
const maxFast = 0xff

// Stream builds a command stream for the SPI stub.
type Stream struct {
	b []byte
}

// Len returns the encoded size without the END terminator.
func (s *Stream) Len() int { return len(s.b) }

// Empty reports whether nothing has been added since the last Reset.
func (s *Stream) Empty() bool { return len(s.b) == 0 }

// Reset discards the stream contents.
func (s *Stream) Reset() { s.b = s.b[:0] }

// Init (re)initialises the SPI controller.
func (s *Stream) Init() *Stream { s.b = append(s.b, opInit); return s }

// Select asserts chip select.
func (s *Stream) Select() *Stream { s.b = append(s.b, opSelect); return s }

// Deselect releases chip select.
func (s *Stream) Deselect() *Stream { s.b = append(s.b, opDeselect); return s }

// Fast transmits p inline. p must not exceed 255 bytes.
func (s *Stream) Fast(p ...byte) *Stream {
	if len(p) > maxFast {
		panic("spiflash: inline transmit longer than 255 bytes")
	}
	s.b = append(s.b, opFast, byte(len(p)))
	s.b = append(s.b, p...)
	return s
}

// TxBuf transmits n bytes from device memory at addr.
func (s *Stream) TxBuf(addr uint32, n int) *Stream {
	s.b = append(s.b, opTxBuf)
	s.b = binary.LittleEndian.AppendUint32(s.b, addr)
	s.b = binary.LittleEndian.AppendUint32(s.b, uint32(n))
	return s
}

// RxBuf receives n bytes into device memory at addr.
func (s *Stream) RxBuf(addr uint32, n int) *Stream {
	s.b = append(s.b, opRxBuf)
	s.b = binary.LittleEndian.AppendUint32(s.b, addr)
	s.b = binary.LittleEndian.AppendUint32(s.b, uint32(n))
	return s
}

// NORWait polls the NOR status register until the busy bit clears.
func (s *Stream) NORWait() *Stream { s.b = append(s.b, opSPINORWait); return s }

// NANDWait polls the NAND status feature until the busy bit clears.
func (s *Stream) NANDWait() *Stream { s.b = append(s.b, opSPINANDWait); return s }

// Command is Select, Fast(p...), Deselect.
func (s *Stream) Command(p ...byte) *Stream {
	return s.Select().Fast(p...).Deselect()
}

// Bytes returns the encoded stream including the END terminator.
func (s *Stream) Bytes() []byte {
	out := make([]byte, len(s.b)+1)
	copy(out, s.b)
	out[len(s.b)] = opEnd
	return out
}
