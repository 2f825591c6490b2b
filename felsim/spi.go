package felsim

import (
	"encoding/binary"
	"fmt"

	"github.com/xboot/xfel-go/chip"
)

// Command stream opcodes understood by the SPI stub.
const (
	spiEnd         = 0x00
	spiInit        = 0x01
	spiSelect      = 0x02
	spiDeselect    = 0x03
	spiFast        = 0x04
	spiTxBuf       = 0x05
	spiRxBuf       = 0x06
	spiNORWait     = 0x07
	spiNANDWait    = 0x08
	maxBusyPolling = 1000
)

// SPIDevice is a flash chip on the simulated SPI bus. Commands are framed
// by Select and Deselect; Write shifts bytes out, Read clocks bytes in.
type SPIDevice interface {
	Select()
	Deselect()
	Write(p []byte)
	Read(p []byte)
}

// AttachSPI emulates the SPI stub of a chip: executing p.StubAddr runs the
// command stream found at p.CmdBuf against dev.
func (d *Device) AttachSPI(p chip.SPIParams, dev SPIDevice) {
	d.OnExec(p.StubAddr, func(d *Device) error {
		return d.runSPI(p, dev)
	})
}

func (d *Device) runSPI(p chip.SPIParams, dev SPIDevice) error {
	n := int(d.PeekWord(p.CmdBuf + 4))
	if n > p.CmdLen-8 {
		return fmt.Errorf("spi: command stream of %d bytes overflows buffer", n)
	}
	s := d.Peek(p.CmdBuf+8, n)

	for i := 0; i < len(s); {
		op := s[i]
		i++
		switch op {
		case spiEnd:
			return nil
		case spiInit:
		case spiSelect:
			dev.Select()
		case spiDeselect:
			dev.Deselect()
		case spiFast:
			if i >= len(s) || i+1+int(s[i]) > len(s) {
				return fmt.Errorf("spi: truncated fast command at %d", i-1)
			}
			cnt := int(s[i])
			dev.Write(s[i+1 : i+1+cnt])
			i += 1 + cnt
		case spiTxBuf, spiRxBuf:
			if i+8 > len(s) {
				return fmt.Errorf("spi: truncated buffer command at %d", i-1)
			}
			addr := binary.LittleEndian.Uint32(s[i:])
			cnt := int(binary.LittleEndian.Uint32(s[i+4:]))
			i += 8
			if op == spiTxBuf {
				dev.Write(d.Peek(addr, cnt))
			} else {
				buf := make([]byte, cnt)
				dev.Read(buf)
				d.Poke(addr, buf)
			}
		case spiNORWait:
			if err := waitIdle(dev, []byte{0x05}); err != nil {
				return err
			}
		case spiNANDWait:
			if err := waitIdle(dev, []byte{0x0f, 0xc0}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("spi: unknown opcode 0x%02x at %d", op, i-1)
		}
	}
	return nil
}

func waitIdle(dev SPIDevice, cmd []byte) error {
	st := make([]byte, 1)
	for i := 0; i < maxBusyPolling; i++ {
		dev.Select()
		dev.Write(cmd)
		dev.Read(st)
		dev.Deselect()
		if st[0]&0x01 == 0 {
			return nil
		}
	}
	return fmt.Errorf("spi: flash busy after %d polls", maxBusyPolling)
}
