package felsim

import (
	"bytes"
	"encoding/binary"
)

// NOR models a SPI NOR flash with block protection, write enable latch and
// optional SFDP tables.
type NOR struct {
	ID     [3]byte
	Mem    []byte
	Status byte

	sfdp     []byte
	no4K     bool
	wel      bool
	addr4    bool
	cmd      []byte
	readPos  int
	selected bool
}

// NewNOR returns an erased, write-protected flash of size bytes.
func NewNOR(id [3]byte, size int, withSFDP bool) *NOR {
	f := &NOR{
		ID:     id,
		Mem:    bytes.Repeat([]byte{0xff}, size),
		Status: 0x1c,
	}
	if withSFDP {
		f.sfdp = buildSFDP(size)
	}
	return f
}

// BlockEraseOnly turns the flash into a part without 4 KiB sector erase:
// SFDP lists a single 64 KiB erase type and sector erase commands are
// ignored.
func (f *NOR) BlockEraseOnly() {
	f.no4K = true
	if f.sfdp == nil {
		return
	}
	dw := func(i int, v uint32) { binary.LittleEndian.PutUint32(f.sfdp[0x30+4*i:], v) }
	dw(0, binary.LittleEndian.Uint32(f.sfdp[0x30:])|0x3)
	dw(7, 0x0000d810)
	dw(8, 0)
}

// Protected reports whether block protection bits are set.
func (f *NOR) Protected() bool { return f.Status&0x1c != 0 }

// FourByte reports whether 4-byte addressing is enabled.
func (f *NOR) FourByte() bool { return f.addr4 }

func (f *NOR) Select() {
	f.selected = true
	f.cmd = f.cmd[:0]
	f.readPos = 0
}

func (f *NOR) Write(p []byte) {
	if f.selected {
		f.cmd = append(f.cmd, p...)
	}
}

func (f *NOR) Read(p []byte) {
	for i := range p {
		p[i] = 0xff
	}
	if !f.selected || len(f.cmd) == 0 {
		return
	}
	switch f.cmd[0] {
	case 0x9f:
		for i := range p {
			if j := f.readPos + i; j < len(f.ID) {
				p[i] = f.ID[j]
			}
		}
	case 0x05:
		st := f.Status
		if f.wel {
			st |= 0x02
		}
		for i := range p {
			p[i] = st
		}
	case 0x03:
		addr, ok := f.address()
		if !ok {
			break
		}
		for i := range p {
			p[i] = f.Mem[(addr+f.readPos+i)%len(f.Mem)]
		}
	case 0x5a:
		if f.sfdp == nil || len(f.cmd) < 5 {
			break
		}
		addr := int(f.cmd[1])<<16 | int(f.cmd[2])<<8 | int(f.cmd[3])
		for i := range p {
			if j := addr + f.readPos + i; j < len(f.sfdp) {
				p[i] = f.sfdp[j]
			}
		}
	}
	f.readPos += len(p)
}

func (f *NOR) Deselect() {
	if !f.selected {
		return
	}
	f.selected = false
	if len(f.cmd) == 0 {
		return
	}

	switch f.cmd[0] {
	case 0x06:
		f.wel = true
	case 0x04:
		f.wel = false
	case 0xb7:
		f.addr4 = true
	case 0xe9:
		f.addr4 = false
	case 0x01:
		if f.wel && len(f.cmd) > 1 {
			f.Status = f.cmd[1] &^ 0x03
		}
		f.wel = false
	case 0x02:
		addr, ok := f.address()
		if f.wel && ok && !f.Protected() {
			n := 4
			if f.addr4 {
				n = 5
			}
			page := addr &^ 0xff
			for i, b := range f.cmd[n:] {
				f.Mem[page+(addr+i)&0xff] &= b
			}
		}
		f.wel = false
	case 0x20, 0x52, 0xd8:
		addr, ok := f.address()
		if f.wel && ok && !f.Protected() && !(f.no4K && f.cmd[0] != 0xd8) {
			size := map[byte]int{0x20: 4 << 10, 0x52: 32 << 10, 0xd8: 64 << 10}[f.cmd[0]]
			base := addr &^ (size - 1)
			for i := base; i < base+size && i < len(f.Mem); i++ {
				f.Mem[i] = 0xff
			}
		}
		f.wel = false
	case 0x60, 0xc7:
		if f.wel && !f.Protected() {
			for i := range f.Mem {
				f.Mem[i] = 0xff
			}
		}
		f.wel = false
	}
}

func (f *NOR) address() (int, bool) {
	if f.addr4 {
		if len(f.cmd) < 5 {
			return 0, false
		}
		return int(binary.BigEndian.Uint32(f.cmd[1:5])) % len(f.Mem), true
	}
	if len(f.cmd) < 4 {
		return 0, false
	}
	return (int(f.cmd[1])<<16 | int(f.cmd[2])<<8 | int(f.cmd[3])) % len(f.Mem), true
}

// buildSFDP returns an SFDP header, one parameter header and a nine-dword
// basic flash parameter table at 0x30.
func buildSFDP(size int) []byte {
	b := make([]byte, 0x30+9*4)
	copy(b, "SFDP")
	b[4], b[5], b[6], b[7] = 0x06, 0x01, 0x00, 0xff // rev 1.6, one header
	b[8], b[9], b[10], b[11] = 0x00, 0x06, 0x01, 9  // basic table, 9 dwords
	b[12], b[13], b[14], b[15] = 0x30, 0x00, 0x00, 0xff

	dw := func(i int, v uint32) { binary.LittleEndian.PutUint32(b[0x30+4*i:], v) }
	addrMode := uint32(0)
	if size > 16<<20 {
		addrMode = 1
	}
	dw(0, 0xfff120e5|addrMode<<17) // 4K erase opcode 0x20
	dw(1, uint32(size*8-1))
	dw(7, 0x520f200c) // erase types 1 (4K, 0x20) and 2 (32K, 0x52)
	dw(8, 0x0000d810) // erase type 3 (64K, 0xd8)
	return b
}
