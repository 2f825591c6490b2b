package spiflash

import (
	"context"
	"encoding/binary"
	"fmt"
)

// SFDP (JESD216) layout.
const (
	sfdpSignature    = "SFDP"
	sfdpHeaderSize   = 8
	sfdpParamSize    = 8
	sfdpBasicTableID = 0x00
	sfdpMaxParams    = 16
	sfdpMaxDwords    = 64
)

// sfdpBasic holds what the drivers need from the basic flash parameter table.
type sfdpBasic struct {
	Capacity    int
	EraseOpcode byte // 4 KiB erase, 0 if unsupported
	BlockOpcode byte // 64 KiB erase, 0 if not listed
	AddrBytes   int
}

// readSFDP reads the basic parameter table. It returns nil without error
// when the flash does not answer with an SFDP signature.
func readSFDP(ctx context.Context, bus *Bus) (*sfdpBasic, error) {
	read := func(off uint32, n int) ([]byte, error) {
		return bus.Transfer(ctx, []byte{0x5a, byte(off >> 16), byte(off >> 8), byte(off), 0x00}, n)
	}

	hdr, err := read(0, sfdpHeaderSize)
	if err != nil {
		return nil, err
	}
	if string(hdr[:4]) != sfdpSignature {
		return nil, nil
	}
	count := min(int(hdr[6])+1, sfdpMaxParams)

	params, err := read(sfdpHeaderSize, count*sfdpParamSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		ph := params[i*sfdpParamSize:]
		if ph[0] != sfdpBasicTableID {
			continue
		}
		dwords := min(int(ph[3]), sfdpMaxDwords)
		ptr := uint32(ph[4]) | uint32(ph[5])<<8 | uint32(ph[6])<<16
		if dwords < 2 {
			return nil, fmt.Errorf("sfdp: basic table of %d dwords", dwords)
		}
		raw, err := read(ptr, 4*dwords)
		if err != nil {
			return nil, err
		}
		table := make([]uint32, dwords)
		for j := range table {
			table[j] = binary.LittleEndian.Uint32(raw[4*j:])
		}
		return parseBasicTable(table)
	}
	return nil, nil
}

func parseBasicTable(t []uint32) (*sfdpBasic, error) {
	b := &sfdpBasic{AddrBytes: 3}

	if t[0]&0x3 == 0x1 { // 4 KiB erase supported
		b.EraseOpcode = byte(t[0] >> 8)
	}

	density := t[1]
	var bits uint64
	if density&0x80000000 == 0 {
		bits = uint64(density) + 1
	} else {
		n := density & 0x7fffffff
		if n >= 63 {
			return nil, fmt.Errorf("sfdp: density 2^%d bits", n)
		}
		bits = 1 << n
	}
	if bits < 8 || bits/8 > 1<<31 {
		return nil, fmt.Errorf("sfdp: unsupported density of %d bits", bits)
	}
	b.Capacity = int(bits / 8)
	if b.Capacity > 16<<20 {
		b.AddrBytes = 4
	}

	// erase types 1-4 in dwords 8 and 9: size exponent, opcode
	if len(t) >= 9 {
		for _, dw := range t[7:9] {
			for _, v := range []uint32{dw & 0xffff, dw >> 16} {
				if v&0xff == 16 {
					b.BlockOpcode = byte(v >> 8)
				}
				if v&0xff == 12 && b.EraseOpcode == 0 {
					b.EraseOpcode = byte(v >> 8)
				}
			}
		}
	}
	return b, nil
}
