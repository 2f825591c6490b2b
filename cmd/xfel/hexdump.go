package main

import (
	"bufio"
	"fmt"
	"io"
)

// hexdump writes p as rows of 16 bytes labelled with their device address.
func hexdump(w io.Writer, base uint32, p []byte) error {
	bw := bufio.NewWriter(w)
	for off := 0; off < len(p); off += 16 {
		row := p[off:min(off+16, len(p))]
		fmt.Fprintf(bw, "%08x: ", uint64(base)+uint64(off))
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(bw, "%02x ", row[i])
			} else {
				bw.WriteString("   ")
			}
		}
		bw.WriteByte(' ')
		for _, b := range row {
			if b < 0x20 || b > 0x7e {
				b = '.'
			}
			bw.WriteByte(b)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
