package spiflash

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xboot/xfel-go/fel"
)

// ErrNoFlash is returned by Detect when nothing answers on the bus.
var ErrNoFlash = errors.New("no flash found")

// ErrUnknownFlash is returned by Detect when a flash answers with an ID
// that is neither in the tables nor self-describing.
var ErrUnknownFlash = errors.New("unknown flash")

// RangeError reports an offset or length outside what the flash allows.
type RangeError struct {
	Off      int
	Len      int
	Capacity int
	Reason   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("flash range 0x%x+0x%x (capacity 0x%x): %s", e.Off, e.Len, e.Capacity, e.Reason)
}

// Descriptor describes a detected flash chip.
type Descriptor struct {
	Name string
	ID   []byte

	// Capacity is the usable size in bytes
	Capacity int

	// PageSize is the program granularity
	PageSize int

	// EraseSize is the erase block size used for writes
	EraseSize int

	// NOR only: erase opcode for EraseSize, optional 64 KiB block erase
	// opcode, and address width in bytes
	EraseOpcode byte
	BlockOpcode byte
	AddrBytes   int

	// NAND only
	PagesPerBlock int
	SpareSize     int
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (id % x) %d KiB, page %d, erase %d", d.Name, d.ID, d.Capacity>>10, d.PageSize, d.EraseSize)
}

// Flash is a detected SPI flash chip.
type Flash interface {
	Info() Descriptor
	Read(ctx context.Context, off, n int) ([]byte, error)
	Write(ctx context.Context, off int, p []byte) error
	Erase(ctx context.Context, off, n int) error
}

func checkRange(d Descriptor, off, n int) error {
	switch {
	case off < 0 || n < 0:
		return &RangeError{Off: off, Len: n, Capacity: d.Capacity, Reason: "negative offset or length"}
	case off > d.Capacity || n > d.Capacity-off:
		return &RangeError{Off: off, Len: n, Capacity: d.Capacity, Reason: "beyond end of flash"}
	}
	return nil
}

// blockDevice is the part of a driver that differs between NOR and NAND.
type blockDevice interface {
	Info() Descriptor
	read(ctx context.Context, off int, buf []byte) error
	eraseBlock(ctx context.Context, off int) error
	program(ctx context.Context, off int, data []byte) error
}

// writeBlocks writes p at off one erase block at a time. Partial blocks
// are read first so bytes outside [off, off+len(p)) are preserved.
func writeBlocks(ctx context.Context, dev blockDevice, tr *fel.Tracker, off int, p []byte) error {
	info := dev.Info()
	bs := info.EraseSize
	block := make([]byte, bs)

	for done := 0; done < len(p); {
		if err := ctx.Err(); err != nil {
			return err
		}
		at := off + done
		start := at - at%bs
		inBlock := min(bs-(at-start), len(p)-done)

		data := block
		if inBlock == bs {
			data = p[done : done+bs]
		} else {
			if err := dev.read(ctx, start, block); err != nil {
				return fmt.Errorf("read block 0x%x: %w", start, err)
			}
			copy(block[at-start:], p[done:done+inBlock])
		}

		if err := dev.eraseBlock(ctx, start); err != nil {
			return fmt.Errorf("erase block 0x%x: %w", start, err)
		}
		if err := dev.program(ctx, start, data); err != nil {
			return fmt.Errorf("program block 0x%x: %w", start, err)
		}
		done += inBlock
		tr.Report(done)
	}
	return nil
}

// readChunks reads buf in swap-sized pieces.
func readChunks(ctx context.Context, bus *Bus, tr *fel.Tracker, off int, buf []byte,
	fill func(ctx context.Context, off int, buf []byte) error) error {
	chunk := bus.SwapLen()
	for done := 0; done < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(chunk, len(buf)-done)
		if err := fill(ctx, off+done, buf[done:done+n]); err != nil {
			return err
		}
		done += n
		tr.Report(done)
	}
	return nil
}

func isErased(p []byte) bool {
	return len(bytes.TrimLeft(p, "\xff")) == 0
}

func allEqual(p []byte, b byte) bool {
	for _, c := range p {
		if c != b {
			return false
		}
	}
	return true
}

// noFlash reports an ID made only of 0x00 or 0xff bytes.
func noFlash(id []byte) bool {
	return allEqual(id, 0x00) || allEqual(id, 0xff)
}
