package spiflash

import (
	"context"
	"fmt"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
)

// SPI NAND opcodes and feature registers.
const (
	nandReset          = 0xff
	nandReadID         = 0x9f
	nandSetFeature     = 0x1f
	nandWriteEnable    = 0x06
	nandPageRead       = 0x13
	nandReadCache      = 0x03
	nandProgramLoad    = 0x02
	nandProgramExecute = 0x10
	nandBlockErase     = 0xd8
	nandFeatureProtect = 0xa0
)

// NAND drives a SPI NAND flash. Offsets address the data area only; spare
// bytes are neither read nor written and bad blocks are not managed.
type NAND struct {
	bus  *Bus
	info Descriptor
}

// DetectNAND opens the SPI bus, resets and identifies the NAND flash on it
// and clears its block protection.
//
// ErrNoFlash means nothing answered; it is a normal negative result.
func DetectNAND(ctx context.Context, s *fel.Session) (*NAND, error) {
	bus, err := Open(ctx, s, chip.CapSPINAND)
	if err != nil {
		return nil, err
	}

	if err := bus.Run(ctx, new(Stream).Command(nandReset).NANDWait()); err != nil {
		return nil, fmt.Errorf("spinand reset: %w", err)
	}
	id, err := bus.Transfer(ctx, []byte{nandReadID, 0x00}, 4)
	if err != nil {
		return nil, fmt.Errorf("spinand id: %w", err)
	}
	if noFlash(id) {
		return nil, ErrNoFlash
	}

	info, ok := lookup(nandTable, id)
	if !ok {
		return nil, fmt.Errorf("%w: spinand id % x", ErrUnknownFlash, id)
	}
	info.ID = id[:len(info.ID)]
	info.EraseSize = info.PageSize * info.PagesPerBlock

	st := new(Stream).Command(nandSetFeature, nandFeatureProtect, 0x00).NANDWait()
	if err := bus.Run(ctx, st); err != nil {
		return nil, fmt.Errorf("spinand unlock: %w", err)
	}

	s.Logger().Info("spi nand flash", "name", info.Name, "size", info.Capacity)
	return &NAND{bus: bus, info: info}, nil
}

// Info returns the detected geometry.
func (f *NAND) Info() Descriptor { return f.info }

// Read returns n bytes starting at off.
func (f *NAND) Read(ctx context.Context, off, n int) ([]byte, error) {
	if err := checkRange(f.info, off, n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	tr := fel.NewTracker(f.bus.Session().ProgressFunc(), fel.OpRead, uint32(off), n)
	if err := readChunks(ctx, f.bus, tr, off, buf, f.readSwap); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write stores p at off. Blocks only partly covered by p keep their other
// pages and bytes.
func (f *NAND) Write(ctx context.Context, off int, p []byte) error {
	if err := checkRange(f.info, off, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	tr := fel.NewTracker(f.bus.Session().ProgressFunc(), fel.OpWrite, uint32(off), len(p))
	return writeBlocks(ctx, f, tr, off, p)
}

// Erase clears whole blocks in [off, off+n).
func (f *NAND) Erase(ctx context.Context, off, n int) error {
	if err := checkRange(f.info, off, n); err != nil {
		return err
	}
	if off%f.info.EraseSize != 0 || n%f.info.EraseSize != 0 {
		return &RangeError{Off: off, Len: n, Capacity: f.info.Capacity,
			Reason: fmt.Sprintf("not aligned to %d byte erase blocks", f.info.EraseSize)}
	}
	tr := fel.NewTracker(f.bus.Session().ProgressFunc(), fel.OpErase, uint32(off), n)
	for done := 0; done < n; done += f.info.EraseSize {
		if err := f.eraseBlock(ctx, off+done); err != nil {
			return fmt.Errorf("erase 0x%x: %w", off+done, err)
		}
		tr.Report(done + f.info.EraseSize)
	}
	return nil
}

func row(op byte, page int) []byte {
	return []byte{op, byte(page >> 16), byte(page >> 8), byte(page)}
}

// readSwap loads each page touched by [off, off+len(buf)) into the cache
// and clocks the wanted columns into the swap buffer.
func (f *NAND) readSwap(ctx context.Context, off int, buf []byte) error {
	swap := f.bus.SwapBuf()
	ps := f.info.PageSize
	bt := &batch{bus: f.bus}

	for pos := 0; pos < len(buf); {
		at := off + pos
		page, col := at/ps, at%ps
		n := min(ps-col, len(buf)-pos)
		dst := swap + uint32(pos)
		err := bt.add(ctx, func(st *Stream) {
			st.Command(row(nandPageRead, page)...).
				NANDWait().
				Select().
				Fast(nandReadCache, byte(col>>8), byte(col), 0x00).
				RxBuf(dst, n).
				Deselect()
		})
		if err != nil {
			return err
		}
		pos += n
	}
	if err := bt.flush(ctx); err != nil {
		return err
	}
	return f.bus.Session().Load(ctx, swap, buf)
}

func (f *NAND) read(ctx context.Context, off int, buf []byte) error {
	return readChunks(ctx, f.bus, nil, off, buf, f.readSwap)
}

func (f *NAND) eraseBlock(ctx context.Context, off int) error {
	st := new(Stream).
		Command(nandWriteEnable).
		Command(row(nandBlockErase, off/f.info.PageSize)...).
		NANDWait()
	return f.bus.Run(ctx, st)
}

func (f *NAND) program(ctx context.Context, off int, data []byte) error {
	ps := f.info.PageSize
	return programPages(ctx, f.bus, ps, off, data, func(st *Stream, at int, swap uint32) {
		st.Command(nandWriteEnable).
			Select().
			Fast(nandProgramLoad, 0x00, 0x00).
			TxBuf(swap, ps).
			Deselect().
			Command(row(nandProgramExecute, at/ps)...).
			NANDWait()
	})
}
