package spiflash

import (
	"context"
	"fmt"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
)

// SPI NOR opcodes.
const (
	norWriteEnable  = 0x06
	norWriteStatus  = 0x01
	norReadID       = 0x9f
	norRead         = 0x03
	norPageProgram  = 0x02
	norSectorErase  = 0x20
	norBlockErase   = 0xd8
	norEnter4Byte   = 0xb7
	norPageSize     = 256
	norSectorSize   = 4 << 10
	norBlockSize    = 64 << 10
	norMax3ByteSize = 16 << 20
)

// NOR drives a SPI NOR flash.
type NOR struct {
	bus  *Bus
	info Descriptor
}

// DetectNOR opens the SPI bus and identifies the NOR flash on it. The
// geometry comes from SFDP when the flash provides it, from the ID table
// otherwise. On success the flash is unprotected and, above 16 MiB,
// switched to 4-byte addressing.
//
// ErrNoFlash means nothing answered; it is a normal negative result.
func DetectNOR(ctx context.Context, s *fel.Session) (*NOR, error) {
	bus, err := Open(ctx, s, chip.CapSPINOR)
	if err != nil {
		return nil, err
	}

	id, err := bus.Transfer(ctx, []byte{norReadID}, 3)
	if err != nil {
		return nil, fmt.Errorf("spinor id: %w", err)
	}
	if noFlash(id) {
		return nil, ErrNoFlash
	}

	info, known := lookup(norTable, id)
	sf, err := readSFDP(ctx, bus)
	if err != nil {
		return nil, fmt.Errorf("spinor sfdp: %w", err)
	}
	switch {
	case sf != nil:
		if !known {
			info.Name = fmt.Sprintf("SFDP %02x%02x%02x", id[0], id[1], id[2])
		}
		info.Capacity = sf.Capacity
		info.EraseOpcode = sf.EraseOpcode
		info.BlockOpcode = sf.BlockOpcode
		info.AddrBytes = sf.AddrBytes
	case known:
		info.EraseOpcode = norSectorErase
		info.BlockOpcode = norBlockErase
	default:
		return nil, fmt.Errorf("%w: spinor id % x", ErrUnknownFlash, id)
	}

	info.ID = id
	info.PageSize = norPageSize
	info.EraseSize = norSectorSize
	switch {
	case info.EraseOpcode != 0:
	case info.BlockOpcode != 0:
		// no 4 KiB erase, writes rewrite whole 64 KiB blocks
		info.EraseOpcode = info.BlockOpcode
		info.EraseSize = norBlockSize
	default:
		info.EraseOpcode = norSectorErase
	}
	if info.Capacity > norMax3ByteSize {
		info.AddrBytes = 4
	} else {
		info.AddrBytes = 3
	}

	st := new(Stream).
		Command(norWriteEnable).
		Command(norWriteStatus, 0x00).
		NORWait()
	if info.AddrBytes == 4 {
		st.Command(norEnter4Byte)
	}
	if err := bus.Run(ctx, st); err != nil {
		return nil, fmt.Errorf("spinor setup: %w", err)
	}

	s.Logger().Info("spi nor flash", "name", info.Name, "size", info.Capacity, "sfdp", sf != nil)
	return &NOR{bus: bus, info: info}, nil
}

// Info returns the detected geometry.
func (f *NOR) Info() Descriptor { return f.info }

// Read returns n bytes starting at off.
func (f *NOR) Read(ctx context.Context, off, n int) ([]byte, error) {
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

// Write stores p at off. Erase blocks only partly covered by p keep their
// other bytes.
func (f *NOR) Write(ctx context.Context, off int, p []byte) error {
	if err := checkRange(f.info, off, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	tr := fel.NewTracker(f.bus.Session().ProgressFunc(), fel.OpWrite, uint32(off), len(p))
	return writeBlocks(ctx, f, tr, off, p)
}

// Erase clears [off, off+n), which must be aligned to EraseSize. Aligned
// 64 KiB stretches use block erase when the flash has it.
func (f *NOR) Erase(ctx context.Context, off, n int) error {
	if err := checkRange(f.info, off, n); err != nil {
		return err
	}
	if off%f.info.EraseSize != 0 || n%f.info.EraseSize != 0 {
		return &RangeError{Off: off, Len: n, Capacity: f.info.Capacity,
			Reason: fmt.Sprintf("not aligned to %d byte erase blocks", f.info.EraseSize)}
	}

	tr := fel.NewTracker(f.bus.Session().ProgressFunc(), fel.OpErase, uint32(off), n)
	for done := 0; done < n; {
		if err := ctx.Err(); err != nil {
			return err
		}
		at := off + done
		op, size := f.info.EraseOpcode, f.info.EraseSize
		if f.info.BlockOpcode != 0 && at%norBlockSize == 0 && n-done >= norBlockSize {
			op, size = f.info.BlockOpcode, norBlockSize
		}
		if err := f.erase(ctx, op, at); err != nil {
			return fmt.Errorf("erase 0x%x: %w", at, err)
		}
		done += size
		tr.Report(done)
	}
	return nil
}

func (f *NOR) addr(op byte, a int) []byte {
	if f.info.AddrBytes == 4 {
		return []byte{op, byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
	}
	return []byte{op, byte(a >> 16), byte(a >> 8), byte(a)}
}

func (f *NOR) erase(ctx context.Context, op byte, at int) error {
	st := new(Stream).
		Command(norWriteEnable).
		Command(f.addr(op, at)...).
		NORWait()
	return f.bus.Run(ctx, st)
}

// readSwap reads at most SwapLen bytes through the swap buffer.
func (f *NOR) readSwap(ctx context.Context, off int, buf []byte) error {
	swap := f.bus.SwapBuf()
	st := new(Stream).
		Select().
		Fast(f.addr(norRead, off)...).
		RxBuf(swap, len(buf)).
		Deselect()
	if err := f.bus.Run(ctx, st); err != nil {
		return err
	}
	return f.bus.Session().Load(ctx, swap, buf)
}

func (f *NOR) read(ctx context.Context, off int, buf []byte) error {
	return readChunks(ctx, f.bus, nil, off, buf, f.readSwap)
}

func (f *NOR) eraseBlock(ctx context.Context, off int) error {
	return f.erase(ctx, f.info.EraseOpcode, off)
}

// program writes freshly erased data one page at a time, skipping pages
// that are already all 0xff.
func (f *NOR) program(ctx context.Context, off int, data []byte) error {
	return programPages(ctx, f.bus, f.info.PageSize, off, data, func(st *Stream, at int, swap uint32) {
		st.Command(norWriteEnable).
			Select().
			Fast(f.addr(norPageProgram, at)...).
			TxBuf(swap, f.info.PageSize).
			Deselect().
			NORWait()
	})
}

// programPages stages data in the swap buffer and queues one program
// sequence per non-blank page.
func programPages(ctx context.Context, bus *Bus, pageSize, off int, data []byte,
	page func(st *Stream, at int, swap uint32)) error {
	piece := bus.SwapLen() - bus.SwapLen()%pageSize
	if piece == 0 {
		return fmt.Errorf("spi: page of %d bytes does not fit %d byte swap buffer", pageSize, bus.SwapLen())
	}

	bt := &batch{bus: bus}
	for done := 0; done < len(data); done += piece {
		chunk := data[done:min(done+piece, len(data))]
		if err := bus.Session().Store(ctx, bus.SwapBuf(), chunk); err != nil {
			return err
		}
		for k := 0; k < len(chunk); k += pageSize {
			if isErased(chunk[k:min(k+pageSize, len(chunk))]) {
				continue
			}
			at, swap := off+done+k, bus.SwapBuf()+uint32(k)
			if err := bt.add(ctx, func(st *Stream) { page(st, at, swap) }); err != nil {
				return err
			}
		}
		// the swap buffer is reused by the next piece
		if err := bt.flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
