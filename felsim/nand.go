package felsim

import "bytes"

// NAND models a SPI NAND flash with a page cache, feature registers and
// block lock. Pages are stored sparsely; spare areas are kept in the cache
// but not persisted.
type NAND struct {
	ID            []byte
	PageSize      int
	SpareSize     int
	PagesPerBlock int
	Blocks        int

	pages    map[int][]byte
	features map[byte]byte
	cache    []byte
	wel      bool
	cmd      []byte
	readPos  int
	selected bool
}

// NewNAND returns an erased, locked flash of blocks erase blocks.
func NewNAND(id []byte, pageSize, spareSize, pagesPerBlock, blocks int) *NAND {
	return &NAND{
		ID:            id,
		PageSize:      pageSize,
		SpareSize:     spareSize,
		PagesPerBlock: pagesPerBlock,
		Blocks:        blocks,
		pages:         make(map[int][]byte),
		features:      map[byte]byte{0xa0: 0x38, 0xb0: 0x10, 0xc0: 0x00},
		cache:         bytes.Repeat([]byte{0xff}, pageSize+spareSize),
	}
}

// Page returns a copy of page n.
func (f *NAND) Page(n int) []byte {
	if pg, ok := f.pages[n]; ok {
		return append([]byte(nil), pg...)
	}
	return bytes.Repeat([]byte{0xff}, f.PageSize)
}

// Bytes returns n bytes starting at byte offset off of the data area.
func (f *NAND) Bytes(off, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		pos := off + len(out)
		pg := f.Page(pos / f.PageSize)
		out = append(out, pg[pos%f.PageSize:min(f.PageSize, pos%f.PageSize+n-len(out))]...)
	}
	return out
}

// Locked reports whether block protection is active.
func (f *NAND) Locked() bool { return f.features[0xa0]&0x38 != 0 }

func (f *NAND) Select() {
	f.selected = true
	f.cmd = f.cmd[:0]
	f.readPos = 0
}

func (f *NAND) Write(p []byte) {
	if f.selected {
		f.cmd = append(f.cmd, p...)
	}
}

func (f *NAND) Read(p []byte) {
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
	case 0x0f:
		if len(f.cmd) < 2 {
			break
		}
		v := f.features[f.cmd[1]]
		if f.cmd[1] == 0xc0 && f.wel {
			v |= 0x02
		}
		for i := range p {
			p[i] = v
		}
	case 0x03, 0x0b:
		if len(f.cmd) < 4 {
			break
		}
		col := int(f.cmd[1])<<8 | int(f.cmd[2])
		for i := range p {
			if j := col + f.readPos + i; j < len(f.cache) {
				p[i] = f.cache[j]
			}
		}
	}
	f.readPos += len(p)
}

func (f *NAND) Deselect() {
	if !f.selected {
		return
	}
	f.selected = false
	if len(f.cmd) == 0 {
		return
	}

	switch f.cmd[0] {
	case 0xff:
		f.wel = false
	case 0x06:
		f.wel = true
	case 0x04:
		f.wel = false
	case 0x1f:
		if len(f.cmd) >= 3 {
			f.features[f.cmd[1]] = f.cmd[2]
		}
	case 0x13:
		if page, ok := f.row(); ok {
			copy(f.cache, f.Page(page))
			for i := f.PageSize; i < len(f.cache); i++ {
				f.cache[i] = 0xff
			}
		}
	case 0x02, 0x84:
		if len(f.cmd) < 3 {
			break
		}
		if f.cmd[0] == 0x02 {
			for i := range f.cache {
				f.cache[i] = 0xff
			}
		}
		col := int(f.cmd[1])<<8 | int(f.cmd[2])
		copy(f.cache[min(col, len(f.cache)):], f.cmd[3:])
	case 0x10:
		if page, ok := f.row(); ok && f.wel && !f.Locked() {
			dst := f.Page(page)
			for i := range dst {
				dst[i] &= f.cache[i]
			}
			f.pages[page] = dst
		}
		f.wel = false
	case 0xd8:
		if page, ok := f.row(); ok && f.wel && !f.Locked() {
			first := page - page%f.PagesPerBlock
			for p := first; p < first+f.PagesPerBlock; p++ {
				delete(f.pages, p)
			}
		}
		f.wel = false
	}
}

func (f *NAND) row() (int, bool) {
	if len(f.cmd) < 4 {
		return 0, false
	}
	page := int(f.cmd[1])<<16 | int(f.cmd[2])<<8 | int(f.cmd[3])
	if page >= f.Blocks*f.PagesPerBlock {
		return 0, false
	}
	return page, true
}
