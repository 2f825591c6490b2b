package spiflash

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
	"github.com/xboot/xfel-go/felsim"
	"github.com/xboot/xfel-go/payload"
)

const (
	idV3s = 0x00168100
	idA64 = 0x00168900

	idUnknown = 0x00999900
)

func setup(t *testing.T, socID uint32, flash felsim.SPIDevice, opts ...fel.Option) (*fel.Session, *felsim.Device) {
	t.Helper()
	d, ok := chip.Lookup(socID)
	if !ok {
		t.Fatalf("chip 0x%08x not registered", socID)
	}
	dev := felsim.New(socID, 0x00007e00)
	dev.AttachSPI(d.SPI, flash)

	opts = append([]fel.Option{fel.WithPayloads(payload.Map{d.SPI.Stub: {0x00, 0x00, 0xa0, 0xe3}})}, opts...)
	s, err := fel.Open(context.Background(), dev, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, dev
}

func fill(p []byte, seed int) []byte {
	for i := range p {
		p[i] = byte(i*13 + seed)
	}
	return p
}

func TestStreamEncoding(t *testing.T) {
	st := new(Stream).
		Init().
		Command(0x06).
		Select().
		Fast(0x03, 0x00, 0x10, 0x00).
		RxBuf(0x00009400, 0x200).
		TxBuf(0x00009400, 0x100).
		Deselect().
		NORWait().
		NANDWait()

	want := []byte{
		0x01,
		0x02, 0x04, 0x01, 0x06, 0x03,
		0x02,
		0x04, 0x04, 0x03, 0x00, 0x10, 0x00,
		0x06, 0x00, 0x94, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00,
		0x05, 0x00, 0x94, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00,
		0x03,
		0x07,
		0x08,
		0x00,
	}
	if diff := cmp.Diff(want, st.Bytes()); diff != "" {
		t.Errorf("stream (-want +got):\n%s", diff)
	}
	if st.Len() != len(want)-1 {
		t.Errorf("Len() = %d, want %d", st.Len(), len(want)-1)
	}
}

func TestStreamFastTooLong(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Fast did not panic")
		}
	}()
	new(Stream).Fast(make([]byte, 256)...)
}

func TestBusRunTooLong(t *testing.T) {
	s, _ := setup(t, idV3s, felsim.NewNOR([3]byte{0xef, 0x40, 0x17}, 8<<20, false))
	bus, err := Open(context.Background(), s, chip.CapSPINOR)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st := new(Stream)
	for st.Len() <= bus.MaxStream() {
		st.NORWait()
	}
	if err := bus.Run(context.Background(), st); err == nil {
		t.Error("expected error for oversized stream")
	}
}

func TestDetectNOR(t *testing.T) {
	tests := []struct {
		name     string
		flash    *felsim.NOR
		wantName string
		wantSize int
		want4B   bool
		wantErr  error
	}{
		{
			name:     "table",
			flash:    felsim.NewNOR([3]byte{0xef, 0x40, 0x17}, 8<<20, false),
			wantName: "W25Q64",
			wantSize: 8 << 20,
		},
		{
			name:     "sfdp only",
			flash:    felsim.NewNOR([3]byte{0x5e, 0x40, 0x16}, 4<<20, true),
			wantName: "SFDP 5e4016",
			wantSize: 4 << 20,
		},
		{
			name:     "sfdp overrides table size",
			flash:    felsim.NewNOR([3]byte{0xc8, 0x40, 0x18}, 2<<20, true),
			wantName: "GD25Q128",
			wantSize: 2 << 20,
		},
		{
			name:     "four byte addressing",
			flash:    felsim.NewNOR([3]byte{0xef, 0x40, 0x19}, 32<<20, true),
			wantName: "W25Q256",
			wantSize: 32 << 20,
			want4B:   true,
		},
		{
			name:    "nothing attached",
			flash:   felsim.NewNOR([3]byte{0xff, 0xff, 0xff}, 4<<10, false),
			wantErr: ErrNoFlash,
		},
		{
			name:    "bus stuck low",
			flash:   felsim.NewNOR([3]byte{0x00, 0x00, 0x00}, 4<<10, false),
			wantErr: ErrNoFlash,
		},
		{
			name:    "unknown id",
			flash:   felsim.NewNOR([3]byte{0x12, 0x34, 0x56}, 4<<10, false),
			wantErr: ErrUnknownFlash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setup(t, idV3s, tt.flash)

			nor, err := DetectNOR(context.Background(), s)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectNOR: %v", err)
			}

			info := nor.Info()
			if info.Name != tt.wantName || info.Capacity != tt.wantSize {
				t.Errorf("info = %s", info)
			}
			if info.EraseSize != 4096 || info.PageSize != 256 {
				t.Errorf("geometry = %+v", info)
			}
			if tt.flash.Protected() {
				t.Error("flash still write protected")
			}
			if tt.flash.FourByte() != tt.want4B {
				t.Errorf("4-byte mode = %v, want %v", tt.flash.FourByte(), tt.want4B)
			}
		})
	}
}

func TestDetectUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		socID  uint32
		detect func(ctx context.Context, s *fel.Session) error
	}{
		{
			name:   "nand on a64",
			socID:  idA64,
			detect: func(ctx context.Context, s *fel.Session) error { _, err := DetectNAND(ctx, s); return err },
		},
		{
			name:   "nor on unknown chip",
			socID:  idUnknown,
			detect: func(ctx context.Context, s *fel.Session) error { _, err := DetectNOR(ctx, s); return err },
		},
		{
			name:   "nand on unknown chip",
			socID:  idUnknown,
			detect: func(ctx context.Context, s *fel.Session) error { _, err := DetectNAND(ctx, s); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := felsim.New(tt.socID, 0x00007e00)
			s, err := fel.Open(context.Background(), dev,
				fel.WithPayloads(payload.Map{"a64-spi": {0x00}, "v3s-spi": {0x00}}))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			before := dev.Exchanges()

			err = tt.detect(context.Background(), s)
			if !errors.Is(err, chip.ErrUnsupported) {
				t.Fatalf("err = %v, want ErrUnsupported", err)
			}
			if dev.Exchanges() != before {
				t.Errorf("%d exchanges issued", dev.Exchanges()-before)
			}
		})
	}
}

func TestNORBlockEraseOnly(t *testing.T) {
	flash := felsim.NewNOR([3]byte{0x5e, 0x40, 0x17}, 8<<20, true)
	flash.BlockEraseOnly()
	s, _ := setup(t, idV3s, flash)
	ctx := context.Background()

	nor, err := DetectNOR(ctx, s)
	if err != nil {
		t.Fatalf("DetectNOR: %v", err)
	}
	info := nor.Info()
	if info.EraseSize != 64<<10 || info.EraseOpcode != 0xd8 {
		t.Fatalf("erase geometry = %d bytes, opcode 0x%02x", info.EraseSize, info.EraseOpcode)
	}

	fill(flash.Mem[:128<<10], 3)
	before := append([]byte(nil), flash.Mem[:128<<10]...)
	data := bytes.Repeat([]byte{0x42}, 0x2000)
	if err := nor.Write(ctx, 0xf000, data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := append([]byte(nil), before...)
	copy(want[0xf000:], data)
	if diff := cmp.Diff(want, flash.Mem[:128<<10]); diff != "" {
		t.Errorf("flash contents differ (-want +got):\n%s", diff)
	}

	if err := nor.Erase(ctx, 0x1000, 0x1000); err == nil {
		t.Error("expected alignment error for a 4 KiB erase")
	}
}

func TestDetectWithoutPayloads(t *testing.T) {
	d, _ := chip.Lookup(idV3s)
	dev := felsim.New(idV3s, 0)
	dev.AttachSPI(d.SPI, felsim.NewNOR([3]byte{0xef, 0x40, 0x17}, 8<<20, false))
	s, err := fel.Open(context.Background(), dev)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DetectNOR(context.Background(), s); !errors.Is(err, fel.ErrNoPayloads) {
		t.Errorf("err = %v, want ErrNoPayloads", err)
	}
}

func detectNOR(t *testing.T, size int, opts ...fel.Option) (*NOR, *felsim.NOR) {
	t.Helper()
	flash := felsim.NewNOR([3]byte{0xef, 0x40, 0x17}, size, true)
	s, _ := setup(t, idV3s, flash, opts...)
	nor, err := DetectNOR(context.Background(), s)
	if err != nil {
		t.Fatalf("DetectNOR: %v", err)
	}
	return nor, flash
}

func TestNORRead(t *testing.T) {
	nor, flash := detectNOR(t, 1<<20)
	fill(flash.Mem, 1)

	// spans several swap buffers and starts unaligned
	got, err := nor.Read(context.Background(), 0x123, 0x9000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, flash.Mem[0x123:0x123+0x9000]) {
		t.Error("read data differs from flash contents")
	}
}

func TestNORWritePreservesNeighbours(t *testing.T) {
	nor, flash := detectNOR(t, 1<<20)
	fill(flash.Mem, 7)
	want := append([]byte(nil), flash.Mem...)

	data := fill(make([]byte, 300), 99)
	off := 2*4096 - 100
	copy(want[off:], data)

	if err := nor.Write(context.Background(), off, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(flash.Mem, want) {
		for i := range want {
			if flash.Mem[i] != want[i] {
				t.Fatalf("first difference at 0x%x: 0x%02x, want 0x%02x", i, flash.Mem[i], want[i])
			}
		}
	}
}

func TestNORWriteFullBlocksAndBlankPages(t *testing.T) {
	nor, flash := detectNOR(t, 1<<20)
	fill(flash.Mem, 3)

	data := fill(make([]byte, 3*4096), 5)
	for i := 256; i < 512; i++ {
		data[i] = 0xff
	}
	if err := nor.Write(context.Background(), 0x10000, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(flash.Mem[0x10000:0x10000+len(data)], data) {
		t.Error("flash contents differ")
	}
}

func TestNORWriteProgress(t *testing.T) {
	var reports []fel.Progress
	nor, _ := detectNOR(t, 1<<20, fel.WithProgress(func(p fel.Progress) {
		if p.Op == fel.OpWrite {
			reports = append(reports, p)
		}
	}))

	if err := nor.Write(context.Background(), 4000, make([]byte, 5000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// blocks 0, 1 and 2 are touched
	dones := []int{}
	for _, r := range reports {
		dones = append(dones, r.Done)
	}
	if diff := cmp.Diff([]int{96, 4192, 5000}, dones); diff != "" {
		t.Errorf("progress (-want +got):\n%s", diff)
	}
}

func TestNORErase(t *testing.T) {
	nor, flash := detectNOR(t, 1<<20)
	fill(flash.Mem, 11)
	before := append([]byte(nil), flash.Mem...)

	off, n := 0x0f000, 0x11000 // one sector, then one 64 KiB block
	if err := nor.Erase(context.Background(), off, n); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if !isErased(flash.Mem[off : off+n]) {
		t.Error("range not erased")
	}
	if !bytes.Equal(flash.Mem[:off], before[:off]) || !bytes.Equal(flash.Mem[off+n:], before[off+n:]) {
		t.Error("erase touched bytes outside the range")
	}
}

func TestNORRangeErrors(t *testing.T) {
	nor, _ := detectNOR(t, 1<<20)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"read past end", func() error { _, err := nor.Read(ctx, 1<<20-4, 8); return err }},
		{"read negative", func() error { _, err := nor.Read(ctx, -1, 8); return err }},
		{"write past end", func() error { return nor.Write(ctx, 1<<20, []byte{1}) }},
		{"erase unaligned", func() error { return nor.Erase(ctx, 100, 4096) }},
		{"erase past end", func() error { return nor.Erase(ctx, 1<<20, 4096) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var re *RangeError
			if err := tt.fn(); !errors.As(err, &re) {
				t.Errorf("err = %v, want *RangeError", err)
			}
		})
	}
}

func TestDetectNAND(t *testing.T) {
	tests := []struct {
		name     string
		id       []byte
		wantName string
		wantErr  error
	}{
		{name: "winbond", id: []byte{0xef, 0xaa, 0x21}, wantName: "W25N01GV"},
		{name: "gigadevice", id: []byte{0xc8, 0x51}, wantName: "GD5F1GQ5UE"},
		{name: "nothing attached", id: []byte{0xff, 0xff, 0xff, 0xff}, wantErr: ErrNoFlash},
		{name: "unknown", id: []byte{0x42, 0x42}, wantErr: ErrUnknownFlash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flash := felsim.NewNAND(tt.id, 2048, 64, 64, 1024)
			s, _ := setup(t, idV3s, flash)

			nand, err := DetectNAND(context.Background(), s)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectNAND: %v", err)
			}
			info := nand.Info()
			if info.Name != tt.wantName || info.EraseSize != 128<<10 || info.PageSize != 2048 {
				t.Errorf("info = %s", info)
			}
			if flash.Locked() {
				t.Error("block protection still set")
			}
		})
	}
}

func TestNANDWriteAcrossBlockBoundary(t *testing.T) {
	flash := felsim.NewNAND([]byte{0xef, 0xaa, 0x21}, 2048, 64, 64, 1024)
	s, _ := setup(t, idV3s, flash)
	nand, err := DetectNAND(context.Background(), s)
	if err != nil {
		t.Fatalf("DetectNAND: %v", err)
	}
	ctx := context.Background()
	block := nand.Info().EraseSize

	base := fill(make([]byte, 2*block), 17)
	if err := nand.Write(ctx, 0, base); err != nil {
		t.Fatalf("initial Write: %v", err)
	}

	patch := fill(make([]byte, 5000), 201)
	off := block - 3000
	want := append([]byte(nil), base...)
	copy(want[off:], patch)

	if err := nand.Write(ctx, off, patch); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(flash.Bytes(0, 2*block), want) {
		t.Error("flash contents differ from expected merge")
	}

	got, err := nand.Read(ctx, off-10, 5020)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, want[off-10:off+5010]) {
		t.Error("read back differs")
	}
}

func TestNANDErase(t *testing.T) {
	flash := felsim.NewNAND([]byte{0xef, 0xaa, 0x21}, 2048, 64, 64, 1024)
	s, _ := setup(t, idV3s, flash)
	nand, err := DetectNAND(context.Background(), s)
	if err != nil {
		t.Fatalf("DetectNAND: %v", err)
	}
	ctx := context.Background()
	block := nand.Info().EraseSize

	if err := nand.Write(ctx, 0, fill(make([]byte, 4096), 1)); err != nil {
		t.Fatal(err)
	}
	if err := nand.Erase(ctx, 0, block); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if !isErased(flash.Bytes(0, 4096)) {
		t.Error("block not erased")
	}

	var re *RangeError
	if err := nand.Erase(ctx, 2048, block); !errors.As(err, &re) {
		t.Errorf("unaligned erase err = %v, want *RangeError", err)
	}
}

func TestParseBasicTable(t *testing.T) {
	tests := []struct {
		name    string
		table   []uint32
		want    sfdpBasic
		wantErr bool
	}{
		{
			name:  "16 MiB with erase types",
			table: []uint32{0xfff120e5, 128<<20 - 1, 0, 0, 0, 0, 0, 0x520f200c, 0x0000d810},
			want:  sfdpBasic{Capacity: 16 << 20, EraseOpcode: 0x20, BlockOpcode: 0xd8, AddrBytes: 3},
		},
		{
			name:  "power of two density",
			table: []uint32{0xfff120e5, 0x80000000 | 30},
			want:  sfdpBasic{Capacity: 128 << 20, EraseOpcode: 0x20, AddrBytes: 4},
		},
		{
			name:  "64 KiB erase only",
			table: []uint32{0xffffffe7, 64<<20 - 1, 0, 0, 0, 0, 0, 0x0000d810, 0},
			want:  sfdpBasic{Capacity: 8 << 20, BlockOpcode: 0xd8, AddrBytes: 3},
		},
		{
			name:    "absurd density",
			table:   []uint32{0xfff120e5, 0x80000000 | 40},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBasicTable(tt.table)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}
