package fel

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xboot/xfel-go/felsim"
	"github.com/xboot/xfel-go/protocol"
	"github.com/xboot/xfel-go/transport"
)

func pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7 + i>>8)
	}
	return p
}

func TestReadWriteRoundTrip(t *testing.T) {
	const chunk = protocol.MaxTransferSize

	tests := []struct {
		name   string
		addr   uint32
		n      int
		chunks int
	}{
		{name: "one byte", addr: 0x8000, n: 1, chunks: 1},
		{name: "512 bytes", addr: 0x40000000, n: 512, chunks: 1},
		{name: "just below max", addr: 0x40000000, n: chunk - 1, chunks: 1},
		{name: "exactly max", addr: 0x40000000, n: chunk, chunks: 1},
		{name: "just above max", addr: 0x40000000, n: chunk + 1, chunks: 2},
		{name: "three chunks", addr: 0x40000003, n: 3 * chunk, chunks: 3},
		{name: "ends at top of address space", addr: 0xfffff000, n: 0x1000, chunks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newSession(t, idV3s)
			ctx := context.Background()
			want := pattern(tt.n)

			before := dev.Exchanges()
			if err := s.Write(ctx, tt.addr, want); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := dev.Exchanges() - before; got != tt.chunks {
				t.Errorf("write used %d exchanges, want %d", got, tt.chunks)
			}

			before = dev.Exchanges()
			got, err := s.Read(ctx, tt.addr, tt.n)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if n := dev.Exchanges() - before; n != tt.chunks {
				t.Errorf("read used %d exchanges, want %d", n, tt.chunks)
			}
			if !bytes.Equal(got, want) {
				t.Error("read back data differs")
			}
			if !bytes.Equal(dev.Peek(tt.addr, tt.n), want) {
				t.Error("device memory differs")
			}
		})
	}
}

func TestWriteZeroLength(t *testing.T) {
	s, dev := newSession(t, idV3s)
	before := dev.Exchanges()

	if err := s.Write(context.Background(), 0x1000, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.WriteVerify(context.Background(), 0x1000, []byte{}); err != nil {
		t.Fatalf("WriteVerify: %v", err)
	}
	if dev.Exchanges() != before {
		t.Errorf("zero-length write issued %d exchanges", dev.Exchanges()-before)
	}
}

func TestReadInvalidRegion(t *testing.T) {
	s, dev := newSession(t, idV3s)
	before := dev.Exchanges()

	tests := []struct {
		name   string
		addr   uint32
		n      int
		errMsg string
	}{
		{"zero", 0x1000, 0, "must be positive"},
		{"negative", 0x1000, -4, "must be positive"},
		{"wraps", 0xfffffffc, 8, "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Read(context.Background(), tt.addr, tt.n)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("err = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
	if dev.Exchanges() != before {
		t.Error("invalid read reached the device")
	}
}

func TestWordAccess(t *testing.T) {
	s, dev := newSession(t, idV3s)
	ctx := context.Background()

	if err := s.WriteWord(ctx, 0x1000, 0xdeadbeef); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	v, err := s.ReadWord(ctx, 0x1000)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if v != 0xdeadbeef {
		t.Errorf("ReadWord = 0x%08x, want 0xdeadbeef", v)
	}
	if diff := cmp.Diff([]byte{0xef, 0xbe, 0xad, 0xde}, dev.Peek(0x1000, 4)); diff != "" {
		t.Errorf("byte order (-want +got):\n%s", diff)
	}

	dev.Poke(0x40000000, pattern(512))
	got, err := s.Read(ctx, 0x40000000, 512)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(pattern(512), got); diff != "" {
		t.Errorf("simulated pattern (-want +got):\n%s", diff)
	}
}

func TestTransferErrorReportsProgress(t *testing.T) {
	s, dev := newSession(t, idV3s)
	ioErr := errors.New("cable pulled")
	dev.SetFault(func(req protocol.Request) error {
		if req.Cmd == protocol.CmdWrite && req.Addr == 0x40000000+protocol.MaxTransferSize {
			return ioErr
		}
		return nil
	})

	err := s.Write(context.Background(), 0x40000000, make([]byte, 2*protocol.MaxTransferSize))

	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransferError", err)
	}
	if te.Op != OpWrite || te.Addr != 0x40000000 || te.Done != protocol.MaxTransferSize {
		t.Errorf("TransferError = %+v", te)
	}
	if !transport.IsTransportError(err) || !errors.Is(err, ioErr) {
		t.Errorf("cause not preserved: %v", err)
	}

	// the session recovers for the next exchange
	dev.SetFault(nil)
	if _, err := s.ReadWord(context.Background(), 0x40000000); err != nil {
		t.Errorf("ReadWord after failure: %v", err)
	}
}

func TestReadFailureReturnsNoData(t *testing.T) {
	s, dev := newSession(t, idV3s)
	dev.SetFault(func(req protocol.Request) error {
		if req.Cmd == protocol.CmdRead {
			return errors.New("stall")
		}
		return nil
	})
	got, err := s.Read(context.Background(), 0, 16)
	if err == nil || got != nil {
		t.Errorf("Read = %v, %v; want nil data and error", got, err)
	}
}

func TestCancelledContext(t *testing.T) {
	s, dev := newSession(t, idV3s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := dev.Exchanges()
	err := s.Write(ctx, 0, []byte{1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if dev.Exchanges() != before {
		t.Error("cancelled write reached the device")
	}
}

func TestWriteVerify(t *testing.T) {
	s, dev := newSession(t, idV3s)
	ctx := context.Background()
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	if err := s.WriteVerify(ctx, 0x1000, data); err != nil {
		t.Fatalf("WriteVerify: %v", err)
	}

	// a register that does not hold what was written
	dev.OnWrite(0x2004, func(d *felsim.Device, v uint32) { d.PokeWord(0x2004, v^0xff) })
	err := s.WriteVerify(ctx, 0x2000, data)

	var ve *VerificationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *VerificationError", err)
	}
	want := VerificationError{Addr: 0x2000, Offset: 4, Want: 5, Got: 5 ^ 0xff}
	if *ve != want {
		t.Errorf("VerificationError = %+v, want %+v", *ve, want)
	}
}

func TestProgress(t *testing.T) {
	var reports []Progress
	s, _ := newSession(t, idV3s, WithProgress(func(p Progress) { reports = append(reports, p) }))

	n := 2*protocol.MaxTransferSize + 10
	if err := s.Write(context.Background(), 0x40000000, make([]byte, n)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	for i, p := range reports {
		if p.Op != OpWrite || p.Total != n || p.Addr != 0x40000000 {
			t.Errorf("report %d = %+v", i, p)
		}
		if i > 0 && p.Done <= reports[i-1].Done {
			t.Errorf("progress not increasing: %d after %d", p.Done, reports[i-1].Done)
		}
	}
	if last := reports[len(reports)-1]; last.Done != n || last.Percentage() != 100 {
		t.Errorf("final report = %+v", last)
	}
}

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Region
		wantErr bool
	}{
		{"ok", Region{Addr: 0, Len: 1}, false},
		{"top", Region{Addr: 0xffffff00, Len: 0x100}, false},
		{"empty", Region{Addr: 0, Len: 0}, true},
		{"overflow", Region{Addr: 0xffffff00, Len: 0x101}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
