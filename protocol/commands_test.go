package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildUSBRequest(t *testing.T) {
	tests := []struct {
		name    string
		dir     uint16
		length  int
		wantErr bool
		errMsg  string
	}{
		{name: "write 16", dir: USBWrite, length: 16},
		{name: "read 32", dir: USBRead, length: 32},
		{name: "zero length", dir: USBRead, length: 0},
		{name: "bad direction", dir: 0x13, length: 16, wantErr: true, errMsg: "invalid USB direction"},
		{name: "negative length", dir: USBWrite, length: -1, wantErr: true, errMsg: "invalid USB transfer length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildUSBRequest(tt.dir, tt.length)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(frame) != USBRequestSize {
				t.Fatalf("frame length = %d, want %d", len(frame), USBRequestSize)
			}
			if string(frame[0:4]) != USBRequestSignature {
				t.Errorf("signature = %q", frame[0:4])
			}
			if got := binary.LittleEndian.Uint32(frame[12:16]); got != 0x0c000000 {
				t.Errorf("magic = 0x%08X", got)
			}

			dir, length, err := ParseUSBRequest(frame)
			if err != nil {
				t.Fatalf("ParseUSBRequest: %v", err)
			}
			if dir != tt.dir || length != tt.length {
				t.Errorf("parsed (0x%02X, %d), want (0x%02X, %d)", dir, length, tt.dir, tt.length)
			}
		})
	}
}

func TestBuildReadWriteRequest(t *testing.T) {
	tests := []struct {
		name    string
		build   func(uint32, int) ([]byte, error)
		cmd     uint32
		addr    uint32
		length  int
		wantErr bool
		errMsg  string
	}{
		{name: "read", build: BuildReadRequest, cmd: CmdRead, addr: 0x40000000, length: 512},
		{name: "write max", build: BuildWriteRequest, cmd: CmdWrite, addr: 0x8000, length: MaxTransferSize},
		{name: "read at top", build: BuildReadRequest, cmd: CmdRead, addr: 0xFFFFFFFC, length: 4},
		{name: "too long", build: BuildWriteRequest, addr: 0, length: MaxTransferSize + 1, wantErr: true, errMsg: "exceeds maximum"},
		{name: "empty", build: BuildReadRequest, addr: 0, length: 0, wantErr: true, errMsg: "must be positive"},
		{name: "overflow", build: BuildReadRequest, addr: 0xFFFFFFFC, length: 8, wantErr: true, errMsg: "overflows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.build(tt.addr, tt.length)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			req, err := ParseRequest(frame)
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			want := Request{Cmd: tt.cmd, Addr: tt.addr, Len: uint32(tt.length)}
			if req != want {
				t.Errorf("request = %+v, want %+v", req, want)
			}
		})
	}
}

func TestBuildExecRequest(t *testing.T) {
	frame := BuildExecRequest(0x00008800)

	expected := []byte{
		0x02, 0x01, 0x00, 0x00, // CmdExec
		0x00, 0x88, 0x00, 0x00, // address
		0x00, 0x00, 0x00, 0x00, // length
		0x00, 0x00, 0x00, 0x00, // pad
	}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame = % X, want % X", frame, expected)
	}
}

func TestBuildRequestUnknownCommand(t *testing.T) {
	if _, err := BuildRequest(Request{Cmd: 0x200}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestBuildVersionRequest(t *testing.T) {
	frame := BuildVersionRequest()
	if len(frame) != RequestSize {
		t.Fatalf("frame length = %d, want %d", len(frame), RequestSize)
	}
	if binary.LittleEndian.Uint32(frame[0:4]) != CmdVersion {
		t.Errorf("cmd = % X", frame[0:4])
	}
}
