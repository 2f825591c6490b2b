package fel

import (
	"errors"
	"strings"
	"testing"

	"github.com/xboot/xfel-go/chip"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("pipe error")

	tests := []struct {
		name  string
		err   error
		parts []string
	}{
		{
			name:  "transfer",
			err:   &TransferError{Op: OpRead, Addr: 0x40000000, Done: 65536, Err: cause},
			parts: []string{"read", "0x40000000", "65536 bytes", "pipe error"},
		},
		{
			name:  "verification",
			err:   &VerificationError{Addr: 0x1000, Offset: 3, Want: 0xaa, Got: 0x55},
			parts: []string{"0x00001003", "offset 3", "0xaa", "0x55"},
		},
		{
			name:  "dram failure",
			err:   &DRAMError{Type: "ddr3", Status: chip.DRAMFail, Polls: 2},
			parts: []string{"ddr3", "failed"},
		},
		{
			name:  "dram timeout",
			err:   &DRAMError{Type: "ddr3", Status: 0x1234, Polls: 100},
			parts: []string{"timed out after 100 polls", "0x00001234"},
		},
		{
			name:  "identity",
			err:   &IdentityError{Err: cause},
			parts: []string{"unsupported FEL device", "pipe error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, part := range tt.parts {
				if !strings.Contains(msg, part) {
					t.Errorf("error message %q should contain %q", msg, part)
				}
			}
		})
	}
}

func TestTransferErrorUnwrap(t *testing.T) {
	cause := errors.New("stall")
	err := error(&TransferError{Op: OpWrite, Err: cause})
	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the cause")
	}
}
