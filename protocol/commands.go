package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildUSBRequest constructs an AWUC wrapper request announcing a data phase
// of length bytes in direction dir (USBRead or USBWrite).
//
// Frame structure:
//
//	["AWUC"][TAG(4)][LEN(4)][0x0c000000(4)][DIR(2)][LEN(4)][PAD(10)]
func BuildUSBRequest(dir uint16, length int) ([]byte, error) {
	if dir != USBRead && dir != USBWrite {
		return nil, fmt.Errorf("invalid USB direction 0x%02X", dir)
	}
	if length < 0 || uint64(length) > 0xFFFFFFFF {
		return nil, fmt.Errorf("invalid USB transfer length %d", length)
	}

	frame := make([]byte, USBRequestSize)
	copy(frame[0:4], USBRequestSignature)
	binary.LittleEndian.PutUint32(frame[8:12], uint32(length))
	binary.LittleEndian.PutUint32(frame[12:16], usbRequestMagic)
	binary.LittleEndian.PutUint16(frame[16:18], dir)
	binary.LittleEndian.PutUint32(frame[18:22], uint32(length))

	return frame, nil
}

// BuildRequest constructs a FEL request frame.
//
// Frame structure:
//
//	[CMD(4)][ADDR(4)][LEN(4)][PAD(4)]
func BuildRequest(req Request) ([]byte, error) {
	switch req.Cmd {
	case CmdVersion, CmdWrite, CmdExec, CmdRead:
	default:
		return nil, fmt.Errorf("unknown FEL command 0x%03X", req.Cmd)
	}

	frame := make([]byte, RequestSize)
	binary.LittleEndian.PutUint32(frame[0:4], req.Cmd)
	binary.LittleEndian.PutUint32(frame[4:8], req.Addr)
	binary.LittleEndian.PutUint32(frame[8:12], req.Len)

	return frame, nil
}

// BuildVersionRequest constructs the identity query.
func BuildVersionRequest() []byte {
	frame, _ := BuildRequest(Request{Cmd: CmdVersion})
	return frame
}

// BuildReadRequest constructs a memory read of length bytes at addr.
// The length must not exceed MaxTransferSize.
func BuildReadRequest(addr uint32, length int) ([]byte, error) {
	if err := checkChunk(addr, length); err != nil {
		return nil, err
	}
	return BuildRequest(Request{Cmd: CmdRead, Addr: addr, Len: uint32(length)})
}

// BuildWriteRequest constructs a memory write of length bytes at addr.
// The length must not exceed MaxTransferSize.
func BuildWriteRequest(addr uint32, length int) ([]byte, error) {
	if err := checkChunk(addr, length); err != nil {
		return nil, err
	}
	return BuildRequest(Request{Cmd: CmdWrite, Addr: addr, Len: uint32(length)})
}

// BuildExecRequest constructs a branch to addr.
func BuildExecRequest(addr uint32) []byte {
	frame, _ := BuildRequest(Request{Cmd: CmdExec, Addr: addr})
	return frame
}

func checkChunk(addr uint32, length int) error {
	if length <= 0 {
		return fmt.Errorf("chunk length must be positive, got %d", length)
	}
	if length > MaxTransferSize {
		return fmt.Errorf("chunk length %d exceeds maximum %d bytes", length, MaxTransferSize)
	}
	if uint64(addr)+uint64(length) > 1<<32 {
		return fmt.Errorf("chunk 0x%08X+%d overflows the 32-bit address space", addr, length)
	}
	return nil
}
