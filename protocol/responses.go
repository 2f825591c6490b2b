package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseUSBStatus validates an AWUS wrapper status.
//
// Frame structure:
//
//	["AWUS"][TAG(4)][RESIDUE(4)][STATUS(1)]
func ParseUSBStatus(frame []byte) (*USBStatus, error) {
	if len(frame) < USBStatusSize {
		return nil, &MalformedResponseError{
			What:   "USB status",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(frame), USBStatusSize),
		}
	}
	if string(frame[0:4]) != USBStatusSignature {
		return nil, &MalformedResponseError{
			What:   "USB status",
			Reason: fmt.Sprintf("signature %q, expected %q", frame[0:4], USBStatusSignature),
		}
	}

	return &USBStatus{
		Tag:     binary.LittleEndian.Uint32(frame[4:8]),
		Residue: binary.LittleEndian.Uint32(frame[8:12]),
		Status:  frame[12],
	}, nil
}

// ParseStatus validates the FEL status read after a command. The boot ROM
// does not document its contents, so only the size is checked.
func ParseStatus(frame []byte) error {
	if len(frame) != StatusSize {
		return &MalformedResponseError{
			What:   "FEL status",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(frame), StatusSize),
		}
	}
	return nil
}

// ParseIdentity parses the identity block returned by the version command.
//
// Data format (IdentitySize bytes, little-endian):
//
//	[SIGNATURE(8)][ID(4)][FIRMWARE(4)][PROTOCOL(2)][R12(1)][R13(1)][SCRATCHPAD(4)][PAD0(4)][PAD1(4)]
//
// The returned identity is non-nil whenever at least IdentitySize bytes were
// supplied, even when the signature does not match, so callers can surface
// the raw fields for diagnostics.
func ParseIdentity(data []byte) (*Identity, error) {
	if len(data) < IdentitySize {
		return nil, &MalformedResponseError{
			What:   "identity",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(data), IdentitySize),
		}
	}

	id := &Identity{
		ID:         binary.LittleEndian.Uint32(data[8:12]),
		Firmware:   binary.LittleEndian.Uint32(data[12:16]),
		Protocol:   binary.LittleEndian.Uint16(data[16:18]),
		Reserved12: data[18],
		Reserved13: data[19],
		Scratchpad: binary.LittleEndian.Uint32(data[20:24]),
		Pad: [2]uint32{
			binary.LittleEndian.Uint32(data[24:28]),
			binary.LittleEndian.Uint32(data[28:32]),
		},
	}
	copy(id.Signature[:], data[0:8])

	if string(id.Signature[:]) != IdentitySignature {
		return id, &MalformedResponseError{
			What:   "identity",
			Reason: fmt.Sprintf("signature %q, expected %q", id.Signature[:], IdentitySignature),
		}
	}

	return id, nil
}

// MarshalIdentity encodes id in the wire layout understood by ParseIdentity.
func MarshalIdentity(id Identity) []byte {
	data := make([]byte, IdentitySize)
	copy(data[0:8], id.Signature[:])
	binary.LittleEndian.PutUint32(data[8:12], id.ID)
	binary.LittleEndian.PutUint32(data[12:16], id.Firmware)
	binary.LittleEndian.PutUint16(data[16:18], id.Protocol)
	data[18] = id.Reserved12
	data[19] = id.Reserved13
	binary.LittleEndian.PutUint32(data[20:24], id.Scratchpad)
	binary.LittleEndian.PutUint32(data[24:28], id.Pad[0])
	binary.LittleEndian.PutUint32(data[28:32], id.Pad[1])
	return data
}

// ParseUSBRequest decodes an AWUC wrapper request. It is the device-side
// counterpart of BuildUSBRequest and is used by simulators.
func ParseUSBRequest(frame []byte) (dir uint16, length int, err error) {
	if len(frame) != USBRequestSize {
		return 0, 0, &MalformedResponseError{
			What:   "USB request",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(frame), USBRequestSize),
		}
	}
	if string(frame[0:4]) != USBRequestSignature {
		return 0, 0, &MalformedResponseError{
			What:   "USB request",
			Reason: fmt.Sprintf("signature %q, expected %q", frame[0:4], USBRequestSignature),
		}
	}
	dir = binary.LittleEndian.Uint16(frame[16:18])
	length = int(binary.LittleEndian.Uint32(frame[8:12]))
	return dir, length, nil
}

// ParseRequest decodes a FEL request frame.
func ParseRequest(frame []byte) (Request, error) {
	if len(frame) != RequestSize {
		return Request{}, &MalformedResponseError{
			What:   "FEL request",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(frame), RequestSize),
		}
	}
	return Request{
		Cmd:  binary.LittleEndian.Uint32(frame[0:4]),
		Addr: binary.LittleEndian.Uint32(frame[4:8]),
		Len:  binary.LittleEndian.Uint32(frame[8:12]),
	}, nil
}

// BuildUSBStatus constructs an AWUS wrapper status. Used by simulators.
func BuildUSBStatus(status byte) []byte {
	frame := make([]byte, USBStatusSize)
	copy(frame[0:4], USBStatusSignature)
	frame[12] = status
	return frame
}
