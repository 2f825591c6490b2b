package protocol

import "fmt"

// Identity is the device identity block returned by the version command.
type Identity struct {
	// Signature is the fixed tag, "AWUSBFEX" on every known boot ROM
	Signature [8]byte

	// ID is the SoC identifier used to look up the chip descriptor
	ID uint32

	// Firmware is the reserved word at offset 0x0c (firmware revision on some SoCs)
	Firmware uint32

	// Protocol is the FEL protocol version
	Protocol uint16

	// Reserved12 and Reserved13 are undocumented bytes
	Reserved12 uint8
	Reserved13 uint8

	// Scratchpad is a device address free for host/stub handshakes
	Scratchpad uint32

	// Pad holds the two trailing reserved words
	Pad [2]uint32
}

// String formats the identity the way the version command prints it.
func (id Identity) String() string {
	return fmt.Sprintf("%.8s soc=%08x %08x ver=%04x %02x %02x scratchpad=%08x %08x %08x",
		id.Signature[:], id.ID, id.Firmware, id.Protocol, id.Reserved12, id.Reserved13,
		id.Scratchpad, id.Pad[0], id.Pad[1])
}

// Request is a FEL command.
type Request struct {
	// Cmd is one of the Cmd* codes
	Cmd uint32

	// Addr is the device address the command targets
	Addr uint32

	// Len is the data phase length in bytes
	Len uint32
}

// USBStatus is the AWUS wrapper status trailing every USB transfer.
type USBStatus struct {
	// Tag echoes the request tag
	Tag uint32

	// Residue is the number of bytes the device did not transfer
	Residue uint32

	// Status is zero on success
	Status byte
}
