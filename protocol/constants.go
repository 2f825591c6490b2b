package protocol

// USB wrapper frame constants.
const (
	// USBRequestSignature opens every AWUC wrapper request
	USBRequestSignature = "AWUC"

	// USBStatusSignature opens every AWUS wrapper status
	USBStatusSignature = "AWUS"

	// USBRequestSize is the size of an AWUC wrapper request in bytes
	USBRequestSize = 32

	// USBStatusSize is the size of an AWUS wrapper status in bytes
	USBStatusSize = 13

	// usbRequestMagic is the constant word at offset 12 of an AWUC request
	usbRequestMagic = 0x0c000000
)

// USB wrapper transfer directions.
const (
	// USBRead announces a device-to-host data phase
	USBRead = 0x11

	// USBWrite announces a host-to-device data phase
	USBWrite = 0x12
)

// FEL command codes.
const (
	// CmdVersion requests the 32-byte identity block
	CmdVersion = 0x001

	// CmdWrite writes host data to device memory
	CmdWrite = 0x101

	// CmdExec branches to a device address
	CmdExec = 0x102

	// CmdRead reads device memory to the host
	CmdRead = 0x103
)

// FEL frame sizes.
const (
	// RequestSize is the size of a FEL request in bytes
	RequestSize = 16

	// StatusSize is the size of the FEL status read after every command
	StatusSize = 8
)

// Identity block layout.
const (
	// IdentitySignature is the expected tag of the identity block
	IdentitySignature = "AWUSBFEX"

	// IdentitySize is the size of the identity block in bytes:
	// SIG(8) + ID(4) + FIRMWARE(4) + PROTOCOL(2) + 2x RESERVED(1) + SCRATCHPAD(4) + 2x PAD(4)
	IdentitySize = 32
)

// MaxTransferSize is the largest memory chunk moved by one FEL exchange.
// It is fixed by the boot ROM's transfer buffer and never negotiated.
const MaxTransferSize = 64 * 1024
