// Package protocol implements the framing of the FEL boot-ROM protocol.
//
// This package provides functions to build request frames and parse response
// frames exchanged with a system-on-chip in USB recovery mode.
//
// # Protocol Overview
//
// Every transfer on the bulk pipe is wrapped:
//
//	Host -> device:  AWUC request (32 bytes) announcing direction and length
//	Data phase:      length bytes in the announced direction
//	Device -> host:  AWUS status (13 bytes)
//
// FEL commands ride on top of the wrapper:
//
//	1. wrapped write of a 16-byte request [CMD][ADDR][LEN][PAD]
//	2. optional wrapped data phase (read or write, LEN bytes)
//	3. wrapped read of the 8-byte FEL status
//
// All multi-byte fields are little-endian.
//
// # Command Builders
//
// Use the Build* functions to create frames:
//
//	frame := protocol.BuildVersionRequest()
//	frame, err := protocol.BuildReadRequest(0x00008000, 512)
//	frame, err := protocol.BuildUSBRequest(protocol.USBWrite, len(frame))
//
// # Response Parsers
//
// Use the Parse* functions to validate what the device sends back:
//
//	st, err := protocol.ParseUSBStatus(frame)
//	id, err := protocol.ParseIdentity(data)
//
// Structural failures are reported as *MalformedResponseError.
//
// # Open framing details
//
// The meaning of the FEL status bytes and of several identity fields is not
// documented by the boot ROM vendor. They are parsed verbatim and only their
// size is enforced.
package protocol
