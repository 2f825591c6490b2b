// Package felsim simulates a device in FEL mode for tests and demos.
//
// A Device implements transport.Transport and answers the FEL protocol from
// a sparse memory model:
//
//	dev := felsim.New(0x00168100, 0x00007e00)
//	s, err := fel.Open(ctx, dev)
//
// Executing code is simulated with hooks. OnExec attaches behaviour to an
// address (a DRAM stub that writes its status word, for instance) and
// AttachSPI emulates the SPI command-stream stub in front of a NOR or NAND
// flash model. Exchanges counts FEL requests so tests can assert that an
// operation never reached the device.
package felsim
