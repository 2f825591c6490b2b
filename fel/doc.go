// Package fel talks to a system-on-chip held in its USB boot-ROM recovery
// mode (FEL).
//
// # Overview
//
// A Session wraps an open transport.Transport. Opening it performs the
// version handshake, reads the identity block and resolves the chip
// descriptor from the chip registry. Everything else is built from three
// primitives:
//   - reading device memory
//   - writing device memory
//   - executing code at an address
//
// # Basic Usage
//
//	t, err := usb.Open(usb.VendorID, usb.ProductID, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := fel.Open(ctx, t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	v, err := s.ReadWord(ctx, 0x01c20000)
//	buf, err := s.Read(ctx, 0x40000000, 512)
//	err = s.Write(ctx, 0x00008000, code)
//	err = s.Exec(ctx, 0x00008000)
//
// Transfers larger than protocol.MaxTransferSize are split into chunks sent
// in address order, one FEL exchange each. A failed chunk ends the transfer
// with a *TransferError recording how many bytes completed. Nothing is
// retried.
//
// # Extended Operations
//
// Reset, SID, JTAG and InitDRAM depend on the chip. They check the
// descriptor capabilities first and return *chip.UnsupportedError, without
// any device traffic, when the chip is unknown or lacks the feature.
// Operations that run a stub need a payload store:
//
//	s, err := fel.Open(ctx, t,
//	    fel.WithPayloads(payload.NewDir(afero.NewOsFs(), dir)),
//	)
//	err = s.InitDRAM(ctx, "") // chip default parameter set
//
// # Configuration Options
//
//	s, err := fel.Open(ctx, t,
//	    fel.WithProgress(progressFunc),
//	    fel.WithLogger(myLogger),
//	    fel.WithTimeout(5*time.Second),
//	    fel.WithPollAttempts(200),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - IdentityError: the device did not answer with a FEL identity
//   - TransferError: a memory transfer failed part way
//   - VerificationError: read-back differs from what was written
//   - DRAMError: the DRAM stub failed or never finished
//   - chip.UnsupportedError: the chip lacks the capability
//
// # Execution Risk
//
// Exec hands the CPU to arbitrary code. If that code never returns to the
// boot ROM the device stops answering, the call times out and the device
// must be reset by hand before a new session can be opened.
package fel
