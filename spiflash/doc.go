// Package spiflash drives SPI NOR and SPI NAND flash attached to a chip in
// FEL mode.
//
// The host never touches the SPI controller directly. A small stub running
// on the device interprets command streams written to a command buffer and
// moves data through a swap buffer; both locations come from the chip
// descriptor. Bus uploads the stub and runs streams built with Stream.
//
// # Detection
//
//	nor, err := spiflash.DetectNOR(ctx, session)
//	if errors.Is(err, spiflash.ErrNoFlash) {
//	    fmt.Println("no spi nor flash")
//	}
//
// NOR geometry comes from SFDP when available and from the JEDEC ID table
// otherwise. NAND parts are looked up by ID.
//
// # Read, Write, Erase
//
// All offsets and lengths are checked against the detected capacity and
// fail with *RangeError. Write handles erase alignment itself: blocks only
// partly covered are read, merged, erased and reprogrammed, and pages that
// are entirely 0xff are not programmed. Progress is reported through the
// session progress callback, per swap buffer for reads and per erase block
// for writes.
package spiflash
