// Package chip describes the SoC families reachable over FEL.
//
// Each supported family is a Descriptor registered from its own file in
// this package. The descriptor carries a capability set and the parameter
// blocks the extended operations need: watchdog register script, SID
// location, JTAG pin-mux, DRAM stub tables and SPI controller layout.
//
// # Lookup
//
// Sessions resolve the descriptor from the identity block:
//
//	d, ok := chip.Lookup(id.ID)
//	if !ok {
//	    // unknown chip: memory access still works, extended ops do not
//	}
//
// # Capability gate
//
// Operations check support before touching the device:
//
//	if err := d.Require(chip.CapSPINOR); err != nil {
//	    return err // *UnsupportedError, matches ErrUnsupported
//	}
//
// Require is safe on a nil descriptor.
//
// # Adding a chip
//
// Create a file that calls Register from init. Registering the same ID
// twice panics.
//
// # DRAM profiles
//
// Board specific DRAM parameters can be loaded from YAML with
// LoadDRAMProfiles and merged into the registry with ApplyProfiles.
package chip
