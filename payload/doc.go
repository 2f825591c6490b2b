// Package payload supplies the small machine-code stubs that extended
// operations upload and execute on the device (DRAM init, SPI driver, SID
// readers).
//
// Stubs are target code built outside this module. A Dir store reads them
// from a directory, one <name>.bin file per stub:
//
//	store := payload.NewDir(afero.NewOsFs(), "/usr/share/xfel/payloads")
//	code, err := store.Load("d1-ddr")
//
// Map is an in-memory store for tests and embedding.
package payload
