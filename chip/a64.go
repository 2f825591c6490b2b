package chip

// A64: quad Cortex-A53. DRAM init and SPI NAND are left to the BSP loader.
func init() {
	Register(&Descriptor{
		Name: "A64",
		ID:   0x00168900,
		Caps: CapSID | CapReset | CapJTAG | CapSPINOR,
		Watchdog: []RegOp{
			{Addr: 0x01c20cb4, Value: 0x00000001},
			{Addr: 0x01c20cb8, Value: 0x00000001},
		},
		SID: SIDParams{Method: SIDDirect, Base: 0x01c14000, Offset: 0x200},
		JTAG: []RegOp{
			{Addr: 0x01c208b4, Mask: 0x00707077, Value: 0x00303033},
		},
		SPI: SPIParams{
			Stub:     "a64-spi",
			StubAddr: 0x00010000,
			Base:     0x01c68000,
			CmdBuf:   0x00011000,
			CmdLen:   0x1000,
			SwapBuf:  0x00012000,
			SwapLen:  0x8000,
			Pins: []RegOp{
				{Addr: 0x01c20060, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c202c0, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c20848, Mask: 0x00007777, Value: 0x00004444},
			},
		},
	})
}
