package chip

// H6: quad Cortex-A53, R_ and main blocks moved to the 0x03000000 map.
func init() {
	Register(&Descriptor{
		Name: "H6",
		ID:   0x00172800,
		Caps: CapSID | CapReset | CapJTAG | CapSPINOR | CapSPINAND,
		Watchdog: []RegOp{
			{Addr: 0x030090b4, Value: 0x00000001},
			{Addr: 0x030090b8, Value: 0x00000001},
		},
		SID: SIDParams{Method: SIDDirect, Base: 0x03006000, Offset: 0x200},
		JTAG: []RegOp{
			{Addr: 0x0300b0b4, Mask: 0x00707077, Value: 0x00303033},
		},
		SPI: SPIParams{
			Stub:     "h6-spi",
			StubAddr: 0x00020000,
			Base:     0x05010000,
			CmdBuf:   0x00021000,
			CmdLen:   0x1000,
			SwapBuf:  0x00022000,
			SwapLen:  0x10000,
			Pins: []RegOp{
				{Addr: 0x0300196c, Mask: 0x00010001, Value: 0x00010001}, // gate + reset
				{Addr: 0x03001940, Mask: 1 << 31, Value: 1 << 31},       // module clock
				{Addr: 0x0300b048, Mask: 0x00707707, Value: 0x00404404}, // PC0/PC2/PC3/PC5
			},
		},
	})
}
