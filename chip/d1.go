package chip

// D1/F133/T113/R528 share one boot ROM and one SoC ID; the board picks the
// DRAM parameter set.
func init() {
	Register(&Descriptor{
		Name: "D1/F133/T113",
		ID:   0x00185900,
		Caps: CapSID | CapReset | CapJTAG | CapDDR | CapSPINOR | CapSPINAND,
		Watchdog: []RegOp{
			{Addr: 0x020500a8, Value: (0x16aa << 16) | 0x1}, // WDOG_SOFT_RST with key
		},
		SID: SIDParams{Method: SIDDirect, Base: 0x03006000, Offset: 0x200},
		// PF0/PF1/PF3/PF5 -> JTAG (function 4)
		JTAG: []RegOp{
			{Addr: 0x020000f0, Mask: 0x00f0f0ff, Value: 0x00404044},
		},
		DRAM: DRAMParams{
			Stub:       "d1-ddr",
			StubAddr:   0x00028000,
			ParamAddr:  0x00027f00,
			StatusAddr: 0x00027ffc,
			Default:    "d1",
			Types: map[string][]uint32{
				// clk, type, zq, odt_en, para1, para2, mr0-mr3, tpr0-tpr13
				"d1": {
					792, 3, 0x007b7bfb, 0x01, 0x000010d2, 0x00000000,
					0x00001c70, 0x00000042, 0x00000018, 0x00000000,
					0x004a2195, 0x02423190, 0x0008b061, 0xb4787896, 0x00000000, 0x48484848, 0x00000048,
					0x1620121e, 0x00000000, 0x00000000, 0x00000000, 0x00340000, 0x00000046, 0x34000100,
				},
				"f133": {
					528, 2, 0x007b7bf9, 0x00, 0x000000d2, 0x00400000,
					0x00000e73, 0x00000002, 0x00000000, 0x00000000,
					0x00471992, 0x0131a10c, 0x00057041, 0xb4787896, 0x00000000, 0x48484848, 0x00000048,
					0x1621121e, 0x00000000, 0x00000000, 0x00000000, 0x00030010, 0x00000035, 0x34000000,
				},
				"t113-s3": {
					792, 3, 0x007b7bfb, 0x01, 0x000010d2, 0x00000000,
					0x00001c70, 0x00000042, 0x00000018, 0x00000000,
					0x004a2195, 0x02423190, 0x0008b061, 0xb4787896, 0x00000000, 0x48484848, 0x00000048,
					0x1620121e, 0x00000000, 0x00000000, 0x00000000, 0x00340000, 0x00000046, 0x34000100,
				},
			},
		},
		SPI: SPIParams{
			Stub:     "d1-spi",
			StubAddr: 0x00020000,
			Base:     0x04025000,
			CmdBuf:   0x00030000,
			CmdLen:   0x1000,
			SwapBuf:  0x00031000,
			SwapLen:  0x10000,
			Pins: []RegOp{
				{Addr: 0x0200196c, Mask: 0x00010001, Value: 0x00010001},
				{Addr: 0x02001940, Mask: 1 << 31, Value: 1 << 31},
				{Addr: 0x02000060, Mask: 0x00f0ff0f, Value: 0x00202202}, // PC2/PC3/PC4/PC5
			},
		},
	})
}
