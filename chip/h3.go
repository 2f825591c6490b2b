package chip

// H2+/H3: quad Cortex-A7. The SID must be read through SID_PRCTL, direct
// reads return stale words after cold boot.
func init() {
	Register(&Descriptor{
		Name: "H2/H3",
		ID:   0x00168000,
		Caps: CapSID | CapReset | CapJTAG | CapDDR | CapSPINOR | CapSPINAND,
		Watchdog: []RegOp{
			{Addr: 0x01c20cb4, Value: 0x00000001},
			{Addr: 0x01c20cb8, Value: 0x00000001},
		},
		SID: SIDParams{Method: SIDControl, Base: 0x01c14000},
		// PA0-PA3 -> JTAG (function 3)
		JTAG: []RegOp{
			{Addr: 0x01c20800, Mask: 0x00007777, Value: 0x00003333},
		},
		DRAM: DRAMParams{
			Stub:       "h3-ddr",
			StubAddr:   0x00008800,
			ParamAddr:  0x00008000,
			StatusAddr: 0x000087fc,
			Default:    "ddr3",
			Types: map[string][]uint32{
				// clock MHz, type, zq, odt, para1, para2, mr0, mr1, mr2, mr3, tpr0, tpr1, tpr2
				"ddr3":   {624, 3, 0x3b3bfb, 1, 0x10f2, 0x00, 0x1c70, 0x40, 0x18, 0x00, 0x0048a192, 0x01c2418d, 0x00076051},
				"lpddr3": {552, 7, 0x3b3bfb, 1, 0x10f2, 0x00, 0x0000, 0xc3, 0x06, 0x02, 0x0048a192, 0x01c2418d, 0x00076051},
			},
		},
		SPI: SPIParams{
			Stub:     "h3-spi",
			StubAddr: 0x00008000,
			Base:     0x01c68000,
			CmdBuf:   0x00009000,
			CmdLen:   0x1000,
			SwapBuf:  0x0000a000,
			SwapLen:  0x6000,
			Pins: []RegOp{
				{Addr: 0x01c20060, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c202c0, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c20848, Mask: 0x00007777, Value: 0x00003333},
			},
		},
	})
}
