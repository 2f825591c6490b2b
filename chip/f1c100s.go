package chip

// F1C100s/F1C200s: ARM926 with co-packaged DDR1, no SID block.
func init() {
	Register(&Descriptor{
		Name: "F1C100S",
		ID:   0x00166300,
		Caps: CapReset | CapJTAG | CapDDR | CapSPINOR | CapSPINAND,
		Watchdog: []RegOp{
			{Addr: 0x01c20cb4, Value: 0x00000001}, // WDOG_CFG: whole system
			{Addr: 0x01c20cb8, Value: 0x00000001}, // WDOG_MODE: enable, 0.5s
		},
		// PF0/PF1/PF3/PF5 -> JTAG (function 3)
		JTAG: []RegOp{
			{Addr: 0x01c208b4, Mask: 0x00707077, Value: 0x00303033},
		},
		DRAM: DRAMParams{
			Stub:       "f1c100s-ddr",
			StubAddr:   0x00008800,
			ParamAddr:  0x00008000,
			StatusAddr: 0x000087fc,
			Default:    "f1c100s",
			Types: map[string][]uint32{
				// clock MHz, type (1=DDR1), size MiB, column bits, row bits, bank bits
				"f1c100s": {156, 1, 32, 10, 13, 2},
				"f1c200s": {156, 1, 64, 10, 13, 2},
			},
		},
		SPI: SPIParams{
			Stub:     "f1c100s-spi",
			StubAddr: 0x00008000,
			Base:     0x01c05000,
			CmdBuf:   0x00009000,
			CmdLen:   0x400,
			SwapBuf:  0x00009400,
			SwapLen:  0x0c00,
			Pins: []RegOp{
				{Addr: 0x01c20060, Mask: 1 << 20, Value: 1 << 20}, // bus clock gate
				{Addr: 0x01c202c0, Mask: 1 << 20, Value: 1 << 20}, // deassert reset
				{Addr: 0x01c20848, Mask: 0x00007777, Value: 0x00002222},
			},
		},
	})
}
