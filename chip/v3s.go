package chip

// V3s/S3: Cortex-A7 with co-packaged DDR2 (V3s) or DDR3 (S3).
func init() {
	Register(&Descriptor{
		Name: "V3S",
		ID:   0x00168100,
		Caps: CapSID | CapReset | CapJTAG | CapDDR | CapSPINOR | CapSPINAND,
		Watchdog: []RegOp{
			{Addr: 0x01c20cb4, Value: 0x00000001},
			{Addr: 0x01c20cb8, Value: 0x00000001},
		},
		SID: SIDParams{Method: SIDDirect, Base: 0x01c23800},
		JTAG: []RegOp{
			{Addr: 0x01c208b4, Mask: 0x00707077, Value: 0x00303033},
		},
		DRAM: DRAMParams{
			Stub:       "v3s-ddr",
			StubAddr:   0x00008800,
			ParamAddr:  0x00008000,
			StatusAddr: 0x000087fc,
			Default:    "v3s",
			Types: map[string][]uint32{
				// clock MHz, type, zq, odt, para1, para2, mr0, mr1, mr2, mr3, tpr0, tpr1, tpr2
				"v3s": {360, 2, 0x3b3bfb, 0, 0x10e4, 0x00, 0x0a63, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
				"s3":  {504, 3, 0x3b3bfb, 1, 0x10f2, 0x00, 0x1c70, 0x40, 0x18, 0x00, 0x00, 0x00, 0x00},
			},
		},
		SPI: SPIParams{
			Stub:     "v3s-spi",
			StubAddr: 0x00008000,
			Base:     0x01c68000,
			CmdBuf:   0x00009000,
			CmdLen:   0x400,
			SwapBuf:  0x00009400,
			SwapLen:  0x2c00,
			Pins: []RegOp{
				{Addr: 0x01c20060, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c202c0, Mask: 1 << 20, Value: 1 << 20},
				{Addr: 0x01c20848, Mask: 0x00007777, Value: 0x00003333},
			},
		},
	})
}
