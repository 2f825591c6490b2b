package spiflash

import "bytes"

// norTable lists NOR parts that do not describe themselves through SFDP or
// whose SFDP tables are known to be wrong.
var norTable = []Descriptor{
	{Name: "W25X40", ID: []byte{0xef, 0x30, 0x13}, Capacity: 512 << 10},
	{Name: "W25Q16", ID: []byte{0xef, 0x40, 0x15}, Capacity: 2 << 20},
	{Name: "W25Q32", ID: []byte{0xef, 0x40, 0x16}, Capacity: 4 << 20},
	{Name: "W25Q64", ID: []byte{0xef, 0x40, 0x17}, Capacity: 8 << 20},
	{Name: "W25Q128", ID: []byte{0xef, 0x40, 0x18}, Capacity: 16 << 20},
	{Name: "W25Q256", ID: []byte{0xef, 0x40, 0x19}, Capacity: 32 << 20},
	{Name: "MX25L1605", ID: []byte{0xc2, 0x20, 0x15}, Capacity: 2 << 20},
	{Name: "MX25L6405", ID: []byte{0xc2, 0x20, 0x17}, Capacity: 8 << 20},
	{Name: "MX25L12805", ID: []byte{0xc2, 0x20, 0x18}, Capacity: 16 << 20},
	{Name: "MX25L25635", ID: []byte{0xc2, 0x20, 0x19}, Capacity: 32 << 20},
	{Name: "GD25Q16", ID: []byte{0xc8, 0x40, 0x15}, Capacity: 2 << 20},
	{Name: "GD25Q64", ID: []byte{0xc8, 0x40, 0x17}, Capacity: 8 << 20},
	{Name: "GD25Q128", ID: []byte{0xc8, 0x40, 0x18}, Capacity: 16 << 20},
	{Name: "XT25F128B", ID: []byte{0x0b, 0x40, 0x18}, Capacity: 16 << 20},
	{Name: "EN25QH128", ID: []byte{0x1c, 0x70, 0x18}, Capacity: 16 << 20},
	{Name: "XM25QH64", ID: []byte{0x20, 0x70, 0x17}, Capacity: 8 << 20},
}

// nandTable lists supported SPI NAND parts by the ID bytes that follow the
// dummy byte of READ ID.
var nandTable = []Descriptor{
	{Name: "W25N512GV", ID: []byte{0xef, 0xaa, 0x20}, Capacity: 64 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "W25N01GV", ID: []byte{0xef, 0xaa, 0x21}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "W25N02KV", ID: []byte{0xef, 0xaa, 0x22}, Capacity: 256 << 20, PageSize: 2048, SpareSize: 128, PagesPerBlock: 64},
	{Name: "GD5F1GQ4UA", ID: []byte{0xc8, 0xf1}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "GD5F1GQ5UE", ID: []byte{0xc8, 0x51}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 128, PagesPerBlock: 64},
	{Name: "GD5F2GQ4UA", ID: []byte{0xc8, 0xf2}, Capacity: 256 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "MX35LF1GE4AB", ID: []byte{0xc2, 0x12}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "MX35LF2GE4AB", ID: []byte{0xc2, 0x22}, Capacity: 256 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "XT26G01A", ID: []byte{0x0b, 0xe1}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "XT26G02A", ID: []byte{0x0b, 0xe2}, Capacity: 256 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
	{Name: "FS35ND01G-S1", ID: []byte{0xcd, 0xb1}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 128, PagesPerBlock: 64},
	{Name: "TC58CVG0S3H", ID: []byte{0x98, 0xc2}, Capacity: 128 << 20, PageSize: 2048, SpareSize: 64, PagesPerBlock: 64},
}

// lookup returns the first entry whose ID is a prefix of id.
func lookup(table []Descriptor, id []byte) (Descriptor, bool) {
	for _, d := range table {
		if bytes.HasPrefix(id, d.ID) {
			return d, true
		}
	}
	return Descriptor{}, false
}
