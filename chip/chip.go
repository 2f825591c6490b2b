package chip

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability is a set of extended operations a chip supports.
type Capability uint32

const (
	CapSID Capability = 1 << iota
	CapJTAG
	CapReset
	CapDDR
	CapSPINOR
	CapSPINAND
)

var capNames = []struct {
	c    Capability
	name string
}{
	{CapSID, "sid"},
	{CapJTAG, "jtag"},
	{CapReset, "reset"},
	{CapDDR, "ddr"},
	{CapSPINOR, "spinor"},
	{CapSPINAND, "spinand"},
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, cn := range capNames {
		if c&cn.c != 0 {
			names = append(names, cn.name)
		}
	}
	return strings.Join(names, ",")
}

// RegOp is one step of a register script. A zero Mask writes Value as is;
// otherwise the register is read and rewritten as (old &^ Mask) | Value.
type RegOp struct {
	Addr  uint32
	Mask  uint32
	Value uint32
}

// SIDMethod selects how the 128-bit SID is retrieved.
type SIDMethod int

const (
	// SIDDirect reads four memory-mapped words at Base+Offset
	SIDDirect SIDMethod = iota + 1

	// SIDControl drives the SID_PRCTL/SID_RDKEY registers from the host
	SIDControl

	// SIDStub runs a stub that leaves the four words at the scratchpad
	SIDStub
)

// SIDParams locates the security ID of a chip.
type SIDParams struct {
	Method SIDMethod
	Base   uint32
	Offset uint32

	// Stub and StubAddr are used by SIDStub
	Stub     string
	StubAddr uint32
}

// Status words written by the DRAM stub to DRAMParams.StatusAddr.
const (
	DRAMDone uint32 = 0x454e4f44 // "DONE"
	DRAMFail uint32 = 0x4c494146 // "FAIL"
)

// DRAMParams describes how to bring up the DRAM controller.
type DRAMParams struct {
	Stub       string
	StubAddr   uint32
	ParamAddr  uint32
	StatusAddr uint32

	// Default names the entry of Types used when no type is requested
	Default string

	// Types maps a board or memory type to the parameter words handed to the stub
	Types map[string][]uint32
}

// TypeNames returns the sorted keys of Types.
func (p DRAMParams) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for name := range p.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SPIParams describes the SPI controller and the stub driving it.
type SPIParams struct {
	Stub     string
	StubAddr uint32

	// Base is the SPI controller register base handed to the stub
	Base uint32

	// CmdBuf holds the command stream, at most CmdLen bytes
	CmdBuf uint32
	CmdLen int

	// SwapBuf is the data window shared by host and stub, SwapLen bytes
	SwapBuf uint32
	SwapLen int

	// Pins enables clocks and muxes the controller onto its pins
	Pins []RegOp
}

// Descriptor is the static description of one supported chip family.
type Descriptor struct {
	Name string
	ID   uint32
	Caps Capability

	Watchdog []RegOp
	SID      SIDParams
	JTAG     []RegOp
	DRAM     DRAMParams
	SPI      SPIParams
}

// Has reports whether d supports every capability in c. A nil descriptor
// supports nothing.
func (d *Descriptor) Has(c Capability) bool {
	return d != nil && c != 0 && d.Caps&c == c
}

// Require returns nil if d supports c and an *UnsupportedError otherwise.
func (d *Descriptor) Require(c Capability) error {
	if d.Has(c) {
		return nil
	}
	name := ""
	if d != nil {
		name = d.Name
	}
	return &UnsupportedError{Chip: name, Op: c.String()}
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (0x%08x) [%s]", d.Name, d.ID, d.Caps)
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.DRAM.Types = make(map[string][]uint32, len(d.DRAM.Types))
	for k, v := range d.DRAM.Types {
		c.DRAM.Types[k] = v
	}
	return &c
}

var (
	chipsMu sync.RWMutex
	chips   = make(map[uint32]*Descriptor)
)

// Register makes a chip descriptor available for lookup by its ID.
// If Register is called twice with the same ID or if d is nil, it panics.
func Register(d *Descriptor) {
	chipsMu.Lock()
	defer chipsMu.Unlock()
	if d == nil {
		panic("chip: Register descriptor is nil")
	}
	if old, dup := chips[d.ID]; dup {
		panic(fmt.Sprintf("chip: Register called twice for id 0x%08x (%s, %s)", d.ID, old.Name, d.Name))
	}
	chips[d.ID] = d
}

// Lookup returns the descriptor registered for id.
func Lookup(id uint32) (*Descriptor, bool) {
	chipsMu.RLock()
	defer chipsMu.RUnlock()
	d, ok := chips[id]
	return d, ok
}

// LookupName returns the descriptor with the given name, case-insensitively.
func LookupName(name string) (*Descriptor, bool) {
	chipsMu.RLock()
	defer chipsMu.RUnlock()
	for _, d := range chips {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return nil, false
}

// All returns the registered descriptors sorted by name.
func All() []*Descriptor {
	chipsMu.RLock()
	defer chipsMu.RUnlock()
	list := make([]*Descriptor, 0, len(chips))
	for _, d := range chips {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// replace swaps the descriptor registered under d.ID.
func replace(d *Descriptor) {
	chipsMu.Lock()
	defer chipsMu.Unlock()
	chips[d.ID] = d
}
