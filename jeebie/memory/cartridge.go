package memory

// Cartridge backs 0x0000-0x7FFF and 0xA000-0xBFFF. Without one those ranges
// are open bus.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// FlatROM is a cartridge with no memory banking, the ROM is mapped directly
// at 0x0000-0x7FFF and there is no external RAM.
type FlatROM struct {
	rom []uint8
}

// NewFlatROM wraps rom data. Addresses past the end of data read as 0xFF.
func NewFlatROM(data []uint8) *FlatROM {
	return &FlatROM{rom: data}
}

func (c *FlatROM) Read(address uint16) uint8 {
	if int(address) < len(c.rom) && address <= 0x7FFF {
		return c.rom[address]
	}
	return openBus
}

// Write is ignored, ROM is read only and there is no banking to select.
func (c *FlatROM) Write(address uint16, value uint8) {}
