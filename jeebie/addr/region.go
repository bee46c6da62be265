package addr

// Region identifies one of the fixed ranges of the address space.
type Region uint8

const (
	RegionBootROM Region = iota
	RegionCartROM
	RegionVRAM
	RegionCartRAM
	RegionWRAM
	RegionEcho
	RegionOAM
	RegionUnused
	RegionIO
	RegionHRAM
	RegionIE
)

var regionNames = [...]string{
	RegionBootROM: "Boot ROM",
	RegionCartROM: "Cartridge ROM",
	RegionVRAM:    "Video RAM",
	RegionCartRAM: "Cartridge RAM",
	RegionWRAM:    "Work RAM",
	RegionEcho:    "Work RAM Echo",
	RegionOAM:     "OAM",
	RegionUnused:  "Unused",
	RegionIO:      "I/O Registers",
	RegionHRAM:    "High RAM",
	RegionIE:      "Interrupt Enable",
}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return "Unknown"
}

// RegionOf returns the region an address belongs to, with the boot image
// assumed mapped.
func RegionOf(address uint16) Region {
	switch {
	case address <= BootROMEnd:
		return RegionBootROM
	case address <= CartROMEnd:
		return RegionCartROM
	case address <= VRAMEnd:
		return RegionVRAM
	case address <= CartRAMEnd:
		return RegionCartRAM
	case address <= WRAMEnd:
		return RegionWRAM
	case address <= EchoEnd:
		return RegionEcho
	case address <= OAMEnd:
		return RegionOAM
	case address <= UnusedEnd:
		return RegionUnused
	case address <= IOEnd:
		return RegionIO
	case address <= HRAMEnd:
		return RegionHRAM
	default:
		return RegionIE
	}
}

var registerNames = map[uint16]string{
	P1:          "P1",
	SB:          "SB",
	SC:          "SC",
	DIV:         "DIV",
	TIMA:        "TIMA",
	TMA:         "TMA",
	TAC:         "TAC",
	IF:          "IF",
	LCDC:        "LCDC",
	STAT:        "STAT",
	SCY:         "SCY",
	SCX:         "SCX",
	LY:          "LY",
	LYC:         "LYC",
	DMA:         "DMA",
	BGP:         "BGP",
	OBP0:        "OBP0",
	OBP1:        "OBP1",
	WY:          "WY",
	WX:          "WX",
	BootDisable: "BOOT",
	IE:          "IE",
}

// RegisterName returns the mnemonic of the I/O register at address, if any.
func RegisterName(address uint16) (string, bool) {
	name, ok := registerNames[address]
	return name, ok
}

// RegionName returns a human readable name for the region containing address.
func RegionName(address uint16) string {
	return RegionOf(address).String()
}
