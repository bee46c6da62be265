package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/interrupt"
	"github.com/valerio/go-jeebie-core/jeebie/serial"
	"github.com/valerio/go-jeebie-core/jeebie/timer"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

type memRegion uint8

const (
	regionUnmapped memRegion = iota
	regionROM
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// openBus is what reads of disconnected addresses return.
const openBus uint8 = 0xFF

// MMU is the memory bus. It owns every peripheral and routes each address of
// the 16 bit space to the component backing it.
type MMU struct {
	regionMap [256]memRegion

	boot       []byte
	bootMapped bool
	cart       Cartridge

	wram [addr.WRAMSize]byte
	hram [addr.HRAMSize]byte

	interrupts *interrupt.Controller
	timer      *timer.Timer
	gpu        *video.GPU
	serial     serial.Port
	joypad     *Joypad
	dma        dmaTransfer
}

// New creates a memory bus with the boot image mapped at 0x0000 and every
// peripheral in its power-on state. No cartridge is inserted.
func New(boot []byte) (*MMU, error) {
	if err := ValidateBootROM(boot); err != nil {
		return nil, err
	}

	m := &MMU{
		boot:       append([]byte(nil), boot...),
		bootMapped: true,
		interrupts: interrupt.New(),
	}
	m.timer = timer.New(func() { m.interrupts.Request(addr.TimerInterrupt) })
	m.gpu = video.NewGpu(m.interrupts)
	m.serial = serial.NewLogSink(func() { m.interrupts.Request(addr.SerialInterrupt) })
	m.joypad = NewJoypad(func() { m.interrupts.Request(addr.JoypadInterrupt) })
	initRegionMap(m)
	return m, nil
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM + IE: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// SetCartridge inserts a cartridge, replacing open bus in 0x0000-0x7FFF and 0xA000-0xBFFF.
func (m *MMU) SetCartridge(cart Cartridge) {
	m.cart = cart
}

// SetSerial connects a different serial device to SB/SC.
func (m *MMU) SetSerial(port serial.Port) {
	m.serial = port
}

func (m *MMU) Interrupts() *interrupt.Controller { return m.interrupts }
func (m *MMU) Timer() *timer.Timer               { return m.timer }
func (m *MMU) GPU() *video.GPU                   { return m.gpu }
func (m *MMU) Joypad() *Joypad                   { return m.joypad }
func (m *MMU) Serial() serial.Port               { return m.serial }

// BootROMMapped reports whether the boot image still shadows the cartridge.
func (m *MMU) BootROMMapped() bool {
	return m.bootMapped
}

// DMAActive reports whether an OAM DMA transfer is in progress.
func (m *MMU) DMAActive() bool {
	return m.dma.active
}

// Advance forwards elapsed clock cycles to the peripherals. The order is
// fixed: timer, serial, OAM DMA, then PPU.
func (m *MMU) Advance(cycles int) {
	m.timer.Tick(cycles)
	m.serial.Tick(cycles)
	m.tickDMA(cycles)
	m.gpu.Tick(cycles)
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.interrupts.Request(interrupt)
}

// Read is a CPU read. It honours OAM DMA bus blocking and PPU access gating.
func (m *MMU) Read(address uint16) uint8 {
	if m.dma.active && !accessibleDuringDMA(address) {
		return openBus
	}
	return m.read(address)
}

// Write is a CPU write. Writes blocked by DMA or the PPU are dropped.
func (m *MMU) Write(address uint16, value uint8) {
	if m.dma.active && !accessibleDuringDMA(address) {
		return
	}
	m.write(address, value)
}

// Peek reads any address without DMA or PPU gating and without side effects.
func (m *MMU) Peek(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionVRAM:
		return m.gpu.Peek(address)
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.gpu.Peek(address)
		}
		return 0x00
	}
	return m.read(address)
}

// Poke writes any address without DMA or PPU gating. Register writes keep
// their side effects.
func (m *MMU) Poke(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionVRAM:
		m.gpu.Poke(address, value)
		return
	case regionOAM:
		if address <= addr.OAMEnd {
			m.gpu.Poke(address, value)
			return
		}
	}
	m.write(address, value)
}

func (m *MMU) read(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.bootMapped && address <= addr.BootROMEnd {
			return m.boot[address]
		}
		return m.readCartridge(address)
	case regionExtRAM:
		return m.readCartridge(address)
	case regionVRAM:
		return m.gpu.Read(address)
	case regionWRAM:
		return m.wram[address-addr.WRAMStart]
	case regionEcho:
		return m.wram[address-addr.EchoStart]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.gpu.Read(address)
		}
		// unused area reads 0x00, or 0xFF while OAM is locked by the PPU
		if m.gpu.OAMBlocked() {
			return 0xFF
		}
		return 0x00
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart != nil {
			m.cart.Write(address, value)
		}
	case regionVRAM:
		m.gpu.Write(address, value)
	case regionWRAM:
		m.wram[address-addr.WRAMStart] = value
	case regionEcho:
		m.wram[address-addr.EchoStart] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.gpu.Write(address, value)
		}
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readCartridge(address uint16) uint8 {
	if m.cart == nil {
		return openBus
	}
	return m.cart.Read(address)
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.IE:
		return m.interrupts.ReadIE()
	case address >= addr.HRAMStart:
		return m.hram[address-addr.HRAMStart]
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.interrupts.ReadIF()
	case address == addr.DMA:
		return m.dma.register
	case address >= addr.LCDC && address <= addr.WX:
		return m.gpu.Read(address)
	default:
		// unmapped registers, including 0xFF50 and the audio range
		return openBus
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.IE:
		m.interrupts.WriteIE(value)
	case address >= addr.HRAMStart:
		m.hram[address-addr.HRAMStart] = value
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.interrupts.WriteIF(value)
	case address == addr.DMA:
		m.startDMA(value)
	case address >= addr.LCDC && address <= addr.WX:
		m.gpu.Write(address, value)
	case address == addr.BootDisable:
		if value != 0 && m.bootMapped {
			m.bootMapped = false
			slog.Debug("Boot ROM unmapped")
		}
	}
}
