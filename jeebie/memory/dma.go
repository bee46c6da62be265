package memory

import "github.com/valerio/go-jeebie-core/jeebie/addr"

const (
	dmaLength         = addr.OAMSize
	dmaCyclesPerByte  = 4
	dmaEchoSourceBase = 0xE000
)

// dmaTransfer copies 160 bytes from XX00 to OAM, one byte every 4 cycles.
type dmaTransfer struct {
	active   bool
	register uint8
	source   uint16
	index    int
	cycles   int
}

func (m *MMU) startDMA(value uint8) {
	source := uint16(value) << 8
	// sources past work RAM read the echo of work RAM
	if source >= dmaEchoSourceBase {
		source -= 0x2000
	}
	m.dma = dmaTransfer{
		active:   true,
		register: value,
		source:   source,
	}
}

func (m *MMU) tickDMA(cycles int) {
	if !m.dma.active {
		return
	}
	m.dma.cycles += cycles
	for m.dma.active && m.dma.cycles >= dmaCyclesPerByte {
		m.dma.cycles -= dmaCyclesPerByte
		offset := uint16(m.dma.index)
		m.gpu.Poke(addr.OAMStart+offset, m.Peek(m.dma.source+offset))
		m.dma.index++
		if m.dma.index == dmaLength {
			m.dma.active = false
			m.dma.cycles = 0
		}
	}
}

// accessibleDuringDMA reports which addresses the CPU can still reach while
// the DMA owns the bus.
func accessibleDuringDMA(address uint16) bool {
	return address >= addr.HRAMStart
}
