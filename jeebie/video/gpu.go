package video

import (
	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// Mode is the PPU mode, as reported in STAT bits 0-1.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	Drawing
)

func (m Mode) String() string {
	switch m {
	case HBlank:
		return "HBlank"
	case VBlank:
		return "VBlank"
	case OAMScan:
		return "OAMScan"
	case Drawing:
		return "Drawing"
	default:
		return "Unknown"
	}
}

const (
	oamScanDots    = 80
	minDrawingDots = 172
	maxDrawingDots = 289
	spritePenalty  = 6
	windowPenalty  = 6
	scanlineDots   = 456
	visibleLines   = 144
	totalLines     = 154

	// FrameDots is the number of dots (clock cycles) in a full frame.
	FrameDots = scanlineDots * totalLines
)

// LCDC (LCD Control) Register bit values
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG/Window Display (0=Off, 1=On)
const (
	lcdDisplayEnable       = 7
	windowTileMapSelect    = 6
	windowDisplayEnable    = 5
	bgWindowTileDataSelect = 4
	bgTileMapDisplaySelect = 3
	spriteDisplayEnable    = 1
	bgDisplay              = 0
)

// STAT interrupt selection bits.
const (
	statHBlankSelect = 3
	statVBlankSelect = 4
	statOAMSelect    = 5
	statLYCSelect    = 6
)

// InterruptRequester is implemented by the interrupt controller.
type InterruptRequester interface {
	Request(i addr.Interrupt)
}

// FrameSink receives every completed frame on VBlank entry. The buffer stays
// valid until the next frame completes.
type FrameSink interface {
	PresentFrame(fb *FrameBuffer)
}

// GPU is the DMG picture processing unit. It owns VRAM, OAM and the LCD
// registers and advances one dot per clock cycle.
type GPU struct {
	vram [addr.VRAMSize]byte
	oam  [addr.OAMSize]byte

	lcdc, stat, scy, scx, ly, lyc uint8
	bgp, obp0, obp1, wy, wx       uint8

	mode Mode
	dot  int
	// length of the Drawing mode for the current line
	drawLen int
	// rising edge detector for the STAT interrupt
	statLine bool

	windowLine     int
	windowThisLine bool

	lineSprites    []Sprite
	spriteBuf      [maxSpritesPerLine]Sprite
	priorityBuffer SpritePriorityBuffer
	bgIndex        [FramebufferWidth]uint8

	front, back *FrameBuffer
	frames      uint64

	irq          InterruptRequester
	sink         FrameSink
	onModeChange func(mode Mode, line uint8)
}

// NewGpu returns a PPU in its power-on state with the LCD enabled.
func NewGpu(irq InterruptRequester) *GPU {
	g := &GPU{
		irq:   irq,
		lcdc:  0x91,
		bgp:   0xFC,
		obp0:  0xFF,
		obp1:  0xFF,
		mode:  OAMScan,
		front: NewFrameBuffer(),
		back:  NewFrameBuffer(),
	}
	g.lineSprites = g.spriteBuf[:0]
	return g
}

// SetFrameSink registers the collaborator that receives completed frames.
func (g *GPU) SetFrameSink(sink FrameSink) {
	g.sink = sink
}

// SetModeHook registers a callback invoked on every mode transition.
func (g *GPU) SetModeHook(hook func(mode Mode, line uint8)) {
	g.onModeChange = hook
}

func (g *GPU) Mode() Mode         { return g.mode }
func (g *GPU) Line() uint8        { return g.ly }
func (g *GPU) Dot() int           { return g.dot }
func (g *GPU) FrameCount() uint64 { return g.frames }

// GetFrameBuffer returns the last completed frame.
func (g *GPU) GetFrameBuffer() *FrameBuffer {
	return g.front
}

func (g *GPU) lcdEnabled() bool {
	return bit.IsSet(lcdDisplayEnable, g.lcdc)
}

// Tick advances the PPU by the given number of dots.
func (g *GPU) Tick(cycles int) {
	if !g.lcdEnabled() {
		return
	}
	for range cycles {
		g.tickDot()
	}
}

func (g *GPU) tickDot() {
	g.dot++

	switch g.mode {
	case OAMScan:
		if g.dot == oamScanDots {
			g.beginDrawing()
		}
	case Drawing:
		if g.dot == oamScanDots+g.drawLen {
			g.drawScanline()
			g.setMode(HBlank)
		}
	}

	if g.dot == scanlineDots {
		g.dot = 0
		g.nextLine()
	}
}

// beginDrawing runs the OAM scan results for the line and fixes the length
// of the Drawing mode.
func (g *GPU) beginDrawing() {
	line := int(g.ly)
	g.lineSprites = g.spriteBuf[:0]
	if bit.IsSet(spriteDisplayEnable, g.lcdc) {
		g.lineSprites = selectSprites(&g.oam, g.lcdc, line, g.spriteBuf[:0])
	}

	g.windowThisLine = bit.IsSet(bgDisplay, g.lcdc) &&
		bit.IsSet(windowDisplayEnable, g.lcdc) &&
		line >= int(g.wy) && g.wx <= 166

	length := minDrawingDots + int(g.scx%8) + spritePenalty*len(g.lineSprites)
	if g.windowThisLine {
		length += windowPenalty
	}
	g.drawLen = min(length, maxDrawingDots)

	g.setMode(Drawing)
}

func (g *GPU) nextLine() {
	g.ly++

	switch {
	case g.ly == visibleLines:
		g.setMode(VBlank)
		g.irq.Request(addr.VBlankInterrupt)
		g.completeFrame()
	case g.ly == totalLines:
		g.ly = 0
		g.windowLine = 0
		g.setMode(OAMScan)
	case g.ly < visibleLines:
		g.setMode(OAMScan)
	default:
		g.updateStatLine()
	}
}

func (g *GPU) completeFrame() {
	g.front, g.back = g.back, g.front
	g.frames++
	if g.sink != nil {
		g.sink.PresentFrame(g.front)
	}
}

func (g *GPU) setMode(mode Mode) {
	g.mode = mode
	g.updateStatLine()
	if g.onModeChange != nil {
		g.onModeChange(mode, g.ly)
	}
}

// updateStatLine requests the STAT interrupt on a rising edge of the
// combined interrupt sources.
func (g *GPU) updateStatLine() {
	if !g.lcdEnabled() {
		g.statLine = false
		return
	}

	line := (g.ly == g.lyc && bit.IsSet(statLYCSelect, g.stat)) ||
		(g.mode == HBlank && bit.IsSet(statHBlankSelect, g.stat)) ||
		(g.mode == VBlank && bit.IsSet(statVBlankSelect, g.stat)) ||
		(g.mode == OAMScan && bit.IsSet(statOAMSelect, g.stat))

	if line && !g.statLine {
		g.irq.Request(addr.LCDSTATInterrupt)
	}
	g.statLine = line
}

func (g *GPU) setLCDC(value uint8) {
	wasOn := g.lcdEnabled()
	g.lcdc = value
	isOn := g.lcdEnabled()

	switch {
	case wasOn && !isOn:
		g.ly = 0
		g.dot = 0
		g.mode = HBlank
		g.statLine = false
		g.lineSprites = g.spriteBuf[:0]
	case !wasOn && isOn:
		g.ly = 0
		g.dot = 0
		g.windowLine = 0
		g.setMode(OAMScan)
	}
}

func (g *GPU) readSTAT() uint8 {
	value := 0x80 | g.stat | uint8(g.mode)
	if g.ly == g.lyc {
		value |= 0x04
	}
	return value
}

func (g *GPU) vramBlocked() bool {
	return g.lcdEnabled() && g.mode == Drawing
}

func (g *GPU) oamBlocked() bool {
	return g.lcdEnabled() && (g.mode == OAMScan || g.mode == Drawing)
}

// OAMBlocked reports whether the CPU currently cannot access OAM.
func (g *GPU) OAMBlocked() bool {
	return g.oamBlocked()
}

// Read handles CPU reads of VRAM, OAM and the LCD registers.
func (g *GPU) Read(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if g.vramBlocked() {
			return 0xFF
		}
		return g.vram[address-addr.VRAMStart]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if g.oamBlocked() {
			return 0xFF
		}
		return g.oam[address-addr.OAMStart]
	}

	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		return g.readSTAT()
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.ly
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	default:
		return 0xFF
	}
}

// Write handles CPU writes to VRAM, OAM and the LCD registers.
func (g *GPU) Write(address uint16, value uint8) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if !g.vramBlocked() {
			g.vram[address-addr.VRAMStart] = value
		}
		return
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if !g.oamBlocked() {
			g.oam[address-addr.OAMStart] = value
		}
		return
	}

	switch address {
	case addr.LCDC:
		g.setLCDC(value)
	case addr.STAT:
		// bits 0-2 are read only
		g.stat = value & 0x78
		g.updateStatLine()
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.LY:
		// read only
	case addr.LYC:
		g.lyc = value
		g.updateStatLine()
	case addr.BGP:
		g.bgp = value
	case addr.OBP0:
		g.obp0 = value
	case addr.OBP1:
		g.obp1 = value
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	}
}

// Peek reads VRAM or OAM ignoring mode gating, for debuggers.
func (g *GPU) Peek(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return g.vram[address-addr.VRAMStart]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return g.oam[address-addr.OAMStart]
	}
	return g.Read(address)
}

// Poke writes VRAM or OAM ignoring mode gating. OAM DMA also goes through here.
func (g *GPU) Poke(address uint16, value uint8) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		g.vram[address-addr.VRAMStart] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		g.oam[address-addr.OAMStart] = value
	default:
		g.Write(address, value)
	}
}
