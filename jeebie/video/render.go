package video

import (
	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// applyPalette maps a color index (0-3) through a palette register to a shade.
func applyPalette(palette, color uint8) uint8 {
	return (palette >> (color * 2)) & 0x03
}

// drawScanline composes background, window and sprites for the current line
// into the back buffer.
func (g *GPU) drawScanline() {
	line := int(g.ly)
	if line >= FramebufferHeight {
		return
	}

	g.drawBackground(line)
	if g.windowThisLine {
		g.drawWindow(line)
	}
	if bit.IsSet(spriteDisplayEnable, g.lcdc) {
		g.drawSprites(line)
	}
}

func (g *GPU) drawBackground(line int) {
	if !bit.IsSet(bgDisplay, g.lcdc) {
		// background and window disabled, the line is blank
		for x := range FramebufferWidth {
			g.bgIndex[x] = 0
			g.back.SetShade(uint(x), uint(line), 0)
		}
		return
	}

	tileMap := addr.TileMap0
	if bit.IsSet(bgTileMapDisplaySelect, g.lcdc) {
		tileMap = addr.TileMap1
	}

	mapY := (line + int(g.scy)) & 0xFF
	for x := range FramebufferWidth {
		mapX := (x + int(g.scx)) & 0xFF
		color := g.tileMapPixel(tileMap, mapX, mapY)
		g.bgIndex[x] = color
		g.back.SetShade(uint(x), uint(line), applyPalette(g.bgp, color))
	}
}

func (g *GPU) drawWindow(line int) {
	tileMap := addr.TileMap0
	if bit.IsSet(windowTileMapSelect, g.lcdc) {
		tileMap = addr.TileMap1
	}

	startX := int(g.wx) - 7
	drawn := false
	for x := max(startX, 0); x < FramebufferWidth; x++ {
		color := g.tileMapPixel(tileMap, x-startX, g.windowLine)
		g.bgIndex[x] = color
		g.back.SetShade(uint(x), uint(line), applyPalette(g.bgp, color))
		drawn = true
	}

	// the window keeps its own line counter, only advanced when it was visible
	if drawn {
		g.windowLine++
	}
}

// tileMapPixel samples the color index at (x, y) of the 256x256 pixel space
// described by a tile map.
func (g *GPU) tileMapPixel(tileMap uint16, x, y int) uint8 {
	mapAddr := tileMap + uint16((y/8)*32+x/8)
	tileIndex := g.vram[mapAddr-addr.VRAMStart]
	row := g.fetchTileRow(TileDataAddress(g.lcdc, tileIndex), y%8)
	return row.GetPixel(x % 8)
}

func (g *GPU) drawSprites(line int) {
	g.priorityBuffer.Clear()

	for i := range g.lineSprites {
		s := &g.lineSprites[i]
		tile, row := s.rowTile(line)
		tileRow := g.fetchTileRow(addr.TileData0+uint16(tile)*16, row)

		for px := range 8 {
			var color uint8
			if s.FlipX {
				color = tileRow.GetPixelFlipped(px)
			} else {
				color = tileRow.GetPixel(px)
			}
			g.priorityBuffer.TryClaimPixel(s.X+px, s.OAMIndex, s.X, color)
		}
	}

	for x := range FramebufferWidth {
		owner := g.priorityBuffer.GetOwner(x)
		if owner == -1 {
			continue
		}
		s := g.spriteByIndex(owner)
		if s.BehindBG && g.bgIndex[x] != 0 {
			continue
		}
		palette := g.obp0
		if s.PaletteOBP1 {
			palette = g.obp1
		}
		g.back.SetShade(uint(x), uint(line), applyPalette(palette, g.priorityBuffer.GetColor(x)))
	}
}

func (g *GPU) spriteByIndex(oamIndex int) *Sprite {
	for i := range g.lineSprites {
		if g.lineSprites[i].OAMIndex == oamIndex {
			return &g.lineSprites[i]
		}
	}
	panic("sprite owner not selected for this line")
}
