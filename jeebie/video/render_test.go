package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
)

const defaultPalette = 0xE4

// renderLine runs the OAM scan and compositor for a single line and returns
// the shades written to the back buffer.
func renderLine(g *GPU, line int) []uint8 {
	g.ly = uint8(line)
	g.beginDrawing()
	g.drawScanline()
	shades := make([]uint8, FramebufferWidth)
	for x := range FramebufferWidth {
		shades[x] = g.back.GetShade(uint(x), uint(line))
	}
	return shades
}

// fillTile writes a tile where every pixel has the given color index.
func fillTile(g *GPU, tileAddr uint16, color uint8) {
	var low, high uint8
	if color&1 != 0 {
		low = 0xFF
	}
	if color&2 != 0 {
		high = 0xFF
	}
	for row := range uint16(8) {
		g.Poke(tileAddr+row*2, low)
		g.Poke(tileAddr+row*2+1, high)
	}
}

func newRenderGPU(lcdc uint8) *GPU {
	g := NewGpu(newIRQRecorder())
	g.Write(addr.LCDC, lcdc)
	g.Write(addr.BGP, defaultPalette)
	g.Write(addr.OBP0, defaultPalette)
	g.Write(addr.OBP1, 0x1B) // inverted
	return g
}

func TestTileDataAddress(t *testing.T) {
	testCases := []struct {
		desc  string
		lcdc  uint8
		index uint8
		want  uint16
	}{
		{"unsigned 0", 0x10, 0x00, 0x8000},
		{"unsigned 1", 0x10, 0x01, 0x8010},
		{"unsigned 128", 0x10, 0x80, 0x8800},
		{"unsigned 255", 0x10, 0xFF, 0x8FF0},
		{"signed -128", 0x00, 0x80, 0x8800},
		{"signed -127", 0x00, 0x81, 0x8810},
		{"signed -1", 0x00, 0xFF, 0x8FF0},
		{"signed 0", 0x00, 0x00, 0x9000},
		{"signed 1", 0x00, 0x01, 0x9010},
		{"signed 127", 0x00, 0x7F, 0x97F0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, TileDataAddress(tC.lcdc, tC.index))
		})
	}
}

func TestRender_TileAddressingAliases(t *testing.T) {
	testCases := []struct {
		desc string
		lcdc uint8
		want uint8
	}{
		{"unsigned base reads 0x8000", 0x91, 1},
		{"signed base reads 0x9000", 0x81, 2},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g := newRenderGPU(tC.lcdc)
			fillTile(g, 0x8000, 1)
			fillTile(g, 0x9000, 2)
			// tile map is all zeroes, index 0 everywhere

			shades := renderLine(g, 0)
			assert.Equal(t, tC.want, shades[0])
			assert.Equal(t, tC.want, shades[159])
		})
	}
}

func TestRender_BackgroundScroll(t *testing.T) {
	g := newRenderGPU(0x91)
	fillTile(g, 0x8010, 3)
	g.Poke(addr.TileMap0, 1)

	g.Write(addr.SCX, 252)
	shades := renderLine(g, 0)
	// screen x 4..11 wraps around to map x 0..7
	assert.Equal(t, []uint8{0, 0, 0, 0, 3, 3, 3, 3, 3, 3, 3, 3, 0}, shades[:13])

	g.Write(addr.SCX, 0)
	g.Write(addr.SCY, 250)
	// line 6 wraps to map y 0, line 5 is map y 255
	assert.Equal(t, uint8(3), renderLine(g, 6)[0])
	assert.Equal(t, uint8(0), renderLine(g, 5)[0])
}

func TestRender_BackgroundPalette(t *testing.T) {
	g := newRenderGPU(0x91)
	// row 0: colors 0 1 2 3 0 1 2 3
	g.Poke(0x8000, 0b01010101)
	g.Poke(0x8001, 0b00110011)

	shades := renderLine(g, 0)
	assert.Equal(t, []uint8{0, 1, 2, 3, 0, 1, 2, 3}, shades[:8])

	g.Write(addr.BGP, 0x1B)
	shades = renderLine(g, 0)
	assert.Equal(t, []uint8{3, 2, 1, 0, 3, 2, 1, 0}, shades[:8])
}

func TestRender_BackgroundDisabled(t *testing.T) {
	g := newRenderGPU(0x90)
	fillTile(g, 0x8000, 3)

	shades := renderLine(g, 0)
	for x, s := range shades {
		assert.Equalf(t, uint8(0), s, "pixel %d", x)
	}
}

func TestRender_Window(t *testing.T) {
	// window on, window map 0x9800, BG map 0x9C00, unsigned tiles
	g := newRenderGPU(0xB9)
	fillTile(g, 0x8010, 3)
	for i := range uint16(32 * 32) {
		g.Poke(addr.TileMap0+i, 1)
	}
	g.Write(addr.WX, 80+7)
	g.Write(addr.WY, 2)

	shades := renderLine(g, 0)
	assert.Equal(t, uint8(0), shades[100], "window not reached yet")
	assert.Equal(t, 0, g.windowLine)

	shades = renderLine(g, 2)
	assert.Equal(t, uint8(0), shades[79])
	assert.Equal(t, uint8(3), shades[80])
	assert.Equal(t, uint8(3), shades[159])
	assert.Equal(t, 1, g.windowLine)
}

func TestRender_WindowLineCounter(t *testing.T) {
	g := newRenderGPU(0xB1)
	// tile 1 has a single opaque row at the top
	g.Poke(0x8010, 0xFF)
	g.Poke(addr.TileMap0, 1)
	g.Write(addr.WX, 7)
	g.Write(addr.WY, 10)

	shades := renderLine(g, 10)
	assert.Equal(t, uint8(1), shades[0], "window row 0 on line 10")

	// disabling the window pauses its line counter
	g.Write(addr.LCDC, 0x91)
	renderLine(g, 11)
	g.Write(addr.LCDC, 0xB1)
	shades = renderLine(g, 12)
	assert.Equal(t, uint8(0), shades[0], "window row 1 on line 12")
	assert.Equal(t, 2, g.windowLine)
}

func writeSprite(g *GPU, index int, y, x int, tile, flags uint8) {
	base := addr.OAMStart + uint16(index*4)
	g.Poke(base, uint8(y+16))
	g.Poke(base+1, uint8(x+8))
	g.Poke(base+2, tile)
	g.Poke(base+3, flags)
}

func TestRender_Sprites(t *testing.T) {
	testCases := []struct {
		desc  string
		setup func(g *GPU)
		want  map[int]uint8 // screen x -> shade on line 0
	}{
		{
			desc: "plain sprite",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 1)
				writeSprite(g, 0, 0, 10, 2, 0)
			},
			want: map[int]uint8{9: 0, 10: 1, 17: 1, 18: 0},
		},
		{
			desc: "OBP1 palette",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 1)
				writeSprite(g, 0, 0, 10, 2, 0x10)
			},
			want: map[int]uint8{10: 2},
		},
		{
			desc: "color 0 is transparent",
			setup: func(g *GPU) {
				g.Poke(0x8020, 0xF0) // left half color 1, right half color 0
				fillTile(g, 0x8000, 2)
				writeSprite(g, 0, 0, 10, 2, 0)
			},
			want: map[int]uint8{10: 1, 13: 1, 14: 2, 17: 2},
		},
		{
			desc: "flip X",
			setup: func(g *GPU) {
				g.Poke(0x8020, 0xF0)
				writeSprite(g, 0, 0, 10, 2, 0x20)
			},
			want: map[int]uint8{10: 0, 13: 0, 14: 1, 17: 1},
		},
		{
			desc: "flip Y",
			setup: func(g *GPU) {
				g.Poke(0x802E, 0xFF) // only the last row is opaque
				writeSprite(g, 0, 0, 10, 2, 0x40)
			},
			want: map[int]uint8{10: 1},
		},
		{
			desc: "behind opaque background",
			setup: func(g *GPU) {
				fillTile(g, 0x8000, 2)
				fillTile(g, 0x8020, 3)
				writeSprite(g, 0, 0, 10, 2, 0x80)
			},
			want: map[int]uint8{10: 2},
		},
		{
			desc: "behind background color 0",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 3)
				writeSprite(g, 0, 0, 10, 2, 0x80)
			},
			want: map[int]uint8{10: 3},
		},
		{
			desc: "lower X wins overlap",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 1)
				fillTile(g, 0x8030, 3)
				writeSprite(g, 0, 0, 14, 2, 0)
				writeSprite(g, 1, 0, 10, 3, 0)
			},
			want: map[int]uint8{10: 3, 17: 3, 18: 1, 21: 1},
		},
		{
			desc: "same X, lower OAM index wins",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 1)
				fillTile(g, 0x8030, 3)
				writeSprite(g, 4, 0, 10, 2, 0)
				writeSprite(g, 7, 0, 10, 3, 0)
			},
			want: map[int]uint8{10: 1, 17: 1},
		},
		{
			desc: "transparent winner lets the next sprite through",
			setup: func(g *GPU) {
				g.Poke(0x8020, 0xF0)
				fillTile(g, 0x8030, 3)
				writeSprite(g, 0, 0, 10, 2, 0)
				writeSprite(g, 1, 0, 10, 3, 0)
			},
			want: map[int]uint8{10: 1, 14: 3},
		},
		{
			desc: "partially off screen",
			setup: func(g *GPU) {
				fillTile(g, 0x8020, 1)
				writeSprite(g, 0, 0, -4, 2, 0)
			},
			want: map[int]uint8{0: 1, 3: 1, 4: 0},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g := newRenderGPU(0x93)
			tC.setup(g)

			shades := renderLine(g, 0)
			for x, want := range tC.want {
				assert.Equalf(t, want, shades[x], "pixel %d", x)
			}
		})
	}
}

func TestRender_TallSprites(t *testing.T) {
	testCases := []struct {
		desc  string
		line  int
		flags uint8
		want  uint8
	}{
		{"top half uses even tile", 0, 0, 1},
		{"bottom half uses odd tile", 8, 0, 2},
		{"flipped top half uses odd tile", 0, 0x40, 2},
		{"flipped bottom half uses even tile", 15, 0x40, 1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g := newRenderGPU(0x97)
			fillTile(g, 0x8040, 1) // tile 4
			fillTile(g, 0x8050, 2) // tile 5
			// low bit of the tile index is ignored
			writeSprite(g, 0, 0, 0, 5, tC.flags)

			shades := renderLine(g, tC.line)
			assert.Equal(t, tC.want, shades[0])
		})
	}
}

func TestRender_SpritesDisabled(t *testing.T) {
	g := newRenderGPU(0x91)
	fillTile(g, 0x8020, 3)
	writeSprite(g, 0, 0, 0, 2, 0)

	shades := renderLine(g, 0)
	assert.Equal(t, uint8(0), shades[0])
	assert.Empty(t, g.LineSprites())
}
