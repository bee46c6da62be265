package video

import (
	"cmp"
	"slices"

	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

const (
	spriteCount       = 40
	maxSpritesPerLine = 10
)

// Sprite represents a single object in OAM, with positions already adjusted
// for the hardware offsets (Y-16, X-8).
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int

	PaletteOBP1 bool // false = OBP0, true = OBP1
	FlipX       bool
	FlipY       bool
	BehindBG    bool // background colors 1-3 are drawn over the sprite
}

func newSprite(raw []byte, index, height int) Sprite {
	s := Sprite{
		Y:         int(raw[0]) - 16,
		X:         int(raw[1]) - 8,
		TileIndex: raw[2],
		Flags:     raw[3],
		OAMIndex:  index,
		Height:    height,
	}
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
	return s
}

// covers reports whether the sprite's vertical extent includes line.
func (s *Sprite) covers(line int) bool {
	return s.Y <= line && line < s.Y+s.Height
}

// rowTile returns the tile index and row inside that tile for a sprite row,
// applying vertical flip and 8x16 tile pairing.
func (s *Sprite) rowTile(line int) (uint8, int) {
	row := line - s.Y
	if s.FlipY {
		row = s.Height - 1 - row
	}
	tile := s.TileIndex
	if s.Height == 16 {
		tile &= 0xFE
		if row >= 8 {
			tile |= 0x01
			row -= 8
		}
	}
	return tile, row
}

// spriteHeight returns 8 or 16 depending on LCDC bit 2.
func spriteHeight(lcdc uint8) int {
	if bit.IsSet(2, lcdc) {
		return 16
	}
	return 8
}

// selectSprites performs the OAM scan for a scanline: the first 10 sprites
// in OAM order covering the line, returned ordered by X then OAM index.
// The result aliases dst.
func selectSprites(oam *[0xA0]byte, lcdc uint8, line int, dst []Sprite) []Sprite {
	height := spriteHeight(lcdc)
	selected := dst[:0]
	for i := range spriteCount {
		raw := oam[i*4 : i*4+4]
		y := int(raw[0]) - 16
		if y > line || line >= y+height {
			continue
		}
		selected = append(selected, newSprite(raw, i, height))
		if len(selected) == maxSpritesPerLine {
			break
		}
	}
	// stable sort keeps OAM order for equal X
	slices.SortStableFunc(selected, func(a, b Sprite) int {
		return cmp.Compare(a.X, b.X)
	})
	return selected
}

// LineSprites returns the sprites selected for the current scanline.
func (g *GPU) LineSprites() []Sprite {
	return g.lineSprites
}

// Sprites returns all 40 OAM entries. Useful for debug tools.
func (g *GPU) Sprites() []Sprite {
	height := spriteHeight(g.lcdc)
	result := make([]Sprite, spriteCount)
	for i := range spriteCount {
		result[i] = newSprite(g.oam[i*4:i*4+4], i, height)
	}
	return result
}
