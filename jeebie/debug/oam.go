package debug

import (
	"fmt"
	"strings"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

const (
	OAMSpriteCount    = 40
	OAMBytesPerSprite = 4
	SpriteYOffset     = 16
	SpriteXOffset     = 8
	MaxSpritesPerLine = 10
)

type SpriteInfo struct {
	Index     int
	Sprite    video.Sprite
	IsVisible bool
}

type OAMData struct {
	Sprites       []SpriteInfo
	CurrentLine   int
	ActiveSprites int
	SpriteHeight  int
}

// ExtractOAMData decodes every OAM entry and marks the ones covering
// currentLine.
func ExtractOAMData(reader MemoryReader, currentLine int, spriteHeight int) *OAMData {
	data := &OAMData{
		Sprites:      make([]SpriteInfo, OAMSpriteCount),
		CurrentLine:  currentLine,
		SpriteHeight: spriteHeight,
	}

	for i := range OAMSpriteCount {
		base := addr.OAMStart + uint16(i*OAMBytesPerSprite)
		flags := reader.Peek(base + 3)
		sprite := video.Sprite{
			Y:           int(reader.Peek(base)) - SpriteYOffset,
			X:           int(reader.Peek(base+1)) - SpriteXOffset,
			TileIndex:   reader.Peek(base + 2),
			Flags:       flags,
			OAMIndex:    i,
			Height:      spriteHeight,
			PaletteOBP1: bit.IsSet(4, flags),
			FlipX:       bit.IsSet(5, flags),
			FlipY:       bit.IsSet(6, flags),
			BehindBG:    bit.IsSet(7, flags),
		}

		visible := sprite.Y <= currentLine && currentLine < sprite.Y+spriteHeight
		if visible {
			data.ActiveSprites++
		}
		data.Sprites[i] = SpriteInfo{Index: i, Sprite: sprite, IsVisible: visible}
	}
	return data
}

func (s *SpriteInfo) String() string {
	status := "OFF"
	if s.IsVisible {
		status = "ACTIVE"
	}
	return fmt.Sprintf("Sprite %2d: Y=%3d X=%3d  Tile=0x%02X Flags=0x%02X [%s]",
		s.Index, s.Sprite.Y, s.Sprite.X, s.Sprite.TileIndex, s.Sprite.Flags, status)
}

func (data *OAMData) GetVisibleSprites() []SpriteInfo {
	visible := make([]SpriteInfo, 0, data.ActiveSprites)
	for _, sprite := range data.Sprites {
		if sprite.IsVisible {
			visible = append(visible, sprite)
		}
	}
	return visible
}

func (data *OAMData) FormatSummary() string {
	return fmt.Sprintf("Current Line: %d | Active Sprites: %d/%d | Height: %dpx",
		data.CurrentLine, data.ActiveSprites, MaxSpritesPerLine, data.SpriteHeight)
}

// Format renders the summary followed by one line per sprite.
func (data *OAMData) Format() string {
	var sb strings.Builder
	sb.WriteString(data.FormatSummary())
	sb.WriteByte('\n')
	for i := range data.Sprites {
		sb.WriteString(data.Sprites[i].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
