package video

import (
	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// TileRow represents one row of a tile pattern (8 pixels).
//
// Each tile row uses 2 bytes in a bit-plane format:
//
//	Byte 1 (Low):  Bit plane 0 - provides bit 0 of each pixel's color
//	Byte 2 (High): Bit plane 1 - provides bit 1 of each pixel's color
//
// Bit 7 represents the leftmost pixel, bit 0 the rightmost:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// A complete 8x8 tile occupies 16 bytes in VRAM.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a color index (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	bitIndex := uint8(7 - pixelX)
	return bit.Value(bitIndex, t.Low) | bit.Value(bitIndex, t.High)<<1
}

// GetPixelFlipped is GetPixel with the row mirrored horizontally.
func (t TileRow) GetPixelFlipped(pixelX int) uint8 {
	return t.GetPixel(7 - pixelX)
}

// TileDataAddress resolves a tile index to the address of its first byte,
// following the addressing mode selected by LCDC bit 4.
//
// With bit 4 set tiles are indexed unsigned from 0x8000. With bit 4 clear the
// index is signed and relative to 0x9000, so 0x80-0xFF alias to 0x8800-0x8FFF.
func TileDataAddress(lcdc, index uint8) uint16 {
	if bit.IsSet(4, lcdc) {
		return addr.TileData0 + uint16(index)*16
	}
	return uint16(int32(addr.TileData2) + int32(int8(index))*16)
}

// fetchTileRow reads a tile row from VRAM; tileAddr is a bus address.
func (g *GPU) fetchTileRow(tileAddr uint16, row int) TileRow {
	offset := tileAddr - addr.VRAMStart + uint16(row*2)
	return TileRow{Low: g.vram[offset], High: g.vram[offset+1]}
}
