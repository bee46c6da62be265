package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// GBColor is a 32 bit RGBA color, one per DMG shade.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

var shadeColors = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ShadeColor converts a 2 bit shade (0 lightest, 3 darkest) to its RGBA color.
func ShadeColor(shade uint8) GBColor {
	return shadeColors[shade&0x03]
}

// RGBA splits a color into its components.
func (c GBColor) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// FrameBuffer holds one frame worth of 2 bit shades, already resolved
// through the palette registers.
type FrameBuffer struct {
	width  uint
	height uint
	shades []uint8
	rgba   []uint32
}

// NewFrameBuffer creates a frame buffer with the size of the LCD.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		shades: make([]uint8, FramebufferWidth*FramebufferHeight),
		rgba:   make([]uint32, FramebufferWidth*FramebufferHeight),
	}
}

func (fb *FrameBuffer) Width() int  { return int(fb.width) }
func (fb *FrameBuffer) Height() int { return int(fb.height) }

// GetShade returns the shade (0-3) at x, y.
func (fb *FrameBuffer) GetShade(x, y uint) uint8 {
	return fb.shades[y*fb.width+x]
}

// SetShade stores a shade (0-3) at x, y.
func (fb *FrameBuffer) SetShade(x, y uint, shade uint8) {
	fb.shades[y*fb.width+x] = shade & 0x03
}

// GetPixel returns the RGBA color at x, y.
func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return uint32(ShadeColor(fb.GetShade(x, y)))
}

// Shades exposes the raw shade buffer, row major.
func (fb *FrameBuffer) Shades() []uint8 {
	return fb.shades
}

// ToSlice resolves the frame to RGBA colors. The returned slice is reused by
// later calls.
func (fb *FrameBuffer) ToSlice() []uint32 {
	for i, s := range fb.shades {
		fb.rgba[i] = uint32(ShadeColor(s))
	}
	return fb.rgba
}

// Clear fills the frame with shade 0.
func (fb *FrameBuffer) Clear() {
	clear(fb.shades)
}
