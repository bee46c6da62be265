package video

// SpritePriorityBuffer manages sprite-to-pixel ownership for a scanline,
// see https://gbdev.io/pandocs/OAM.html#drawing-priority.
//
// On DMG the PPU enforces strict priority rules between sprites:
//   - sprites with lower X coordinates have priority
//   - when X coordinates match, lower OAM indices win.
//
// Transparent pixels (color 0) never claim a pixel, so a lower priority
// sprite shows through the transparent parts of a higher priority one.
//
//	Pixels:    10 11 12 13 14 15 16 17 18 19 20 21 22 23 24 25
//	Sprite 1:           [-----D-----]                          (X=12, OAM=1)
//	Sprite 3:           [-----C-----]                          (X=12, OAM=3)
//	Sprite 5:  [-----E-----]                                   (X=10, OAM=5)
//	Result:    [-----E-----]--D-----]
//
// Instead of drawing sprites back to front, every opaque sprite pixel tries
// to claim its screen pixel, and only the owner is drawn.
type SpritePriorityBuffer struct {
	// ownerIndex is the OAM index owning each pixel, -1 when unowned
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
	color      [FramebufferWidth]uint8
}

// Clear resets the buffer for a new scanline
func (s *SpritePriorityBuffer) Clear() {
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
		s.color[i] = 0
	}
}

// TryClaimPixel attempts to claim ownership of a pixel for a sprite.
// Returns true if the sprite wins priority and claims the pixel.
//  1. Transparent pixels never claim
//  2. If no sprite owns the pixel, this sprite wins
//  3. If this sprite has a lower X coordinate, it wins
//  4. If X coordinates match, lower OAM index wins
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int, color uint8) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth || color == 0 {
		return false
	}

	currentOwner := s.ownerIndex[pixelX]
	currentX := s.ownerX[pixelX]

	if currentOwner == -1 ||
		spriteX < currentX ||
		(spriteX == currentX && spriteIndex < currentOwner) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		s.color[pixelX] = color
		return true
	}

	return false
}

// GetOwner returns the sprite index that owns a pixel, or -1 if none
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}

// GetColor returns the owning sprite's color index at a pixel.
func (s *SpritePriorityBuffer) GetColor(pixelX int) uint8 {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return 0
	}
	return s.color[pixelX]
}
