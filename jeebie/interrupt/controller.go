// Package interrupt holds the requested (IF) and enabled (IE) interrupt
// bitmaps and resolves which source gets serviced first.
package interrupt

import (
	"fmt"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
)

// Mask covers the five interrupt sources.
const Mask uint8 = 0x1F

// ifUnusedBits always read as 1 on IF.
const ifUnusedBits uint8 = 0xE0

// Controller owns IF and IE. Peripherals request interrupts through it and
// the CPU clears them when servicing.
type Controller struct {
	requested uint8
	enabled   uint8
}

// New returns a controller with the power-on state: IF has VBlank set, IE is clear.
func New() *Controller {
	return &Controller{requested: uint8(addr.VBlankInterrupt)}
}

// Request sets the requested bit for the given interrupt.
func (c *Controller) Request(i addr.Interrupt) {
	c.requested |= uint8(i) & Mask
}

// Clear resets the requested bit for the given interrupt.
func (c *Controller) Clear(i addr.Interrupt) {
	c.requested &^= uint8(i)
}

// Pending returns the interrupts that are both requested and enabled.
func (c *Controller) Pending() uint8 {
	return c.requested & c.enabled & Mask
}

// Highest returns the highest priority pending interrupt, if any.
// Lower bits have higher priority.
func (c *Controller) Highest() (addr.Interrupt, bool) {
	pending := c.Pending()
	if pending == 0 {
		return 0, false
	}
	return addr.Interrupt(pending & -pending), true
}

// ReadIF returns IF as seen on the bus.
func (c *Controller) ReadIF() uint8 {
	return c.requested | ifUnusedBits
}

// WriteIF replaces the requested bitmap.
func (c *Controller) WriteIF(value uint8) {
	c.requested = value & Mask
}

// ReadIE returns the enabled bitmap. All 8 bits are stored.
func (c *Controller) ReadIE() uint8 {
	return c.enabled
}

// WriteIE replaces the enabled bitmap.
func (c *Controller) WriteIE(value uint8) {
	c.enabled = value
}

// Vector returns the service routine address for an interrupt.
func Vector(i addr.Interrupt) uint16 {
	switch i {
	case addr.VBlankInterrupt:
		return 0x0040
	case addr.LCDSTATInterrupt:
		return 0x0048
	case addr.TimerInterrupt:
		return 0x0050
	case addr.SerialInterrupt:
		return 0x0058
	case addr.JoypadInterrupt:
		return 0x0060
	default:
		panic(fmt.Sprintf("unknown interrupt: 0x%02X", uint8(i)))
	}
}
