package jeebie

import (
	"github.com/valerio/go-jeebie-core/jeebie/events"
	"github.com/valerio/go-jeebie-core/jeebie/memory"
	"github.com/valerio/go-jeebie-core/jeebie/serial"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

type config struct {
	observer events.Observer
	serial   serial.Port
	cart     memory.Cartridge
	sink     video.FrameSink
	haltBug  bool
}

// Option configures a DMG at construction time.
type Option func(*config)

// WithObserver receives instruction, interrupt, PPU mode and frame events.
// Repeating the option attaches every observer given.
func WithObserver(o events.Observer) Option {
	return func(c *config) { c.observer = events.Multi(c.observer, o) }
}

// WithSerial replaces the default logging serial sink.
func WithSerial(port serial.Port) Option {
	return func(c *config) { c.serial = port }
}

// WithHaltBug selects the HALT behavior when IME is clear and an interrupt is
// already pending. Enabled by default.
func WithHaltBug(enabled bool) Option {
	return func(c *config) { c.haltBug = enabled }
}

// WithCartridge inserts a cartridge. Without one the cartridge space is open bus.
func WithCartridge(cart memory.Cartridge) Option {
	return func(c *config) { c.cart = cart }
}

// WithFrameSink receives every completed frame on VBlank entry.
func WithFrameSink(sink video.FrameSink) Option {
	return func(c *config) { c.sink = sink }
}
