// Package timer implements DIV/TIMA/TMA/TAC on top of the 16 bit system counter.
package timer

import (
	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// tacLookup maps TAC input clock select (bits 1-0) to the bit position of the
// system counter used as the timer's clock source.
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacLookup = [4]uint16{9, 3, 5, 7}

// reloadDelay is the number of clock cycles TIMA reads 0x00 after overflowing.
const reloadDelay = 4

// Timer is driven one clock cycle at a time by the memory bus.
type Timer struct {
	counter uint16 // DIV is the upper 8 bits
	signal  bool   // enabled && selected counter bit, TIMA increments on its falling edge

	// cycles left before TIMA is reloaded from TMA, 0 when no reload is pending
	reloadIn int

	tima uint8
	tma  uint8
	tac  uint8

	requestInterrupt func()
}

// New creates a timer that calls requestInterrupt when a TIMA reload completes.
func New(requestInterrupt func()) *Timer {
	return &Timer{requestInterrupt: requestInterrupt}
}

// Tick advances the timer by the given number of clock cycles.
func (t *Timer) Tick(cycles int) {
	for range cycles {
		t.step()
	}
}

func (t *Timer) step() {
	if t.reloadIn > 0 {
		t.reloadIn--
		if t.reloadIn == 0 {
			t.tima = t.tma
			if t.requestInterrupt != nil {
				t.requestInterrupt()
			}
		}
	}
	t.counter++
	t.updateSignal()
}

// updateSignal recomputes the monitored signal and increments TIMA on a falling edge.
// Counter increments, DIV resets and TAC writes all go through here.
func (t *Timer) updateSignal() {
	enabled := bit.IsSet(2, t.tac)
	next := enabled && bit.IsSet16(tacLookup[t.tac&0x03], t.counter)
	if t.signal && !next {
		t.incrementTIMA()
	}
	t.signal = next
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.reloadIn = reloadDelay
	}
}

// Counter returns the full internal system counter.
func (t *Timer) Counter() uint16 {
	return t.counter
}

// ReloadPending reports whether TIMA overflowed and is waiting for its reload.
func (t *Timer) ReloadPending() bool {
	return t.reloadIn > 0
}

// ResetDivider clears the system counter, as a DIV write or STOP does.
func (t *Timer) ResetDivider() {
	t.counter = 0
	t.updateSignal()
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return uint8(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.ResetDivider()
	case addr.TIMA:
		// a write while the reload is pending cancels both reload and interrupt
		t.reloadIn = 0
		t.tima = value
	case addr.TMA:
		// a pending reload picks up the new value since it reads tma when it fires
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
		t.updateSignal()
	}
}
