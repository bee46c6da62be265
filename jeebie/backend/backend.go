package backend

import (
	"github.com/valerio/go-jeebie-core/jeebie/cpu"
	"github.com/valerio/go-jeebie-core/jeebie/memory"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

// Backend presents frames produced by the core and reports host input.
// Backends are responsible for:
//   - rendering frames to their specific output (terminal, PNG files)
//   - translating platform-specific input into InputEvents
//   - backend-specific features such as snapshots or debug panels
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns the input collected since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases resources when shutting down
	Cleanup() error
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title         string
	Scale         int
	ShowDebug     bool          // Backends may ignore unsupported features
	TestPattern   bool          // Display test pattern instead of emulation
	DebugProvider DebugProvider // optional, feeds debug panels
}

// DebugProvider exposes the emulator state debug panels display.
// *jeebie.DMG satisfies it.
type DebugProvider interface {
	CPU() *cpu.CPU
	Peek(address uint16) uint8
	FrameCount() uint64
}

// Action is something the host asks the emulator to do.
type Action uint8

const (
	ActionRight Action = iota
	ActionLeft
	ActionUp
	ActionDown
	ActionA
	ActionB
	ActionSelect
	ActionStart
	ActionQuit
	ActionSnapshot
	ActionDebugToggle
	ActionPause
)

var actionNames = [...]string{
	"Right", "Left", "Up", "Down", "A", "B", "Select", "Start",
	"Quit", "Snapshot", "DebugToggle", "Pause",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Unknown"
}

// JoypadKey maps a game input action to its joypad key.
func (a Action) JoypadKey() (memory.JoypadKey, bool) {
	if a > ActionStart {
		return 0, false
	}
	// actions mirror the joypad key order
	return memory.JoypadKey(a), true
}

// EventType distinguishes key transitions.
type EventType uint8

const (
	Press EventType = iota
	Release
)

// InputEvent is one input transition reported by a backend.
type InputEvent struct {
	Action Action
	Type   EventType
}

// Joypad receives game input. *jeebie.DMG satisfies it.
type Joypad interface {
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

// Dispatch forwards game input events to the joypad and returns the actions
// that are not game input, in order.
func Dispatch(events []InputEvent, pad Joypad) []Action {
	var other []Action
	for _, e := range events {
		key, ok := e.Action.JoypadKey()
		if !ok {
			if e.Type == Press {
				other = append(other, e.Action)
			}
			continue
		}
		switch e.Type {
		case Press:
			pad.Press(key)
		case Release:
			pad.Release(key)
		}
	}
	return other
}
