package backend

// DefaultKeyMap maps key names to actions. Backends translate their native
// key events to these names and may extend the table.
var DefaultKeyMap = map[string]Action{
	// Game Boy controls
	"z":      ActionA,
	"x":      ActionB,
	"Enter":  ActionStart,
	"Shift":  ActionSelect,
	"Select": ActionSelect,
	"Up":     ActionUp,
	"Down":   ActionDown,
	"Left":   ActionLeft,
	"Right":  ActionRight,

	// WASD
	"w": ActionUp,
	"s": ActionDown,
	"a": ActionLeft,
	"d": ActionRight,

	// Emulator controls
	"Space":  ActionPause,
	"p":      ActionPause,
	"F9":     ActionSnapshot,
	"F10":    ActionDebugToggle,
	"Escape": ActionQuit,
	"q":      ActionQuit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}

// IsDirection reports whether the action is a d-pad direction.
func (a Action) IsDirection() bool {
	return a <= ActionDown
}
