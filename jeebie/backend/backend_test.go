package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-jeebie-core/jeebie/memory"
)

type recordingPad struct {
	pressed  []memory.JoypadKey
	released []memory.JoypadKey
}

func (p *recordingPad) Press(key memory.JoypadKey)   { p.pressed = append(p.pressed, key) }
func (p *recordingPad) Release(key memory.JoypadKey) { p.released = append(p.released, key) }

func TestAction_JoypadKey(t *testing.T) {
	testCases := []struct {
		action Action
		key    memory.JoypadKey
		ok     bool
	}{
		{ActionRight, memory.JoypadRight, true},
		{ActionDown, memory.JoypadDown, true},
		{ActionA, memory.JoypadA, true},
		{ActionStart, memory.JoypadStart, true},
		{ActionQuit, 0, false},
		{ActionSnapshot, 0, false},
	}
	for _, tC := range testCases {
		t.Run(tC.action.String(), func(t *testing.T) {
			key, ok := tC.action.JoypadKey()
			assert.Equal(t, tC.ok, ok)
			assert.Equal(t, tC.key, key)
			if ok {
				assert.Equal(t, tC.action.String(), key.String())
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	pad := &recordingPad{}
	other := Dispatch([]InputEvent{
		{ActionA, Press},
		{ActionSnapshot, Press},
		{ActionSnapshot, Release},
		{ActionA, Release},
		{ActionUp, Press},
		{ActionQuit, Press},
	}, pad)

	assert.Equal(t, []memory.JoypadKey{memory.JoypadA, memory.JoypadUp}, pad.pressed)
	assert.Equal(t, []memory.JoypadKey{memory.JoypadA}, pad.released)
	assert.Equal(t, []Action{ActionSnapshot, ActionQuit}, other)
}

func TestAction_StringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Action(200).String())
}

func TestDefaultKeyMap(t *testing.T) {
	testCases := []struct {
		key  string
		want Action
	}{
		{"z", ActionA},
		{"Enter", ActionStart},
		{"w", ActionUp},
		{"Right", ActionRight},
		{"F9", ActionSnapshot},
		{"q", ActionQuit},
	}
	for _, tC := range testCases {
		t.Run(tC.key, func(t *testing.T) {
			got, ok := GetDefaultMapping(tC.key)
			assert.True(t, ok)
			assert.Equal(t, tC.want, got)
		})
	}

	_, ok := GetDefaultMapping("F1")
	assert.False(t, ok)
	assert.True(t, ActionLeft.IsDirection())
	assert.False(t, ActionA.IsDirection())
}
