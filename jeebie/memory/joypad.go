package memory

import "github.com/valerio/go-jeebie-core/jeebie/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

var joypadKeyNames = [...]string{"Right", "Left", "Up", "Down", "A", "B", "Select", "Start"}

func (k JoypadKey) String() string {
	if int(k) < len(joypadKeyNames) {
		return joypadKeyNames[k]
	}
	return "Unknown"
}

// Joypad backs the P1 register. Key state is active low: a 0 bit is a
// pressed key.
type Joypad struct {
	buttons uint8 // A, B, Select, Start in bits 0-3
	dpad    uint8 // Right, Left, Up, Down in bits 0-3
	selects uint8 // bits 4-5 as last written

	requestInterrupt func()
}

// NewJoypad creates a joypad with nothing pressed. requestInterrupt is called
// whenever a key goes from released to pressed.
func NewJoypad(requestInterrupt func()) *Joypad {
	return &Joypad{
		buttons:          0x0F,
		dpad:             0x0F,
		selects:          0x30,
		requestInterrupt: requestInterrupt,
	}
}

// Read returns P1 as seen by the CPU.
//
// Bits 4-5 select which group is mapped to bits 0-3:
//   - bit 4 clear selects the d-pad
//   - bit 5 clear selects the buttons
//   - both clear ANDs the two groups
//   - neither clear reads 0x0F
//
// Bits 6-7 are unused and read as 1.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.selects

	selectDpad := !bit.IsSet(4, j.selects)
	selectButtons := !bit.IsSet(5, j.selects)

	low := uint8(0x0F)
	if selectDpad {
		low &= j.dpad
	}
	if selectButtons {
		low &= j.buttons
	}
	return result | low
}

// Write sets the selection bits, the only writable part of P1.
func (j *Joypad) Write(value uint8) {
	j.selects = value & 0x30
}

func (j *Joypad) keyBit(key JoypadKey) (*uint8, uint8) {
	switch key {
	case JoypadRight:
		return &j.dpad, 0
	case JoypadLeft:
		return &j.dpad, 1
	case JoypadUp:
		return &j.dpad, 2
	case JoypadDown:
		return &j.dpad, 3
	case JoypadA:
		return &j.buttons, 0
	case JoypadB:
		return &j.buttons, 1
	case JoypadSelect:
		return &j.buttons, 2
	default:
		return &j.buttons, 3
	}
}

// Press updates the joypad state when a key is pressed
func (j *Joypad) Press(key JoypadKey) {
	group, index := j.keyBit(key)
	wasReleased := bit.IsSet(index, *group)
	*group = bit.Reset(index, *group)
	if wasReleased && j.requestInterrupt != nil {
		j.requestInterrupt()
	}
}

// Release updates the joypad state when a key is released
func (j *Joypad) Release(key JoypadKey) {
	group, index := j.keyBit(key)
	*group = bit.Set(index, *group)
}
