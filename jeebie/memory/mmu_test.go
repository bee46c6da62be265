package memory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

func newTestMMU(t *testing.T) *MMU {
	t.Helper()
	boot := DummyBootROM()
	boot[0x00] = 0x31
	m, err := New(boot)
	require.NoError(t, err)
	return m
}

func TestNew_BootImageSize(t *testing.T) {
	testCases := []struct {
		desc string
		size int
	}{
		{"empty", 0},
		{"too short", 255},
		{"too long", 257},
		{"cartridge sized", 0x8000},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m, err := New(make([]byte, tC.size))
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, ErrBootImageSize))
		})
	}
}

func TestLoadBootROM(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "boot.bin")
	require.NoError(t, os.WriteFile(good, DummyBootROM(), 0o644))
	data, err := LoadBootROM(good)
	require.NoError(t, err)
	assert.Len(t, data, 256)

	bad := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3}, 0o644))
	_, err = LoadBootROM(bad)
	assert.ErrorIs(t, err, ErrBootImageSize)

	_, err = LoadBootROM(filepath.Join(dir, "missing.bin"))
	assert.Error(t, err)
}

func TestDummyBootROM(t *testing.T) {
	boot := DummyBootROM()
	require.Len(t, boot, 256)
	assert.Equal(t, []byte{0xC3, 0x00, 0x01}, boot[0xFC:0xFF])
	for i := range 0xFC {
		assert.Equal(t, byte(0), boot[i])
	}
}

func TestMMU_BootDisable(t *testing.T) {
	m := newTestMMU(t)
	m.SetCartridge(NewFlatROM([]byte{0xAA, 0xBB}))

	assert.True(t, m.BootROMMapped())
	assert.Equal(t, uint8(0x31), m.Read(0x0000))
	assert.Equal(t, uint8(0xFF), m.Read(addr.BootDisable))

	m.Write(addr.BootDisable, 0x00)
	assert.True(t, m.BootROMMapped(), "zero writes are ignored")

	m.Write(addr.BootDisable, 0x01)
	assert.False(t, m.BootROMMapped())
	assert.Equal(t, uint8(0xAA), m.Read(0x0000))
	assert.Equal(t, uint8(0xBB), m.Read(0x0001))

	// cannot be re-mapped
	m.Write(addr.BootDisable, 0x00)
	assert.False(t, m.BootROMMapped())
}

func TestMMU_OpenBusWithoutCartridge(t *testing.T) {
	m := newTestMMU(t)

	assert.Equal(t, uint8(0xFF), m.Read(0x0100))
	assert.Equal(t, uint8(0xFF), m.Read(0x7FFF))
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))

	m.Write(0x0100, 0x12)
	m.Write(0xA000, 0x34)
	assert.Equal(t, uint8(0xFF), m.Read(0x0100))
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))
}

func TestMMU_Routing(t *testing.T) {
	testCases := []struct {
		desc  string
		write uint16
		read  uint16
		value uint8
		want  uint8
	}{
		{"work RAM", 0xC123, 0xC123, 0x42, 0x42},
		{"echo mirrors work RAM", 0xC010, 0xE010, 0x55, 0x55},
		{"work RAM through echo", 0xFDFF, 0xDDFF, 0x66, 0x66},
		{"high RAM", 0xFF80, 0xFF80, 0x77, 0x77},
		{"high RAM top", 0xFFFE, 0xFFFE, 0x88, 0x88},
		{"interrupt enable", addr.IE, addr.IE, 0xFF, 0xFF},
		{"interrupt flags upper bits", addr.IF, addr.IF, 0x01, 0xE1},
		{"unused area", 0xFEA0, 0xFEA0, 0x99, 0x00},
		{"unmapped I/O", 0xFF03, 0xFF03, 0x12, 0xFF},
		{"audio range is unmapped", 0xFF26, 0xFF26, 0x80, 0xFF},
		{"LCD register", addr.SCX, addr.SCX, 0x21, 0x21},
		{"timer register", addr.TMA, addr.TMA, 0x33, 0x33},
		{"DMA register", addr.DMA, addr.DMA, 0xC1, 0xC1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMMU(t)
			m.Write(tC.write, tC.value)
			assert.Equal(t, tC.want, m.Peek(tC.read))
		})
	}
}

func TestMMU_Advance(t *testing.T) {
	m := newTestMMU(t)

	m.Advance(456)
	assert.Equal(t, uint8(1), m.Read(addr.LY))
	assert.Equal(t, uint8(1), m.Read(addr.DIV))

	m.Advance(video.FrameDots - 456)
	assert.Equal(t, uint8(0), m.Read(addr.LY))
	assert.Equal(t, uint64(1), m.GPU().FrameCount())
	assert.NotZero(t, m.Interrupts().ReadIF()&uint8(addr.VBlankInterrupt))
}

func TestMMU_TimerInterrupt(t *testing.T) {
	m := newTestMMU(t)
	m.Write(addr.IF, 0)
	m.Write(addr.TIMA, 0xFF)
	m.Write(addr.TMA, 0x05)
	m.Write(addr.TAC, 0x05)

	m.Advance(16)
	assert.Equal(t, uint8(0x00), m.Read(addr.TIMA))
	assert.Equal(t, uint8(0xE0), m.Read(addr.IF))

	m.Advance(4)
	assert.Equal(t, uint8(0x05), m.Read(addr.TIMA))
	assert.Equal(t, uint8(0xE4), m.Read(addr.IF))
}

func TestMMU_PPUGating(t *testing.T) {
	m := newTestMMU(t)
	m.Write(0x8000, 0x12)

	m.Advance(80)
	require.Equal(t, video.Drawing, m.GPU().Mode())
	assert.Equal(t, uint8(0xFF), m.Read(0x8000))
	assert.Equal(t, uint8(0x12), m.Peek(0x8000))
	assert.Equal(t, uint8(0xFF), m.Read(0xFEA0), "unused area follows OAM lock")

	m.Poke(0x8001, 0x34)
	assert.Equal(t, uint8(0x34), m.Peek(0x8001))
}

func TestMMU_DMA(t *testing.T) {
	m := newTestMMU(t)
	// keep the PPU out of the way
	m.Write(addr.LCDC, 0x00)
	for i := range uint16(160) {
		m.Write(0xC100+i, uint8(i))
	}
	m.Write(0xFF80, 0x42)

	m.Write(addr.DMA, 0xC1)
	require.True(t, m.DMAActive())

	// CPU only sees high RAM and IE during the transfer
	assert.Equal(t, uint8(0xFF), m.Read(0xC100))
	assert.Equal(t, uint8(0xFF), m.Read(addr.LY))
	assert.Equal(t, uint8(0x42), m.Read(0xFF80))
	m.Write(0xC000, 0x99)
	assert.Equal(t, uint8(0x00), m.Peek(0xC000), "write dropped")

	m.Advance(4)
	assert.Equal(t, uint8(0), m.Peek(addr.OAMStart))
	assert.Equal(t, uint8(0), m.Peek(addr.OAMStart+1), "second byte not copied yet")
	m.Advance(4)
	assert.Equal(t, uint8(1), m.Peek(addr.OAMStart+1))

	m.Advance(158*4 - 1)
	assert.True(t, m.DMAActive())
	m.Advance(1)
	assert.False(t, m.DMAActive())

	for i := range uint16(160) {
		assert.Equal(t, uint8(i), m.Peek(addr.OAMStart+i))
	}
	assert.Equal(t, uint8(0x00), m.Read(0xC000))
	assert.Equal(t, uint8(0xC1), m.Read(addr.DMA))
}

func TestMMU_DMAFromEcho(t *testing.T) {
	m := newTestMMU(t)
	m.Write(addr.LCDC, 0x00)
	m.Write(0xDE05, 0x5A)

	m.Write(addr.DMA, 0xFE)
	m.Advance(160 * 4)
	assert.Equal(t, uint8(0x5A), m.Peek(addr.OAMStart+5))
}

func TestMMU_Joypad(t *testing.T) {
	m := newTestMMU(t)
	m.Write(addr.IF, 0)

	assert.Equal(t, uint8(0xFF), m.Read(addr.P1), "nothing selected")

	m.Joypad().Press(JoypadA)
	m.Joypad().Press(JoypadDown)
	assert.Equal(t, uint8(0xF0), m.Read(addr.IF))

	m.Write(addr.P1, 0x10) // buttons
	assert.Equal(t, uint8(0xDE), m.Read(addr.P1))

	m.Write(addr.P1, 0x20) // d-pad
	assert.Equal(t, uint8(0xE7), m.Read(addr.P1))

	m.Write(addr.P1, 0x00) // both
	assert.Equal(t, uint8(0xC6), m.Read(addr.P1))

	m.Joypad().Release(JoypadA)
	m.Write(addr.P1, 0x10)
	assert.Equal(t, uint8(0xDF), m.Read(addr.P1))
}

func TestJoypad_InterruptOnlyOnPress(t *testing.T) {
	requests := 0
	j := NewJoypad(func() { requests++ })

	j.Press(JoypadStart)
	j.Press(JoypadStart)
	j.Release(JoypadStart)
	j.Release(JoypadStart)
	assert.Equal(t, 1, requests)
	assert.Equal(t, "Start", JoypadStart.String())
}

func TestFlatROM(t *testing.T) {
	rom := NewFlatROM([]byte{0x01, 0x02})
	assert.Equal(t, uint8(0x02), rom.Read(0x0001))
	assert.Equal(t, uint8(0xFF), rom.Read(0x0002))
	assert.Equal(t, uint8(0xFF), rom.Read(0xA000))
	rom.Write(0x0000, 0x99)
	assert.Equal(t, uint8(0x01), rom.Read(0x0000))
}
