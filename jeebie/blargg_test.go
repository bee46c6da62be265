package jeebie_test

import (
	"bytes"
	"cmp"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-core/jeebie"
	"github.com/valerio/go-jeebie-core/jeebie/memory"
	"github.com/valerio/go-jeebie-core/jeebie/serial"
)

// The cpu_instrs individual ROMs are unbanked 32 KiB images that report their
// result over serial. They are not part of the repository; point
// JEEBIE_TEST_ROMS at a checkout of the test ROMs to run them.
var cpuInstrsDir = filepath.Join(
	cmp.Or(os.Getenv("JEEBIE_TEST_ROMS"), "../test-roms"),
	"blargg", "cpu_instrs", "individual")

func TestBlarggCPUInstrs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ROM tests in short mode")
	}

	testCases := []struct {
		rom       string
		maxFrames int
	}{
		{"01-special.gb", 500},
		{"02-interrupts.gb", 500},
		{"03-op sp,hl.gb", 500},
		{"04-op r,imm.gb", 500},
		{"05-op rp.gb", 500},
		{"06-ld r,r.gb", 500},
		{"07-jr,jp,call,ret,rst.gb", 500},
		{"08-misc instrs.gb", 500},
		{"09-op r,r.gb", 1000},
		{"10-bit ops.gb", 1000},
		{"11-op a,(hl).gb", 1500},
	}
	for _, tC := range testCases {
		t.Run(tC.rom, func(t *testing.T) {
			path := filepath.Join(cpuInstrsDir, tC.rom)
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				t.Skipf("ROM file not found: %s", path)
			}
			require.NoError(t, err)

			port := serial.NewLogSink(nil)
			emu := jeebie.NewWithDummyBoot(
				jeebie.WithCartridge(memory.NewFlatROM(data)),
				jeebie.WithSerial(port),
			)

			for range tC.maxFrames {
				emu.RunUntilFrame()
				out := port.Output()
				if bytes.Contains(out, []byte("Passed")) || bytes.Contains(out, []byte("Failed")) {
					break
				}
			}

			assert.Contains(t, string(port.Output()), "Passed")
		})
	}
}
