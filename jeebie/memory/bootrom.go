package memory

import (
	"errors"
	"fmt"
	"os"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
)

// ErrBootImageSize is returned for boot images that are not exactly 256 bytes.
var ErrBootImageSize = errors.New("boot image must be 256 bytes")

// ValidateBootROM checks that a boot image can be mapped.
func ValidateBootROM(boot []byte) error {
	if len(boot) != addr.BootROMSize {
		return fmt.Errorf("%w, got %d", ErrBootImageSize, len(boot))
	}
	return nil
}

// LoadBootROM reads and validates a boot image from disk.
func LoadBootROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boot image: %w", err)
	}
	if err := ValidateBootROM(data); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return data, nil
}

// DummyBootROM returns a stand-in boot image: NOPs up to 0x00FC, then
// JP 0x0100 into cartridge space.
func DummyBootROM() []byte {
	boot := make([]byte, addr.BootROMSize)
	boot[0xFC] = 0xC3 // JP a16
	boot[0xFD] = 0x00
	boot[0xFE] = 0x01
	return boot
}
