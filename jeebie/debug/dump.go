package debug

import (
	"bytes"
	"fmt"
	"io"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
)

const bytesPerRow = 16

// Dump writes a hex dump of the inclusive range [start, end], 16 bytes per
// row. A header line names every region the dump enters.
func Dump(w io.Writer, r MemoryReader, start, end uint16) error {
	if end < start {
		return fmt.Errorf("invalid dump range 0x%04X-0x%04X", start, end)
	}

	var buf bytes.Buffer
	region := addr.Region(0xFF)
	for row := uint32(start) &^ (bytesPerRow - 1); row <= uint32(end); row += bytesPerRow {
		first := max(row, uint32(start))
		if rg := addr.RegionOf(uint16(first)); rg != region {
			region = rg
			fmt.Fprintf(&buf, "-- %s --\n", region)
		}

		fmt.Fprintf(&buf, "%04X:", row)
		for col := range uint32(bytesPerRow) {
			address := row + col
			if address > uint32(end) {
				break
			}
			if address < uint32(start) {
				buf.WriteString("   ")
				continue
			}
			fmt.Fprintf(&buf, " %02X", r.Peek(uint16(address)))
		}
		buf.WriteByte('\n')
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// DumpRegisters writes every named I/O register with its current value,
// in address order.
func DumpRegisters(w io.Writer, r MemoryReader) error {
	var buf bytes.Buffer
	for address := uint32(addr.IOStart); address <= 0xFFFF; address++ {
		name, ok := addr.RegisterName(uint16(address))
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "%-5s %04X = %02X\n", name, address, r.Peek(uint16(address)))
	}
	_, err := w.Write(buf.Bytes())
	return err
}
