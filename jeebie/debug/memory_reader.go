package debug

// MemoryReader provides side-effect free access to emulator memory for debug
// tools. *memory.MMU and *jeebie.DMG both satisfy it.
type MemoryReader interface {
	Peek(address uint16) uint8
}
