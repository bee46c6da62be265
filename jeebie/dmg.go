package jeebie

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
	"github.com/valerio/go-jeebie-core/jeebie/cpu"
	"github.com/valerio/go-jeebie-core/jeebie/events"
	"github.com/valerio/go-jeebie-core/jeebie/memory"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

// DMG wires the CPU to the memory bus and drives them in lockstep: each step
// runs one CPU step and then advances every peripheral by the cycles it took.
type DMG struct {
	cpu *cpu.CPU
	mem *memory.MMU

	observer events.Observer
	sink     video.FrameSink
}

// New creates a DMG with the given boot image mapped at 0x0000.
func New(boot []byte, opts ...Option) (*DMG, error) {
	cfg := config{haltBug: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	mem, err := memory.New(boot)
	if err != nil {
		return nil, fmt.Errorf("creating memory bus: %w", err)
	}
	if cfg.cart != nil {
		mem.SetCartridge(cfg.cart)
	}
	if cfg.serial != nil {
		mem.SetSerial(cfg.serial)
	}

	d := &DMG{
		cpu:      cpu.New(mem, mem.Interrupts()),
		mem:      mem,
		observer: cfg.observer,
		sink:     cfg.sink,
	}
	d.cpu.SetHaltBug(cfg.haltBug)

	gpu := mem.GPU()
	if d.observer != nil || d.sink != nil {
		gpu.SetFrameSink(frameRelay{d})
	}
	if d.observer != nil {
		gpu.SetModeHook(d.observeMode)
	}
	return d, nil
}

// NewWithDummyBoot creates a DMG running the built-in boot image, which jumps
// straight to 0x0100.
func NewWithDummyBoot(opts ...Option) *DMG {
	d, err := New(memory.DummyBootROM(), opts...)
	if err != nil {
		panic(fmt.Sprintf("dummy boot image rejected: %v", err))
	}
	return d
}

// NewWithFile creates a DMG with the boot image read from path.
func NewWithFile(path string, opts ...Option) (*DMG, error) {
	boot, err := memory.LoadBootROM(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded boot image", "path", path, "bytes", len(boot))
	return New(boot, opts...)
}

// Step runs one CPU step and advances the peripherals by the cycles it
// consumed. It returns that cycle count.
func (d *DMG) Step() int {
	cycles := d.cpu.Step()
	if d.observer != nil {
		d.observeStep()
	}
	d.mem.Advance(cycles)
	return cycles
}

// RunUntilFrame steps until the PPU completes a frame and returns the cycles
// consumed. With the LCD off no frame ever completes, so it gives up after
// one frame's worth of cycles.
func (d *DMG) RunUntilFrame() int {
	gpu := d.mem.GPU()
	start := gpu.FrameCount()
	total := 0
	for gpu.FrameCount() == start {
		total += d.Step()
		if total >= video.FrameDots && !d.lcdEnabled() {
			break
		}
	}
	return total
}

// RunUntil steps until cond holds or maxSteps steps ran. cond is checked
// before every step. It returns the steps executed and whether cond was met.
// maxSteps <= 0 means no limit.
func (d *DMG) RunUntil(cond func(*DMG) bool, maxSteps int) (int, bool) {
	steps := 0
	for maxSteps <= 0 || steps < maxSteps {
		if cond(d) {
			return steps, true
		}
		d.Step()
		steps++
	}
	return steps, cond(d)
}

func (d *DMG) lcdEnabled() bool {
	return bit.IsSet(7, d.mem.Peek(addr.LCDC))
}

func (d *DMG) CPU() *cpu.CPU    { return d.cpu }
func (d *DMG) MMU() *memory.MMU { return d.mem }

// Frame returns the last completed frame.
func (d *DMG) Frame() *video.FrameBuffer {
	return d.mem.GPU().GetFrameBuffer()
}

// FrameCount returns the number of frames completed since power on.
func (d *DMG) FrameCount() uint64 { return d.mem.GPU().FrameCount() }

// InstructionCount returns the number of instructions executed.
func (d *DMG) InstructionCount() uint64 { return d.cpu.GetInstructions() }

// Cycles returns the total clock cycles elapsed.
func (d *DMG) Cycles() uint64 { return d.cpu.GetCycles() }

// Peek reads memory without PPU or DMA gating.
func (d *DMG) Peek(address uint16) uint8 { return d.mem.Peek(address) }

// Poke writes memory without PPU or DMA gating.
func (d *DMG) Poke(address uint16, value uint8) { d.mem.Poke(address, value) }

// Press and Release inject joypad state.
func (d *DMG) Press(key memory.JoypadKey)   { d.mem.Joypad().Press(key) }
func (d *DMG) Release(key memory.JoypadKey) { d.mem.Joypad().Release(key) }

func (d *DMG) observeStep() {
	trace := d.cpu.LastStep()
	switch {
	case trace.Executed:
		d.observer.Observe(events.Event{
			Kind:   events.InstructionExecuted,
			Cycle:  d.cpu.GetCycles(),
			PC:     trace.PC,
			Opcode: trace.Opcode,
			Name:   cpu.Mnemonic(trace.Opcode),
		})
	case trace.Interrupt != 0:
		d.observer.Observe(events.Event{
			Kind:      events.InterruptServiced,
			Cycle:     d.cpu.GetCycles(),
			PC:        trace.PC,
			Interrupt: trace.Interrupt,
		})
	}
}

func (d *DMG) observeMode(mode video.Mode, line uint8) {
	d.observer.Observe(events.Event{
		Kind:  events.ModeChanged,
		Cycle: d.cpu.GetCycles(),
		Mode:  mode,
		Line:  line,
	})
}

// frameRelay sits between the PPU and the host sink and reports frames to
// the observer.
type frameRelay struct {
	d *DMG
}

func (r frameRelay) PresentFrame(fb *video.FrameBuffer) {
	if r.d.observer != nil {
		r.d.observer.Observe(events.Event{
			Kind:  events.FrameCompleted,
			Cycle: r.d.cpu.GetCycles(),
			Frame: r.d.mem.GPU().FrameCount(),
		})
	}
	if r.d.sink != nil {
		r.d.sink.PresentFrame(fb)
	}
}
