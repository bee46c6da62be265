package cpu

import (
	"fmt"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
	"github.com/valerio/go-jeebie-core/jeebie/interrupt"
)

// Bus is the CPU's view of the address space. Every read and write goes
// through it, peripheral side effects included.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const (
	// interruptCycles is the cost of dispatching to an interrupt vector.
	interruptCycles = 20
	// idleCycles is reported for a step that fetches nothing (halted or locked).
	idleCycles = 4
)

// Trace describes what the most recent Step did.
type Trace struct {
	PC     uint16 // address the instruction was fetched from
	Opcode uint16 // 0xCBxx for the extended table
	// Executed is false when the step serviced an interrupt or idled.
	Executed  bool
	Interrupt addr.Interrupt // non-zero when an interrupt was serviced
}

// CPU is the main struct holding SM83 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	ime      bool
	imeDelay int // EI: instructions left before IME is set
	halted   bool
	locked   bool // an illegal opcode froze the CPU
	cycles   uint64
	executed uint64
	last     Trace

	// haltBug makes the next opcode fetch skip the PC increment. Set by HALT
	// when IME is clear and an interrupt is already pending.
	haltBug        bool
	haltBugEnabled bool

	bus Bus
	irq *interrupt.Controller
}

// New returns a CPU in its reset state: every register zero, PC at 0x0000
// where the boot image is mapped.
func New(bus Bus, irq *interrupt.Controller) *CPU {
	return &CPU{
		bus:            bus,
		irq:            irq,
		haltBugEnabled: true,
	}
}

// SetHaltBug chooses whether HALT with IME clear and a pending interrupt
// repeats the next opcode byte. When disabled execution just continues.
func (c *CPU) SetHaltBug(enabled bool) {
	c.haltBugEnabled = enabled
}

// Step runs one step: an interrupt dispatch, an idle halted cycle, or one
// instruction. It returns the clock cycles consumed; the caller forwards them
// to the bus.
func (c *CPU) Step() int {
	c.last = Trace{PC: c.pc}

	if c.locked {
		c.cycles += idleCycles
		return idleCycles
	}

	if c.ime {
		if i, ok := c.irq.Highest(); ok {
			return c.serviceInterrupt(i)
		}
	}

	if c.halted {
		if c.irq.Pending() == 0 {
			c.cycles += idleCycles
			return idleCycles
		}
		// woken with IME clear: resume without servicing
		c.halted = false
	}

	instr := c.fetch()

	var operand uint16
	switch instr.operandLength() {
	case 1:
		operand = uint16(c.readImmediate())
	case 2:
		operand = c.readImmediateWord()
	}

	cycles := instr.Cycles
	if instr.exec(c, operand) {
		cycles = instr.CyclesTaken
	}
	if cycles == 0 {
		panic(fmt.Sprintf("Instruction 0x%04X (%s) reported zero cycles", instr.Opcode, instr.Mnemonic))
	}

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}

	c.cycles += uint64(cycles)
	c.executed++
	c.last.Opcode = instr.Opcode
	c.last.Executed = true
	return cycles
}

// fetch reads the opcode at PC and resolves its descriptor, following the
// 0xCB prefix into the extended table.
func (c *CPU) fetch() *Instruction {
	opcode := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}

	if opcode != 0xCB {
		return &instructions[opcode]
	}
	return &cbInstructions[c.readImmediate()]
}

// serviceInterrupt pushes PC and jumps to the vector of the given source.
func (c *CPU) serviceInterrupt(i addr.Interrupt) int {
	c.halted = false
	c.ime = false
	c.imeDelay = 0
	c.irq.Clear(i)
	c.pushStack(c.pc)
	c.pc = interrupt.Vector(i)

	c.cycles += interruptCycles
	c.last.Interrupt = i
	return interruptCycles
}

// readImmediate returns the byte at PC and increments it.
// This value is known as immediate ('n' in mnemonics).
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord reads a little endian word at PC and increments it twice.
// This value is known as immediate ('nn' in mnemonics).
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &= uint8(flag ^ 0xFF)
}

func (c CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}
	c.setFlag(flag)
}

// setFlags replaces the whole flag register.
func (c *CPU) setFlags(z, n, h, cy bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, z)
	c.setFlagToCondition(subFlag, n)
	c.setFlagToCondition(halfCarryFlag, h)
	c.setFlagToCondition(carryFlag, cy)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Debug getter methods for register display
func (c *CPU) GetA() uint8             { return c.a }
func (c *CPU) GetF() uint8             { return c.f }
func (c *CPU) GetB() uint8             { return c.b }
func (c *CPU) GetC() uint8             { return c.c }
func (c *CPU) GetD() uint8             { return c.d }
func (c *CPU) GetE() uint8             { return c.e }
func (c *CPU) GetH() uint8             { return c.h }
func (c *CPU) GetL() uint8             { return c.l }
func (c *CPU) GetBC() uint16           { return c.getBC() }
func (c *CPU) GetDE() uint16           { return c.getDE() }
func (c *CPU) GetHL() uint16           { return c.getHL() }
func (c *CPU) GetAF() uint16           { return c.getAF() }
func (c *CPU) GetSP() uint16           { return c.sp }
func (c *CPU) GetPC() uint16           { return c.pc }
func (c *CPU) GetCycles() uint64       { return c.cycles }
func (c *CPU) GetInstructions() uint64 { return c.executed }
func (c *CPU) LastStep() Trace         { return c.last }

// Interrupt state getters
func (c *CPU) GetIME() bool   { return c.ime }
func (c *CPU) IsHalted() bool { return c.halted }
func (c *CPU) IsLocked() bool { return c.locked }

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := []byte("----")
	if c.isSetFlag(zeroFlag) {
		flags[0] = 'Z'
	}
	if c.isSetFlag(subFlag) {
		flags[1] = 'N'
	}
	if c.isSetFlag(halfCarryFlag) {
		flags[2] = 'H'
	}
	if c.isSetFlag(carryFlag) {
		flags[3] = 'C'
	}
	return string(flags)
}
