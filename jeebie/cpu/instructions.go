package cpu

import (
	"fmt"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// Instruction describes one opcode: how many bytes it spans, what it costs and
// what it does. exec receives the operand bytes already read (n or nn) and
// reports whether a conditional branch was taken, in which case the step
// costs CyclesTaken instead of Cycles.
type Instruction struct {
	Opcode      uint16
	Mnemonic    string
	Length      uint8
	Cycles      int
	CyclesTaken int
	exec        func(c *CPU, operand uint16) bool
}

// operandLength is the number of immediate bytes following the opcode.
// Extended opcodes never carry one, their second byte is the opcode itself.
func (i *Instruction) operandLength() uint8 {
	if i.Opcode > 0xFF {
		return 0
	}
	return i.Length - 1
}

// Extended reports whether the instruction lives behind the 0xCB prefix.
func (i *Instruction) Extended() bool {
	return i.Opcode > 0xFF
}

var (
	instructions   = newInstructionTable()
	cbInstructions = newCBInstructionTable()
)

// Lookup returns the descriptor for an opcode. Extended opcodes are given as
// 0xCBxx.
func Lookup(opcode uint16) (Instruction, bool) {
	switch {
	case opcode <= 0xFF:
		return instructions[opcode], true
	case opcode>>8 == 0xCB:
		return cbInstructions[opcode&0xFF], true
	}
	return Instruction{}, false
}

// Mnemonic is the disassembly name of an opcode, "??" when there is none.
func Mnemonic(opcode uint16) string {
	if instr, ok := Lookup(opcode); ok {
		return instr.Mnemonic
	}
	return "??"
}

var (
	r8Names   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	r16Names  = [4]string{"BC", "DE", "HL", "SP"}
	r16Stack  = [4]string{"BC", "DE", "HL", "AF"}
	condNames = [4]string{"NZ", "Z", "NC", "C"}
	aluNames  = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	shiftOps  = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
)

// r8 index 6 is the byte at (HL).
const hlIndirect = 6

func (c *CPU) getR8(index uint8) uint8 {
	switch index {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case hlIndirect:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setR8(index, value uint8) {
	switch index {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case hlIndirect:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// getR16 and setR16 use the BC, DE, HL, SP encoding.
func (c *CPU) getR16(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setR16(index uint8, value uint16) {
	switch index {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// condition evaluates NZ, Z, NC, C.
func (c *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

func (c *CPU) alu(op, value uint8) {
	switch op {
	case 0:
		c.add(value, false)
	case 1:
		c.add(value, true)
	case 2:
		c.sub(value, false)
	case 3:
		c.sub(value, true)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.cp(value)
	}
}

func (c *CPU) jumpRelative(offset uint16) {
	c.pc += uint16(int8(uint8(offset)))
}

func (c *CPU) call(target uint16) {
	c.pushStack(c.pc)
	c.pc = target
}

func (c *CPU) halt() {
	if !c.ime && c.irq.Pending() != 0 {
		// does not halt; optionally repeats the next opcode byte
		c.haltBug = c.haltBugEnabled
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	c.bus.Write(addr.DIV, 0)
}

// do adapts an operation that never branches.
func do(fn func(c *CPU, operand uint16)) func(*CPU, uint16) bool {
	return func(c *CPU, operand uint16) bool {
		fn(c, operand)
		return false
	}
}

// branch adapts an operation guarded by a flag condition.
func branch(cond uint8, fn func(c *CPU, operand uint16)) func(*CPU, uint16) bool {
	return func(c *CPU, operand uint16) bool {
		if !c.condition(cond) {
			return false
		}
		fn(c, operand)
		return true
	}
}

var illegalOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func newInstructionTable() [256]Instruction {
	var t [256]Instruction
	def := func(op uint8, mnemonic string, length uint8, cycles int, exec func(*CPU, uint16) bool) {
		t[op] = Instruction{Opcode: uint16(op), Mnemonic: mnemonic, Length: length, Cycles: cycles, CyclesTaken: cycles, exec: exec}
	}
	cond := func(op uint8, mnemonic string, length uint8, cycles, taken int, exec func(*CPU, uint16) bool) {
		t[op] = Instruction{Opcode: uint16(op), Mnemonic: mnemonic, Length: length, Cycles: cycles, CyclesTaken: taken, exec: exec}
	}
	memCost := func(r uint8, base, indirect int) int {
		if r == hlIndirect {
			return indirect
		}
		return base
	}

	def(0x00, "NOP", 1, 4, do(func(*CPU, uint16) {}))
	def(0x10, "STOP", 2, 4, do(func(c *CPU, _ uint16) { c.stop() }))
	def(0x76, "HALT", 1, 4, do(func(c *CPU, _ uint16) { c.halt() }))
	def(0xF3, "DI", 1, 4, do(func(c *CPU, _ uint16) { c.ime, c.imeDelay = false, 0 }))
	def(0xFB, "EI", 1, 4, do(func(c *CPU, _ uint16) {
		if !c.ime && c.imeDelay == 0 {
			// takes effect after the following instruction
			c.imeDelay = 2
		}
	}))
	def(0xCB, "PREFIX CB", 2, 4, func(*CPU, uint16) bool {
		panic("0xCB is a prefix and is dispatched to the extended table")
	})

	// 16 bit loads and arithmetic
	for p := range uint8(4) {
		def(0x01|p<<4, "LD "+r16Names[p]+",nn", 3, 12, do(func(c *CPU, nn uint16) { c.setR16(p, nn) }))
		def(0x03|p<<4, "INC "+r16Names[p], 1, 8, do(func(c *CPU, _ uint16) { c.setR16(p, c.getR16(p)+1) }))
		def(0x0B|p<<4, "DEC "+r16Names[p], 1, 8, do(func(c *CPU, _ uint16) { c.setR16(p, c.getR16(p)-1) }))
		def(0x09|p<<4, "ADD HL,"+r16Names[p], 1, 8, do(func(c *CPU, _ uint16) { c.addToHL(c.getR16(p)) }))
	}
	def(0x08, "LD (nn),SP", 3, 20, do(func(c *CPU, nn uint16) {
		c.bus.Write(nn, bit.Low(c.sp))
		c.bus.Write(nn+1, bit.High(c.sp))
	}))
	def(0xF9, "LD SP,HL", 1, 8, do(func(c *CPU, _ uint16) { c.sp = c.getHL() }))
	def(0xE8, "ADD SP,e", 2, 16, do(func(c *CPU, e uint16) { c.sp = c.addSPSigned(uint8(e)) }))
	def(0xF8, "LD HL,SP+e", 2, 12, do(func(c *CPU, e uint16) { c.setHL(c.addSPSigned(uint8(e))) }))

	// indirect accumulator loads
	def(0x02, "LD (BC),A", 1, 8, do(func(c *CPU, _ uint16) { c.bus.Write(c.getBC(), c.a) }))
	def(0x12, "LD (DE),A", 1, 8, do(func(c *CPU, _ uint16) { c.bus.Write(c.getDE(), c.a) }))
	def(0x22, "LD (HL+),A", 1, 8, do(func(c *CPU, _ uint16) {
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
	}))
	def(0x32, "LD (HL-),A", 1, 8, do(func(c *CPU, _ uint16) {
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)
	}))
	def(0x0A, "LD A,(BC)", 1, 8, do(func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getBC()) }))
	def(0x1A, "LD A,(DE)", 1, 8, do(func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getDE()) }))
	def(0x2A, "LD A,(HL+)", 1, 8, do(func(c *CPU, _ uint16) {
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() + 1)
	}))
	def(0x3A, "LD A,(HL-)", 1, 8, do(func(c *CPU, _ uint16) {
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() - 1)
	}))
	def(0xE0, "LDH (n),A", 2, 12, do(func(c *CPU, n uint16) { c.bus.Write(0xFF00+n, c.a) }))
	def(0xF0, "LDH A,(n)", 2, 12, do(func(c *CPU, n uint16) { c.a = c.bus.Read(0xFF00 + n) }))
	def(0xE2, "LD (C),A", 1, 8, do(func(c *CPU, _ uint16) { c.bus.Write(0xFF00+uint16(c.c), c.a) }))
	def(0xF2, "LD A,(C)", 1, 8, do(func(c *CPU, _ uint16) { c.a = c.bus.Read(0xFF00 + uint16(c.c)) }))
	def(0xEA, "LD (nn),A", 3, 16, do(func(c *CPU, nn uint16) { c.bus.Write(nn, c.a) }))
	def(0xFA, "LD A,(nn)", 3, 16, do(func(c *CPU, nn uint16) { c.a = c.bus.Read(nn) }))

	// 8 bit INC/DEC/LD r,n
	for r := range uint8(8) {
		def(0x04|r<<3, "INC "+r8Names[r], 1, memCost(r, 4, 12), do(func(c *CPU, _ uint16) { c.setR8(r, c.inc(c.getR8(r))) }))
		def(0x05|r<<3, "DEC "+r8Names[r], 1, memCost(r, 4, 12), do(func(c *CPU, _ uint16) { c.setR8(r, c.dec(c.getR8(r))) }))
		def(0x06|r<<3, "LD "+r8Names[r]+",n", 2, memCost(r, 8, 12), do(func(c *CPU, n uint16) { c.setR8(r, uint8(n)) }))
	}

	// accumulator rotates always clear Z
	def(0x07, "RLCA", 1, 4, do(func(c *CPU, _ uint16) {
		c.a = c.rlc(c.a)
		c.resetFlag(zeroFlag)
	}))
	def(0x0F, "RRCA", 1, 4, do(func(c *CPU, _ uint16) {
		c.a = c.rrc(c.a)
		c.resetFlag(zeroFlag)
	}))
	def(0x17, "RLA", 1, 4, do(func(c *CPU, _ uint16) {
		c.a = c.rl(c.a)
		c.resetFlag(zeroFlag)
	}))
	def(0x1F, "RRA", 1, 4, do(func(c *CPU, _ uint16) {
		c.a = c.rr(c.a)
		c.resetFlag(zeroFlag)
	}))
	def(0x27, "DAA", 1, 4, do(func(c *CPU, _ uint16) { c.daa() }))
	def(0x2F, "CPL", 1, 4, do(func(c *CPU, _ uint16) { c.cpl() }))
	def(0x37, "SCF", 1, 4, do(func(c *CPU, _ uint16) { c.scf() }))
	def(0x3F, "CCF", 1, 4, do(func(c *CPU, _ uint16) { c.ccf() }))

	// LD r,r' and the ALU block
	for op := 0x40; op <= 0xBF; op++ {
		if op == 0x76 {
			continue
		}
		dst, src := uint8(op>>3)&7, uint8(op)&7
		cost := memCost(src, 4, 8)
		if op < 0x80 {
			cost = max(cost, memCost(dst, 4, 8))
			def(uint8(op), "LD "+r8Names[dst]+","+r8Names[src], 1, cost,
				do(func(c *CPU, _ uint16) { c.setR8(dst, c.getR8(src)) }))
			continue
		}
		kind := dst
		def(uint8(op), aluNames[kind]+r8Names[src], 1, cost,
			do(func(c *CPU, _ uint16) { c.alu(kind, c.getR8(src)) }))
	}
	for kind := range uint8(8) {
		def(0xC6|kind<<3, aluNames[kind]+"n", 2, 8, do(func(c *CPU, n uint16) { c.alu(kind, uint8(n)) }))
	}

	// jumps, calls and returns
	def(0x18, "JR e", 2, 12, do(func(c *CPU, e uint16) { c.jumpRelative(e) }))
	def(0xC3, "JP nn", 3, 16, do(func(c *CPU, nn uint16) { c.pc = nn }))
	def(0xE9, "JP HL", 1, 4, do(func(c *CPU, _ uint16) { c.pc = c.getHL() }))
	def(0xCD, "CALL nn", 3, 24, do(func(c *CPU, nn uint16) { c.call(nn) }))
	def(0xC9, "RET", 1, 16, do(func(c *CPU, _ uint16) { c.pc = c.popStack() }))
	def(0xD9, "RETI", 1, 16, do(func(c *CPU, _ uint16) {
		c.pc = c.popStack()
		c.ime, c.imeDelay = true, 0
	}))
	for cc := range uint8(4) {
		name := condNames[cc]
		cond(0x20|cc<<3, "JR "+name+",e", 2, 8, 12, branch(cc, func(c *CPU, e uint16) { c.jumpRelative(e) }))
		cond(0xC2|cc<<3, "JP "+name+",nn", 3, 12, 16, branch(cc, func(c *CPU, nn uint16) { c.pc = nn }))
		cond(0xC4|cc<<3, "CALL "+name+",nn", 3, 12, 24, branch(cc, func(c *CPU, nn uint16) { c.call(nn) }))
		cond(0xC0|cc<<3, "RET "+name, 1, 8, 20, branch(cc, func(c *CPU, _ uint16) { c.pc = c.popStack() }))
	}
	for n := range uint8(8) {
		target := uint16(n) * 8
		def(0xC7|n<<3, fmt.Sprintf("RST %02XH", target), 1, 16, do(func(c *CPU, _ uint16) { c.call(target) }))
	}

	// stack
	for p := range uint8(4) {
		def(0xC1|p<<4, "POP "+r16Stack[p], 1, 12, do(func(c *CPU, _ uint16) {
			value := c.popStack()
			if p == 3 {
				c.setAF(value)
				return
			}
			c.setR16(p, value)
		}))
		def(0xC5|p<<4, "PUSH "+r16Stack[p], 1, 16, do(func(c *CPU, _ uint16) {
			if p == 3 {
				c.pushStack(c.getAF())
				return
			}
			c.pushStack(c.getR16(p))
		}))
	}

	for _, op := range illegalOpcodes {
		def(op, fmt.Sprintf("ILLEGAL_%02X", op), 1, 4, do(func(c *CPU, _ uint16) { c.locked = true }))
	}

	return t
}

func newCBInstructionTable() [256]Instruction {
	var t [256]Instruction
	shifts := [8]func(c *CPU, v uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}

	for op := range 256 {
		group, y, r := uint8(op>>6), uint8(op>>3)&7, uint8(op)&7
		cycles := 8
		if r == hlIndirect {
			cycles = 16
			if group == 1 {
				cycles = 12
			}
		}

		var mnemonic string
		var exec func(*CPU, uint16) bool
		switch group {
		case 0:
			shift := shifts[y]
			mnemonic = shiftOps[y] + " " + r8Names[r]
			exec = do(func(c *CPU, _ uint16) { c.setR8(r, shift(c, c.getR8(r))) })
		case 1:
			mnemonic = fmt.Sprintf("BIT %d,%s", y, r8Names[r])
			exec = do(func(c *CPU, _ uint16) { c.testBit(y, c.getR8(r)) })
		case 2:
			mnemonic = fmt.Sprintf("RES %d,%s", y, r8Names[r])
			exec = do(func(c *CPU, _ uint16) { c.setR8(r, bit.Reset(y, c.getR8(r))) })
		default:
			mnemonic = fmt.Sprintf("SET %d,%s", y, r8Names[r])
			exec = do(func(c *CPU, _ uint16) { c.setR8(r, bit.Set(y, c.getR8(r))) })
		}

		t[op] = Instruction{
			Opcode:      0xCB00 | uint16(op),
			Mnemonic:    mnemonic,
			Length:      2,
			Cycles:      cycles,
			CyclesTaken: cycles,
			exec:        exec,
		}
	}
	return t
}
