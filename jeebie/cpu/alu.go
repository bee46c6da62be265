package cpu

import "github.com/valerio/go-jeebie-core/jeebie/bit"

// inc returns value+1. Carry is left untouched.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0xF)
	c.resetFlag(subFlag)
	return result
}

// dec returns value-1. Carry is left untouched.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0)
	c.setFlag(subFlag)
	return result
}

// add sets the result of adding value (and optionally the carry) to A.
func (c *CPU) add(value uint8, withCarry bool) {
	var carry uint8
	if withCarry {
		carry = c.flagToBit(carryFlag)
	}
	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carry)
	result := uint8(sum)

	c.setFlags(result == 0, false, bit.HalfCarryAdd(a, value, carry), sum > 0xFF)
	c.a = result
}

// sub will subtract value (and optionally the carry) from A.
func (c *CPU) sub(value uint8, withCarry bool) {
	c.a = c.subtract(value, withCarry)
}

// cp is a subtraction that only keeps the flags.
func (c *CPU) cp(value uint8) {
	c.subtract(value, false)
}

func (c *CPU) subtract(value uint8, withCarry bool) uint8 {
	var carry uint8
	if withCarry {
		carry = c.flagToBit(carryFlag)
	}
	a := c.a
	result := a - value - carry
	borrow := int(a)-int(value)-int(carry) < 0

	c.setFlags(result == 0, true, bit.HalfBorrowSub(a, value, carry), borrow)
	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// addToHL adds a 16 bit value to HL. Zero is left untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, bit.HalfCarryAdd16(hl, value))
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)
	c.setHL(uint16(sum))
}

// addSPSigned returns SP plus a signed displacement. Carries come from the
// low byte of the addition, Z and N are cleared.
func (c *CPU) addSPSigned(offset uint8) uint16 {
	sp := c.sp
	result := sp + uint16(int8(offset))

	low := bit.Low(sp)
	c.setFlags(false, false, bit.HalfCarryAdd(low, offset, 0), uint16(low)+uint16(offset) > 0xFF)
	return result
}

// daa corrects A to packed BCD after an addition or subtraction, using the
// N, H and C flags left by that operation.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)
	var adjust uint8

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// shiftFlags sets the flags every rotate and shift shares.
func (c *CPU) shiftFlags(result uint8, carry bool) uint8 {
	c.setFlags(result == 0, false, false, carry)
	return result
}

func (c *CPU) rlc(value uint8) uint8 {
	return c.shiftFlags(value<<1|value>>7, value > 0x7F)
}

func (c *CPU) rrc(value uint8) uint8 {
	return c.shiftFlags(value>>1|value<<7, value&1 == 1)
}

func (c *CPU) rl(value uint8) uint8 {
	return c.shiftFlags(value<<1|c.flagToBit(carryFlag), value > 0x7F)
}

func (c *CPU) rr(value uint8) uint8 {
	return c.shiftFlags(value>>1|c.flagToBit(carryFlag)<<7, value&1 == 1)
}

func (c *CPU) sla(value uint8) uint8 {
	return c.shiftFlags(value<<1, value > 0x7F)
}

// sra keeps bit 7.
func (c *CPU) sra(value uint8) uint8 {
	return c.shiftFlags(value>>1|value&0x80, value&1 == 1)
}

func (c *CPU) srl(value uint8) uint8 {
	return c.shiftFlags(value>>1, value&1 == 1)
}

func (c *CPU) swap(value uint8) uint8 {
	return c.shiftFlags(value<<4|value>>4, false)
}

// testBit sets Z when the bit is clear. Carry is left untouched.
func (c *CPU) testBit(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}
