// Package script evaluates Lua expressions against emulator state, for
// "run until" conditions given on the command line.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-jeebie-core/jeebie"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
	"github.com/valerio/go-jeebie-core/jeebie/cpu"
)

// Machine is the state a condition can see. *jeebie.DMG satisfies it.
type Machine interface {
	CPU() *cpu.CPU
	Peek(address uint16) uint8
	FrameCount() uint64
}

// Condition is a compiled Lua expression such as
//
//	pc == 0x0150 and peek(0xFF44) >= 144
//
// Registers are exposed as lowercase globals (a, f, bc, hl, sp, pc, ...),
// along with ime, halted, frame and cycles. peek(addr) reads memory without
// side effects and bit(n, v) tests bit n of v. The result follows Lua
// truthiness: only nil and false are false.
//
// A Condition is not safe for concurrent use.
type Condition struct {
	expr    string
	state   *lua.LState
	fn      *lua.LFunction
	machine Machine
	err     error
}

// Compile parses expr. The returned condition must be closed.
func Compile(expr string) (*Condition, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	fn, err := L.LoadString("return (" + expr + ")")
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("compiling condition %q: %w", expr, err)
	}

	c := &Condition{expr: expr, state: L, fn: fn}
	L.SetGlobal("peek", L.NewFunction(c.peek))
	L.SetGlobal("bit", L.NewFunction(testBit))
	return c, nil
}

// String returns the source expression.
func (c *Condition) String() string { return c.expr }

// Close releases the Lua state.
func (c *Condition) Close() {
	c.state.Close()
}

// Eval evaluates the condition against m.
func (c *Condition) Eval(m Machine) (bool, error) {
	c.machine = m
	c.setRegisters(m.CPU())
	c.state.SetGlobal("frame", lua.LNumber(m.FrameCount()))

	L := c.state
	L.Push(c.fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return false, fmt.Errorf("evaluating condition %q: %w", c.expr, err)
	}
	result := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(result), nil
}

// Check is Eval shaped for jeebie.DMG.RunUntil. An evaluation error stops
// the run by reporting true; Err returns it afterwards.
func (c *Condition) Check(d *jeebie.DMG) bool {
	ok, err := c.Eval(d)
	if err != nil {
		c.err = err
		return true
	}
	return ok
}

// Err returns the first evaluation error seen by Check.
func (c *Condition) Err() error { return c.err }

func (c *Condition) setRegisters(r *cpu.CPU) {
	L := c.state
	for name, v := range map[string]uint16{
		"a": uint16(r.GetA()), "f": uint16(r.GetF()),
		"b": uint16(r.GetB()), "c": uint16(r.GetC()),
		"d": uint16(r.GetD()), "e": uint16(r.GetE()),
		"h": uint16(r.GetH()), "l": uint16(r.GetL()),
		"af": r.GetAF(), "bc": r.GetBC(), "de": r.GetDE(), "hl": r.GetHL(),
		"sp": r.GetSP(), "pc": r.GetPC(),
	} {
		L.SetGlobal(name, lua.LNumber(v))
	}
	L.SetGlobal("ime", lua.LBool(r.GetIME()))
	L.SetGlobal("halted", lua.LBool(r.IsHalted()))
	L.SetGlobal("cycles", lua.LNumber(r.GetCycles()))
}

func (c *Condition) peek(L *lua.LState) int {
	address := L.CheckInt(1)
	if address < 0 || address > 0xFFFF {
		L.ArgError(1, "address out of range")
	}
	L.Push(lua.LNumber(c.machine.Peek(uint16(address))))
	return 1
}

func testBit(L *lua.LState) int {
	n := L.CheckInt(1)
	v := L.CheckInt(2)
	if n < 0 || n > 15 {
		L.ArgError(1, "bit index out of range")
	}
	L.Push(lua.LBool(bit.IsSet16(uint16(n), uint16(v))))
	return 1
}
