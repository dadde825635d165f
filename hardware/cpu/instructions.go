// This file is part of GopherZX.
//
// GopherZX is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherZX is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherZX.  If not, see <https://www.gnu.org/licenses/>.

package cpu

// The unprefixed opcode page. Instructions that reference HL, H or L are
// written to be index aware: when executed behind a DD or FD prefix the
// helpers below substitute IX/IY (or their halves) and the (HL) addressing
// mode becomes (IX+d)/(IY+d) with a displacement byte.

// indexVal returns HL, IX or IY according to the prefix in effect.
func (z *CPU) indexVal() uint16 {
	switch z.index {
	case indexIX:
		return z.IX
	case indexIY:
		return z.IY
	}
	return z.HL()
}

func (z *CPU) setIndexVal(v uint16) {
	switch z.index {
	case indexIX:
		z.IX = v
	case indexIY:
		z.IY = v
	default:
		z.SetHL(v)
	}
}

func (z *CPU) indexHigh() uint8 {
	switch z.index {
	case indexIX:
		return uint8(z.IX >> 8)
	case indexIY:
		return uint8(z.IY >> 8)
	}
	return z.H
}

func (z *CPU) indexLow() uint8 {
	switch z.index {
	case indexIX:
		return uint8(z.IX)
	case indexIY:
		return uint8(z.IY)
	}
	return z.L
}

func (z *CPU) setIndexHigh(v uint8) {
	switch z.index {
	case indexIX:
		z.IX = z.IX&0x00ff | uint16(v)<<8
	case indexIY:
		z.IY = z.IY&0x00ff | uint16(v)<<8
	default:
		z.H = v
	}
}

func (z *CPU) setIndexLow(v uint8) {
	switch z.index {
	case indexIX:
		z.IX = z.IX&0xff00 | uint16(v)
	case indexIY:
		z.IY = z.IY&0xff00 | uint16(v)
	default:
		z.L = v
	}
}

// indexAddr resolves the (HL) addressing mode. behind a prefix it fetches
// the displacement byte, spends the address-adjustment cycles and updates
// MEMPTR.
func (z *CPU) indexAddr(adjust int) uint16 {
	if z.index == indexNone {
		return z.HL()
	}
	d := int8(z.nextByte())
	z.internal(adjust)
	addr := z.indexVal() + uint16(int16(d))
	z.MemPtr = addr
	return addr
}

// readReg reads the 8-bit register with the given operand code. codes 4 and
// 5 honour the index prefix. code 6, the (HL) mode, is never passed here.
func (z *CPU) readReg(code uint8) uint8 {
	switch code {
	case 0:
		return z.B
	case 1:
		return z.C
	case 2:
		return z.D
	case 3:
		return z.E
	case 4:
		return z.indexHigh()
	case 5:
		return z.indexLow()
	}
	return z.A
}

func (z *CPU) writeReg(code uint8, v uint8) {
	switch code {
	case 0:
		z.B = v
	case 1:
		z.C = v
	case 2:
		z.D = v
	case 3:
		z.E = v
	case 4:
		z.setIndexHigh(v)
	case 5:
		z.setIndexLow(v)
	default:
		z.A = v
	}
}

// plain variants ignore the index prefix. used when the other operand of a
// load is the (IX+d) mode.
func (z *CPU) readRegPlain(code uint8) uint8 {
	switch code {
	case 0:
		return z.B
	case 1:
		return z.C
	case 2:
		return z.D
	case 3:
		return z.E
	case 4:
		return z.H
	case 5:
		return z.L
	}
	return z.A
}

func (z *CPU) writeRegPlain(code uint8, v uint8) {
	switch code {
	case 0:
		z.B = v
	case 1:
		z.C = v
	case 2:
		z.D = v
	case 3:
		z.E = v
	case 4:
		z.H = v
	case 5:
		z.L = v
	default:
		z.A = v
	}
}

// condition code test for the JP/CALL/RET groups.
func (z *CPU) condition(code uint8) bool {
	switch code {
	case 0:
		return z.F&FlagZ == 0
	case 1:
		return z.F&FlagZ != 0
	case 2:
		return z.F&FlagC == 0
	case 3:
		return z.F&FlagC != 0
	case 4:
		return z.F&FlagPV == 0
	case 5:
		return z.F&FlagPV != 0
	case 6:
		return z.F&FlagS == 0
	}
	return z.F&FlagS != 0
}

func (z *CPU) initOpcodes() {
	// 0x00 NOP
	z.opcodes[0x00] = func(z *CPU) {}

	// LD rr,nn
	z.opcodes[0x01] = func(z *CPU) { z.SetBC(z.nextWord()) }
	z.opcodes[0x11] = func(z *CPU) { z.SetDE(z.nextWord()) }
	z.opcodes[0x21] = func(z *CPU) { z.setIndexVal(z.nextWord()) }
	z.opcodes[0x31] = func(z *CPU) { z.SP = z.nextWord() }

	// indirect loads through BC and DE
	z.opcodes[0x02] = func(z *CPU) {
		bc := z.BC()
		z.memWrite(bc, z.A)
		z.MemPtr = uint16(z.A)<<8 | (bc+1)&0x00ff
	}
	z.opcodes[0x0a] = func(z *CPU) {
		bc := z.BC()
		z.A = z.memRead(bc)
		z.MemPtr = bc + 1
	}
	z.opcodes[0x12] = func(z *CPU) {
		de := z.DE()
		z.memWrite(de, z.A)
		z.MemPtr = uint16(z.A)<<8 | (de+1)&0x00ff
	}
	z.opcodes[0x1a] = func(z *CPU) {
		de := z.DE()
		z.A = z.memRead(de)
		z.MemPtr = de + 1
	}

	// 16-bit INC/DEC
	z.opcodes[0x03] = func(z *CPU) { z.internal(2); z.SetBC(z.BC() + 1) }
	z.opcodes[0x13] = func(z *CPU) { z.internal(2); z.SetDE(z.DE() + 1) }
	z.opcodes[0x23] = func(z *CPU) { z.internal(2); z.setIndexVal(z.indexVal() + 1) }
	z.opcodes[0x33] = func(z *CPU) { z.internal(2); z.SP++ }
	z.opcodes[0x0b] = func(z *CPU) { z.internal(2); z.SetBC(z.BC() - 1) }
	z.opcodes[0x1b] = func(z *CPU) { z.internal(2); z.SetDE(z.DE() - 1) }
	z.opcodes[0x2b] = func(z *CPU) { z.internal(2); z.setIndexVal(z.indexVal() - 1) }
	z.opcodes[0x3b] = func(z *CPU) { z.internal(2); z.SP-- }

	// 8-bit INC/DEC on registers
	incReg := func(code uint8) func(*CPU) {
		return func(z *CPU) { z.writeReg(code, z.inc8(z.readReg(code))) }
	}
	decReg := func(code uint8) func(*CPU) {
		return func(z *CPU) { z.writeReg(code, z.dec8(z.readReg(code))) }
	}
	for i, op := range []uint8{0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0xff, 0x3c} {
		if op == 0xff {
			continue
		}
		z.opcodes[op] = incReg(uint8(i))
	}
	for i, op := range []uint8{0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0xff, 0x3d} {
		if op == 0xff {
			continue
		}
		z.opcodes[op] = decReg(uint8(i))
	}

	// INC/DEC (HL)
	z.opcodes[0x34] = func(z *CPU) {
		addr := z.indexAddr(5)
		v := z.memRead(addr)
		z.internal(1)
		z.memWrite(addr, z.inc8(v))
	}
	z.opcodes[0x35] = func(z *CPU) {
		addr := z.indexAddr(5)
		v := z.memRead(addr)
		z.internal(1)
		z.memWrite(addr, z.dec8(v))
	}

	// LD r,n
	ldRegImm := func(code uint8) func(*CPU) {
		return func(z *CPU) { z.writeReg(code, z.nextByte()) }
	}
	for i, op := range []uint8{0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0xff, 0x3e} {
		if op == 0xff {
			continue
		}
		z.opcodes[op] = ldRegImm(uint8(i))
	}
	z.opcodes[0x36] = func(z *CPU) {
		// the displacement and the value share the operand fetch: only two
		// adjustment cycles behind a prefix
		addr := z.indexAddr(2)
		z.memWrite(addr, z.nextByte())
	}

	// accumulator rotates
	z.opcodes[0x07] = func(z *CPU) {
		c := z.A >> 7
		z.A = z.A<<1 | c
		z.setFlags(z.F&(FlagS|FlagZ|FlagPV) | z.A&flagXY | c)
	}
	z.opcodes[0x0f] = func(z *CPU) {
		c := z.A & 0x01
		z.A = z.A>>1 | c<<7
		z.setFlags(z.F&(FlagS|FlagZ|FlagPV) | z.A&flagXY | c)
	}
	z.opcodes[0x17] = func(z *CPU) {
		c := z.A >> 7
		z.A = z.A<<1 | z.F&FlagC
		z.setFlags(z.F&(FlagS|FlagZ|FlagPV) | z.A&flagXY | c)
	}
	z.opcodes[0x1f] = func(z *CPU) {
		c := z.A & 0x01
		z.A = z.A>>1 | (z.F&FlagC)<<7
		z.setFlags(z.F&(FlagS|FlagZ|FlagPV) | z.A&flagXY | c)
	}

	// EX AF,AF'
	z.opcodes[0x08] = func(z *CPU) {
		z.A, z.A2 = z.A2, z.A
		z.F, z.F2 = z.F2, z.F
	}

	// ADD HL,rr
	z.opcodes[0x09] = func(z *CPU) { z.internal(7); z.setIndexVal(z.add16(z.indexVal(), z.BC())) }
	z.opcodes[0x19] = func(z *CPU) { z.internal(7); z.setIndexVal(z.add16(z.indexVal(), z.DE())) }
	z.opcodes[0x29] = func(z *CPU) { z.internal(7); v := z.indexVal(); z.setIndexVal(z.add16(v, v)) }
	z.opcodes[0x39] = func(z *CPU) { z.internal(7); z.setIndexVal(z.add16(z.indexVal(), z.SP)) }

	// DJNZ
	z.opcodes[0x10] = func(z *CPU) {
		z.internal(1)
		source := z.PC - 1
		d := int8(z.nextByte())
		z.B--
		if z.B != 0 {
			z.internal(5)
			z.PC += uint16(int16(d))
			z.MemPtr = z.PC
			z.flow(FlowDJNZ, source, z.PC)
		}
	}

	// JR and JR cc
	z.opcodes[0x18] = func(z *CPU) {
		source := z.PC - 1
		d := int8(z.nextByte())
		z.internal(5)
		z.PC += uint16(int16(d))
		z.MemPtr = z.PC
		z.flow(FlowJR, source, z.PC)
	}
	jrcc := func(code uint8) func(*CPU) {
		return func(z *CPU) {
			source := z.PC - 1
			d := int8(z.nextByte())
			if z.condition(code) {
				z.internal(5)
				z.PC += uint16(int16(d))
				z.MemPtr = z.PC
				z.flow(FlowJR, source, z.PC)
			}
		}
	}
	z.opcodes[0x20] = jrcc(0)
	z.opcodes[0x28] = jrcc(1)
	z.opcodes[0x30] = jrcc(2)
	z.opcodes[0x38] = jrcc(3)

	// LD (nn),HL and LD HL,(nn)
	z.opcodes[0x22] = func(z *CPU) {
		addr := z.nextWord()
		z.memWrite16(addr, z.indexVal())
		z.MemPtr = addr + 1
	}
	z.opcodes[0x2a] = func(z *CPU) {
		addr := z.nextWord()
		z.setIndexVal(z.memRead16(addr))
		z.MemPtr = addr + 1
	}

	// LD (nn),A and LD A,(nn)
	z.opcodes[0x32] = func(z *CPU) {
		addr := z.nextWord()
		z.memWrite(addr, z.A)
		z.MemPtr = uint16(z.A)<<8 | (addr+1)&0x00ff
	}
	z.opcodes[0x3a] = func(z *CPU) {
		addr := z.nextWord()
		z.A = z.memRead(addr)
		z.MemPtr = addr + 1
	}

	// DAA, CPL, SCF, CCF
	z.opcodes[0x27] = func(z *CPU) { z.daa() }
	z.opcodes[0x2f] = func(z *CPU) {
		z.A = ^z.A
		z.setFlags(z.F&(FlagS|FlagZ|FlagPV|FlagC) | z.A&flagXY | FlagH | FlagN)
	}
	z.opcodes[0x37] = func(z *CPU) {
		f := z.F&(FlagS|FlagZ|FlagPV) | FlagC
		f |= ((z.prevQ ^ z.F) | z.A) & flagXY
		z.setFlags(f)
	}
	z.opcodes[0x3f] = func(z *CPU) {
		f := z.F & (FlagS | FlagZ | FlagPV)
		if z.F&FlagC != 0 {
			f |= FlagH
		} else {
			f |= FlagC
		}
		f |= ((z.prevQ ^ z.F) | z.A) & flagXY
		z.setFlags(f)
	}

	// the LD r,r' block (0x40-0x7f). 0x76 is HALT
	for op := 0x40; op <= 0x7f; op++ {
		if op == 0x76 {
			continue
		}
		dst := uint8(op>>3) & 0x07
		src := uint8(op) & 0x07

		switch {
		case dst == 6:
			s := src
			z.opcodes[op] = func(z *CPU) {
				addr := z.indexAddr(5)
				z.memWrite(addr, z.readRegPlain(s))
			}
		case src == 6:
			d := dst
			z.opcodes[op] = func(z *CPU) {
				addr := z.indexAddr(5)
				z.writeRegPlain(d, z.memRead(addr))
			}
		default:
			d, s := dst, src
			z.opcodes[op] = func(z *CPU) {
				z.writeReg(d, z.readReg(s))
			}
		}
	}

	// HALT
	z.opcodes[0x76] = func(z *CPU) {
		z.Halted = true
		// PC stays on the HALT opcode until an interrupt is accepted
		z.PC--
	}

	// the arithmetic block (0x80-0xbf)
	alu := func(z *CPU, group uint8, v uint8) {
		switch group {
		case 0:
			z.add8(v, 0)
		case 1:
			z.add8(v, z.F&FlagC)
		case 2:
			z.sub8(v, 0)
		case 3:
			z.sub8(v, z.F&FlagC)
		case 4:
			z.and8(v)
		case 5:
			z.xor8(v)
		case 6:
			z.or8(v)
		default:
			z.cp8(v)
		}
	}
	for op := 0x80; op <= 0xbf; op++ {
		group := uint8(op>>3) & 0x07
		src := uint8(op) & 0x07
		if src == 6 {
			g := group
			z.opcodes[op] = func(z *CPU) {
				addr := z.indexAddr(5)
				alu(z, g, z.memRead(addr))
			}
		} else {
			g, s := group, src
			z.opcodes[op] = func(z *CPU) {
				alu(z, g, z.readReg(s))
			}
		}
	}

	// the immediate arithmetic group
	aluImm := func(group uint8) func(*CPU) {
		g := group
		return func(z *CPU) { alu(z, g, z.nextByte()) }
	}
	z.opcodes[0xc6] = aluImm(0)
	z.opcodes[0xce] = aluImm(1)
	z.opcodes[0xd6] = aluImm(2)
	z.opcodes[0xde] = aluImm(3)
	z.opcodes[0xe6] = aluImm(4)
	z.opcodes[0xee] = aluImm(5)
	z.opcodes[0xf6] = aluImm(6)
	z.opcodes[0xfe] = aluImm(7)

	// RET cc and RET
	retcc := func(code uint8) func(*CPU) {
		return func(z *CPU) {
			z.internal(1)
			if z.condition(code) {
				source := z.PC - 1
				z.PC = z.pop()
				z.MemPtr = z.PC
				z.flow(FlowRET, source, z.PC)
			}
		}
	}
	for i, op := range []uint8{0xc0, 0xc8, 0xd0, 0xd8, 0xe0, 0xe8, 0xf0, 0xf8} {
		z.opcodes[op] = retcc(uint8(i))
	}
	z.opcodes[0xc9] = func(z *CPU) {
		source := z.PC - 1
		z.PC = z.pop()
		z.MemPtr = z.PC
		z.flow(FlowRET, source, z.PC)
	}

	// POP and PUSH
	z.opcodes[0xc1] = func(z *CPU) { z.SetBC(z.pop()) }
	z.opcodes[0xd1] = func(z *CPU) { z.SetDE(z.pop()) }
	z.opcodes[0xe1] = func(z *CPU) { z.setIndexVal(z.pop()) }
	z.opcodes[0xf1] = func(z *CPU) { z.SetAF(z.pop()) }
	z.opcodes[0xc5] = func(z *CPU) { z.internal(1); z.push(z.BC()) }
	z.opcodes[0xd5] = func(z *CPU) { z.internal(1); z.push(z.DE()) }
	z.opcodes[0xe5] = func(z *CPU) { z.internal(1); z.push(z.indexVal()) }
	z.opcodes[0xf5] = func(z *CPU) { z.internal(1); z.push(z.AF()) }

	// JP and JP cc. MEMPTR is set whether the jump is taken or not
	z.opcodes[0xc3] = func(z *CPU) {
		source := z.PC - 1
		addr := z.nextWord()
		z.PC = addr
		z.MemPtr = addr
		z.flow(FlowJP, source, addr)
	}
	jpcc := func(code uint8) func(*CPU) {
		return func(z *CPU) {
			source := z.PC - 1
			addr := z.nextWord()
			z.MemPtr = addr
			if z.condition(code) {
				z.PC = addr
				z.flow(FlowJP, source, addr)
			}
		}
	}
	for i, op := range []uint8{0xc2, 0xca, 0xd2, 0xda, 0xe2, 0xea, 0xf2, 0xfa} {
		z.opcodes[op] = jpcc(uint8(i))
	}

	// JP (HL)
	z.opcodes[0xe9] = func(z *CPU) {
		source := z.PC - 1
		z.PC = z.indexVal()
		z.flow(FlowJP, source, z.PC)
	}

	// CALL and CALL cc
	z.opcodes[0xcd] = func(z *CPU) {
		source := z.PC - 1
		addr := z.nextWord()
		z.internal(1)
		z.push(z.PC)
		z.PC = addr
		z.MemPtr = addr
		z.flow(FlowCALL, source, addr)
	}
	callcc := func(code uint8) func(*CPU) {
		return func(z *CPU) {
			source := z.PC - 1
			addr := z.nextWord()
			z.MemPtr = addr
			if z.condition(code) {
				z.internal(1)
				z.push(z.PC)
				z.PC = addr
				z.flow(FlowCALL, source, addr)
			}
		}
	}
	for i, op := range []uint8{0xc4, 0xcc, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xfc} {
		z.opcodes[op] = callcc(uint8(i))
	}

	// RST
	rst := func(target uint16) func(*CPU) {
		return func(z *CPU) {
			source := z.PC - 1
			z.internal(1)
			z.push(z.PC)
			z.PC = target
			z.MemPtr = target
			z.flow(FlowRST, source, target)
		}
	}
	for i, op := range []uint8{0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff} {
		z.opcodes[op] = rst(uint16(i) * 8)
	}

	// exchanges
	z.opcodes[0xd9] = func(z *CPU) {
		z.B, z.B2 = z.B2, z.B
		z.C, z.C2 = z.C2, z.C
		z.D, z.D2 = z.D2, z.D
		z.E, z.E2 = z.E2, z.E
		z.H, z.H2 = z.H2, z.H
		z.L, z.L2 = z.L2, z.L
	}
	z.opcodes[0xeb] = func(z *CPU) {
		// EX DE,HL is never index affected
		d, e := z.D, z.E
		z.D, z.E = z.H, z.L
		z.H, z.L = d, e
	}
	z.opcodes[0xe3] = func(z *CPU) {
		lo := z.memRead(z.SP)
		hi := z.memRead(z.SP + 1)
		z.internal(1)
		v := z.indexVal()
		z.memWrite(z.SP+1, uint8(v>>8))
		z.memWrite(z.SP, uint8(v))
		z.internal(2)
		z.setIndexVal(uint16(hi)<<8 | uint16(lo))
		z.MemPtr = z.indexVal()
	}

	// LD SP,HL
	z.opcodes[0xf9] = func(z *CPU) { z.internal(2); z.SP = z.indexVal() }

	// I/O through the accumulator
	z.opcodes[0xd3] = func(z *CPU) {
		n := z.nextByte()
		port := uint16(z.A)<<8 | uint16(n)
		z.portOut(port, z.A)
		z.MemPtr = uint16(z.A)<<8 | uint16(n+1)
	}
	z.opcodes[0xdb] = func(z *CPU) {
		n := z.nextByte()
		port := uint16(z.A)<<8 | uint16(n)
		z.A = z.portIn(port)
		z.MemPtr = port + 1
	}

	// interrupt control
	z.opcodes[0xf3] = func(z *CPU) {
		z.IFF1 = false
		z.IFF2 = false
	}
	z.opcodes[0xfb] = func(z *CPU) {
		z.IFF1 = true
		z.IFF2 = true
		z.eiDelay = true
	}

	// prefixes
	z.opcodes[0xcb] = func(z *CPU) {
		if z.index == indexNone {
			op := z.fetch()
			z.opcodesCB[op](z)
		} else {
			z.indexCB()
		}
	}
	z.opcodes[0xdd] = func(z *CPU) {
		z.index = indexIX
		op := z.fetch()
		z.opcodes[op](z)
		z.index = indexNone
	}
	z.opcodes[0xfd] = func(z *CPU) {
		z.index = indexIY
		op := z.fetch()
		z.opcodes[op](z)
		z.index = indexNone
	}
	z.opcodes[0xed] = func(z *CPU) {
		// the ED page ignores any index prefix
		z.index = indexNone
		op := z.fetch()
		z.opcodesED[op](z)
	}
}
