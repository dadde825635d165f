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

package disassembly

import (
	"fmt"
	"strings"
)

// ByteSource supplies the bytes being disassembled. The debugger's direct
// read interface satisfies this; so does a wrapper around a flat file.
type ByteSource interface {
	DirectRead(addr uint16) uint8
}

// SliceSource adapts a byte slice to the ByteSource interface, origin at
// zero.
type SliceSource []uint8

// DirectRead implements the ByteSource interface.
func (s SliceSource) DirectRead(addr uint16) uint8 {
	if int(addr) >= len(s) {
		return 0
	}
	return s[addr]
}

// Entry is one disassembled instruction.
type Entry struct {
	Address uint16

	// the instruction bytes
	Bytes []uint8

	Operator string
	Operand  string
}

// Length returns the byte length of the instruction.
func (e Entry) Length() int {
	return len(e.Bytes)
}

func (e Entry) String() string {
	b := strings.Builder{}
	for _, v := range e.Bytes {
		b.WriteString(fmt.Sprintf("%02x ", v))
	}
	return fmt.Sprintf("%04x  %-12s %s %s", e.Address, b.String(), e.Operator, e.Operand)
}

// Disassemble decodes the single instruction at addr.
func Disassemble(src ByteSource, addr uint16) Entry {
	d := decoder{src: src, addr: addr, pos: addr}
	return d.entry()
}

// DisassembleRange decodes instructions from addr until at least length
// bytes are consumed.
func DisassembleRange(src ByteSource, addr uint16, length int) []Entry {
	var entries []Entry
	end := int(addr) + length
	for int(addr) < end {
		e := Disassemble(src, addr)
		entries = append(entries, e)
		addr += uint16(e.Length())
	}
	return entries
}

type decoder struct {
	src  ByteSource
	addr uint16
	pos  uint16

	index string // "", "IX" or "IY"
}

func (d *decoder) next() uint8 {
	v := d.src.DirectRead(d.pos)
	d.pos++
	return v
}

func (d *decoder) entry() Entry {
	op := d.next()

	// index prefixes. repeated prefixes behave as the last one seen
	for op == 0xdd || op == 0xfd {
		if op == 0xdd {
			d.index = "IX"
		} else {
			d.index = "IY"
		}
		op = d.next()
	}

	var mnemonic string
	switch op {
	case 0xcb:
		mnemonic = d.decodeCB()
	case 0xed:
		d.index = ""
		mnemonic = d.decodeED()
	default:
		mnemonic = d.expand(mnemonics[op])
	}

	e := Entry{Address: d.addr}
	for a := d.addr; a != d.pos; a++ {
		e.Bytes = append(e.Bytes, d.src.DirectRead(a))
	}

	parts := strings.SplitN(mnemonic, " ", 2)
	e.Operator = parts[0]
	if len(parts) > 1 {
		e.Operand = parts[1]
	}

	return e
}

// expand replaces the operand placeholders of a mnemonic template,
// consuming instruction bytes as needed.
func (d *decoder) expand(m string) string {
	if m == "" {
		m = "NOP"
	}

	// the index substitution happens before operand decoding so that the
	// displacement byte is fetched in the right order
	if d.index != "" {
		if strings.Contains(m, "(*ih*d)") {
			disp := int8(d.next())
			sign := "+"
			v := int(disp)
			if v < 0 {
				sign = "-"
				v = -v
			}
			m = strings.ReplaceAll(m, "(*ih*d)", fmt.Sprintf("(%s%s$%02x)", d.index, sign, v))
		}
		m = strings.ReplaceAll(m, "*ih", d.index)

		// H and L become the index register halves
		m = strings.ReplaceAll(m, ",H", ","+d.index+"h")
		m = strings.ReplaceAll(m, ",L", ","+d.index+"l")
		m = strings.ReplaceAll(m, " H,", " "+d.index+"h,")
		m = strings.ReplaceAll(m, " L,", " "+d.index+"l,")
	} else {
		m = strings.ReplaceAll(m, "(*ih*d)", "(HL)")
		m = strings.ReplaceAll(m, "*ih", "HL")
	}

	if strings.Contains(m, "*nn") {
		lo := d.next()
		hi := d.next()
		m = strings.ReplaceAll(m, "*nn", fmt.Sprintf("$%04x", uint16(hi)<<8|uint16(lo)))
	}
	if strings.Contains(m, "*e") {
		disp := int8(d.next())
		target := d.pos + uint16(int16(disp))
		m = strings.ReplaceAll(m, "*e", fmt.Sprintf("$%04x", target))
	}
	if strings.Contains(m, "*n") {
		m = strings.ReplaceAll(m, "*n", fmt.Sprintf("$%02x", d.next()))
	}

	return m
}

func (d *decoder) decodeCB() string {
	// behind an index prefix the displacement precedes the opcode
	var indexOperand string
	if d.index != "" {
		disp := int8(d.next())
		sign := "+"
		v := int(disp)
		if v < 0 {
			sign = "-"
			v = -v
		}
		indexOperand = fmt.Sprintf("(%s%s$%02x)", d.index, sign, v)
	}

	op := d.next()
	group := op >> 6
	sub := (op >> 3) & 0x07
	reg := cbRegisters[op&0x07]

	if indexOperand != "" {
		// the undocumented forms copy the result to a register
		if op&0x07 != 6 {
			reg = indexOperand + "," + reg
		} else {
			reg = indexOperand
		}
	}

	switch group {
	case 0:
		return fmt.Sprintf("%s %s", cbOperations[sub], reg)
	case 1:
		if indexOperand != "" {
			reg = indexOperand
		}
		return fmt.Sprintf("BIT %d,%s", sub, reg)
	case 2:
		return fmt.Sprintf("RES %d,%s", sub, reg)
	}
	return fmt.Sprintf("SET %d,%s", sub, reg)
}

func (d *decoder) decodeED() string {
	op := d.next()
	m, ok := edMnemonics[op]
	if !ok {
		return "NOP"
	}
	return d.expand(m)
}
