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

package disassembly_test

import (
	"fmt"
	"testing"

	"github.com/jetsetilly/gopherzx/disassembly"
	"github.com/jetsetilly/gopherzx/test"
)

func disasmOne(bytes ...uint8) string {
	e := disassembly.Disassemble(disassembly.SliceSource(bytes), 0)
	if e.Operand == "" {
		return e.Operator
	}
	return fmt.Sprintf("%s %s", e.Operator, e.Operand)
}

func TestBasePage(t *testing.T) {
	test.ExpectEquality(t, disasmOne(0x00), "NOP")
	test.ExpectEquality(t, disasmOne(0x01, 0x34, 0x12), "LD BC,$1234")
	test.ExpectEquality(t, disasmOne(0x3e, 0x80), "LD A,$80")
	test.ExpectEquality(t, disasmOne(0x76), "HALT")
	test.ExpectEquality(t, disasmOne(0xc3, 0x00, 0x80), "JP $8000")
	test.ExpectEquality(t, disasmOne(0xd3, 0xfe), "OUT ($fe),A")
}

func TestRelativeTargets(t *testing.T) {
	// JR with a displacement of zero targets the following instruction
	test.ExpectEquality(t, disasmOne(0x18, 0x00), "JR $0002")

	// backwards jump: the classic self loop
	test.ExpectEquality(t, disasmOne(0x18, 0xfe), "JR $0000")

	test.ExpectEquality(t, disasmOne(0x10, 0xfe), "DJNZ $0000")
}

func TestInstructionLengths(t *testing.T) {
	e := disassembly.Disassemble(disassembly.SliceSource{0x21, 0x00, 0x40}, 0)
	test.ExpectEquality(t, e.Length(), 3)

	// DD prefix adds a byte
	e = disassembly.Disassemble(disassembly.SliceSource{0xdd, 0x21, 0x00, 0x40}, 0)
	test.ExpectEquality(t, e.Length(), 4)

	// DD CB d op is always four bytes
	e = disassembly.Disassemble(disassembly.SliceSource{0xdd, 0xcb, 0x05, 0x46}, 0)
	test.ExpectEquality(t, e.Length(), 4)
}

func TestIndexedOperands(t *testing.T) {
	test.ExpectEquality(t, disasmOne(0xdd, 0x34, 0x05), "INC (IX+$05)")
	test.ExpectEquality(t, disasmOne(0xfd, 0x34, 0xfb), "INC (IY-$05)")
	test.ExpectEquality(t, disasmOne(0xdd, 0xe1), "POP IX")
	test.ExpectEquality(t, disasmOne(0xdd, 0xcb, 0x05, 0x46), "BIT 0,(IX+$05)")
}

func TestEDPage(t *testing.T) {
	test.ExpectEquality(t, disasmOne(0xed, 0xb0), "LDIR")
	test.ExpectEquality(t, disasmOne(0xed, 0x52), "SBC HL,DE")
	test.ExpectEquality(t, disasmOne(0xed, 0x43, 0x00, 0xc0), "LD ($c000),BC")

	// undefined ED opcodes disassemble as NOP
	test.ExpectEquality(t, disasmOne(0xed, 0x00), "NOP")
}

func TestRange(t *testing.T) {
	// LD A,$00 / INC A / JR $0000
	prog := disassembly.SliceSource{0x3e, 0x00, 0x3c, 0x18, 0xfb}
	entries := disassembly.DisassembleRange(prog, 0, len(prog))
	test.ExpectEquality(t, len(entries), 3)
	test.ExpectEquality(t, entries[1].Address, uint16(2))
	test.ExpectEquality(t, entries[2].Operator, "JR")
}
