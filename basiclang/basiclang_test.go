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

package basiclang_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jetsetilly/gopherzx/basiclang"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/test"
)

func TestTokenizeSingleLine(t *testing.T) {
	out := basiclang.Tokenize("10 PRINT \"HELLO\"\n")

	// line 10, big-endian
	test.ExpectEquality(t, out[0], uint8(0x00))
	test.ExpectEquality(t, out[1], uint8(0x0a))

	// exactly one PRINT token
	test.ExpectEquality(t, bytes.Count(out, []byte{0xf5}), 1)

	// the string literal passes through verbatim, quotes included
	test.ExpectSuccess(t, bytes.Contains(out, []byte("\"HELLO\"")))

	// the line terminator
	test.ExpectEquality(t, out[len(out)-1], uint8(0x0d))
}

func TestTokenizeMultiWordKeyword(t *testing.T) {
	out := basiclang.Tokenize("10 GO TO 100\n")

	test.ExpectSuccess(t, bytes.Contains(out, []byte{0xec}))
	test.ExpectFailure(t, bytes.Contains(out, []byte("GO TO")))
}

func TestLineLayout(t *testing.T) {
	out := basiclang.Tokenize("10 CLS\n")

	// line number 10 BE; length LE includes the terminator
	test.ExpectEquality(t, out[0], uint8(0x00))
	test.ExpectEquality(t, out[1], uint8(0x0a))
	length := int(out[2]) | int(out[3])<<8
	test.ExpectEquality(t, length, len(out)-4)
	test.ExpectEquality(t, out[len(out)-1], uint8(0x0d))
}

func TestInjectAndExtract(t *testing.T) {
	mem := memory.NewMemory()

	text := "10 PRINT \"TEST\"\n20 LET A=10\n30 GOTO 10\n"
	test.ExpectSuccess(t, basiclang.LoadProgram(mem, text))

	got := basiclang.ExtractFromMemory(mem)

	for _, want := range []string{"PRINT", "LET", "GOTO", "10 ", "20 ", "30 "} {
		if !strings.Contains(got, want) {
			t.Errorf("extracted listing does not contain %q: %q", want, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	mem := memory.NewMemory()

	text := "10 FOR I=1 TO 10\n20 PRINT I\n30 NEXT I\n40 GO SUB 100\n100 RETURN\n"
	test.ExpectSuccess(t, basiclang.LoadProgram(mem, text))

	got := basiclang.ExtractFromMemory(mem)
	test.ExpectEquality(t, basiclang.Normalize(got), basiclang.Normalize(text))
}

func TestSystemVariables(t *testing.T) {
	mem := memory.NewMemory()

	program := basiclang.Tokenize("10 CLS\n")
	test.ExpectSuccess(t, basiclang.Inject(mem, program, basiclang.DefaultProgStart))

	prog := mem.DirectRead16(basiclang.SysProg)
	vars := mem.DirectRead16(basiclang.SysVars)
	eline := mem.DirectRead16(basiclang.SysELine)
	worksp := mem.DirectRead16(basiclang.SysWorksp)

	test.ExpectEquality(t, prog, uint16(basiclang.DefaultProgStart))
	test.ExpectEquality(t, vars, prog+uint16(len(program)))
	test.ExpectEquality(t, mem.DirectRead(vars), uint8(0x80))
	test.ExpectEquality(t, eline, vars+1)
	test.ExpectEquality(t, mem.DirectRead(eline), uint8(0x0d))
	test.ExpectEquality(t, mem.DirectRead(eline+1), uint8(0x80))
	test.ExpectEquality(t, worksp, eline+2)
	test.ExpectEquality(t, mem.DirectRead16(basiclang.SysStkBot), worksp)
	test.ExpectEquality(t, mem.DirectRead16(basiclang.SysStkEnd), worksp)
	test.ExpectEquality(t, mem.DirectRead16(basiclang.SysNxtLin), prog)
	test.ExpectEquality(t, mem.DirectRead16(basiclang.SysChAdd), prog)
	test.ExpectEquality(t, mem.DirectRead(basiclang.SysErrNr), uint8(0xff))
}

func TestTokenizeImmediate(t *testing.T) {
	// the trailing dictionary space is consumed so the argument follows
	// the token directly
	out := basiclang.TokenizeImmediate("PRINT 1")
	test.ExpectEquality(t, out[0], uint8(0xf5))
	test.ExpectEquality(t, out[1], uint8('1'))

	// word boundaries: PRINTX is not a keyword
	out = basiclang.TokenizeImmediate("PRINTX")
	test.ExpectFailure(t, bytes.Contains(out, []byte{0xf5}))
}

func TestStackSanity(t *testing.T) {
	mem := memory.NewMemory()
	sp := uint16(0x8000)

	// plausible stack
	for i := 0; i < 16; i++ {
		mem.DirectWrite16(sp+uint16(i*2), 0x8000+uint16(i))
	}
	test.ExpectSuccess(t, basiclang.StackSane(mem, sp))

	// four consecutive zero entries
	for i := 4; i < 8; i++ {
		mem.DirectWrite16(sp+uint16(i*2), 0)
	}
	test.ExpectFailure(t, basiclang.StackSane(mem, sp))

	// multiple 0xffff entries
	for i := 0; i < 16; i++ {
		mem.DirectWrite16(sp+uint16(i*2), 0x8000+uint16(i))
	}
	mem.DirectWrite16(sp+2, 0xffff)
	mem.DirectWrite16(sp+8, 0xffff)
	test.ExpectFailure(t, basiclang.StackSane(mem, sp))
}

func TestTRDOSCommandProgram(t *testing.T) {
	mem := memory.NewMemory()

	text := basiclang.TRDOSCommandProgram("FORMAT \"disk\"")
	test.ExpectSuccess(t, basiclang.LoadProgram(mem, text))

	got := basiclang.ExtractFromMemory(mem)
	test.ExpectSuccess(t, strings.Contains(got, "RANDOMIZE"))
	test.ExpectSuccess(t, strings.Contains(got, "USR"))
	test.ExpectSuccess(t, strings.Contains(got, "15616"))
	test.ExpectSuccess(t, strings.Contains(got, "FORMAT"))
}

func TestKeypressInjection(t *testing.T) {
	mem := memory.NewMemory()

	basiclang.InjectKeypress(mem, 'R')
	test.ExpectEquality(t, mem.DirectRead(basiclang.SysLastK), uint8('R'))
	test.ExpectEquality(t, mem.DirectRead(basiclang.SysFlags)&0x20, uint8(0x20))
}
