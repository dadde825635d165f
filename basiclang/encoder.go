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

package basiclang

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/memory"
)

// error patterns for the basiclang package.
const (
	EncodeError = "basic encode error: %v"
)

// the default program start: immediately after the 48K system variables
// and the channel information area.
const DefaultProgStart = 0x5ccb

// Tokenize converts a plain text BASIC program (one numbered line per text
// line) into the tokenized in-memory form.
func Tokenize(text string) []uint8 {
	var out []uint8

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// the line number leads
		pos := 0
		for pos < len(line) && unicode.IsSpace(rune(line[pos])) {
			pos++
		}
		numEnd := pos
		for numEnd < len(line) && line[numEnd] >= '0' && line[numEnd] <= '9' {
			numEnd++
		}
		if numEnd == pos {
			// lines without numbers are skipped
			continue
		}

		num, err := strconv.Atoi(line[pos:numEnd])
		if err != nil || num > 9999 {
			continue
		}

		out = append(out, TokenizeLine(uint16(num), line[numEnd:])...)
	}

	return out
}

// TokenizeLine produces the stored form of one program line: line number
// (big-endian), line length (little-endian, including the terminator), the
// tokenized text, and the 0x0d terminator.
func TokenizeLine(lineNumber uint16, text string) []uint8 {
	body := replaceKeywords(text)

	out := make([]uint8, 0, len(body)+5)
	out = append(out, uint8(lineNumber>>8), uint8(lineNumber))

	length := len(body) + 1
	out = append(out, uint8(length), uint8(length>>8))

	out = append(out, body...)
	out = append(out, LineEnd)

	return out
}

// replaceKeywords tokenizes the body of a numbered program line. The
// dictionary entries carry their padding spaces, so keywords match with
// the spacing the ROM's own listing produces. String literals pass through
// untouched.
func replaceKeywords(text string) []uint8 {
	var out []uint8
	upper := strings.ToUpper(text)
	pos := 0
	inString := false

	for pos < len(upper) {
		if upper[pos] == '"' {
			out = append(out, text[pos])
			inString = !inString
			pos++
			continue
		}
		if inString {
			out = append(out, text[pos])
			pos++
			continue
		}

		matched := false
		for _, k := range keywords {
			if strings.HasPrefix(upper[pos:], k.text) {
				out = append(out, k.token)
				pos += len(k.text)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, text[pos])
			pos++
		}
	}

	return out
}

// TokenizeImmediate tokenizes a command as typed at the editor prompt.
// Keywords are matched trimmed of their padding, with word boundary
// checks; a trailing space in the dictionary entry consumes one following
// space of the input so that "PRINT 1" becomes token-then-digit.
func TokenizeImmediate(command string) []uint8 {
	var out []uint8
	upper := strings.ToUpper(command)
	pos := 0
	inString := false

	isWordChar := func(c byte) bool {
		return c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '$'
	}

	for pos < len(upper) {
		if upper[pos] == '"' {
			out = append(out, command[pos])
			inString = !inString
			pos++
			continue
		}
		if inString {
			out = append(out, command[pos])
			pos++
			continue
		}

		matched := false
		for _, k := range keywords {
			trimmed := strings.TrimSpace(k.text)
			if !strings.HasPrefix(upper[pos:], trimmed) {
				continue
			}

			end := pos + len(trimmed)
			wordStart := pos == 0 || !isWordChar(upper[pos-1])
			wordEnd := end >= len(upper) || !isWordChar(upper[end])
			if !wordStart || !wordEnd {
				continue
			}

			out = append(out, k.token)
			pos = end
			if strings.HasSuffix(k.text, " ") && pos < len(upper) && upper[pos] == ' ' {
				pos++
			}
			matched = true
			break
		}
		if !matched {
			out = append(out, command[pos])
			pos++
		}
	}

	return out
}

// Inject writes a tokenized program into memory at progStart and updates
// the 48K system variables so the interpreter sees a consistent machine:
// VARS ends the program with its 0x80 sentinel, E_LINE holds an empty edit
// buffer and the calculator stack collapses to just beyond it.
func Inject(mem *memory.Memory, program []uint8, progStart uint16) error {
	if len(program) == 0 {
		return curated.Errorf(EncodeError, curated.Errorf("empty program"))
	}
	if len(program) > 0xc000 {
		return curated.Errorf(EncodeError, curated.Errorf("program too large (%d bytes)", len(program)))
	}

	for i, b := range program {
		mem.DirectWrite(progStart+uint16(i), b)
	}

	progEnd := progStart + uint16(len(program))

	mem.DirectWrite16(SysProg, progStart)

	mem.DirectWrite(progEnd, 0x80)
	mem.DirectWrite16(SysVars, progEnd)

	eLine := progEnd + 1
	mem.DirectWrite16(SysELine, eLine)
	mem.DirectWrite(eLine, LineEnd)
	mem.DirectWrite(eLine+1, 0x80)

	worksp := eLine + 2
	mem.DirectWrite16(SysWorksp, worksp)
	mem.DirectWrite16(SysStkBot, worksp)
	mem.DirectWrite16(SysStkEnd, worksp)

	mem.DirectWrite16(SysNxtLin, progStart)
	mem.DirectWrite16(SysChAdd, progStart)

	mem.DirectWrite(SysErrNr, 0xff)

	return nil
}

// LoadProgram tokenizes and injects in one call.
func LoadProgram(mem *memory.Memory, text string) error {
	program := Tokenize(text)
	if len(program) == 0 {
		return curated.Errorf(EncodeError, curated.Errorf("no numbered lines in program text"))
	}
	return Inject(mem, program, DefaultProgStart)
}

// TRDOSCommandProgram builds the one line program that hands a command to
// TR-DOS through its BASIC entry point: RANDOMIZE USR 15616 enters the DOS
// and the remainder of the line is the command text. Tests drive FORMAT
// and CAT this way.
func TRDOSCommandProgram(command string) string {
	return "10 RANDOMIZE USR 15616: REM: " + command + "\n"
}

// InjectKeypress places a key code in LAST_K and flags it new, which is
// how the ROM's keyboard routines deliver a key to the editor. The matrix
// is bypassed entirely.
func InjectKeypress(mem *memory.Memory, keyCode uint8) {
	mem.DirectWrite(SysLastK, keyCode)
	mem.DirectWrite(SysFlags, mem.DirectRead(SysFlags)|0x20)
}

// InjectEnter delivers the ENTER key.
func InjectEnter(mem *memory.Memory) {
	InjectKeypress(mem, 0x0d)
}

// InjectText delivers a string one keypress at a time. Note that the ROM
// consumes LAST_K once per interrupt, so callers must run frames between
// characters; this function is a convenience for tests that do so.
func InjectText(mem *memory.Memory, text string, runFrame func()) {
	for _, c := range []byte(text) {
		InjectKeypress(mem, c)
		if runFrame != nil {
			runFrame()
		}
	}
}
