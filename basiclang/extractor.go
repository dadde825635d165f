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
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherzx/hardware/memory"
)

// Extract reverses tokenization: the byte range of a stored BASIC program
// comes back as listing text, one line per text line.
//
// Hidden number records (the 0x0e marker and five bytes of mantissa) are
// skipped: the ASCII digits that precede them carry the value. Unknown
// control bytes are ignored.
func Extract(data []uint8) string {
	b := strings.Builder{}
	offset := 0

	for offset+4 <= len(data) {
		lineNumber := int(data[offset])<<8 | int(data[offset+1])
		lineLength := int(data[offset+2]) | int(data[offset+3])<<8
		offset += 4

		lineEnd := offset + lineLength
		if lineEnd > len(data) {
			// a malformed length runs to the end of the buffer
			lineEnd = len(data)
		}

		b.WriteString(fmt.Sprintf("%d", lineNumber))

		// a separator space unless the first token supplies its own
		needSpace := true
		if offset < lineEnd {
			first := data[offset]
			if first >= TokenBase && strings.HasPrefix(TokenString(first), " ") {
				needSpace = false
			} else if first == ' ' {
				needSpace = false
			}
		}
		if needSpace {
			b.WriteString(" ")
		}

		for i := offset; i < lineEnd; i++ {
			c := data[i]

			if c == LineEnd {
				break
			}

			switch {
			case c >= TokenBase:
				b.WriteString(TokenString(c))
			case c >= 0x20 && c <= 0x7e:
				b.WriteByte(c)
				// a token straight after a closing quote needs separating
				if c == '"' && i+1 < lineEnd && data[i+1] >= TokenBase && data[i+1] != LineEnd {
					b.WriteString(" ")
				}
			case c == NumberMarker:
				if i+5 < lineEnd {
					i += 5
				}
			}
		}

		b.WriteString("\n")
		offset = lineEnd
	}

	return b.String()
}

// ExtractFromMemory reads the program between PROG and VARS out of the
// machine and lists it.
func ExtractFromMemory(mem *memory.Memory) string {
	prog := mem.DirectRead16(SysProg)
	vars := mem.DirectRead16(SysVars)

	if vars < prog || int(vars)-int(prog) > 0xc000 {
		return ""
	}

	data := make([]uint8, vars-prog)
	for i := range data {
		data[i] = mem.DirectRead(prog + uint16(i))
	}

	return Extract(data)
}

// Normalize strips the spacing differences that tokenization introduces,
// for comparing a listing against the text it was tokenized from: runs of
// whitespace collapse to one space, line edges are trimmed.
func Normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
