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

// Package easyterm is a wrapper around pkg/term. It handles the
// raw/restore dance of the controlling terminal and byte-level reads;
// anything more sophisticated is the responsibility of the client
// package (see colorterm).
package easyterm

import (
	"github.com/pkg/term"
)

// key codes returned by ReadRune for the sequences the debugger cares
// about.
const (
	KeyInterrupt  = 3  // ctrl-c
	KeyEndOfFile  = 4  // ctrl-d
	KeyTab        = 9
	KeyCarriage   = 13
	KeyEsc        = 27
	KeyBackspace  = 127
	KeyCursorUp   = -1
	KeyCursorDown = -2
)

// EasyTerm is a raw-mode terminal.
type EasyTerm struct {
	tty *term.Term
}

// Initialise opens the controlling terminal.
func (et *EasyTerm) Initialise(device string) error {
	tty, err := term.Open(device)
	if err != nil {
		return err
	}
	et.tty = tty
	return nil
}

// CleanUp restores the terminal attributes.
func (et *EasyTerm) CleanUp() {
	if et.tty != nil {
		_ = et.tty.Restore()
		_ = et.tty.Close()
		et.tty = nil
	}
}

// RawMode puts the terminal into raw mode for the duration of a read.
func (et *EasyTerm) RawMode() error {
	return term.RawMode(et.tty)
}

// CanonicalMode restores cooked input.
func (et *EasyTerm) CanonicalMode() error {
	return et.tty.Restore()
}

// ReadRune reads one key, decoding the escape sequences for the cursor
// keys into the negative Key values above.
func (et *EasyTerm) ReadRune() (int, error) {
	b := make([]byte, 1)
	if _, err := et.tty.Read(b); err != nil {
		return 0, err
	}

	if b[0] != KeyEsc {
		return int(b[0]), nil
	}

	// escape sequence: expect '[' then the direction byte. anything else
	// is returned as a bare escape
	seq := make([]byte, 2)
	if n, err := et.tty.Read(seq); err != nil || n < 2 || seq[0] != '[' {
		return KeyEsc, nil
	}

	switch seq[1] {
	case 'A':
		return KeyCursorUp, nil
	case 'B':
		return KeyCursorDown, nil
	}
	return KeyEsc, nil
}

// Write sends bytes to the terminal.
func (et *EasyTerm) Write(p []byte) (int, error) {
	return et.tty.Write(p)
}

// WriteString is a convenience for Write.
func (et *EasyTerm) WriteString(s string) {
	_, _ = et.tty.Write([]byte(s))
}
