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

// Package colorterm implements the terminal interface against the
// controlling terminal in raw mode: line editing, input history, ANSI
// colour per output style and tab completion.
package colorterm

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger/terminal"
	"github.com/jetsetilly/gopherzx/debugger/terminal/colorterm/easyterm"
)

// ANSI pens per output style.
var pens = map[terminal.Style]string{
	terminal.StyleInput:      "",
	terminal.StyleEcho:       "\033[90m",
	terminal.StyleHelp:       "\033[36m",
	terminal.StyleFeedback:   "",
	terminal.StyleCPUStep:    "\033[33m",
	terminal.StyleInstrument: "\033[35m",
	terminal.StyleError:      "\033[31m",
	terminal.StyleLog:        "\033[90m",
}

const penReset = "\033[0m"

// ColorTerminal implements the terminal.Terminal interface.
type ColorTerminal struct {
	easyterm.EasyTerm

	history    []string
	completion terminal.TabCompletion
}

// NewTerminal is the preferred method of initialisation for the
// ColorTerminal type.
func NewTerminal() *ColorTerminal {
	return &ColorTerminal{}
}

// Initialise implements the terminal.Terminal interface.
func (ct *ColorTerminal) Initialise() error {
	return ct.EasyTerm.Initialise("/dev/tty")
}

// CleanUp implements the terminal.Terminal interface.
func (ct *ColorTerminal) CleanUp() {
	ct.EasyTerm.CleanUp()
}

// RegisterTabCompletion implements the terminal.Terminal interface.
func (ct *ColorTerminal) RegisterTabCompletion(tc terminal.TabCompletion) {
	ct.completion = tc
}

// TermPrintLine implements the terminal.Output interface.
func (ct *ColorTerminal) TermPrintLine(style terminal.Style, s string) {
	if s == "" {
		return
	}
	ct.WriteString(pens[style])
	ct.WriteString(s)
	ct.WriteString(penReset)
	ct.WriteString("\r\n")
}

// TermRead implements the terminal.Input interface: a raw-mode line editor
// with history and completion.
func (ct *ColorTerminal) TermRead(buffer []byte, prompt terminal.Prompt) (int, error) {
	if err := ct.RawMode(); err != nil {
		return 0, err
	}
	defer ct.CanonicalMode()

	input := strings.Builder{}
	historyIdx := len(ct.history)

	redraw := func() {
		ct.WriteString("\r\033[2K")
		ct.WriteString(prompt.Content)
		ct.WriteString(input.String())
	}
	redraw()

	for {
		r, err := ct.ReadRune()
		if err != nil {
			return 0, curated.Errorf(terminal.UserQuit)
		}

		switch r {
		case easyterm.KeyInterrupt:
			ct.WriteString("\r\n")
			return 0, curated.Errorf(terminal.UserInterrupt)

		case easyterm.KeyEndOfFile:
			ct.WriteString("\r\n")
			return 0, curated.Errorf(terminal.UserQuit)

		case easyterm.KeyCarriage:
			ct.WriteString("\r\n")
			line := input.String()
			if strings.TrimSpace(line) != "" {
				ct.history = append(ct.history, line)
			}
			n := copy(buffer, line+"\n")
			return n, nil

		case easyterm.KeyBackspace:
			s := input.String()
			if len(s) > 0 {
				input.Reset()
				input.WriteString(s[:len(s)-1])
				redraw()
			}

		case easyterm.KeyTab:
			if ct.completion != nil {
				completed := ct.completion.Complete(input.String())
				input.Reset()
				input.WriteString(completed)
				redraw()
			}

		case easyterm.KeyCursorUp:
			if historyIdx > 0 {
				historyIdx--
				input.Reset()
				input.WriteString(ct.history[historyIdx])
				redraw()
			}

		case easyterm.KeyCursorDown:
			if historyIdx < len(ct.history) {
				historyIdx++
				input.Reset()
				if historyIdx < len(ct.history) {
					input.WriteString(ct.history[historyIdx])
				}
				redraw()
			}

		default:
			if r >= 32 && r < 127 {
				fmt.Fprintf(&input, "%c", rune(r))
				redraw()
			}
		}
	}
}
