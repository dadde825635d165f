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

// Package plainterm implements the terminal interface over plain reader
// and writer streams: no line editing, no colour. It is the terminal of
// last resort, and the one tests drive programmatically.
package plainterm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger/terminal"
)

// PlainTerminal implements the terminal.Terminal interface.
type PlainTerminal struct {
	input  *bufio.Reader
	output io.Writer
}

// NewTerminal is the preferred method of initialisation for the
// PlainTerminal type. Nil arguments select stdin/stdout.
func NewTerminal(input io.Reader, output io.Writer) *PlainTerminal {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	return &PlainTerminal{
		input:  bufio.NewReader(input),
		output: output,
	}
}

// Initialise implements the terminal.Terminal interface.
func (pt *PlainTerminal) Initialise() error {
	return nil
}

// CleanUp implements the terminal.Terminal interface.
func (pt *PlainTerminal) CleanUp() {
}

// RegisterTabCompletion implements the terminal.Terminal interface. Tab
// completion is not possible on a plain terminal.
func (pt *PlainTerminal) RegisterTabCompletion(_ terminal.TabCompletion) {
}

// TermRead implements the terminal.Input interface.
func (pt *PlainTerminal) TermRead(buffer []byte, prompt terminal.Prompt) (int, error) {
	fmt.Fprint(pt.output, prompt.Content)

	line, err := pt.input.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return 0, curated.Errorf(terminal.UserQuit)
		}
		return 0, err
	}

	n := copy(buffer, line)
	return n, nil
}

// TermPrintLine implements the terminal.Output interface.
func (pt *PlainTerminal) TermPrintLine(style terminal.Style, s string) {
	if s == "" {
		return
	}
	switch style {
	case terminal.StyleError:
		fmt.Fprintf(pt.output, "* %s\n", s)
	default:
		fmt.Fprintf(pt.output, "%s\n", s)
	}
}
