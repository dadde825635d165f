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

// Package terminal defines the debugger's terminal abstraction. Two
// implementations exist: plainterm, which works over any reader/writer
// pair, and colorterm, which takes the controlling terminal into raw mode
// for line editing, history and tab completion.
package terminal

import (
	"github.com/jetsetilly/gopherzx/curated"
)

// sentinel errors for input.
const (
	// the user pressed ctrl-c
	UserInterrupt = "user interrupt"

	// the input stream has closed
	UserQuit = "user quit"
)

// Style categorises terminal output so that implementations can decorate
// it.
type Style int

// List of styles.
const (
	StyleInput Style = iota
	StyleEcho
	StyleHelp
	StyleFeedback
	StyleCPUStep
	StyleInstrument
	StyleError
	StyleLog
)

// Prompt is presented before input is read.
type Prompt struct {
	Content string
}

// TabCompletion is implemented by whatever can complete a partial command.
type TabCompletion interface {
	Complete(input string) string
}

// Input defines the operations required to receive a command line.
type Input interface {
	// TermRead blocks until a line is available, returning the number of
	// bytes placed in the buffer. Returns UserInterrupt or UserQuit as
	// curated errors when the session should end
	TermRead(buffer []byte, prompt Prompt) (int, error)
}

// Output defines the operations required to display text.
type Output interface {
	TermPrintLine(style Style, s string)
}

// Terminal is the complete interface.
type Terminal interface {
	Input
	Output

	// Initialise and restore the underlying device
	Initialise() error
	CleanUp()

	// RegisterTabCompletion attaches a completer. may be a no-op
	RegisterTabCompletion(TabCompletion)
}

// IsUserQuit returns true if the error signals the end of the session.
func IsUserQuit(err error) bool {
	return curated.Is(err, UserQuit)
}

// IsUserInterrupt returns true if the error is a ctrl-c.
func IsUserInterrupt(err error) bool {
	return curated.Is(err, UserInterrupt)
}
