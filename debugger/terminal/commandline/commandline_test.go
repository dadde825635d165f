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

package commandline_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gopherzx/debugger/terminal/commandline"
	"github.com/jetsetilly/gopherzx/test"
)

var templates = []string{
	"BREAK %address",
	"WATCH (READ|WRITE) %address",
	"LIST (BREAKS|TRACES)",
	"STEP [FRAME]",
	"QUIT",
}

func TestValidation(t *testing.T) {
	cmds, err := commandline.ParseCommandTemplate(templates)
	test.ExpectSuccess(t, err)

	kw, err := cmds.Validate([]string{"break", "8000"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, kw, "BREAK")

	_, err = cmds.Validate([]string{"break"})
	test.ExpectFailure(t, err)

	_, err = cmds.Validate([]string{"watch", "read", "4000"})
	test.ExpectSuccess(t, err)

	_, err = cmds.Validate([]string{"watch", "flibble", "4000"})
	test.ExpectFailure(t, err)

	// optional argument both present and absent
	_, err = cmds.Validate([]string{"step"})
	test.ExpectSuccess(t, err)
	_, err = cmds.Validate([]string{"step", "frame"})
	test.ExpectSuccess(t, err)

	_, err = cmds.Validate([]string{"nonsense"})
	test.ExpectFailure(t, err)
}

func TestCompletion(t *testing.T) {
	cmds, err := commandline.ParseCommandTemplate(templates)
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, cmds.Complete("qu"), "QUIT ")
	test.ExpectEquality(t, cmds.Complete("watch re"), "watch READ ")

	// ambiguous prefixes stay as they are
	amb, err := commandline.ParseCommandTemplate([]string{"STEP", "STICK"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, amb.Complete("st"), "st")
	test.ExpectEquality(t, amb.Complete("ste"), "STEP ")
}

func TestDuplicateRejected(t *testing.T) {
	_, err := commandline.ParseCommandTemplate([]string{"QUIT", "QUIT"})
	test.ExpectFailure(t, err)
}

func TestTokenise(t *testing.T) {
	toks := commandline.TokeniseInput(`insert "my file.tap" 2`)
	test.ExpectEquality(t, len(toks), 3)
	test.ExpectEquality(t, toks[1], "my file.tap")
}

func TestVisualise(t *testing.T) {
	cmds, err := commandline.ParseCommandTemplate(templates)
	test.ExpectSuccess(t, err)

	b := strings.Builder{}
	cmds.Visualise(&b)

	// a graphviz digraph of some substance
	test.ExpectSuccess(t, strings.HasPrefix(b.String(), "digraph"))
	test.ExpectSuccess(t, len(b.String()) > 100)
}
