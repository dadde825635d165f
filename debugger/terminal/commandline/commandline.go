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

// Package commandline turns a list of command templates into a grammar
// that validates input and drives tab completion.
//
// A template is the command keyword followed by its arguments:
//
//	BREAK %address
//	WATCH (READ|WRITE) %address
//	LIST (BREAKS|TRACES)
//
// %address, %value and %file are placeholders for user supplied values;
// a parenthesised group is a choice of keywords; brackets mark an
// optional group.
package commandline

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/gopherzx/curated"
)

// error patterns for the commandline package.
const (
	ParserError     = "parser error: %v"
	ValidationError = "%v"
)

// node is one element of a command's argument grammar.
type node struct {
	// a literal keyword, or one of the placeholder classes "%address",
	// "%value", "%file", "%string"
	tag string

	// alternative keywords (for parenthesised groups)
	branches []string

	optional bool
}

// command is one parsed template.
type command struct {
	keyword string
	args    []node
	tmpl    string
}

// Commands is a parsed command grammar.
type Commands struct {
	commands []*command
	index    map[string]*command
}

// ParseCommandTemplate builds a grammar from the list of templates.
func ParseCommandTemplate(templates []string) (*Commands, error) {
	cmds := &Commands{index: make(map[string]*command)}

	for _, tmpl := range templates {
		tokens := strings.Fields(tmpl)
		if len(tokens) == 0 {
			return nil, curated.Errorf(ParserError, curated.Errorf("empty template"))
		}

		keyword := strings.ToUpper(tokens[0])
		if _, ok := cmds.index[keyword]; ok {
			return nil, curated.Errorf(ParserError, curated.Errorf("duplicate command (%s)", keyword))
		}

		cmd := &command{keyword: keyword, tmpl: tmpl}

		for _, tok := range tokens[1:] {
			n := node{}

			if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
				n.optional = true
				tok = tok[1 : len(tok)-1]
			}

			if strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")") {
				n.branches = strings.Split(strings.ToUpper(tok[1:len(tok)-1]), "|")
				n.tag = "()"
			} else if strings.HasPrefix(tok, "%") {
				switch tok {
				case "%address", "%value", "%file", "%string":
					n.tag = tok
				default:
					return nil, curated.Errorf(ParserError, curated.Errorf("unknown placeholder (%s)", tok))
				}
			} else {
				n.tag = strings.ToUpper(tok)
			}

			cmd.args = append(cmd.args, n)
		}

		cmds.commands = append(cmds.commands, cmd)
		cmds.index[keyword] = cmd
	}

	sort.Slice(cmds.commands, func(i, j int) bool {
		return cmds.commands[i].keyword < cmds.commands[j].keyword
	})

	return cmds, nil
}

// String lists the templates, one per line.
func (cmds *Commands) String() string {
	b := strings.Builder{}
	for _, c := range cmds.commands {
		b.WriteString(c.tmpl)
		b.WriteString("\n")
	}
	return b.String()
}

// matchNode checks an input token against a grammar node.
func matchNode(n node, tok string) error {
	up := strings.ToUpper(tok)

	if len(n.branches) > 0 {
		for _, b := range n.branches {
			if b == up {
				return nil
			}
		}
		return curated.Errorf("expected one of %s, got '%s'", strings.Join(n.branches, "|"), tok)
	}

	switch n.tag {
	case "%address", "%value":
		if _, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(tok, "$"), "0x"), 16, 16); err == nil {
			return nil
		}
		if _, err := strconv.ParseUint(tok, 10, 16); err == nil {
			return nil
		}
		return curated.Errorf("'%s' is not a number", tok)
	case "%file", "%string":
		return nil
	}

	if n.tag != up {
		return curated.Errorf("expected %s, got '%s'", n.tag, tok)
	}
	return nil
}

// Validate checks a tokenized input line against the grammar, returning
// the canonical keyword on success.
func (cmds *Commands) Validate(tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", curated.Errorf(ValidationError, curated.Errorf("no input"))
	}

	cmd, ok := cmds.index[strings.ToUpper(tokens[0])]
	if !ok {
		return "", curated.Errorf(ValidationError, curated.Errorf("unrecognised command (%s)", tokens[0]))
	}

	argIdx := 0
	for _, tok := range tokens[1:] {
		// skip over optional nodes that do not match
		for argIdx < len(cmd.args) {
			err := matchNode(cmd.args[argIdx], tok)
			if err == nil {
				break
			}
			if !cmd.args[argIdx].optional {
				return "", curated.Errorf(ValidationError, err)
			}
			argIdx++
		}
		if argIdx >= len(cmd.args) {
			return "", curated.Errorf(ValidationError, curated.Errorf("too many arguments for %s", cmd.keyword))
		}
		argIdx++
	}

	// every remaining node must be optional
	for ; argIdx < len(cmd.args); argIdx++ {
		if !cmd.args[argIdx].optional {
			return "", curated.Errorf(ValidationError, curated.Errorf("not enough arguments for %s", cmd.keyword))
		}
	}

	return cmd.keyword, nil
}

// Complete extends the last token of the input to the unambiguous prefix
// of the matching keywords. Implements the terminal.TabCompletion
// interface.
func (cmds *Commands) Complete(input string) string {
	trailingSpace := strings.HasSuffix(input, " ")
	tokens := strings.Fields(input)

	// candidate keywords for the position being completed
	var candidates []string
	var partial string

	if len(tokens) == 0 || (len(tokens) == 1 && !trailingSpace) {
		if len(tokens) == 1 {
			partial = strings.ToUpper(tokens[0])
		}
		for _, c := range cmds.commands {
			candidates = append(candidates, c.keyword)
		}
	} else {
		cmd, ok := cmds.index[strings.ToUpper(tokens[0])]
		if !ok {
			return input
		}

		argIdx := len(tokens) - 2
		if !trailingSpace {
			partial = strings.ToUpper(tokens[len(tokens)-1])
			argIdx = len(tokens) - 2
		} else {
			argIdx = len(tokens) - 1
		}
		if argIdx < 0 || argIdx >= len(cmd.args) {
			return input
		}

		n := cmd.args[argIdx]
		if len(n.branches) > 0 {
			candidates = n.branches
		} else if !strings.HasPrefix(n.tag, "%") && n.tag != "()" {
			candidates = []string{n.tag}
		} else {
			return input
		}
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, partial) {
			matches = append(matches, c)
		}
	}
	if len(matches) != 1 {
		return input
	}

	completed := matches[0] + " "
	if partial == "" {
		return input + completed
	}
	return input[:len(input)-len(partial)] + completed
}

// Visualise writes a graphviz rendering of the grammar structure, for
// documentation and for debugging template changes.
func (cmds *Commands) Visualise(w io.Writer) {
	memviz.Map(w, &cmds.commands)
}

// TokeniseInput splits an input line the way the validator expects:
// whitespace separated, with quoted strings kept whole.
func TokeniseInput(input string) []string {
	var tokens []string
	b := strings.Builder{}
	inQuote := false

	for _, r := range strings.TrimSpace(input) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			if b.Len() > 0 {
				tokens = append(tokens, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}

	return tokens
}

// helpful error for the debugger's help command.
func (cmds *Commands) Help(keyword string) string {
	if c, ok := cmds.index[strings.ToUpper(keyword)]; ok {
		return c.tmpl
	}
	return fmt.Sprintf("no such command (%s)", keyword)
}
