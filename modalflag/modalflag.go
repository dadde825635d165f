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

// Package modalflag is a wrapper around the flag package of the standard
// library for programs whose command line is divided into modes:
//
//	gopherzx [flags] MODE [mode flags] ...
//
// Each call to Parse() consumes the flags of the current mode and, if sub
// modes have been declared, selects the next one from the first remaining
// argument. The client loops, declaring the flags of each mode in turn.
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ParseResult is returned by Parse.
type ParseResult int

// List of parse results.
const (
	// parsing succeeded; the client should continue with the next mode
	ParseContinue ParseResult = iota

	// the user asked for help. it has been printed; the client should
	// exit without error
	ParseHelp

	// parsing failed
	ParseError
)

// Modes is the command line being parsed.
type Modes struct {
	// where help output is written
	Output io.Writer

	args     []string
	flags    *flag.FlagSet
	subModes []string

	path []string
	mode string
}

// NewArgs (re)starts parsing with a new argument list. Called once with
// os.Args[1:] before the first Parse() and implicitly between modes.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.subModes = nil
}

// NewMode begins flag declaration for the mode selected by the previous
// Parse().
func (md *Modes) NewMode() {
	md.NewArgs(md.args)
}

// AddBool declares a boolean flag for the current mode.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddString declares a string flag for the current mode.
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddInt declares an integer flag for the current mode.
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddDuration declares a duration flag for the current mode.
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddSubModes declares the modes selectable after the current mode's
// flags.
func (md *Modes) AddSubModes(modes ...string) {
	for _, m := range modes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
	sort.Strings(md.subModes)
}

// Parse the current mode's portion of the command line.
func (md *Modes) Parse() (ParseResult, error) {
	err := md.flags.Parse(md.args)
	if err != nil {
		if err == flag.ErrHelp {
			md.printHelp()
			return ParseHelp, nil
		}
		return ParseError, err
	}

	md.args = md.flags.Args()

	// sub mode selection from the first remaining argument
	if len(md.subModes) > 0 && len(md.args) > 0 {
		candidate := strings.ToUpper(md.args[0])
		for _, m := range md.subModes {
			if m == candidate {
				if md.mode != "" {
					md.path = append(md.path, md.mode)
				}
				md.mode = m
				md.args = md.args[1:]
				return ParseContinue, nil
			}
		}
		return ParseError, fmt.Errorf("unrecognised mode (%s)", md.args[0])
	}

	return ParseContinue, nil
}

func (md *Modes) printHelp() {
	numFlags := 0
	md.flags.VisitAll(func(_ *flag.Flag) { numFlags++ })

	if numFlags == 0 && len(md.subModes) == 0 {
		fmt.Fprintln(md.Output, "No help available")
		return
	}

	if numFlags > 0 {
		fmt.Fprintln(md.Output, "Usage:")
		md.flags.SetOutput(md.Output)
		md.flags.PrintDefaults()
		md.flags.SetOutput(io.Discard)
	}

	if len(md.subModes) > 0 {
		fmt.Fprintf(md.Output, "Sub-modes: %s\n", strings.Join(md.subModes, " "))
	}
}

// Mode returns the mode selected by the most recent Parse().
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the modes already passed through, separated by spaces.
func (md *Modes) Path() string {
	return strings.Join(md.path, " ")
}

// RemainingArgs returns the arguments left after flag and mode
// consumption.
func (md *Modes) RemainingArgs() []string {
	return md.args
}

// GetArg returns the indexed remaining argument, or the empty string.
func (md *Modes) GetArg(i int) string {
	if i < 0 || i >= len(md.args) {
		return ""
	}
	return md.args[i]
}
