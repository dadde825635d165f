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

// Package debugger is the instrumentation layer of the emulation:
// breakpoints on execution, memory and port traffic; access counters;
// call-flow tracing; and the terminal that drives it all.
//
// The debugger owns the machine through the emulation package. While its
// input loop has control the machine is paused, and direct memory access
// is safe by the ownership rules described there.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger/terminal"
	"github.com/jetsetilly/gopherzx/debugger/terminal/commandline"
	"github.com/jetsetilly/gopherzx/disassembly"
	"github.com/jetsetilly/gopherzx/emulation"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/loaders"
	"github.com/jetsetilly/gopherzx/logger"
	"github.com/jetsetilly/gopherzx/notifications"
)

// the debugger's command templates.
var commandTemplates = []string{
	"BREAK %address",
	"WATCH (READ|WRITE|PORTIN|PORTOUT) %address",
	"DROP %value",
	"LIST (BREAKS|TRACES)",
	"STEP [FRAME]",
	"RUN",
	"REGISTERS",
	"DISASM [%address]",
	"MEM %address [%value]",
	"POKE %address %value",
	"COUNTERS [%value]",
	"TRACE [%address]",
	"INSERT %file",
	"GRAMMAR",
	"RESET",
	"LOG",
	"QUIT",
}

// Debugger is the interactive instrumentation layer.
type Debugger struct {
	emu  *emulation.Emulator
	mach *spectrum.Spectrum

	Breakpoints *Breakpoints
	Counters    *Counters
	CallFlow    *CallFlow

	term terminal.Terminal
	cmds *commandline.Commands

	running bool
}

// NewDebugger attaches the instrumentation layer to an emulator.
func NewDebugger(emu *emulation.Emulator, term terminal.Terminal) (*Debugger, error) {
	cmds, err := commandline.ParseCommandTemplate(commandTemplates)
	if err != nil {
		return nil, err
	}

	dbg := &Debugger{
		emu:         emu,
		mach:        emu.Machine,
		Counters:    NewCounters(emu.Machine),
		CallFlow:    NewCallFlow(),
		term:        term,
		cmds:        cmds,
	}
	dbg.Breakpoints = NewBreakpoints(dbg.mach)

	// the registry doubles as the instrumentation hooks
	dbg.mach.AttachInstrumentation(dbg.Breakpoints)

	term.RegisterTabCompletion(cmds)

	return dbg, nil
}

// Notify implements the notifications.Notify interface, so the debugger
// can be handed to the emulator as its notification target.
func (dbg *Debugger) Notify(notice notifications.Notice, payload interface{}) error {
	if notice == notifications.NotifyBreakpoint {
		dbg.term.TermPrintLine(terminal.StyleInstrument, fmt.Sprintf("breakpoint %v hit", payload))
	}
	return nil
}

// DirectRead reads machine memory without disturbing counters or
// breakpoints. Only call while the machine is paused.
func (dbg *Debugger) DirectRead(addr uint16) uint8 {
	return dbg.mach.Mem.DirectRead(addr)
}

// DirectWrite writes machine memory, patching ROM if a ROM page is
// visible. Only call while the machine is paused.
func (dbg *Debugger) DirectWrite(addr uint16, data uint8) {
	dbg.mach.Mem.DirectWrite(addr, data)
}

// InputLoop reads and dispatches commands until QUIT or end of input.
func (dbg *Debugger) InputLoop() error {
	if err := dbg.term.Initialise(); err != nil {
		return err
	}
	defer dbg.term.CleanUp()

	dbg.running = true
	buffer := make([]byte, 256)

	for dbg.running {
		prompt := terminal.Prompt{
			Content: fmt.Sprintf("[%04x] > ", dbg.mach.Z80.PC),
		}

		n, err := dbg.term.TermRead(buffer, prompt)
		if err != nil {
			if terminal.IsUserQuit(err) {
				return nil
			}
			if terminal.IsUserInterrupt(err) {
				continue
			}
			return err
		}

		input := strings.TrimSpace(string(buffer[:n]))
		if input == "" {
			// an empty line repeats a single step
			input = "STEP"
		}

		if err := dbg.dispatch(input); err != nil {
			dbg.term.TermPrintLine(terminal.StyleError, err.Error())
		}
	}

	return nil
}

func parseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "$"), "0x")
	if v, err := strconv.ParseUint(s, 16, 16); err == nil {
		return uint16(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, curated.Errorf("bad address (%s)", s)
	}
	return uint16(v), nil
}

func (dbg *Debugger) dispatch(input string) error {
	tokens := commandline.TokeniseInput(input)
	keyword, err := dbg.cmds.Validate(tokens)
	if err != nil {
		return err
	}

	switch keyword {
	case "QUIT":
		dbg.running = false

	case "RESET":
		return dbg.emu.Reset()

	case "STEP":
		if len(tokens) > 1 && strings.EqualFold(tokens[1], "FRAME") {
			if err := dbg.emu.StepFrame(); err != nil {
				return err
			}
		} else {
			if err := dbg.emu.StepInstruction(); err != nil {
				return err
			}
			dbg.CallFlow.Record(dbg.mach.Z80.LastFlow)
		}
		e := disassembly.Disassemble(dbg.mach.Mem, dbg.mach.Z80.PC)
		dbg.term.TermPrintLine(terminal.StyleCPUStep, e.String())

	case "RUN":
		return dbg.runUntilHalt()

	case "BREAK":
		addr, err := parseAddress(tokens[1])
		if err != nil {
			return err
		}
		id, err := dbg.Breakpoints.Add(Breakpoint{Kind: KindExec, Scope: ScopeZ80, Address: addr})
		if err != nil {
			return err
		}
		dbg.term.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("breakpoint %d at %04x", id, addr))

	case "WATCH":
		addr, err := parseAddress(tokens[2])
		if err != nil {
			return err
		}
		var kind BreakpointKind
		switch strings.ToUpper(tokens[1]) {
		case "READ":
			kind = KindRead
		case "WRITE":
			kind = KindWrite
		case "PORTIN":
			kind = KindPortIn
		case "PORTOUT":
			kind = KindPortOut
		}
		id, err := dbg.Breakpoints.Add(Breakpoint{Kind: kind, Scope: ScopeZ80, Address: addr})
		if err != nil {
			return err
		}
		dbg.term.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("watch %d on %04x", id, addr))

	case "DROP":
		id, _ := strconv.Atoi(tokens[1])
		if !dbg.Breakpoints.Drop(id) {
			return curated.Errorf("no breakpoint with ID %d", id)
		}

	case "LIST":
		switch strings.ToUpper(tokens[1]) {
		case "BREAKS":
			l := dbg.Breakpoints.List()
			if len(l) == 0 {
				dbg.term.TermPrintLine(terminal.StyleFeedback, "no breakpoints")
			}
			for _, b := range l {
				dbg.term.TermPrintLine(terminal.StyleFeedback, b.String())
			}
		case "TRACES":
			for i, e := range dbg.CallFlow.Entries() {
				if i >= 20 {
					break
				}
				dbg.term.TermPrintLine(terminal.StyleFeedback,
					fmt.Sprintf("%04x -> %04x %-5s x%d", e.Source, e.Target, e.Kind, e.Hits))
			}
		}

	case "REGISTERS":
		dbg.term.TermPrintLine(terminal.StyleInstrument, dbg.mach.Z80.String())

	case "DISASM":
		addr := dbg.mach.Z80.PC
		if len(tokens) > 1 {
			if addr, err = parseAddress(tokens[1]); err != nil {
				return err
			}
		}
		for _, e := range disassembly.DisassembleRange(dbg.mach.Mem, addr, 32) {
			dbg.term.TermPrintLine(terminal.StyleFeedback, e.String())
		}

	case "MEM":
		addr, err := parseAddress(tokens[1])
		if err != nil {
			return err
		}
		length := 64
		if len(tokens) > 2 {
			if l, err := strconv.Atoi(tokens[2]); err == nil {
				length = l
			}
		}
		dbg.printMemory(addr, length)

	case "POKE":
		addr, err := parseAddress(tokens[1])
		if err != nil {
			return err
		}
		v, err := strconv.ParseUint(tokens[2], 0, 8)
		if err != nil {
			return curated.Errorf("bad value (%s)", tokens[2])
		}
		dbg.DirectWrite(addr, uint8(v))

	case "COUNTERS":
		window := -1
		if len(tokens) > 1 {
			window, _ = strconv.Atoi(tokens[1])
		}
		dbg.printCounters(window)

	case "TRACE":
		if len(tokens) > 1 {
			addr, err := parseAddress(tokens[1])
			if err != nil {
				return err
			}
			dbg.term.TermPrintLine(terminal.StyleFeedback,
				fmt.Sprintf("%04x: dominant %s, %d out, %d in",
					addr, dbg.CallFlow.DominantKind(addr),
					dbg.CallFlow.Sources[addr], dbg.CallFlow.Targets[addr]))
		} else {
			dbg.term.TermPrintLine(terminal.StyleFeedback,
				fmt.Sprintf("%d control flow edges recorded", len(dbg.CallFlow.Entries())))
		}

	case "INSERT":
		if err := loaders.Load(dbg.mach, tokens[1]); err != nil {
			return err
		}
		dbg.term.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("inserted %s", tokens[1]))

	case "GRAMMAR":
		b := strings.Builder{}
		dbg.cmds.Visualise(&b)
		dbg.term.TermPrintLine(terminal.StyleHelp, b.String())

	case "LOG":
		w := &termWriter{term: dbg.term}
		logger.Tail(w, 20)
	}

	return nil
}

// runUntilHalt steps the machine, recording call flow, until a breakpoint
// fires.
func (dbg *Debugger) runUntilHalt() error {
	for {
		if dbg.mach.EndOfFrame() {
			dbg.mach.FinishFrame()
			dbg.mach.InitFrame()
		}

		_, brk := dbg.mach.Step()
		dbg.CallFlow.Record(dbg.mach.Z80.LastFlow)

		if brk != spectrum.NoBreakpoint {
			dbg.term.TermPrintLine(terminal.StyleInstrument, fmt.Sprintf("breakpoint %d hit at %04x", brk, dbg.mach.Z80.PC))
			return nil
		}
	}
}

func (dbg *Debugger) printMemory(addr uint16, length int) {
	for length > 0 {
		b := strings.Builder{}
		b.WriteString(fmt.Sprintf("%04x  ", addr))
		for i := 0; i < 16 && length > 0; i++ {
			b.WriteString(fmt.Sprintf("%02x ", dbg.DirectRead(addr)))
			addr++
			length--
		}
		dbg.term.TermPrintLine(terminal.StyleFeedback, b.String())
	}
}

func (dbg *Debugger) printCounters(window int) {
	kinds := []memory.AccessKind{memory.AccessRead, memory.AccessWrite, memory.AccessExecute}

	if window >= 0 && window < memory.NumWindows {
		for _, k := range kinds {
			dbg.term.TermPrintLine(terminal.StyleFeedback,
				fmt.Sprintf("window %d %-7s %10d (%d excluding screen)",
					window, k, dbg.Counters.WindowTotal(k, window),
					dbg.Counters.WindowTotalExcludingScreen(k, window)))
		}
		return
	}

	for w := 0; w < memory.NumWindows; w++ {
		dbg.term.TermPrintLine(terminal.StyleFeedback,
			fmt.Sprintf("window %d: r=%d w=%d x=%d", w,
				dbg.Counters.WindowTotal(memory.AccessRead, w),
				dbg.Counters.WindowTotal(memory.AccessWrite, w),
				dbg.Counters.WindowTotal(memory.AccessExecute, w)))
	}
}

// termWriter adapts the terminal to an io.Writer for the log.
type termWriter struct {
	term terminal.Terminal
}

func (w *termWriter) Write(p []byte) (int, error) {
	w.term.TermPrintLine(terminal.StyleLog, strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
