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

package debugger_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger"
	"github.com/jetsetilly/gopherzx/hardware/cpu"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/test"
)

func newMachine(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	mach, err := spectrum.NewSpectrum(spectrum.Config{Model: spectrum.Model48K}, nil)
	test.ExpectSuccess(t, err)
	mach.Random.ZeroSeed = true
	mach.Reset()
	return mach
}

func TestExecBreakpoint(t *testing.T) {
	mach := newMachine(t)

	bp := debugger.NewBreakpoints(mach)
	mach.AttachInstrumentation(bp)

	id, err := bp.Add(debugger.Breakpoint{
		Kind:    debugger.KindExec,
		Scope:   debugger.ScopeZ80,
		Address: 0x0003,
	})
	test.ExpectSuccess(t, err)

	mach.InitFrame()

	// NOPs from the empty ROM: the breakpoint fires when PC reaches 3
	for i := 0; i < 10; i++ {
		ts, brk := mach.Step()
		if brk != spectrum.NoBreakpoint {
			test.ExpectEquality(t, brk, id)
			test.ExpectEquality(t, mach.Z80.PC, uint16(0x0003))
			test.ExpectEquality(t, ts, 0)
			return
		}
	}
	t.Errorf("breakpoint never fired")
}

func TestWriteBreakpoint(t *testing.T) {
	mach := newMachine(t)

	bp := debugger.NewBreakpoints(mach)
	mach.AttachInstrumentation(bp)

	id, err := bp.Add(debugger.Breakpoint{
		Kind:    debugger.KindWrite,
		Scope:   debugger.ScopeZ80,
		Address: 0x8000,
	})
	test.ExpectSuccess(t, err)

	// LD A,$42 / LD ($8000),A
	mach.Mem.DirectWrite(0x0000, 0x3e)
	mach.Mem.DirectWrite(0x0001, 0x42)
	mach.Mem.DirectWrite(0x0002, 0x32)
	mach.Mem.DirectWrite(0x0003, 0x00)
	mach.Mem.DirectWrite(0x0004, 0x80)

	mach.InitFrame()
	_, brk := mach.Step()
	test.ExpectEquality(t, brk, spectrum.NoBreakpoint)

	_, brk = mach.Step()
	test.ExpectEquality(t, brk, id)

	// the write itself happened
	test.ExpectEquality(t, mach.Mem.DirectRead(0x8000), uint8(0x42))
}

func TestPageScopedBreakpoint(t *testing.T) {
	mach := newMachine(t)

	bp := debugger.NewBreakpoints(mach)
	mach.AttachInstrumentation(bp)

	// exec breakpoint on RAM page 0 offset 0, reachable through window 3
	id, err := bp.Add(debugger.Breakpoint{
		Kind:   debugger.KindExec,
		Scope:  debugger.ScopePhysical,
		Bank:   memory.ModeRAM,
		Page:   0,
		Offset: 0,
	})
	test.ExpectSuccess(t, err)

	mach.Mem.RAMPage(0)[0] = 0x00
	mach.Z80.PC = 0xc000
	test.ExpectEquality(t, bp.CheckExec(0xc000), id)

	// with a different page in the window the breakpoint does not fire
	test.ExpectSuccess(t, mach.Mem.SetRAMPage(3, 1))
	test.ExpectEquality(t, bp.CheckExec(0xc000), spectrum.NoBreakpoint)
}

func TestBreakpointConstraints(t *testing.T) {
	mach := newMachine(t)
	bp := debugger.NewBreakpoints(mach)

	// a page-scoped breakpoint on a page that does not exist
	_, err := bp.Add(debugger.Breakpoint{
		Kind:  debugger.KindExec,
		Scope: debugger.ScopePhysical,
		Bank:  memory.ModeRAM,
		Page:  memory.NumRAMPages,
	})
	test.ExpectSuccess(t, curated.Has(err, debugger.DebugConstraintViolation))

	// duplicates are rejected
	_, err = bp.Add(debugger.Breakpoint{Kind: debugger.KindExec, Address: 0x1234})
	test.ExpectSuccess(t, err)
	_, err = bp.Add(debugger.Breakpoint{Kind: debugger.KindExec, Address: 0x1234})
	test.ExpectFailure(t, err)
}

func TestBreakpointDropAndDisable(t *testing.T) {
	mach := newMachine(t)
	bp := debugger.NewBreakpoints(mach)

	id, err := bp.Add(debugger.Breakpoint{Kind: debugger.KindExec, Address: 0x1000})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, bp.CheckExec(0x1000), id)

	test.ExpectSuccess(t, bp.Enable(id, false))
	test.ExpectEquality(t, bp.CheckExec(0x1000), spectrum.NoBreakpoint)

	test.ExpectSuccess(t, bp.Enable(id, true))
	test.ExpectEquality(t, bp.CheckExec(0x1000), id)

	test.ExpectSuccess(t, bp.Drop(id))
	test.ExpectEquality(t, bp.CheckExec(0x1000), spectrum.NoBreakpoint)
	test.ExpectFailure(t, bp.Drop(id))
}

func TestPortBreakpoint(t *testing.T) {
	mach := newMachine(t)

	bp := debugger.NewBreakpoints(mach)
	mach.AttachInstrumentation(bp)

	id, err := bp.Add(debugger.Breakpoint{
		Kind:    debugger.KindPortOut,
		Scope:   debugger.ScopeZ80,
		Address: 0x00fe,
	})
	test.ExpectSuccess(t, err)

	// OUT ($FE),A with A=0 gives port address $00FE
	mach.Z80.A = 0x00
	mach.Mem.DirectWrite(0x0000, 0xd3)
	mach.Mem.DirectWrite(0x0001, 0xfe)

	mach.InitFrame()
	_, brk := mach.Step()
	test.ExpectEquality(t, brk, id)
}

// invariant: the call-flow histograms agree with the recorded edges.
func TestCallFlow(t *testing.T) {
	cf := debugger.NewCallFlow()

	flows := []cpu.Flow{
		{Valid: true, Kind: cpu.FlowCALL, Source: 0x8000, Target: 0x9000},
		{Valid: true, Kind: cpu.FlowRET, Source: 0x9005, Target: 0x8003},
		{Valid: true, Kind: cpu.FlowCALL, Source: 0x8000, Target: 0x9000},
		{Valid: true, Kind: cpu.FlowJR, Source: 0x8000, Target: 0x8010},
		{Valid: false},
	}
	for _, f := range flows {
		cf.Record(f)
	}

	entries := cf.Entries()
	test.ExpectEquality(t, len(entries), 3)

	// ordered by hits: the repeated CALL leads
	test.ExpectEquality(t, entries[0].Hits, uint64(2))
	test.ExpectEquality(t, entries[0].Kind, cpu.FlowCALL)

	test.ExpectEquality(t, cf.Sources[0x8000], uint64(3))
	test.ExpectEquality(t, cf.Targets[0x9000], uint64(2))

	// histogram totals equal the sum of edge hits
	var total uint64
	for _, e := range entries {
		total += e.Hits
	}
	var sources uint64
	for _, n := range cf.Sources {
		sources += n
	}
	test.ExpectEquality(t, total, sources)

	// dominant kind at 0x8000 is CALL (two of three events)
	test.ExpectEquality(t, cf.DominantKind(0x8000), cpu.FlowCALL)
	test.ExpectEquality(t, cf.DominantKind(0x4000), cpu.FlowNone)
}

func TestCountersFacade(t *testing.T) {
	mach := newMachine(t)
	mach.AttachInstrumentation(nil) // counters without breakpoints

	c := debugger.NewCounters(mach)

	// traffic inside and outside the screen range of window 1
	for i := 0; i < 5; i++ {
		mach.Mem.Counters.Count(mach.Mem, memory.AccessWrite, 0x4000)
		mach.Mem.Counters.Count(mach.Mem, memory.AccessWrite, 0x5b00)
	}

	test.ExpectEquality(t, c.WindowTotal(memory.AccessWrite, 1), uint64(10))
	test.ExpectEquality(t, c.WindowTotalExcludingScreen(memory.AccessWrite, 1), uint64(5))

	// other windows are unaffected by the exclusion
	test.ExpectEquality(t, c.WindowTotalExcludingScreen(memory.AccessWrite, 2), uint64(0))

	c.Reset()
	test.ExpectEquality(t, c.WindowTotal(memory.AccessWrite, 1), uint64(0))
}
