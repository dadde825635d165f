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

package debugger

import (
	"fmt"
	"sync/atomic"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// error patterns for the debugger package.
const (
	DebugConstraintViolation = "debug constraint violation: %v"
	BreakpointExists         = "breakpoint already exists (%s)"
)

// BreakpointKind is the access type a breakpoint matches.
type BreakpointKind int

// List of breakpoint kinds.
const (
	KindExec BreakpointKind = iota
	KindRead
	KindWrite
	KindPortIn
	KindPortOut
)

func (k BreakpointKind) String() string {
	switch k {
	case KindExec:
		return "exec"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindPortIn:
		return "port-in"
	case KindPortOut:
		return "port-out"
	}
	return ""
}

// BreakpointScope says how the breakpoint address is interpreted.
type BreakpointScope int

// List of breakpoint scopes.
const (
	// the breakpoint fires whenever the Z80 address matches, regardless of
	// what is paged in
	ScopeZ80 BreakpointScope = iota

	// the breakpoint fires only when the matching Z80 address currently
	// resolves to a specific physical page
	ScopePhysical
)

// Breakpoint is a single breakpoint definition.
type Breakpoint struct {
	ID      int
	Kind    BreakpointKind
	Scope   BreakpointScope
	Enabled bool

	// the Z80 address matched against. for port breakpoints this is the
	// port address
	Address uint16

	// physical scope qualification
	Bank   memory.PageMode
	Page   int
	Offset uint16
}

func (b Breakpoint) String() string {
	switch b.Scope {
	case ScopePhysical:
		return fmt.Sprintf("%2d: %s %s page %d +%04x", b.ID, b.Kind, b.Bank, b.Page, b.Offset)
	}
	return fmt.Sprintf("%2d: %s %04x", b.ID, b.Kind, b.Address)
}

// the hot path reads an immutable view of the registry; mutation builds a
// new view and swaps it in. the registry itself may only be mutated while
// the emulation is paused.
type breakpointView struct {
	// indexed by kind, then keyed by Z80 (or port) address
	byAddr [5]map[uint16][]Breakpoint
}

// Breakpoints is the breakpoint registry.
type Breakpoints struct {
	mach *spectrum.Spectrum

	nextID int
	list   []Breakpoint

	view atomic.Value // *breakpointView
}

// NewBreakpoints is the preferred method of initialisation for the
// Breakpoints type.
func NewBreakpoints(mach *spectrum.Spectrum) *Breakpoints {
	bp := &Breakpoints{mach: mach}
	bp.rebuild()
	return bp
}

func (bp *Breakpoints) rebuild() {
	v := &breakpointView{}
	for k := range v.byAddr {
		v.byAddr[k] = make(map[uint16][]Breakpoint)
	}
	for _, b := range bp.list {
		if !b.Enabled {
			continue
		}
		addr := b.Address
		if b.Scope == ScopePhysical {
			// a physical breakpoint can match through any window; key by
			// the offset reachable through each window
			for w := 0; w < memory.NumWindows; w++ {
				a := uint16(w)<<14 | b.Offset&0x3fff
				v.byAddr[b.Kind][a] = append(v.byAddr[b.Kind][a], b)
			}
			continue
		}
		v.byAddr[b.Kind][addr] = append(v.byAddr[b.Kind][addr], b)
	}
	bp.view.Store(v)
}

// Add a breakpoint. Returns the new breakpoint's ID.
func (bp *Breakpoints) Add(b Breakpoint) (int, error) {
	if b.Scope == ScopePhysical {
		limit := memory.NumRAMPages
		if b.Bank == memory.ModeROM {
			limit = memory.NumROMPages
		}
		if b.Page < 0 || b.Page >= limit {
			return 0, curated.Errorf(DebugConstraintViolation,
				curated.Errorf("no such %s page (%d)", b.Bank, b.Page))
		}
	}

	for _, o := range bp.list {
		if o.Kind == b.Kind && o.Scope == b.Scope && o.Address == b.Address &&
			o.Bank == b.Bank && o.Page == b.Page && o.Offset == b.Offset {
			return 0, curated.Errorf(BreakpointExists, o.String())
		}
	}

	b.ID = bp.nextID
	bp.nextID++
	b.Enabled = true
	bp.list = append(bp.list, b)
	bp.rebuild()

	return b.ID, nil
}

// Drop removes a breakpoint by ID.
func (bp *Breakpoints) Drop(id int) bool {
	for i, b := range bp.list {
		if b.ID == id {
			bp.list = append(bp.list[:i], bp.list[i+1:]...)
			bp.rebuild()
			return true
		}
	}
	return false
}

// Enable or disable a breakpoint by ID.
func (bp *Breakpoints) Enable(id int, enabled bool) bool {
	for i := range bp.list {
		if bp.list[i].ID == id {
			bp.list[i].Enabled = enabled
			bp.rebuild()
			return true
		}
	}
	return false
}

// List returns a copy of every breakpoint.
func (bp *Breakpoints) List() []Breakpoint {
	l := make([]Breakpoint, len(bp.list))
	copy(l, bp.list)
	return l
}

// check is the hot path lookup.
func (bp *Breakpoints) check(kind BreakpointKind, addr uint16) int {
	v := bp.view.Load().(*breakpointView)
	matches, ok := v.byAddr[kind][addr]
	if !ok {
		return spectrum.NoBreakpoint
	}

	for _, b := range matches {
		if b.Scope == ScopeZ80 {
			return b.ID
		}

		// physical scope: the current mapping must agree
		window, offset := memory.MapZ80ToPhysical(addr)
		mode, page := bp.mach.Mem.Window(window)
		if mode == b.Bank && page == b.Page && offset == b.Offset&0x3fff {
			return b.ID
		}
	}

	return spectrum.NoBreakpoint
}

// CheckExec implements the spectrum.Instrumentation interface.
func (bp *Breakpoints) CheckExec(addr uint16) int {
	return bp.check(KindExec, addr)
}

// CheckRead implements the spectrum.Instrumentation interface.
func (bp *Breakpoints) CheckRead(addr uint16) int {
	return bp.check(KindRead, addr)
}

// CheckWrite implements the spectrum.Instrumentation interface.
func (bp *Breakpoints) CheckWrite(addr uint16) int {
	return bp.check(KindWrite, addr)
}

// CheckPortIn implements the spectrum.Instrumentation interface.
func (bp *Breakpoints) CheckPortIn(port uint16) int {
	return bp.check(KindPortIn, port)
}

// CheckPortOut implements the spectrum.Instrumentation interface.
func (bp *Breakpoints) CheckPortOut(port uint16) int {
	return bp.check(KindPortOut, port)
}
