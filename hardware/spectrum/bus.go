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

package spectrum

import (
	"github.com/jetsetilly/gopherzx/hardware/memory"
)

// Instrumentation is what the debugger hooks into the instrumented bus.
// Each function is called for the matching access; a return other than
// NoBreakpoint from a breakpoint check marks the emulation for pausing.
type Instrumentation interface {
	// access checks. the return value is a breakpoint ID or NoBreakpoint
	CheckExec(addr uint16) int
	CheckRead(addr uint16) int
	CheckWrite(addr uint16) int
	CheckPortIn(port uint16) int
	CheckPortOut(port uint16) int
}

// NoBreakpoint is returned by breakpoint checks that did not match.
const NoBreakpoint = -1

// fastBus is the plain bus: two slice operations per access, no counters,
// no checks. this is what the CPU sees in normal running.
type fastBus struct {
	m *Spectrum
}

func (b fastBus) FetchOpcode(addr uint16) uint8 {
	return b.m.Mem.Read(addr)
}

func (b fastBus) Read(addr uint16) uint8 {
	return b.m.Mem.Read(addr)
}

func (b fastBus) Write(addr uint16, data uint8) {
	b.m.Mem.Write(addr, data)
}

func (b fastBus) In(port uint16) uint8 {
	return b.m.Ports.In(port)
}

func (b fastBus) Out(port uint16, data uint8) {
	b.m.Ports.Out(port, data)
}

func (b fastBus) Contention(addr uint16) int {
	if !b.m.Mem.Contended(addr) {
		return 0
	}
	return b.m.ULA.ContentionDelay(b.m.frameT + b.m.Z80.TStates)
}

// debugBus additionally maintains the access counters and consults the
// breakpoint tables through the Instrumentation interface.
type debugBus struct {
	m *Spectrum
}

func (b debugBus) count(kind memory.AccessKind, addr uint16) {
	if c := b.m.Mem.Counters; c != nil {
		c.Count(b.m.Mem, kind, addr)
	}
}

func (b debugBus) FetchOpcode(addr uint16) uint8 {
	b.count(memory.AccessExecute, addr)
	return b.m.Mem.Read(addr)
}

func (b debugBus) Read(addr uint16) uint8 {
	b.count(memory.AccessRead, addr)
	if in := b.m.instrumentation; in != nil {
		if id := in.CheckRead(addr); id != NoBreakpoint {
			b.m.breakpointHit(id)
		}
	}
	return b.m.Mem.Read(addr)
}

func (b debugBus) Write(addr uint16, data uint8) {
	b.count(memory.AccessWrite, addr)
	if in := b.m.instrumentation; in != nil {
		if id := in.CheckWrite(addr); id != NoBreakpoint {
			b.m.breakpointHit(id)
		}
	}
	b.m.Mem.Write(addr, data)
}

func (b debugBus) In(port uint16) uint8 {
	if in := b.m.instrumentation; in != nil {
		if id := in.CheckPortIn(port); id != NoBreakpoint {
			b.m.breakpointHit(id)
		}
	}
	return b.m.Ports.In(port)
}

func (b debugBus) Out(port uint16, data uint8) {
	if in := b.m.instrumentation; in != nil {
		if id := in.CheckPortOut(port); id != NoBreakpoint {
			b.m.breakpointHit(id)
		}
	}
	b.m.Ports.Out(port, data)
}

func (b debugBus) Contention(addr uint16) int {
	if !b.m.Mem.Contended(addr) {
		return 0
	}
	return b.m.ULA.ContentionDelay(b.m.frameT + b.m.Z80.TStates)
}
