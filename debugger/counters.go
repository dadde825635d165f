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
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// the display file and attribute area as seen through window 1. the ROM
// touches this range constantly, drowning out the traffic a person is
// usually looking for
const (
	screenStart = 0x4000
	screenEnd   = 0x5aff
)

// Counters is the debugger's view onto the memory access counters.
type Counters struct {
	mach *spectrum.Spectrum
}

// NewCounters is the preferred method of initialisation for the Counters
// type.
func NewCounters(mach *spectrum.Spectrum) *Counters {
	return &Counters{mach: mach}
}

func (c *Counters) counters() *memory.AccessCounters {
	return c.mach.Mem.Counters
}

// Z80Total sums a counter kind over an inclusive Z80 address range.
func (c *Counters) Z80Total(kind memory.AccessKind, from uint16, to uint16) uint64 {
	ac := c.counters()
	if ac == nil {
		return 0
	}
	var total uint64
	for a := uint32(from); a <= uint32(to); a++ {
		total += uint64(ac.Z80[kind][a])
	}
	return total
}

// WindowTotal sums a counter kind over one of the four page windows.
func (c *Counters) WindowTotal(kind memory.AccessKind, window int) uint64 {
	from := uint16(window) << 14
	return c.Z80Total(kind, from, from+memory.PageSize-1)
}

// WindowTotalExcludingScreen is WindowTotal with the display file range
// subtracted. Only window 1 contains the display file; for other windows
// the two functions agree.
func (c *Counters) WindowTotalExcludingScreen(kind memory.AccessKind, window int) uint64 {
	total := c.WindowTotal(kind, window)
	if window != 1 {
		return total
	}
	return total - c.Z80Total(kind, screenStart, screenEnd)
}

// BankTotal returns the lifetime count for a RAM page.
func (c *Counters) BankTotal(kind memory.AccessKind, page int) uint64 {
	ac := c.counters()
	if ac == nil {
		return 0
	}
	return ac.BankTotal(kind, page)
}

// ROMBankTotal returns the lifetime count for a ROM page.
func (c *Counters) ROMBankTotal(kind memory.AccessKind, page int) uint64 {
	ac := c.counters()
	if ac == nil {
		return 0
	}
	return ac.BankTotal(kind, memory.ROMBank(page))
}

// TouchedRAM returns the bitset of RAM pages that have seen any traffic of
// the kind.
func (c *Counters) TouchedRAM(kind memory.AccessKind) uint64 {
	ac := c.counters()
	if ac == nil {
		return 0
	}
	return ac.RAMTouched[kind]
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	if ac := c.counters(); ac != nil {
		ac.Reset()
	}
}
