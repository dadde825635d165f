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

package memory

import (
	"github.com/jetsetilly/gopherzx/curated"
)

// sizes and counts that define the memory model.
const (
	PageSize   = 0x4000
	NumWindows = 4

	NumRAMPages = 64
	NumROMPages = 64
)

// error patterns for the memory package.
const (
	InvalidPage   = "memory: invalid %s page (%d)"
	InvalidWindow = "memory: invalid window (%d)"
)

// PageMode describes what kind of page a window is mapped to.
type PageMode int

// List of page modes.
const (
	ModeROM PageMode = iota
	ModeRAM
)

func (m PageMode) String() string {
	if m == ModeROM {
		return "ROM"
	}
	return "RAM"
}

// window is one of the four 16KiB views onto the Z80 address space.
type window struct {
	mode PageMode
	page int

	// read and write are selected independently. in ROM mode the write base
	// points at the trash page
	readBase  []uint8
	writeBase []uint8
}

// Memory is the banked memory subsystem.
type Memory struct {
	// the arenas. contiguous so that physical address arithmetic is simple
	ram []uint8
	rom []uint8

	// writes to a ROM-mode window land here
	trash []uint8

	windows [NumWindows]window

	// which RAM pages suffer ULA contention. model dependent
	contendedRAM [NumRAMPages]bool

	// access counters. nil unless debugging instrumentation is enabled
	Counters *AccessCounters
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	m := &Memory{
		ram:   make([]uint8, NumRAMPages*PageSize),
		rom:   make([]uint8, NumROMPages*PageSize),
		trash: make([]uint8, PageSize),
	}

	// power-on map: ROM 0 in window 0, RAM 5/2/0 in the remaining windows.
	// this is the 48K arrangement and the 128K reset arrangement
	m.SetROMPage(0)
	m.SetRAMPage(1, 5)
	m.SetRAMPage(2, 2)
	m.SetRAMPage(3, 0)

	return m
}

// Snapshot creates a deep copy of the memory subsystem.
func (m *Memory) Snapshot() *Memory {
	n := *m
	n.ram = make([]uint8, len(m.ram))
	copy(n.ram, m.ram)
	n.rom = make([]uint8, len(m.rom))
	copy(n.rom, m.rom)
	n.trash = make([]uint8, len(m.trash))

	// rebuild window bases so they point into the copied arenas
	for i := range n.windows {
		if n.windows[i].mode == ModeROM {
			n.setWindow(i, ModeROM, n.windows[i].page)
		} else {
			n.setWindow(i, ModeRAM, n.windows[i].page)
		}
	}

	return &n
}

// RAMPage returns the backing slice for a physical RAM page.
func (m *Memory) RAMPage(page int) []uint8 {
	return m.ram[page*PageSize : (page+1)*PageSize]
}

// ROMPage returns the backing slice for a physical ROM page.
func (m *Memory) ROMPage(page int) []uint8 {
	return m.rom[page*PageSize : (page+1)*PageSize]
}

// LoadROM copies a ROM image into a physical ROM page.
func (m *Memory) LoadROM(page int, data []uint8) error {
	if page < 0 || page >= NumROMPages {
		return curated.Errorf(InvalidPage, "ROM", page)
	}
	if len(data) > PageSize {
		return curated.Errorf("memory: ROM image too large (%d bytes)", len(data))
	}
	copy(m.ROMPage(page), data)
	return nil
}

func (m *Memory) setWindow(idx int, mode PageMode, page int) {
	w := &m.windows[idx]
	w.mode = mode
	w.page = page
	if mode == ModeROM {
		w.readBase = m.ROMPage(page)
		w.writeBase = m.trash
	} else {
		w.readBase = m.RAMPage(page)
		w.writeBase = w.readBase
	}
}

// SetROMPage maps a physical ROM page into window 0.
func (m *Memory) SetROMPage(page int) error {
	if page < 0 || page >= NumROMPages {
		return curated.Errorf(InvalidPage, "ROM", page)
	}
	m.setWindow(0, ModeROM, page)
	return nil
}

// SetRAMPage maps a physical RAM page into the specified window. Mapping RAM
// into window 0 is legal; some models allow it.
func (m *Memory) SetRAMPage(windowIdx int, page int) error {
	if windowIdx < 0 || windowIdx >= NumWindows {
		return curated.Errorf(InvalidWindow, windowIdx)
	}
	if page < 0 || page >= NumRAMPages {
		return curated.Errorf(InvalidPage, "RAM", page)
	}
	m.setWindow(windowIdx, ModeRAM, page)
	return nil
}

// Window returns the mode and physical page currently mapped at a window.
func (m *Memory) Window(idx int) (PageMode, int) {
	return m.windows[idx].mode, m.windows[idx].page
}

// MapZ80ToPhysical splits a Z80 address into its window index and the offset
// within the mapped page.
func MapZ80ToPhysical(addr uint16) (int, uint16) {
	return int(addr >> 14), addr & 0x3fff
}

// Read a byte through the current page mapping.
func (m *Memory) Read(addr uint16) uint8 {
	return m.windows[addr>>14].readBase[addr&0x3fff]
}

// Write a byte through the current page mapping. Writes to a ROM-mode window
// are silently discarded.
func (m *Memory) Write(addr uint16, data uint8) {
	m.windows[addr>>14].writeBase[addr&0x3fff] = data
}

// DirectRead reads a byte without touching the access counters. For use by
// the debugger.
func (m *Memory) DirectRead(addr uint16) uint8 {
	return m.Read(addr)
}

// DirectWrite writes a byte without touching the access counters. Unlike
// Write, a ROM-mode window is patched through its read base. For use by the
// debugger.
func (m *Memory) DirectWrite(addr uint16, data uint8) {
	m.windows[addr>>14].readBase[addr&0x3fff] = data
}

// DirectRead16 is a convenience for reading a little-endian word.
func (m *Memory) DirectRead16(addr uint16) uint16 {
	return uint16(m.DirectRead(addr)) | uint16(m.DirectRead(addr+1))<<8
}

// DirectWrite16 is a convenience for writing a little-endian word.
func (m *Memory) DirectWrite16(addr uint16, data uint16) {
	m.DirectWrite(addr, uint8(data))
	m.DirectWrite(addr+1, uint8(data>>8))
}

// SetContendedRAM declares which physical RAM pages suffer ULA contention.
// 48K machines contend page 5; 128K machines contend the odd pages.
func (m *Memory) SetContendedRAM(pages []int) {
	m.contendedRAM = [NumRAMPages]bool{}
	for _, p := range pages {
		if p >= 0 && p < NumRAMPages {
			m.contendedRAM[p] = true
		}
	}
}

// Contended returns true if the Z80 address currently resolves to a
// contended RAM page.
func (m *Memory) Contended(addr uint16) bool {
	w := &m.windows[addr>>14]
	return w.mode == ModeRAM && m.contendedRAM[w.page]
}
