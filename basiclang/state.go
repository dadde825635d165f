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

package basiclang

import (
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// State describes which BASIC environment has control of the machine.
type State int

// List of states.
const (
	StateUnknown State = iota
	StateBasic48K
	StateBasic128K
	StateMenu128K
	StateTRDOSActive
	StateTRDOSSOSCall
)

func (s State) String() string {
	switch s {
	case StateBasic48K:
		return "48K BASIC"
	case StateBasic128K:
		return "128K BASIC"
	case StateMenu128K:
		return "128K menu"
	case StateTRDOSActive:
		return "TR-DOS"
	case StateTRDOSSOSCall:
		return "TR-DOS (SOS call)"
	}
	return "unknown"
}

// how deep the return-address scan looks.
const stackScanDepth = 16

// DetectState probes the machine for the current BASIC environment. Three
// tiers, in order: the hardware paging state, the logical TR-DOS markers
// combined with a stack scan, and finally the visible ROM page.
func DetectState(mach *spectrum.Spectrum) State {
	mem := mach.Mem

	// tier 1: the DOS ROM is physically paged in
	if mach.DOSActive() {
		return StateTRDOSActive
	}

	// tier 2: TR-DOS initialised and currently borrowing the SOS ROM. the
	// markers are its RAM stub and CHANS value; the clincher is a return
	// address into the trap range on the stack
	if TRDOSInitialised(mem) && StackContainsDOSReturn(mem, mach.Z80.SP) {
		return StateTRDOSSOSCall
	}

	// tier 3: decide from the visible ROM page
	cfg := mach.Config()
	_, page := mem.Window(0)

	if cfg.Model == spectrum.Model48K {
		return StateBasic48K
	}

	switch page {
	case 1:
		return StateBasic48K
	case 0:
		// the editor ROM: menu or BASIC decided by the editor flags in
		// bank 7
		flags := mem.RAMPage(7)[EditorFlags-0xc000]
		if flags&EditorFlagsMenu != 0 {
			return StateMenu128K
		}
		return StateBasic128K
	}

	return StateUnknown
}

// TRDOSInitialised returns true if the TR-DOS system variables have been
// set up at some point: the RAM stub holds RET and CHANS points at the
// TR-DOS channel area.
func TRDOSInitialised(mem *memory.Memory) bool {
	if mem.DirectRead(TRDOSRAMStub) != TRDOSRAMStubOpcode {
		return false
	}
	return mem.DirectRead16(SysChans) == TRDOSChansValue
}

// StackContainsDOSReturn scans the first entries of the Z80 stack for a
// return address inside the TR-DOS trap range. A stack that fails the
// sanity check is not trusted.
func StackContainsDOSReturn(mem *memory.Memory, sp uint16) bool {
	if !StackSane(mem, sp) {
		return false
	}

	for i := 0; i < stackScanDepth; i++ {
		addr := mem.DirectRead16(sp + uint16(i*2))
		if addr >= TRDOSTrapStart && addr <= TRDOSTrapEnd {
			return true
		}
	}
	return false
}

// StackSane rejects stacks that look like garbage rather than return
// addresses: four or more consecutive zero entries, or more than one
// 0xffff entry within the scanned depth.
func StackSane(mem *memory.Memory, sp uint16) bool {
	zeros := 0
	ffffs := 0

	for i := 0; i < stackScanDepth; i++ {
		v := mem.DirectRead16(sp + uint16(i*2))
		switch v {
		case 0x0000:
			zeros++
			if zeros >= 4 {
				return false
			}
		case 0xffff:
			zeros = 0
			ffffs++
			if ffffs > 1 {
				return false
			}
		default:
			zeros = 0
		}
	}
	return true
}
