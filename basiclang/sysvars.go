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

// the 48K system variables this package reads or writes. addresses per the
// ROM disassembly; the 128K machines keep them in the same places.
const (
	SysLastK  = 23560 // newly pressed key code
	SysErrNr  = 23610 // one less than the error report code
	SysFlags  = 23611 // BASIC control flags; bit 5 = new key available
	SysChans  = 23631 // channel information area
	SysProg   = 23635 // start of BASIC program
	SysNxtLin = 23637 // next program line to execute
	SysELine  = 23641 // command being typed
	SysChAdd  = 23645 // next character to interpret
	SysWorksp = 23649 // temporary work space
	SysStkBot = 23651 // bottom of calculator stack
	SysStkEnd = 23653 // end of used memory
	SysVars   = 23627 // variables area
)

// TR-DOS presence markers.
const (
	// TR-DOS plants a RET here so that the magic ROM-switch addresses can
	// return through RAM
	TRDOSRAMStub       = 0x5cc2
	TRDOSRAMStubOpcode = 0xc9

	// CHANS holds this value once the TR-DOS system variables are set up
	TRDOSChansValue = 0x5d25

	// fetching an opcode in this range swaps the DOS ROM in
	TRDOSTrapStart = 0x3d00
	TRDOSTrapEnd   = 0x3dff
)

// 128K editor state, kept in RAM bank 7.
const (
	// editor flags at $EC0D: bit 1 set while the menu is displayed
	EditorFlags     = 0xec0d
	EditorFlagsMenu = 0x02

	// FLAGS3 in the printer buffer: bit 0 set in BASIC mode
	Flags3      = 0x5b66
	Flags3Basic = 0x01
)
