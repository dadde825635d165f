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

// Package cpu emulates the Zilog Z80 as fitted to the ZX Spectrum family.
//
// The CPU is driven by calls to ExecuteInstruction() which executes exactly
// one instruction, or accepts one pending interrupt, and returns the number
// of T-states consumed (including any memory contention incurred through the
// Bus interface).
//
// Flag emulation covers the undocumented bits (bits 5 and 3 of the flag
// register) and the internal MEMPTR (WZ) register that surfaces through the
// flag bits of BIT n,(HL), SCF and CCF. The emulated flavour is the genuine
// Zilog part; the NEC and ST second sources behave differently for SCF/CCF
// and are not modelled.
//
// The CPU accesses the outside world only through the Bus interface. Two
// implementations of the bus are expected: a fast bus used in normal
// operation and an instrumented bus that maintains access counters and
// consults the breakpoint tables. Which of the two is attached is decided
// once per run segment with Plumb(), never per instruction.
package cpu
