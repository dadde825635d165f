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

package cpu

// Bus connects the CPU to memory and the I/O ports. The memory subsystem
// provides both a fast and an instrumented implementation.
type Bus interface {
	// FetchOpcode reads the byte at addr during an M1 cycle. Distinguished
	// from Read so the instrumented bus can maintain execution counters.
	FetchOpcode(addr uint16) uint8

	Read(addr uint16) uint8
	Write(addr uint16, data uint8)

	// I/O port access. the full 16-bit port address is presented
	In(port uint16) uint8
	Out(port uint16, data uint8)

	// Contention returns the number of extra T-states incurred by accessing
	// addr at the current point in the frame. zero for uncontended pages
	Contention(addr uint16) int
}
