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

// Package clocks defines the crystal frequencies of the emulated machines.
package clocks

// CPU clocks in Hz.
const (
	// the 48K machine and the Pentagon clones
	Z80Clock48K = 3500000.0

	// the 128K machines run fractionally faster
	Z80Clock128K = 3546900.0
)

// the AY-3-8910 is clocked at half the CPU clock.
const PSGDivider = 2

// FrameRate returns the frame rate implied by a clock and a frame length
// in T-states.
func FrameRate(clock float64, frameTStates int) float64 {
	return clock / float64(frameTStates)
}
