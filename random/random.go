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

// Package random should be used by the emulation in preference to the math
// and crypto packages of the standard library.
//
// The seed combines a wall-clock base, taken when the Random is created, with
// the ULA's frame count, so values differ from one run to the next. With
// ZeroSeed set all sequences are fully deterministic, which regression tests
// rely on.
package random

import (
	"math/rand"
	"time"
)

// TState is the source of the evolving part of the seed. Implemented by the
// ULA.
type TState interface {
	Frame() int
}

// Random is a random number source.
type Random struct {
	tstate TState

	// ZeroSeed forces a deterministic sequence
	ZeroSeed bool

	base int64
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(tstate TState) *Random {
	return &Random{
		tstate: tstate,
		base:   time.Now().UnixNano(),
	}
}

func (r *Random) seed() int64 {
	if r.ZeroSeed {
		return 1
	}
	return r.base + int64(r.tstate.Frame())
}

// Intn returns a value in [0, n).
func (r *Random) Intn(n int) int {
	return rand.New(rand.NewSource(r.seed())).Intn(n)
}

// Fill writes random bytes. Used for power-on RAM noise.
func (r *Random) Fill(p []uint8) {
	src := rand.New(rand.NewSource(r.seed()))
	for i := range p {
		p[i] = uint8(src.Intn(256))
	}
}

// NoiseSeed returns a 16 bit seed for the tape input noise register.
func (r *Random) NoiseSeed() uint16 {
	if r.ZeroSeed {
		return 0x2f4a
	}
	return uint16(r.Intn(0xffff) + 1)
}
