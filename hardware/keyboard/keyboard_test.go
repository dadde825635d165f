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

package keyboard_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/hardware/keyboard"
	"github.com/jetsetilly/gopherzx/test"
)

func TestSimplePressRelease(t *testing.T) {
	m := keyboard.NewMatrix()

	// all released: every selected half-row reads 0x1f
	test.ExpectEquality(t, m.ReadPort(0xfe), uint8(0x1f))

	// Z is bit 1 of the CAPS half-row, selected by A8 low
	m.Press(keyboard.KeyZ)
	test.ExpectEquality(t, m.ReadPort(0xfe), uint8(0x1d))

	// an unselected half-row does not see it
	test.ExpectEquality(t, m.ReadPort(0xfd), uint8(0x1f))

	m.Release(keyboard.KeyZ)
	test.ExpectEquality(t, m.ReadPort(0xfe), uint8(0x1f))
}

func TestHalfRowCombination(t *testing.T) {
	m := keyboard.NewMatrix()

	m.Press(keyboard.KeyZ) // row 0 bit 1
	m.Press(keyboard.KeyA) // row 1 bit 0

	// selecting both half-rows ANDs their states
	test.ExpectEquality(t, m.ReadPort(0xfc), uint8(0x1c))
}

func TestExtendedKeyDecomposition(t *testing.T) {
	m := keyboard.NewMatrix()

	// cursor left is CAPS SHIFT + 5
	m.Press(keyboard.KeyExtLeft)

	// CAPS SHIFT: row 0 bit 0
	test.ExpectEquality(t, m.ReadPort(0xfe)&0x01, uint8(0))
	// the 5 key: row 3 bit 4
	test.ExpectEquality(t, m.ReadPort(0xf7)&0x10, uint8(0))

	m.Release(keyboard.KeyExtLeft)
	test.ExpectSuccess(t, m.Idle())
}

func TestSharedModifierCounting(t *testing.T) {
	m := keyboard.NewMatrix()

	// two extended keys sharing CAPS SHIFT: releasing one must not
	// release the modifier still held by the other
	m.Press(keyboard.KeyExtLeft)
	m.Press(keyboard.KeyExtDown)
	test.ExpectEquality(t, m.Held(keyboard.KeyCapsShift), 2)

	m.Release(keyboard.KeyExtLeft)
	test.ExpectEquality(t, m.Held(keyboard.KeyCapsShift), 1)
	test.ExpectEquality(t, m.ReadPort(0xfe)&0x01, uint8(0))

	m.Release(keyboard.KeyExtDown)
	test.ExpectSuccess(t, m.Idle())
	test.ExpectEquality(t, m.ReadPort(0xfe), uint8(0x1f))
}

// invariant: any balanced sequence of press/release events leaves the
// matrix all-released and the counters empty.
func TestBalancedSequence(t *testing.T) {
	m := keyboard.NewMatrix()

	seq := []keyboard.Key{
		keyboard.KeyZ, keyboard.KeyExtLeft, keyboard.KeyExtBreak,
		keyboard.KeyExtDot, keyboard.KeySymShift, keyboard.KeyExtDown,
		keyboard.KeyEnter, keyboard.KeyExtDoubleQuote, keyboard.KeyM,
	}

	// press everything, some of it twice, in an interleaved order
	for _, k := range seq {
		m.Press(k)
	}
	for _, k := range seq[:4] {
		m.Press(k)
	}
	for i := len(seq) - 1; i >= 0; i-- {
		m.Release(seq[i])
	}
	for _, k := range seq[:4] {
		m.Release(k)
	}

	test.ExpectSuccess(t, m.Idle())
	for high := 0; high < 8; high++ {
		test.ExpectEquality(t, m.ReadPort(^uint8(1<<high)), uint8(0x1f))
	}
}

func TestReleaseWithoutPress(t *testing.T) {
	m := keyboard.NewMatrix()

	// harmless
	m.Release(keyboard.KeyQ)
	test.ExpectSuccess(t, m.Idle())
	test.ExpectEquality(t, m.ReadPort(0xfb), uint8(0x1f))
}
