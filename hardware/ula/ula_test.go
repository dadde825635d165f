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

package ula_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/ula"
	"github.com/jetsetilly/gopherzx/test"
)

func newULA() (*ula.ULA, *memory.Memory) {
	mem := memory.NewMemory()
	u := ula.NewULA(ula.Spec48K, mem)
	return u, mem
}

func TestFramebufferGeometry(t *testing.T) {
	u, _ := newULA()

	fb := u.Framebuffer()

	// 24+128+24 T-states of 2 pixels, doubled horizontally
	test.ExpectEquality(t, fb.Width, 704)
	// 48+192+48 lines
	test.ExpectEquality(t, fb.Height, 288)
	test.ExpectEquality(t, len(fb.Pix), 704*288*4)
}

func TestContentionTable(t *testing.T) {
	u, _ := newULA()

	// before the screen area: no contention
	test.ExpectEquality(t, u.ContentionDelay(0), 0)
	test.ExpectEquality(t, u.ContentionDelay(14334), 0)

	// the 48K pattern from the contention origin
	want := []int{6, 5, 4, 3, 2, 1, 0, 0}
	for i, w := range want {
		test.ExpectEquality(t, u.ContentionDelay(14335+i), w)
	}

	// the pattern repeats along the fetch window
	test.ExpectEquality(t, u.ContentionDelay(14335+8), 6)

	// and resumes on the next line
	test.ExpectEquality(t, u.ContentionDelay(14335+224), 6)

	// out of range queries are safe
	test.ExpectEquality(t, u.ContentionDelay(-1), 0)
	test.ExpectEquality(t, u.ContentionDelay(1000000), 0)
}

func TestPentagonHasNoContention(t *testing.T) {
	mem := memory.NewMemory()
	u := ula.NewULA(ula.SpecPentagon, mem)

	for _, ts := range []int{0, 14335, 30000, 50000} {
		test.ExpectEquality(t, u.ContentionDelay(ts), 0)
	}
}

func TestBorderRendering(t *testing.T) {
	u, _ := newULA()

	u.InitFrame()
	u.SetBorder(2) // red
	u.EndFrame()

	fb := u.Framebuffer()

	// the top-left border pixel is red
	test.ExpectEquality(t, fb.Pix[0], uint8(0xc0))
	test.ExpectEquality(t, fb.Pix[1], uint8(0x00))
	test.ExpectEquality(t, fb.Pix[2], uint8(0x00))
	test.ExpectEquality(t, fb.Pix[3], uint8(0xff))
}

func TestScreenRendering(t *testing.T) {
	u, mem := newULA()

	// set the first pixel byte of the display file and a white-ink
	// attribute
	screen := mem.RAMPage(5)
	screen[0] = 0x80       // leftmost pixel of row 0 set
	screen[0x1800] = 0x07  // ink white, paper black

	u.InitFrame()
	u.EndFrame()

	fb := u.Framebuffer()

	// the screen area starts after the top border and the left border.
	// the first screen pixel is doubled so occupies two framebuffer
	// pixels
	row := u.Spec().TopBorderLines
	col := 24 * 2 * 2 // side border T-states to pixels, doubled
	o := (row*fb.Width + col) * 4

	// ink white
	test.ExpectEquality(t, fb.Pix[o], uint8(0xc0))
	test.ExpectEquality(t, fb.Pix[o+1], uint8(0xc0))
	test.ExpectEquality(t, fb.Pix[o+2], uint8(0xc0))

	// the second source pixel (framebuffer pixels 2,3) is paper black
	test.ExpectEquality(t, fb.Pix[o+8], uint8(0x00))
	test.ExpectEquality(t, fb.Pix[o+9], uint8(0x00))
}

func TestNativeScreen(t *testing.T) {
	u, mem := newULA()

	mem.RAMPage(5)[100] = 0x42
	d := u.NativeScreen()
	test.ExpectEquality(t, len(d), 6912)
	test.ExpectEquality(t, d[100], uint8(0x42))
}

func TestShadowScreenPage(t *testing.T) {
	u, mem := newULA()

	mem.RAMPage(7)[50] = 0x24
	u.SetScreenPage(7)
	test.ExpectEquality(t, u.NativeScreen()[50], uint8(0x24))
}

func TestBufferSwap(t *testing.T) {
	u, _ := newULA()

	first := u.Framebuffer()
	u.InitFrame()
	u.EndFrame()
	second := u.Framebuffer()

	// the visible buffer changed
	test.ExpectInequality(t, &first.Pix[0], &second.Pix[0])

	u.InitFrame()
	u.EndFrame()
	third := u.Framebuffer()
	test.ExpectEquality(t, &first.Pix[0], &third.Pix[0])
}

func TestSpecLookup(t *testing.T) {
	s, ok := ula.SpecByID("48K")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, s.FrameTStates(), 69888)

	_, ok = ula.SpecByID("flibble")
	test.ExpectFailure(t, ok)
}
