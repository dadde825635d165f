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

// Package ula emulates the Spectrum's ULA: the raster clock, the pixel and
// attribute fetch, border generation and the frame interrupt.
//
// The renderer is raster synchronous. The machine tells the ULA how far the
// CPU clock has moved with AdvanceTo() and the ULA replays its output up to
// that T-state into the back framebuffer. At the end of the frame the
// visible buffer index swaps; a collaborator holding the visible buffer
// never observes a partially rendered frame.
package ula

import (
	"sync/atomic"

	"github.com/jetsetilly/gopherzx/hardware/memory"
)

// the screen area is always 256x192 source pixels. rendering doubles pixels
// horizontally, like the original hardware's 7MHz pixel clock relative to
// the CPU clock, so that the hi-res modes of the later machines share a
// framebuffer geometry.
const (
	screenWidth  = 256
	screenHeight = 192

	// source pixels per T-state and the horizontal scale factor
	pixelsPerTState = 2
	horizScale      = 2
)

// Framebuffer describes one of the two pixel buffers. Pix is RGBA8, row
// major.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// ULA is the video portion of the custom gate array.
type ULA struct {
	spec Spec
	mem  *memory.Memory

	// the RAM page holding the active display file (5, or 7 for the 128K
	// shadow screen)
	screenPage int

	// border colour latched from the low bits of port $FE
	border uint8

	// frame state
	frame      int
	lastT      int
	flash      bool
	flashCount int

	// the attribute byte most recently transferred. this is what a read of
	// an unclaimed port sees during the screen fetch
	lastAttr uint8
	inFetch  bool

	// rendering geometry, derived from spec
	visibleTStates int // T-states of each line that produce pixels
	shift          int // maps frame T-state to visible coordinate space

	fbWidth  int
	fbHeight int
	buffers  [2]*Framebuffer
	visible  int32

	// contention lookup, one entry per frame T-state
	contention []uint8
}

// NewULA is the preferred method of initialisation for the ULA type.
func NewULA(spec Spec, mem *memory.Memory) *ULA {
	u := &ULA{
		mem:        mem,
		screenPage: 5,
	}
	u.SetSpec(spec)
	return u
}

// SetSpec changes the raster timing, reallocating the framebuffers and
// rebuilding the contention table.
func (u *ULA) SetSpec(spec Spec) {
	u.spec = spec

	u.visibleTStates = spec.SideBorderTStates*2 + screenWidth/pixelsPerTState
	u.fbWidth = u.visibleTStates * pixelsPerTState * horizScale
	u.fbHeight = spec.TopBorderLines + screenHeight + spec.BottomBorderLines

	for i := 0; i < 2; i++ {
		u.buffers[i] = &Framebuffer{
			Width:  u.fbWidth,
			Height: u.fbHeight,
			Pix:    make([]uint8, u.fbWidth*u.fbHeight*4),
		}
	}

	// the visible coordinate space starts at the top-left border pixel.
	// compute the offset between it and the frame T-state count
	screenStart := spec.FirstScreenLine*spec.TStatesPerLine + spec.FirstScreenTState
	visibleStart := spec.TopBorderLines*spec.TStatesPerLine + spec.SideBorderTStates
	u.shift = visibleStart - screenStart

	u.buildContention()
	u.lastT = 0
}

// Spec returns the raster timing in effect.
func (u *ULA) Spec() Spec {
	return u.spec
}

func (u *ULA) buildContention() {
	u.contention = make([]uint8, u.spec.FrameTStates())
	if len(u.spec.ContentionPattern) == 0 {
		return
	}
	for line := 0; line < screenHeight; line++ {
		base := u.spec.ContentionStart + line*u.spec.TStatesPerLine
		for t := 0; t < screenWidth/pixelsPerTState; t++ {
			idx := base + t
			if idx >= 0 && idx < len(u.contention) {
				u.contention[idx] = uint8(u.spec.ContentionPattern[t%len(u.spec.ContentionPattern)])
			}
		}
	}
}

// ContentionDelay returns the number of delay T-states the ULA imposes on a
// contended memory access at the given frame T-state.
func (u *ULA) ContentionDelay(tstate int) int {
	if tstate < 0 || tstate >= len(u.contention) {
		return 0
	}
	return int(u.contention[tstate])
}

// SetScreenPage selects the RAM page holding the display file.
func (u *ULA) SetScreenPage(page int) {
	u.screenPage = page
}

// ScreenPage returns the RAM page holding the display file.
func (u *ULA) ScreenPage() int {
	return u.screenPage
}

// SetBorder latches a new border colour (the low three bits of a port $FE
// write). The caller is expected to have advanced the renderer to the
// current T-state first so that the change lands mid-scanline when it
// should.
func (u *ULA) SetBorder(color uint8) {
	u.border = color & 0x07
}

// Border returns the current border colour.
func (u *ULA) Border() uint8 {
	return u.border
}

// InitFrame prepares for a new frame of rendering.
func (u *ULA) InitFrame() {
	u.lastT = 0
	u.frame++
	u.flashCount++
	if u.flashCount >= 16 {
		u.flashCount = 0
		u.flash = !u.flash
	}
}

// Frame returns the number of frames rendered.
func (u *ULA) Frame() int {
	return u.frame
}

// AdvanceTo replays ULA output from the previous position up to (and
// including) the frame T-state argument.
func (u *ULA) AdvanceTo(tstate int) {
	if tstate >= u.spec.FrameTStates() {
		tstate = u.spec.FrameTStates() - 1
	}

	fb := u.buffers[1-atomic.LoadInt32(&u.visible)]
	screen := u.mem.RAMPage(u.screenPage)

	u.inFetch = false

	for t := u.lastT + 1; t <= tstate; t++ {
		vt := t + u.shift
		if vt < 0 {
			vt += u.spec.FrameTStates()
		}

		line := vt / u.spec.TStatesPerLine
		col := vt % u.spec.TStatesPerLine

		if line >= u.fbHeight || col >= u.visibleTStates {
			continue
		}

		// framebuffer position of the four pixels this T-state produces
		pos := (line*u.fbWidth + col*pixelsPerTState*horizScale) * 4

		screenLine := line - u.spec.TopBorderLines
		screenCol := col - u.spec.SideBorderTStates

		if screenLine >= 0 && screenLine < screenHeight && screenCol >= 0 && screenCol < screenWidth/pixelsPerTState {
			u.renderScreen(fb, pos, screen, screenLine, screenCol)
			u.inFetch = true
		} else {
			u.renderBorder(fb, pos)
		}
	}

	u.lastT = tstate
}

func (u *ULA) renderBorder(fb *Framebuffer, pos int) {
	c := palette[u.border]
	for i := 0; i < pixelsPerTState*horizScale; i++ {
		copy(fb.Pix[pos+i*4:pos+i*4+4], c[:])
	}
}

// renderScreen draws the two source pixels (four framebuffer pixels) for
// one T-state of the screen fetch.
func (u *ULA) renderScreen(fb *Framebuffer, pos int, screen []uint8, line int, col int) {
	x := col * pixelsPerTState
	byteCol := x >> 3

	pixels := screen[screenAddress(line, byteCol)]
	attr := screen[attributeAddress(line, byteCol)]
	u.lastAttr = attr

	ink := attr & 0x07
	paper := (attr >> 3) & 0x07
	if attr&0x40 != 0 {
		ink += 8
		paper += 8
	}

	// FLASH swaps ink and paper every 16 frames
	if attr&0x80 != 0 && u.flash {
		ink, paper = paper, ink
	}

	for p := 0; p < pixelsPerTState; p++ {
		bit := uint(7 - (x+p)&0x07)
		c := palette[paper]
		if pixels&(1<<bit) != 0 {
			c = palette[ink]
		}
		for s := 0; s < horizScale; s++ {
			o := pos + (p*horizScale+s)*4
			copy(fb.Pix[o:o+4], c[:])
		}
	}
}

// screenAddress maps a screen line and byte column to the display file
// offset, with the Spectrum's characteristic interleave.
func screenAddress(line int, byteCol int) int {
	return (line&0x07)<<8 | (line&0x38)<<2 | (line&0xc0)<<5 | byteCol
}

// attributeAddress maps a screen line and byte column to the attribute
// area.
func attributeAddress(line int, byteCol int) int {
	return 0x1800 + (line>>3)<<5 + byteCol
}

// FloatingBus returns the value of the data bus as seen by a read of an
// unclaimed port: the attribute byte being transferred during a screen
// fetch, idle (0xff) otherwise.
func (u *ULA) FloatingBus() uint8 {
	if u.inFetch {
		return u.lastAttr
	}
	return 0xff
}

// EndFrame finishes the current frame: any remaining raster is rendered and
// the visible buffer index swaps.
func (u *ULA) EndFrame() {
	u.AdvanceTo(u.spec.FrameTStates() - 1)
	atomic.StoreInt32(&u.visible, 1-atomic.LoadInt32(&u.visible))
}

// Framebuffer returns the visible buffer. Safe to call from a different
// goroutine than the emulation; the returned buffer is not written to until
// after the next EndFrame(), when it becomes the back buffer.
func (u *ULA) Framebuffer() *Framebuffer {
	return u.buffers[atomic.LoadInt32(&u.visible)]
}

// NativeScreen returns a copy of the 6912 byte display file as it stands.
func (u *ULA) NativeScreen() []uint8 {
	d := make([]uint8, 6912)
	copy(d, u.mem.RAMPage(u.screenPage))
	return d
}
