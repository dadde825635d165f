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

package spectrum_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/keyboard"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/test"
)

func new48K(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	mach, err := spectrum.NewSpectrum(spectrum.Config{Model: spectrum.Model48K}, nil)
	test.ExpectSuccess(t, err)
	mach.Random.ZeroSeed = true
	mach.Reset()
	return mach
}

func new128K(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	mach, err := spectrum.NewSpectrum(spectrum.Config{Model: spectrum.Model128K}, nil)
	test.ExpectSuccess(t, err)
	mach.Random.ZeroSeed = true
	mach.Reset()
	return mach
}

func TestConfigValidation(t *testing.T) {
	_, err := spectrum.NewSpectrum(spectrum.Config{Model: "ZX81"}, nil)
	test.ExpectSuccess(t, curated.Has(err, spectrum.ConfigInvalid))

	_, err = spectrum.NewSpectrum(spectrum.Config{Model: spectrum.Model48K, RAMSizeKiB: 128}, nil)
	test.ExpectSuccess(t, curated.Has(err, spectrum.ConfigInvalid))

	_, err = spectrum.NewSpectrum(spectrum.Config{
		Model:    spectrum.Model48K,
		ROMFiles: []string{"/no/such/rom.bin"},
	}, nil)
	test.ExpectSuccess(t, curated.Has(err, spectrum.IoFailure))
}

func TestRunFrame(t *testing.T) {
	mach := new48K(t)

	// an empty ROM is all NOPs: the frame completes without incident
	brk := mach.RunFrame()
	test.ExpectEquality(t, brk, spectrum.NoBreakpoint)

	// the frame consumed its T-state budget, leaving only the overshoot
	if mach.FrameTState() < 0 || mach.FrameTState() > 23 {
		t.Errorf("unexpected frame T-state remainder: %d", mach.FrameTState())
	}
}

func TestBorderOut(t *testing.T) {
	mach := new48K(t)

	// OUT ($FE),A with A=5 sets the border cyan
	mach.Mem.DirectWrite(0x0000, 0x3e) // LD A,$05
	mach.Mem.DirectWrite(0x0001, 0x05)
	mach.Mem.DirectWrite(0x0002, 0xd3) // OUT ($FE),A
	mach.Mem.DirectWrite(0x0003, 0xfe)

	mach.InitFrame()
	mach.Step()
	mach.Step()

	test.ExpectEquality(t, mach.ULA.Border(), uint8(0x05))
}

func TestPaging128K(t *testing.T) {
	mach := new128K(t)

	mach.Mem.RAMPage(3)[0] = 0x33
	mach.Mem.RAMPage(0)[0] = 0x44

	// select RAM page 3 in window 3
	mach.Ports.Out(0x7ffd, 0x03)
	test.ExpectEquality(t, mach.Mem.DirectRead(0xc000), uint8(0x33))

	// back to page 0
	mach.Ports.Out(0x7ffd, 0x00)
	test.ExpectEquality(t, mach.Mem.DirectRead(0xc000), uint8(0x44))

	// shadow screen select
	mach.Ports.Out(0x7ffd, 0x08)
	test.ExpectEquality(t, mach.ULA.ScreenPage(), 7)

	// the lock bit freezes further paging
	mach.Ports.Out(0x7ffd, 0x20|0x03)
	test.ExpectEquality(t, mach.Mem.DirectRead(0xc000), uint8(0x33))
	mach.Ports.Out(0x7ffd, 0x00)
	test.ExpectEquality(t, mach.Mem.DirectRead(0xc000), uint8(0x33))
}

func TestPagingAbsentOn48K(t *testing.T) {
	mach := new48K(t)

	mach.Mem.RAMPage(0)[0] = 0x44
	mach.Mem.RAMPage(3)[0] = 0x33

	// the 48K machine has no paging device: the write is discarded
	mach.Ports.Out(0x7ffd, 0x03)
	test.ExpectEquality(t, mach.Mem.DirectRead(0xc000), uint8(0x44))
}

func TestKeyboardQueue(t *testing.T) {
	mach := new48K(t)

	mach.KeyPressed(keyboard.KeyZ)

	// the event is queued, not applied immediately
	test.ExpectSuccess(t, mach.Keyboard.Idle())

	mach.InitFrame()
	for !mach.EndOfFrame() {
		mach.Step()
	}
	mach.FinishFrame()

	test.ExpectFailure(t, mach.Keyboard.Idle())
	test.ExpectEquality(t, mach.Keyboard.Held(keyboard.KeyZ), 1)
}

func TestPortFEKeyboardRead(t *testing.T) {
	mach := new48K(t)

	mach.Keyboard.Press(keyboard.KeyZ)

	// IN A,($FE) with A=$FE selects the CAPS half-row
	mach.Z80.A = 0xfe
	mach.Mem.DirectWrite(0x0000, 0xdb)
	mach.Mem.DirectWrite(0x0001, 0xfe)

	mach.InitFrame()
	mach.Step()

	test.ExpectEquality(t, mach.Z80.A&0x1f, uint8(0x1d))
}

func TestInstrumentationCounters(t *testing.T) {
	mach := new48K(t)

	mach.AttachInstrumentation(noBreaks{})
	mach.InitFrame()

	for i := 0; i < 10; i++ {
		mach.Step()
	}

	// ten NOP fetches from the ROM page counted as executes
	test.ExpectEquality(t,
		mach.Mem.Counters.BankTotal(memory.AccessExecute, memory.ROMBank(0)),
		uint64(10))

	mach.DetachInstrumentation()
	mach.Step()
	test.ExpectEquality(t,
		mach.Mem.Counters,
		(*memory.AccessCounters)(nil))
}

type noBreaks struct{}

func (noBreaks) CheckExec(_ uint16) int    { return spectrum.NoBreakpoint }
func (noBreaks) CheckRead(_ uint16) int    { return spectrum.NoBreakpoint }
func (noBreaks) CheckWrite(_ uint16) int   { return spectrum.NoBreakpoint }
func (noBreaks) CheckPortIn(_ uint16) int  { return spectrum.NoBreakpoint }
func (noBreaks) CheckPortOut(_ uint16) int { return spectrum.NoBreakpoint }

func TestContentionApplied(t *testing.T) {
	mach := new48K(t)

	// run a program in contended memory during the screen fetch window
	// and compare against the same program in uncontended memory: the
	// contended run must be slower over the fetch window
	progAt := func(addr uint16) int {
		mach.Reset()
		// all-zero RAM executes as NOPs wherever the PC wanders
		for _, p := range []int{0, 2, 5} {
			page := mach.Mem.RAMPage(p)
			for i := range page {
				page[i] = 0
			}
		}
		mach.Z80.PC = addr
		mach.InitFrame()

		// advance into the active screen area
		for mach.FrameTState() < 14400 {
			mach.Step()
		}

		total := 0
		for i := 0; i < 32; i++ {
			ts, _ := mach.Step()
			total += ts
		}
		return total
	}

	uncontended := progAt(0x8000)
	contended := progAt(0x4800)
	test.ExpectSuccess(t, contended > uncontended)
}
