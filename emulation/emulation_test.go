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

package emulation_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger/govern"
	"github.com/jetsetilly/gopherzx/emulation"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/test"
)

func newEmulator(t *testing.T) *emulation.Emulator {
	t.Helper()
	emu, err := emulation.NewEmulator(spectrum.Config{Model: spectrum.Model48K}, nil)
	test.ExpectSuccess(t, err)
	emu.Machine.Random.ZeroSeed = true
	emu.Throttle = false
	return emu
}

func TestPauseResumeStop(t *testing.T) {
	emu := newEmulator(t)

	test.ExpectSuccess(t, emu.StartAsync())

	// Pause blocks until the execution goroutine has genuinely parked
	emu.Pause()
	test.ExpectSuccess(t, emu.Paused())

	// while paused the machine is safely inspectable
	_ = emu.Machine.Mem.DirectRead(0x4000)

	emu.Resume()

	// Stop is honoured from the running state
	test.ExpectSuccess(t, emu.Stop())
	test.ExpectEquality(t, emu.State(), govern.Ending)
}

func TestStopWhilePaused(t *testing.T) {
	emu := newEmulator(t)

	test.ExpectSuccess(t, emu.StartAsync())
	emu.Pause()

	// a Stop issued during a pause park must still be honoured
	test.ExpectSuccess(t, emu.Stop())
	test.ExpectEquality(t, emu.State(), govern.Ending)
}

func TestStepWhileRunningForbidden(t *testing.T) {
	emu := newEmulator(t)

	test.ExpectSuccess(t, emu.StartAsync())

	err := emu.StepInstruction()
	if err != nil {
		test.ExpectSuccess(t, curated.Has(err, emulation.StateForbidden))
	}

	test.ExpectSuccess(t, emu.Stop())
}

func TestStepInstruction(t *testing.T) {
	emu := newEmulator(t)

	pc := emu.Machine.Z80.PC
	test.ExpectSuccess(t, emu.StepInstruction())
	test.ExpectEquality(t, emu.Machine.Z80.PC, pc+1) // a NOP
	test.ExpectEquality(t, emu.State(), govern.Paused)
}

func TestStepFrame(t *testing.T) {
	emu := newEmulator(t)

	frame := emu.Machine.ULA.Frame()
	test.ExpectSuccess(t, emu.StepFrame())
	test.ExpectEquality(t, emu.Machine.ULA.Frame(), frame+1)
}

func TestRunNCycles(t *testing.T) {
	emu := newEmulator(t)

	consumed, err := emu.RunNCycles(1000, false)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, consumed >= 1000)

	// the overshoot is at most one instruction
	test.ExpectSuccess(t, consumed < 1000+24)
}

func TestDoubleStartForbidden(t *testing.T) {
	emu := newEmulator(t)

	test.ExpectSuccess(t, emu.StartAsync())
	err := emu.StartAsync()
	test.ExpectSuccess(t, curated.Has(err, emulation.StateForbidden))
	test.ExpectSuccess(t, emu.Stop())
}
