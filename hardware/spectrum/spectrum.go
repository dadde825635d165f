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

// Package spectrum assembles the emulated machine and runs the per-frame
// schedule: CPU instructions interleaved with raster and sound advancement,
// the frame interrupt, and the end-of-frame housekeeping for the disk and
// tape subsystems.
package spectrum

import (
	"github.com/jetsetilly/gopherzx/hardware/audio"
	"github.com/jetsetilly/gopherzx/hardware/cpu"
	"github.com/jetsetilly/gopherzx/hardware/fdc"
	"github.com/jetsetilly/gopherzx/hardware/keyboard"
	"github.com/jetsetilly/gopherzx/hardware/memory"
	"github.com/jetsetilly/gopherzx/hardware/ports"
	"github.com/jetsetilly/gopherzx/hardware/psg"
	"github.com/jetsetilly/gopherzx/hardware/tape"
	"github.com/jetsetilly/gopherzx/hardware/ula"
	"github.com/jetsetilly/gopherzx/logger"
	"github.com/jetsetilly/gopherzx/notifications"
	"github.com/jetsetilly/gopherzx/random"
)

// KeyEvent is a queued keyboard event from the host.
type KeyEvent struct {
	Key     keyboard.Key
	Pressed bool
}

// Spectrum is the assembled machine.
type Spectrum struct {
	Z80      *cpu.CPU
	Mem      *memory.Memory
	ULA      *ula.ULA
	Ports    *ports.Ports
	PSG      *psg.TurboSound
	Mixer    *audio.Mixer
	FDC      *fdc.WD1793
	Tape     *tape.Deck
	Keyboard *keyboard.Matrix
	Random   *random.Random

	config Config
	model  modelDefaults

	notify notifications.Notify

	// T-states into the current frame
	frameT int

	// paging state
	dosActive    bool
	pagingLocked bool
	romSelect    int
	last7FFD     uint8
	lastFE       uint8

	// the instrumented run segment state
	instrumentation Instrumentation
	hitBreakpoint   int

	// queued host keyboard events, drained at frame boundaries
	events chan KeyEvent
}

// NewSpectrum is the preferred method of initialisation for the Spectrum
// type. A failed initialisation leaves no partial machine behind.
func NewSpectrum(config Config, notify notifications.Notify) (*Spectrum, error) {
	model, err := config.validate()
	if err != nil {
		return nil, err
	}

	s := &Spectrum{
		config:        config,
		model:         model,
		notify:        notify,
		hitBreakpoint: NoBreakpoint,
		events:        make(chan KeyEvent, 64),
	}
	if s.notify == nil {
		s.notify = notifyStub{}
	}

	s.Mem = memory.NewMemory()

	roms, err := config.readROMs()
	if err != nil {
		return nil, err
	}
	for i, img := range roms {
		if err := s.Mem.LoadROM(i, img); err != nil {
			return nil, err
		}
	}

	s.ULA = ula.NewULA(*config.ULATimings, s.Mem)
	s.Random = random.NewRandom(s.ULA)
	s.Keyboard = keyboard.NewMatrix()
	s.Ports = ports.NewPorts()
	s.PSG = psg.NewTurboSound()
	s.Mixer = audio.NewMixer(s.PSG, config.ULATimings.FrameTStates())
	s.FDC = fdc.NewWD1793()
	s.Tape = tape.NewDeck()
	s.Tape.SeedNoise(s.Random.NoiseSeed())

	s.Z80 = cpu.NewCPU(fastBus{m: s})

	// contention applies to the model's screen pages
	switch config.Model {
	case Model48K:
		s.Mem.SetContendedRAM([]int{5})
	case Model128K:
		s.Mem.SetContendedRAM([]int{1, 3, 5, 7})
	}

	if err := s.attachDevices(); err != nil {
		return nil, err
	}

	if config.FloatingBusEnabled {
		s.Ports.FloatingBus = s.ULA.FloatingBus
	}

	s.Reset()

	logger.Logf("spectrum", "%s machine assembled (%d KiB RAM)", string(config.Model), config.RAMSizeKiB)

	return s, nil
}

// notifyStub swallows notifications when the collaborator does not care.
type notifyStub struct{}

func (notifyStub) Notify(_ notifications.Notice, _ interface{}) error {
	return nil
}

func (s *Spectrum) attachDevices() error {
	// the ULA answers on every even port
	if err := s.Ports.Attach("ula", 0x0001, 0x0000, feDevice{m: s}); err != nil {
		return err
	}

	if s.config.Model != Model48K {
		// 128K paging: bit 15 and bit 1 low
		if err := s.Ports.Attach("paging", 0x8002, 0x0000, pagingDevice{m: s}); err != nil {
			return err
		}
		// PSG: bit 15 high, bit 1 low; bit 14 separates select from data
		if err := s.Ports.Attach("psg", 0x8002, 0x8000, psgDevice{m: s}); err != nil {
			return err
		}
	}

	if s.config.TRDOSEnabled {
		// the Beta interface decodes the low byte only
		for _, p := range []uint16{0x1f, 0x3f, 0x5f, 0x7f, 0xff} {
			if err := s.Ports.Attach("beta", 0x00ff, p, betaDevice{m: s}); err != nil {
				return err
			}
		}
	}

	return nil
}

// numRAMPages returns the number of 16KiB RAM pages the configuration
// provides.
func (s *Spectrum) numRAMPages() int {
	return s.config.RAMSizeKiB / 16
}

// Config returns a copy of the machine configuration.
func (s *Spectrum) Config() Config {
	return s.config
}

// Reset performs a hardware reset.
func (s *Spectrum) Reset() {
	s.Z80.Reset()
	s.PSG.Reset()
	s.FDC.Reset()
	s.Keyboard.Reset()

	s.frameT = 0
	s.dosActive = false
	s.pagingLocked = false
	s.romSelect = 0
	s.last7FFD = 0
	s.lastFE = 0

	_ = s.Mem.SetROMPage(0)
	_ = s.Mem.SetRAMPage(1, 5)
	_ = s.Mem.SetRAMPage(2, 2)
	_ = s.Mem.SetRAMPage(3, 0)
	s.ULA.SetScreenPage(5)

	// power-on RAM pattern
	for p := 0; p < s.numRAMPages(); p++ {
		s.Random.Fill(s.Mem.RAMPage(p))
	}
}

// AttachInstrumentation plumbs the instrumented bus into the CPU and
// enables the memory counters. Must only be called while the emulation is
// not inside a Step.
func (s *Spectrum) AttachInstrumentation(in Instrumentation) {
	s.instrumentation = in
	s.Mem.EnableCounters()
	s.Z80.Plumb(debugBus{m: s})
}

// DetachInstrumentation restores the fast bus and discards the memory
// counters.
func (s *Spectrum) DetachInstrumentation() {
	s.instrumentation = nil
	s.Mem.DisableCounters()
	s.Z80.Plumb(fastBus{m: s})
}

// Instrumented returns true while the debug bus is attached.
func (s *Spectrum) Instrumented() bool {
	return s.instrumentation != nil
}

func (s *Spectrum) breakpointHit(id int) {
	s.hitBreakpoint = id
}

// DOSActive reports whether the TR-DOS ROM is paged in.
func (s *Spectrum) DOSActive() bool {
	return s.dosActive
}

// DOSROMPage returns the ROM page number that carries TR-DOS.
func (s *Spectrum) DOSROMPage() int {
	return s.model.romDOS
}

// trdosTraps implements the Beta interface's ROM switching: fetching from
// $3D00-$3DFF with the BASIC ROM paged swaps in the DOS ROM; fetching from
// RAM swaps it back out.
func (s *Spectrum) trdosTraps() {
	pc := s.Z80.PC

	if s.dosActive {
		if pc >= 0x4000 {
			s.dosActive = false
			_ = s.Mem.SetROMPage(s.currentROM())
		}
		return
	}

	if pc&0xff00 == 0x3d00 {
		if _, page := s.Mem.Window(0); page == s.model.romBASIC {
			s.dosActive = true
			_ = s.Mem.SetROMPage(s.model.romDOS)
		}
	}
}

// currentROM is the ROM page that should be visible given the 7FFD state.
func (s *Spectrum) currentROM() int {
	if s.config.Model == Model48K {
		return 0
	}
	return s.romSelect
}

// Step executes one CPU instruction and advances the raster and the sound
// by the consumed T-states. The returned breakpoint ID is NoBreakpoint in
// the usual case.
func (s *Spectrum) Step() (int, int) {
	if s.instrumentation != nil {
		if id := s.instrumentation.CheckExec(s.Z80.PC); id != NoBreakpoint {
			return 0, id
		}
	}

	if s.config.TRDOSEnabled && s.config.TRDOSTraps {
		s.trdosTraps()
	}

	spec := s.ULA.Spec()
	s.Z80.SetINT(s.frameT >= spec.IntStart && s.frameT < spec.IntStart+spec.IntLen)

	ts := s.Z80.ExecuteInstruction()
	s.frameT += ts

	s.ULA.AdvanceTo(s.frameT)
	s.Mixer.Step(s.frameT)

	brk := s.hitBreakpoint
	s.hitBreakpoint = NoBreakpoint

	return ts, brk
}

// StepNoBreak executes one instruction with the breakpoint checks
// suppressed. Counters still accumulate. Used by the run-n-cycles control
// call when breakpoints are to be skipped.
func (s *Spectrum) StepNoBreak() int {
	in := s.instrumentation
	s.instrumentation = nil
	ts, _ := s.Step()
	s.instrumentation = in
	return ts
}

// FrameTState returns the position within the current frame.
func (s *Spectrum) FrameTState() int {
	return s.frameT
}

// EndOfFrame returns true once the frame's T-state budget is consumed.
func (s *Spectrum) EndOfFrame() bool {
	return s.frameT >= s.ULA.Spec().FrameTStates()
}

// InitFrame starts a new frame.
func (s *Spectrum) InitFrame() {
	s.ULA.InitFrame()
	s.Mixer.InitFrame()
}

// FinishFrame completes the frame: buffers swap, the disk and tape
// housekeeping runs and queued key events drain into the matrix.
func (s *Spectrum) FinishFrame() {
	s.ULA.EndFrame()
	slice := s.Mixer.EndFrame()

	s.FDC.Advance(s.Z80.TotalTStates)

	s.drainKeyEvents()

	s.frameT -= s.ULA.Spec().FrameTStates()
	if s.frameT < 0 {
		s.frameT = 0
	}

	_ = s.notify.Notify(notifications.NotifyFrameRefresh, s.ULA.Framebuffer())
	_ = s.notify.Notify(notifications.NotifyAudioSlice, slice)
}

// RunFrame emulates one complete frame, returning the ID of the breakpoint
// that interrupted it, or NoBreakpoint if the frame completed.
func (s *Spectrum) RunFrame() int {
	s.InitFrame()

	for !s.EndOfFrame() {
		if _, brk := s.Step(); brk != NoBreakpoint {
			return brk
		}
	}

	s.FinishFrame()
	return NoBreakpoint
}

// KeyPressed queues a key press. Thread safe; the event takes effect at the
// next frame boundary.
func (s *Spectrum) KeyPressed(k keyboard.Key) {
	select {
	case s.events <- KeyEvent{Key: k, Pressed: true}:
	default:
		logger.Log("spectrum", "keyboard event queue full")
	}
}

// KeyReleased queues a key release.
func (s *Spectrum) KeyReleased(k keyboard.Key) {
	select {
	case s.events <- KeyEvent{Key: k, Pressed: false}:
	default:
		logger.Log("spectrum", "keyboard event queue full")
	}
}

func (s *Spectrum) drainKeyEvents() {
	for {
		select {
		case ev := <-s.events:
			if ev.Pressed {
				s.Keyboard.Press(ev.Key)
			} else {
				s.Keyboard.Release(ev.Key)
			}
		default:
			return
		}
	}
}
