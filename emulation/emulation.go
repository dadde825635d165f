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

// Package emulation owns the execution thread of the machine and the
// control API that collaborators use to drive it.
//
// The machine is exclusively owned by the execution goroutine while the
// state is Running. While Paused, ownership is on loan to whichever
// goroutine paused it: the debugger or UI may inspect and mutate freely and
// promises not to call the step functions of the machine directly.
//
// Pausing is cooperative. The execution goroutine observes the pause
// request at a frame boundary (or mid-frame at a breakpoint), parks on a
// condition variable and signals the requester, so that Pause() does not
// return before the machine has genuinely suspended. Stop is also
// non-preemptive and is honoured from inside a pause park.
package emulation

import (
	"sync"
	"time"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/debugger/govern"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/notifications"
)

// error patterns for the emulation package.
const (
	StateForbidden = "state forbidden: %v"
)

// Emulator couples a machine with an execution thread.
type Emulator struct {
	Machine *spectrum.Spectrum

	crit sync.Mutex
	cond *sync.Cond

	state govern.State

	pauseRequest bool
	stopRequest  bool

	// Throttle limits execution to the machine's frame rate. without it
	// the emulation runs as fast as the host allows
	Throttle bool

	notify notifications.Notify

	// running goroutine bookkeeping
	done chan error
}

// NewEmulator initialises the machine from the configuration. A failed
// initialisation surfaces the reason and leaves nothing behind.
func NewEmulator(config spectrum.Config, notify notifications.Notify) (*Emulator, error) {
	mach, err := spectrum.NewSpectrum(config, notify)
	if err != nil {
		return nil, err
	}

	e := &Emulator{
		Machine:  mach,
		state:    govern.EmulatorStart,
		notify:   notify,
		Throttle: true,
	}
	e.cond = sync.NewCond(&e.crit)

	if e.notify == nil {
		e.notify = stubNotify{}
	}

	return e, nil
}

type stubNotify struct{}

func (stubNotify) Notify(_ notifications.Notice, _ interface{}) error {
	return nil
}

// State returns the current execution state.
func (e *Emulator) State() govern.State {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.state
}

func (e *Emulator) setState(s govern.State) {
	e.state = s
	e.cond.Broadcast()
}

// StartAsync launches the execution goroutine. The emulator must not
// already be running.
func (e *Emulator) StartAsync() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.state == govern.Running || e.state == govern.Stepping {
		return curated.Errorf(StateForbidden, "already running")
	}

	e.stopRequest = false
	e.pauseRequest = false
	e.setState(govern.Running)
	e.done = make(chan error, 1)

	go func() {
		e.done <- e.loop()
	}()

	return nil
}

// StartSync runs the execution loop in the calling goroutine, returning
// when Stop() is called from elsewhere.
func (e *Emulator) StartSync() error {
	e.crit.Lock()
	if e.state == govern.Running || e.state == govern.Stepping {
		e.crit.Unlock()
		return curated.Errorf(StateForbidden, "already running")
	}
	e.stopRequest = false
	e.pauseRequest = false
	e.setState(govern.Running)
	e.crit.Unlock()

	return e.loop()
}

// the execution loop. frame based: pause and stop are honoured at frame
// boundaries and at breakpoints.
func (e *Emulator) loop() error {
	frameDuration := 20 * time.Millisecond
	next := time.Now()

	for {
		e.crit.Lock()
		if e.stopRequest {
			e.setState(govern.Ending)
			e.crit.Unlock()
			return nil
		}
		for e.pauseRequest {
			e.setState(govern.Paused)
			e.cond.Wait()
			if e.stopRequest {
				e.setState(govern.Ending)
				e.crit.Unlock()
				return nil
			}
		}
		e.setState(govern.Running)
		e.crit.Unlock()

		brk := e.Machine.RunFrame()
		if brk != spectrum.NoBreakpoint {
			_ = e.notify.Notify(notifications.NotifyBreakpoint, brk)
			e.crit.Lock()
			e.pauseRequest = true
			e.crit.Unlock()
			continue
		}

		if e.Throttle {
			next = next.Add(frameDuration)
			d := time.Until(next)
			if d > 0 {
				time.Sleep(d)
			} else {
				next = time.Now()
			}
		}
	}
}

// Stop requests the execution loop to unwind. Blocks until it has.
func (e *Emulator) Stop() error {
	e.crit.Lock()
	if e.state != govern.Running && e.state != govern.Paused && e.state != govern.Stepping {
		e.crit.Unlock()
		return curated.Errorf(StateForbidden, "not running")
	}
	e.stopRequest = true
	e.cond.Broadcast()
	done := e.done
	e.crit.Unlock()

	if done != nil {
		<-done
	}
	return nil
}

// Pause requests suspension and blocks until the execution goroutine has
// genuinely parked. Safe to call from the UI thread.
func (e *Emulator) Pause() {
	e.crit.Lock()
	defer e.crit.Unlock()

	e.pauseRequest = true
	e.cond.Broadcast()
	for e.state == govern.Running || e.state == govern.Stepping {
		e.cond.Wait()
	}
}

// Resume releases a paused emulator.
func (e *Emulator) Resume() {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.pauseRequest = false
	e.cond.Broadcast()
}

// Paused returns true while the execution goroutine is parked.
func (e *Emulator) Paused() bool {
	return e.State() == govern.Paused
}

// Reset performs a hardware reset. Legal while paused or before starting.
func (e *Emulator) Reset() error {
	e.crit.Lock()
	defer e.crit.Unlock()
	if e.state == govern.Running || e.state == govern.Stepping {
		return curated.Errorf(StateForbidden, "reset while running")
	}
	e.Machine.Reset()
	return nil
}

// StepInstruction executes a single instruction. Only legal while paused
// (or before the emulator has started).
func (e *Emulator) StepInstruction() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.state == govern.Running {
		return curated.Errorf(StateForbidden, "step while running")
	}

	e.state = govern.Stepping
	if e.Machine.EndOfFrame() {
		e.Machine.FinishFrame()
		e.Machine.InitFrame()
	}
	_, _ = e.Machine.Step()
	e.state = govern.Paused

	return nil
}

// StepFrame runs the machine to the end of the current frame. Only legal
// while paused.
func (e *Emulator) StepFrame() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.state == govern.Running {
		return curated.Errorf(StateForbidden, "step while running")
	}

	e.state = govern.Stepping
	_ = e.Machine.RunFrame()
	e.state = govern.Paused

	return nil
}

// RunNCycles executes instructions until at least n T-states have been
// consumed. With skipBreakpoints set, breakpoint hits do not end the run
// early. Only legal while paused.
func (e *Emulator) RunNCycles(n uint64, skipBreakpoints bool) (uint64, error) {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.state == govern.Running {
		return 0, curated.Errorf(StateForbidden, "run while running")
	}

	e.state = govern.Stepping
	defer func() { e.state = govern.Paused }()

	var consumed uint64
	for consumed < n {
		if e.Machine.EndOfFrame() {
			e.Machine.FinishFrame()
			e.Machine.InitFrame()
		}

		if skipBreakpoints {
			consumed += uint64(e.Machine.StepNoBreak())
			continue
		}

		ts, brk := e.Machine.Step()
		consumed += uint64(ts)
		if brk != spectrum.NoBreakpoint {
			_ = e.notify.Notify(notifications.NotifyBreakpoint, brk)
			return consumed, nil
		}
	}

	return consumed, nil
}
