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

// Package notifications allows the emulation to communicate events to the
// host environment. The original design this emulator is based on used a
// string-topic message bus for the purpose; here every notice is a typed
// value and registration is explicit.
package notifications

// Notice describes the category of a notification.
type Notice string

// List of defined notices.
const (
	// a frame has completed and the visible framebuffer index has swapped
	NotifyFrameRefresh Notice = "frame refresh"

	// an audio slice for the completed frame is available
	NotifyAudioSlice Notice = "audio slice"

	// a breakpoint has been hit and the emulation is now paused. the payload
	// is the breakpoint ID
	NotifyBreakpoint Notice = "breakpoint"

	// tape deck events
	NotifyTapeStarted Notice = "tape started"
	NotifyTapeStopped Notice = "tape stopped"

	// disk activity (motor on/off)
	NotifyDiskActivity Notice = "disk activity"

	// emulation state transitions requested from outside the main loop
	NotifyPause  Notice = "pause"
	NotifyResume Notice = "resume"
)

// Notify is implemented by the environment that wants to receive notices
// from the emulation.
type Notify interface {
	// Notify should not block and must tolerate being called from the
	// emulation goroutine.
	Notify(notice Notice, payload interface{}) error
}
