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

// Package audio mixes the PSG channels and the beeper into the outgoing PCM
// stream.
//
// Mixing happens in an oversampled domain: for every output sample the PSG
// is advanced DecimateFactor times, each step interpolated and pushed
// through the 192 tap FIR, and the filter output is decimated down to the
// host rate. Beeper edges are applied at the T-state they occurred before
// the stream reaches the filter.
package audio

import (
	"sync/atomic"

	"github.com/jetsetilly/gopherzx/hardware/psg"
)

// the fixed output format: 44100Hz signed 16 bit stereo, one frame of
// emulation producing 20ms of audio.
const (
	SampleRate      = 44100
	SamplesPerFrame = 882
)

// Panning arranges the three PSG channels in the stereo field.
type Panning int

// List of panning arrangements.
const (
	PanningABC Panning = iota
	PanningACB
	PanningMono
)

func (p Panning) String() string {
	switch p {
	case PanningABC:
		return "ABC"
	case PanningACB:
		return "ACB"
	}
	return "mono"
}

// per-channel stereo weights for each arrangement.
var panWeights = map[Panning][3][2]float64{
	PanningABC:  {{0.9, 0.1}, {0.5, 0.5}, {0.1, 0.9}},
	PanningACB:  {{0.9, 0.1}, {0.1, 0.9}, {0.5, 0.5}},
	PanningMono: {{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}},
}

// a beeper edge waiting to be mixed.
type beeperEdge struct {
	tstate int
	level  float64
}

// CaptureSink receives every completed PCM frame. Implemented by the
// wavfile writer.
type CaptureSink interface {
	WriteFrames(pcm []int16) error
}

// Mixer combines the sound sources and produces the per-frame PCM slice.
type Mixer struct {
	Chips *psg.TurboSound

	panning Panning

	// frame geometry
	frameTStates int

	// T-states per oversampled step and the PSG cycles (fractional) per
	// step
	tsPerStep  float64
	psgPerStep float64

	psgRemainder float64

	// the position of the oversampler within the frame, in T-states
	pos float64

	// the number of output samples generated so far this frame
	samples int

	beeperLevel float64
	edges       []beeperEdge

	firL *FIR
	firR *FIR
	ipL  Interpolator
	ipR  Interpolator

	// double buffered output. the visible buffer is complete; the back
	// buffer is being filled
	buffers [2][]int16
	visible int32

	capture CaptureSink
}

// NewMixer is the preferred method of initialisation for the Mixer type.
// frameTStates is the length of the video frame the audio must stretch to.
func NewMixer(chips *psg.TurboSound, frameTStates int) *Mixer {
	m := &Mixer{
		Chips: chips,
		firL:  NewFIR(0.5 / DecimateFactor),
		firR:  NewFIR(0.5 / DecimateFactor),
	}
	m.buffers[0] = make([]int16, SamplesPerFrame*2)
	m.buffers[1] = make([]int16, SamplesPerFrame*2)
	m.SetFrameTStates(frameTStates)
	return m
}

// SetFrameTStates tells the mixer how many T-states one video frame lasts.
func (m *Mixer) SetFrameTStates(frameTStates int) {
	m.frameTStates = frameTStates
	steps := float64(SamplesPerFrame * DecimateFactor)
	m.tsPerStep = float64(frameTStates) / steps

	// the PSG clock is half the CPU clock
	m.psgPerStep = m.tsPerStep / 2
}

// SetPanning selects the stereo arrangement.
func (m *Mixer) SetPanning(p Panning) {
	m.panning = p
}

// AttachCapture installs a sink that receives every completed frame of PCM.
// A nil sink detaches.
func (m *Mixer) AttachCapture(sink CaptureSink) {
	m.capture = sink
}

// InitFrame prepares the back buffer for a new frame.
func (m *Mixer) InitFrame() {
	m.pos = 0
	m.samples = 0
	m.psgRemainder = 0
	m.edges = m.edges[:0]

	back := m.buffers[1-atomic.LoadInt32(&m.visible)]
	for i := range back {
		back[i] = 0
	}
}

// SetBeeper registers a beeper change at a T-state. The value is the
// EAR/MIC pair from a port $FE write: EAR swings the output fully, MIC
// contributes a quarter.
func (m *Mixer) SetBeeper(earmic uint8, tstate int) {
	level := 0.0
	if earmic&0x10 != 0 {
		level += 0.8
	}
	if earmic&0x08 != 0 {
		level += 0.2
	}
	m.edges = append(m.edges, beeperEdge{tstate: tstate, level: level})
}

// Step advances sound generation up to the frame T-state.
func (m *Mixer) Step(tstate int) {
	back := m.buffers[1-atomic.LoadInt32(&m.visible)]
	weights := panWeights[m.panning]

	for m.samples < SamplesPerFrame {
		// the frame position after the next full output sample
		next := m.pos + m.tsPerStep*DecimateFactor
		if next > float64(tstate) {
			break
		}

		for s := 0; s < DecimateFactor; s++ {
			m.pos += m.tsPerStep

			// apply any beeper edges we have passed
			for len(m.edges) > 0 && float64(m.edges[0].tstate) <= m.pos {
				m.beeperLevel = m.edges[0].level
				m.edges = m.edges[1:]
			}

			// advance the PSG by the whole cycles accumulated
			m.psgRemainder += m.psgPerStep
			cycles := int(m.psgRemainder)
			m.psgRemainder -= float64(cycles)
			m.Chips.Clock(cycles)

			a, b, c := m.Chips.Channels()

			// scale the summed two-chip output to roughly unity
			fa := float64(a) / 131070
			fb := float64(b) / 131070
			fc := float64(c) / 131070

			l := fa*weights[0][0] + fb*weights[1][0] + fc*weights[2][0] + m.beeperLevel*0.5
			r := fa*weights[0][1] + fb*weights[1][1] + fc*weights[2][1] + m.beeperLevel*0.5

			m.firL.Push(m.ipL.Interpolate(l, m.psgRemainder))
			m.firR.Push(m.ipR.Interpolate(r, m.psgRemainder))
		}

		l := m.firL.Output()
		r := m.firR.Output()

		back[m.samples*2] = clampPCM(l)
		back[m.samples*2+1] = clampPCM(r)
		m.samples++
	}
}

// clampPCM converts the unity-range float to a 16 bit sample.
func clampPCM(v float64) int16 {
	v *= 32767 * 0.8
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// EndFrame completes the frame: remaining samples are generated, the
// visible buffer swaps and the capture sink (if any) receives the slice.
func (m *Mixer) EndFrame() []int16 {
	m.Step(m.frameTStates)

	// rounding may leave the last sample ungenerated; pad from the filter
	back := m.buffers[1-atomic.LoadInt32(&m.visible)]
	for m.samples < SamplesPerFrame {
		back[m.samples*2] = clampPCM(m.firL.Output())
		back[m.samples*2+1] = clampPCM(m.firR.Output())
		m.samples++
	}

	atomic.StoreInt32(&m.visible, 1-atomic.LoadInt32(&m.visible))

	slice := m.Slice()
	if m.capture != nil {
		_ = m.capture.WriteFrames(slice)
	}
	return slice
}

// Slice returns the most recently completed frame of interleaved stereo
// PCM.
func (m *Mixer) Slice() []int16 {
	return m.buffers[atomic.LoadInt32(&m.visible)]
}
