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

package loaders

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/hardware/tape"
	"github.com/jetsetilly/gopherzx/logger"
	"github.com/jetsetilly/gopherzx/wavfile"
)

// the Schmitt trigger thresholds for squaring up an analogue tape signal,
// as fractions of full scale. the gap between them rejects hiss around the
// zero crossing.
const (
	triggerHigh = 0.08
	triggerLow  = -0.08
)

// the Spectrum's CPU clock, for converting sample periods to T-states.
const cpuClock = 3500000.0

// LoadAudioTape decodes an audio recording of a tape (WAV or MP3) into
// edge pulses and inserts the result into the machine's tape deck.
//
// No attempt is made to interpret the recording: it becomes one tape block
// whose edges are exactly the zero crossings of the squared-up signal. The
// ROM loader does the rest, just as it did from a real cassette player.
func LoadAudioTape(mach *spectrum.Spectrum, path string) error {
	var mono []float64
	var rate int
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		mono, rate, err = readWAVMono(path)
	case ".mp3":
		mono, rate, err = readMP3Mono(path)
	default:
		return curated.Errorf(UnsupportedMedia, filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if len(mono) == 0 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("audio tape: empty recording"))
	}

	block, edges := audioToEdges(mono, rate)
	if edges == 0 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("audio tape: no signal edges found"))
	}

	logger.Logf("loaders", "audio tape: %d edges from %.1fs of audio", edges, float64(len(mono))/float64(rate))

	mach.Tape.Insert([]tape.Block{block})
	return nil
}

func readWAVMono(path string) ([]float64, int, error) {
	info, pcm, err := wavfile.ReadIntFrames(path)
	if err != nil {
		return nil, 0, err
	}
	if info.NumChannels < 1 {
		return nil, 0, curated.Errorf(ImageFormatInvalid, curated.Errorf("audio tape: no channels"))
	}

	mono := make([]float64, 0, len(pcm)/info.NumChannels)
	for i := 0; i+info.NumChannels <= len(pcm); i += info.NumChannels {
		var acc float64
		for c := 0; c < info.NumChannels; c++ {
			acc += float64(pcm[i+c])
		}
		mono = append(mono, acc/float64(info.NumChannels)/32768)
	}

	return mono, info.SampleRate, nil
}

func readMP3Mono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, curated.Errorf(IoFailure, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, curated.Errorf(ImageFormatInvalid, err)
	}

	// the decoder always produces 16 bit stereo
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, curated.Errorf(ImageFormatInvalid, err)
	}

	mono := make([]float64, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		l := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
		r := int16(uint16(raw[i+2]) | uint16(raw[i+3])<<8)
		mono = append(mono, (float64(l)+float64(r))/2/32768)
	}

	return mono, dec.SampleRate(), nil
}

// audioToEdges squares the signal with a Schmitt trigger and measures the
// distance between level changes in T-states.
func audioToEdges(mono []float64, rate int) (tape.Block, int) {
	tsPerSample := cpuClock / float64(rate)

	b := tape.Block{Flag: tape.FlagData}

	level := mono[0] > 0
	lastEdge := 0
	var total uint64

	for i, v := range mono {
		var next bool
		switch {
		case v > triggerHigh:
			next = true
		case v < triggerLow:
			next = false
		default:
			continue
		}

		if next != level {
			duration := uint32(float64(i-lastEdge) * tsPerSample)
			if duration > 0 {
				b.EdgePulseTimings = append(b.EdgePulseTimings, duration)
				total += uint64(duration)
			}
			lastEdge = i
			level = next
		}
	}

	b.TotalTStates = total
	return b, len(b.EdgePulseTimings)
}
