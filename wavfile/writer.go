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

// Package wavfile reads and writes RIFF/WAVE files.
//
// The layout written matches what the original emulator's bundled tinywav
// produced: a 16 byte fmt chunk (PCM or IEEE float), a data chunk, and the
// two running sizes rewritten on close. On reading, chunks other than fmt
// and data are skipped.
//
// The audio subsystem uses a Writer as its capture sink, so a recording of
// the emulated audio stream is a single AttachCapture call away.
package wavfile

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/gopherzx/curated"
)

// error patterns for the wavfile package.
const (
	WriteError = "wav write error: %v"
	ReadError  = "wav read error: %v"
)

// Format is the fmt chunk's audio format word.
type Format int

// List of supported formats.
const (
	FormatPCM   Format = 1
	FormatFloat Format = 3
)

// Writer emits a WAV file.
type Writer struct {
	f   *os.File
	enc *wav.Encoder

	channels   int
	sampleRate int
}

// NewWriter creates a WAV file. bitDepth must agree with the format:
// FormatFloat implies 32 bit samples.
func NewWriter(path string, channels int, sampleRate int, bitDepth int, format Format) (*Writer, error) {
	if format == FormatFloat && bitDepth != 32 {
		return nil, curated.Errorf(WriteError, curated.Errorf("float format requires 32 bit samples"))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, curated.Errorf(WriteError, err)
	}

	return &Writer{
		f:          f,
		enc:        wav.NewEncoder(f, sampleRate, bitDepth, channels, int(format)),
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// NewCaptureWriter creates a writer matching the emulated audio stream:
// 16 bit PCM stereo at the mixer's rate.
func NewCaptureWriter(path string, sampleRate int) (*Writer, error) {
	return NewWriter(path, 2, sampleRate, 16, FormatPCM)
}

// WriteFrames writes interleaved 16 bit PCM. Implements the audio
// package's CaptureSink interface.
func (w *Writer) WriteFrames(pcm []int16) error {
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.channels,
			SampleRate:  w.sampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, len(pcm)),
	}
	for i, s := range pcm {
		buf.Data[i] = int(s)
	}

	if err := w.enc.Write(buf); err != nil {
		return curated.Errorf(WriteError, err)
	}
	return nil
}

// WriteFloatFrames writes interleaved float32 samples.
func (w *Writer) WriteFloatFrames(samples []float32) error {
	for _, s := range samples {
		if err := w.enc.WriteFrame(s); err != nil {
			return curated.Errorf(WriteError, err)
		}
	}
	return nil
}

// WriteFloatChannels writes one slice per channel (the split layout),
// interleaving them into the file.
func (w *Writer) WriteFloatChannels(channels ...[]float32) error {
	if len(channels) != w.channels {
		return curated.Errorf(WriteError, curated.Errorf("expected %d channels, got %d", w.channels, len(channels)))
	}
	if len(channels) == 0 {
		return nil
	}

	frames := len(channels[0])
	for _, c := range channels[1:] {
		if len(c) != frames {
			return curated.Errorf(WriteError, curated.Errorf("channel lengths differ"))
		}
	}

	for i := 0; i < frames; i++ {
		for _, c := range channels {
			if err := w.enc.WriteFrame(c[i]); err != nil {
				return curated.Errorf(WriteError, err)
			}
		}
	}
	return nil
}

// Close finalises the chunk sizes and closes the file.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return curated.Errorf(WriteError, err)
	}
	if err := w.f.Close(); err != nil {
		return curated.Errorf(WriteError, err)
	}
	return nil
}
