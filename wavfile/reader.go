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

package wavfile

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/gopherzx/curated"
)

// Info summarises the fmt chunk of a WAV file.
type Info struct {
	AudioFormat   Format
	NumChannels   int
	SampleRate    int
	BitsPerSample int
}

// ReadInfo returns the fmt chunk summary without decoding any samples.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, curated.Errorf(ReadError, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Info{}, curated.Errorf(ReadError, err)
	}

	return Info{
		AudioFormat:   Format(d.WavAudioFormat),
		NumChannels:   int(d.NumChans),
		SampleRate:    int(d.SampleRate),
		BitsPerSample: int(d.BitDepth),
	}, nil
}

// ReadIntFrames decodes a PCM file into interleaved 16 bit samples.
func ReadIntFrames(path string) (Info, []int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, nil, curated.Errorf(ReadError, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Info{}, nil, curated.Errorf(ReadError, err)
	}

	info := Info{
		AudioFormat:   Format(d.WavAudioFormat),
		NumChannels:   int(d.NumChans),
		SampleRate:    int(d.SampleRate),
		BitsPerSample: int(d.BitDepth),
	}

	pcm := make([]int16, len(buf.Data))
	shift := uint(0)
	if info.BitsPerSample > 16 {
		shift = uint(info.BitsPerSample - 16)
	}
	for i, s := range buf.Data {
		pcm[i] = int16(s >> shift)
	}

	return info, pcm, nil
}

// ReadFloatFrames decodes an IEEE float file into interleaved float32
// samples. The wav decoder does not handle the float format, so the chunks
// are walked with the riff parser directly; non-data chunks are skipped.
func ReadFloatFrames(path string) (Info, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, nil, curated.Errorf(ReadError, err)
	}
	defer f.Close()

	p := riff.New(f)
	if err := p.ParseHeaders(); err != nil {
		return Info{}, nil, curated.Errorf(ReadError, err)
	}

	var info Info
	var data []uint8

	for {
		chunk, err := p.NextChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Info{}, nil, curated.Errorf(ReadError, err)
		}

		switch chunk.ID {
		case riff.FmtID:
			if err := chunk.DecodeWavHeader(p); err != nil {
				return Info{}, nil, curated.Errorf(ReadError, err)
			}
			info = Info{
				AudioFormat:   Format(p.WavAudioFormat),
				NumChannels:   int(p.NumChannels),
				SampleRate:    int(p.SampleRate),
				BitsPerSample: int(p.BitsPerSample),
			}
		case riff.DataFormatID:
			data = make([]uint8, chunk.Size)
			if _, err := io.ReadFull(chunk.R, data); err != nil {
				return Info{}, nil, curated.Errorf(ReadError, err)
			}
		default:
			chunk.Drain()
		}

		if info.NumChannels != 0 && data != nil {
			break
		}
	}

	if info.AudioFormat != FormatFloat || info.BitsPerSample != 32 {
		return Info{}, nil, curated.Errorf(ReadError, curated.Errorf("not an IEEE float file"))
	}

	samples := make([]float32, len(data)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		samples[i] = math.Float32frombits(bits)
	}

	return info, samples, nil
}
