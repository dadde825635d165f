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
	"bytes"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/hardware/tape"
	"github.com/jetsetilly/gopherzx/logger"
)

// tzxSignature begins every TZX file.
var tzxSignature = []byte("ZXTape!\x1a")

// HardwareUsage is how a TZX hardware record qualifies a device.
type HardwareUsage int

// List of usage values.
const (
	HardwareRuns HardwareUsage = iota
	HardwareUsesFeatures
	HardwareRunsWithoutFeatures
	HardwareIncompatible
)

// HardwareEntry is one device of a TZX hardware compatibility record.
type HardwareEntry struct {
	Type  int
	ID    int
	Usage HardwareUsage
}

// TZX is the decoded file: the playable tape blocks plus the metadata
// blocks this emulator cares about.
type TZX struct {
	Blocks   []tape.Block
	Hardware []HardwareEntry
}

// ParseTZX decodes a TZX file. Standard speed and pure data blocks become
// playable tape blocks; metadata blocks are collected or skipped by their
// declared lengths; unknown block IDs are skipped by the extension rule.
func ParseTZX(data []uint8) (TZX, error) {
	var out TZX

	if len(data) < 10 || !bytes.Equal(data[:8], tzxSignature) {
		return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: bad signature"))
	}

	le16 := func(o int) int { return int(data[o]) | int(data[o+1])<<8 }
	le24 := func(o int) int { return le16(o) | int(data[o+2])<<16 }
	le32 := func(o int) int { return le24(o) | int(data[o+3])<<24 }

	offset := 10
	for offset < len(data) {
		id := data[offset]
		offset++

		need := func(n int) bool { return offset+n <= len(data) }

		switch id {
		case 0x10: // standard speed data
			if !need(4) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 10"))
			}
			pause := le16(offset)
			size := le16(offset + 2)
			offset += 4
			if !need(size) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 10 payload"))
			}

			payload := make([]uint8, size)
			copy(payload, data[offset:offset+size])
			offset += size

			b := tape.Block{Flag: payload[0], Data: payload}
			pilot := tape.PilotCountData
			if b.IsHeader() {
				pilot = tape.PilotCountHeader
			}
			b.GenerateBitstreamTimed(tape.PilotHalfPeriod, tape.Sync1, tape.Sync2,
				tape.ZeroHalfPeriod, tape.OneHalfPeriod, pilot, pause)
			out.Blocks = append(out.Blocks, b)

		case 0x11: // turbo speed data
			if !need(18) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 11"))
			}
			pilot := le16(offset)
			sync1 := le16(offset + 2)
			sync2 := le16(offset + 4)
			zero := le16(offset + 6)
			one := le16(offset + 8)
			pilotCount := le16(offset + 10)
			pause := le16(offset + 13)
			size := le24(offset + 15)
			offset += 18
			if !need(size) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 11 payload"))
			}

			payload := make([]uint8, size)
			copy(payload, data[offset:offset+size])
			offset += size

			b := tape.Block{Flag: payload[0], Data: payload}
			b.GenerateBitstreamTimed(pilot, sync1, sync2, zero, one, pilotCount, pause)
			out.Blocks = append(out.Blocks, b)

		case 0x12: // pure tone
			if !need(4) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 12"))
			}
			length := le16(offset)
			count := le16(offset + 2)
			offset += 4

			b := tape.Block{Flag: tape.FlagData}
			timings := make([]uint32, count)
			for i := range timings {
				timings[i] = uint32(length)
			}
			b.EdgePulseTimings = timings
			out.Blocks = append(out.Blocks, b)

		case 0x13: // pulse sequence
			if !need(1) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 13"))
			}
			count := int(data[offset])
			offset++
			if !need(count * 2) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 13 pulses"))
			}

			b := tape.Block{Flag: tape.FlagData}
			for i := 0; i < count; i++ {
				b.EdgePulseTimings = append(b.EdgePulseTimings, uint32(le16(offset)))
				offset += 2
			}
			out.Blocks = append(out.Blocks, b)

		case 0x14: // pure data
			if !need(10) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 14"))
			}
			zero := le16(offset)
			one := le16(offset + 2)
			pause := le16(offset + 5)
			size := le24(offset + 7)
			offset += 10
			if !need(size) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 14 payload"))
			}

			payload := make([]uint8, size)
			copy(payload, data[offset:offset+size])
			offset += size

			b := tape.Block{Flag: payload[0], Data: payload}
			b.GenerateBitstreamTimed(0, 0, 0, zero, one, 0, pause)
			out.Blocks = append(out.Blocks, b)

		case 0x20: // pause / stop the tape
			if !need(2) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 20"))
			}
			pause := le16(offset)
			offset += 2
			if pause > 0 {
				b := tape.Block{Flag: tape.FlagData}
				b.EdgePulseTimings = []uint32{uint32(pause * tape.TStatesPerMillisecond)}
				out.Blocks = append(out.Blocks, b)
			}

		case 0x21: // group start
			if !need(1) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 21"))
			}
			offset += 1 + int(data[offset])

		case 0x22: // group end
			// no body

		case 0x30: // text description
			if !need(1) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 30"))
			}
			offset += 1 + int(data[offset])

		case 0x32: // archive info
			if !need(2) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 32"))
			}
			offset += 2 + le16(offset)

		case 0x33: // hardware type
			if !need(1) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 33"))
			}
			count := int(data[offset])
			offset++
			if !need(count * 3) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated block 33 entries"))
			}
			for i := 0; i < count; i++ {
				out.Hardware = append(out.Hardware, HardwareEntry{
					Type:  int(data[offset]),
					ID:    int(data[offset+1]),
					Usage: HardwareUsage(data[offset+2]),
				})
				offset += 3
			}

		default:
			// the extension rule: every unknown block begins with a 32 bit
			// length
			if !need(4) {
				return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: truncated unknown block %02x", id))
			}
			size := le32(offset)
			offset += 4 + size
			logger.Logf("tzx", "skipped unknown block %02x (%d bytes)", id, size)
		}

		if offset > len(data) {
			return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: block %02x overruns file", id))
		}
	}

	if len(out.Blocks) == 0 && len(out.Hardware) == 0 {
		return out, curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: no usable blocks"))
	}

	return out, nil
}

// LoadTZX parses a TZX file and inserts its playable blocks into the
// machine's tape deck.
func LoadTZX(mach *spectrum.Spectrum, data []uint8) error {
	t, err := ParseTZX(data)
	if err != nil {
		return err
	}
	if len(t.Blocks) == 0 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("TZX: no playable blocks"))
	}
	mach.Tape.Insert(t.Blocks)
	return nil
}
