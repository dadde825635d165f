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

package loaders_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/fdc"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/loaders"
	"github.com/jetsetilly/gopherzx/test"
)

func newMachine(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	mach, err := spectrum.NewSpectrum(spectrum.Config{Model: spectrum.Model48K}, nil)
	test.ExpectSuccess(t, err)
	mach.Random.ZeroSeed = true
	return mach
}

// a valid TAP block: length prefix, flag, payload, XOR checksum.
func tapBlock(flag uint8, payload ...uint8) []uint8 {
	body := append([]uint8{flag}, payload...)
	body = append(body, loaders.TAPChecksum(body))
	out := []uint8{uint8(len(body)), uint8(len(body) >> 8)}
	return append(out, body...)
}

func TestTAPParse(t *testing.T) {
	data := tapBlock(0x00, 0x03, 'R', 'O', 'M', ' ', ' ', ' ', ' ', ' ', ' ', ' ', 0x02, 0x00, 0x00, 0x00, 0x00, 0x80)
	data = append(data, tapBlock(0xff, 0xf3, 0xaf)...)

	blocks, err := loaders.ParseTAP(data)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(blocks), 2)
	test.ExpectSuccess(t, blocks[0].IsHeader())
	test.ExpectFailure(t, blocks[1].IsHeader())
}

func TestTAPChecksumInvariant(t *testing.T) {
	// a block is valid iff the checksum byte equals the XOR of the rest
	good := []uint8{0xff, 0x01, 0x02, 0xfc}
	test.ExpectSuccess(t, loaders.ValidTAPBlock(good))

	bad := []uint8{0xff, 0x01, 0x02, 0xfd}
	test.ExpectFailure(t, loaders.ValidTAPBlock(bad))

	// fewer than three bytes is never valid
	test.ExpectFailure(t, loaders.ValidTAPBlock([]uint8{0xff, 0xff}))
}

func TestTAPRejection(t *testing.T) {
	mach := newMachine(t)

	// truncated block
	err := loaders.LoadTAP(mach, []uint8{0x13, 0x00, 0x00})
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))

	// the deck is untouched
	test.ExpectEquality(t, len(mach.Tape.Blocks()), 0)
}

func TestTZXHardwareRecord(t *testing.T) {
	data := []uint8("ZXTape!\x1a")
	data = append(data, 1, 20) // version

	// hardware block: two entries
	data = append(data, 0x33, 2,
		0x00, 0x03, 0x01, // computer: 128K, uses features
		0x05, 0x00, 0x03) // joystick: incompatible

	tzx, err := loaders.ParseTZX(data)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(tzx.Hardware), 2)
	test.ExpectEquality(t, tzx.Hardware[0].Type, 0)
	test.ExpectEquality(t, tzx.Hardware[0].ID, 3)
	test.ExpectEquality(t, tzx.Hardware[0].Usage, loaders.HardwareUsesFeatures)
	test.ExpectEquality(t, tzx.Hardware[1].Usage, loaders.HardwareIncompatible)
}

func TestTZXUnknownBlockSkipped(t *testing.T) {
	data := []uint8("ZXTape!\x1a")
	data = append(data, 1, 20)

	// an unknown block with a 4 byte length and 2 bytes of body
	data = append(data, 0x77, 2, 0, 0, 0, 0xaa, 0xbb)

	// then a recognisable pure tone block
	data = append(data, 0x12, 0x78, 0x08, 10, 0)

	tzx, err := loaders.ParseTZX(data)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(tzx.Blocks), 1)
	test.ExpectEquality(t, len(tzx.Blocks[0].EdgePulseTimings), 10)
	test.ExpectEquality(t, tzx.Blocks[0].EdgePulseTimings[0], uint32(0x0878))
}

func TestTZXRejection(t *testing.T) {
	mach := newMachine(t)

	err := loaders.LoadTZX(mach, []uint8("NotATape"))
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))
	test.ExpectEquality(t, len(mach.Tape.Blocks()), 0)
}

func TestSNARejection(t *testing.T) {
	mach := newMachine(t)
	pc := mach.Z80.PC

	// undersized file
	err := loaders.LoadSNA(mach, make([]uint8, 1000))
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))

	// machine untouched
	test.ExpectEquality(t, mach.Z80.PC, pc)
}

func TestSNA48K(t *testing.T) {
	mach := newMachine(t)

	data := make([]uint8, 27+48*1024)
	data[22] = 0x12                 // A
	data[21] = 0x34                 // F
	data[23], data[24] = 0x00, 0x80 // SP = 0x8000
	data[25] = 1                    // IM
	data[19] = 0x04                 // IFF2

	// the stacked PC at 0x8000. bank layout in the file: 5 (4000-7fff),
	// 2 (8000-bfff), 0 (c000-ffff)
	data[27+16*1024+0] = 0x34
	data[27+16*1024+1] = 0x12

	test.ExpectSuccess(t, loaders.LoadSNA(mach, data))
	test.ExpectEquality(t, mach.Z80.A, uint8(0x12))
	test.ExpectEquality(t, mach.Z80.F, uint8(0x34))
	test.ExpectEquality(t, mach.Z80.IM, uint8(1))
	test.ExpectSuccess(t, mach.Z80.IFF1)
	test.ExpectEquality(t, mach.Z80.PC, uint16(0x1234))
	test.ExpectEquality(t, mach.Z80.SP, uint16(0x8002))
	test.ExpectEquality(t, mach.Mem.RAMPage(2)[0], uint8(0x34))
}

func TestZ80V1Compressed(t *testing.T) {
	mach := newMachine(t)

	header := make([]uint8, 30)
	header[0] = 0xaa                  // A
	header[6], header[7] = 0x00, 0x90 // PC = 0x9000
	header[12] = 0x20                 // compressed

	// a run of 48K zeros: ED ED FF 00 repeated. 192 runs of 255 plus one
	// run of 192 makes 49152
	body := []uint8{}
	for i := 0; i < 192; i++ {
		body = append(body, 0xed, 0xed, 0xff, 0x00)
	}
	body = append(body, 0xed, 0xed, 0xc0, 0x00)
	body = append(body, 0x00, 0xed, 0xed, 0x00) // end marker

	test.ExpectSuccess(t, loaders.LoadZ80(mach, append(header, body...)))
	test.ExpectEquality(t, mach.Z80.A, uint8(0xaa))
	test.ExpectEquality(t, mach.Z80.PC, uint16(0x9000))
	test.ExpectEquality(t, mach.Mem.DirectRead(0x4000), uint8(0))
	test.ExpectEquality(t, mach.Mem.DirectRead(0xffff), uint8(0))
}

func TestZ80Rejection(t *testing.T) {
	mach := newMachine(t)

	err := loaders.LoadZ80(mach, make([]uint8, 10))
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))
}

func TestTRDRoundTrip(t *testing.T) {
	img := loaders.NewBlankTRD(80, 2)

	data, err := loaders.SaveTRD(img)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(data), 80*2*16*256)

	// the disk type byte is where the spec says it is
	test.ExpectEquality(t, data[0x8e3], uint8(fdc.TRDOSType80TrackDS))

	img2, err := loaders.ParseTRD(data)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, img2.Cylinders, 80)
	test.ExpectEquality(t, img2.Sides, 2)

	data2, err := loaders.SaveTRD(img2)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(data2), len(data))
	for i := range data {
		if data[i] != data2[i] {
			t.Fatalf("TRD round trip differs at offset %d", i)
		}
	}
}

func TestTRDRejection(t *testing.T) {
	mach := newMachine(t)

	// not a whole number of tracks
	err := loaders.LoadTRD(mach, 0, make([]uint8, 1000))
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))

	// whole tracks but a nonsense type byte
	bad := make([]uint8, 4096)
	bad[0x8e3] = 0x42
	err = loaders.LoadTRD(mach, 0, bad)
	test.ExpectSuccess(t, curated.Has(err, loaders.ImageFormatInvalid))

	test.ExpectEquality(t, mach.FDC.Disk(0), (*fdc.Image)(nil))
}
