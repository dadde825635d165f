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
	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/fdc"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// a TRD file is a raw sector dump in logical track order: track 0 side 0,
// track 0 side 1, track 1 side 0, and so on, sixteen 256 byte sectors per
// track.
const trdTrackSize = fdc.TRDOSSectorsPerTrack * fdc.TRDOSSectorSize

// the disk type byte of the info sector at its absolute file offset:
// sector 9 of track 0 side 0, offset 0xe3.
const trdTypeOffset = 8*fdc.TRDOSSectorSize + 0xe3

// ParseTRD builds a disk image from a TRD file. The geometry comes from
// the disk type byte, cross-checked against the file size.
func ParseTRD(data []uint8) (*fdc.Image, error) {
	if len(data) < trdTrackSize || len(data)%trdTrackSize != 0 {
		return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TRD: file is not a whole number of tracks (%d bytes)", len(data)))
	}

	cylinders, sides := 80, 2
	switch data[trdTypeOffset] {
	case fdc.TRDOSType80TrackDS:
		cylinders, sides = 80, 2
	case fdc.TRDOSType40TrackDS:
		cylinders, sides = 40, 2
	case fdc.TRDOSType80TrackSS:
		cylinders, sides = 80, 1
	case fdc.TRDOSType40TrackSS:
		cylinders, sides = 40, 1
	default:
		return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TRD: unknown disk type byte (%02x)", data[trdTypeOffset]))
	}

	if len(data) > cylinders*sides*trdTrackSize {
		return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TRD: file larger than its declared geometry"))
	}

	img := fdc.NewImage(cylinders, sides)
	fdc.FormatTRDOS(img, nil)

	track := 0
	for o := 0; o+trdTrackSize <= len(data); o += trdTrackSize {
		c := track / sides
		s := track % sides
		t := img.Track(c, s)
		for i := 0; i < fdc.TRDOSSectorsPerTrack; i++ {
			sector := t.SectorByNumber(uint8(i + 1))
			copy(sector.Data, data[o+i*fdc.TRDOSSectorSize:])
			sector.DataCRC = fdc.DataCRC(sector.Data)
		}
		track++
	}

	return img, nil
}

// SaveTRD serialises a disk image back to the TRD byte layout.
func SaveTRD(img *fdc.Image) ([]uint8, error) {
	out := make([]uint8, 0, img.Cylinders*img.Sides*trdTrackSize)

	for c := 0; c < img.Cylinders; c++ {
		for s := 0; s < img.Sides; s++ {
			t := img.Track(c, s)
			for i := 0; i < fdc.TRDOSSectorsPerTrack; i++ {
				sector := t.SectorByNumber(uint8(i + 1))
				if sector == nil || len(sector.Data) != fdc.TRDOSSectorSize {
					return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TRD: track %d/%d is not TR-DOS formatted", c, s))
				}
				out = append(out, sector.Data...)
			}
		}
	}

	return out, nil
}

// NewBlankTRD formats a fresh image ready for use: every track laid out in
// the TR-DOS interleave and the system track initialised.
func NewBlankTRD(cylinders int, sides int) *fdc.Image {
	img := fdc.NewImage(cylinders, sides)
	fdc.FormatTRDOS(img, nil)
	return img
}

// LoadTRD parses a TRD file and inserts it into a drive slot.
func LoadTRD(mach *spectrum.Spectrum, drive int, data []uint8) error {
	img, err := ParseTRD(data)
	if err != nil {
		return err
	}
	mach.FDC.Insert(drive, img)
	return nil
}
