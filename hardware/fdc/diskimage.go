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

package fdc

// AddressRecord is the ID field of a sector: the C/H/R/N tuple the
// controller matches against, plus its CRC.
type AddressRecord struct {
	Cylinder uint8
	Side     uint8
	Sector   uint8
	SizeCode uint8
	CRC      uint16
}

// SectorSize converts the N size code to a byte count.
func (a AddressRecord) SectorSize() int {
	return 128 << (a.SizeCode & 0x03)
}

// Sector is one sector of a track: address record plus data field.
type Sector struct {
	Address AddressRecord
	Data    []uint8
	DataCRC uint16
}

// Track is an ordered list of sectors. The order is the physical interleave
// on the surface.
type Track struct {
	Sectors []Sector
}

// SectorByNumber finds the sector with the given R value, or nil.
func (t *Track) SectorByNumber(r uint8) *Sector {
	for i := range t.Sectors {
		if t.Sectors[i].Address.Sector == r {
			return &t.Sectors[i]
		}
	}
	return nil
}

// Image is a double (or single) sided floppy disk.
type Image struct {
	Cylinders int
	Sides     int

	WriteProtected bool

	// indexed by cylinder then side
	tracks [][]Track
}

// NewImage creates a blank, unformatted disk of the given geometry.
func NewImage(cylinders int, sides int) *Image {
	img := &Image{
		Cylinders: cylinders,
		Sides:     sides,
		tracks:    make([][]Track, cylinders),
	}
	for c := range img.tracks {
		img.tracks[c] = make([]Track, sides)
	}
	return img
}

// Track returns the track at a cylinder and side, or nil if out of range.
func (img *Image) Track(cylinder int, side int) *Track {
	if cylinder < 0 || cylinder >= img.Cylinders || side < 0 || side >= img.Sides {
		return nil
	}
	return &img.tracks[cylinder][side]
}

// FormatTrack replaces a track's sector list. Every sector is given the
// same size code and filled with the fill byte; address and data CRCs are
// computed.
func (img *Image) FormatTrack(cylinder int, side int, sectorNumbers []uint8, sizeCode uint8, fill uint8) {
	t := img.Track(cylinder, side)
	if t == nil {
		return
	}

	t.Sectors = make([]Sector, 0, len(sectorNumbers))
	for _, r := range sectorNumbers {
		s := Sector{
			Address: AddressRecord{
				Cylinder: uint8(cylinder),
				Side:     uint8(side),
				Sector:   r,
				SizeCode: sizeCode,
			},
		}
		s.Address.CRC = AddressCRC(s.Address)
		s.Data = make([]uint8, s.Address.SectorSize())
		for i := range s.Data {
			s.Data[i] = fill
		}
		s.DataCRC = DataCRC(s.Data)
		t.Sectors = append(t.Sectors, s)
	}
}
