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

import (
	"fmt"
	"strings"
)

// TR-DOS fixes the disk geometry at sixteen 256 byte sectors per track.
// Track 0 side 0 is the system track: sectors 1 to 8 hold the catalog (128
// entries of 16 bytes) and sector 9 the disk information record.
const (
	TRDOSSectorsPerTrack = 16
	TRDOSSectorSize      = 256
	TRDOSSizeCode        = 1

	TRDOSCatalogSectors = 8
	TRDOSInfoSector     = 9

	TRDOSCatalogEntries = 128
)

// fields of the disk information sector.
const (
	trdosInfoFirstFreeSector = 0xe1
	trdosInfoFirstFreeTrack  = 0xe2
	trdosInfoDiskType        = 0xe3
	trdosInfoFileCount       = 0xe4
	trdosInfoFreeSectors     = 0xe5 // 16 bit little-endian
	trdosInfoIdentity        = 0xe7 // always 0x10
)

// disk type byte values.
const (
	TRDOSType40TrackDS = 0x16
	TRDOSType40TrackSS = 0x17
	TRDOSType80TrackSS = 0x18
	TRDOSType80TrackDS = 0x19
)

// TRDOSDiskType returns the type byte for a geometry.
func TRDOSDiskType(cylinders int, sides int) uint8 {
	if cylinders >= 80 {
		if sides == 2 {
			return TRDOSType80TrackDS
		}
		return TRDOSType80TrackSS
	}
	if sides == 2 {
		return TRDOSType40TrackDS
	}
	return TRDOSType40TrackSS
}

// TRDOSInterleave is the default 1:2 sector order of a formatted track.
// The order is a property of the formatter, not of TR-DOS itself, so it is
// a variable rather than a constant.
var TRDOSInterleave = []uint8{1, 9, 2, 10, 3, 11, 4, 12, 5, 13, 6, 14, 7, 15, 8, 16}

// FormatTRDOS formats every track of the image to the TR-DOS layout and
// writes a fresh catalog and disk information sector. A nil interleave uses
// the default order.
func FormatTRDOS(img *Image, interleave []uint8) {
	if interleave == nil {
		interleave = TRDOSInterleave
	}

	for c := 0; c < img.Cylinders; c++ {
		for s := 0; s < img.Sides; s++ {
			img.FormatTrack(c, s, interleave, TRDOSSizeCode, 0x00)
		}
	}

	// the system track lives on track 0 side 0. the catalog sectors are
	// already zero after the format; only the info sector needs writing
	info := img.Track(0, 0).SectorByNumber(TRDOSInfoSector)

	totalSectors := img.Cylinders * img.Sides * TRDOSSectorsPerTrack
	free := totalSectors - TRDOSSectorsPerTrack // the system track is reserved

	info.Data[trdosInfoFirstFreeSector] = 0x00
	info.Data[trdosInfoFirstFreeTrack] = 0x01
	info.Data[trdosInfoDiskType] = TRDOSDiskType(img.Cylinders, img.Sides)
	info.Data[trdosInfoFileCount] = 0x00
	info.Data[trdosInfoFreeSectors] = uint8(free)
	info.Data[trdosInfoFreeSectors+1] = uint8(free >> 8)
	info.Data[trdosInfoIdentity] = 0x10
	info.DataCRC = DataCRC(info.Data)
}

// CatalogEntry is one of the 128 file slots of a TR-DOS disk.
type CatalogEntry struct {
	Name      string
	Extension byte

	// meaning depends on the extension: start address for code files,
	// program length for BASIC
	Start  uint16
	Length uint16

	SectorCount uint8
	FirstSector uint8
	FirstTrack  uint8
}

// Deleted returns true for a slot whose file has been erased.
func (e CatalogEntry) Deleted() bool {
	return len(e.Name) > 0 && e.Name[0] == 0x01
}

func (e CatalogEntry) String() string {
	return fmt.Sprintf("%-8s<%c> start=%5d len=%5d sectors=%3d @ T%d/S%d",
		e.Name, e.Extension, e.Start, e.Length, e.SectorCount, e.FirstTrack, e.FirstSector)
}

// Catalog decodes the file slots of a TR-DOS disk. Iteration stops at the
// first never-used slot.
func Catalog(img *Image) []CatalogEntry {
	var entries []CatalogEntry

	t := img.Track(0, 0)
	if t == nil {
		return nil
	}

	for sn := uint8(1); sn <= TRDOSCatalogSectors; sn++ {
		sector := t.SectorByNumber(sn)
		if sector == nil || len(sector.Data) < TRDOSSectorSize {
			return entries
		}

		for i := 0; i < TRDOSSectorSize/16; i++ {
			slot := sector.Data[i*16 : i*16+16]
			if slot[0] == 0x00 {
				// never used: end of catalog
				return entries
			}

			entries = append(entries, CatalogEntry{
				Name:        strings.TrimRight(string(slot[0:8]), " "),
				Extension:   slot[8],
				Start:       uint16(slot[9]) | uint16(slot[10])<<8,
				Length:      uint16(slot[11]) | uint16(slot[12])<<8,
				SectorCount: slot[13],
				FirstSector: slot[14],
				FirstTrack:  slot[15],
			})
		}
	}

	return entries
}
