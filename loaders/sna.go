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
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// SNA file sizes.
const (
	snaHeaderSize = 27
	sna48Size     = snaHeaderSize + 48*1024
	sna128Size    = snaHeaderSize + 48*1024 + 4 + 5*16*1024
	sna128SizeB   = snaHeaderSize + 48*1024 + 4 + 6*16*1024
)

// LoadSNA restores a 48K or 128K SNA snapshot into the machine.
func LoadSNA(mach *spectrum.Spectrum, data []uint8) error {
	switch len(data) {
	case sna48Size, sna128Size, sna128SizeB:
	default:
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("SNA: unexpected file size (%d)", len(data)))
	}

	is128 := len(data) != sna48Size
	if is128 && mach.Config().Model == spectrum.Model48K {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("SNA: 128K snapshot on a 48K machine"))
	}

	z := mach.Z80
	mem := mach.Mem

	mach.Reset()

	z.I = data[0]
	z.L2, z.H2 = data[1], data[2]
	z.E2, z.D2 = data[3], data[4]
	z.C2, z.B2 = data[5], data[6]
	z.F2, z.A2 = data[7], data[8]
	z.L, z.H = data[9], data[10]
	z.E, z.D = data[11], data[12]
	z.C, z.B = data[13], data[14]
	z.IY = uint16(data[15]) | uint16(data[16])<<8
	z.IX = uint16(data[17]) | uint16(data[18])<<8
	z.IFF2 = data[19]&0x04 != 0
	z.IFF1 = z.IFF2
	z.R = data[20]
	z.F, z.A = data[21], data[22]
	z.SP = uint16(data[23]) | uint16(data[24])<<8
	z.IM = data[25] & 0x03

	// border colour
	mach.ULA.SetBorder(data[26] & 0x07)

	if !is128 {
		// the three RAM pages of the 48K map
		copy(mem.RAMPage(5), data[snaHeaderSize:])
		copy(mem.RAMPage(2), data[snaHeaderSize+16*1024:])
		copy(mem.RAMPage(0), data[snaHeaderSize+32*1024:])

		// the PC is on the stack, as left by the RETN convention
		z.PC = mem.DirectRead16(z.SP)
		z.SP += 2

		return nil
	}

	// 128K: PC and the paging state follow the first three banks
	o := snaHeaderSize + 48*1024
	z.PC = uint16(data[o]) | uint16(data[o+1])<<8
	port7ffd := data[o+2]
	o += 4 // the TR-DOS flag byte is ignored

	// the three banks stored first are those visible at the time: 5, 2 and
	// the one selected by the port value
	current := int(port7ffd & 0x07)
	copy(mem.RAMPage(5), data[snaHeaderSize:])
	copy(mem.RAMPage(2), data[snaHeaderSize+16*1024:])
	copy(mem.RAMPage(current), data[snaHeaderSize+32*1024:])

	// remaining banks in ascending order
	for bank := 0; bank < 8; bank++ {
		if bank == 5 || bank == 2 || bank == current {
			continue
		}
		copy(mem.RAMPage(bank), data[o:])
		o += 16 * 1024
	}

	// re-apply the paging latch through the port so the machine state is
	// consistent
	mach.Ports.Out(0x7ffd, port7ffd)

	return nil
}
