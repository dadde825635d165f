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

// LoadZ80 restores a .z80 snapshot (versions 1, 2 and 3) into the
// machine.
func LoadZ80(mach *spectrum.Spectrum, data []uint8) error {
	if len(data) < 30 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: file too short"))
	}

	// byte 12 can be 0xff on very old files, meaning "all defaults"
	flags1 := data[12]
	if flags1 == 0xff {
		flags1 = 0x01
	}

	pc := uint16(data[6]) | uint16(data[7])<<8

	// version 1 files have a non-zero PC in the main header. later
	// versions extend the header and store PC there
	if pc != 0 {
		return loadZ80v1(mach, data, flags1)
	}

	if len(data) < 32 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: truncated extended header"))
	}
	extLen := int(data[30]) | int(data[31])<<8
	switch extLen {
	case 23, 54, 55:
	default:
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: unknown extended header length (%d)", extLen))
	}
	if len(data) < 32+extLen {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: truncated extended header"))
	}

	return loadZ80v23(mach, data, flags1, extLen)
}

// decompressZ80 expands the ED ED nn vv run length encoding. limit bounds
// the output size; a nil error means exactly limit bytes were produced. Input
// left over once the limit is reached is ignored.
func decompressZ80(src []uint8, limit int) ([]uint8, error) {
	out := make([]uint8, 0, limit)
	i := 0
	for i < len(src) && len(out) < limit {
		if i+3 < len(src) && src[i] == 0xed && src[i+1] == 0xed {
			count := int(src[i+2])
			value := src[i+3]
			for n := 0; n < count && len(out) < limit; n++ {
				out = append(out, value)
			}
			i += 4
			continue
		}
		out = append(out, src[i])
		i++
	}
	if len(out) != limit {
		return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: decompression underrun (%d of %d bytes)", len(out), limit))
	}
	return out, nil
}

// applyZ80Header loads the common 30 byte header into the CPU.
func applyZ80Header(mach *spectrum.Spectrum, data []uint8, flags1 uint8) {
	z := mach.Z80

	z.A, z.F = data[0], data[1]
	z.C, z.B = data[2], data[3]
	z.L, z.H = data[4], data[5]
	z.SP = uint16(data[8]) | uint16(data[9])<<8
	z.I = data[10]
	z.R = data[11]&0x7f | flags1<<7&0x80
	mach.ULA.SetBorder(flags1 >> 1 & 0x07)
	z.E, z.D = data[13], data[14]
	z.C2, z.B2 = data[15], data[16]
	z.E2, z.D2 = data[17], data[18]
	z.L2, z.H2 = data[19], data[20]
	z.A2, z.F2 = data[21], data[22]
	z.IY = uint16(data[23]) | uint16(data[24])<<8
	z.IX = uint16(data[25]) | uint16(data[26])<<8
	z.IFF1 = data[27] != 0
	z.IFF2 = data[28] != 0
	z.IM = data[29] & 0x03
}

func loadZ80v1(mach *spectrum.Spectrum, data []uint8, flags1 uint8) error {
	var ram []uint8
	var err error

	if flags1&0x20 != 0 {
		// compressed image, ending with the 00 ED ED 00 marker
		body := data[30:]
		if len(body) >= 4 {
			body = body[:len(body)-4]
		}
		ram, err = decompressZ80(body, 48*1024)
		if err != nil {
			return err
		}
	} else {
		if len(data) < 30+48*1024 {
			return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: truncated memory image"))
		}
		ram = data[30 : 30+48*1024]
	}

	mach.Reset()
	applyZ80Header(mach, data, flags1)
	mach.Z80.PC = uint16(data[6]) | uint16(data[7])<<8

	mem := mach.Mem
	copy(mem.RAMPage(5), ram)
	copy(mem.RAMPage(2), ram[16*1024:])
	copy(mem.RAMPage(0), ram[32*1024:])

	return nil
}

// v2/v3 memory page numbering to 128K RAM banks. pages 3 to 10 are RAM
// banks 0 to 7; pages 4, 5 and 8 double as the 48K map.
func z80PageToBank(page uint8, is128 bool) int {
	if is128 {
		if page >= 3 && page <= 10 {
			return int(page) - 3
		}
		return -1
	}
	switch page {
	case 4:
		return 2
	case 5:
		return 0
	case 8:
		return 5
	}
	return -1
}

func loadZ80v23(mach *spectrum.Spectrum, data []uint8, flags1 uint8, extLen int) error {
	hwMode := data[34]
	is128 := hwMode >= 3

	if is128 && mach.Config().Model == spectrum.Model48K {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: 128K snapshot on a 48K machine"))
	}

	// first pass: validate every page record before mutating anything
	type pageRecord struct {
		bank       int
		data       []uint8
		compressed bool
	}
	var pages []pageRecord

	o := 32 + extLen
	for o < len(data) {
		if o+3 > len(data) {
			return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: truncated page header"))
		}
		size := int(data[o]) | int(data[o+1])<<8
		page := data[o+2]
		o += 3

		compressed := size != 0xffff
		if !compressed {
			size = 16 * 1024
		}
		if o+size > len(data) {
			return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: truncated page %d", page))
		}

		bank := z80PageToBank(page, is128)
		if bank >= 0 {
			pages = append(pages, pageRecord{
				bank:       bank,
				data:       data[o : o+size],
				compressed: compressed,
			})
		}
		o += size
	}

	if len(pages) == 0 {
		return curated.Errorf(ImageFormatInvalid, curated.Errorf("Z80: no memory pages"))
	}

	expanded := make([][]uint8, len(pages))
	for i, p := range pages {
		if p.compressed {
			d, err := decompressZ80(p.data, 16*1024)
			if err != nil {
				return err
			}
			expanded[i] = d
		} else {
			expanded[i] = p.data
		}
	}

	// validation done: apply
	mach.Reset()
	applyZ80Header(mach, data, flags1)
	mach.Z80.PC = uint16(data[32]) | uint16(data[33])<<8

	for i, p := range pages {
		copy(mach.Mem.RAMPage(p.bank), expanded[i])
	}

	if is128 {
		mach.Ports.Out(0x7ffd, data[35])
	}

	return nil
}
