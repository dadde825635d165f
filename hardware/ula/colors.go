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

package ula

// the Spectrum palette as RGBA words. indices 0-7 are the normal colours,
// 8-15 the BRIGHT variants.
var palette = [16][4]uint8{
	{0x00, 0x00, 0x00, 0xff}, // black
	{0x00, 0x00, 0xc0, 0xff}, // blue
	{0xc0, 0x00, 0x00, 0xff}, // red
	{0xc0, 0x00, 0xc0, 0xff}, // magenta
	{0x00, 0xc0, 0x00, 0xff}, // green
	{0x00, 0xc0, 0xc0, 0xff}, // cyan
	{0xc0, 0xc0, 0x00, 0xff}, // yellow
	{0xc0, 0xc0, 0xc0, 0xff}, // white
	{0x00, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

// ColorName returns the conventional name of a palette entry.
func ColorName(color uint8) string {
	names := []string{
		"Black", "Blue", "Red", "Magenta",
		"Green", "Cyan", "Yellow", "White",
	}
	if int(color&0x07) < len(names) {
		return names[color&0x07]
	}
	return "?"
}
