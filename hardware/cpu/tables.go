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

package cpu

// flag bit masks
const (
	FlagC  = 0x01
	FlagN  = 0x02
	FlagPV = 0x04
	FlagX  = 0x08 // undocumented copy of result bit 3
	FlagH  = 0x10
	FlagY  = 0x20 // undocumented copy of result bit 5
	FlagZ  = 0x40
	FlagS  = 0x80

	// the two undocumented bits together
	flagXY = FlagX | FlagY
)

// sz53 maps a byte value to its S, Z, Y and X flag contribution.
var sz53 [256]uint8

// sz53p additionally includes the parity flag.
var sz53p [256]uint8

// parity holds the P/V flag value for each byte value.
var parity [256]uint8

func init() {
	for i := 0; i < 256; i++ {
		v := uint8(i)

		p := uint8(FlagPV)
		for b := v; b != 0; b >>= 1 {
			if b&1 == 1 {
				p ^= FlagPV
			}
		}
		parity[i] = p

		sz53[i] = v & (FlagS | flagXY)
		if v == 0 {
			sz53[i] |= FlagZ
		}
		sz53p[i] = sz53[i] | p
	}
}
