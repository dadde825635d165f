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

// Package tape generates the EAR input bitstream from tape images.
//
// A tape block owns an ordered list of edge pulse timings: the duration in
// T-states of each half-period of the signal. On every read of port $FE the
// deck walks the timings forward from the previous sample point, flipping
// the signal level at each edge, and returns the current level in bit 6.
//
// A stopped tape does not return a constant level: the real machine's
// analogue input stage floats, so reads are fed from a pseudo random noise
// source instead.
package tape

// standard tape signal timings, in T-states.
const (
	PilotHalfPeriod = 2168
	Sync1           = 667
	Sync2           = 735
	ZeroHalfPeriod  = 855
	OneHalfPeriod   = 1710

	// pilot lengths in half-periods
	PilotCountHeader = 8064
	PilotCountData   = 3220

	// a pause entry is expressed in milliseconds
	TStatesPerMillisecond = 3500
)

// block flag values.
const (
	FlagHeader = 0x00
	FlagData   = 0xff
)

// Block is one tape block: the raw payload and the derived edge timings.
type Block struct {
	Flag uint8
	Data []uint8

	// the duration of every half-period of the block's signal, in order:
	// pilot, sync pair, two entries per data bit, trailing pause
	EdgePulseTimings []uint32

	// the sum of the edge timings
	TotalTStates uint64
}

// IsHeader returns true for a header block.
func (b *Block) IsHeader() bool {
	return b.Flag == FlagHeader
}

// GenerateBitstream fills in the edge pulse timings for the block using the
// standard encoding parameters.
func (b *Block) GenerateBitstream() {
	pilot := PilotCountData
	if b.IsHeader() {
		pilot = PilotCountHeader
	}
	b.GenerateBitstreamTimed(PilotHalfPeriod, Sync1, Sync2, ZeroHalfPeriod, OneHalfPeriod, pilot, 1000)
}

// GenerateBitstreamTimed fills in the edge pulse timings with explicit
// parameters. pilotCount is in half-periods and pause in milliseconds.
func (b *Block) GenerateBitstreamTimed(pilotHalf int, sync1 int, sync2 int, zeroHalf int, oneHalf int, pilotCount int, pauseMS int) {
	size := pilotCount + 2 + len(b.Data)*16
	if pauseMS > 0 {
		size++
	}

	timings := make([]uint32, 0, size)
	var total uint64

	if pilotCount > 0 {
		for i := 0; i < pilotCount; i++ {
			timings = append(timings, uint32(pilotHalf))
			total += uint64(pilotHalf)
		}
		timings = append(timings, uint32(sync1), uint32(sync2))
		total += uint64(sync1) + uint64(sync2)
	}

	for _, d := range b.Data {
		for mask := uint8(0x80); mask != 0; mask >>= 1 {
			half := zeroHalf
			if d&mask != 0 {
				half = oneHalf
			}
			// each bit is a full period: two edges
			timings = append(timings, uint32(half), uint32(half))
			total += uint64(half) * 2
		}
	}

	if pauseMS > 0 {
		pause := uint32(pauseMS * TStatesPerMillisecond)
		timings = append(timings, pause)
		total += uint64(pause)
	}

	b.EdgePulseTimings = timings
	b.TotalTStates = total
}
