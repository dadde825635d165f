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

// Spec defines the raster timing of one machine model. All values are in
// T-states unless noted.
type Spec struct {
	ID string

	// line and frame geometry
	TStatesPerLine int
	LinesPerFrame  int

	// the first line of the 192 line screen area and the T-state within a
	// line at which the 128 T-state screen fetch begins
	FirstScreenLine   int
	FirstScreenTState int

	// how many border lines/T-states are rendered around the screen area.
	// lines before FirstScreenLine-TopBorderLines are blanking
	TopBorderLines    int
	BottomBorderLines int
	SideBorderTStates int

	// the maskable interrupt is asserted at IntStart for IntLen T-states
	IntStart int
	IntLen   int

	// contention. a zero-length pattern means the model has no contention
	// (Pentagon). ContentionStart is the T-state of the frame at which the
	// pattern first applies
	ContentionStart   int
	ContentionPattern []int
}

// FrameTStates returns the total number of T-states in one frame.
func (s Spec) FrameTStates() int {
	return s.TStatesPerLine * s.LinesPerFrame
}

// Specs that the renderer supports: 48K, 128K and Pentagon. No raster
// timings are defined for any other machine.
var (
	// Spec48K is the original 48K machine: 224 T-states per line, 312
	// lines, interrupt at the top of the frame
	Spec48K = Spec{
		ID:                "48K",
		TStatesPerLine:    224,
		LinesPerFrame:     312,
		FirstScreenLine:   64,
		FirstScreenTState: 0,
		TopBorderLines:    48,
		BottomBorderLines: 48,
		SideBorderTStates: 24,
		IntStart:          0,
		IntLen:            32,
		ContentionStart:   14335,
		ContentionPattern: []int{6, 5, 4, 3, 2, 1, 0, 0},
	}

	// Spec128K differs in line length and contention origin
	Spec128K = Spec{
		ID:                "128K",
		TStatesPerLine:    228,
		LinesPerFrame:     311,
		FirstScreenLine:   63,
		FirstScreenTState: 0,
		TopBorderLines:    48,
		BottomBorderLines: 48,
		SideBorderTStates: 24,
		IntStart:          0,
		IntLen:            36,
		ContentionStart:   14361,
		ContentionPattern: []int{6, 5, 4, 3, 2, 1, 0, 0},
	}

	// SpecPentagon has the longer 320 line frame and no contention at all
	SpecPentagon = Spec{
		ID:                "Pentagon",
		TStatesPerLine:    224,
		LinesPerFrame:     320,
		FirstScreenLine:   80,
		FirstScreenTState: 68,
		TopBorderLines:    48,
		BottomBorderLines: 48,
		SideBorderTStates: 24,
		IntStart:          0,
		IntLen:            36,
	}
)

// SpecByID returns the Spec with the given ID, or false if there is none.
func SpecByID(id string) (Spec, bool) {
	for _, s := range []Spec{Spec48K, Spec128K, SpecPentagon} {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}
