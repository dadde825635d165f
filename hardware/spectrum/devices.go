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

package spectrum

// the port devices of the base machine. each is a thin shim between the
// port decoder and the subsystem that does the work.

// feDevice is the ULA port: keyboard and tape in, border and beeper out.
// it responds on every even port address.
type feDevice struct {
	m *Spectrum
}

func (d feDevice) PortIn(port uint16) uint8 {
	m := d.m

	v := uint8(0xa0) // bits 5 and 7 float high
	v |= m.Keyboard.ReadPort(uint8(port >> 8))

	if m.Tape.Playing() {
		v |= m.Tape.Input(m.Z80.TotalTStates)
	} else if m.config.BeeperIssue == Issue2 && m.lastFE&0x18 != 0 {
		// issue 2 boards feed both EAR and MIC back into the input
		v |= 0x40
	} else if m.config.BeeperIssue == Issue3 && m.lastFE&0x10 != 0 {
		v |= 0x40
	} else {
		v |= m.Tape.Input(m.Z80.TotalTStates) // stopped-tape noise
	}

	return v
}

func (d feDevice) PortOut(port uint16, data uint8) {
	m := d.m

	// bring the raster up to date so the border change lands at the right
	// spot on the scanline
	t := m.frameT + m.Z80.TStates
	m.ULA.AdvanceTo(t)
	m.ULA.SetBorder(data & 0x07)

	if (data^m.lastFE)&0x18 != 0 {
		m.Mixer.SetBeeper(data&0x18, t)
	}

	m.lastFE = data
}

// pagingDevice is port $7FFD of the 128K machines.
type pagingDevice struct {
	m *Spectrum
}

func (d pagingDevice) PortIn(port uint16) uint8 {
	return 0xff
}

func (d pagingDevice) PortOut(port uint16, data uint8) {
	m := d.m

	if m.pagingLocked {
		return
	}
	m.last7FFD = data

	// RAM page for window 3. the Pentagon extends the page number with
	// bits 6 and 7 for its larger memories
	page := int(data & 0x07)
	if m.config.Model == ModelPentagon {
		page |= int(data&0xc0) >> 3
	}
	if page < m.numRAMPages() {
		_ = m.Mem.SetRAMPage(3, page)
	}

	// screen selection
	t := m.frameT + m.Z80.TStates
	m.ULA.AdvanceTo(t)
	if data&0x08 != 0 {
		m.ULA.SetScreenPage(7)
	} else {
		m.ULA.SetScreenPage(5)
	}

	// ROM selection. suppressed while the DOS ROM is paged in; the choice
	// takes effect when DOS pages out
	m.romSelect = int(data&0x10) >> 4
	if !m.dosActive {
		_ = m.Mem.SetROMPage(m.romSelect)
	}

	if data&0x20 != 0 {
		m.pagingLocked = true
	}
}

// psgDevice handles the $FFFD register select and $BFFD data ports.
type psgDevice struct {
	m *Spectrum
}

func (d psgDevice) PortIn(port uint16) uint8 {
	return d.m.PSG.DataRead()
}

func (d psgDevice) PortOut(port uint16, data uint8) {
	if port&0x4000 != 0 {
		d.m.PSG.SelectWrite(data)
	} else {
		d.m.PSG.DataWrite(data)
	}
}

// betaDevice bridges the WD1793 registers and the Beta system port. the
// interface only answers while the DOS ROM is paged in.
type betaDevice struct {
	m *Spectrum
}

func (d betaDevice) PortIn(port uint16) uint8 {
	m := d.m
	if !m.dosActive {
		return 0xff
	}

	m.FDC.Advance(m.Z80.TotalTStates)

	switch uint8(port) {
	case 0x1f:
		return m.FDC.ReadRegister(0)
	case 0x3f:
		return m.FDC.ReadRegister(1)
	case 0x5f:
		return m.FDC.ReadRegister(2)
	case 0x7f:
		return m.FDC.ReadRegister(3)
	case 0xff:
		// system register read: INTRQ in bit 7, DRQ in bit 6
		v := uint8(0x3f)
		if m.FDC.INTRQ() {
			v |= 0x80
		}
		if m.FDC.DRQ() {
			v |= 0x40
		}
		return v
	}
	return 0xff
}

func (d betaDevice) PortOut(port uint16, data uint8) {
	m := d.m
	if !m.dosActive {
		return
	}

	m.FDC.Advance(m.Z80.TotalTStates)

	switch uint8(port) {
	case 0x1f:
		m.FDC.WriteRegister(0, data)
	case 0x3f:
		m.FDC.WriteRegister(1, data)
	case 0x5f:
		m.FDC.WriteRegister(2, data)
	case 0x7f:
		m.FDC.WriteRegister(3, data)
	case 0xff:
		// drive select in bits 0-1, side select (inverted) in bit 4
		side := 0
		if data&0x10 == 0 {
			side = 1
		}
		m.FDC.SelectDrive(int(data&0x03), side)
	}
}
