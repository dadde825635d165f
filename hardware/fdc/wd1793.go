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

// Package fdc emulates the WD1793 floppy disk controller of the Beta Disk
// interface, together with the TR-DOS disk format it usually drives.
package fdc

import (
	"github.com/jetsetilly/gopherzx/logger"
)

// status register bits. the meaning of bits 5 and 6 differs between the
// type I and type II/III commands.
const (
	StatusBusy       = 0x01
	StatusDRQ        = 0x02 // type II/III
	StatusIndex      = 0x02 // type I
	StatusTrack0     = 0x04 // type I
	StatusLostData   = 0x04 // type II/III
	StatusCRCError   = 0x08
	StatusRNF        = 0x10 // record not found / seek error
	StatusHeadLoaded = 0x20 // type I
	StatusRecordType = 0x20 // read sector: deleted data mark
	StatusWriteFault = 0x20 // write operations
	StatusProtected  = 0x40
	StatusNotReady   = 0x80
)

// register addresses as presented to the Beta interface ports.
const (
	RegCommand = 0 // write
	RegStatus  = 0 // read
	RegTrack   = 1
	RegSector  = 2
	RegData    = 3
)

// timing, in T-states of the 3.5MHz CPU clock.
const (
	// 300 RPM: one revolution every fifth of a second
	revolutionTStates = 700000

	// the index hole passes the sensor for about 4ms
	indexPulseTStates = 14000

	// 250kbit/s MFM: one byte every 32us
	byteTStates = 112

	// motor spin-down after 15 revolutions of idleness
	motorTimeout = revolutionTStates * 15
)

// step rates selectable in the low bits of a type I command, per step, in
// milliseconds converted to T-states.
var stepRates = [4]uint64{6 * 3500, 12 * 3500, 20 * 3500, 30 * 3500}

// command phases.
type phase int

const (
	phaseIdle phase = iota
	phaseTypeI
	phaseRead
	phaseWrite
	phaseReadAddress
	phaseReadTrack
	phaseWriteTrack
)

// WD1793 is the floppy disk controller.
type WD1793 struct {
	status uint8
	track  uint8
	sector uint8
	data   uint8

	command uint8
	phase   phase

	// four drive slots, selectable through the Beta system port
	drives [4]*Image
	drive  int
	side   int

	// head position is the physical cylinder, distinct from the track
	// register
	head [4]int

	stepDir int

	// clock bookkeeping. busyUntil is when the current command completes;
	// nextByte paces DRQ during a transfer
	clock      uint64
	busyUntil  uint64
	nextByte   uint64
	motorUntil uint64

	intrq bool

	// transfer state
	buffer   []uint8
	bufPos   int
	multiple bool

	// write track parser state
	rawTrack []uint8
}

// NewWD1793 is the preferred method of initialisation for the WD1793 type.
func NewWD1793() *WD1793 {
	f := &WD1793{stepDir: 1}
	f.Reset()
	return f
}

// Reset returns the controller to idle with the head over track 0.
func (f *WD1793) Reset() {
	f.status = 0
	f.track = 0
	f.sector = 1
	f.data = 0
	f.phase = phaseIdle
	f.stepDir = 1
	f.buffer = nil
	f.bufPos = 0
	f.intrq = false
	for i := range f.head {
		f.head[i] = 0
	}
}

// Insert puts a disk image in a drive slot. A nil image empties the drive.
func (f *WD1793) Insert(drive int, img *Image) {
	if drive >= 0 && drive < len(f.drives) {
		f.drives[drive] = img
	}
}

// Disk returns the image in a drive slot.
func (f *WD1793) Disk(drive int) *Image {
	if drive < 0 || drive >= len(f.drives) {
		return nil
	}
	return f.drives[drive]
}

// SelectDrive sets the active drive and side. Wired to the Beta system
// port.
func (f *WD1793) SelectDrive(drive int, side int) {
	f.drive = drive & 0x03
	f.side = side & 0x01
}

// INTRQ returns the state of the interrupt request line.
func (f *WD1793) INTRQ() bool {
	return f.intrq
}

// DRQ returns the state of the data request line.
func (f *WD1793) DRQ() bool {
	return f.status&StatusDRQ != 0 && f.phase != phaseIdle && f.phase != phaseTypeI
}

func (f *WD1793) image() *Image {
	return f.drives[f.drive]
}

// Advance moves the controller's clock forward. Called with the CPU's
// lifetime T-state count before every register access and at frame
// boundaries.
func (f *WD1793) Advance(clock uint64) {
	f.clock = clock

	if f.phase == phaseIdle {
		return
	}

	if f.phase == phaseTypeI {
		if clock >= f.busyUntil {
			f.completeTypeI()
		}
		return
	}

	// transfer phases: pace the data register
	if clock >= f.nextByte {
		f.transferByte()
	}
}

// index returns true while the index hole is under the sensor.
func (f *WD1793) index() bool {
	if f.motorUntil < f.clock {
		return false
	}
	return f.clock%revolutionTStates < indexPulseTStates
}

func (f *WD1793) spinMotor() {
	f.motorUntil = f.clock + motorTimeout
}

// WriteRegister dispatches a register write.
func (f *WD1793) WriteRegister(reg int, v uint8) {
	switch reg {
	case RegCommand:
		f.writeCommand(v)
	case RegTrack:
		f.track = v
	case RegSector:
		f.sector = v
	case RegData:
		f.data = v
		if f.phase == phaseWrite || f.phase == phaseWriteTrack {
			f.acceptDataByte()
		}
	}
}

// ReadRegister dispatches a register read.
func (f *WD1793) ReadRegister(reg int) uint8 {
	switch reg {
	case RegStatus:
		f.intrq = false
		return f.statusRead()
	case RegTrack:
		return f.track
	case RegSector:
		return f.sector
	case RegData:
		if (f.phase == phaseRead || f.phase == phaseReadAddress || f.phase == phaseReadTrack) && f.status&StatusDRQ != 0 {
			f.provideDataByte()
		}
		return f.data
	}
	return 0xff
}

func (f *WD1793) statusRead() uint8 {
	s := f.status

	if f.image() == nil {
		s |= StatusNotReady
	}

	if f.phase == phaseIdle || f.phase == phaseTypeI {
		// type I style status
		s &^= StatusIndex | StatusTrack0
		if f.index() {
			s |= StatusIndex
		}
		if f.head[f.drive] == 0 {
			s |= StatusTrack0
		}
		if img := f.image(); img != nil && img.WriteProtected {
			s |= StatusProtected
		}
	}

	return s
}

// writeCommand decodes and begins a new command.
func (f *WD1793) writeCommand(cmd uint8) {
	// force interrupt is honoured even while busy
	if cmd&0xf0 == 0xd0 {
		f.command = cmd
		f.phase = phaseIdle
		f.status &^= StatusBusy | StatusDRQ
		if cmd&0x0f != 0 {
			f.intrq = true
		}
		return
	}

	if f.status&StatusBusy != 0 {
		return
	}

	f.command = cmd
	f.intrq = false
	f.spinMotor()

	switch cmd >> 4 {
	case 0x0: // restore
		f.beginTypeI(int(-f.head[f.drive]), true)
	case 0x1: // seek
		f.beginTypeI(int(f.data)-int(f.track), true)
	case 0x2, 0x3: // step
		f.beginTypeI(f.stepDir, cmd&0x10 != 0)
	case 0x4, 0x5: // step in
		f.stepDir = 1
		f.beginTypeI(1, cmd&0x10 != 0)
	case 0x6, 0x7: // step out
		f.stepDir = -1
		f.beginTypeI(-1, cmd&0x10 != 0)
	case 0x8, 0x9: // read sector
		f.multiple = cmd&0x10 != 0
		f.beginRead()
	case 0xa, 0xb: // write sector
		f.multiple = cmd&0x10 != 0
		f.beginWrite()
	case 0xc: // read address
		f.beginReadAddress()
	case 0xe: // read track
		f.beginReadTrack()
	case 0xf: // write track
		f.beginWriteTrack()
	}
}

func (f *WD1793) beginTypeI(steps int, updateTrack bool) {
	f.phase = phaseTypeI
	f.status = StatusBusy | StatusHeadLoaded

	rate := stepRates[f.command&0x03]
	n := steps
	if n < 0 {
		n = -n
	}
	if n == 0 {
		n = 1
	}
	f.busyUntil = f.clock + uint64(n)*rate

	h := f.head[f.drive] + steps
	if h < 0 {
		h = 0
	}
	if h > 83 {
		h = 83
	}
	f.head[f.drive] = h

	if updateTrack {
		f.track = uint8(h)
	}
}

func (f *WD1793) completeTypeI() {
	f.phase = phaseIdle
	f.status &^= StatusBusy

	// verify bit: check that an ID field of the destination track exists
	if f.command&0x04 != 0 {
		img := f.image()
		if img == nil || img.Track(f.head[f.drive], f.side) == nil {
			f.status |= StatusRNF
		} else if len(img.Track(f.head[f.drive], f.side).Sectors) == 0 {
			f.status |= StatusRNF
		}
	}

	f.intrq = true
}

func (f *WD1793) findSector() *Sector {
	img := f.image()
	if img == nil {
		return nil
	}
	t := img.Track(f.head[f.drive], f.side)
	if t == nil {
		return nil
	}
	s := t.SectorByNumber(f.sector)
	if s == nil {
		return nil
	}
	if s.Address.Cylinder != f.track {
		// the track register must match the cylinder in the ID field
		return nil
	}
	return s
}

func (f *WD1793) abort(bits uint8) {
	f.phase = phaseIdle
	f.status &^= StatusBusy | StatusDRQ
	f.status |= bits
	f.intrq = true
}

func (f *WD1793) beginRead() {
	s := f.findSector()
	if s == nil {
		f.abort(StatusRNF)
		return
	}

	f.phase = phaseRead
	f.status = StatusBusy
	f.buffer = s.Data
	f.bufPos = 0

	if s.DataCRC != DataCRC(s.Data) {
		f.status |= StatusCRCError
	}

	f.nextByte = f.clock + byteTStates
}

func (f *WD1793) beginWrite() {
	img := f.image()
	if img != nil && img.WriteProtected {
		f.abort(StatusProtected)
		return
	}

	s := f.findSector()
	if s == nil {
		f.abort(StatusRNF)
		return
	}

	f.phase = phaseWrite
	f.status = StatusBusy | StatusDRQ
	f.buffer = s.Data
	f.bufPos = 0
	f.nextByte = f.clock + byteTStates
}

func (f *WD1793) beginReadAddress() {
	img := f.image()
	if img == nil {
		f.abort(StatusRNF)
		return
	}
	t := img.Track(f.head[f.drive], f.side)
	if t == nil || len(t.Sectors) == 0 {
		f.abort(StatusRNF)
		return
	}

	// the next ID field to pass the head. rotate by the index position so
	// repeated reads walk the interleave
	idx := int(f.clock/byteTStates) % len(t.Sectors)
	a := t.Sectors[idx].Address

	f.phase = phaseReadAddress
	f.status = StatusBusy
	f.buffer = []uint8{a.Cylinder, a.Side, a.Sector, a.SizeCode, uint8(a.CRC >> 8), uint8(a.CRC)}
	f.bufPos = 0

	// the sector register receives the cylinder of the ID field
	f.sector = a.Cylinder

	f.nextByte = f.clock + byteTStates
}

func (f *WD1793) beginReadTrack() {
	img := f.image()
	if img == nil {
		f.abort(StatusRNF)
		return
	}
	t := img.Track(f.head[f.drive], f.side)
	if t == nil {
		f.abort(StatusRNF)
		return
	}

	// an idealised raw track: gaps, ID fields and data fields in surface
	// order
	var raw []uint8
	for i := range t.Sectors {
		s := &t.Sectors[i]
		for g := 0; g < 10; g++ {
			raw = append(raw, 0x4e)
		}
		raw = append(raw, 0xa1, 0xa1, 0xa1, markID,
			s.Address.Cylinder, s.Address.Side, s.Address.Sector, s.Address.SizeCode,
			uint8(s.Address.CRC>>8), uint8(s.Address.CRC))
		for g := 0; g < 22; g++ {
			raw = append(raw, 0x4e)
		}
		raw = append(raw, 0xa1, 0xa1, 0xa1, markData)
		raw = append(raw, s.Data...)
		raw = append(raw, uint8(s.DataCRC>>8), uint8(s.DataCRC))
	}

	f.phase = phaseReadTrack
	f.status = StatusBusy
	f.buffer = raw
	f.bufPos = 0
	f.nextByte = f.clock + byteTStates
}

func (f *WD1793) beginWriteTrack() {
	img := f.image()
	if img == nil {
		f.abort(StatusRNF)
		return
	}
	if img.WriteProtected {
		f.abort(StatusProtected)
		return
	}

	f.phase = phaseWriteTrack
	f.status = StatusBusy | StatusDRQ
	f.rawTrack = f.rawTrack[:0]

	// one revolution's worth of bytes ends the command
	f.buffer = nil
	f.bufPos = 0
	f.nextByte = f.clock + byteTStates
	f.busyUntil = f.clock + revolutionTStates
}

// transferByte advances the DRQ pacing during a transfer phase.
func (f *WD1793) transferByte() {
	switch f.phase {
	case phaseRead, phaseReadAddress, phaseReadTrack:
		if f.status&StatusDRQ != 0 {
			// the CPU failed to collect the previous byte in time
			f.status |= StatusLostData
		}
		f.status |= StatusDRQ
	case phaseWrite:
		f.status |= StatusDRQ
	case phaseWriteTrack:
		if f.clock >= f.busyUntil {
			f.finishWriteTrack()
			return
		}
		f.status |= StatusDRQ
	}
	f.nextByte = f.clock + byteTStates
}

// provideDataByte is called when the CPU reads the data register during a
// read phase.
func (f *WD1793) provideDataByte() {
	if f.bufPos < len(f.buffer) {
		f.data = f.buffer[f.bufPos]
		f.bufPos++
	}
	f.status &^= StatusDRQ

	if f.bufPos >= len(f.buffer) {
		switch f.phase {
		case phaseRead:
			if f.multiple {
				f.sector++
				if s := f.findSector(); s != nil {
					f.buffer = s.Data
					f.bufPos = 0
					f.nextByte = f.clock + byteTStates
					return
				}
			}
			f.abort(0)
		case phaseReadAddress, phaseReadTrack:
			f.abort(0)
		}
	}
}

// acceptDataByte is called when the CPU writes the data register during a
// write phase.
func (f *WD1793) acceptDataByte() {
	switch f.phase {
	case phaseWrite:
		if f.bufPos < len(f.buffer) {
			f.buffer[f.bufPos] = f.data
			f.bufPos++
		}
		f.status &^= StatusDRQ

		if f.bufPos >= len(f.buffer) {
			// recompute the stored CRC for the rewritten field
			s := f.findSector()
			if s != nil {
				s.DataCRC = DataCRC(s.Data)
			}
			if f.multiple {
				f.sector++
				if s := f.findSector(); s != nil {
					f.buffer = s.Data
					f.bufPos = 0
					f.nextByte = f.clock + byteTStates
					return
				}
			}
			f.abort(0)
		}
	case phaseWriteTrack:
		f.rawTrack = append(f.rawTrack, f.data)
		f.status &^= StatusDRQ
	}
}

// finishWriteTrack parses the raw byte stream the CPU supplied during a
// write track command and rebuilds the physical track from it.
func (f *WD1793) finishWriteTrack() {
	img := f.image()
	t := img.Track(f.head[f.drive], f.side)
	if t == nil {
		f.abort(StatusWriteFault)
		return
	}

	type pendingID struct {
		a  AddressRecord
		ok bool
	}

	var sectors []Sector
	var id pendingID

	raw := f.rawTrack
	for i := 0; i < len(raw); i++ {
		// the formatter writes 0xf5 for the 0xa1 sync bytes; the mark
		// byte follows
		if raw[i] != 0xf5 {
			continue
		}
		j := i
		for j < len(raw) && raw[j] == 0xf5 {
			j++
		}
		if j >= len(raw) {
			break
		}

		switch raw[j] {
		case markID:
			if j+4 < len(raw) {
				id.a = AddressRecord{
					Cylinder: raw[j+1],
					Side:     raw[j+2],
					Sector:   raw[j+3],
					SizeCode: raw[j+4],
				}
				id.a.CRC = AddressCRC(id.a)
				id.ok = true
				i = j + 4
			}
		case markData, markDeleted:
			if !id.ok {
				break
			}
			size := id.a.SectorSize()
			if j+size < len(raw) {
				s := Sector{Address: id.a}
				s.Data = make([]uint8, size)
				copy(s.Data, raw[j+1:j+1+size])
				s.DataCRC = DataCRC(s.Data)
				sectors = append(sectors, s)
				i = j + size
			}
			id.ok = false
		}
	}

	if len(sectors) > 0 {
		t.Sectors = sectors
	}

	logger.Logf("fdc", "write track: %d sectors on T%d/S%d", len(sectors), f.head[f.drive], f.side)

	f.rawTrack = f.rawTrack[:0]
	f.abort(0)
}
