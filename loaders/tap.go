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
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/hardware/tape"
)

// ParseTAP splits a TAP file into tape blocks. Each block in the file is a
// two byte little-endian length followed by that many bytes: flag,
// payload, XOR checksum.
func ParseTAP(data []uint8) ([]tape.Block, error) {
	var blocks []tape.Block
	offset := 0

	for offset < len(data) {
		if offset+2 > len(data) {
			return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TAP: truncated block length at offset %d", offset))
		}

		size := int(data[offset]) | int(data[offset+1])<<8
		offset += 2

		if size == 0 {
			continue
		}
		if offset+size > len(data) {
			return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TAP: truncated block at offset %d", offset))
		}

		payload := make([]uint8, size)
		copy(payload, data[offset:offset+size])
		offset += size

		if !ValidTAPBlock(payload) {
			return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TAP: bad checksum in block %d", len(blocks)))
		}

		blocks = append(blocks, tape.Block{
			Flag: payload[0],
			Data: payload,
		})
	}

	if len(blocks) == 0 {
		return nil, curated.Errorf(ImageFormatInvalid, curated.Errorf("TAP: no blocks"))
	}

	return blocks, nil
}

// ValidTAPBlock checks a block's XOR checksum: at least three bytes, and
// the XOR of every byte except the last equals the last.
func ValidTAPBlock(payload []uint8) bool {
	if len(payload) < 3 {
		return false
	}

	var x uint8
	for _, b := range payload[:len(payload)-1] {
		x ^= b
	}
	return x == payload[len(payload)-1]
}

// TAPChecksum computes the checksum byte for a payload (flag and data,
// without the checksum itself).
func TAPChecksum(payload []uint8) uint8 {
	var x uint8
	for _, b := range payload {
		x ^= b
	}
	return x
}

// LoadTAP parses a TAP file and inserts it into the machine's tape deck.
func LoadTAP(mach *spectrum.Spectrum, data []uint8) error {
	blocks, err := ParseTAP(data)
	if err != nil {
		return err
	}
	mach.Tape.Insert(blocks)
	return nil
}

// header block types.
const (
	TAPHeaderProgram        = 0
	TAPHeaderNumberArray    = 1
	TAPHeaderCharacterArray = 2
	TAPHeaderCode           = 3
)

// Header is the decoded form of a 17 byte header block payload.
type Header struct {
	Type     int
	Filename string
	Length   uint16
	Param1   uint16
	Param2   uint16
}

// DecodeHeader decodes a header block. The payload includes the flag and
// checksum bytes, so a standard header is 19 bytes long.
func DecodeHeader(b tape.Block) (Header, error) {
	if !b.IsHeader() || len(b.Data) != 19 {
		return Header{}, curated.Errorf(ImageFormatInvalid, curated.Errorf("TAP: not a header block"))
	}

	return Header{
		Type:     int(b.Data[1]),
		Filename: strings.TrimRight(string(b.Data[2:12]), " "),
		Length:   uint16(b.Data[12]) | uint16(b.Data[13])<<8,
		Param1:   uint16(b.Data[14]) | uint16(b.Data[15])<<8,
		Param2:   uint16(b.Data[16]) | uint16(b.Data[17])<<8,
	}, nil
}

func (h Header) String() string {
	t := "?"
	switch h.Type {
	case TAPHeaderProgram:
		t = "Program"
	case TAPHeaderNumberArray:
		t = "Number array"
	case TAPHeaderCharacterArray:
		t = "Character array"
	case TAPHeaderCode:
		t = "Code"
	}
	return fmt.Sprintf("%s: '%s' (%d bytes)", t, h.Filename, h.Length)
}
