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

// Package ports implements the I/O port decoder. Devices register a
// mask/value pattern at boot; IN and OUT requests from the CPU dispatch to
// the first registered device whose pattern matches the 16-bit port address.
//
// An IN from a port that no device claims returns the floating bus value:
// whatever byte the ULA happens to be transferring at this point of the
// frame, or 0xff outside of a screen fetch.
package ports

import (
	"github.com/jetsetilly/gopherzx/curated"
)

// error patterns for the ports package.
const (
	DuplicateDevice = "ports: duplicate registration (mask %04x value %04x)"
)

// Device is any peripheral that responds on the I/O bus. Implementations
// decide for themselves which of the two directions they care about.
type Device interface {
	PortIn(port uint16) uint8
	PortOut(port uint16, data uint8)
}

type registration struct {
	name  string
	mask  uint16
	value uint16
	dev   Device
}

// Ports dispatches I/O requests to registered devices.
type Ports struct {
	registrations []registration

	// FloatingBus supplies the value of an unclaimed IN. installed by the
	// machine at boot; nil means a permanently idle bus (0xff)
	FloatingBus func() uint8
}

// NewPorts is the preferred method of initialisation for the Ports type.
func NewPorts() *Ports {
	return &Ports{}
}

// Attach registers a device for all ports where port&mask == value.
// Registering the same mask/value pattern twice is an error.
func (p *Ports) Attach(name string, mask uint16, value uint16, dev Device) error {
	for _, r := range p.registrations {
		if r.mask == mask && r.value == value {
			return curated.Errorf(DuplicateDevice, mask, value)
		}
	}
	p.registrations = append(p.registrations, registration{
		name:  name,
		mask:  mask,
		value: value,
		dev:   dev,
	})
	return nil
}

// Detach removes a device registration by name.
func (p *Ports) Detach(name string) {
	for i, r := range p.registrations {
		if r.name == name {
			p.registrations = append(p.registrations[:i], p.registrations[i+1:]...)
			return
		}
	}
}

// In dispatches a port read.
func (p *Ports) In(port uint16) uint8 {
	for _, r := range p.registrations {
		if port&r.mask == r.value {
			return r.dev.PortIn(port)
		}
	}
	if p.FloatingBus != nil {
		return p.FloatingBus()
	}
	return 0xff
}

// Out dispatches a port write. Writes to unclaimed ports are discarded.
func (p *Ports) Out(port uint16, data uint8) {
	for _, r := range p.registrations {
		if port&r.mask == r.value {
			r.dev.PortOut(port, data)
			return
		}
	}
}
