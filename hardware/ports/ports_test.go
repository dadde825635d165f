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

package ports_test

import (
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/ports"
	"github.com/jetsetilly/gopherzx/test"
)

type stubDevice struct {
	inValue uint8
	lastOut uint8
	outPort uint16
}

func (d *stubDevice) PortIn(_ uint16) uint8 {
	return d.inValue
}

func (d *stubDevice) PortOut(port uint16, data uint8) {
	d.outPort = port
	d.lastOut = data
}

func TestDispatch(t *testing.T) {
	p := ports.NewPorts()

	// a device on every even port, like the ULA
	dev := &stubDevice{inValue: 0x55}
	test.ExpectSuccess(t, p.Attach("ula", 0x0001, 0x0000, dev))

	test.ExpectEquality(t, p.In(0x00fe), uint8(0x55))
	test.ExpectEquality(t, p.In(0x1234), uint8(0x55))

	// odd ports are unclaimed
	test.ExpectEquality(t, p.In(0x00ff), uint8(0xff))

	p.Out(0x00fe, 0x07)
	test.ExpectEquality(t, dev.lastOut, uint8(0x07))
	test.ExpectEquality(t, dev.outPort, uint16(0x00fe))
}

func TestDuplicateRejected(t *testing.T) {
	p := ports.NewPorts()

	dev := &stubDevice{}
	test.ExpectSuccess(t, p.Attach("a", 0x00ff, 0x001f, dev))

	err := p.Attach("b", 0x00ff, 0x001f, dev)
	test.ExpectSuccess(t, curated.Has(err, ports.DuplicateDevice))

	// same mask, different value is fine
	test.ExpectSuccess(t, p.Attach("c", 0x00ff, 0x003f, dev))
}

func TestFloatingBus(t *testing.T) {
	p := ports.NewPorts()

	// without a floating bus source, unclaimed reads idle high
	test.ExpectEquality(t, p.In(0x1234), uint8(0xff))

	p.FloatingBus = func() uint8 { return 0x47 }
	test.ExpectEquality(t, p.In(0x1234), uint8(0x47))

	// a claimed port is unaffected by the floating bus
	dev := &stubDevice{inValue: 0x01}
	test.ExpectSuccess(t, p.Attach("dev", 0xffff, 0x1234, dev))
	test.ExpectEquality(t, p.In(0x1234), uint8(0x01))
}

func TestDetach(t *testing.T) {
	p := ports.NewPorts()

	dev := &stubDevice{inValue: 0x01}
	test.ExpectSuccess(t, p.Attach("dev", 0xffff, 0x0001, dev))
	test.ExpectEquality(t, p.In(0x0001), uint8(0x01))

	p.Detach("dev")
	test.ExpectEquality(t, p.In(0x0001), uint8(0xff))
}
