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

import (
	"os"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/ula"
)

// error patterns for machine configuration.
const (
	ConfigInvalid = "config invalid: %v"
	IoFailure     = "io failure: %v"
)

// Model identifies the machine being emulated.
type Model string

// List of supported models.
const (
	Model48K      Model = "ZX48"
	Model128K     Model = "ZX128"
	ModelPentagon Model = "Pentagon"
)

// BeeperIssue selects the board revision, which changes how the EAR/MIC
// bits feed back into the input port.
type BeeperIssue int

// List of board issues.
const (
	Issue3 BeeperIssue = iota
	Issue2
)

// Config collects everything init needs. The collaborator fills it in from
// whatever settings mechanism it uses; the core only validates it.
type Config struct {
	Model Model

	// total RAM in KiB. zero selects the model default
	RAMSizeKiB int

	// ROM images in page order for the model: the 48K machine expects one
	// image, the 128K machines two, plus the TR-DOS ROM if enabled
	ROMFiles []string

	TRDOSEnabled bool
	TRDOSTraps   bool

	BeeperIssue BeeperIssue

	// raster overrides. zero values take the model defaults
	ULATimings *ula.Spec

	FloatingBusEnabled bool
}

// model defaults used during validation.
type modelDefaults struct {
	ramKiB    int
	maxRAMKiB int
	numROMs   int
	spec      ula.Spec

	// ROM page carrying 48K BASIC and, where present, the 128K editor and
	// TR-DOS
	romBASIC  int
	romEditor int
	romDOS    int
}

var defaults = map[Model]modelDefaults{
	Model48K: {
		ramKiB:    48,
		maxRAMKiB: 48,
		numROMs:   1,
		spec:      ula.Spec48K,
		romBASIC:  0,
		romEditor: -1,
		romDOS:    1,
	},
	Model128K: {
		ramKiB:    128,
		maxRAMKiB: 128,
		numROMs:   2,
		spec:      ula.Spec128K,
		romBASIC:  1,
		romEditor: 0,
		romDOS:    2,
	},
	ModelPentagon: {
		ramKiB:    128,
		maxRAMKiB: 1024,
		numROMs:   2,
		spec:      ula.SpecPentagon,
		romBASIC:  1,
		romEditor: 0,
		romDOS:    2,
	},
}

// validate the configuration and fill in model defaults. returns the
// defaults entry on success.
func (c *Config) validate() (modelDefaults, error) {
	d, ok := defaults[c.Model]
	if !ok {
		return d, curated.Errorf(ConfigInvalid, curated.Errorf("unknown model (%s)", string(c.Model)))
	}

	if c.RAMSizeKiB == 0 {
		c.RAMSizeKiB = d.ramKiB
	}
	if c.RAMSizeKiB > d.maxRAMKiB {
		return d, curated.Errorf(ConfigInvalid, curated.Errorf("unsupported RAM size for %s (%dKiB)", string(c.Model), c.RAMSizeKiB))
	}

	want := d.numROMs
	if c.TRDOSEnabled {
		want++
	}
	if len(c.ROMFiles) != 0 && len(c.ROMFiles) < want {
		return d, curated.Errorf(ConfigInvalid, curated.Errorf("%s needs %d ROM images, %d given", string(c.Model), want, len(c.ROMFiles)))
	}

	if c.ULATimings == nil {
		spec := d.spec
		c.ULATimings = &spec
	}

	return d, nil
}

// readROMs loads the configured ROM files.
func (c *Config) readROMs() ([][]uint8, error) {
	images := make([][]uint8, 0, len(c.ROMFiles))
	for _, path := range c.ROMFiles {
		d, err := os.ReadFile(path)
		if err != nil {
			return nil, curated.Errorf(IoFailure, err)
		}
		images = append(images, d)
	}
	return images, nil
}
