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

// Package performance profiles the emulation: how many frames can the
// machine produce in a wall-clock period with the throttle off.
//
// With the statsview option a live runtime metrics server runs for the
// duration of the measurement, for watching allocation and GC behaviour
// while the emulation is under load.
package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/statsview"

	"github.com/jetsetilly/gopherzx/hardware/clocks"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// Check runs the machine flat out for the given duration and writes a
// report. The statsview flag starts the live metrics server for the run.
func Check(output io.Writer, mach *spectrum.Spectrum, duration time.Duration, statsView bool) error {
	if statsView {
		mgr := statsview.New()
		go func() {
			_ = mgr.Start()
		}()
		defer mgr.Stop()
	}

	spec := mach.ULA.Spec()
	refreshRate := clocks.FrameRate(clocks.Z80Clock48K, spec.FrameTStates())

	frames := 0
	start := time.Now()
	end := start.Add(duration)

	for time.Now().Before(end) {
		// run a batch between clock checks so the clock read does not
		// dominate
		for i := 0; i < 10; i++ {
			_ = mach.RunFrame()
			frames++
		}
	}

	elapsed := time.Since(start).Seconds()
	fps := float64(frames) / elapsed

	fmt.Fprintf(output, "%.2f fps (%d frames in %.2fs) %.1fx native (%.2fHz)\n",
		fps, frames, elapsed, fps/refreshRate, refreshRate)

	return nil
}
