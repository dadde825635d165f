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

// GopherZX is a cycle-accurate emulation of the ZX Spectrum family.
//
// This file is the reference host: a thin collaborator over the emulation
// core's control and debug APIs. It attaches no GUI; the DEBUG mode is a
// terminal session, the RUN mode drives the machine headless (useful with
// the WAV capture flag), and the PERFORMANCE mode measures throughput.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jetsetilly/gopherzx/debugger"
	"github.com/jetsetilly/gopherzx/debugger/terminal"
	"github.com/jetsetilly/gopherzx/debugger/terminal/colorterm"
	"github.com/jetsetilly/gopherzx/debugger/terminal/plainterm"
	"github.com/jetsetilly/gopherzx/emulation"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
	"github.com/jetsetilly/gopherzx/loaders"
	"github.com/jetsetilly/gopherzx/logger"
	"github.com/jetsetilly/gopherzx/modalflag"
	"github.com/jetsetilly/gopherzx/performance"
	"github.com/jetsetilly/gopherzx/wavfile"
)

const defaultMode = "RUN"

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "DEBUG", "PERFORMANCE")

	model := md.AddString("model", "ZX48", "machine model: ZX48, ZX128, Pentagon")
	romA := md.AddString("rom", "", "ROM image (repeat flags are mode specific)")
	rom128 := md.AddString("rom1", "", "second ROM image for 128K models")
	trdos := md.AddBool("trdos", false, "enable the Beta disk interface")
	trdosROM := md.AddString("trdosrom", "", "TR-DOS ROM image")
	log := md.AddBool("log", false, "echo log entries to stderr")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		os.Exit(10)
	}

	if *log {
		logger.SetEcho(os.Stderr, false)
	}

	config := spectrum.Config{
		Model:        spectrum.Model(*model),
		TRDOSEnabled: *trdos,
		TRDOSTraps:   *trdos,
	}
	for _, r := range []string{*romA, *rom128, *trdosROM} {
		if r != "" {
			config.ROMFiles = append(config.ROMFiles, r)
		}
	}

	mode := md.Mode()
	if mode == "" {
		mode = defaultMode
	}

	if err := launch(md, mode, config); err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		os.Exit(10)
	}
}

func launch(md *modalflag.Modes, mode string, config spectrum.Config) error {
	switch mode {
	case "RUN":
		return runMode(md, config)
	case "DEBUG":
		return debugMode(md, config)
	case "PERFORMANCE":
		return performanceMode(md, config)
	}
	return fmt.Errorf("unsupported mode (%s)", mode)
}

func runMode(md *modalflag.Modes, config spectrum.Config) error {
	md.NewMode()
	frames := md.AddInt("frames", 0, "stop after this many frames (0 = run forever)")
	capture := md.AddString("wav", "", "capture the audio stream to a WAV file")
	throttle := md.AddBool("throttle", true, "pace emulation to 50Hz")

	if p, err := md.Parse(); p != modalflag.ParseContinue {
		return err
	}

	emu, err := emulation.NewEmulator(config, nil)
	if err != nil {
		return err
	}
	emu.Throttle = *throttle

	if media := md.GetArg(0); media != "" {
		if err := loaders.Load(emu.Machine, media); err != nil {
			return err
		}
	}

	if *capture != "" {
		w, err := wavfile.NewCaptureWriter(*capture, 44100)
		if err != nil {
			return err
		}
		defer w.Close()
		emu.Machine.Mixer.AttachCapture(w)
	}

	if *frames <= 0 {
		return emu.StartSync()
	}

	for i := 0; i < *frames; i++ {
		_ = emu.Machine.RunFrame()
	}
	return nil
}

func debugMode(md *modalflag.Modes, config spectrum.Config) error {
	md.NewMode()
	plain := md.AddBool("plain", false, "plain terminal (no raw mode, no colour)")

	if p, err := md.Parse(); p != modalflag.ParseContinue {
		return err
	}

	emu, err := emulation.NewEmulator(config, nil)
	if err != nil {
		return err
	}

	var term terminal.Terminal
	if *plain {
		term = plainterm.NewTerminal(nil, nil)
	} else {
		term = colorterm.NewTerminal()
	}

	dbg, err := debugger.NewDebugger(emu, term)
	if err != nil {
		return err
	}

	if media := md.GetArg(0); media != "" {
		if err := loaders.Load(emu.Machine, media); err != nil {
			return err
		}
	}

	return dbg.InputLoop()
}

func performanceMode(md *modalflag.Modes, config spectrum.Config) error {
	md.NewMode()
	duration := md.AddDuration("duration", 5*time.Second, "measurement period")
	statsView := md.AddBool("statsview", false, "run the live metrics server for the measurement")

	if p, err := md.Parse(); p != modalflag.ParseContinue {
		return err
	}

	mach, err := spectrum.NewSpectrum(config, nil)
	if err != nil {
		return err
	}

	return performance.Check(os.Stdout, mach, *duration, *statsView)
}
