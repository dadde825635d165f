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

// Package loaders decodes media and snapshot files into the live machine:
// TAP and TZX tapes, TRD disk images, SNA and Z80 snapshots, and audio
// recordings of tapes (WAV or MP3).
//
// Every loader validates before it mutates. A file that fails its magic,
// length or checksum tests returns ImageFormatInvalid and leaves the
// machine exactly as it was.
package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/hardware/spectrum"
)

// error patterns for the loaders package.
const (
	ImageFormatInvalid = "image format invalid: %v"
	IoFailure          = "io failure: %v"
	UnsupportedMedia   = "unsupported media (%s)"
)

// Load examines the file extension and dispatches to the matching loader.
func Load(mach *spectrum.Spectrum, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return curated.Errorf(IoFailure, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tap":
		return LoadTAP(mach, data)
	case ".tzx":
		return LoadTZX(mach, data)
	case ".trd":
		return LoadTRD(mach, 0, data)
	case ".sna":
		return LoadSNA(mach, data)
	case ".z80":
		return LoadZ80(mach, data)
	case ".wav", ".mp3":
		return LoadAudioTape(mach, path)
	}

	return curated.Errorf(UnsupportedMedia, filepath.Ext(path))
}
