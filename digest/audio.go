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

package digest

import (
	"crypto/sha1"
	"fmt"
)

// Audio hashes the PCM stream. It implements the audio package's
// CaptureSink interface so it can be attached to the mixer directly.
type Audio struct {
	digest [sha1.Size]byte
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	return &Audio{}
}

// Hash implements the Digest interface.
func (dig *Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Audio) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
}

// WriteFrames implements the audio.CaptureSink interface.
func (dig *Audio) WriteFrames(pcm []int16) error {
	buf := make([]byte, 0, sha1.Size+len(pcm)*2)
	buf = append(buf, dig.digest[:]...)
	for _, s := range pcm {
		buf = append(buf, byte(s), byte(uint16(s)>>8))
	}
	dig.digest = sha1.Sum(buf)
	return nil
}
