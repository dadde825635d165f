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

	"github.com/jetsetilly/gopherzx/hardware/ula"
)

// Video hashes framebuffers. The digest value of frame N is folded into
// the hash of frame N+1, so the final value summarises the whole sequence.
type Video struct {
	digest [sha1.Size]byte
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{}
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
}

// Fold a completed frame into the digest.
func (dig *Video) Fold(fb *ula.Framebuffer) {
	buf := make([]byte, 0, sha1.Size+len(fb.Pix))
	buf = append(buf, dig.digest[:]...)
	buf = append(buf, fb.Pix...)
	dig.digest = sha1.Sum(buf)
}
