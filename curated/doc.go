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

// Package curated is a helper package for the error type. The curated.Errorf()
// function is a drop in replacement for the fmt.Errorf() function in the
// standard library.
//
// Preferred usage is for the pattern string to be predefined in the package
// from which the error originates. For example, the loaders package defines
// the patterns for the media loading errors:
//
//	const ImageFormatInvalid = "image format invalid: %v"
//
// The pattern can then be used to identify whether an error is of a specific
// type, even when it has been wrapped several levels deep:
//
//	if curated.Has(err, loaders.ImageFormatInvalid) {
//		...
//	}
//
// Sentinel errors with no formatting verbs work in the same way. This is how
// expected "errors", the user interrupt signal for example, are passed around
// the emulator without the hot paths having to define their own types.
package curated
