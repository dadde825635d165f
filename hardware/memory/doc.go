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

// Package memory implements the banked memory subsystem of the ZX Spectrum
// family.
//
// One byte arena backs 64 16KiB RAM pages and another 64 16KiB ROM pages. The
// Z80 address space is divided into four 16KiB windows; bits 15-14 of a Z80
// address select the window, bits 13-0 the offset within it. Each window has
// independently selected read and write bases so that a window can be (for
// example) readable from ROM while writes are discarded into the trash page.
//
// The debugger accesses memory with DirectRead() and DirectWrite(). Unlike
// the normal access functions these never touch the access counters; and
// DirectWrite() to a ROM window patches the ROM itself rather than routing
// to the trash page.
package memory
