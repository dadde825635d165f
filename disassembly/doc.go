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

// Package disassembly is the static Z80 disassembler.
//
// Disassembly works against any byte source and has no side effects: the
// debugger points it at the live memory map through the direct-read
// interface, tooling points it at flat files. One instruction is decoded
// per call to Disassemble(); the Entry it returns carries the operator and
// operand fields separately so that displays can columnise them.
package disassembly
