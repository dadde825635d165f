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

package debugger

import (
	"sort"

	"github.com/jetsetilly/gopherzx/hardware/cpu"
)

// CallFlowEntry is one observed control flow edge.
type CallFlowEntry struct {
	Source uint16
	Target uint16
	Kind   cpu.FlowKind
	Hits   uint64
}

// CallFlow records every control flow event the CPU reports: jumps, calls,
// returns and interrupt entries. The visualisation layer uses the source
// and target histograms to paint hot areas of the memory map.
type CallFlow struct {
	edges map[uint64]*CallFlowEntry

	// per address histograms
	Sources map[uint16]uint64
	Targets map[uint16]uint64

	// per address tally of flow kinds, for the dominant kind query
	kinds map[uint16]map[cpu.FlowKind]uint64
}

// NewCallFlow is the preferred method of initialisation for the CallFlow
// type.
func NewCallFlow() *CallFlow {
	cf := &CallFlow{}
	cf.Reset()
	return cf
}

// Reset forgets everything recorded so far.
func (cf *CallFlow) Reset() {
	cf.edges = make(map[uint64]*CallFlowEntry)
	cf.Sources = make(map[uint16]uint64)
	cf.Targets = make(map[uint16]uint64)
	cf.kinds = make(map[uint16]map[cpu.FlowKind]uint64)
}

func edgeKey(f cpu.Flow) uint64 {
	return uint64(f.Source)<<32 | uint64(f.Target)<<8 | uint64(f.Kind)
}

// Record a control flow event. Events with the Valid flag clear are
// ignored, so the CPU's flow field can be passed unconditionally.
func (cf *CallFlow) Record(f cpu.Flow) {
	if !f.Valid {
		return
	}

	k := edgeKey(f)
	e, ok := cf.edges[k]
	if !ok {
		e = &CallFlowEntry{Source: f.Source, Target: f.Target, Kind: f.Kind}
		cf.edges[k] = e
	}
	e.Hits++

	cf.Sources[f.Source]++
	cf.Targets[f.Target]++

	m, ok := cf.kinds[f.Source]
	if !ok {
		m = make(map[cpu.FlowKind]uint64)
		cf.kinds[f.Source] = m
	}
	m[f.Kind]++
}

// Entries returns every edge, ordered by hit count (descending).
func (cf *CallFlow) Entries() []CallFlowEntry {
	l := make([]CallFlowEntry, 0, len(cf.edges))
	for _, e := range cf.edges {
		l = append(l, *e)
	}
	sort.Slice(l, func(i, j int) bool {
		if l[i].Hits != l[j].Hits {
			return l[i].Hits > l[j].Hits
		}
		return l[i].Source < l[j].Source
	})
	return l
}

// DominantKind returns the most frequent flow kind originating at an
// address.
func (cf *CallFlow) DominantKind(addr uint16) cpu.FlowKind {
	m, ok := cf.kinds[addr]
	if !ok {
		return cpu.FlowNone
	}

	best := cpu.FlowNone
	var bestCount uint64
	for k, n := range m {
		if n > bestCount {
			best = k
			bestCount = n
		}
	}
	return best
}
