// gate/neighbors.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gate

import (
	"maps"
	"slices"

	"github.com/mmp/arrivalgates/math"
)

// neighborGraph records, for each gate, the other gates that are within
// the minimum separation of it. Edges are always added and removed in
// pairs so that the graph stays symmetric.
type neighborGraph map[math.Point2LL]map[math.Point2LL]struct{}

func (g neighborGraph) addNode(p math.Point2LL) {
	if _, ok := g[p]; !ok {
		g[p] = make(map[math.Point2LL]struct{})
	}
}

func (g neighborGraph) link(a, b math.Point2LL) {
	g[a][b] = struct{}{}
	g[b][a] = struct{}{}
}

// removeNode deletes p and the reverse edge from each of its neighbors;
// the neighbors themselves remain in the graph.
func (g neighborGraph) removeNode(p math.Point2LL) {
	for n := range g[p] {
		delete(g[n], p)
	}
	delete(g, p)
}

// sorted returns p's neighbors ordered by longitude and then latitude,
// or nil if p is not in the graph.
func (g neighborGraph) sorted(p math.Point2LL) []math.Point2LL {
	nbrs, ok := g[p]
	if !ok {
		return nil
	}
	return sortPoints(slices.AppendSeq(make([]math.Point2LL, 0, len(nbrs)), maps.Keys(nbrs)))
}

func sortPoints(p []math.Point2LL) []math.Point2LL {
	slices.SortFunc(p, comparePoints)
	return p
}

func comparePoints(a, b math.Point2LL) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		} else if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
