// gate/manager.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package gate records the times at which procedurally generated arrivals
// are expected to cross the boundary of the terminal airspace, in order
// to simulate enroute spacing. Gates are the points where arrival routes
// intersect the boundary; a new arrival may only be scheduled through a
// gate once all gates within the minimum separation of it are open.
//
// A Manager is not safe for concurrent use: callers must serialize all
// calls, and concurrent reads are only safe if no mutation is in flight.
package gate

import (
	"log/slog"
	"maps"
	gomath "math"
	"slices"

	"github.com/mmp/arrivalgates/log"
	"github.com/mmp/arrivalgates/math"
)

// DefaultMinSeparationNM is the default minimum distance between
// arrivals as they enter the terminal airspace.
const DefaultMinSeparationNM = 5

// DistanceFunc returns the great-circle distance between two points as
// an angle in radians.
type DistanceFunc func(a, b math.Point2LL) float32

type Manager struct {
	// Minimum separation between gates, in radians.
	minSeparation float32
	distance      DistanceFunc

	// Scheduled crossing time [s] of each gate.
	times     map[math.Point2LL]float32
	neighbors neighborGraph
	expiring  *expirationIndex

	lg *log.Logger
}

type Option func(*Manager)

// WithDistance overrides the function used to measure the distance
// between gates; the default is math.AngularDistance2LL.
func WithDistance(d DistanceFunc) Option {
	return func(m *Manager) {
		m.distance = d
	}
}

// NewManager returns a Manager that requires arrivals to be separated by
// at least minSeparationNM nautical miles at the airspace boundary. The
// separation is not validated; a non-positive value means that no gates
// are ever considered to be neighbors. lg may be nil.
func NewManager(minSeparationNM float32, lg *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		minSeparation: math.NMToRadians(minSeparationNM),
		distance:      math.AngularDistance2LL,
		times:         make(map[math.Point2LL]float32),
		neighbors:     make(neighborGraph),
		expiring:      makeExpirationIndex(),
		lg:            lg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MinSeparation returns the minimum separation between arrivals in
// nautical miles.
func (m *Manager) MinSeparation() float32 {
	return math.RadiansToNM(m.minSeparation)
}

// SetMinSeparation updates the minimum separation. The neighbors of gates
// that are already stored are not recomputed; only gates added
// afterward use the new separation. Call RebuildNeighbors to recompute
// them. GetGateOpenTime always uses the current separation.
func (m *Manager) SetMinSeparation(nm float32) {
	m.minSeparation = math.NMToRadians(nm)
}

func (m *Manager) near(a, b math.Point2LL) bool {
	return m.distance(a, b) < m.minSeparation
}

// SetGateTime records that an arrival will cross the given gate at time
// t. If the gate already has a time, the later of the two is kept; a
// previously-committed separation is never shortened.
func (m *Manager) SetGateTime(gate math.Point2LL, t float32) {
	if gomath.IsNaN(float64(t)) {
		m.lg.Warnf("%s: ignoring NaN gate time", gate)
		return
	}
	// A NaN coordinate is never equal to itself, so it could never be
	// found again to be removed.
	if gomath.IsNaN(float64(gate[0])) || gomath.IsNaN(float64(gate[1])) {
		m.lg.Warnf("%s: ignoring gate with NaN coordinate", gate)
		return
	}

	old, ok := m.times[gate]
	if !ok {
		m.neighbors.addNode(gate)
		for existing := range m.times {
			if m.near(gate, existing) {
				m.neighbors.link(gate, existing)
			}
		}

		m.times[gate] = t
		m.expiring.add(t, gate)

		m.lg.Debug("gate created", slog.String("gate", gate.DDString()), slog.Float64("time", float64(t)),
			slog.Int("neighbors", len(m.neighbors[gate])))
		return
	}

	if t <= old {
		return
	}
	m.expiring.remove(old, gate)
	m.times[gate] = t
	m.expiring.add(t, gate)

	m.lg.Debug("gate time extended", slog.String("gate", gate.DDString()),
		slog.Float64("old_time", float64(old)), slog.Float64("time", float64(t)))
}

// GateExists reports whether a time is stored for exactly the given
// point; nearby points are distinct gates.
func (m *Manager) GateExists(gate math.Point2LL) bool {
	_, ok := m.times[gate]
	return ok
}

// GetGateTime returns the time stored for the gate, or 0 if there is
// none. Use GateExists if a gate may legitimately be scheduled at time 0.
func (m *Manager) GetGateTime(gate math.Point2LL) float32 {
	return m.times[gate]
}

// GetGateOpenTime returns the earliest time that an arrival could cross
// at p without violating separation with any stored gate: the latest
// time of all gates within the minimum separation of p, or 0 if there
// are none. p need not be a stored gate.
func (m *Manager) GetGateOpenTime(p math.Point2LL) float32 {
	// The neighbor graph only relates stored gates to each other, so
	// every gate is checked here.
	var open float32
	for gate, t := range m.times {
		if m.near(p, gate) {
			open = math.Max(open, t)
		}
	}
	return open
}

// RemoveGate removes the gate and its time. Its neighbors remain but no
// longer refer to it. Unknown gates are ignored.
func (m *Manager) RemoveGate(gate math.Point2LL) {
	m.neighbors.removeNode(gate)

	if t, ok := m.times[gate]; ok {
		m.expiring.remove(t, gate)
		delete(m.times, gate)

		m.lg.Debug("gate removed", slog.String("gate", gate.DDString()), slog.Float64("time", float64(t)))
	}
}

// Update removes all gates with times at or before t, the current
// simulation time [s]. Nothing is removed if t is NaN.
func (m *Manager) Update(t float32) {
	for {
		b, ok := m.expiring.min()
		if !ok || !(b.t <= t) {
			return
		}

		// RemoveGate modifies b.gates, so iterate over a copy.
		gates := sortPoints(slices.Collect(maps.Keys(b.gates)))
		for _, gate := range gates {
			m.RemoveGate(gate)
		}
		m.expiring.deleteBucket(b.t)

		m.lg.Debug("gates expired", slog.Float64("time", float64(b.t)), slog.Int("count", len(gates)))
	}
}

// Reset removes all gates; the separation is unchanged.
func (m *Manager) Reset() {
	clear(m.times)
	clear(m.neighbors)
	m.expiring.clear()
}

// Gates returns the set of all gates with stored times. The returned map
// is a copy and may be modified by the caller.
func (m *Manager) Gates() map[math.Point2LL]struct{} {
	g := make(map[math.Point2LL]struct{}, len(m.times))
	for p := range m.times {
		g[p] = struct{}{}
	}
	return g
}

// Len returns the number of stored gates.
func (m *Manager) Len() int {
	return len(m.times)
}

// Neighbors returns the stored gates within the minimum separation of
// the given gate, as of when each of them was added, or nil if the gate
// is unknown.
func (m *Manager) Neighbors(gate math.Point2LL) []math.Point2LL {
	return m.neighbors.sorted(gate)
}

// NextExpiration returns the earliest time at which a gate will expire.
func (m *Manager) NextExpiration() (float32, bool) {
	if b, ok := m.expiring.min(); ok {
		return b.t, true
	}
	return 0, false
}

// RebuildNeighbors recomputes all of the neighbor relationships using
// the current minimum separation.
func (m *Manager) RebuildNeighbors() {
	clear(m.neighbors)

	gates := sortPoints(slices.Collect(maps.Keys(m.times)))
	for i, a := range gates {
		m.neighbors.addNode(a)
		for _, b := range gates[:i] {
			if m.near(a, b) {
				m.neighbors.link(a, b)
			}
		}
	}

	m.lg.Debug("neighbors rebuilt", slog.Int("gates", len(gates)),
		slog.Float64("separation_nm", float64(m.MinSeparation())))
}
