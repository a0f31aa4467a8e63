// gate/state.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gate

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/brunoga/deep"
	"github.com/goforj/godump"

	"github.com/mmp/arrivalgates/math"
)

// State is an independent copy of a Manager's contents, for debugging
// and inspection.
type State struct {
	MinSeparationNM float32
	Times           map[math.Point2LL]float32
	Neighbors       map[math.Point2LL]map[math.Point2LL]struct{}
	Expirations     []Expiration
}

// Expiration lists the gates that expire at a given time.
type Expiration struct {
	Time  float32
	Gates []math.Point2LL
}

// Snapshot returns a copy of the manager's state that shares no storage
// with it.
func (m *Manager) Snapshot() State {
	s := State{
		MinSeparationNM: m.MinSeparation(),
		Times:           deep.MustCopy(m.times),
		Neighbors:       deep.MustCopy(map[math.Point2LL]map[math.Point2LL]struct{}(m.neighbors)),
	}
	m.expiring.ascend(func(b *bucket) bool {
		s.Expirations = append(s.Expirations, Expiration{
			Time:  b.t,
			Gates: sortPoints(slices.Collect(maps.Keys(b.gates))),
		})
		return true
	})
	return s
}

// DumpString returns a human-readable dump of the manager's state.
func (m *Manager) DumpString() string {
	return godump.DumpStr(m.Snapshot())
}

// Validate checks the manager's internal consistency: every gate with a
// time has a neighbor set and vice versa, neighbor edges are symmetric,
// and each gate is in exactly the expiration bucket for its time. It
// returns nil if all is well; otherwise all of the errors found are
// joined together.
func (m *Manager) Validate() error {
	var errs []error

	for gate := range m.times {
		if _, ok := m.neighbors[gate]; !ok {
			errs = append(errs, fmt.Errorf("%s: no neighbor set: %w", gate, ErrKeyMismatch))
		}
	}

	for gate, nbrs := range m.neighbors {
		if _, ok := m.times[gate]; !ok {
			errs = append(errs, fmt.Errorf("%s: neighbor set without a time: %w", gate, ErrKeyMismatch))
		}
		for n := range nbrs {
			if n == gate {
				errs = append(errs, fmt.Errorf("%s: %w", gate, ErrSelfNeighbor))
				continue
			}
			if _, ok := m.times[n]; !ok {
				errs = append(errs, fmt.Errorf("%s: neighbor %s has no time: %w", gate, n, ErrKeyMismatch))
			}
			if _, ok := m.neighbors[n][gate]; !ok {
				errs = append(errs, fmt.Errorf("%s: neighbor %s does not refer back: %w", gate, n, ErrAsymmetricNeighbor))
			}
		}
	}

	n := 0
	m.expiring.ascend(func(b *bucket) bool {
		if len(b.gates) == 0 {
			errs = append(errs, fmt.Errorf("time %f: %w", b.t, ErrEmptyBucket))
		}
		for gate := range b.gates {
			n++
			if t, ok := m.times[gate]; !ok {
				errs = append(errs, fmt.Errorf("%s: expires at %f but has no time: %w", gate, b.t, ErrStaleExpiration))
			} else if t != b.t {
				errs = append(errs, fmt.Errorf("%s: expires at %f but time is %f: %w", gate, b.t, t, ErrStaleExpiration))
			}
		}
		return true
	})
	if n != len(m.times) {
		errs = append(errs, fmt.Errorf("%d gates in expiration index, %d with times: %w", n, len(m.times), ErrStaleExpiration))
	}

	return errors.Join(errs...)
}
