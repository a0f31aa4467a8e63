// rand/rand.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a seedable PCG random number generator. Each simulation
// session owns its own Rand so that runs are reproducible and sessions
// can run concurrently.
type Rand struct {
	r *pcg.PCG32
}

func Make() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// MakeSeeded returns a Rand initialized with the given seed.
func MakeSeeded(s int64) *Rand {
	r := Make()
	r.Seed(s)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// SampleWeighted randomly samples an element from the given slice with the
// probability of choosing each element proportional to the value returned
// by the provided callback. It returns the index of the element, or -1 if
// all weights are zero.
func SampleWeighted[T any](r *Rand, slice []T, weight func(T) float32) int {
	// Weighted reservoir sampling...
	idx := -1
	var sumWt float32
	for i, v := range slice {
		w := weight(v)
		if w <= 0 {
			continue
		}

		sumWt += w
		if r.Float32() < w/sumWt {
			idx = i
		}
	}
	return idx
}
