// gate/expiration.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gate

import (
	"github.com/google/btree"

	"github.com/mmp/arrivalgates/math"
)

// bucket holds all of the gates that expire at the same time.
type bucket struct {
	t     float32
	gates map[math.Point2LL]struct{}
}

func bucketLess(a, b *bucket) bool {
	return a.t < b.t
}

// expirationIndex orders gates by the time at which they expire so that
// everything at or before a given time can be found without scanning all
// of the gates. Unlike a heap, it also allows efficient removal of a gate
// whose time has changed.
type expirationIndex struct {
	tree *btree.BTreeG[*bucket]
}

func makeExpirationIndex() *expirationIndex {
	return &expirationIndex{tree: btree.NewG(8, bucketLess)}
}

func (e *expirationIndex) add(t float32, p math.Point2LL) {
	b, ok := e.tree.Get(&bucket{t: t})
	if !ok {
		b = &bucket{t: t, gates: make(map[math.Point2LL]struct{})}
		e.tree.ReplaceOrInsert(b)
	}
	b.gates[p] = struct{}{}
}

// remove removes p from the bucket for time t, discarding the bucket if
// it is then empty.
func (e *expirationIndex) remove(t float32, p math.Point2LL) {
	b, ok := e.tree.Get(&bucket{t: t})
	if !ok {
		return
	}
	delete(b.gates, p)
	if len(b.gates) == 0 {
		e.tree.Delete(b)
	}
}

// deleteBucket discards the bucket for time t along with any gates that
// are still in it.
func (e *expirationIndex) deleteBucket(t float32) {
	e.tree.Delete(&bucket{t: t})
}

// min returns the bucket with the earliest time.
func (e *expirationIndex) min() (*bucket, bool) {
	return e.tree.Min()
}

func (e *expirationIndex) ascend(fn func(b *bucket) bool) {
	e.tree.Ascend(fn)
}

func (e *expirationIndex) len() int {
	return e.tree.Len()
}

func (e *expirationIndex) clear() {
	e.tree.Clear(false)
}
