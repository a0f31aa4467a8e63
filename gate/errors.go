// gate/errors.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gate

import (
	"errors"
)

// These are only ever returned by Manager.Validate; the scheduling
// operations themselves never fail.
var (
	ErrAsymmetricNeighbor = errors.New("Neighbor edge is not symmetric")
	ErrEmptyBucket        = errors.New("Empty expiration bucket")
	ErrKeyMismatch        = errors.New("Gate times and neighbor graph disagree")
	ErrSelfNeighbor       = errors.New("Gate is its own neighbor")
	ErrStaleExpiration    = errors.New("Expiration index does not match gate times")
)
