// math/kdtree.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"slices"
)

// KDNode is a node in a 2D KD-tree for Point2LL
type KDNode struct {
	Location Point2LL
	Left     *KDNode
	Right    *KDNode
}

// BuildKDTree constructs a balanced KD-tree from a slice of points.  The
// tree alternates splitting by X (longitude) and Y (latitude) at each
// level. The order of the elements of points is modified.
func BuildKDTree(points []Point2LL) *KDNode {
	if len(points) == 0 {
		return nil
	}
	return buildKDTreeRecursive(points, 0)
}

func buildKDTreeRecursive(points []Point2LL, depth int) *KDNode {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return &KDNode{Location: points[0]}
	}

	axis := depth % 2
	slices.SortFunc(points, func(a, b Point2LL) int {
		if a[axis] < b[axis] {
			return -1
		} else if a[axis] > b[axis] {
			return 1
		}
		return 0
	})

	median := len(points) / 2

	return &KDNode{
		Location: points[median],
		Left:     buildKDTreeRecursive(points[:median], depth+1),
		Right:    buildKDTreeRecursive(points[median+1:], depth+1),
	}
}

// Nearest returns the point stored in the tree that is closest to p,
// measuring distance in nautical miles on a locally-flat earth with the
// given longitude scale. The second return value is false if the tree
// is empty.
func (tree *KDNode) Nearest(p Point2LL, nmPerLongitude float32) (Point2LL, bool) {
	if tree == nil {
		return Point2LL{}, false
	}

	scale := [2]float32{nmPerLongitude, NMPerLatitude}
	dist2 := func(q Point2LL) float32 {
		return Sqr((q[0]-p[0])*scale[0]) + Sqr((q[1]-p[1])*scale[1])
	}

	best, bestDist2 := tree.Location, float32(gomath.MaxFloat32)
	var search func(n *KDNode, depth int)
	search = func(n *KDNode, depth int) {
		if n == nil {
			return
		}
		if d := dist2(n.Location); d < bestDist2 {
			best, bestDist2 = n.Location, d
		}

		axis := depth % 2
		delta := p[axis] - n.Location[axis]
		near, far := n.Left, n.Right
		if delta > 0 {
			near, far = far, near
		}
		search(near, depth+1)
		// Only visit the far side if the splitting plane is closer than
		// the best match so far.
		if Sqr(delta*scale[axis]) < bestDist2 {
			search(far, depth+1)
		}
	}
	search(tree, 0)

	return best, true
}

// selectByIndex walks the tree using the bits of index to navigate.
// At each level, bit 0 decides left (0) or right (1), then shift right.
// This gives well-distributed traversal: 0→root, 1→right, 2→left, 3→right-right, etc.
func (tree *KDNode) selectByIndex(index int) Point2LL {
	if tree == nil {
		return Point2LL{}
	}

	node := tree
	for index != 0 {
		if index&1 == 0 {
			if node.Left != nil {
				node = node.Left
			}
		} else {
			if node.Right != nil {
				node = node.Right
			}
		}
		index >>= 1

		if node.Left == nil && node.Right == nil {
			break
		}
	}

	return node.Location
}

// SelectDistributedPoints selects n well-distributed points from a set
// using KD-tree partitioning and index-based traversal. The points are
// returned in the order they were selected.
func SelectDistributedPoints(points []Point2LL, n int) []Point2LL {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	if n >= len(points) {
		return slices.Clone(points)
	}

	// If the region spans the date line, shift longitudes so that the
	// KD-tree doesn't split there.
	minLon, maxLon := float32(180), float32(-180)
	for _, p := range points {
		minLon, maxLon = Min(minLon, p.Longitude()), Max(maxLon, p.Longitude())
	}
	lonShift := float32(0)
	if maxLon-minLon > 180 {
		lonShift = 180
	}
	wrap := func(lon float32) float32 {
		if lon > 180 {
			return lon - 360
		} else if lon < -180 {
			return lon + 360
		}
		return lon
	}

	shifted := make([]Point2LL, len(points))
	for i, p := range points {
		shifted[i] = Point2LL{wrap(p.Longitude() + lonShift), p.Latitude()}
	}

	tree := BuildKDTree(shifted)

	seen := make(map[Point2LL]struct{}, n)
	var result []Point2LL
	// Duplicates are possible, so allow some extra iterations.
	for i := 0; len(result) < n && i < n*3; i++ {
		p := tree.selectByIndex(i)
		p = Point2LL{wrap(p[0] - lonShift), p[1]}
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			result = append(result, p)
		}
	}

	return result
}
