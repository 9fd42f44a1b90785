// Package tree implements the partitioned-region tree the FMM driver
// consumes as an external collaborator (spec.md §6): bounds/depth/count
// queries, insert/find, pre- and post-order traversal over locally-owned
// nodes, and a near/far dual-tree walker driven by a bounding-box
// separation oracle. No PR-tree source shipped with the retrieved
// reference pack (the original implementation delegates to an external
// C library's N-ary tree), so QuadTree and OctTree below are built from
// scratch to the contract spec.md describes, in the teacher's plain
// constructor-function style.
package tree

import "math"

// Bound2D is an axis-aligned bounding box in the plane.
type Bound2D struct {
	Min, Max [2]float64
}

// Center returns the box's geometric center.
func (b Bound2D) Center() [2]float64 {
	return [2]float64{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2}
}

// Diameter returns the box's diagonal length.
func (b Bound2D) Diameter() float64 {
	return math.Hypot(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
}

// Contains reports whether (x,y) lies within b (inclusive).
func (b Bound2D) Contains(x, y float64) bool {
	return x >= b.Min[0] && x <= b.Max[0] && y >= b.Min[1] && y <= b.Max[1]
}

// quadrant returns the index (0..3) of the child quadrant containing
// (x,y), splitting b at its center, along with that quadrant's bound.
func (b Bound2D) quadrant(x, y float64) (int, Bound2D) {
	c := b.Center()
	idx := 0
	out := b
	if x >= c[0] {
		idx |= 1
		out.Min[0] = c[0]
	} else {
		out.Max[0] = c[0]
	}
	if y >= c[1] {
		idx |= 2
		out.Min[1] = c[1]
	} else {
		out.Max[1] = c[1]
	}
	return idx, out
}

// childBound returns the sub-bound of the idx'th quadrant (0..3, bit 0 =
// +x half, bit 1 = +y half) obtained by splitting b at its center.
func (b Bound2D) childBound(idx int) Bound2D {
	c := b.Center()
	out := b
	if idx&1 != 0 {
		out.Min[0] = c[0]
	} else {
		out.Max[0] = c[0]
	}
	if idx&2 != 0 {
		out.Min[1] = c[1]
	} else {
		out.Max[1] = c[1]
	}
	return out
}

// Separation returns the minimum Euclidean distance between b and o, or
// 0 if they overlap.
func (b Bound2D) Separation(o Bound2D) float64 {
	dx := axisGap(b.Min[0], b.Max[0], o.Min[0], o.Max[0])
	dy := axisGap(b.Min[1], b.Max[1], o.Min[1], o.Max[1])
	return math.Hypot(dx, dy)
}

func axisGap(aMin, aMax, bMin, bMax float64) float64 {
	if aMax < bMin {
		return bMin - aMax
	}
	if bMax < aMin {
		return aMin - bMax
	}
	return 0
}

// Bound3D is an axis-aligned bounding box in space.
type Bound3D struct {
	Min, Max [3]float64
}

// Center returns the box's geometric center.
func (b Bound3D) Center() [3]float64 {
	return [3]float64{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Diameter returns the box's diagonal length.
func (b Bound3D) Diameter() float64 {
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Contains reports whether (x,y,z) lies within b (inclusive).
func (b Bound3D) Contains(x, y, z float64) bool {
	return x >= b.Min[0] && x <= b.Max[0] &&
		y >= b.Min[1] && y <= b.Max[1] &&
		z >= b.Min[2] && z <= b.Max[2]
}

// octant returns the index (0..7) of the child octant containing
// (x,y,z), splitting b at its center, along with that octant's bound.
func (b Bound3D) octant(x, y, z float64) (int, Bound3D) {
	c := b.Center()
	idx := 0
	out := b
	if x >= c[0] {
		idx |= 1
		out.Min[0] = c[0]
	} else {
		out.Max[0] = c[0]
	}
	if y >= c[1] {
		idx |= 2
		out.Min[1] = c[1]
	} else {
		out.Max[1] = c[1]
	}
	if z >= c[2] {
		idx |= 4
		out.Min[2] = c[2]
	} else {
		out.Max[2] = c[2]
	}
	return idx, out
}

// childBound returns the sub-bound of the idx'th octant (0..7, bit 0 =
// +x half, bit 1 = +y half, bit 2 = +z half) obtained by splitting b at
// its center.
func (b Bound3D) childBound(idx int) Bound3D {
	c := b.Center()
	out := b
	if idx&1 != 0 {
		out.Min[0] = c[0]
	} else {
		out.Max[0] = c[0]
	}
	if idx&2 != 0 {
		out.Min[1] = c[1]
	} else {
		out.Max[1] = c[1]
	}
	if idx&4 != 0 {
		out.Min[2] = c[2]
	} else {
		out.Max[2] = c[2]
	}
	return out
}

// Separation returns the minimum Euclidean distance between b and o, or
// 0 if they overlap.
func (b Bound3D) Separation(o Bound3D) float64 {
	dx := axisGap(b.Min[0], b.Max[0], o.Min[0], o.Max[0])
	dy := axisGap(b.Min[1], b.Max[1], o.Min[1], o.Max[1])
	dz := axisGap(b.Min[2], b.Max[2], o.Min[2], o.Max[2])
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Order selects pre- or post-order traversal.
type Order int

const (
	PreOrder Order = iota
	PostOrder
)
