// Package geom provides the pure geometric primitives and data model that
// the bvh package builds on: vertices, triangles, triangle meshes, and
// axis-aligned bounding boxes. Every function here is total over finite
// float64 inputs — there is no error channel, matching the query and
// builder that consume it.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vertex carries a position plus the rendering attributes that ride along
// with it. Only Position participates in geometric queries; Normal and
// Color are forwarded unchanged so a downstream renderer can use them.
type Vertex struct {
	Position r3.Vector
	Normal   r3.Vector
	Color    [4]float64
}

// Triangle is an ordered triple of vertices. Orientation is not used by
// proximity queries — there is no front/back distinction.
type Triangle struct {
	V0, V1, V2 Vertex
}

// Points returns the triangle's three vertex positions in order.
func (t Triangle) Points() [3]r3.Vector {
	return [3]r3.Vector{t.V0.Position, t.V1.Position, t.V2.Position}
}

// TriangleMesh is an ordered sequence of triangles plus a precomputed AABB
// equal to the pointwise min/max of every vertex position. The bounds
// invariant is established once in NewTriangleMesh and never mutated.
type TriangleMesh struct {
	Triangles []Triangle
	Bounds    AABB
}

// NewTriangleMesh computes the tight enclosing AABB for triangles and
// returns the resulting mesh. An empty triangle slice produces a mesh with
// EmptyAABB bounds.
func NewTriangleMesh(triangles []Triangle) TriangleMesh {
	bounds := EmptyAABB()
	for _, tri := range triangles {
		for _, p := range tri.Points() {
			bounds = bounds.UnionPoint(p)
		}
	}
	return TriangleMesh{Triangles: triangles, Bounds: bounds}
}

// AABB is an axis-aligned bounding box defined by its componentwise min and
// max corners. An empty box is represented by (+Inf,+Inf,+Inf),(-Inf,-Inf,-Inf)
// so that unioning it with any point or box yields a valid, tight result.
type AABB struct {
	Min, Max r3.Vector
}

// EmptyAABB returns the canonical empty box.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// UnionPoint returns the smallest box containing b and p.
func (b AABB) UnionPoint(p r3.Vector) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// UnionBox returns the smallest box containing both b and o.
func (b AABB) UnionBox(o AABB) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// DistanceSquared returns the squared distance from p to the closest point
// on or in b: zero on axes where p already falls within [Min.i, Max.i], the
// squared gap to the nearest face otherwise.
func (b AABB) DistanceSquared(p r3.Vector) float64 {
	d := 0.0
	if p.X < b.Min.X {
		d += (p.X - b.Min.X) * (p.X - b.Min.X)
	} else if p.X > b.Max.X {
		d += (p.X - b.Max.X) * (p.X - b.Max.X)
	}
	if p.Y < b.Min.Y {
		d += (p.Y - b.Min.Y) * (p.Y - b.Min.Y)
	} else if p.Y > b.Max.Y {
		d += (p.Y - b.Max.Y) * (p.Y - b.Max.Y)
	}
	if p.Z < b.Min.Z {
		d += (p.Z - b.Min.Z) * (p.Z - b.Min.Z)
	} else if p.Z > b.Max.Z {
		d += (p.Z - b.Max.Z) * (p.Z - b.Max.Z)
	}
	return d
}

// OverlapsSphere reports whether the sphere (c, r) overlaps b. The test is
// strict: a sphere that merely grazes the box (squared distance exactly
// r*r) does not overlap. The query's pruning rule depends on this tie-break;
// the builder's stall check uses OverlapsBox instead.
func (b AABB) OverlapsSphere(c r3.Vector, r float64) bool {
	return b.DistanceSquared(c) < r*r
}

// OverlapsBox reports whether a and b overlap: true unless some axis
// separates them.
func (a AABB) OverlapsBox(b AABB) bool {
	if a.Max.X < b.Min.X || a.Min.X > b.Max.X {
		return false
	}
	if a.Max.Y < b.Min.Y || a.Min.Y > b.Max.Y {
		return false
	}
	if a.Max.Z < b.Min.Z || a.Min.Z > b.Max.Z {
		return false
	}
	return true
}

// octantSigns is the canonical corner-selector table for box octant
// subdivision. Octant c picks the lower half of an axis when the
// corresponding sign is -1 and the upper half when it is +1. This exact
// bit layout (X toggles slowest, Z fastest) is what an external visualizer
// needs to reproduce child index c from its spatial position, and matches
// the octant ordering the teacher's octree package validates in its own
// test suite.
var octantSigns = [8][3]float64{
	{-1, -1, -1},
	{-1, -1, 1},
	{-1, 1, -1},
	{-1, 1, 1},
	{1, -1, -1},
	{1, -1, 1},
	{1, 1, -1},
	{1, 1, 1},
}

// Subdivide splits b into its eight octants using the canonical corner
// table. The returned boxes partition b: their interiors are disjoint and
// their union is b.
func (b AABB) Subdivide() [8]AABB {
	center := b.Center()
	var out [8]AABB
	for i, sign := range octantSigns {
		out[i] = octantBox(b, center, sign)
	}
	return out
}

func octantBox(b AABB, center r3.Vector, sign [3]float64) AABB {
	corner := r3.Vector{
		X: pick(sign[0], b.Min.X, b.Max.X),
		Y: pick(sign[1], b.Min.Y, b.Max.Y),
		Z: pick(sign[2], b.Min.Z, b.Max.Z),
	}
	return AABB{
		Min: r3.Vector{X: math.Min(center.X, corner.X), Y: math.Min(center.Y, corner.Y), Z: math.Min(center.Z, corner.Z)},
		Max: r3.Vector{X: math.Max(center.X, corner.X), Y: math.Max(center.Y, corner.Y), Z: math.Max(center.Z, corner.Z)},
	}
}

func pick(sign, lo, hi float64) float64 {
	if sign < 0 {
		return lo
	}
	return hi
}

// TriangleBounds returns the pointwise min/max of the triangle's three
// vertex positions.
func TriangleBounds(t Triangle) AABB {
	bounds := EmptyAABB()
	for _, p := range t.Points() {
		bounds = bounds.UnionPoint(p)
	}
	return bounds
}
