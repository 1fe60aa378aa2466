package geom

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// singularEps bounds how close the triangle-frame determinant may come to
// zero before the frame is treated as degenerate and closest-point falls
// through to edge projection.
const singularEps = 1e-12

// ClosestPointOnSegment returns the point on segment (a,b) closest to p.
// For a degenerate zero-length segment it returns a.
func ClosestPointOnSegment(a, b, p r3.Vector) r3.Vector {
	ab := b.Sub(a)
	n := ab.Dot(ab)
	if n == 0 {
		return a
	}
	d := ab.Dot(p.Sub(a))
	switch {
	case d < 0:
		return a
	case d > n:
		return b
	default:
		return a.Add(ab.Mul(d / n))
	}
}

// ClosestPointOnTriangle returns the point on triangle t closest to p.
//
// It forms the local frame X = v1-v0, Y = v2-v0, Z = X×Y and solves
// [X Y Z]·(u,v,w) = p-v0 for the barycentric pair (u,v). When the
// projection lands strictly inside the triangle (u>0, v>0, u+v<1) the
// answer is v0+uX+vY. Otherwise — including when the frame is singular
// because the triangle is degenerate — it falls through to the three edge
// projections and returns whichever minimizes distance to p, with ties
// broken in edge order (v0,v1), (v1,v2), (v2,v0).
func ClosestPointOnTriangle(t Triangle, p r3.Vector) r3.Vector {
	v0, v1, v2 := t.V0.Position, t.V1.Position, t.V2.Position
	x := v1.Sub(v0)
	y := v2.Sub(v0)
	z := x.Cross(y)

	// mgl64.Mat3 stores elements column-major, so this literal already has
	// columns X, Y, Z — exactly the [X Y Z] matrix from the linear system.
	frame := mgl64.Mat3{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	}

	if det := frame.Det(); det > -singularEps && det < singularEps {
		return closestOnTriangleEdges(v0, v1, v2, p)
	}

	rhs := p.Sub(v0)
	uvw := frame.Inv().Mul3x1(mgl64.Vec3{rhs.X, rhs.Y, rhs.Z})
	u, v := uvw[0], uvw[1]

	if u > 0 && v > 0 && u+v < 1 {
		return v0.Add(x.Mul(u)).Add(y.Mul(v))
	}
	return closestOnTriangleEdges(v0, v1, v2, p)
}

func closestOnTriangleEdges(v0, v1, v2, p r3.Vector) r3.Vector {
	best := ClosestPointOnSegment(v0, v1, p)
	bestDist := best.Sub(p).Norm2()

	if c := ClosestPointOnSegment(v1, v2, p); c.Sub(p).Norm2() < bestDist {
		best, bestDist = c, c.Sub(p).Norm2()
	}
	if c := ClosestPointOnSegment(v2, v0, p); c.Sub(p).Norm2() < bestDist {
		best = c
	}
	return best
}
