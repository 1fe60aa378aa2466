package bvh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/latticemesh/proximity/geom"
	"github.com/latticemesh/proximity/internal/logging"
)

func tetrahedron() geom.TriangleMesh {
	p0 := r3.Vector{X: 0, Y: 0, Z: 0}
	p1 := r3.Vector{X: 1, Y: 0, Z: 0}
	p2 := r3.Vector{X: 0, Y: 1, Z: 0}
	p3 := r3.Vector{X: 0, Y: 0, Z: 1}
	mk := func(a, b, c r3.Vector) geom.Triangle {
		return geom.Triangle{
			V0: geom.Vertex{Position: a},
			V1: geom.Vertex{Position: b},
			V2: geom.Vertex{Position: c},
		}
	}
	return geom.NewTriangleMesh([]geom.Triangle{
		mk(p0, p1, p2),
		mk(p0, p1, p3),
		mk(p0, p2, p3),
		mk(p1, p2, p3),
	})
}

func TestBuildAndQueryTetrahedron(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	t.Run("scenario 1: query outside along x", func(t *testing.T) {
		hit, ok := ClosestPointOnMesh(cm, r3.Vector{X: 2, Y: 0, Z: 0}, 5)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, hit.Point, test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 0})
	})

	t.Run("scenario 2: tight radius from interior misses", func(t *testing.T) {
		_, ok := ClosestPointOnMesh(cm, r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}, 0.1)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("scenario 3: interior point within radius hits base face", func(t *testing.T) {
		hit, ok := ClosestPointOnMesh(cm, r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}, 1)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, hit.Point.Z, test.ShouldAlmostEqual, 0, 1e-9)
		dist := hit.Point.Sub(r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}).Norm()
		test.That(t, dist, test.ShouldAlmostEqual, 0.25, 1e-9)
	})
}

func TestSingleTriangleHypotenuse(t *testing.T) {
	tri := geom.Triangle{
		V0: geom.Vertex{Position: r3.Vector{X: 0, Y: 0, Z: 0}},
		V1: geom.Vertex{Position: r3.Vector{X: 1, Y: 0, Z: 0}},
		V2: geom.Vertex{Position: r3.Vector{X: 0, Y: 1, Z: 0}},
	}
	mesh := geom.NewTriangleMesh([]geom.Triangle{tri})
	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	hit, ok := ClosestPointOnMesh(cm, r3.Vector{X: 10, Y: 10, Z: 0}, 20)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hit.Point.X, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, hit.Point.Y, test.ShouldAlmostEqual, 0.5, 1e-9)
}

func TestEmptyMeshAlwaysMisses(t *testing.T) {
	mesh := geom.NewTriangleMesh(nil)
	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	_, ok := ClosestPointOnMesh(cm, r3.Vector{X: 0, Y: 0, Z: 0}, 1000)
	test.That(t, ok, test.ShouldBeFalse)

	stats := cm.Stats()
	test.That(t, stats.LeafCount, test.ShouldEqual, 1)
	test.That(t, stats.EmptyLeafCount, test.ShouldEqual, 1)
}

func TestBuildRejectsInvalidHint(t *testing.T) {
	mesh := tetrahedron()
	_, err := Build(&mesh, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuildRejectsNilMesh(t *testing.T) {
	_, err := Build(nil, 16)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWellFormedTree(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 1)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cm.RootID(), test.ShouldBeLessThan, cm.NodeCount())

	var walk func(id int)
	walk = func(id int) {
		view := cm.Node(id)
		if view.IsLeaf {
			test.That(t, view.LeafIndex, test.ShouldBeLessThan, len(cm.Leaves()))
			return
		}
		for _, child := range view.Children {
			test.That(t, child, test.ShouldBeLessThan, cm.NodeCount())
			childView := cm.Node(child)
			eps := 1e-9
			test.That(t, childView.Bounds.Min.X >= view.Bounds.Min.X-eps, test.ShouldBeTrue)
			test.That(t, childView.Bounds.Max.X <= view.Bounds.Max.X+eps, test.ShouldBeTrue)
			walk(child)
		}
	}
	walk(cm.RootID())
}

func TestBuildDoesNotAliasInputTriangles(t *testing.T) {
	mesh := tetrahedron()
	original := mesh.Triangles[0]

	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	// Mutate the caller's own slice after Build returns; the collision mesh
	// must not observe the change.
	mesh.Triangles[0].V0.Position = r3.Vector{X: 99, Y: 99, Z: 99}

	found := false
	for _, leaf := range cm.Leaves() {
		for _, tri := range leaf.Triangles {
			if tri.V0.Position == original.V0.Position {
				found = true
			}
			test.That(t, tri.V0.Position, test.ShouldNotResemble, r3.Vector{X: 99, Y: 99, Z: 99})
		}
	}
	test.That(t, found, test.ShouldBeTrue)
}

func TestTrianglePartition(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 1)
	test.That(t, err, test.ShouldBeNil)

	total := 0
	for _, leaf := range cm.Leaves() {
		total += len(leaf.Triangles)
	}
	test.That(t, total, test.ShouldEqual, len(mesh.Triangles))
}

func TestIdempotentRebuild(t *testing.T) {
	mesh := tetrahedron()
	cm1, err := Build(&mesh, 1)
	test.That(t, err, test.ShouldBeNil)

	var flat []geom.Triangle
	for _, leaf := range cm1.Leaves() {
		flat = append(flat, leaf.Triangles...)
	}
	rebuiltMesh := geom.NewTriangleMesh(flat)
	cm2, err := Build(&rebuiltMesh, 1)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cm2.NodeCount(), test.ShouldEqual, cm1.NodeCount())
	test.That(t, len(cm2.Leaves()), test.ShouldEqual, len(cm1.Leaves()))
}

func bruteForceClosest(mesh geom.TriangleMesh, p r3.Vector, r float64) (r3.Vector, bool) {
	best := r3.Vector{}
	bestD := r
	found := false
	for _, t := range mesh.Triangles {
		c := geom.ClosestPointOnTriangle(t, p)
		d := c.Sub(p).Norm()
		if d < bestD {
			bestD = d
			best = c
			found = true
		}
	}
	return best, found
}

func TestBruteForceEquivalenceRandomMesh(t *testing.T) {
	src := rand.New(rand.NewSource(42))
	randVec := func() r3.Vector {
		return r3.Vector{X: src.Float64()*2 - 1, Y: src.Float64()*2 - 1, Z: src.Float64()*2 - 1}
	}

	triangles := make([]geom.Triangle, 0, 10000)
	for i := 0; i < 10000; i++ {
		triangles = append(triangles, geom.Triangle{
			V0: geom.Vertex{Position: randVec()},
			V1: geom.Vertex{Position: randVec()},
			V2: geom.Vertex{Position: randVec()},
		})
	}
	mesh := geom.NewTriangleMesh(triangles)
	cm, err := Build(&mesh, 32)
	test.That(t, err, test.ShouldBeNil)

	const radius = 2.0
	for i := 0; i < 1000; i++ {
		p := randVec()
		gotHit, gotOK := ClosestPointOnMesh(cm, p, radius)
		wantPoint, wantOK := bruteForceClosest(mesh, p, radius)

		test.That(t, gotOK, test.ShouldEqual, wantOK)
		if wantOK {
			test.That(t, gotHit.Point.Sub(wantPoint).Norm(), test.ShouldBeLessThan, 1e-5)
		}
	}
}

func TestIndexOrderTraversalMatchesDefault(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 1)
	test.That(t, err, test.ShouldBeNil)

	p := r3.Vector{X: 0.4, Y: 0.4, Z: 0.4}
	a, aok := ClosestPointOnMesh(cm, p, 5)
	b, bok := ClosestPointOnMesh(cm, p, 5, WithIndexOrderTraversal())

	test.That(t, aok, test.ShouldEqual, bok)
	test.That(t, a.Point, test.ShouldResemble, b.Point)
}

func TestWithRandSourceIsReproducible(t *testing.T) {
	mesh := tetrahedron()
	cm1, err := Build(&mesh, 1, WithRandSource(rand.New(rand.NewSource(7))))
	test.That(t, err, test.ShouldBeNil)
	cm2, err := Build(&mesh, 1, WithRandSource(rand.New(rand.NewSource(7))))
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < cm1.NodeCount(); i++ {
		v1, v2 := cm1.Node(i), cm2.Node(i)
		test.That(t, v1.DebugColor, test.ShouldResemble, v2.DebugColor)
	}
}

func TestClosestPointOnMeshBatch(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	points := []r3.Vector{
		{X: 2, Y: 0, Z: 0},
		{X: 0.25, Y: 0.25, Z: 0.25},
	}
	hits := ClosestPointOnMeshBatch(cm, points, 0.1)
	test.That(t, len(hits), test.ShouldEqual, 2)
	test.That(t, hits[0].Ok, test.ShouldBeFalse)
	test.That(t, hits[1].Ok, test.ShouldBeFalse)

	hits = ClosestPointOnMeshBatch(cm, points, 5)
	test.That(t, hits[0].Ok, test.ShouldBeTrue)
	test.That(t, hits[1].Ok, test.ShouldBeTrue)
}

func TestBuildWithLoggerDoesNotAffectStructure(t *testing.T) {
	mesh := tetrahedron()
	logger := logging.NewTestLogger(t)

	withLog, err := Build(&mesh, 1, WithLogger(logger))
	test.That(t, err, test.ShouldBeNil)
	without, err := Build(&mesh, 1)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, withLog.NodeCount(), test.ShouldEqual, without.NodeCount())
	test.That(t, len(withLog.Leaves()), test.ShouldEqual, len(without.Leaves()))
}

func TestNonPositiveRadiusAlwaysMisses(t *testing.T) {
	mesh := tetrahedron()
	cm, err := Build(&mesh, 16)
	test.That(t, err, test.ShouldBeNil)

	_, ok := ClosestPointOnMesh(cm, r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}, 0)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = ClosestPointOnMesh(cm, r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}, math.Copysign(1, -1))
	test.That(t, ok, test.ShouldBeFalse)
}
