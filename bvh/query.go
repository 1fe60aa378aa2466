package bvh

import (
	"sort"

	"github.com/golang/geo/r3"

	"github.com/latticemesh/proximity/geom"
)

// Hit is the result of a ClosestPointOnMesh query: the closest point on the
// mesh and the node index of the leaf that owns it. Ok is false for a miss,
// in which case Point and LeafNodeID carry no meaning; ClosestPointOnMesh
// also returns Ok as a second value so single-query callers can ignore this
// field entirely, and ClosestPointOnMeshBatch relies on it to report a miss
// inline within a []Hit slice.
type Hit struct {
	Point      r3.Vector
	LeafNodeID int
	Ok         bool
}

// queryConfig collects QueryOption settings.
type queryConfig struct {
	orderedTraversal bool
}

// QueryOption customizes a single call to ClosestPointOnMesh.
type QueryOption func(*queryConfig)

// WithIndexOrderTraversal disables the nearest-child-first heuristic and
// visits children in canonical index order (0..7) instead. Spec section 4.4
// allows this simpler, slower traversal as a documented fallback; it exists
// here mainly so tests can check that both traversal orders find the same
// winning point.
func WithIndexOrderTraversal() QueryOption {
	return func(c *queryConfig) { c.orderedTraversal = true }
}

// ClosestPointOnMesh returns the closest point on mesh to p within radius r,
// together with the node index of the owning leaf, or false if no triangle
// lies within r. r must be > 0; a non-positive radius always misses.
func ClosestPointOnMesh(mesh *CollisionMesh, p r3.Vector, r float64, opts ...QueryOption) (Hit, bool) {
	if mesh == nil || r <= 0 {
		return Hit{}, false
	}
	cfg := queryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	best := Hit{}
	bestD := r
	found := false

	var visit func(id int32)
	visit = func(id int32) {
		ref := mesh.nodes[id]
		var bounds geom.AABB
		if ref.kind == kindLeaf {
			bounds = mesh.leafData[ref.index].bounds
		} else {
			bounds = mesh.internal[ref.index].bounds
		}
		if !bounds.OverlapsSphere(p, bestD) {
			return
		}

		if ref.kind == kindLeaf {
			leaf := mesh.leafData[ref.index]
			bucket := mesh.leaves[leaf.leafIndex]
			for _, t := range bucket.Triangles {
				c := geom.ClosestPointOnTriangle(t, p)
				d := c.Sub(p).Norm()
				if d < bestD {
					bestD = d
					best = Hit{Point: c, LeafNodeID: int(id), Ok: true}
					found = true
				}
			}
			return
		}

		children := mesh.internal[ref.index].children
		order := childVisitOrder(mesh, children, p, cfg.orderedTraversal)
		for _, idx := range order {
			visit(children[idx])
		}
	}

	visit(mesh.rootID)
	return best, found
}

// childVisitOrder returns the permutation of 0..7 in which to visit an
// internal node's children. When ordered is false it sorts by ascending
// box/sphere gap to p so closer subtrees tighten bestD sooner; when true it
// returns canonical index order.
func childVisitOrder(mesh *CollisionMesh, children [8]int32, p r3.Vector, ordered bool) [8]int {
	var order [8]int
	for i := range order {
		order[i] = i
	}
	if ordered {
		return order
	}

	gap := func(childID int32) float64 {
		ref := mesh.nodes[childID]
		if ref.kind == kindLeaf {
			return mesh.leafData[ref.index].bounds.DistanceSquared(p)
		}
		return mesh.internal[ref.index].bounds.DistanceSquared(p)
	}

	sort.Slice(order[:], func(i, j int) bool {
		return gap(children[order[i]]) < gap(children[order[j]])
	})
	return order
}

// ClosestPointOnMeshBatch runs ClosestPointOnMesh once per point in points,
// returning results in the same order. It is a thin convenience wrapper —
// no separate traversal algorithm. cmd/proxbench's bench subcommand does not
// use it: it calls ClosestPointOnMesh per point so it can time each query.
func ClosestPointOnMeshBatch(mesh *CollisionMesh, points []r3.Vector, r float64, opts ...QueryOption) []Hit {
	hits := make([]Hit, len(points))
	for i, p := range points {
		hit, _ := ClosestPointOnMesh(mesh, p, r, opts...)
		hits[i] = hit
	}
	return hits
}
