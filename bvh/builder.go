package bvh

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/latticemesh/proximity/geom"
	"github.com/latticemesh/proximity/internal/logging"
)

// buildNode is the transient recursion used only during Build. It is
// discarded once flattening returns; nothing here escapes into a
// CollisionMesh.
type buildNode struct {
	bounds    geom.AABB
	triangles []geom.Triangle
	children  *[8]*buildNode
}

// buildConfig collects BuildOption settings. Build starts from a fresh RNG
// source seeded with 1 for debug colors and no logger.
type buildConfig struct {
	rng    *rand.Rand
	logger *logging.Logger
}

// BuildOption customizes a single call to Build.
type BuildOption func(*buildConfig)

// WithRandSource pins the pseudo-random source Build draws per-leaf debug
// colors from. Per spec, seed control is a caller policy; tests use this to
// make color assignment reproducible without affecting tree structure,
// since colors never participate in a query result.
func WithRandSource(r *rand.Rand) BuildOption {
	return func(c *buildConfig) { c.rng = r }
}

// WithLogger attaches a logger that Build uses to report tree statistics on
// success and to warn about degenerate input (an empty mesh, or a mesh with
// zero-area triangles, which queries resolve by edge projection).
// Callers that don't need this diagnostic never pay for it: without this
// option, Build logs nothing.
func WithLogger(l *logging.Logger) BuildOption {
	return func(c *buildConfig) { c.logger = l }
}

// Build constructs a flat BVH over mesh by recursive octree subdivision.
// maxTriCountHint must be >= 1; it bounds how many triangles a leaf may hold
// before the builder subdivides further. Build returns an error only for
// argument-contract violations (a nil mesh or maxTriCountHint < 1) — the
// algorithm itself is total.
func Build(mesh *geom.TriangleMesh, maxTriCountHint int, opts ...BuildOption) (*CollisionMesh, error) {
	if mesh == nil {
		return nil, errors.New("bvh: mesh must not be nil")
	}
	if maxTriCountHint < 1 {
		return nil, errors.Errorf("bvh: maxTriCountHint must be >= 1, got %d", maxTriCountHint)
	}
	cfg := buildConfig{rng: rand.New(rand.NewSource(1))}
	for _, opt := range opts {
		opt(&cfg)
	}

	triangles := mesh.Triangles
	bounds := mesh.Bounds

	if cfg.logger != nil && len(triangles) == 0 {
		cfg.logger.Warnw("building bvh over an empty mesh, all queries will miss")
	}
	if cfg.logger != nil {
		degenerate := 0
		for _, t := range triangles {
			p := t.Points()
			if p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Norm2() == 0 {
				degenerate++
			}
		}
		if degenerate > 0 {
			cfg.logger.Warnw("mesh contains zero-area triangles, queries resolve them by edge projection",
				"count", degenerate)
		}
	}

	root := buildRecursive(triangles, bounds, maxTriCountHint)

	c := &CollisionMesh{}
	c.rootID = flatten(root, c, cfg.rng)

	if cfg.logger != nil {
		stats := c.Stats()
		cfg.logger.Infow("bvh built",
			"triangles", len(triangles),
			"maxTriCountHint", maxTriCountHint,
			"nodeCount", stats.NodeCount,
			"leafCount", stats.LeafCount,
			"maxDepth", stats.MaxDepth,
			"emptyLeafCount", stats.EmptyLeafCount,
		)
	}
	return c, nil
}

// buildRecursive implements spec.md section 4.2's algorithm: compute a
// tight bounds box, emit a leaf if the triangle count is within hint, else
// subdivide into octants, stall-check, first-fit assign, and recurse.
func buildRecursive(triangles []geom.Triangle, bounds geom.AABB, maxTriCountHint int) *buildNode {
	boxAll := geom.EmptyAABB()
	for _, t := range triangles {
		boxAll = boxAll.UnionBox(geom.TriangleBounds(t))
	}
	if len(triangles) == 0 {
		boxAll = bounds
	}

	if len(triangles) <= maxTriCountHint {
		return &buildNode{bounds: boxAll, triangles: triangles}
	}

	octants := boxAll.Subdivide()

	// Stall check: if any single octant overlaps every triangle's AABB,
	// subdividing further would not shrink the problem. Emit a leaf instead
	// of recursing forever on, e.g., a triangle bigger than any child cell.
	for _, octant := range octants {
		overlapsAll := true
		for _, t := range triangles {
			if !octant.OverlapsBox(geom.TriangleBounds(t)) {
				overlapsAll = false
				break
			}
		}
		if overlapsAll {
			return &buildNode{bounds: boxAll, triangles: triangles}
		}
	}

	var buckets [8][]geom.Triangle
	for _, t := range triangles {
		tb := geom.TriangleBounds(t)
		for i, octant := range octants {
			if octant.OverlapsBox(tb) {
				buckets[i] = append(buckets[i], t)
				break
			}
		}
	}

	var children [8]*buildNode
	for i, bucket := range buckets {
		children[i] = buildRecursive(bucket, octants[i], maxTriCountHint)
	}
	return &buildNode{bounds: boxAll, children: &children}
}

// flatten walks n in post-order, appending to c's node/leaf/internal arrays
// so every node's children precede it. It returns n's freshly assigned
// index in c.nodes.
func flatten(n *buildNode, c *CollisionMesh, rng *rand.Rand) int32 {
	if n.children == nil {
		// The input mesh is not aliased: copy the bucket's triangles into
		// storage the CollisionMesh owns, so a caller mutating its own
		// TriangleMesh.Triangles after Build returns can't reach into an
		// immutable leaf.
		owned := make([]geom.Triangle, len(n.triangles))
		copy(owned, n.triangles)

		leafIdx := int32(len(c.leaves))
		c.leaves = append(c.leaves, geom.NewTriangleMesh(owned))

		leafNodeIdx := int32(len(c.leafData))
		c.leafData = append(c.leafData, leafNode{
			bounds:    n.bounds,
			leafIndex: leafIdx,
			color:     randomColor(rng),
		})

		nodeIdx := int32(len(c.nodes))
		c.nodes = append(c.nodes, nodeRef{kind: kindLeaf, index: leafNodeIdx})
		return nodeIdx
	}

	var childIdx [8]int32
	for i, child := range n.children {
		childIdx[i] = flatten(child, c, rng)
	}

	internalIdx := int32(len(c.internal))
	c.internal = append(c.internal, internalNode{bounds: n.bounds, children: childIdx})

	nodeIdx := int32(len(c.nodes))
	c.nodes = append(c.nodes, nodeRef{kind: kindInternal, index: internalIdx})
	return nodeIdx
}

func randomColor(rng *rand.Rand) [4]float64 {
	return [4]float64{rng.Float64(), rng.Float64(), rng.Float64(), 1}
}
