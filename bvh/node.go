// Package bvh builds and queries a cache-conscious bounding-volume hierarchy
// over a triangle mesh. The tree is produced once by Build and is immutable
// afterward: nodes and leaves live in flat, index-addressed arrays rather
// than a pointer tree, so a hot query touches a small, dense working set.
package bvh

import "github.com/latticemesh/proximity/geom"

// nodeKind discriminates the two node variants stored in a CollisionMesh.
type nodeKind uint8

const (
	kindInternal nodeKind = iota
	kindLeaf
)

// nodeRef is the tagged reference every entry in nodes[] carries: which
// backing array (internal or leaf) owns the node's data, and at what index.
// Neither internalNode nor leafNode carries a field it doesn't use, and the
// two-way split makes the variant exhaustive by construction.
type nodeRef struct {
	kind  nodeKind
	index int32
}

// internalNode is the eight-way branch. Every octant is populated, including
// empty ones, so children stay dense and positional: octantSigns[i] always
// describes nodes[Children[i]].
type internalNode struct {
	bounds   geom.AABB
	children [8]int32
}

// leafNode is a terminal bucket. leafIndex points into CollisionMesh.leaves;
// color is a debug-only RGBA draw that never participates in a query result.
type leafNode struct {
	bounds    geom.AABB
	leafIndex int32
	color     [4]float64
}

// CollisionMesh is the flat, immutable result of Build: an ordered node
// array (tagged leaf/internal), an ordered leaf-bucket array, and a root
// index. It is safe for concurrent reads by any number of goroutines; it
// carries no exported mutation surface.
type CollisionMesh struct {
	nodes    []nodeRef
	internal []internalNode
	leafData []leafNode
	leaves   []geom.TriangleMesh
	rootID   int32
}

// RootID returns the index into Node/NodeCount's range that is the top of
// the tree.
func (c *CollisionMesh) RootID() int {
	return int(c.rootID)
}

// NodeCount returns the number of entries in the node array, internal and
// leaf combined.
func (c *CollisionMesh) NodeCount() int {
	return len(c.nodes)
}

// Leaves returns the ordered leaf-bucket array. The returned slice must not
// be mutated by callers; it aliases the collision mesh's own storage.
func (c *CollisionMesh) Leaves() []geom.TriangleMesh {
	return c.leaves
}

// NodeView is the read-only, copy-out projection of a node exposed to
// callers that must never see the package-private tagged-reference
// representation. IsLeaf distinguishes the two cases; Children and
// LeafIndex/DebugColor are meaningful only for their respective case.
type NodeView struct {
	Bounds     geom.AABB
	IsLeaf     bool
	Children   [8]int
	LeafIndex  int
	DebugColor [4]float64
}

// Node returns a copy-out view of the node at id. It panics if id is out of
// range, matching Go slice-indexing semantics elsewhere in the package.
func (c *CollisionMesh) Node(id int) NodeView {
	ref := c.nodes[id]
	switch ref.kind {
	case kindLeaf:
		leaf := c.leafData[ref.index]
		return NodeView{
			Bounds:     leaf.bounds,
			IsLeaf:     true,
			LeafIndex:  int(leaf.leafIndex),
			DebugColor: leaf.color,
		}
	default:
		in := c.internal[ref.index]
		view := NodeView{Bounds: in.bounds}
		for i, child := range in.children {
			view.Children[i] = int(child)
		}
		return view
	}
}

// Stats summarizes the shape of the tree: total node count, leaf count,
// maximum root-to-leaf depth, and the number of leaves holding zero
// triangles. It exists purely for introspection and debugging (see
// cmd/proxbench's "inspect" subcommand) and never influences a query.
type Stats struct {
	NodeCount      int
	LeafCount      int
	MaxDepth       int
	EmptyLeafCount int
}

// Stats walks the tree once and reports its shape.
func (c *CollisionMesh) Stats() Stats {
	s := Stats{NodeCount: len(c.nodes)}
	var walk func(id int32, depth int)
	walk = func(id int32, depth int) {
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		ref := c.nodes[id]
		if ref.kind == kindLeaf {
			s.LeafCount++
			leaf := c.leafData[ref.index]
			if len(c.leaves[leaf.leafIndex].Triangles) == 0 {
				s.EmptyLeafCount++
			}
			return
		}
		for _, child := range c.internal[ref.index].children {
			walk(child, depth+1)
		}
	}
	walk(c.rootID, 0)
	return s
}
