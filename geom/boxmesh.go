package geom

import "github.com/golang/geo/r3"

// boxVertices is the ordered list of unit-box corners, one per octant sign
// combination. Adapted from the teacher's box-to-mesh tessellation.
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// boxFaceTriangles is the set of vertex-index triples that tile the box's
// six faces with two right triangles each.
var boxFaceTriangles = [12][3]int{
	{0, 1, 3},
	{0, 2, 3},
	{0, 1, 5},
	{0, 4, 5},
	{0, 2, 6},
	{0, 4, 6},
	{7, 1, 3},
	{7, 2, 3},
	{7, 1, 5},
	{7, 4, 5},
	{7, 2, 6},
	{7, 4, 6},
}

// BoxMesh returns a 12-triangle mesh of the axis-aligned box centered at
// center with the given half extents, for synthesizing small meshes without
// an OBJ loader. The package's tests and cmd/proxbench do not call it;
// cmd/proxbench builds its meshes with GridMesh.
func BoxMesh(center, halfSize r3.Vector) TriangleMesh {
	verts := make([]r3.Vector, 8)
	for i, v := range boxVertices {
		verts[i] = center.Add(r3.Vector{X: v.X * halfSize.X, Y: v.Y * halfSize.Y, Z: v.Z * halfSize.Z})
	}

	triangles := make([]Triangle, 0, len(boxFaceTriangles))
	for _, idx := range boxFaceTriangles {
		p0, p1, p2 := verts[idx[0]], verts[idx[1]], verts[idx[2]]
		normal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		triangles = append(triangles, Triangle{
			V0: Vertex{Position: p0, Normal: normal, Color: [4]float64{1, 1, 1, 1}},
			V1: Vertex{Position: p1, Normal: normal, Color: [4]float64{1, 1, 1, 1}},
			V2: Vertex{Position: p2, Normal: normal, Color: [4]float64{1, 1, 1, 1}},
		})
	}
	return NewTriangleMesh(triangles)
}

// GridMesh returns a flat, tessellated width x depth grid of triangles lying
// in the y=0 plane, spanning [-halfWidth, halfWidth] on x and
// [-halfDepth, halfDepth] on z, split into divisions cells per side. Used by
// cmd/proxbench to synthesize larger benchmark meshes than a single box
// provides.
func GridMesh(halfWidth, halfDepth float64, divisions int) TriangleMesh {
	if divisions < 1 {
		divisions = 1
	}
	step := func(half float64) float64 { return (2 * half) / float64(divisions) }
	sx, sz := step(halfWidth), step(halfDepth)

	triangles := make([]Triangle, 0, divisions*divisions*2)
	normal := r3.Vector{X: 0, Y: 1, Z: 0}
	for i := 0; i < divisions; i++ {
		for j := 0; j < divisions; j++ {
			x0 := -halfWidth + float64(i)*sx
			x1 := x0 + sx
			z0 := -halfDepth + float64(j)*sz
			z1 := z0 + sz

			p00 := r3.Vector{X: x0, Y: 0, Z: z0}
			p10 := r3.Vector{X: x1, Y: 0, Z: z0}
			p01 := r3.Vector{X: x0, Y: 0, Z: z1}
			p11 := r3.Vector{X: x1, Y: 0, Z: z1}

			triangles = append(triangles,
				Triangle{V0: vtx(p00, normal), V1: vtx(p10, normal), V2: vtx(p11, normal)},
				Triangle{V0: vtx(p00, normal), V1: vtx(p11, normal), V2: vtx(p01, normal)},
			)
		}
	}
	return NewTriangleMesh(triangles)
}

func vtx(p, n r3.Vector) Vertex {
	return Vertex{Position: p, Normal: n, Color: [4]float64{1, 1, 1, 1}}
}
