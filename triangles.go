package geom3d

import "github.com/flywave/go3d/vec3"

// TriangleVisitor receives the three corner positions of a triangle.
type TriangleVisitor func(v0, v1, v2 vec3.T)

// calcVMax is n-sub, or 0 when the group is too short.
func calcVMax(n, sub int) int {
	if sub > n {
		return 0
	}
	return n - sub
}

// forEachTriangleIndex walks every triangle of every group in mesh order and yields the
// vertex indices of its corners.
func (g *Geometry3D) forEachTriangleIndex(fn func(i0, i1, i2 uint32)) {
	for gi := range g.Indexes {
		idx := g.Indexes[gi].Indexes
		switch g.Indexes[gi].Type {
		case TriangleFan:
			vMax := calcVMax(len(idx), 1)
			for v := 1; v < vMax; v++ {
				fn(idx[0], idx[v], idx[v+1])
			}
		case TriangleStrip:
			vMax := calcVMax(len(idx), 2)
			for v := 0; v < vMax; v++ {
				fn(idx[v], idx[v+1], idx[v+2])
			}
		case TriangleList:
			vMax := calcVMax(len(idx), 2)
			for v := 0; v < vMax; v += 3 {
				fn(idx[v], idx[v+1], idx[v+2])
			}
		}
	}
}

// ForEachTriangle calls visit once per triangle implied by the index groups.
func (g *Geometry3D) ForEachTriangle(visit TriangleVisitor) {
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		visit(g.Verts[i0].Vert, g.Verts[i1].Vert, g.Verts[i2].Vert)
	})
}

// ConvertToTriangles rewrites fans and strips as triangle lists. Vertices are shared,
// not duplicated.
func (g *Geometry3D) ConvertToTriangles() {
	for gi := range g.Indexes {
		grp := &g.Indexes[gi]
		out := make([]uint32, 0, grp.TriangleCount()*3)
		single := Geometry3D{Indexes: []IndexGroup{*grp}}
		single.forEachTriangleIndex(func(i0, i1, i2 uint32) {
			out = append(out, i0, i1, i2)
		})
		grp.Type = TriangleList
		grp.Indexes = out
	}
}

// BreakApartTriangles converts to triangles and gives every triangle its own three
// vertices, so len(Verts) == 3 * triangle count and the single remaining group indexes
// 0..N-1 in order.
func (g *Geometry3D) BreakApartTriangles() {
	tris := g.StatsCounts().TriangleCount
	verts := make([]Vertex3D, 0, tris*3)
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		verts = append(verts, g.Verts[i0], g.Verts[i1], g.Verts[i2])
	})
	g.Verts = verts
	if len(verts) == 0 {
		g.Indexes = nil
		return
	}
	idx := make([]uint32, len(verts))
	for i := range idx {
		idx[i] = uint32(i)
	}
	g.Indexes = []IndexGroup{{Type: TriangleList, Indexes: idx}}
}
