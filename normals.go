package geom3d

import "github.com/flywave/go3d/vec3"

// CalculateNormals dispatches on mode. NormalNone and unknown modes leave the normals
// untouched.
func (g *Geometry3D) CalculateNormals(mode NormalCalculationMode, minDot float32) {
	switch mode {
	case CalculateFaceNormals:
		g.CalculateFaceNormals()
	case CalculateVertexNormals:
		g.CalculateVertexNormals()
	case CalculateAdaptiveNormals:
		g.CalculateAdaptiveNormals(minDot)
	}
}

// faceNormal is the unnormalized cross product, its length is twice the area.
func faceNormal(v0, v1, v2 *vec3.T) vec3.T {
	e1 := vec3.Sub(v1, v0)
	e2 := vec3.Sub(v2, v0)
	return vec3.Cross(&e1, &e2)
}

// CalculateFaceNormals assigns each triangle's unit normal to its three vertices. A
// vertex shared between triangles keeps the normal of the last triangle visited.
// Zero area triangles are skipped.
func (g *Geometry3D) CalculateFaceNormals() {
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		n := faceNormal(&g.Verts[i0].Vert, &g.Verts[i1].Vert, &g.Verts[i2].Vert)
		if n.LengthSqr() == 0 {
			return
		}
		n.Normalize()
		g.Verts[i0].Normal = n
		g.Verts[i1].Normal = n
		g.Verts[i2].Normal = n
	})
}

// CalculateVertexNormals sums the area weighted face normals around each vertex.
// Vertices not touched by a non degenerate triangle keep their normal.
func (g *Geometry3D) CalculateVertexNormals() {
	normals := make([]vec3.T, len(g.Verts))
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		n := faceNormal(&g.Verts[i0].Vert, &g.Verts[i1].Vert, &g.Verts[i2].Vert)
		normals[i0].Add(&n)
		normals[i1].Add(&n)
		normals[i2].Add(&n)
	})
	for i := range normals {
		if normals[i].LengthSqr() == 0 {
			continue
		}
		g.Verts[i].Normal = normals[i].Normalized()
	}
}

type adaptiveFace struct {
	idx    [3]uint32
	normal vec3.T
	unit   vec3.T
}

// CalculateAdaptiveNormals smooths across faces that meet at a shared position only
// when their unit normals have a dot product of at least minDot, keeping hard edges
// elsewhere. Corners are grouped by exact position. The mesh ends up as a single welded
// triangle list.
func (g *Geometry3D) CalculateAdaptiveNormals(minDot float32) {
	var faces []adaptiveFace
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		n := faceNormal(&g.Verts[i0].Vert, &g.Verts[i1].Vert, &g.Verts[i2].Vert)
		faces = append(faces, adaptiveFace{idx: [3]uint32{i0, i1, i2}, normal: n, unit: n.Normalized()})
	})

	incident := make(map[vec3.T][]int)
	for fi := range faces {
		for _, vi := range faces[fi].idx {
			p := g.Verts[vi].Vert
			// a degenerate face may list the same position twice
			if l := incident[p]; len(l) > 0 && l[len(l)-1] == fi {
				continue
			}
			incident[p] = append(incident[p], fi)
		}
	}

	verts := make([]Vertex3D, 0, len(faces)*3)
	for fi := range faces {
		f := &faces[fi]
		for _, vi := range f.idx {
			v := g.Verts[vi]
			var sum vec3.T
			for _, oi := range incident[v.Vert] {
				o := &faces[oi]
				if oi == fi || vec3.Dot(&f.unit, &o.unit) >= minDot {
					sum.Add(&o.normal)
				}
			}
			if sum.LengthSqr() != 0 {
				v.Normal = sum.Normalized()
			}
			verts = append(verts, v)
		}
	}

	idx := make([]uint32, len(verts))
	for i := range idx {
		idx[i] = uint32(i)
	}
	g.Verts = verts
	g.Indexes = nil
	if len(idx) > 0 {
		g.Indexes = []IndexGroup{{Type: TriangleList, Indexes: idx}}
	}
	g.CombineSimilarVerts()
}
