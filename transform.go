package geom3d

import (
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/vec3"
)

// Transform applies m to every position (with a perspective divide when w is not 1)
// and the upper left 3x3 of m to every normal, renormalized. Texture coordinates are
// left alone.
func (g *Geometry3D) Transform(m *mat4.T) {
	for i := range g.Verts {
		v := &g.Verts[i]
		p := v.Vert
		var r [4]float32
		for row := 0; row < 4; row++ {
			r[row] = m[0][row]*p[0] + m[1][row]*p[1] + m[2][row]*p[2] + m[3][row]
		}
		if w := r[3]; w != 1 && w != 0 {
			r[0] /= w
			r[1] /= w
			r[2] /= w
		}
		v.Vert = vec3.T{r[0], r[1], r[2]}

		n := v.Normal
		var tn vec3.T
		for row := 0; row < 3; row++ {
			tn[row] = m[0][row]*n[0] + m[1][row]*n[1] + m[2][row]*n[2]
		}
		v.Normal = *tn.Normalize()
	}
}

// AddBackFaces appends a copy of the geometry with reversed winding and negated
// normals.
func (g *Geometry3D) AddBackFaces() {
	offset := uint32(len(g.Verts))
	for i := 0; i < int(offset); i++ {
		v := g.Verts[i]
		v.Normal.Invert()
		g.Verts = append(g.Verts, v)
	}

	groups := len(g.Indexes)
	for gi := 0; gi < groups; gi++ {
		src := g.Indexes[gi]
		n := len(src.Indexes)
		idx := make([]uint32, 0, n)
		switch src.Type {
		case TriangleFan:
			if n > 0 {
				idx = append(idx, src.Indexes[0]+offset)
				for i := n - 1; i > 0; i-- {
					idx = append(idx, src.Indexes[i]+offset)
				}
			}
		case TriangleStrip:
			for i := n - 1; i >= 0; i-- {
				idx = append(idx, src.Indexes[i]+offset)
			}
		case TriangleList:
			for i := 0; i+2 < n; i += 3 {
				idx = append(idx, src.Indexes[i]+offset, src.Indexes[i+2]+offset, src.Indexes[i+1]+offset)
			}
		}
		g.Indexes = append(g.Indexes, IndexGroup{Type: src.Type, Indexes: idx})
	}
}

// BuildTangentVectors returns one tangent per vertex, parallel to Verts. Triangle
// tangents from position and texture deltas are summed per vertex, made orthogonal to
// the vertex normal and normalized. Triangles with a zero UV determinant contribute
// nothing, and vertices with no contribution get a zero tangent.
func (g *Geometry3D) BuildTangentVectors() []vec3.T {
	tangents := make([]vec3.T, len(g.Verts))
	g.forEachTriangleIndex(func(i0, i1, i2 uint32) {
		v0, v1, v2 := &g.Verts[i0], &g.Verts[i1], &g.Verts[i2]

		e1 := vec3.Sub(&v1.Vert, &v0.Vert)
		e2 := vec3.Sub(&v2.Vert, &v0.Vert)

		du1 := v1.Texture[0] - v0.Texture[0]
		dv1 := v1.Texture[1] - v0.Texture[1]
		du2 := v2.Texture[0] - v0.Texture[0]
		dv2 := v2.Texture[1] - v0.Texture[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		r := 1 / denom

		a := e1.Scaled(dv2 * r)
		b := e2.Scaled(dv1 * r)
		t := vec3.Sub(&a, &b)

		tangents[i0].Add(&t)
		tangents[i1].Add(&t)
		tangents[i2].Add(&t)
	})

	for i := range tangents {
		t := tangents[i]
		if t.LengthSqr() == 0 {
			continue
		}
		n := g.Verts[i].Normal
		proj := n.Scaled(vec3.Dot(&n, &t))
		ortho := vec3.Sub(&t, &proj)
		if ortho.LengthSqr() > 1e-12 {
			t = ortho
		}
		tangents[i] = t.Normalized()
	}
	return tangents
}
