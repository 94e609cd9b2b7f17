package geom3d

import (
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Vertex3D is a position, texture coordinate and normal.
type Vertex3D struct {
	Vert    vec3.T `json:"vert"`
	Texture vec2.T `json:"texture"`
	Normal  vec3.T `json:"normal"`
}

func NewVertex3D(vert vec3.T) Vertex3D {
	return Vertex3D{Vert: vert, Normal: vec3.UnitZ}
}

// Interpolate lerps (1-u)*v0 + u*v1.
func Interpolate(u float32, v0, v1 *Vertex3D) Vertex3D {
	return Vertex3D{
		Vert:    vec3.Interpolate(&v0.Vert, &v1.Vert, u),
		Texture: vec2.Interpolate(&v0.Texture, &v1.Texture, u),
		Normal:  vec3.Interpolate(&v0.Normal, &v1.Normal, u),
	}
}

// Interpolate3 blends with barycentric weights u, v and 1-u-v.
func Interpolate3(u, v float32, v0, v1, v2 *Vertex3D) Vertex3D {
	w := 1 - u - v
	var r Vertex3D
	for i := 0; i < 3; i++ {
		r.Vert[i] = u*v0.Vert[i] + v*v1.Vert[i] + w*v2.Vert[i]
		r.Normal[i] = u*v0.Normal[i] + v*v1.Normal[i] + w*v2.Normal[i]
	}
	for i := 0; i < 2; i++ {
		r.Texture[i] = u*v0.Texture[i] + v*v1.Texture[i] + w*v2.Texture[i]
	}
	return r
}

// Equal is exact field-wise comparison.
func (v *Vertex3D) Equal(o *Vertex3D) bool {
	return *v == *o
}

// IndexGroup is a run of vertex indices with one topology.
type IndexGroup struct {
	Type    Topology `json:"type"`
	Indexes []uint32 `json:"indexes"`
}

// TriangleCount is the number of triangles the group describes.
func (g *IndexGroup) TriangleCount() int {
	n := len(g.Indexes)
	switch g.Type {
	case TriangleFan, TriangleStrip:
		if n < 3 {
			return 0
		}
		return n - 2
	case TriangleList:
		return n / 3
	}
	return 0
}

func (g *IndexGroup) Equal(o *IndexGroup) bool {
	if g.Type != o.Type || len(g.Indexes) != len(o.Indexes) {
		return false
	}
	for i := range g.Indexes {
		if g.Indexes[i] != o.Indexes[i] {
			return false
		}
	}
	return true
}
