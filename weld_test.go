package geom3d

import (
	"testing"

	"github.com/flywave/go3d/vec3"
)

func TestCombineSimilarVerts(t *testing.T) {
	g := cube()
	before := collectTriangles(g)
	g.BreakApartTriangles()
	if len(g.Verts) != 36 {
		t.Fatalf("expected 36 verts after break apart, got %d", len(g.Verts))
	}

	g.CombineSimilarVerts()
	if len(g.Verts) != 8 {
		t.Errorf("expected 8 verts after welding, got %d", len(g.Verts))
	}
	after := collectTriangles(g)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("triangle %d changed", i)
		}
	}

	// welding again is a no-op
	c := g.Clone()
	g.CombineSimilarVerts()
	if !g.Equal(c) {
		t.Error("second weld changed the mesh")
	}
}

func TestCombineSimilarVertsKeepsDistinctAttributes(t *testing.T) {
	g := NewGeometry3D()
	a := NewVertex3D(vec3.T{1, 2, 3})
	b := a
	b.Texture[0] = 0.5
	c := a
	c.Normal = vec3.T{1, 0, 0}
	g.Verts = []Vertex3D{a, b, a, c, b}
	g.Indexes = []IndexGroup{{Type: TriangleStrip, Indexes: []uint32{4, 3, 2, 1, 0}}}

	g.CombineSimilarVerts()

	want := []Vertex3D{a, b, c}
	if len(g.Verts) != len(want) {
		t.Fatalf("got %d verts, want %d", len(g.Verts), len(want))
	}
	for i := range want {
		if !g.Verts[i].Equal(&want[i]) {
			t.Errorf("vertex %d = %+v", i, g.Verts[i])
		}
	}
	wantIdx := IndexGroup{Type: TriangleStrip, Indexes: []uint32{1, 2, 0, 1, 0}}
	if !g.Indexes[0].Equal(&wantIdx) {
		t.Errorf("indexes = %v, want %v", g.Indexes[0].Indexes, wantIdx.Indexes)
	}
}

func TestCombineSimilarVertsUnique(t *testing.T) {
	g := mixedMesh()
	c := g.Clone()
	g.CombineSimilarVerts()
	if !g.Equal(c) {
		t.Error("mesh without duplicates changed")
	}

	empty := NewGeometry3D()
	empty.CombineSimilarVerts()
	if len(empty.Verts) != 0 {
		t.Error("empty mesh gained vertices")
	}
}
