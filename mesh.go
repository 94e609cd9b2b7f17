package geom3d

import (
	"encoding/binary"
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

// Geometry3D is an indexed mesh snapshot.
type Geometry3D struct {
	Comments []string      `json:"comments,omitempty"`
	Verts    []Vertex3D    `json:"verts"`
	Indexes  []IndexGroup  `json:"indexes"`
	Codes    TopologyCodes `json:"codes"`
	Material Material      `json:"material"`
}

type MeshSet []*Geometry3D

// GeometryCallback receives the meshes resolved for an identifier.
type GeometryCallback func(meshes MeshSet)

// FindGeometry resolves an identifier to meshes.
type FindGeometry func(name string, cb GeometryCallback)

func NewGeometry3D() *Geometry3D {
	return &Geometry3D{Codes: DefaultTopologyCodes, Material: DefaultMaterial()}
}

func (g *Geometry3D) Clear() {
	g.Comments = nil
	g.Verts = nil
	g.Indexes = nil
}

func (g *Geometry3D) Clone() *Geometry3D {
	c := &Geometry3D{Codes: g.Codes, Material: g.Material}
	c.Comments = append([]string(nil), g.Comments...)
	c.Verts = append([]Vertex3D(nil), g.Verts...)
	c.Indexes = make([]IndexGroup, len(g.Indexes))
	for i, grp := range g.Indexes {
		c.Indexes[i] = IndexGroup{Type: grp.Type, Indexes: append([]uint32(nil), grp.Indexes...)}
	}
	return c
}

// Equal compares comments, vertices, index groups and topology codes. The material
// is not part of the comparison.
func (g *Geometry3D) Equal(o *Geometry3D) bool {
	if g.Codes != o.Codes || len(g.Comments) != len(o.Comments) ||
		len(g.Verts) != len(o.Verts) || len(g.Indexes) != len(o.Indexes) {
		return false
	}
	for i := range g.Comments {
		if g.Comments[i] != o.Comments[i] {
			return false
		}
	}
	for i := range g.Verts {
		if g.Verts[i] != o.Verts[i] {
			return false
		}
	}
	for i := range g.Indexes {
		if !g.Indexes[i].Equal(&o.Indexes[i]) {
			return false
		}
	}
	return true
}

// Name is the identifier used by lookup services: the first comment.
func (g *Geometry3D) Name() string {
	if len(g.Comments) == 0 {
		return ""
	}
	return g.Comments[0]
}

// Validate checks that every index addresses a vertex. Loaders call it so that the
// algorithms can index Verts without bounds checks failing later.
func (g *Geometry3D) Validate() error {
	n := uint32(len(g.Verts))
	for gi := range g.Indexes {
		for i, idx := range g.Indexes[gi].Indexes {
			if idx >= n {
				return fmt.Errorf("group %d index %d is %d with %d verts: %w", gi, i, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// Add appends other onto g. Indices of the appended groups are offset by the current
// vertex count; g keeps its own material and codes.
func (g *Geometry3D) Add(other *Geometry3D) {
	offset := uint32(len(g.Verts))
	g.Comments = append(g.Comments, other.Comments...)
	g.Verts = append(g.Verts, other.Verts...)
	for _, grp := range other.Indexes {
		idx := make([]uint32, len(grp.Indexes))
		for i, v := range grp.Indexes {
			idx[i] = v + offset
		}
		g.Indexes = append(g.Indexes, IndexGroup{Type: grp.Type, Indexes: idx})
	}
}

// Stats counts vertices, indices and triangles.
type Stats struct {
	VertCount     int
	IndexCount    int
	TriangleCount int
}

func StatsString(vertCount, indexCount, triangleCount int) string {
	return fmt.Sprintf("Verts: %d Indexes: %d Triangles: %d", vertCount, indexCount, triangleCount)
}

func (s Stats) String() string {
	return StatsString(s.VertCount, s.IndexCount, s.TriangleCount)
}

func (g *Geometry3D) StatsCounts() Stats {
	s := Stats{VertCount: len(g.Verts)}
	for i := range g.Indexes {
		s.IndexCount += len(g.Indexes[i].Indexes)
		s.TriangleCount += g.Indexes[i].TriangleCount()
	}
	return s
}

func (g *Geometry3D) Stats() string {
	return g.StatsCounts().String()
}

func (ms MeshSet) StatsCounts() Stats {
	var s Stats
	for _, g := range ms {
		c := g.StatsCounts()
		s.VertCount += c.VertCount
		s.IndexCount += c.IndexCount
		s.TriangleCount += c.TriangleCount
	}
	return s
}

func (ms MeshSet) Stats() string {
	return ms.StatsCounts().String()
}

// GetMinMax returns the axis aligned bounds of every vertex. With no vertices min is
// +MaxFloat32 and max is -MaxFloat32 on every axis.
func (ms MeshSet) GetMinMax() (min, max vec3.T) {
	min = vec3.T{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = vec3.T{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, g := range ms {
		for i := range g.Verts {
			v := &g.Verts[i].Vert
			for a := 0; a < 3; a++ {
				if v[a] < min[a] {
					min[a] = v[a]
				}
				if v[a] > max[a] {
					max[a] = v[a]
				}
			}
		}
	}
	return min, max
}

func (g *Geometry3D) GetBoundbox() *[6]float64 {
	min, max := MeshSet{g}.GetMinMax()
	return &[6]float64{
		float64(min[0]), float64(min[1]), float64(min[2]),
		float64(max[0]), float64(max[1]), float64(max[2]),
	}
}

// ComputeBBox joins the per-mesh bounds into a float64 box; empty meshes are skipped.
func (ms MeshSet) ComputeBBox() dvec3.Box {
	bbox := dvec3.MinBox
	found := false
	for _, g := range ms {
		if len(g.Verts) == 0 {
			continue
		}
		bx := g.GetBoundbox()
		bbx := dvec3.Box{Min: dvec3.T{bx[0], bx[1], bx[2]}, Max: dvec3.T{bx[3], bx[4], bx[5]}}
		bbox.Join(&bbx)
		found = true
	}
	if !found {
		return dvec3.Box{}
	}
	return bbox
}

var (
	vertexSize = binary.Size(Vertex3D{})
	indexSize  = binary.Size(uint32(0))
	groupSize  = binary.Size(int64(0)) * 4
)

// SizeInBytes estimates the memory held by vertex and index storage.
func (ms MeshSet) SizeInBytes() int {
	size := 0
	for _, g := range ms {
		size += len(g.Verts) * vertexSize
		for i := range g.Indexes {
			size += groupSize + len(g.Indexes[i].Indexes)*indexSize
		}
		for _, c := range g.Comments {
			size += len(c)
		}
	}
	return size
}

// MeshLibrary is an in-memory FindGeometry provider keyed by mesh name.
type MeshLibrary struct {
	meshes map[string]MeshSet
}

func NewMeshLibrary(meshes MeshSet) *MeshLibrary {
	lib := &MeshLibrary{meshes: make(map[string]MeshSet)}
	for _, g := range meshes {
		lib.meshes[g.Name()] = append(lib.meshes[g.Name()], g)
	}
	return lib
}

func (l *MeshLibrary) Find(name string, cb GeometryCallback) {
	cb(l.meshes[name])
}
