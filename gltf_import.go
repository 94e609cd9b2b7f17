package geom3d

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/flywave/go-geom3d/internal/logger"
)

var gltfTopologies = map[gltf.PrimitiveMode]Topology{
	gltf.PrimitiveTriangles:     TriangleList,
	gltf.PrimitiveTriangleStrip: TriangleStrip,
	gltf.PrimitiveTriangleFan:   TriangleFan,
}

// OpenGltf loads a .gltf or .glb file and converts it with FromGltf.
func OpenGltf(path string) (MeshSet, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return FromGltf(doc)
}

// FromGltf converts every glTF mesh into a Geometry3D, each triangle primitive becoming
// an index group. Point and line primitives are skipped. Primitives sharing attribute
// accessors share vertices.
func FromGltf(doc *gltf.Document) (MeshSet, error) {
	var ms MeshSet
	for mi, mh := range doc.Meshes {
		g := NewGeometry3D()
		if mh.Name != "" {
			g.Comments = append(g.Comments, mh.Name)
		}
		offsets := make(map[[3]int64]uint32)
		materialSet := false
		for pi, ps := range mh.Primitives {
			topo, ok := gltfTopologies[ps.Mode]
			if !ok {
				logger.Warn("skipping non triangle primitive",
					zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Int("mode", int(ps.Mode)))
				continue
			}
			key := attributeKey(ps)
			offset, ok := offsets[key]
			if !ok {
				verts, err := readVertices(doc, ps)
				if err != nil {
					return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
				}
				offset = uint32(len(g.Verts))
				g.Verts = append(g.Verts, verts...)
				offsets[key] = offset
			}

			var indexes []uint32
			if ps.Indices != nil {
				idx, err := readIndices(doc, *ps.Indices)
				if err != nil {
					return nil, fmt.Errorf("mesh %d primitive %d indices: %w", mi, pi, err)
				}
				indexes = idx
			} else {
				count := doc.Accessors[ps.Attributes["POSITION"]].Count
				indexes = make([]uint32, count)
				for i := range indexes {
					indexes[i] = uint32(i)
				}
			}
			for i := range indexes {
				indexes[i] += offset
			}
			g.Indexes = append(g.Indexes, IndexGroup{Type: topo, Indexes: indexes})

			if !materialSet && ps.Material != nil && int(*ps.Material) < len(doc.Materials) {
				g.Material = materialFromGltf(doc.Materials[*ps.Material])
				materialSet = true
			}
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", mi, err)
		}
		ms = append(ms, g)
	}
	return ms, nil
}

func attributeKey(ps *gltf.Primitive) [3]int64 {
	key := [3]int64{-1, -1, -1}
	for i, name := range []string{"POSITION", "NORMAL", "TEXCOORD_0"} {
		if idx, ok := ps.Attributes[name]; ok {
			key[i] = int64(idx)
		}
	}
	return key
}

func readVertices(doc *gltf.Document, ps *gltf.Primitive) ([]Vertex3D, error) {
	posIdx, ok := ps.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION")
	}
	pos, err := readFloats(doc, posIdx, 3)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}
	verts := make([]Vertex3D, len(pos)/3)
	for i := range verts {
		verts[i] = NewVertex3D(vec3.T{pos[i*3], pos[i*3+1], pos[i*3+2]})
	}
	if idx, ok := ps.Attributes["NORMAL"]; ok {
		nl, err := readFloats(doc, idx, 3)
		if err != nil {
			return nil, fmt.Errorf("NORMAL: %w", err)
		}
		for i := range verts {
			if i*3+2 < len(nl) {
				verts[i].Normal = vec3.T{nl[i*3], nl[i*3+1], nl[i*3+2]}
			}
		}
	}
	if idx, ok := ps.Attributes["TEXCOORD_0"]; ok {
		tc, err := readFloats(doc, idx, 2)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
		for i := range verts {
			if i*2+1 < len(tc) {
				verts[i].Texture[0] = tc[i*2]
				verts[i].Texture[1] = tc[i*2+1]
			}
		}
	}
	return verts, nil
}

// accessorBytes returns the backing bytes of an accessor and the stride between
// elements.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("sparse or empty accessors are not supported")
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elemSize
	}
	start := int(view.ByteOffset) + int(acc.ByteOffset)
	end := start
	if acc.Count > 0 {
		end = start + stride*(int(acc.Count)-1) + elemSize
	}
	if end > len(data) || end > int(view.ByteOffset+view.ByteLength) {
		return nil, 0, fmt.Errorf("accessor overruns buffer view")
	}
	return data[start:end], stride, nil
}

func readFloats(doc *gltf.Document, accIdx uint32, comps int) ([]float32, error) {
	if int(accIdx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accIdx)
	}
	acc := doc.Accessors[accIdx]
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("component type %d not supported", acc.ComponentType)
	}
	data, stride, err := accessorBytes(doc, acc, comps*4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, int(acc.Count)*comps)
	for i := 0; i < int(acc.Count); i++ {
		for c := 0; c < comps; c++ {
			bits := binary.LittleEndian.Uint32(data[i*stride+c*4:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accIdx uint32) ([]uint32, error) {
	if int(accIdx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accIdx)
	}
	acc := doc.Accessors[accIdx]
	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("index component type %d not supported", acc.ComponentType)
	}
	data, stride, err := accessorBytes(doc, acc, size)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		p := data[i*stride:]
		switch size {
		case 1:
			out[i] = uint32(p[0])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(p))
		case 4:
			out[i] = binary.LittleEndian.Uint32(p)
		}
	}
	return out, nil
}

func materialFromGltf(gm *gltf.Material) Material {
	mtl := DefaultMaterial()
	mtl.Name = gm.Name
	mtl.Emission = vec3.T{gm.EmissiveFactor[0], gm.EmissiveFactor[1], gm.EmissiveFactor[2]}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if c := pbr.BaseColorFactor; c != nil {
			mtl.Albedo = vec3.T{c[0], c[1], c[2]}
			mtl.Alpha = c[3]
		}
		if pbr.MetallicFactor != nil {
			mtl.Metalness = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mtl.Roughness = *pbr.RoughnessFactor
		}
	}
	return mtl
}
