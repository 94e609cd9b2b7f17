package geom3d

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/flywave/go-geom3d/internal/logger"
)

const (
	GLTFVersion = "2.0"

	// PaddingChar pads binary output.
	PaddingChar = 0x20
)

var gltfModes = map[Topology]gltf.PrimitiveMode{
	TriangleList:  gltf.PrimitiveTriangles,
	TriangleStrip: gltf.PrimitiveTriangleStrip,
	TriangleFan:   gltf.PrimitiveTriangleFan,
}

// ExportOptions controls ToGltf.
type ExportOptions struct {
	// TextureDir resolves Material.AlbedoTexture; textures are skipped when empty.
	TextureDir  string
	DoubleSided bool
}

func CreateDoc() *gltf.Document {
	doc := &gltf.Document{
		Asset: gltf.Asset{
			Version:   GLTFVersion,
			Generator: "go-geom3d",
		},
		Scenes:  []*gltf.Scene{{}},
		Buffers: []*gltf.Buffer{{}},
	}
	sceneIndex := uint32(0)
	doc.Scene = &sceneIndex
	return doc
}

// ToGltf exports every mesh as a glTF mesh with one primitive per index group.
func ToGltf(ms MeshSet, opts *ExportOptions) (*gltf.Document, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	doc := CreateDoc()
	textures := make(map[string]uint32)
	for i, g := range ms {
		if err := buildGltfMesh(doc, g, opts, textures); err != nil {
			return nil, fmt.Errorf("export mesh %d failed: %w", i, err)
		}
	}
	return doc, nil
}

// bufferWriter counts the bytes written through it.
type bufferWriter struct {
	writer io.Writer
	size   int
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	n, err := w.writer.Write(p)
	w.size += n
	return n, err
}

func (w *bufferWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newBufferWriter() *bufferWriter {
	return &bufferWriter{writer: bytes.NewBuffer(nil)}
}

func calcPadding(offset, unit int) int {
	padding := offset % unit
	if padding != 0 {
		padding = unit - padding
	}
	return padding
}

// GetGltfBinary encodes doc as GLB and pads it to a multiple of paddingUnit.
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	writer := newBufferWriter()

	encoder := gltf.NewEncoder(writer)
	encoder.AsBinary = true
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	if paddingUnit > 0 {
		if padding := calcPadding(writer.size, paddingUnit); padding != 0 {
			writer.Write(bytes.Repeat([]byte{PaddingChar}, padding))
		}
	}
	return writer.Bytes(), nil
}

// SaveGltf writes doc as a .gltf JSON file with its buffers embedded as data URIs.
func SaveGltf(doc *gltf.Document, path string) error {
	for _, b := range doc.Buffers {
		if b.URI == "" && len(b.Data) > 0 {
			b.EmbeddedResource()
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	encoder := gltf.NewEncoder(f)
	encoder.AsBinary = false
	if err := encoder.Encode(doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// appendView writes data to the document buffer and returns the new view index.
func appendView(doc *gltf.Document, data interface{}, target gltf.Target) (uint32, error) {
	buffer := doc.Buffers[0]
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		return 0, err
	}
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
		Target:     target,
	}
	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)
	doc.BufferViews = append(doc.BufferViews, view)
	return uint32(len(doc.BufferViews) - 1), nil
}

func appendAccessor(doc *gltf.Document, acc *gltf.Accessor) uint32 {
	doc.Accessors = append(doc.Accessors, acc)
	return uint32(len(doc.Accessors) - 1)
}

// buildGltfMesh adds g as a mesh and node. A mesh without triangles is skipped since a
// glTF mesh needs at least one primitive.
func buildGltfMesh(doc *gltf.Document, g *Geometry3D, opts *ExportOptions, textures map[string]uint32) error {
	if len(g.Verts) == 0 || g.StatsCounts().TriangleCount == 0 {
		logger.Debug("skipping mesh without triangles", zap.String("name", g.Name()))
		return nil
	}

	positions := make([]vec3.T, len(g.Verts))
	normals := make([]vec3.T, len(g.Verts))
	texCoords := make([]vec2.T, len(g.Verts))
	for i := range g.Verts {
		positions[i] = g.Verts[i].Vert
		normals[i] = g.Verts[i].Normal
		texCoords[i] = g.Verts[i].Texture
	}

	mtlID, err := buildMaterial(doc, &g.Material, opts, textures)
	if err != nil {
		return err
	}

	mesh := &gltf.Mesh{Name: g.Name()}

	bvPos, err := appendView(doc, positions, gltf.TargetArrayBuffer)
	if err != nil {
		return err
	}
	bvNorm, err := appendView(doc, normals, gltf.TargetArrayBuffer)
	if err != nil {
		return err
	}
	bvTex, err := appendView(doc, texCoords, gltf.TargetArrayBuffer)
	if err != nil {
		return err
	}

	min, max := MeshSet{g}.GetMinMax()
	attributes := gltf.Attribute{
		"POSITION": appendAccessor(doc, &gltf.Accessor{
			BufferView:    uint32Ptr(bvPos),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(len(positions)),
			Min:           []float32{min[0], min[1], min[2]},
			Max:           []float32{max[0], max[1], max[2]},
		}),
		"NORMAL": appendAccessor(doc, &gltf.Accessor{
			BufferView:    uint32Ptr(bvNorm),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(len(normals)),
		}),
		"TEXCOORD_0": appendAccessor(doc, &gltf.Accessor{
			BufferView:    uint32Ptr(bvTex),
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec2,
			Count:         uint32(len(texCoords)),
		}),
	}

	for gi := range g.Indexes {
		grp := &g.Indexes[gi]
		if grp.TriangleCount() == 0 {
			continue
		}
		bvIdx, err := appendView(doc, grp.Indexes, gltf.TargetElementArrayBuffer)
		if err != nil {
			return err
		}
		idxAcc := appendAccessor(doc, &gltf.Accessor{
			BufferView:    uint32Ptr(bvIdx),
			ComponentType: gltf.ComponentUint,
			Type:          gltf.AccessorScalar,
			Count:         uint32(len(grp.Indexes)),
		})
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: attributes,
			Indices:    uint32Ptr(idxAcc),
			Material:   uint32Ptr(mtlID),
			Mode:       gltfModes[grp.Type],
		})
	}

	meshIndex := uint32(len(doc.Meshes))
	doc.Meshes = append(doc.Meshes, mesh)
	nodeIndex := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: g.Name(), Mesh: &meshIndex})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex)
	return nil
}

func buildMaterial(doc *gltf.Document, mtl *Material, opts *ExportOptions, textures map[string]uint32) (uint32, error) {
	metallic := mtl.Metalness
	roughness := mtl.Roughness
	gm := &gltf.Material{
		Name:        mtl.Name,
		DoubleSided: opts.DoubleSided,
		AlphaMode:   gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{mtl.Albedo[0], mtl.Albedo[1], mtl.Albedo[2], mtl.Alpha},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		EmissiveFactor: [3]float32{mtl.Emission[0], mtl.Emission[1], mtl.Emission[2]},
	}
	if mtl.Alpha < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}

	if opts.TextureDir != "" && mtl.HasTexture() {
		idx, err := textureIndex(doc, filepath.Join(opts.TextureDir, mtl.AlbedoTexture), textures)
		if err != nil {
			return 0, err
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: idx}
	}
	if opts.TextureDir != "" && mtl.HasNormalTexture() {
		idx, err := textureIndex(doc, filepath.Join(opts.TextureDir, mtl.NormalTexture), textures)
		if err != nil {
			return 0, err
		}
		gm.NormalTexture = &gltf.NormalTexture{Index: &idx}
	}

	doc.Materials = append(doc.Materials, gm)
	return uint32(len(doc.Materials) - 1), nil
}

// textureIndex embeds the image at path once per document.
func textureIndex(doc *gltf.Document, path string, textures map[string]uint32) (uint32, error) {
	if idx, ok := textures[path]; ok {
		return idx, nil
	}
	tex, err := CreateTexture(path, true)
	if err != nil {
		return 0, fmt.Errorf("load texture %s: %w", path, err)
	}
	gt, err := buildTexture(doc, tex)
	if err != nil {
		return 0, err
	}
	idx := uint32(len(doc.Textures))
	doc.Textures = append(doc.Textures, gt)
	textures[path] = idx
	return idx, nil
}

func buildTexture(doc *gltf.Document, texture *Texture) (*gltf.Texture, error) {
	img, err := LoadTexture(texture, false)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}

	buffer := doc.Buffers[0]
	bufferViewIndex := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
		Buffer:     0,
	})
	buffer.Data = append(buffer.Data, buf.Bytes()...)
	buffer.ByteLength += uint32(buf.Len())
	// keep later views 4 byte aligned
	if pad := calcPadding(int(buffer.ByteLength), 4); pad != 0 {
		buffer.Data = append(buffer.Data, make([]byte, pad)...)
		buffer.ByteLength += uint32(pad)
	}

	imageIndex := uint32(len(doc.Images))
	doc.Images = append(doc.Images, &gltf.Image{
		Name:       texture.Name,
		MimeType:   "image/png",
		BufferView: &bufferViewIndex,
	})

	sampler := &gltf.Sampler{WrapS: gltf.WrapClampToEdge, WrapT: gltf.WrapClampToEdge}
	if texture.Repeated {
		sampler = &gltf.Sampler{WrapS: gltf.WrapRepeat, WrapT: gltf.WrapRepeat}
	}
	samplerIndex := uint32(len(doc.Samplers))
	doc.Samplers = append(doc.Samplers, sampler)

	return &gltf.Texture{Sampler: &samplerIndex, Source: &imageIndex}, nil
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
