package geom3d

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

func codecMesh() *Geometry3D {
	g := mixedMesh()
	g.Comments = []string{"mixed", "second comment"}
	for i := range g.Verts {
		g.Verts[i].Texture = vec2.T{float32(i) / 8, 1 - float32(i)/8}
		g.Verts[i].Normal = vec3.T{0, float32(i % 2), 1}
	}
	g.Codes = TopologyCodes{Fan: 10, Strip: 11, List: 12}
	g.Material = Material{
		Name:          "brick",
		Albedo:        vec3.T{0.5, 0.25, 0.125},
		Alpha:         0.75,
		Roughness:     0.5,
		Metalness:     0.25,
		Emission:      vec3.T{0.1, 0.2, 0.3},
		AlbedoTexture: "brick.png",
		NormalTexture: "brick_n.png",
	}
	return g
}

func TestMeshSetMarshalRoundTrip(t *testing.T) {
	ms := MeshSet{codecMesh(), cube(), NewGeometry3D()}

	var buf bytes.Buffer
	if err := MeshSetMarshal(&buf, ms); err != nil {
		t.Fatalf("MeshSetMarshal failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(GEOMETRY_SIGNATURE)) {
		t.Error("missing signature")
	}

	got, err := MeshSetUnMarshal(&buf)
	if err != nil {
		t.Fatalf("MeshSetUnMarshal failed: %v", err)
	}
	if len(got) != len(ms) {
		t.Fatalf("got %d meshes, want %d", len(got), len(ms))
	}
	for i := range ms {
		if !ms[i].Equal(got[i]) {
			t.Errorf("mesh %d differs after round trip", i)
		}
		if ms[i].Material != got[i].Material {
			t.Errorf("mesh %d material = %+v, want %+v", i, got[i].Material, ms[i].Material)
		}
	}
}

func TestMeshSetReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mesh"+G3DEXT)
	ms := MeshSet{codecMesh()}
	if err := MeshSetWriteTo(path, ms); err != nil {
		t.Fatalf("MeshSetWriteTo failed: %v", err)
	}
	got, err := MeshSetReadFrom(path)
	if err != nil {
		t.Fatalf("MeshSetReadFrom failed: %v", err)
	}
	if len(got) != 1 || !got[0].Equal(ms[0]) {
		t.Error("file round trip mismatch")
	}

	if _, err := MeshSetReadFrom(filepath.Join(t.TempDir(), "missing.g3d")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMeshSetUnMarshalErrors(t *testing.T) {
	var good bytes.Buffer
	if err := MeshSetMarshal(&good, MeshSet{codecMesh()}); err != nil {
		t.Fatal(err)
	}

	version := func(v uint32) []byte {
		b := []byte(GEOMETRY_SIGNATURE)
		return binary.LittleEndian.AppendUint32(b, v)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad signature", []byte("abcd\x02\x00\x00\x00"), ErrBadSignature},
		{"version zero", version(0), ErrUnsupportedVersion},
		{"future version", version(V2 + 1), ErrUnsupportedVersion},
		{"truncated", good.Bytes()[:good.Len()/2], nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeshSetUnMarshal(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIndexGroupUnknownTopology(t *testing.T) {
	var buf bytes.Buffer
	grp := IndexGroup{Type: TriangleStrip, Indexes: []uint32{0, 1, 2}}
	if err := IndexGroupMarshal(&buf, &grp, TopologyCodes{Fan: 1, Strip: 2, List: 3}); err != nil {
		t.Fatal(err)
	}
	_, err := IndexGroupUnMarshal(&buf, DefaultTopologyCodes)
	if !errors.Is(err, ErrUnknownTopology) {
		t.Errorf("got %v, want ErrUnknownTopology", err)
	}
}

func TestMaterialUnMarshalV1(t *testing.T) {
	mtl := codecMesh().Material
	mtl.NormalTexture = ""
	var buf bytes.Buffer
	if err := MaterialMarshal(&buf, &mtl); err != nil {
		t.Fatal(err)
	}

	got, err := MaterialUnMarshal(&buf, V1)
	if err != nil {
		t.Fatalf("MaterialUnMarshal failed: %v", err)
	}
	if *got != mtl {
		t.Errorf("got %+v, want %+v", *got, mtl)
	}
	// the V2 normal texture length is left unread
	if buf.Len() != 4 {
		t.Errorf("expected 4 unread bytes, got %d", buf.Len())
	}
}

func TestMeshSetUnMarshalIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		grp  IndexGroup
	}{
		{"list", IndexGroup{Type: TriangleList, Indexes: []uint32{0, 1, 7}}},
		{"strip", IndexGroup{Type: TriangleStrip, Indexes: []uint32{0, 1, 2, 3}}},
		{"fan", IndexGroup{Type: TriangleFan, Indexes: []uint32{3, 0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := unitTriangle()
			g.Indexes = []IndexGroup{tt.grp}
			var buf bytes.Buffer
			if err := MeshSetMarshal(&buf, MeshSet{g}); err != nil {
				t.Fatal(err)
			}
			ms, err := MeshSetUnMarshal(&buf)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("got %v, want ErrIndexOutOfRange", err)
			}
			if ms != nil {
				t.Error("invalid mesh was returned")
			}
		})
	}
}

func TestMeshSetUnMarshalOversizedCounts(t *testing.T) {
	header := func(t *testing.T, fields ...interface{}) []byte {
		var buf bytes.Buffer
		buf.WriteString(GEOMETRY_SIGNATURE)
		for _, f := range append([]interface{}{V2, uint32(1), uint32(0)}, fields...) {
			if err := writeLittleByte(&buf, f); err != nil {
				t.Fatal(err)
			}
		}
		return buf.Bytes()
	}
	codes := [3]int32{GL_TRIANGLE_FAN, GL_TRIANGLE_STRIP, GL_TRIANGLES}

	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"verts", func(t *testing.T) []byte {
			return header(t, uint32(math.MaxUint32))
		}},
		{"groups", func(t *testing.T) []byte {
			return header(t, uint32(0), &codes, uint32(math.MaxUint32))
		}},
		{"indexes", func(t *testing.T) []byte {
			return header(t, uint32(0), &codes, uint32(1), int32(GL_TRIANGLES), uint32(math.MaxUint32), uint32(0))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MeshSetUnMarshal(bytes.NewReader(tt.data(t))); err == nil {
				t.Error("expected error for a count larger than the input")
			}
		})
	}
}

func TestReadLittleSlice(t *testing.T) {
	want := make([]uint32, readChunk*2+5)
	for i := range want {
		want[i] = uint32(i * 7)
	}
	var buf bytes.Buffer
	if err := writeLittleByte(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := readLittleSlice[uint32](&buf, uint32(len(want)))
	if err != nil {
		t.Fatalf("readLittleSlice failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("value %d = %d, want %d", i, got[i], want[i])
		}
	}

	empty, err := readLittleSlice[Vertex3D](&buf, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty read = %v, %v", empty, err)
	}
}
