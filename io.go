package geom3d

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const maxStringLen = 1 << 20

func toLittleByteOrder(v interface{}) ([]byte, error) {
	var buf []byte
	b := bytes.NewBuffer(buf)
	if err := binary.Write(b, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeLittleByte(wt io.Writer, v interface{}) error {
	buf, err := toLittleByteOrder(v)
	if err != nil {
		return fmt.Errorf("encode %T failed: %w", v, err)
	}
	_, err = wt.Write(buf)
	return err
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

// readChunk caps the elements decoded per read, so a corrupt count fails at the end of
// input instead of allocating the whole declared size up front.
const readChunk = 1 << 12

func readLittleSlice[T any](rd io.Reader, n uint32) ([]T, error) {
	out := make([]T, 0, min(int(n), readChunk))
	for remaining := int(n); remaining > 0; {
		c := min(remaining, readChunk)
		buf := make([]T, c)
		if err := readLittleByte(rd, buf); err != nil {
			return nil, err
		}
		out = append(out, buf...)
		remaining -= c
	}
	return out, nil
}

func writeString(wt io.Writer, s string) error {
	if err := writeLittleByte(wt, uint32(len(s))); err != nil {
		return err
	}
	_, err := wt.Write([]byte(s))
	return err
}

func readString(rd io.Reader) (string, error) {
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return "", err
	}
	if size > maxStringLen {
		return "", fmt.Errorf("string length %d too large", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func MaterialMarshal(wt io.Writer, mtl *Material) error {
	if err := writeString(wt, mtl.Name); err != nil {
		return fmt.Errorf("write material name failed: %w", err)
	}
	fields := []interface{}{&mtl.Albedo, mtl.Alpha, mtl.Roughness, mtl.Metalness, &mtl.Emission}
	for _, f := range fields {
		if err := writeLittleByte(wt, f); err != nil {
			return fmt.Errorf("write material failed: %w", err)
		}
	}
	if err := writeString(wt, mtl.AlbedoTexture); err != nil {
		return fmt.Errorf("write albedo texture failed: %w", err)
	}
	if err := writeString(wt, mtl.NormalTexture); err != nil {
		return fmt.Errorf("write normal texture failed: %w", err)
	}
	return nil
}

func MaterialUnMarshal(rd io.Reader, v uint32) (*Material, error) {
	mtl := DefaultMaterial()
	var err error
	if mtl.Name, err = readString(rd); err != nil {
		return nil, fmt.Errorf("read material name failed: %w", err)
	}
	fields := []interface{}{&mtl.Albedo, &mtl.Alpha, &mtl.Roughness, &mtl.Metalness, &mtl.Emission}
	for _, f := range fields {
		if err := readLittleByte(rd, f); err != nil {
			return nil, fmt.Errorf("read material failed: %w", err)
		}
	}
	if mtl.AlbedoTexture, err = readString(rd); err != nil {
		return nil, fmt.Errorf("read albedo texture failed: %w", err)
	}
	// V2 added the normal texture
	if v >= V2 {
		if mtl.NormalTexture, err = readString(rd); err != nil {
			return nil, fmt.Errorf("read normal texture failed: %w", err)
		}
	}
	return &mtl, nil
}

// IndexGroupMarshal writes the group topology as the host code from codes.
func IndexGroupMarshal(wt io.Writer, grp *IndexGroup, codes TopologyCodes) error {
	if err := writeLittleByte(wt, int32(codes.Code(grp.Type))); err != nil {
		return err
	}
	if err := writeLittleByte(wt, uint32(len(grp.Indexes))); err != nil {
		return err
	}
	return writeLittleByte(wt, grp.Indexes)
}

func IndexGroupUnMarshal(rd io.Reader, codes TopologyCodes) (*IndexGroup, error) {
	var code int32
	if err := readLittleByte(rd, &code); err != nil {
		return nil, err
	}
	t, ok := codes.Topology(int(code))
	if !ok {
		return nil, fmt.Errorf("code %d: %w", code, ErrUnknownTopology)
	}
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return nil, err
	}
	indexes, err := readLittleSlice[uint32](rd, size)
	if err != nil {
		return nil, err
	}
	grp := &IndexGroup{Type: t, Indexes: indexes}
	return grp, nil
}

func Geometry3DMarshal(wt io.Writer, g *Geometry3D) error {
	if err := writeLittleByte(wt, uint32(len(g.Comments))); err != nil {
		return err
	}
	for _, c := range g.Comments {
		if err := writeString(wt, c); err != nil {
			return fmt.Errorf("write comment failed: %w", err)
		}
	}
	if err := writeLittleByte(wt, uint32(len(g.Verts))); err != nil {
		return err
	}
	if err := writeLittleByte(wt, g.Verts); err != nil {
		return fmt.Errorf("write verts failed: %w", err)
	}
	codes := [3]int32{int32(g.Codes.Fan), int32(g.Codes.Strip), int32(g.Codes.List)}
	if err := writeLittleByte(wt, &codes); err != nil {
		return err
	}
	if err := writeLittleByte(wt, uint32(len(g.Indexes))); err != nil {
		return err
	}
	for i := range g.Indexes {
		if err := IndexGroupMarshal(wt, &g.Indexes[i], g.Codes); err != nil {
			return fmt.Errorf("write index group %d failed: %w", i, err)
		}
	}
	return MaterialMarshal(wt, &g.Material)
}

func Geometry3DUnMarshal(rd io.Reader, v uint32) (*Geometry3D, error) {
	g := &Geometry3D{}
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return nil, err
	}
	for i := uint32(0); i < size; i++ {
		c, err := readString(rd)
		if err != nil {
			return nil, fmt.Errorf("read comment failed: %w", err)
		}
		g.Comments = append(g.Comments, c)
	}
	if err := readLittleByte(rd, &size); err != nil {
		return nil, err
	}
	verts, err := readLittleSlice[Vertex3D](rd, size)
	if err != nil {
		return nil, fmt.Errorf("read verts failed: %w", err)
	}
	g.Verts = verts
	var codes [3]int32
	if err := readLittleByte(rd, &codes); err != nil {
		return nil, err
	}
	g.Codes = TopologyCodes{Fan: int(codes[0]), Strip: int(codes[1]), List: int(codes[2])}
	if err := readLittleByte(rd, &size); err != nil {
		return nil, err
	}
	g.Indexes = make([]IndexGroup, 0, min(int(size), readChunk))
	for i := uint32(0); i < size; i++ {
		grp, err := IndexGroupUnMarshal(rd, g.Codes)
		if err != nil {
			return nil, fmt.Errorf("read index group %d failed: %w", i, err)
		}
		g.Indexes = append(g.Indexes, *grp)
	}
	mtl, err := MaterialUnMarshal(rd, v)
	if err != nil {
		return nil, err
	}
	g.Material = *mtl
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func MeshSetMarshal(wt io.Writer, ms MeshSet) error {
	if _, err := wt.Write([]byte(GEOMETRY_SIGNATURE)); err != nil {
		return err
	}
	if err := writeLittleByte(wt, V2); err != nil {
		return err
	}
	if err := writeLittleByte(wt, uint32(len(ms))); err != nil {
		return err
	}
	for i, g := range ms {
		if err := Geometry3DMarshal(wt, g); err != nil {
			return fmt.Errorf("write mesh %d failed: %w", i, err)
		}
	}
	return nil
}

func MeshSetUnMarshal(rd io.Reader) (MeshSet, error) {
	sig := make([]byte, len(GEOMETRY_SIGNATURE))
	if _, err := io.ReadFull(rd, sig); err != nil {
		return nil, err
	}
	if string(sig) != GEOMETRY_SIGNATURE {
		return nil, ErrBadSignature
	}
	var v uint32
	if err := readLittleByte(rd, &v); err != nil {
		return nil, err
	}
	if v < V1 || v > V2 {
		return nil, fmt.Errorf("version %d: %w", v, ErrUnsupportedVersion)
	}
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return nil, err
	}
	var ms MeshSet
	for i := uint32(0); i < size; i++ {
		g, err := Geometry3DUnMarshal(rd, v)
		if err != nil {
			return nil, fmt.Errorf("read mesh %d failed: %w", i, err)
		}
		ms = append(ms, g)
	}
	return ms, nil
}

func MeshSetReadFrom(path string) (MeshSet, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return MeshSetUnMarshal(bufio.NewReader(f))
}

func MeshSetWriteTo(path string, ms MeshSet) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	f, e := os.Create(path)
	if e != nil {
		return e
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := MeshSetMarshal(w, ms); err != nil {
		return err
	}
	return w.Flush()
}
