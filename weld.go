package geom3d

// CombineSimilarVerts merges vertices that are exactly equal and remaps every index to
// the first occurrence. Surviving vertices keep their original order. No tolerance is
// applied; quantize beforehand if near duplicates should merge.
func (g *Geometry3D) CombineSimilarVerts() {
	if len(g.Verts) == 0 {
		return
	}
	first := make(map[Vertex3D]uint32, len(g.Verts))
	remap := make([]uint32, len(g.Verts))
	verts := make([]Vertex3D, 0, len(g.Verts))
	for i, v := range g.Verts {
		if j, ok := first[v]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(verts))
		first[v] = j
		remap[i] = j
		verts = append(verts, v)
	}
	if len(verts) == len(g.Verts) {
		return
	}
	for gi := range g.Indexes {
		idx := g.Indexes[gi].Indexes
		for i := range idx {
			idx[i] = remap[idx[i]]
		}
	}
	g.Verts = verts
}
