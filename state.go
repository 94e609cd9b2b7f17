package geom3d

import (
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
)

// Document is a decoded JSON object, as produced by encoding/json into an interface{}.
type Document = map[string]interface{}

// Geometry is a 2D outline placed in 3D by a transform.
type Geometry struct {
	Geometry  []vec2.T
	Transform mat4.T
	Material  Material
}

func NewGeometry() *Geometry {
	return &Geometry{Transform: mat4.Ident, Material: DefaultMaterial()}
}

func (g *Geometry) SaveState(j Document) {
	pts := make([]interface{}, 0, len(g.Geometry))
	for _, p := range g.Geometry {
		pts = append(pts, []interface{}{p[0], p[1]})
	}
	j["geometry"] = pts
	j["transform"] = mat4ToJSON(&g.Transform)
	mj := Document{}
	g.Material.SaveState(mj)
	j["material"] = mj
}

func (g *Geometry) LoadState(j Document) {
	g.Geometry = g.Geometry[:0]
	if arr, ok := j["geometry"].([]interface{}); ok {
		for _, p := range arr {
			g.Geometry = append(g.Geometry, vec2FromJSON(p, vec2.T{}))
		}
	}
	g.Transform = mat4FromJSON(j["transform"], mat4.Ident)
	mj, _ := j["material"].(Document)
	g.Material.LoadState(mj)
}

func jsonFloat(j Document, key string, def float32) float32 {
	if f, ok := toFloat(j[key]); ok {
		return f
	}
	return def
}

func jsonString(j Document, key string, def string) string {
	if s, ok := j[key].(string); ok {
		return s
	}
	return def
}

func toFloat(v interface{}) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	}
	return 0, false
}

// floatsFromJSON reads exactly n numbers, otherwise ok is false.
func floatsFromJSON(v interface{}, n int) ([]float32, bool) {
	var out []float32
	switch arr := v.(type) {
	case []interface{}:
		if len(arr) != n {
			return nil, false
		}
		out = make([]float32, n)
		for i, e := range arr {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
	case []float32:
		if len(arr) != n {
			return nil, false
		}
		out = append(out, arr...)
	default:
		return nil, false
	}
	return out, true
}

func vec3ToJSON(v vec3.T) []interface{} {
	return []interface{}{v[0], v[1], v[2]}
}

func vec2FromJSON(v interface{}, def vec2.T) vec2.T {
	f, ok := floatsFromJSON(v, 2)
	if !ok {
		return def
	}
	return vec2.T{f[0], f[1]}
}

func vec3FromJSON(v interface{}, def vec3.T) vec3.T {
	f, ok := floatsFromJSON(v, 3)
	if !ok {
		return def
	}
	return vec3.T{f[0], f[1], f[2]}
}

// mat4ToJSON writes the 16 values column by column.
func mat4ToJSON(m *mat4.T) []interface{} {
	out := make([]interface{}, 0, 16)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out = append(out, m[c][r])
		}
	}
	return out
}

func mat4FromJSON(v interface{}, def mat4.T) mat4.T {
	f, ok := floatsFromJSON(v, 16)
	if !ok {
		return def
	}
	var m mat4.T
	for c := 0; c < 4; c++ {
		m[c] = vec4.T{f[c*4], f[c*4+1], f[c*4+2], f[c*4+3]}
	}
	return m
}
