package geom3d

import "github.com/flywave/go3d/vec3"

// Material is carried by a mesh and copied verbatim; the geometry algorithms never
// look inside it.
type Material struct {
	Name          string  `json:"name"`
	Albedo        vec3.T  `json:"albedo"`
	Alpha         float32 `json:"alpha"`
	Roughness     float32 `json:"roughness"`
	Metalness     float32 `json:"metalness"`
	Emission      vec3.T  `json:"emission"`
	AlbedoTexture string  `json:"albedoTexture,omitempty"`
	NormalTexture string  `json:"normalTexture,omitempty"`
}

func DefaultMaterial() Material {
	return Material{
		Albedo:    vec3.T{1, 1, 1},
		Alpha:     1,
		Roughness: 1,
	}
}

func (m *Material) HasTexture() bool {
	return m.AlbedoTexture != ""
}

func (m *Material) HasNormalTexture() bool {
	return m.NormalTexture != ""
}

func (m *Material) SaveState(j Document) {
	j["name"] = m.Name
	j["albedo"] = vec3ToJSON(m.Albedo)
	j["alpha"] = m.Alpha
	j["roughness"] = m.Roughness
	j["metalness"] = m.Metalness
	j["emission"] = vec3ToJSON(m.Emission)
	j["albedoTexture"] = m.AlbedoTexture
	j["normalTexture"] = m.NormalTexture
}

func (m *Material) LoadState(j Document) {
	def := DefaultMaterial()
	m.Name = jsonString(j, "name", def.Name)
	m.Albedo = vec3FromJSON(j["albedo"], def.Albedo)
	m.Alpha = jsonFloat(j, "alpha", def.Alpha)
	m.Roughness = jsonFloat(j, "roughness", def.Roughness)
	m.Metalness = jsonFloat(j, "metalness", def.Metalness)
	m.Emission = vec3FromJSON(j["emission"], def.Emission)
	m.AlbedoTexture = jsonString(j, "albedoTexture", "")
	m.NormalTexture = jsonString(j, "normalTexture", "")
}
