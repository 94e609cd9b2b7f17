package geom3d

import "errors"

const GEOMETRY_SIGNATURE string = "fwg3"
const G3DEXT string = ".g3d"
const V1 uint32 = 1
const V2 uint32 = 2

// Host primitive codes, matching the GL enumeration.
const (
	GL_TRIANGLES      = 0x0004
	GL_TRIANGLE_STRIP = 0x0005
	GL_TRIANGLE_FAN   = 0x0006
)

var (
	ErrBadSignature       = errors.New("geom3d: bad signature")
	ErrUnsupportedVersion = errors.New("geom3d: unsupported version")
	ErrUnknownTopology    = errors.New("geom3d: unknown topology code")
	ErrIndexOutOfRange    = errors.New("geom3d: index out of range")
)

// Topology is the primitive layout of an index group.
type Topology int

const (
	TriangleList Topology = iota
	TriangleStrip
	TriangleFan
)

var topologyNames = [...]string{
	TriangleList:  "TriangleList",
	TriangleStrip: "TriangleStrip",
	TriangleFan:   "TriangleFan",
}

func (t Topology) String() string {
	if t < 0 || int(t) >= len(topologyNames) {
		return "Unknown"
	}
	return topologyNames[t]
}

// TopologyCodes maps topologies to host defined numeric codes.
type TopologyCodes struct {
	Fan   int `json:"fan"`
	Strip int `json:"strip"`
	List  int `json:"list"`
}

var DefaultTopologyCodes = TopologyCodes{
	Fan:   GL_TRIANGLE_FAN,
	Strip: GL_TRIANGLE_STRIP,
	List:  GL_TRIANGLES,
}

func (c TopologyCodes) Code(t Topology) int {
	switch t {
	case TriangleFan:
		return c.Fan
	case TriangleStrip:
		return c.Strip
	default:
		return c.List
	}
}

func (c TopologyCodes) Topology(code int) (Topology, bool) {
	switch code {
	case c.Fan:
		return TriangleFan, true
	case c.Strip:
		return TriangleStrip, true
	case c.List:
		return TriangleList, true
	}
	return TriangleList, false
}

// NormalCalculationMode selects the algorithm used by CalculateNormals.
type NormalCalculationMode int

const (
	NormalNone NormalCalculationMode = iota
	CalculateFaceNormals
	CalculateVertexNormals
	CalculateAdaptiveNormals
)

const DefaultMinDot float32 = 0.9

var normalModeNames = [...]string{
	NormalNone:               "None",
	CalculateFaceNormals:     "CalculateFaceNormals",
	CalculateVertexNormals:   "CalculateVertexNormals",
	CalculateAdaptiveNormals: "CalculateAdaptiveNormals",
}

// NormalCalculationModes lists the mode names in enum order.
func NormalCalculationModes() []string {
	out := make([]string, len(normalModeNames))
	copy(out, normalModeNames[:])
	return out
}

func (m NormalCalculationMode) String() string {
	if m < 0 || int(m) >= len(normalModeNames) {
		return normalModeNames[NormalNone]
	}
	return normalModeNames[m]
}

// NormalCalculationModeFromString returns NormalNone for unknown names.
func NormalCalculationModeFromString(s string) NormalCalculationMode {
	for i, n := range normalModeNames {
		if n == s {
			return NormalCalculationMode(i)
		}
	}
	return NormalNone
}
