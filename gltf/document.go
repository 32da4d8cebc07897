// Package gltf encodes body meshes as self-contained binary glTF 2.0 (GLB)
// assets with positions, normals, and a triangle index buffer.
package gltf

const (
	glbMagic   = 0x46546C67
	glbVersion = 2

	chunkTypeJSON = 0x4E4F534A
	chunkTypeBIN  = 0x004E4942

	headerSize      = 12
	chunkHeaderSize = 8

	componentFloat32 = 5126
	componentUint32  = 5125

	targetArrayBuffer        = 34962
	targetElementArrayBuffer = 34963

	modeTriangles = 4
)

// Document is the JSON chunk of a GLB asset. Only the subset of glTF 2.0
// needed for a single indexed triangle mesh is modeled.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       int          `json:"scene"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Materials   []Material   `json:"materials,omitempty"`
	Buffers     []Buffer     `json:"buffers"`
	BufferViews []BufferView `json:"bufferViews"`
	Accessors   []Accessor   `json:"accessors"`
}

// Asset identifies the glTF version and the tool that produced the file.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene lists the root nodes to render.
type Scene struct {
	Nodes []int `json:"nodes"`
}

// Node attaches a mesh to the scene graph.
type Node struct {
	Mesh int `json:"mesh"`
}

// Mesh groups primitives that share a node transform.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
}

// Primitive binds vertex attribute accessors to a draw call.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   int            `json:"material"`
	Mode       int            `json:"mode"`
}

// Material is a metallic-roughness PBR surface description.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PBRMetallicRoughness carries the base color and surface response factors.
// The factors always serialize since their glTF defaults are nonzero.
type PBRMetallicRoughness struct {
	BaseColorFactor []float64 `json:"baseColorFactor,omitempty"`
	MetallicFactor  float64   `json:"metallicFactor"`
	RoughnessFactor float64   `json:"roughnessFactor"`
}

// Buffer declares the byte length of the binary chunk.
type Buffer struct {
	ByteLength int `json:"byteLength"`
}

// BufferView is a typed window into the binary chunk.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

// Accessor describes how to interpret a buffer view as vertex data.
type Accessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}
