// Package gltf implements glTF 2.0 decoding for the subset of the format
// consumed by the scene readers: geometry, node hierarchies, TRS animations
// and metallic-roughness base color/emissive materials.
package gltf

import (
	json "github.com/goccy/go-json"
)

// Root glTF object.
type GLTF struct {
	ExtensionsUsed     []string    `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string    `json:"extensionsRequired,omitempty"`
	Accessors          []Accessor  `json:"accessors,omitempty"`
	Animations         []Animation `json:"animations,omitempty"`
	Asset              struct {
		Generator  string `json:"generator,omitempty"`
		Version    string `json:"version"`
		MinVersion string `json:"minVersion,omitempty"`
	} `json:"asset"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
}

// glTF.accessors' element.
type Accessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"` // Default is 0.
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
	Sparse        *Sparse   `json:"sparse,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// accessor.sparse.
type Sparse struct {
	Count   int `json:"count"`
	Indices struct {
		BufferView    int `json:"bufferView"`
		ByteOffset    int `json:"byteOffset,omitempty"`
		ComponentType int `json:"componentType"`
	} `json:"indices"`
	Values struct {
		BufferView int `json:"bufferView"`
		ByteOffset int `json:"byteOffset,omitempty"`
	} `json:"values"`
}

// accessor.*.componentType values.
const (
	BYTE           = 5120
	UNSIGNED_BYTE  = 5121
	SHORT          = 5122
	UNSIGNED_SHORT = 5123
	UNSIGNED_INT   = 5125
	FLOAT          = 5126
)

// accessor.type values.
const (
	SCALAR = "SCALAR"
	VEC2   = "VEC2"
	VEC3   = "VEC3"
	VEC4   = "VEC4"
	MAT2   = "MAT2"
	MAT3   = "MAT3"
	MAT4   = "MAT4"
)

// glTF.animations' element.
type Animation struct {
	Channels []AChannel `json:"channels"`
	Samplers []ASampler `json:"samplers"`
	Name     string     `json:"name,omitempty"`
}

// animation.channels' element.
type AChannel struct {
	Sampler int `json:"sampler"`
	Target  struct {
		Node *int   `json:"node,omitempty"`
		Path string `json:"path"`
	} `json:"target"`
}

// animation.samplers' element.
type ASampler struct {
	Input         int    `json:"input"`
	Interpolation string `json:"interpolation,omitempty"` // Default is "LINEAR".
	Output        int    `json:"output"`
}

// animation.channel.target.path values.
const (
	Ptranslation = "translation"
	Protation    = "rotation"
	Pscale       = "scale"
	Pweights     = "weights"
)

// animation.sampler.interpolation values.
const (
	ILINEAR     = "LINEAR"
	STEP        = "STEP"
	CUBICSPLINE = "CUBICSPLINE"
)

// glTF.buffers' element.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// glTF.bufferViews' element.
type BufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"` // Default is 0.
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"` // 0 for tightly packed.
	Target     int    `json:"target,omitempty"`     // 0 for no hint.
	Name       string `json:"name,omitempty"`
}

// glTF.images' element.
type Image struct {
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	Name       string `json:"name,omitempty"`
}

// glTF.materials' element.
type Material struct {
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"` // Default is [0, 0, 0].
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	Name                 string                `json:"name,omitempty"`
	Extensions           *MaterialExtensions   `json:"extensions,omitempty"`
}

// material.extensions subset.
type MaterialExtensions struct {
	EmissiveStrength *struct {
		EmissiveStrength *float32 `json:"emissiveStrength,omitempty"` // Default is 1.
	} `json:"KHR_materials_emissive_strength,omitempty"`
}

// material.pbrMetallicRoughness.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"` // Default is [1, 1, 1, 1].
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`  // Default is 1.
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"` // Default is 1.
}

// glTF.meshes' element.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
	Name       string      `json:"name,omitempty"`
}

// mesh.primitives' element.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"` // Default is 4.
}

// mesh.primitive.attributes keys.
const (
	POSITION   = "POSITION"
	NORMAL     = "NORMAL"
	TEXCOORD_0 = "TEXCOORD_0"
)

// mesh.primitive.mode values.
const (
	POINTS = iota
	LINES
	LINE_LOOP
	LINE_STRIP
	TRIANGLES
	TRIANGLE_STRIP
	TRIANGLE_FAN
)

// glTF.nodes' element.
type Node struct {
	Children    []int        `json:"children,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"` // Default is identity.
	Mesh        *int         `json:"mesh,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`    // Default is [0, 0, 0, 1].
	Scale       *[3]float32  `json:"scale,omitempty"`       // Default is [1, 1, 1].
	Translation *[3]float32  `json:"translation,omitempty"` // Default is [0, 0, 0].
	Name        string       `json:"name,omitempty"`
}

// glTF.scenes' element.
type Scene struct {
	Nodes []int  `json:"nodes,omitempty"`
	Name  string `json:"name,omitempty"`
}

// glTF.textures' element.
type Texture struct {
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
	Name    string `json:"name,omitempty"`
}

// textureInfo.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"` // Default is TEXCOORD_0.
}

// Decode decodes a JSON glTF document.
func Decode(data []byte) (*GLTF, error) {
	var gltf GLTF
	if err := json.Unmarshal(data, &gltf); err != nil {
		return nil, newErr("invalid JSON: " + err.Error())
	}
	return &gltf, nil
}
