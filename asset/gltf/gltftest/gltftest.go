// Package gltftest provides small glTF scenes for tests.
//
// The scene contains a 10x10 floor quad (mesh 0, node 0) and a triangle
// (mesh 1, node 1) whose translation is animated from (0, 0, 0) at t=0 to
// (0, 1, 0) at t=AnimationLength using linear interpolation.
package gltftest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// The length in seconds of the animation in the test scene.
const AnimationLength = 2.0

// Triangle count of the test scene.
const TriangleCount = 3

func buildBuffer() []byte {
	var buf bytes.Buffer
	w := func(v interface{}) {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	// floor positions (offset 0, 48 bytes)
	w([]float32{-5, 0, -5, 5, 0, -5, 5, 0, 5, -5, 0, 5})
	// floor indices (offset 48, 12 bytes)
	w([]uint16{0, 2, 1, 0, 3, 2})
	// triangle positions (offset 60, 36 bytes)
	w([]float32{-0.5, 0.5, 0, 0.5, 0.5, 0, 0, 1.5, 0})
	// animation keyframe times (offset 96, 8 bytes)
	w([]float32{0, AnimationLength})
	// animation translations (offset 104, 24 bytes)
	w([]float32{0, 0, 0, 0, 1, 0})

	return buf.Bytes()
}

const documentTemplate = `{
  "asset": {"version": "2.0", "generator": "gltftest"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [
    {"name": "floor", "mesh": 0},
    {"name": "mover", "mesh": 1, "translation": [0, 0, 0]}
  ],
  "meshes": [
    {"name": "floor", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]},
    {"name": "tri", "primitives": [{"attributes": {"POSITION": 2}, "material": 1}]}
  ],
  "materials": [
    {"name": "grey", "pbrMetallicRoughness": {"baseColorFactor": [0.8, 0.8, 0.8, 1.0]}},
    {"name": "glow", "emissiveFactor": [1.0, 0.5, 0.2]}
  ],
  "animations": [{
    "name": "lift",
    "channels": [{"sampler": 0, "target": {"node": 1, "path": "translation"}}],
    "samplers": [{"input": 3, "output": 4, "interpolation": "LINEAR"}]
  }],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3", "min": [-5, 0, -5], "max": [5, 0, 5]},
    {"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"},
    {"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC3", "min": [-0.5, 0.5, 0], "max": [0.5, 1.5, 0]},
    {"bufferView": 3, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [2]},
    {"bufferView": 4, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 48},
    {"buffer": 0, "byteOffset": 48, "byteLength": 12},
    {"buffer": 0, "byteOffset": 60, "byteLength": 36},
    {"buffer": 0, "byteOffset": 96, "byteLength": 8},
    {"buffer": 0, "byteOffset": 104, "byteLength": 24}
  ],
  "buffers": [{%s"byteLength": %d}]
}`

// Document returns a self-contained .gltf document using a data URI buffer.
func Document() []byte {
	data := buildBuffer()
	uri := fmt.Sprintf(`"uri": "data:application/octet-stream;base64,%s", `, base64.StdEncoding.EncodeToString(data))
	return []byte(fmt.Sprintf(documentTemplate, uri, len(data)))
}

// GLB returns the test scene packed as a binary glTF blob.
func GLB() []byte {
	data := buildBuffer()
	jsonChunk := []byte(fmt.Sprintf(documentTemplate, "", len(data)))
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(data)
	_ = binary.Write(&buf, binary.LittleEndian, []uint32{0x46546c67, 2, uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), 0x4e4f534a})
	buf.Write(jsonChunk)
	_ = binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(data)), 0x004e4942})
	buf.Write(data)
	return buf.Bytes()
}

// WriteScene writes the test scene to dir/name and returns its path. Names
// ending in .glb are written in the binary format.
func WriteScene(dir, name string) (string, error) {
	payload := Document()
	if filepath.Ext(name) == ".glb" {
		payload = GLB()
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
