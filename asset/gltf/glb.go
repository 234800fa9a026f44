package gltf

import (
	"encoding/binary"
)

// GLB header: magic, version, total length.
const glbHeaderSize = 12

// GLB chunk header: length, type.
const glbChunkHeaderSize = 8

const (
	magic = 0x46546c67

	typeJSON = 0x4e4f534a
	typeBIN  = 0x004e4942
)

// IsGLB returns whether data starts with a binary glTF (version 2) header.
func IsGLB(data []byte) bool {
	if len(data) < glbHeaderSize {
		return false
	}
	return binary.LittleEndian.Uint32(data[0:]) == magic &&
		binary.LittleEndian.Uint32(data[4:]) == 2
}

// SplitGLB extracts the JSON and (optional) BIN chunk payloads from a GLB blob.
func SplitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if !IsGLB(data) {
		return nil, nil, newErr("not a GLB blob")
	}

	length := int(binary.LittleEndian.Uint32(data[8:]))
	if length > len(data) {
		return nil, nil, newErr("truncated GLB blob")
	}

	offset := glbHeaderSize
	for offset+glbChunkHeaderSize <= length {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		start := offset + glbChunkHeaderSize
		end := start + chunkLen
		if chunkLen < 0 || end > length {
			return nil, nil, newErr("invalid GLB chunk")
		}

		switch chunkType {
		case typeJSON:
			if jsonChunk == nil {
				jsonChunk = data[start:end]
			}
		case typeBIN:
			if binChunk == nil {
				binChunk = data[start:end]
			}
		}

		// Chunks are 4-byte aligned
		offset = end + (4-chunkLen%4)%4
	}

	if len(jsonChunk) == 0 {
		return nil, nil, newErr("missing GLB JSON chunk")
	}
	return jsonChunk, binChunk, nil
}
