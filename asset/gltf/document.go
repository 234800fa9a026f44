package gltf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/types"
)

// A Document is a decoded glTF together with the payloads of its buffers.
type Document struct {
	GLTF

	// Buffer payloads indexed like GLTF.Buffers.
	BufferData [][]byte
}

// Load a .gltf or .glb document from a resource. External buffers are
// resolved relative to res.
func Load(res *asset.Resource) (*Document, error) {
	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}

	jsonChunk := data
	var binChunk []byte
	if IsGLB(data) {
		jsonChunk, binChunk, err = SplitGLB(data)
		if err != nil {
			return nil, err
		}
	}

	g, err := Decode(jsonChunk)
	if err != nil {
		return nil, err
	}
	if err = g.Check(); err != nil {
		return nil, err
	}

	doc := &Document{
		GLTF:       *g,
		BufferData: make([][]byte, len(g.Buffers)),
	}

	for index, buf := range g.Buffers {
		var payload []byte
		switch {
		case buf.URI == "" && index == 0 && binChunk != nil:
			payload = binChunk
		case buf.URI == "":
			return nil, fmt.Errorf("gltf: buffer %d has no uri", index)
		default:
			bufRes, err := asset.NewResource(buf.URI, res)
			if err != nil {
				return nil, fmt.Errorf("gltf: could not open buffer %d: %w", index, err)
			}
			if payload, err = bufRes.ReadAll(); err != nil {
				return nil, err
			}
		}

		if len(payload) < buf.ByteLength {
			return nil, fmt.Errorf("gltf: buffer %d is %d bytes; expected at least %d", index, len(payload), buf.ByteLength)
		}
		doc.BufferData[index] = payload
	}

	return doc, nil
}

// Get the bytes referenced by a buffer view.
func (d *Document) bufferView(index int) ([]byte, int, error) {
	if !inRange(index, len(d.BufferViews)) {
		return nil, 0, fmt.Errorf("gltf: invalid buffer view %d", index)
	}
	bv := d.BufferViews[index]
	data := d.BufferData[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, 0, fmt.Errorf("gltf: buffer view %d out of buffer bounds", index)
	}
	return data[bv.ByteOffset:end], bv.ByteStride, nil
}

// Read a single component and return its raw (non-normalized) value.
func readComponent(data []byte, componentType int) float64 {
	switch componentType {
	case BYTE:
		return float64(int8(data[0]))
	case UNSIGNED_BYTE:
		return float64(data[0])
	case SHORT:
		return float64(int16(binary.LittleEndian.Uint16(data)))
	case UNSIGNED_SHORT:
		return float64(binary.LittleEndian.Uint16(data))
	case UNSIGNED_INT:
		return float64(binary.LittleEndian.Uint32(data))
	case FLOAT:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	}
	return 0
}

// Map a normalized integer component to [0, 1] or [-1, 1].
func normalize(v float64, componentType int) float64 {
	switch componentType {
	case BYTE:
		return math.Max(v/127.0, -1)
	case UNSIGNED_BYTE:
		return v / 255.0
	case SHORT:
		return math.Max(v/32767.0, -1)
	case UNSIGNED_SHORT:
		return v / 65535.0
	}
	return v
}

// Read tightly packed or strided elements into out.
func readElements(out []float64, view []byte, offset, stride, count, comps, componentType int) error {
	compSize := componentSize(componentType)
	elemSize := comps * compSize
	if stride == 0 {
		stride = elemSize
	}

	for i := 0; i < count; i++ {
		base := offset + i*stride
		if base < 0 || base+elemSize > len(view) {
			return fmt.Errorf("gltf: accessor element %d out of buffer view bounds", i)
		}
		for c := 0; c < comps; c++ {
			out[i*comps+c] = readComponent(view[base+c*compSize:], componentType)
		}
	}
	return nil
}

// Read an accessor as a flat list of values. The second return value is the
// number of components per element. Normalized integer accessors are mapped
// to floating point ranges.
func (d *Document) ReadAccessor(index int) ([]float64, int, error) {
	if !inRange(index, len(d.Accessors)) {
		return nil, 0, fmt.Errorf("gltf: invalid accessor %d", index)
	}
	acc := d.Accessors[index]
	comps := componentCount(acc.Type)
	out := make([]float64, acc.Count*comps)

	if acc.BufferView != nil {
		view, stride, err := d.bufferView(*acc.BufferView)
		if err != nil {
			return nil, 0, err
		}
		if err = readElements(out, view, acc.ByteOffset, stride, acc.Count, comps, acc.ComponentType); err != nil {
			return nil, 0, fmt.Errorf("%w (accessor %d)", err, index)
		}
	}

	if s := acc.Sparse; s != nil {
		indices := make([]float64, s.Count)
		view, _, err := d.bufferView(s.Indices.BufferView)
		if err != nil {
			return nil, 0, err
		}
		if err = readElements(indices, view, s.Indices.ByteOffset, 0, s.Count, 1, s.Indices.ComponentType); err != nil {
			return nil, 0, fmt.Errorf("%w (sparse indices of accessor %d)", err, index)
		}

		values := make([]float64, s.Count*comps)
		if view, _, err = d.bufferView(s.Values.BufferView); err != nil {
			return nil, 0, err
		}
		if err = readElements(values, view, s.Values.ByteOffset, 0, s.Count, comps, acc.ComponentType); err != nil {
			return nil, 0, fmt.Errorf("%w (sparse values of accessor %d)", err, index)
		}

		for i, target := range indices {
			t := int(target)
			if t >= acc.Count {
				return nil, 0, fmt.Errorf("gltf: sparse index %d out of range (accessor %d)", t, index)
			}
			copy(out[t*comps:(t+1)*comps], values[i*comps:(i+1)*comps])
		}
	}

	if acc.Normalized {
		for i := range out {
			out[i] = normalize(out[i], acc.ComponentType)
		}
	}

	return out, comps, nil
}

// Read an accessor into a list of float32 scalars.
func (d *Document) ReadScalars(index int) ([]float32, error) {
	values, comps, err := d.ReadAccessor(index)
	if err != nil {
		return nil, err
	}
	if comps != 1 {
		return nil, fmt.Errorf("gltf: accessor %d is not a SCALAR accessor", index)
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}

// Read an accessor into a list of 2 component vectors.
func (d *Document) ReadVec2(index int) ([]types.Vec2, error) {
	values, comps, err := d.ReadAccessor(index)
	if err != nil {
		return nil, err
	}
	if comps != 2 {
		return nil, fmt.Errorf("gltf: accessor %d is not a VEC2 accessor", index)
	}
	out := make([]types.Vec2, len(values)/2)
	for i := range out {
		out[i] = types.XY(float32(values[i*2]), float32(values[i*2+1]))
	}
	return out, nil
}

// Read an accessor into a list of 3 component vectors.
func (d *Document) ReadVec3(index int) ([]types.Vec3, error) {
	values, comps, err := d.ReadAccessor(index)
	if err != nil {
		return nil, err
	}
	if comps != 3 {
		return nil, fmt.Errorf("gltf: accessor %d is not a VEC3 accessor", index)
	}
	out := make([]types.Vec3, len(values)/3)
	for i := range out {
		out[i] = types.XYZ(float32(values[i*3]), float32(values[i*3+1]), float32(values[i*3+2]))
	}
	return out, nil
}

// Read an accessor into a list of 4 component vectors.
func (d *Document) ReadVec4(index int) ([]types.Vec4, error) {
	values, comps, err := d.ReadAccessor(index)
	if err != nil {
		return nil, err
	}
	if comps != 4 {
		return nil, fmt.Errorf("gltf: accessor %d is not a VEC4 accessor", index)
	}
	out := make([]types.Vec4, len(values)/4)
	for i := range out {
		out[i] = types.XYZW(float32(values[i*4]), float32(values[i*4+1]), float32(values[i*4+2]), float32(values[i*4+3]))
	}
	return out, nil
}

// Read an index accessor.
func (d *Document) ReadIndices(index int) ([]uint32, error) {
	if !inRange(index, len(d.Accessors)) {
		return nil, fmt.Errorf("gltf: invalid accessor %d", index)
	}
	switch d.Accessors[index].ComponentType {
	case UNSIGNED_BYTE, UNSIGNED_SHORT, UNSIGNED_INT:
	default:
		return nil, fmt.Errorf("gltf: accessor %d has a non-integer component type", index)
	}

	values, comps, err := d.ReadAccessor(index)
	if err != nil {
		return nil, err
	}
	if comps != 1 {
		return nil, fmt.Errorf("gltf: accessor %d is not a SCALAR accessor", index)
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out, nil
}

// Get the encoded payload of an image, either from a buffer view or its uri.
func (d *Document) ImageData(index int, relTo *asset.Resource) ([]byte, error) {
	if !inRange(index, len(d.Images)) {
		return nil, fmt.Errorf("gltf: invalid image %d", index)
	}
	img := d.Images[index]
	if img.BufferView != nil {
		view, _, err := d.bufferView(*img.BufferView)
		return view, err
	}

	res, err := asset.NewResource(img.URI, relTo)
	if err != nil {
		return nil, fmt.Errorf("gltf: could not open image %d: %w", index, err)
	}
	return res.ReadAll()
}
