package gltf

import (
	"errors"
	"fmt"
)

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

func inRange(idx, n int) bool {
	return idx >= 0 && idx < n
}

// Check checks that f is valid glTF as far as the scene readers are concerned.
func (f *GLTF) Check() error {
	if f.Asset.Version == "" {
		return newErr("missing asset.version")
	}
	if s := f.Scene; s != nil && !inRange(*s, len(f.Scenes)) {
		return newErr("invalid GLTF.Scene index")
	}
	for i := range f.Accessors {
		if err := f.Accessors[i].Check(f); err != nil {
			return fmt.Errorf("%w (accessor %d)", err, i)
		}
	}
	for i, bv := range f.BufferViews {
		if !inRange(bv.Buffer, len(f.Buffers)) {
			return fmt.Errorf("%w (bufferView %d)", newErr("invalid BufferView.Buffer index"), i)
		}
	}
	for i, mesh := range f.Meshes {
		for _, prim := range mesh.Primitives {
			if pos, ok := prim.Attributes[POSITION]; !ok || !inRange(pos, len(f.Accessors)) {
				return fmt.Errorf("%w (mesh %d)", newErr("missing or invalid POSITION attribute"), i)
			}
			if prim.Indices != nil && !inRange(*prim.Indices, len(f.Accessors)) {
				return fmt.Errorf("%w (mesh %d)", newErr("invalid Primitive.Indices index"), i)
			}
			if prim.Material != nil && !inRange(*prim.Material, len(f.Materials)) {
				return fmt.Errorf("%w (mesh %d)", newErr("invalid Primitive.Material index"), i)
			}
		}
	}
	for i, node := range f.Nodes {
		if node.Mesh != nil && !inRange(*node.Mesh, len(f.Meshes)) {
			return fmt.Errorf("%w (node %d)", newErr("invalid Node.Mesh index"), i)
		}
		for _, child := range node.Children {
			if !inRange(child, len(f.Nodes)) {
				return fmt.Errorf("%w (node %d)", newErr("invalid Node.Children index"), i)
			}
		}
	}
	for i, scene := range f.Scenes {
		for _, n := range scene.Nodes {
			if !inRange(n, len(f.Nodes)) {
				return fmt.Errorf("%w (scene %d)", newErr("invalid Scene.Nodes index"), i)
			}
		}
	}
	for i, anim := range f.Animations {
		for _, s := range anim.Samplers {
			if !inRange(s.Input, len(f.Accessors)) || !inRange(s.Output, len(f.Accessors)) {
				return fmt.Errorf("%w (animation %d)", newErr("invalid ASampler accessor index"), i)
			}
		}
		for _, c := range anim.Channels {
			if !inRange(c.Sampler, len(anim.Samplers)) {
				return fmt.Errorf("%w (animation %d)", newErr("invalid AChannel.Sampler index"), i)
			}
			if c.Target.Node != nil && !inRange(*c.Target.Node, len(f.Nodes)) {
				return fmt.Errorf("%w (animation %d)", newErr("invalid AChannel.Target.Node index"), i)
			}
		}
	}
	return nil
}

// Check checks that a is valid glTF.accessors' element.
func (a *Accessor) Check(gltf *GLTF) error {
	if a.BufferView != nil && !inRange(*a.BufferView, len(gltf.BufferViews)) {
		return newErr("invalid Accessor.BufferView index")
	}
	if a.ByteOffset < 0 {
		return newErr("invalid Accessor.BufferOffset value")
	}
	if componentSize(a.ComponentType) == 0 {
		return newErr("invalid Accessor.ComponentType value")
	}
	if a.Count < 1 {
		return newErr("invalid Accessor.Count value")
	}
	if componentCount(a.Type) == 0 {
		return newErr("invalid Accessor.Type value")
	}

	if s := a.Sparse; s != nil {
		if s.Count < 1 || s.Count > a.Count {
			return newErr("invalid Accessor.Sparse.Count value")
		}
		if !inRange(s.Indices.BufferView, len(gltf.BufferViews)) {
			return newErr("invalid Accessor.Sparse.Indices.BufferView index")
		}
		switch s.Indices.ComponentType {
		case UNSIGNED_BYTE, UNSIGNED_SHORT, UNSIGNED_INT:
		default:
			return newErr("invalid Accessor.Sparse.Indices.ComponentType value")
		}
		if !inRange(s.Values.BufferView, len(gltf.BufferViews)) {
			return newErr("invalid Accessor.Sparse.Values.BufferView index")
		}
	}
	return nil
}

func componentSize(componentType int) int {
	switch componentType {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	}
	return 0
}

func componentCount(typ string) int {
	switch typ {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4, MAT2:
		return 4
	case MAT3:
		return 9
	case MAT4:
		return 16
	}
	return 0
}
