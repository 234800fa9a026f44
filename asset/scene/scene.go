// Package scene defines the in-memory representation of a loaded scene file
// before it is flattened into world-space geometry by the renderer.
package scene

import (
	"math"

	"github.com/ms-elk/rtcamp11/asset/texture"
	"github.com/ms-elk/rtcamp11/types"
)

// A surface material.
type Material struct {
	Name string

	// Linear base color and the optional texture modulating it.
	BaseColor    types.Vec3
	BaseColorTex *texture.Texture

	// Emitted radiance.
	Emissive types.Vec3
}

// A triangle primitive in mesh space.
type Primitive struct {
	Vertices      [3]types.Vec3
	Normals       [3]types.Vec3
	UVs           [3]types.Vec2
	MaterialIndex int

	// False if the normals were generated from the vertex winding.
	HasNormals bool
}

// A mesh is constructed by a list of primitives.
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// Get mesh bounding box.
func (m *Mesh) BBox() [2]types.Vec3 {
	bbox := [2]types.Vec3{
		{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for _, prim := range m.Primitives {
		for _, v := range prim.Vertices {
			bbox[0] = types.MinVec3(bbox[0], v)
			bbox[1] = types.MaxVec3(bbox[1], v)
		}
	}
	return bbox
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:       name,
		Primitives: make([]*Primitive, 0),
	}
}

// A node in the scene hierarchy. Its local transform is either an explicit
// matrix or the composition T * R * S.
type Node struct {
	Name string

	// Index of the mesh attached to this node or -1.
	Mesh int

	Children []int

	Translation types.Vec3
	Rotation    types.Quat
	Scale       types.Vec3

	// If set, overrides the TRS properties. Animated nodes never use it.
	Matrix *types.Mat4
}

// Create a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Mesh:     -1,
		Rotation: types.QuatIdent(),
		Scale:    types.XYZ(1, 1, 1),
	}
}

// Get the local transformation matrix for the node.
func (n *Node) Local() types.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return types.TRS4(n.Translation, n.Rotation, n.Scale)
}

// The scene contains all elements produced by a scene reader.
type Scene struct {
	Meshes    []*Mesh
	Nodes     []*Node
	Materials []*Material

	// Indices of the nodes at the top of the hierarchy.
	Roots []int

	Animations []*Animation
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes:     make([]*Mesh, 0),
		Nodes:      make([]*Node, 0),
		Materials:  make([]*Material, 0),
		Roots:      make([]int, 0),
		Animations: make([]*Animation, 0),
	}
}

// Get the length in seconds of the longest animation in the scene.
func (s *Scene) Duration() float32 {
	var d float32
	for _, anim := range s.Animations {
		if ad := anim.Duration(); ad > d {
			d = ad
		}
	}
	return d
}

// Count the primitives instantiated by the node hierarchy.
func (s *Scene) PrimitiveCount() int {
	count := 0
	var visit func(int)
	visit = func(index int) {
		node := s.Nodes[index]
		if node.Mesh >= 0 {
			count += len(s.Meshes[node.Mesh].Primitives)
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	for _, root := range s.Roots {
		visit(root)
	}
	return count
}
