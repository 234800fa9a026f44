// Package scene maintains the world-space state of an animated scene:
// the flattened triangle list, its acceleration structure and the lights.
package scene

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	assetscene "github.com/ms-elk/rtcamp11/asset/scene"
	"github.com/ms-elk/rtcamp11/log"
	"github.com/ms-elk/rtcamp11/scene/bvh"
	"github.com/ms-elk/rtcamp11/types"
)

// Maximum number of triangles stored in a BVH leaf.
const maxLeafTriangles = 4

// The acceleration structure used for ray queries.
type Accelerator uint8

const (
	Bvh Accelerator = iota
	WideBvh
)

func (a Accelerator) String() string {
	switch a {
	case Bvh:
		return "bvh"
	case WideBvh:
		return "wide-bvh"
	}
	return "unknown"
}

// Parse an accelerator name.
func ParseAccelerator(name string) (Accelerator, error) {
	switch strings.ToLower(name) {
	case "bvh":
		return Bvh, nil
	case "wide-bvh", "widebvh":
		return WideBvh, nil
	}
	return 0, fmt.Errorf("scene: unknown accelerator %q", name)
}

// A ray/surface intersection.
type Hit struct {
	T     float32
	Point types.Vec3

	// Shading and geometric normals, flipped to face the incoming ray.
	Normal     types.Vec3
	GeomNormal types.Vec3

	UV       types.Vec2
	Material *Material
}

// The world-space scene.
type Scene struct {
	logger log.Logger

	raw         *assetscene.Scene
	accelerator Accelerator

	Materials []*Material
	Triangles []Triangle

	tree *bvh.Tree

	// The scene time of the last update.
	Time float32
}

// Create a scene from a parsed scene file. The scene must be updated before
// it can be intersected.
func New(raw *assetscene.Scene, accelerator Accelerator) *Scene {
	s := &Scene{
		logger:      log.New("scene"),
		raw:         raw,
		accelerator: accelerator,
		Materials:   make([]*Material, len(raw.Materials)),
	}
	for i, m := range raw.Materials {
		s.Materials[i] = &Material{
			Name:         m.Name,
			BaseColor:    m.BaseColor,
			BaseColorTex: m.BaseColorTex,
			Emissive:     m.Emissive,
		}
	}
	return s
}

// Get the length of the scene animations in seconds.
func (s *Scene) Duration() float32 {
	return s.raw.Duration()
}

// Get the accelerator kind.
func (s *Scene) Accelerator() Accelerator {
	return s.accelerator
}

// Evaluate all animations at time t, flatten the node hierarchy into
// world-space triangles and rebuild the acceleration structure. Times
// outside the animation range are clamped.
func (s *Scene) Update(t float32) error {
	start := time.Now()

	if t < 0 {
		t = 0
	}
	if d := s.raw.Duration(); t > d {
		t = d
	}
	for _, anim := range s.raw.Animations {
		anim.Apply(s.raw.Nodes, t)
	}

	triangles := s.Triangles[:0]
	visiting := make([]bool, len(s.raw.Nodes))
	var visit func(index int, parent types.Mat4) error
	visit = func(index int, parent types.Mat4) error {
		if index < 0 || index >= len(s.raw.Nodes) {
			return fmt.Errorf("scene: invalid node index %d", index)
		}
		if visiting[index] {
			return fmt.Errorf("scene: node %d is part of a cycle", index)
		}
		visiting[index] = true
		defer func() { visiting[index] = false }()

		node := s.raw.Nodes[index]
		world := parent.Mul4(node.Local())
		if node.Mesh >= 0 {
			triangles = appendMesh(triangles, s.raw.Meshes[node.Mesh], world)
		}
		for _, child := range node.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range s.raw.Roots {
		if err := visit(root, types.Ident4()); err != nil {
			return err
		}
	}
	s.Triangles = triangles

	volumes := make([]bvh.BoundedVolume, len(s.Triangles))
	for i := range s.Triangles {
		volumes[i] = &s.Triangles[i]
	}
	s.tree = bvh.NewTree(volumes, maxLeafTriangles, s.accelerator == WideBvh)
	s.Time = t

	s.logger.Debugf("updated scene at t=%.3f: %d triangles in %d ms", t, len(s.Triangles), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Transform mesh primitives to world space and append them to list.
func appendMesh(list []Triangle, mesh *assetscene.Mesh, world types.Mat4) []Triangle {
	normalMat := world.NormalMat()
	for _, prim := range mesh.Primitives {
		var normals [3]types.Vec3
		for k := range normals {
			normals[k] = normalMat.Mul3x1(prim.Normals[k]).Normalize()
		}
		list = append(list, NewTriangle(
			world.MulPoint(prim.Vertices[0]),
			world.MulPoint(prim.Vertices[1]),
			world.MulPoint(prim.Vertices[2]),
			normals,
			prim.UVs,
			int32(prim.MaterialIndex),
		))
	}
	return list
}

// Get the number of bytes used by the world-space triangles and the
// acceleration structure.
func (s *Scene) Footprint() uint64 {
	size := uint64(cap(s.Triangles)) * uint64(unsafe.Sizeof(Triangle{}))
	if s.tree != nil {
		size += s.tree.Footprint()
	}
	return size
}

// Get the world-space bounds of the scene geometry.
func (s *Scene) BBox() [2]types.Vec3 {
	bbox := emptyBBox()
	for i := range s.Triangles {
		tb := s.Triangles[i].BBox()
		bbox[0] = types.MinVec3(bbox[0], tb[0])
		bbox[1] = types.MaxVec3(bbox[1], tb[1])
	}
	return bbox
}

// Find the closest intersection along a ray within (0, tMax).
func (s *Scene) Intersect(origin, dir types.Vec3, tMax float32) (Hit, bool) {
	if s.tree == nil {
		return Hit{}, false
	}

	closest := int32(-1)
	var hitU, hitV float32
	s.tree.Traverse(origin, dir, tMax, func(item int32, tMax float32) float32 {
		if t, u, v, hit := s.Triangles[item].Intersect(origin, dir, tMax); hit {
			closest, hitU, hitV = item, u, v
			return t
		}
		return tMax
	})
	if closest < 0 {
		return Hit{}, false
	}

	tri := &s.Triangles[closest]
	t, _, _, _ := tri.Intersect(origin, dir, tMax)
	hit := Hit{
		T:          t,
		Point:      origin.Add(dir.Mul(t)),
		Normal:     tri.ShadingNormal(hitU, hitV),
		GeomNormal: tri.GeomNormal,
		UV:         tri.TexCoord(hitU, hitV),
	}
	if tri.Material >= 0 && int(tri.Material) < len(s.Materials) {
		hit.Material = s.Materials[tri.Material]
	}

	if hit.GeomNormal.Dot(dir) > 0 {
		hit.GeomNormal = hit.GeomNormal.Mul(-1)
	}
	if hit.Normal.Dot(hit.GeomNormal) < 0 {
		hit.Normal = hit.Normal.Mul(-1)
	}
	return hit, true
}

// Returns true if any surface blocks the segment between origin and
// origin + dir * dist.
func (s *Scene) Occluded(origin, dir types.Vec3, dist float32) bool {
	if s.tree == nil {
		return false
	}

	occluded := false
	s.tree.Traverse(origin, dir, dist, func(item int32, tMax float32) float32 {
		if _, _, _, hit := s.Triangles[item].Intersect(origin, dir, tMax); hit {
			occluded = true
			return -1
		}
		return tMax
	})
	return occluded
}
