package scene

import (
	"math"

	"github.com/ms-elk/rtcamp11/types"
)

// Rays closer than this distance to their origin are ignored.
const rayEpsilon float32 = 1e-4

// A world-space triangle.
type Triangle struct {
	V0     types.Vec3
	E1, E2 types.Vec3

	Normals [3]types.Vec3
	UVs     [3]types.Vec2

	// Unit geometric normal following the vertex winding.
	GeomNormal types.Vec3

	Material int32

	bbox   [2]types.Vec3
	center types.Vec3
}

// Create a triangle from three world-space vertices.
func NewTriangle(v0, v1, v2 types.Vec3, normals [3]types.Vec3, uvs [3]types.Vec2, material int32) Triangle {
	tri := Triangle{
		V0:       v0,
		E1:       v1.Sub(v0),
		E2:       v2.Sub(v0),
		Normals:  normals,
		UVs:      uvs,
		Material: material,
	}
	tri.GeomNormal = tri.E1.Cross(tri.E2).Normalize()
	tri.bbox = [2]types.Vec3{
		types.MinVec3(v0, types.MinVec3(v1, v2)),
		types.MaxVec3(v0, types.MaxVec3(v1, v2)),
	}
	tri.center = v0.Add(v1).Add(v2).Mul(1.0 / 3.0)
	return tri
}

// Get the triangle AABB.
func (tri *Triangle) BBox() [2]types.Vec3 {
	return tri.bbox
}

// Get the triangle centroid.
func (tri *Triangle) Center() types.Vec3 {
	return tri.center
}

// Intersect the triangle using the Moller-Trumbore algorithm. On a hit it
// returns the distance along the ray and the barycentric coordinates of the
// hit point relative to vertices 1 and 2.
func (tri *Triangle) Intersect(origin, dir types.Vec3, tMax float32) (t, u, v float32, hit bool) {
	p := dir.Cross(tri.E2)
	det := tri.E1.Dot(p)
	if det > -1e-9 && det < 1e-9 {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	s := origin.Sub(tri.V0)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(tri.E1)
	v = dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = tri.E2.Dot(q) * invDet
	if t <= rayEpsilon || t >= tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Get the interpolated shading normal at barycentric coordinates (u, v).
func (tri *Triangle) ShadingNormal(u, v float32) types.Vec3 {
	w := 1 - u - v
	n := tri.Normals[0].Mul(w).Add(tri.Normals[1].Mul(u)).Add(tri.Normals[2].Mul(v)).Normalize()
	if n.Dot(n) == 0 {
		return tri.GeomNormal
	}
	return n
}

// Get the interpolated texture coordinates at barycentric coordinates (u, v).
func (tri *Triangle) TexCoord(u, v float32) types.Vec2 {
	w := 1 - u - v
	return tri.UVs[0].Mul(w).Add(tri.UVs[1].Mul(u)).Add(tri.UVs[2].Mul(v))
}

// An empty bbox that grows with MinVec3/MaxVec3.
func emptyBBox() [2]types.Vec3 {
	return [2]types.Vec3{
		{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}
