package scene

import (
	"fmt"

	"github.com/ms-elk/rtcamp11/types"
)

// Stores the ray directions at the four corners of the camera frustrum. It is
// used as a shortcut for generating per pixel rays via interpolation of the
// corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// The camera type controls the scene camera.
type Camera struct {
	Eye    types.Vec3
	Target types.Vec3
	Up     types.Vec3

	// Vertical field of view in radians.
	FOVY   float32
	Aspect float32

	ViewMat  types.Mat4
	ProjMat  types.Mat4
	Frustrum Frustrum
}

// Create a camera at the origin looking down the -Z axis.
func NewCamera() *Camera {
	c := &Camera{}
	c.SetLookAt(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0), 1, 1)
	return c
}

// Position the camera and set up its projection. The fovy angle is
// specified in radians.
func (c *Camera) SetLookAt(eye, target, up types.Vec3, fovy, aspect float32) {
	c.Eye = eye
	c.Target = target
	c.Up = up
	c.FOVY = fovy
	c.Aspect = aspect

	c.ProjMat = types.Perspective4(fovy, aspect, 0.1, 1000)
	c.ViewMat = types.LookAtV(eye, target, up)
	c.updateFrustrum()
}

func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat).Inv()
}

// Generate a ray vector for each corner of the camera frustrum by
// multiplying clip space vectors for each corner with the inv proj/view
// matrix, applying perspective and subtracting the camera eye position.
func (c *Camera) updateFrustrum() {
	invProjViewMat := c.InvViewProjMat()
	corners := [4]types.Vec4{
		types.XYZW(-1, 1, -1, 1),
		types.XYZW(1, 1, -1, 1),
		types.XYZW(-1, -1, -1, 1),
		types.XYZW(1, -1, -1, 1),
	}
	for i, corner := range corners {
		v := invProjViewMat.Mul4x1(corner)
		c.Frustrum[i] = v.Mul(1.0 / v[3]).Vec3().Sub(c.Eye)
	}
}

// Get the normalized direction of the primary ray through the image plane
// position (u, v); (0, 0) is the top-left corner and (1, 1) the bottom-right.
func (c *Camera) RayDir(u, v float32) types.Vec3 {
	top := c.Frustrum[0].Lerp(c.Frustrum[1], u)
	bottom := c.Frustrum[2].Lerp(c.Frustrum[3], u)
	return top.Lerp(bottom, v).Normalize()
}
