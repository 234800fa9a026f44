package scene

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/types"
)

// A one-sided disk area light facing its target.
type DiskLight struct {
	// Emitted power in watts scaled by Color.
	Power float32
	Color types.Vec3

	Position types.Vec3
	Target   types.Vec3
	Radius   float32

	normal   types.Vec3
	tangent  types.Vec3
	binormal types.Vec3
}

// Create a disk light centered at pos and facing target.
func NewDiskLight(power float32, color, pos, target types.Vec3, radius float32) *DiskLight {
	l := &DiskLight{
		Power:    power,
		Color:    color,
		Position: pos,
		Target:   target,
		Radius:   radius,
	}
	l.normal = target.Sub(pos).Normalize()
	l.tangent, l.binormal = orthonormalBasis(l.normal)
	return l
}

// Build two unit vectors perpendicular to n.
func orthonormalBasis(n types.Vec3) (types.Vec3, types.Vec3) {
	helper := types.XYZ(1, 0, 0)
	if math32.Abs(n[0]) > 0.9 {
		helper = types.XYZ(0, 1, 0)
	}
	t := helper.Cross(n).Normalize()
	return t, n.Cross(t)
}

// Get the emitting side normal.
func (l *DiskLight) Normal() types.Vec3 {
	return l.normal
}

// Get the disk area.
func (l *DiskLight) Area() float32 {
	return math.Pi * l.Radius * l.Radius
}

// Get the emitted radiance. A Lambertian emitter with area A and radiance L
// emits L * pi * A watts.
func (l *DiskLight) Radiance() types.Vec3 {
	area := l.Area()
	if area == 0 {
		return types.Vec3{}
	}
	return l.Color.Mul(l.Power / (math.Pi * area))
}

// Get the light's contribution weight for power based light selection.
func (l *DiskLight) Flux() float32 {
	return l.Power * (0.2126*l.Color[0] + 0.7152*l.Color[1] + 0.0722*l.Color[2])
}

// Map two uniform random numbers in [0, 1) to a point on the disk.
// The sample pdf with respect to area is 1 / Area().
func (l *DiskLight) SamplePoint(u1, u2 float32) types.Vec3 {
	r := l.Radius * math32.Sqrt(u1)
	sin, cos := math32.Sincos(2 * math.Pi * u2)
	return l.Position.Add(l.tangent.Mul(r * cos)).Add(l.binormal.Mul(r * sin))
}
