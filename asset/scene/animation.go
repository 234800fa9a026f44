package scene

import (
	"sort"

	"github.com/ms-elk/rtcamp11/types"
)

// The node property targeted by an animation channel.
type Path uint8

const (
	Translation Path = iota
	Rotation
	Scale
)

func (p Path) String() string {
	switch p {
	case Translation:
		return "translation"
	case Rotation:
		return "rotation"
	case Scale:
		return "scale"
	}
	return "unknown"
}

// Keyframe interpolation modes.
type Interpolation uint8

const (
	Linear Interpolation = iota
	Step
	CubicSpline
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "LINEAR"
	case Step:
		return "STEP"
	case CubicSpline:
		return "CUBICSPLINE"
	}
	return "unknown"
}

// A keyframe track. Translation and scale values use the xyz components;
// rotation values are quaternions stored as xyzw. CubicSpline tracks store
// three values per keyframe: in-tangent, value, out-tangent.
type Sampler struct {
	Times         []float32
	Values        []types.Vec4
	Interpolation Interpolation
}

// An animation channel drives a single node property.
type Channel struct {
	Node    int
	Path    Path
	Sampler Sampler
}

// A named set of channels.
type Animation struct {
	Name     string
	Channels []Channel
}

// Get the time of the last keyframe across all channels.
func (a *Animation) Duration() float32 {
	var d float32
	for _, ch := range a.Channels {
		if n := len(ch.Sampler.Times); n > 0 && ch.Sampler.Times[n-1] > d {
			d = ch.Sampler.Times[n-1]
		}
	}
	return d
}

// Get the keyframe value at index k.
func (s *Sampler) value(k int) types.Vec4 {
	if s.Interpolation == CubicSpline {
		return s.Values[k*3+1]
	}
	return s.Values[k]
}

// Evaluate the track at time t. Times outside the keyframe range are
// clamped to the first or last keyframe.
func (s *Sampler) Sample(t float32, path Path) types.Vec4 {
	n := len(s.Times)
	switch {
	case n == 0:
		return types.Vec4{}
	case t <= s.Times[0] || n == 1:
		return s.value(0)
	case t >= s.Times[n-1]:
		return s.value(n - 1)
	}

	// Index of the first keyframe after t
	next := sort.Search(n, func(i int) bool { return s.Times[i] > t })
	prev := next - 1
	dt := s.Times[next] - s.Times[prev]
	u := (t - s.Times[prev]) / dt

	switch s.Interpolation {
	case Step:
		return s.value(prev)
	case CubicSpline:
		p0, m0 := s.Values[prev*3+1], s.Values[prev*3+2].Mul(dt)
		p1, m1 := s.Values[next*3+1], s.Values[next*3].Mul(dt)
		u2 := u * u
		u3 := u2 * u
		v := p0.Mul(2*u3 - 3*u2 + 1).
			Add(m0.Mul(u3 - 2*u2 + u)).
			Add(p1.Mul(-2*u3 + 3*u2)).
			Add(m1.Mul(u3 - u2))
		if path == Rotation {
			v = v.Normalize()
		}
		return v
	}

	if path == Rotation {
		return types.QuatXYZW(s.value(prev)).Slerp(types.QuatXYZW(s.value(next)), u).XYZW()
	}
	a, b := s.value(prev), s.value(next)
	return a.Add(b.Sub(a).Mul(u))
}

// Apply all channels of the animation at time t to the scene nodes.
func (a *Animation) Apply(nodes []*Node, t float32) {
	for i := range a.Channels {
		ch := &a.Channels[i]
		if ch.Node < 0 || ch.Node >= len(nodes) {
			continue
		}
		node := nodes[ch.Node]
		v := ch.Sampler.Sample(t, ch.Path)
		switch ch.Path {
		case Translation:
			node.Translation = v.Vec3()
		case Rotation:
			node.Rotation = types.QuatXYZW(v).Normalize()
		case Scale:
			node.Scale = v.Vec3()
		}
		node.Matrix = nil
	}
}
