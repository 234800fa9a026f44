package scene

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/types"
)

func approxEq(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func TestSamplerInterpolation(t *testing.T) {
	type spec struct {
		interp Interpolation
		time   float32
		expY   float32
	}

	specs := []spec{
		{Linear, -1, 0},
		{Linear, 0, 0},
		{Linear, 1, 0.5},
		{Linear, 2, 1},
		{Linear, 5, 1},
		{Step, 1.5, 0},
		{Step, 2, 1},
		{CubicSpline, 0, 0},
		{CubicSpline, 1, 0.5},
		{CubicSpline, 3, 1},
	}

	for index, s := range specs {
		sampler := Sampler{
			Times:         []float32{0, 2},
			Values:        []types.Vec4{{0, 0, 0, 0}, {0, 1, 0, 0}},
			Interpolation: s.interp,
		}
		if s.interp == CubicSpline {
			// zero tangents
			sampler.Values = []types.Vec4{{}, {0, 0, 0, 0}, {}, {}, {0, 1, 0, 0}, {}}
		}

		v := sampler.Sample(s.time, Translation)
		if !approxEq(v[1], s.expY) {
			t.Fatalf("[spec %d] expected y at t=%f to be %f; got %f", index, s.time, s.expY, v[1])
		}
	}
}

func TestRotationSlerp(t *testing.T) {
	end := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math.Pi/2)
	sampler := Sampler{
		Times:  []float32{0, 1},
		Values: []types.Vec4{types.QuatIdent().XYZW(), end.XYZW()},
	}

	half := types.QuatXYZW(sampler.Sample(0.5, Rotation))
	exp := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math.Pi/4)
	if !approxEq(half.Dot(exp), 1) {
		t.Fatalf("expected half-way rotation %v; got %v", exp, half)
	}
}

func TestAnimationApply(t *testing.T) {
	sc := NewScene()
	sc.Nodes = append(sc.Nodes, NewNode("mover"))
	sc.Roots = append(sc.Roots, 0)
	sc.Animations = append(sc.Animations, &Animation{
		Name: "lift",
		Channels: []Channel{
			{
				Node: 0,
				Path: Translation,
				Sampler: Sampler{
					Times:  []float32{0, 4},
					Values: []types.Vec4{{0, 0, 0, 0}, {4, 0, 0, 0}},
				},
			},
		},
	})

	if d := sc.Duration(); d != 4 {
		t.Fatalf("expected scene duration to be 4; got %f", d)
	}

	sc.Animations[0].Apply(sc.Nodes, 1)
	if !approxEq(sc.Nodes[0].Translation[0], 1) {
		t.Fatalf("expected node translation x to be 1; got %f", sc.Nodes[0].Translation[0])
	}

	p := sc.Nodes[0].Local().MulPoint(types.XYZ(0, 0, 0))
	if !approxEq(p[0], 1) {
		t.Fatalf("expected local transform to translate origin to x=1; got %v", p)
	}
}
