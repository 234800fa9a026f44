package types

import (
	"math"
	"testing"
)

func approxEq(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestMat4Inv(t *testing.T) {
	m := TRS4(XYZ(1, 2, 3), QuatFromAxisAngle(XYZ(0, 1, 0), 0.7), XYZ(2, 2, 2))
	id := m.Mul4(m.Inv())
	exp := Ident4()
	for i := range id {
		if !approxEq(id[i], exp[i]) {
			t.Fatalf("expected M * inv(M) to be identity; got %v", id)
		}
	}
}

func TestTRS4(t *testing.T) {
	m := TRS4(XYZ(1, 0, 0), QuatFromAxisAngle(XYZ(0, 0, 1), math.Pi/2), XYZ(2, 1, 1))

	// scale (1,0,0) -> (2,0,0); rotate 90deg around Z -> (0,2,0); translate -> (1,2,0)
	p := m.MulPoint(XYZ(1, 0, 0))
	exp := XYZ(1, 2, 0)
	for i := 0; i < 3; i++ {
		if !approxEq(p[i], exp[i]) {
			t.Fatalf("expected transformed point to be %v; got %v", exp, p)
		}
	}

	// directions ignore translation
	d := m.MulDir(XYZ(1, 0, 0))
	exp = XYZ(0, 2, 0)
	for i := 0; i < 3; i++ {
		if !approxEq(d[i], exp[i]) {
			t.Fatalf("expected transformed direction to be %v; got %v", exp, d)
		}
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdent()
	q2 := QuatFromAxisAngle(XYZ(0, 1, 0), math.Pi/2)

	type spec struct {
		t      float32
		expect Quat
	}
	specs := []spec{
		{0, q1},
		{1, q2},
		{0.5, QuatFromAxisAngle(XYZ(0, 1, 0), math.Pi/4)},
	}

	for index, s := range specs {
		out := q1.Slerp(q2, s.t)
		if !approxEq(out.Dot(s.expect), 1) {
			t.Fatalf("[spec %d] expected slerp(%f) to be %v; got %v", index, s.t, s.expect, out)
		}
	}
}

func TestNormalizeDegenerateVector(t *testing.T) {
	if v := (Vec3{}).Normalize(); v != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", v)
	}
	if v := XYZ(0, 3, 4).Normalize(); !approxEq(v.Len(), 1) {
		t.Fatalf("expected unit length; got %f", v.Len())
	}
}
