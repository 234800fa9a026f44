package scene

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/asset/gltf/gltftest"
	"github.com/ms-elk/rtcamp11/asset/scene/reader"
	"github.com/ms-elk/rtcamp11/types"
)

func approxEq(a, b types.Vec3, eps float32) bool {
	d := a.Sub(b)
	return math32.Abs(d[0]) < eps && math32.Abs(d[1]) < eps && math32.Abs(d[2]) < eps
}

func loadTestScene(t *testing.T, accel Accelerator) *Scene {
	path, err := gltftest.WriteScene(t.TempDir(), "scene.gltf")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := reader.ReadScene(path, reader.Gltf)
	if err != nil {
		t.Fatal(err)
	}
	return New(raw, accel)
}

func TestUpdateAnimatesGeometry(t *testing.T) {
	type spec struct {
		time   float32
		rayY   float32
		expHit bool
	}
	specs := []spec{
		{0, 1, true},
		{2, 1, false},
		{2, 2, true},
		// clamped to the end of the animation
		{10, 2, true},
		{1, 1.5, true},
	}

	for _, accel := range []Accelerator{Bvh, WideBvh} {
		sc := loadTestScene(t, accel)
		for index, s := range specs {
			if err := sc.Update(s.time); err != nil {
				t.Fatalf("[%s spec %d] %v", accel, index, err)
			}
			if len(sc.Triangles) != gltftest.TriangleCount {
				t.Fatalf("[%s spec %d] expected %d triangles; got %d", accel, index, gltftest.TriangleCount, len(sc.Triangles))
			}

			hit, ok := sc.Intersect(types.XYZ(0, s.rayY, -5), types.XYZ(0, 0, 1), math.MaxFloat32)
			if ok != s.expHit {
				t.Fatalf("[%s spec %d] expected hit to be %t; got %t", accel, index, s.expHit, ok)
			}
			if !ok {
				continue
			}
			if math32.Abs(hit.T-5) > 1e-3 {
				t.Fatalf("[%s spec %d] expected hit distance 5; got %f", accel, index, hit.T)
			}
			if hit.Material == nil || !hit.Material.IsEmissive() {
				t.Fatalf("[%s spec %d] expected to hit the emissive triangle", accel, index)
			}
			if !approxEq(hit.Normal, types.XYZ(0, 0, -1), 1e-3) {
				t.Fatalf("[%s spec %d] expected normal to face the ray; got %v", accel, index, hit.Normal)
			}
		}
	}
}

func TestFloorOcclusion(t *testing.T) {
	sc := loadTestScene(t, WideBvh)
	if err := sc.Update(0); err != nil {
		t.Fatal(err)
	}

	hit, ok := sc.Intersect(types.XYZ(2, 3, 2), types.XYZ(0, -1, 0), math.MaxFloat32)
	if !ok || math32.Abs(hit.T-3) > 1e-3 {
		t.Fatalf("expected to hit the floor at distance 3; got %v (%t)", hit.T, ok)
	}
	if !approxEq(hit.Normal, types.XYZ(0, 1, 0), 1e-3) {
		t.Fatalf("expected floor normal to face up; got %v", hit.Normal)
	}

	if !sc.Occluded(types.XYZ(2, 3, 2), types.XYZ(0, -1, 0), 10) {
		t.Fatal("expected floor to occlude a downward segment")
	}
	if sc.Occluded(types.XYZ(2, 3, 2), types.XYZ(0, -1, 0), 2) {
		t.Fatal("expected a short segment above the floor to be unoccluded")
	}
}

func TestCameraFrustrum(t *testing.T) {
	c := NewCamera()
	c.SetLookAt(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0), math.Pi/2, 1)

	if dir := c.RayDir(0.5, 0.5); !approxEq(dir, types.XYZ(0, 0, -1), 1e-4) {
		t.Fatalf("expected center ray to point down -Z; got %v", dir)
	}

	expTL := types.XYZ(-1, 1, -1).Normalize()
	if dir := c.RayDir(0, 0); !approxEq(dir, expTL, 1e-4) {
		t.Fatalf("expected top-left ray %v; got %v", expTL, dir)
	}
}

func TestDiskLight(t *testing.T) {
	l := NewDiskLight(150, types.XYZ(1, 1, 1), types.XYZ(0, 2.5, 0), types.XYZ(0, 0, 0), 0.1)

	if !approxEq(l.Normal(), types.XYZ(0, -1, 0), 1e-6) {
		t.Fatalf("expected light to face down; got %v", l.Normal())
	}

	// Radiance integrated over the hemisphere and area gives back the power
	power := l.Radiance().Mul(math.Pi * l.Area())
	if !approxEq(power, types.XYZ(150, 150, 150), 1e-2) {
		t.Fatalf("expected emitted power 150; got %v", power)
	}

	for _, u := range [][2]float32{{0, 0}, {0.99, 0.25}, {0.5, 0.75}} {
		p := l.SamplePoint(u[0], u[1])
		if math32.Abs(p[1]-2.5) > 1e-5 || p.Sub(l.Position).Len() > l.Radius+1e-5 {
			t.Fatalf("expected sample %v to lie on the disk", p)
		}
	}
}

func TestParseAccelerator(t *testing.T) {
	if a, err := ParseAccelerator("wide-bvh"); err != nil || a != WideBvh {
		t.Fatalf("expected wide-bvh to parse; got %v, %v", a, err)
	}
	if _, err := ParseAccelerator("kd-tree"); err == nil {
		t.Fatal("expected unknown accelerator to be rejected")
	}
}

func TestLightSampler(t *testing.T) {
	dim := NewDiskLight(10, types.XYZ(1, 1, 1), types.XYZ(0, 1, 0), types.XYZ(0, 0, 0), 1)
	bright := NewDiskLight(30, types.XYZ(1, 1, 1), types.XYZ(0, 1, 0), types.XYZ(0, 0, 0), 1)

	type spec struct {
		kind     LightSamplerKind
		u        float32
		expLight *DiskLight
		expPdf   float32
	}
	specs := []spec{
		{UniformLightSampler, 0.1, dim, 0.5},
		{UniformLightSampler, 0.6, bright, 0.5},
		{PowerLightSampler, 0.2, dim, 0.25},
		{PowerLightSampler, 0.3, bright, 0.75},
	}

	for index, s := range specs {
		ls, err := NewLightSampler(s.kind, []*DiskLight{dim, bright})
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		light, pdf := ls.Sample(s.u)
		if light != s.expLight || math32.Abs(pdf-s.expPdf) > 1e-5 {
			t.Fatalf("[spec %d] expected light with pdf %f; got pdf %f", index, s.expPdf, pdf)
		}
	}

	empty, _ := NewLightSampler(UniformLightSampler, nil)
	if light, _ := empty.Sample(0.5); light != nil {
		t.Fatal("expected empty sampler to return no light")
	}
}
