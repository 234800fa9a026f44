package cpu

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/scene"
	"github.com/ms-elk/rtcamp11/tracer"
	"github.com/ms-elk/rtcamp11/types"
)

const (
	// Offset applied along the geometric normal when spawning secondary rays.
	shadowEpsilon float32 = 1e-3

	// Bounce count after which russian roulette starts terminating paths.
	rouletteDepth = 3
)

var defaultAlbedo = types.XYZ(0.8, 0.8, 0.8)

// A unidirectional path tracer for diffuse surfaces with next event
// estimation towards the disk lights.
type integrator struct {
	maxDepth uint32

	scene        *scene.Scene
	camera       *scene.Camera
	lightSampler *scene.LightSampler
	background   types.Vec3
}

// Trace blockReq.SamplesPerPixel paths per pixel for the rows of the block and
// add the radiance sums and sample counts to the accumulation buffer.
func (in *integrator) renderBlock(accum []float32, frameW, frameH uint32, blockReq *tracer.BlockRequest) {
	if blockReq.SamplesPerPixel == 0 {
		return
	}

	rng := rand.New(rand.NewSource(int64(blockReq.Seed)<<32 | int64(blockReq.BlockY)))
	invW := 1.0 / float32(frameW)
	invH := 1.0 / float32(frameH)

	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		for x := uint32(0); x < frameW; x++ {
			var sum types.Vec3
			for s := uint32(0); s < blockReq.SamplesPerPixel; s++ {
				u := (float32(x) + rng.Float32()) * invW
				v := (float32(y) + rng.Float32()) * invH
				sum = sum.Add(in.radiance(in.camera.Eye, in.camera.RayDir(u, v), rng))
			}

			offset := (y*frameW + x) * 4
			accum[offset] += sum[0]
			accum[offset+1] += sum[1]
			accum[offset+2] += sum[2]
			accum[offset+3] += float32(blockReq.SamplesPerPixel)
		}
	}
}

// Estimate the radiance arriving at origin from direction -dir.
func (in *integrator) radiance(origin, dir types.Vec3, rng *rand.Rand) types.Vec3 {
	var L types.Vec3
	throughput := types.XYZ(1, 1, 1)

	for depth := uint32(0); depth < in.maxDepth; depth++ {
		hit, ok := in.scene.Intersect(origin, dir, math.MaxFloat32)
		if !ok {
			L = L.Add(throughput.MulVec(in.background))
			break
		}

		albedo := defaultAlbedo
		if hit.Material != nil {
			albedo = hit.Material.Albedo(hit.UV)
			if hit.Material.IsEmissive() {
				L = L.Add(throughput.MulVec(hit.Material.Emissive))
			}
		}

		spawn := hit.Point.Add(hit.GeomNormal.Mul(shadowEpsilon))
		L = L.Add(throughput.MulVec(albedo).MulVec(in.sampleLight(spawn, hit.Normal, rng)))

		throughput = throughput.MulVec(albedo)
		if depth >= rouletteDepth {
			q := math32.Max(0.05, 1-throughput.MaxComponent())
			if rng.Float32() < q {
				break
			}
			throughput = throughput.Mul(1 / (1 - q))
		}

		origin = spawn
		dir = cosineSampleHemisphere(hit.Normal, rng.Float32(), rng.Float32())
	}

	return L
}

// Sample direct lighting from a single disk light. The returned value still
// needs to be scaled by the surface albedo.
func (in *integrator) sampleLight(point, normal types.Vec3, rng *rand.Rand) types.Vec3 {
	if in.lightSampler == nil {
		return types.Vec3{}
	}

	light, selectPdf := in.lightSampler.Sample(rng.Float32())
	if light == nil || selectPdf <= 0 {
		return types.Vec3{}
	}

	lightPoint := light.SamplePoint(rng.Float32(), rng.Float32())
	toLight := lightPoint.Sub(point)
	dist2 := toLight.Dot(toLight)
	if dist2 <= 0 {
		return types.Vec3{}
	}
	dist := math32.Sqrt(dist2)
	wi := toLight.Mul(1 / dist)

	cosSurface := normal.Dot(wi)
	cosLight := -wi.Dot(light.Normal())
	if cosSurface <= 0 || cosLight <= 0 {
		return types.Vec3{}
	}

	if in.scene.Occluded(point, wi, dist-shadowEpsilon) {
		return types.Vec3{}
	}

	// Convert the area pdf to solid angle and apply the lambertian brdf (1/π)
	pdf := selectPdf * dist2 / (cosLight * light.Area())
	return light.Radiance().Mul(cosSurface / (math.Pi * pdf))
}

// Pick a direction around n with a pdf of cos(θ)/π.
func cosineSampleHemisphere(n types.Vec3, u1, u2 float32) types.Vec3 {
	r := math32.Sqrt(u1)
	sin, cos := math32.Sincos(2 * math.Pi * u2)
	x := r * cos
	y := r * sin
	z := math32.Sqrt(math32.Max(0, 1-u1))

	t, b := basis(n)
	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z)).Normalize()
}

func basis(n types.Vec3) (types.Vec3, types.Vec3) {
	up := types.XYZ(0, 1, 0)
	if math32.Abs(n[1]) > 0.999 {
		up = types.XYZ(1, 0, 0)
	}
	t := up.Cross(n).Normalize()
	return t, n.Cross(t)
}
