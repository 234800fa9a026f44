package renderer

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/anthonynsimon/bild/effect"
	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/asset/scene/reader"
	"github.com/ms-elk/rtcamp11/log"
	"github.com/ms-elk/rtcamp11/scene"
	"github.com/ms-elk/rtcamp11/tracer"
	"github.com/ms-elk/rtcamp11/tracer/cpu"
	"github.com/ms-elk/rtcamp11/types"
)

const (
	accumRegion = "accumulation"
	frameRegion = "framebuffer"
	sceneRegion = "scene"

	// Radius used by the median filter when resolving with denoising.
	denoiseRadius = 1.0

	displayGamma float32 = 1.0 / 2.2
)

// A Session owns everything needed to render frames of a single scene: the
// camera, the light set, the accumulation buffer and a pool of cpu tracers.
// Sessions are not safe for concurrent use.
type Session struct {
	logger log.Logger

	options Options
	arena   *Arena

	camera       *scene.Camera
	lights       []*scene.DiskLight
	lightSampler *scene.LightSampler
	background   types.Vec3
	scene        *scene.Scene

	tracers          []tracer.Tracer
	scheduler        tracer.BlockScheduler
	blockAssignments []uint32

	// RGB sums followed by the sample count for every pixel.
	accumBuffer []float32

	// Resolved RGB output.
	frameBuffer []uint8

	// Incremented on every Render call and used for seeding the tracers.
	passCount uint32

	stats  FrameStats
	closed bool
}

// Create a new render session and spin up its tracers.
func New(opts Options) (*Session, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.ArenaBytes == 0 {
		opts.ArenaBytes = DefaultArenaBytes
	}

	s := &Session{
		logger:    log.New("renderer"),
		options:   opts,
		arena:     NewArena(opts.ArenaBytes),
		camera:    scene.NewCamera(),
		scheduler: tracer.NaiveScheduler(),
	}

	numPixels := uint64(opts.FrameW) * uint64(opts.FrameH)
	if err := s.arena.Reserve(accumRegion, numPixels*4*4); err != nil {
		return nil, err
	}
	if err := s.arena.Reserve(frameRegion, numPixels*3); err != nil {
		return nil, err
	}
	s.accumBuffer = make([]float32, numPixels*4)
	s.frameBuffer = make([]uint8, numPixels*3)

	for i := 0; i < opts.Workers; i++ {
		tr := cpu.NewTracer(fmt.Sprintf("cpu-%d", i), opts.MaxDepth)
		if err := tr.Init(opts.FrameW, opts.FrameH, s.accumBuffer); err != nil {
			s.Close()
			return nil, err
		}
		s.tracers = append(s.tracers, tr)
	}
	s.broadcast(tracer.UpdateBackground, s.background)

	s.logger.Infof("initialized %dx%d session with %d tracer(s), max depth %d and %s accelerator",
		opts.FrameW, opts.FrameH, len(s.tracers), opts.MaxDepth, opts.Accelerator)
	return s, nil
}

// Shutdown all tracers and release the session buffers.
func (s *Session) Close() {
	for _, tr := range s.tracers {
		tr.Close()
	}
	s.tracers = nil
	s.scene = nil
	s.accumBuffer = nil
	s.frameBuffer = nil
	s.arena.Release(accumRegion)
	s.arena.Release(frameRegion)
	s.arena.Release(sceneRegion)
	s.closed = true
}

// Get the session options.
func (s *Session) Options() Options {
	return s.options
}

// Get the session camera. Changes to the camera are picked up by the next
// Render call.
func (s *Session) Camera() *scene.Camera {
	return s.camera
}

// Get the loaded scene or nil if no scene has been loaded.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// Set the radiance returned by rays that escape the scene.
func (s *Session) SetBackgroundColor(r, g, b float32) {
	s.background = types.XYZ(r, g, b)
	s.broadcast(tracer.UpdateBackground, s.background)
}

// Add a disk light to the light set. The light sampler must be rebuilt
// before the light contributes to rendered frames.
func (s *Session) AddDiskLight(power float32, color, pos, target types.Vec3, radius float32) {
	s.lights = append(s.lights, scene.NewDiskLight(power, color, pos, target, radius))
}

// Get the current light set.
func (s *Session) Lights() []*scene.DiskLight {
	return s.lights
}

// Build the light sampler over the current light set.
func (s *Session) BuildLightSampler(kind scene.LightSamplerKind) error {
	ls, err := scene.NewLightSampler(kind, s.lights)
	if err != nil {
		return err
	}
	s.lightSampler = ls
	s.broadcast(tracer.UpdateLightSampler, ls)
	s.logger.Debugf("built %s light sampler over %d light(s)", kind, len(s.lights))
	return nil
}

// Load a scene file. Any error is reported as a *SceneLoadError.
func (s *Session) Load(path string, fileType reader.FileType) error {
	if s.closed {
		return ErrClosed
	}

	raw, err := reader.ReadScene(path, fileType)
	if err != nil {
		return &SceneLoadError{Path: path, Err: err}
	}

	sc := scene.New(raw, s.options.Accelerator)
	if err = sc.Update(0); err != nil {
		return &SceneLoadError{Path: path, Err: err}
	}
	if err = s.arena.Reserve(sceneRegion, sc.Footprint()); err != nil {
		return &SceneLoadError{Path: path, Err: err}
	}

	s.scene = sc
	s.broadcast(tracer.UpdateScene, sc)
	s.logger.Infof("loaded scene %q: %d meshes, %d triangles, %d animation(s) lasting %.3f s",
		path, len(raw.Meshes), len(sc.Triangles), len(raw.Animations), raw.Duration())
	return nil
}

// Evaluate the scene animations at time t and rebuild the acceleration structure.
func (s *Session) UpdateScene(t float32) error {
	if s.scene == nil {
		return ErrSceneNotDefined
	}

	start := time.Now()
	if err := s.scene.Update(t); err != nil {
		return err
	}
	if err := s.arena.Reserve(sceneRegion, s.scene.Footprint()); err != nil {
		return err
	}
	s.broadcast(tracer.UpdateScene, s.scene)
	s.stats.UpdateTime = time.Since(start)
	return nil
}

// Clear the accumulation buffer. Calling it more than once has no further effect.
func (s *Session) ResetAccumulation() error {
	if s.closed {
		return ErrClosed
	}
	for i := range s.accumBuffer {
		s.accumBuffer[i] = 0
	}
	s.stats.Samples = 0
	return nil
}

// Trace spp samples for every pixel and add them to the accumulation buffer.
// The call blocks until all tracers have finished their blocks.
func (s *Session) Render(spp uint32) error {
	if s.closed {
		return ErrClosed
	}
	if len(s.tracers) == 0 {
		return ErrNoTracers
	}
	if s.scene == nil {
		return ErrSceneNotDefined
	}
	if s.camera == nil {
		return ErrCameraNotDefined
	}
	if s.lightSampler == nil {
		return ErrLightSamplerNotBuilt
	}
	if spp == 0 {
		return nil
	}

	start := time.Now()

	// Tracers get a snapshot so camera edits never race with rendering
	camera := *s.camera
	s.broadcast(tracer.UpdateCamera, &camera)

	s.passCount++
	s.blockAssignments = s.scheduler.Schedule(s.tracers, s.options.FrameH)

	doneChan := make(chan uint32, len(s.tracers))
	errChan := make(chan error, len(s.tracers))
	var blockY uint32
	pending := 0
	for idx, tr := range s.tracers {
		blockH := s.blockAssignments[idx]
		if blockH == 0 {
			continue
		}
		tr.Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          blockH,
			SamplesPerPixel: spp,
			Seed:            s.passCount*uint32(len(s.tracers)) + uint32(idx),
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for all tracers so no tracer is still writing once we return
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case blockErr := <-errChan:
			if err == nil {
				err = blockErr
			}
		}
	}
	if err != nil {
		return err
	}

	// Switch to the feedback-driven scheduler once we have timings
	if s.passCount == 1 {
		s.scheduler = tracer.PerfectScheduler()
	}

	s.stats.Samples += spp
	s.stats.RenderTime = time.Since(start)
	s.stats.Tracers = s.tracerStats()
	for _, ts := range s.stats.Tracers {
		s.logger.Debugf("tracer %s: %d rows (%.1f%%) in %d ms", ts.Id, ts.BlockH, ts.FramePercent, ts.RenderTime.Nanoseconds()/1e6)
	}
	return nil
}

func (s *Session) tracerStats() []TracerStat {
	stats := make([]TracerStat, len(s.tracers))
	for idx, tr := range s.tracers {
		blockH := s.blockAssignments[idx]
		stats[idx] = TracerStat{
			Id:           tr.Id(),
			BlockH:       blockH,
			FramePercent: 100 * float32(blockH) / float32(s.options.FrameH),
		}
		if blockH != 0 {
			stats[idx].RenderTime = tr.Stats().RenderTime
		}
	}
	return stats
}

// Convert the accumulated radiance into the RGB frame buffer applying
// Reinhard tone mapping and gamma correction. Pixels without samples resolve
// to black. If denoise is true a median filter is applied to the result.
func (s *Session) Resolve(denoise bool) error {
	if s.closed {
		return ErrClosed
	}

	start := time.Now()
	exposure := s.options.Exposure
	if exposure <= 0 {
		exposure = DefaultExposure
	}

	numPixels := len(s.frameBuffer) / 3
	for i := 0; i < numPixels; i++ {
		count := s.accumBuffer[i*4+3]
		for c := 0; c < 3; c++ {
			var v float32
			if count > 0 {
				v = s.accumBuffer[i*4+c] / count * exposure
				v = math32.Pow(v/(1+v), displayGamma)
			}
			s.frameBuffer[i*3+c] = toByte(v)
		}
	}

	if denoise {
		s.denoise()
	}

	s.stats.ResolveTime = time.Since(start)
	return nil
}

func (s *Session) denoise() {
	w, h := int(s.options.FrameW), int(s.options.FrameH)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		copy(img.Pix[i*4:i*4+3], s.frameBuffer[i*3:i*3+3])
		img.Pix[i*4+3] = 255
	}

	filtered := effect.Median(img, denoiseRadius)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := filtered.PixOffset(x, y)
			dst := (y*w + x) * 3
			copy(s.frameBuffer[dst:dst+3], filtered.Pix[src:src+3])
		}
	}
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Get the resolved RGB frame. The slice is owned by the session and is
// overwritten by the next Resolve call.
func (s *Session) FrameBuffer() []uint8 {
	return s.frameBuffer
}

// Get the statistics for the last rendered frame.
func (s *Session) Stats() FrameStats {
	return s.stats
}

// Push an update to every tracer.
func (s *Session) broadcast(updateType tracer.UpdateType, data interface{}) {
	for _, tr := range s.tracers {
		tr.Update(updateType, data)
	}
}
