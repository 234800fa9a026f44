package renderer

import "github.com/ms-elk/rtcamp11/scene"

const (
	DefaultMaxDepth   uint32  = 6
	DefaultArenaBytes uint64  = 64 << 20
	DefaultExposure   float32 = 1
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Max number of path segments traced per sample.
	MaxDepth uint32

	// Capacity of the memory arena that backs frame buffers and scene data.
	ArenaBytes uint64

	// The acceleration structure rebuilt on every scene update.
	Accelerator scene.Accelerator

	// Number of tracer workers. Values < 1 select one worker per CPU.
	Workers int

	// Exposure for tonemapping.
	Exposure float32
}

// Get the default options for a frame of the given size.
func DefaultOptions(frameW, frameH uint32) Options {
	return Options{
		FrameW:      frameW,
		FrameH:      frameH,
		MaxDepth:    DefaultMaxDepth,
		ArenaBytes:  DefaultArenaBytes,
		Accelerator: scene.WideBvh,
		Exposure:    DefaultExposure,
	}
}
