package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration

	// Time spent rebuilding the scene for the current animation time.
	UpdateTime time.Duration

	// Time spent resolving the accumulation buffer.
	ResolveTime time.Duration

	// Samples per pixel accumulated since the last reset.
	Samples uint32
}
