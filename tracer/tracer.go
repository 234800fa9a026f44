package tracer

import "time"

type Flag uint16

const (
	// The tracer runs on the local host CPU.
	Local Flag = 1 << iota
)

type UpdateType uint8

// The supported types of tracer updates.
const (
	UpdateScene UpdateType = iota
	UpdateCamera
	UpdateLightSampler
	UpdateBackground
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of emitted rays per traced pixel.
	SamplesPerPixel uint32

	// A random seed value for the tracer's random number generator.
	Seed uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time for applying pending updates before rendering.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get tracer flags.
	Flags() Flag

	// Get the computation speed estimate used for the initial block schedule.
	Speed() uint32

	// Initialize the tracer. The accumulation buffer holds 4 floats per
	// pixel: the RGB radiance sums followed by the sample count. Tracers
	// only ever write the rows of the blocks assigned to them.
	Init(frameW, frameH uint32, accumBuffer []float32) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Updates are applied
	// before the next block is rendered.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
