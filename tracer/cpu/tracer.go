package cpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/ms-elk/rtcamp11/log"
	"github.com/ms-elk/rtcamp11/scene"
	"github.com/ms-elk/rtcamp11/tracer"
	"github.com/ms-elk/rtcamp11/types"
)

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Frame dimensions and the shared accumulation buffer.
	frameW      uint32
	frameH      uint32
	accumBuffer []float32

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateMutex  sync.Mutex
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *tracer.Stats

	integrator *integrator
}

// Create a new cpu tracer. Each tracer owns a single worker go-routine;
// the renderer creates one tracer per worker.
func NewTracer(id string, maxDepth uint32) tracer.Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		updateBuffer: make(map[tracer.UpdateType]interface{}),
		stats:        &tracer.Stats{},
		integrator: &integrator{
			maxDepth: maxDepth,
		},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get tracer flags.
func (tr *cpuTracer) Flags() tracer.Flag {
	return tracer.Local
}

// All cpu tracers share the same host so they get the same speed estimate.
func (tr *cpuTracer) Speed() uint32 {
	return 1
}

// Initialize tracer
func (tr *cpuTracer) Init(frameW, frameH uint32, accumBuffer []float32) error {
	tr.Lock()
	defer tr.Unlock()

	if uint32(len(accumBuffer)) < frameW*frameH*4 {
		return fmt.Errorf("cpu tracer: accumulation buffer too small for a %dx%d frame", frameW, frameH)
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.accumBuffer = accumBuffer

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *cpuTracer) cleanup() {
	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	tr.accumBuffer = nil
	tr.integrator.scene = nil
}

// Enqueue block request. The call blocks until the worker picks up the request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	if tr.blockReqChan == nil {
		blockReq.ErrChan <- ErrNotInitialized
		return
	}
	tr.blockReqChan <- blockReq
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateMutex.Lock()
	defer tr.updateMutex.Unlock()
	tr.updateBuffer[updateType] = data
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *cpuTracer) commitUpdates() error {
	tr.updateMutex.Lock()
	defer tr.updateMutex.Unlock()

	for updateType, data := range tr.updateBuffer {
		switch updateType {
		case tracer.UpdateScene:
			tr.integrator.scene = data.(*scene.Scene)
		case tracer.UpdateCamera:
			tr.integrator.camera = data.(*scene.Camera)
		case tracer.UpdateLightSampler:
			tr.integrator.lightSampler = data.(*scene.LightSampler)
		case tracer.UpdateBackground:
			tr.integrator.background = data.(types.Vec3)
		default:
			return fmt.Errorf("cpu tracer: unsupported update type %d", updateType)
		}
	}

	tr.updateBuffer = make(map[tracer.UpdateType]interface{})
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	tr.blockReqChan = make(chan tracer.BlockRequest)
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				err = tr.commitUpdates()
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *cpuTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.integrator.scene == nil {
		return ErrNoSceneData
	}
	if tr.integrator.camera == nil {
		return ErrNoCamera
	}
	if blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return ErrBlockOutOfRange
	}

	tr.integrator.renderBlock(tr.accumBuffer, tr.frameW, tr.frameH, blockReq)
	return nil
}
