// Package animation drives a render session through the frames of an
// animated sequence under a wall-clock budget.
package animation

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ms-elk/rtcamp11/encoder"
	"github.com/ms-elk/rtcamp11/log"
)

// The largest frame index that fits the three digit file name pattern.
const MaxFrameIndex = 999

// The render session operations used by the orchestrator.
type Session interface {
	UpdateScene(t float32) error
	ResetAccumulation() error
	Render(spp uint32) error
	Resolve(denoise bool) error
	FrameBuffer() []uint8
}

type Config struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Samples per pixel rendered for every frame.
	SamplesPerPixel uint32

	FPS uint32

	// Animation length in seconds.
	Duration float32

	// Directory receiving the encoded frames.
	OutDir string
}

// Per-frame statistics.
type FrameStat struct {
	Index uint32

	// Scene time for this frame.
	Time float32

	// Time spent processing the frame and the elapsed budget time when
	// the frame was completed.
	FrameTime time.Duration
	Elapsed   time.Duration

	// Output path; empty if the frame was not encoded.
	Path string
}

// The outcome of a Run.
type Result struct {
	// Number of rendered and encoded frames.
	Rendered uint32
	Encoded  uint32

	// True if the budget stopped the sequence before its last frame.
	Truncated bool

	Frames []FrameStat
}

// The Orchestrator renders the frames of an animation in order. Every frame
// advances the scene, resets accumulation, renders, resolves and then checks
// the budget before encoding.
type Orchestrator struct {
	logger log.Logger

	session  Session
	encoder  encoder.Encoder
	budget   *Budget
	config   Config
	observer StateObserver

	state State
	frame uint32
}

// Create a new orchestrator.
func NewOrchestrator(session Session, enc encoder.Encoder, budget *Budget, cfg Config) *Orchestrator {
	return &Orchestrator{
		logger:  log.New("animation"),
		session: session,
		encoder: enc,
		budget:  budget,
		config:  cfg,
		state:   Idle,
	}
}

// Register an observer for state transitions.
func (o *Orchestrator) SetObserver(observer StateObserver) {
	o.observer = observer
}

// Get the current state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) transition(to State) {
	from := o.state
	o.state = to
	if o.observer != nil {
		o.observer(o.frame, from, to)
	}
}

// Get the file name for a frame index.
func FrameFilename(index uint32, ext string) (string, error) {
	if index > MaxFrameIndex {
		return "", fmt.Errorf("%w: %d", ErrFrameIndexOutOfRange, index)
	}
	return fmt.Sprintf("%03d.%s", index, ext), nil
}

// Render the animation. Run stops after the last frame or as soon as a
// rendered frame completes past the budget; that frame is not encoded.
// Any session or encoder failure aborts the run.
func (o *Orchestrator) Run() (Result, error) {
	var res Result

	if o.session == nil {
		return res, ErrNoSession
	}
	if o.encoder == nil {
		return res, ErrNoEncoder
	}
	if o.config.FPS == 0 {
		return res, ErrInvalidFPS
	}
	if o.budget == nil {
		o.budget = NewBudget(Unbounded, time.Now())
	}

	frameCount := FrameCount(o.config.Duration, o.config.FPS)
	o.logger.Infof("rendering %d frame(s) at %d fps (%dx%d, %d spp)", frameCount, o.config.FPS, o.config.FrameW, o.config.FrameH, o.config.SamplesPerPixel)

	o.transition(LoopEntry)
	for o.frame = 0; o.frame < frameCount; o.frame++ {
		stat, encoded, err := o.renderFrame()
		if err != nil {
			o.transition(Terminated)
			return res, fmt.Errorf("frame %d: %w", o.frame, err)
		}

		res.Rendered++
		res.Frames = append(res.Frames, stat)
		if !encoded {
			res.Truncated = true
			o.logger.Warningf("time budget of %d s exceeded after %.3f s; stopping at frame %03d", o.budget.Limit(), stat.Elapsed.Seconds(), o.frame)
			break
		}
		res.Encoded++
	}

	o.transition(LoopExit)
	o.transition(Terminated)
	return res, nil
}

// Process a single frame. Returns false if the frame was dropped by the
// budget check.
func (o *Orchestrator) renderFrame() (FrameStat, bool, error) {
	o.transition(FrameStart)
	frameStart := o.budget.Now()
	stat := FrameStat{
		Index: o.frame,
		Time:  TimeAt(o.frame, o.config.FPS),
	}

	o.transition(SceneAdvance)
	if err := o.session.UpdateScene(stat.Time); err != nil {
		return stat, false, err
	}

	o.transition(AccumulationReset)
	if err := o.session.ResetAccumulation(); err != nil {
		return stat, false, err
	}

	o.transition(Sampling)
	if err := o.session.Render(o.config.SamplesPerPixel); err != nil {
		return stat, false, err
	}

	o.transition(Resolve)
	if err := o.session.Resolve(false); err != nil {
		return stat, false, err
	}

	o.transition(BudgetCheck)
	stat.Elapsed = o.budget.Elapsed()
	stat.FrameTime = o.budget.Now().Sub(frameStart)
	if o.budget.Exceeded() {
		return stat, false, nil
	}

	o.transition(Encode)
	name, err := FrameFilename(o.frame, o.encoder.Ext())
	if err != nil {
		return stat, false, err
	}
	stat.Path = filepath.Join(o.config.OutDir, name)
	if err = o.encoder.Encode(stat.Path, o.session.FrameBuffer(), o.config.FrameW, o.config.FrameH); err != nil {
		return stat, false, err
	}

	stat.FrameTime = o.budget.Now().Sub(frameStart)
	stat.Elapsed = o.budget.Elapsed()
	o.logger.Noticef("frame %03d: done in %.3f ms (total %.3f s)", o.frame, float64(stat.FrameTime.Nanoseconds())/1e6, stat.Elapsed.Seconds())
	return stat, true, nil
}
