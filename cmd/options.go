package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ms-elk/rtcamp11/animation"
	"github.com/ms-elk/rtcamp11/asset/scene/reader"
	"github.com/ms-elk/rtcamp11/config"
	"github.com/ms-elk/rtcamp11/encoder"
	"github.com/ms-elk/rtcamp11/renderer"
	"github.com/ms-elk/rtcamp11/scene"
	"github.com/urfave/cli"
)

// The largest number of frames that can be named with three digits.
const maxFrames = animation.MaxFrameIndex + 1

// Validated options for the render command.
type renderOptions struct {
	timeLimit uint32
	scenePath string
	fileType  reader.FileType
	outDir    string
	format    encoder.Format

	renderer     renderer.Options
	lightSampler scene.LightSamplerKind
	animation    animation.Config

	scene *config.Config
}

func parseRenderOptions(ctx *cli.Context) (*renderOptions, error) {
	if ctx.NArg() > 0 {
		return nil, &ArgumentError{Reason: fmt.Sprintf("unexpected positional arguments %v", []string(ctx.Args()))}
	}

	opts := &renderOptions{
		timeLimit: uint32(clampUint(ctx.Uint("time-limit"))),
		scenePath: ctx.String("gltf"),
		outDir:    ctx.String("out-dir"),
	}

	// An empty scene path fails when the session loads it.
	var err error
	if opts.scenePath == "" {
		opts.fileType = reader.Gltf
	} else if opts.fileType, err = reader.FileTypeFromPath(opts.scenePath); err != nil {
		return nil, &ConfigError{Option: "gltf", Err: err}
	}
	if opts.format, err = encoder.ParseFormat(ctx.String("format")); err != nil {
		return nil, &ConfigError{Option: "format", Err: err}
	}
	if opts.lightSampler, err = scene.ParseLightSamplerKind(ctx.String("light-sampler")); err != nil {
		return nil, &ConfigError{Option: "light-sampler", Err: err}
	}

	frameW := ctx.Uint("width")
	frameH := ctx.Uint("height")
	fps := ctx.Uint("fps")
	duration := ctx.Float64("duration")
	switch {
	case frameW < 1:
		return nil, &ConfigError{Option: "width", Err: errors.New("must be at least 1")}
	case frameH < 1:
		return nil, &ConfigError{Option: "height", Err: errors.New("must be at least 1")}
	case fps < 1:
		return nil, &ConfigError{Option: "fps", Err: errors.New("must be at least 1")}
	case duration < 0:
		return nil, &ConfigError{Option: "duration", Err: errors.New("must not be negative")}
	}

	opts.animation = animation.Config{
		FrameW:          uint32(clampUint(frameW)),
		FrameH:          uint32(clampUint(frameH)),
		SamplesPerPixel: uint32(clampUint(ctx.Uint("spp"))),
		FPS:             uint32(clampUint(fps)),
		Duration:        float32(duration),
		OutDir:          opts.outDir,
	}
	if duration > maxFrames {
		return nil, &ConfigError{Option: "duration", Err: fmt.Errorf("%g seconds exceed the frame limit of %d", duration, maxFrames)}
	}
	if n := uint64(animation.FrameCount(opts.animation.Duration, 1)) * uint64(fps); n > maxFrames {
		return nil, &ConfigError{Option: "fps", Err: fmt.Errorf("%d frames exceed the limit of %d", n, maxFrames)}
	}

	opts.renderer = renderer.DefaultOptions(opts.animation.FrameW, opts.animation.FrameH)
	opts.renderer.MaxDepth = uint32(clampUint(ctx.Uint("max-depth")))
	opts.renderer.ArenaBytes = uint64(ctx.Uint("arena-mb")) << 20
	opts.renderer.Workers = ctx.Int("workers")
	opts.renderer.Exposure = float32(ctx.Float64("exposure"))
	if opts.renderer.Accelerator, err = scene.ParseAccelerator(ctx.String("accelerator")); err != nil {
		return nil, &ConfigError{Option: "accelerator", Err: err}
	}
	switch {
	case opts.renderer.MaxDepth < 1:
		return nil, &ConfigError{Option: "max-depth", Err: errors.New("must be at least 1")}
	case opts.renderer.ArenaBytes == 0:
		return nil, &ConfigError{Option: "arena-mb", Err: errors.New("must be at least 1")}
	case opts.renderer.Exposure <= 0:
		return nil, &ConfigError{Option: "exposure", Err: errors.New("must be positive")}
	}

	opts.scene = config.Default()
	if path := ctx.String("config"); path != "" {
		if opts.scene, err = config.LoadFile(path); err != nil {
			return nil, &ConfigError{Option: "config", Err: err}
		}
	}

	if opts.outDir, err = filepath.Abs(opts.outDir); err != nil {
		return nil, &ConfigError{Option: "out-dir", Err: err}
	}
	opts.animation.OutDir = opts.outDir

	return opts, nil
}

func clampUint(v uint) uint {
	if uint64(v) > uint64(^uint32(0)) {
		return uint(^uint32(0))
	}
	return v
}
