package cmd

import (
	"math"
	"runtime"
	"time"

	"github.com/urfave/cli"
)

// Metadata key holding the process start time.
const startTimeKey = "start"

// Create the cli application. The time budget is measured from start.
func NewApp(start time.Time) *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rtcamp11"
	app.Usage = "render an animated glTF scene into a numbered image sequence"
	app.Version = "0.0.1"
	app.Metadata = map[string]interface{}{
		startTimeKey: start,
	}
	app.Flags = append(verbosityFlags(), renderFlags()...)
	app.Action = Render
	app.OnUsageError = func(ctx *cli.Context, err error, _ bool) error {
		cli.ShowAppHelp(ctx)
		return exitError(&ArgumentError{Reason: err.Error()})
	}
	app.Commands = []cli.Command{
		{
			Name:  "inspect",
			Usage: "print the meshes, nodes and animations of a scene",
			Description: `
Parse a glTF or wavefront obj scene and display a summary of its contents
without rendering it.`,
			Flags: append(verbosityFlags(),
				cli.StringFlag{
					Name:  "gltf",
					Usage: "path or http(s) URL of the scene file",
				},
			),
			Action: Inspect,
			OnUsageError: func(ctx *cli.Context, err error, _ bool) error {
				cli.ShowCommandHelp(ctx, "inspect")
				return exitError(&ArgumentError{Reason: err.Error()})
			},
		},
	}

	return app
}

func verbosityFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.UintFlag{
			Name:   "time-limit",
			Value:  math.MaxUint32,
			Usage:  "wall-clock budget in seconds measured from process start",
			EnvVar: "RTCAMP_TIME_LIMIT",
		},
		cli.StringFlag{
			Name:  "gltf",
			Usage: "path or http(s) URL of the scene file",
		},
		cli.UintFlag{
			Name:  "width",
			Usage: "frame width",
		},
		cli.UintFlag{
			Name:  "height",
			Usage: "frame height",
		},
		cli.UintFlag{
			Name:  "spp",
			Usage: "samples per pixel",
		},
		cli.UintFlag{
			Name:  "fps",
			Usage: "frames per second",
		},
		cli.Float64Flag{
			Name:  "duration",
			Value: 10,
			Usage: "animation length in seconds",
		},
		cli.StringFlag{
			Name:  "out-dir, o",
			Value: ".",
			Usage: "output directory for the rendered frames",
		},
		cli.StringFlag{
			Name:  "format",
			Value: "png",
			Usage: "output image format (png, bmp, tiff)",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.UintFlag{
			Name:  "max-depth",
			Value: 6,
			Usage: "max number of path segments per sample",
		},
		cli.UintFlag{
			Name:  "arena-mb",
			Value: 64,
			Usage: "renderer memory arena size in MiB",
		},
		cli.StringFlag{
			Name:  "accelerator",
			Value: "wide-bvh",
			Usage: "ray intersection accelerator (bvh, wide-bvh)",
		},
		cli.StringFlag{
			Name:  "light-sampler",
			Value: "uniform",
			Usage: "light selection strategy (uniform, power)",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: runtime.NumCPU(),
			Usage: "number of tracer workers",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "hcl, yaml or toml file with camera, light and background overrides",
		},
	}
}

func startTime(ctx *cli.Context) time.Time {
	if start, ok := ctx.App.Metadata[startTimeKey].(time.Time); ok {
		return start
	}
	return time.Now()
}
