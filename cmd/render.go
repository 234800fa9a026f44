package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ms-elk/rtcamp11/animation"
	"github.com/ms-elk/rtcamp11/encoder"
	"github.com/ms-elk/rtcamp11/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render the animation frames of a scene.
func Render(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return exitError(err)
	}

	opts, err := parseRenderOptions(ctx)
	if err != nil {
		if _, isArgErr := err.(*ArgumentError); isArgErr {
			cli.ShowAppHelp(ctx)
		}
		return exitError(err)
	}

	if err = os.MkdirAll(opts.outDir, 0755); err != nil {
		return exitError(&ConfigError{Option: "out-dir", Err: err})
	}

	enc, err := encoder.New(opts.format)
	if err != nil {
		return exitError(err)
	}

	session, err := setupSession(opts)
	if err != nil {
		return exitError(err)
	}
	defer session.Close()

	budget := animation.NewBudget(opts.timeLimit, startTime(ctx))
	orchestrator := animation.NewOrchestrator(session, enc, budget, opts.animation)
	orchestrator.SetObserver(func(frame uint32, from, to animation.State) {
		logger.Debugf("frame %03d: %s -> %s", frame, from, to)
	})

	res, err := orchestrator.Run()
	displayRunStats(res, budget)
	if err != nil {
		return exitError(err)
	}
	return nil
}

// Create a render session, load the scene and apply the camera and light setup.
func setupSession(opts *renderOptions) (*renderer.Session, error) {
	session, err := renderer.New(opts.renderer)
	if err != nil {
		return nil, err
	}

	sc := opts.scene
	session.SetBackgroundColor(sc.Background[0], sc.Background[1], sc.Background[2])
	for _, l := range sc.Lights {
		session.AddDiskLight(l.Power, l.Color, l.Position, l.Target, l.Radius)
	}
	if err = session.BuildLightSampler(opts.lightSampler); err != nil {
		session.Close()
		return nil, err
	}

	aspect := float32(opts.renderer.FrameW) / float32(opts.renderer.FrameH)
	session.Camera().SetLookAt(sc.Camera.Eye, sc.Camera.Target, sc.Camera.Up, sc.Camera.FovY, aspect)

	logger.Noticef("loading scene %s", opts.scenePath)
	if err = session.Load(opts.scenePath, opts.fileType); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

func displayRunStats(res animation.Result, budget *animation.Budget) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Scene time", "Frame time", "Elapsed", "Output"})
	for _, stat := range res.Frames {
		output := stat.Path
		if output == "" {
			output = "(dropped)"
		}
		table.Append([]string{
			fmt.Sprintf("%03d", stat.Index),
			fmt.Sprintf("%.3f s", stat.Time),
			fmt.Sprintf("%.3f ms", float64(stat.FrameTime.Nanoseconds())/1e6),
			fmt.Sprintf("%.3f s", stat.Elapsed.Seconds()),
			output,
		})
	}

	limit := "unbounded"
	if !budget.IsUnbounded() {
		limit = fmt.Sprintf("%d s", budget.Limit())
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d encoded", res.Encoded),
		fmt.Sprintf("%d rendered", res.Rendered),
		fmt.Sprintf("truncated: %t", res.Truncated),
		fmt.Sprintf("%.3f s", budget.Elapsed().Seconds()),
		"budget: " + limit,
	})

	table.Render()
	logger.Noticef("run statistics\n%s", buf.String())
}
