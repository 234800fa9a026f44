package cmd

import (
	"bytes"
	"fmt"

	"github.com/ms-elk/rtcamp11/asset/scene"
	"github.com/ms-elk/rtcamp11/asset/scene/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display scene contents.
func Inspect(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return exitError(err)
	}

	if ctx.NArg() > 0 {
		return exitError(&ArgumentError{Reason: fmt.Sprintf("unexpected positional arguments %v", []string(ctx.Args()))})
	}
	path := ctx.String("gltf")
	if path == "" {
		return exitError(&ArgumentError{Reason: "missing required flag --gltf"})
	}

	fileType, err := reader.FileTypeFromPath(path)
	if err != nil {
		return exitError(&ConfigError{Option: "gltf", Err: err})
	}

	sc, err := reader.ReadScene(path, fileType)
	if err != nil {
		return exitError(fmt.Errorf("could not load scene %q: %w", path, err))
	}

	var buf bytes.Buffer
	writeMeshTable(&buf, sc)
	writeNodeTable(&buf, sc)
	writeAnimationTable(&buf, sc)
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func writeMeshTable(buf *bytes.Buffer, sc *scene.Scene) {
	table := newTable(buf, []string{"Mesh", "Name", "Triangles", "BBox min", "BBox max"})
	for idx, mesh := range sc.Meshes {
		bbox := mesh.BBox()
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			mesh.Name,
			fmt.Sprintf("%d", len(mesh.Primitives)),
			fmt.Sprintf("%v", bbox[0]),
			fmt.Sprintf("%v", bbox[1]),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d", sc.PrimitiveCount()), "", ""})
	table.Render()
}

func writeNodeTable(buf *bytes.Buffer, sc *scene.Scene) {
	table := newTable(buf, []string{"Node", "Name", "Mesh", "Children", "Root"})
	roots := make(map[int]bool, len(sc.Roots))
	for _, r := range sc.Roots {
		roots[r] = true
	}
	for idx, node := range sc.Nodes {
		mesh := "-"
		if node.Mesh >= 0 {
			mesh = fmt.Sprintf("%d", node.Mesh)
		}
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			node.Name,
			mesh,
			fmt.Sprintf("%v", node.Children),
			fmt.Sprintf("%t", roots[idx]),
		})
	}
	table.Render()
}

func writeAnimationTable(buf *bytes.Buffer, sc *scene.Scene) {
	table := newTable(buf, []string{"Animation", "Name", "Channel", "Node", "Path", "Interpolation", "Keyframes", "Duration"})
	for idx, anim := range sc.Animations {
		for chIdx, ch := range anim.Channels {
			table.Append([]string{
				fmt.Sprintf("%d", idx),
				anim.Name,
				fmt.Sprintf("%d", chIdx),
				fmt.Sprintf("%d", ch.Node),
				ch.Path.String(),
				ch.Sampler.Interpolation.String(),
				fmt.Sprintf("%d", len(ch.Sampler.Times)),
				fmt.Sprintf("%.3f s", anim.Duration()),
			})
		}
	}
	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", fmt.Sprintf("%.3f s", sc.Duration())})
	table.Render()
}

func newTable(buf *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

