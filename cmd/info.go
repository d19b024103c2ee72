package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"pathtrace/renderer"
	"pathtrace/scene/reader"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Info replaces the teacher's ListDevices (cmd/list_devices.go): instead
// of enumerating discovered OpenCL platforms/devices, it loads a scene,
// Inits a Renderer against it and reports the scene's geom, material and
// area-light counts, whether it has an environment, and the resolved
// worker pool size (spec 8 "Device/runner introspection CLI").
func Info(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	width, height := ctx.Int("width"), ctx.Int("height")
	sc, err := reader.Read(ctx.Args().First(), reader.Options{
		Width:          width,
		Height:         height,
		KdMinLeafItems: 4,
		KdMaxDepth:     24,
	})
	if err != nil {
		return err
	}

	r := renderer.New(renderer.Options{
		Width:   width,
		Height:  height,
		Workers: ctx.Int("workers"),
	})
	if err := r.Init(sc); err != nil {
		return err
	}
	defer r.Close()

	stats := r.Stats()
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Geoms", "Materials", "Area lights", "Has environment"})
	table.Append([]string{
		fmt.Sprintf("%d", len(sc.Geoms)),
		fmt.Sprintf("%d", len(sc.Materials)),
		fmt.Sprintf("%d", len(sc.Lights)),
		fmt.Sprintf("%t", sc.Environment != nil),
	})
	table.SetFooter([]string{"Workers", fmt.Sprintf("%d", stats.Workers), "", ""})
	table.Render()
	logger.Noticef("scene info\n%s", buf.String())
	return nil
}
