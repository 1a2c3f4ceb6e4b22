// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/scenegraph"
	"github.com/gogpu/viewer/stats"
)

var allCategories = []string{
	stats.CategoryEvent,
	stats.CategoryUpdate,
	stats.CategoryRendering,
	stats.CategoryGPU,
	stats.CategoryScene,
	stats.CategoryCompile,
	stats.CategoryFrameRate,
}

func benchCommand() cli.Command {
	return cli.Command{
		Name:        "bench",
		Usage:       "render frames without a display and report statistics",
		Description: "Runs the demo scene through an embedded context with a headless engine.\n" +
			"   Every statistics category is collected and summarized per window,\n" +
			"   per viewport and per scene once the frames are done.",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "frames", Value: 120, Usage: "number of frames to render"},
			cli.IntFlag{Name: "viewports", Value: 2, Usage: "number of side by side viewports"},
			cli.IntFlag{Name: "grid", Value: 4, Usage: "boxes per grid side"},
			cli.IntFlag{Name: "width", Value: 1280, Usage: "drawable width in pixels"},
			cli.IntFlag{Name: "height", Value: 720, Usage: "drawable height in pixels"},
			cli.IntFlag{Name: "mirror", Value: 256, Usage: "render-to-texture size, 0 to disable"},
			cli.BoolFlag{Name: "plain", Usage: "print tables without borders"},
		},
		Action: func(ctx *cli.Context) error {
			l := layout{
				viewports: ctx.Int("viewports"),
				grid:      ctx.Int("grid"),
				width:     ctx.Int("width"),
				height:    ctx.Int("height"),
				mirror:    ctx.Int("mirror"),
				history:   ctx.Int("frames"),
			}
			out := ctx.App.Writer
			return runBench(out, l, ctx.Int("frames"), !ctx.Bool("plain") && isTerminal(out))
		},
	}
}

// benchResult is what a bench run leaves behind for reporting.
type benchResult struct {
	window *viewer.Window
	engine *scenegraph.Engine
	ctx    *viewer.EmbeddedContext
}

func bench(l layout, frames int) (*benchResult, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	if frames < 1 {
		return nil, fmt.Errorf("opeview: frames must be positive, got %d", frames)
	}

	gc := viewer.NewEmbeddedContext(0, 0, l.width, l.height)
	engine := scenegraph.NewEngine(nil)
	w, err := viewer.NewWindow(gc,
		viewer.WithEngine(engine),
		viewer.WithSceneRegistry(viewer.NewSceneRegistry()),
		viewer.WithStats(stats.New("Window", stats.WithHistory(frames), stats.WithCategories(allCategories...))),
	)
	if err != nil {
		return nil, err
	}
	newDemo(l.grid, l.mirror).attach(w, l)
	w.Init()

	for range frames {
		w.Advance()
		w.UpdateSimulationTime(viewer.UseElapsedTime)
		w.Frame()
	}
	return &benchResult{window: w, engine: engine, ctx: gc}, nil
}

func runBench(out io.Writer, l layout, frames int, borders bool) error {
	res, err := bench(l, frames)
	if err != nil {
		return err
	}

	opts := stats.ReportOptions{Borders: borders}
	sinks := []*stats.Stats{res.window.Stats()}
	for _, v := range res.window.Viewports() {
		sinks = append(sinks, v.Stats())
	}
	for _, s := range res.window.Scenes(true) {
		sinks = append(sinks, s.Stats())
	}
	for _, s := range sinks {
		if err := writeReport(out, s, opts); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%d frames, %d swaps, %d scene views drawn, %d meshes compiled\n",
		res.window.FrameStamp().FrameNumber(), res.ctx.Swaps(), res.engine.Draws(), res.engine.Compiles())
	return nil
}

// writeReport prints the whole retained history of s. A sink that
// recorded nothing is reported as such rather than failing the run.
func writeReport(out io.Writer, s *stats.Stats, opts stats.ReportOptions) error {
	start, end := s.EarliestFrameNumber(), s.LatestFrameNumber()
	err := s.WriteReport(out, start, end, opts)
	if errors.Is(err, stats.ErrNoData) {
		fmt.Fprintf(out, "%s: no statistics recorded\n", s.Name())
		return nil
	}
	if err != nil {
		return fmt.Errorf("opeview: report %s: %w", s.Name(), err)
	}
	fmt.Fprintln(out)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
