// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/integration/glfwhost"
	"github.com/gogpu/viewer/scenegraph"
	"github.com/gogpu/viewer/stats"
)

// displayFlags are shared by the commands that open a window.
func displayFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "viewports", Value: 2, Usage: "number of side by side viewports"},
		cli.IntFlag{Name: "grid", Value: 4, Usage: "boxes per grid side"},
		cli.IntFlag{Name: "width", Value: 1280, Usage: "window width in pixels"},
		cli.IntFlag{Name: "height", Value: 720, Usage: "window height in pixels"},
		cli.IntFlag{Name: "mirror", Value: 256, Usage: "render-to-texture size, 0 to disable"},
		cli.BoolFlag{Name: "on-demand", Usage: "only render frames when something changed"},
	}
}

func layoutFromFlags(ctx *cli.Context) layout {
	return layout{
		viewports: ctx.Int("viewports"),
		grid:      ctx.Int("grid"),
		width:     ctx.Int("width"),
		height:    ctx.Int("height"),
		mirror:    ctx.Int("mirror"),
		history:   stats.DefaultHistory,
	}
}

func frameScheme(ctx *cli.Context) viewer.FrameScheme {
	if ctx.Bool("on-demand") {
		return viewer.OnDemand
	}
	return viewer.Continuous
}

func viewCommand() cli.Command {
	return cli.Command{
		Name:        "view",
		Usage:       "open an OpenGL window showing the demo scene",
		Description: "Left drag rotates a viewport, right drag and the wheel zoom,\n" +
			"   space resets the view and Escape closes the window.",
		Flags: append(displayFlags(),
			cli.BoolFlag{Name: "vsync", Usage: "synchronize swaps with the display"},
			cli.IntFlag{Name: "samples", Usage: "multisample count"},
		),
		Action: func(ctx *cli.Context) error {
			return runView(ctx, layoutFromFlags(ctx))
		},
	}
}

func runView(ctx *cli.Context, l layout) error {
	if err := l.validate(); err != nil {
		return err
	}
	host, err := glfwhost.New(glfwhost.Config{
		Title:   ctx.App.Name,
		Width:   l.width,
		Height:  l.height,
		VSync:   ctx.Bool("vsync"),
		Samples: ctx.Int("samples"),
	})
	if err != nil {
		return err
	}
	defer host.Destroy()

	backend := glfwhost.NewBackend()
	defer func() {
		if host.MakeCurrent() {
			backend.Close()
			host.ReleaseContext()
		}
	}()

	w, err := viewer.NewWindow(host,
		viewer.WithEngine(scenegraph.NewEngine(backend)),
		viewer.WithFrameScheme(frameScheme(ctx)),
	)
	if err != nil {
		return err
	}
	// The framebuffer can be larger than the requested window size on
	// high density displays.
	tr := host.Traits()
	l.width, l.height = tr.Width, tr.Height
	newDemo(l.grid, l.mirror).attach(w, l)

	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := host.Run(sig, w); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
