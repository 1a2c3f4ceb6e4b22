// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/urfave/cli"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/integration/ebitenhost"
	"github.com/gogpu/viewer/scenegraph"
	"github.com/gogpu/viewer/stats"
)

func playCommand() cli.Command {
	return cli.Command{
		Name:        "play",
		Usage:       "drive the demo scene from an ebiten game loop",
		Description: "Ebiten owns the window, the viewer runs headless inside it and\n" +
			"   the overlay shows the averaged window statistics.",
		Flags: displayFlags(),
		Action: func(ctx *cli.Context) error {
			return runPlay(ctx, layoutFromFlags(ctx))
		},
	}
}

func runPlay(ctx *cli.Context, l layout) error {
	if err := l.validate(); err != nil {
		return err
	}
	gc := viewer.NewEmbeddedContext(0, 0, l.width, l.height)
	w, err := viewer.NewWindow(gc,
		viewer.WithEngine(scenegraph.NewEngine(nil)),
		viewer.WithFrameScheme(frameScheme(ctx)),
		viewer.WithStats(stats.New("Window", stats.WithCategories(stats.CategoryFrameRate, stats.CategoryUpdate))),
	)
	if err != nil {
		return err
	}
	newDemo(l.grid, l.mirror).attach(w, l)

	game := ebitenhost.NewGame(w)
	game.Overlay = func(screen *ebiten.Image) {
		ebitenutil.DebugPrintAt(screen, statusLine(w.Stats()), 0, 16)
	}
	ebiten.SetWindowTitle(ctx.App.Name)
	ebiten.SetWindowSize(l.width, l.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// statusLine summarizes the last few frames of s.
func statusLine(s *stats.Stats) string {
	end := s.LatestFrameNumber()
	start := s.EarliestFrameNumber()
	if end > start+10 {
		start = end - 10
	}
	rate, _ := s.AveragedAttribute(start, end, stats.FrameRate, true)
	update, _ := s.AveragedAttribute(start, end, stats.UpdateTraversalTimeTaken, false)
	return fmt.Sprintf("viewer %.1f fps  update %.3f ms", rate, update*1000)
}
