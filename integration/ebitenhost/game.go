// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ebitenhost drives a viewer.Window from an ebiten game loop.
//
// Ebiten owns the window and its graphics API, so the viewer renders into a
// viewer.EmbeddedContext: Game.Update forwards ebiten input as viewer events
// and runs one frame when the Window has work, and Game.Layout keeps the
// context size in step with the ebiten screen.
//
//	ctx := viewer.NewEmbeddedContext(0, 0, 1280, 720)
//	w, _ := viewer.NewWindow(ctx, viewer.WithEngine(scenegraph.NewEngine(nil)))
//	w.NewViewport().SetSceneData(scene)
//	if err := ebiten.RunGame(ebitenhost.NewGame(w)); err != nil {
//		log.Fatal(err)
//	}
package ebitenhost

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/gogpu/viewer"
)

// resizer is implemented by contexts embedding viewer.ContextBase.
type resizer interface {
	Resize(x, y, width, height int)
}

// Game adapts a viewer.Window to ebiten.Game.
type Game struct {
	window *viewer.Window

	// Overlay, when set, draws on top of the ebiten screen after the
	// default status line.
	Overlay func(screen *ebiten.Image)

	// HideStatus disables the frame counter drawn in the top-left corner.
	HideStatus bool

	buttons viewer.MouseButtonMask
	x, y    int
	keys    []ebiten.Key
	closed  bool
}

// NewGame returns a Game driving w.
func NewGame(w *viewer.Window) *Game {
	ebiten.SetWindowClosingHandled(true)
	return &Game{window: w}
}

// Window returns the driven window.
func (g *Game) Window() *viewer.Window { return g.window }

// Update forwards input and runs a frame when the Window needs one.
func (g *Game) Update() error {
	if g.closed {
		return ebiten.Termination
	}
	if !g.window.Initialized() {
		g.window.Init()
	}
	if ebiten.IsWindowBeingClosed() {
		g.send(&viewer.Event{Type: viewer.EventCloseWindow})
		g.closed = true
		return ebiten.Termination
	}
	g.pollInput()
	g.tick()
	return nil
}

func (g *Game) tick() {
	if !g.window.CheckNeedToDoFrame() {
		return
	}
	g.window.Advance()
	g.window.UpdateSimulationTime(viewer.UseElapsedTime)
	g.window.Frame()
}

// Draw clears the screen to the first camera's clear color and draws the
// status line and overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	if vs := g.window.Viewports(); len(vs) > 0 {
		screen.Fill(toColor(vs[0].Camera().ClearColor()))
	}
	if !g.HideStatus {
		fs := g.window.FrameStamp()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("frame %d  %.0f fps", fs.FrameNumber(), ebiten.ActualFPS()))
	}
	if g.Overlay != nil {
		g.Overlay(screen)
	}
}

// Layout resizes the context and viewports to the outside size and
// reports a resize event.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	old := g.window.GraphicsContext().Traits()
	if old.Width == outsideWidth && old.Height == outsideHeight {
		return outsideWidth, outsideHeight
	}
	if r, ok := g.window.GraphicsContext().(resizer); ok {
		r.Resize(old.X, old.Y, outsideWidth, outsideHeight)
	}
	g.window.Resized(old.Width, old.Height, outsideWidth, outsideHeight)
	g.send(&viewer.Event{
		Type:         viewer.EventResize,
		WindowWidth:  outsideWidth,
		WindowHeight: outsideHeight,
	})
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = (*Game)(nil)
