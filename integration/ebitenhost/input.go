// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ebitenhost

import (
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/viewer"
)

var mouseButtons = []struct {
	ebiten ebiten.MouseButton
	mask   viewer.MouseButtonMask
}{
	{ebiten.MouseButtonLeft, viewer.LeftMouseButton},
	{ebiten.MouseButtonMiddle, viewer.MiddleMouseButton},
	{ebiten.MouseButtonRight, viewer.RightMouseButton},
}

// pollInput turns this tick's ebiten input into viewer events.
func (g *Game) pollInput() {
	x, y := ebiten.CursorPosition()
	if x != g.x || y != g.y {
		g.x, g.y = x, y
		typ := viewer.EventMove
		if g.buttons != 0 {
			typ = viewer.EventDrag
		}
		g.send(&viewer.Event{Type: typ})
	}

	for _, b := range mouseButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(b.ebiten):
			g.buttons |= b.mask
			g.send(&viewer.Event{Type: viewer.EventPush, Button: b.mask})
		case inpututil.IsMouseButtonJustReleased(b.ebiten):
			g.buttons &^= b.mask
			g.send(&viewer.Event{Type: viewer.EventRelease, Button: b.mask})
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		g.send(&viewer.Event{
			Type:     viewer.EventScroll,
			Scroll:   viewer.ScrollMotionFromDelta(dx, dy),
			ScrollDX: dx,
			ScrollDY: dy,
		})
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.send(&viewer.Event{Type: viewer.EventKeyDown, Key: int(k)})
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.send(&viewer.Event{Type: viewer.EventKeyUp, Key: int(k)})
	}
}

// send completes e with the pointer and modifier state and hands it to the
// Window.
func (g *Game) send(e *viewer.Event) {
	e.X, e.Y = float64(g.x), float64(g.y)
	e.MouseYOrientation = viewer.YIncreasingDownwards
	e.ButtonMask = g.buttons
	e.ModKeyMask = modKeys(ebiten.IsKeyPressed)
	e.Time = g.window.ElapsedTime()
	g.window.Event(e)
}

// modKeys reads the modifier mask through pressed, which reports whether
// a key is held.
func modKeys(pressed func(ebiten.Key) bool) viewer.ModKeyMask {
	var m viewer.ModKeyMask
	if pressed(ebiten.KeyShift) {
		m |= viewer.ModShift
	}
	if pressed(ebiten.KeyControl) {
		m |= viewer.ModCtrl
	}
	if pressed(ebiten.KeyAlt) {
		m |= viewer.ModAlt
	}
	if pressed(ebiten.KeyMeta) {
		m |= viewer.ModSuper
	}
	return m
}

func toColor(c gputypes.Color) color.Color {
	clamp := func(v float64) uint8 {
		return uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return color.NRGBA{R: clamp(float64(c.R)), G: clamp(float64(c.G)), B: clamp(float64(c.B)), A: clamp(float64(c.A))}
}
