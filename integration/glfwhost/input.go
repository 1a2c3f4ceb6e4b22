// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glfwhost

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/viewer"
)

// doubleClickInterval is the longest gap, in seconds, between two presses
// of one button reported as a double click.
const doubleClickInterval = 0.3

// inputState tracks what GLFW does not report with each callback.
type inputState struct {
	buttons viewer.MouseButtonMask
	mods    viewer.ModKeyMask

	// x, y is the last pointer position in framebuffer pixels, Y down.
	x, y float64

	lastButton viewer.MouseButtonMask
	lastPress  float64
}

// press records a button press at time now and returns the event type to
// report for it.
func (s *inputState) press(b viewer.MouseButtonMask, now float64) viewer.EventType {
	s.buttons |= b
	typ := viewer.EventPush
	if b == s.lastButton && now-s.lastPress <= doubleClickInterval {
		typ = viewer.EventDoubleClick
		s.lastButton = 0
	} else {
		s.lastButton = b
	}
	s.lastPress = now
	return typ
}

func (s *inputState) release(b viewer.MouseButtonMask) {
	s.buttons &^= b
}

// motion returns the event type of a pointer move.
func (s *inputState) motion() viewer.EventType {
	if s.buttons != 0 {
		return viewer.EventDrag
	}
	return viewer.EventMove
}

func buttonMask(b glfw.MouseButton) viewer.MouseButtonMask {
	switch b {
	case glfw.MouseButtonLeft:
		return viewer.LeftMouseButton
	case glfw.MouseButtonMiddle:
		return viewer.MiddleMouseButton
	case glfw.MouseButtonRight:
		return viewer.RightMouseButton
	}
	return 0
}

func modMask(m glfw.ModifierKey) viewer.ModKeyMask {
	var mask viewer.ModKeyMask
	if m&glfw.ModShift != 0 {
		mask |= viewer.ModShift
	}
	if m&glfw.ModControl != 0 {
		mask |= viewer.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		mask |= viewer.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		mask |= viewer.ModSuper
	}
	return mask
}

func (c *Context) installCallbacks() {
	c.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		sx, sy := c.pixelScale()
		c.input.x, c.input.y = x*sx, y*sy
		c.dispatch(&viewer.Event{Type: c.input.motion()})
	})
	c.win.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		mask := buttonMask(b)
		if mask == 0 {
			return
		}
		c.input.mods = modMask(mods)
		e := &viewer.Event{Button: mask}
		switch action {
		case glfw.Press:
			e.Type = c.input.press(mask, glfw.GetTime())
		case glfw.Release:
			c.input.release(mask)
			e.Type = viewer.EventRelease
		default:
			return
		}
		c.dispatch(e)
	})
	c.win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		c.dispatch(&viewer.Event{
			Type:     viewer.EventScroll,
			Scroll:   viewer.ScrollMotionFromDelta(dx, dy),
			ScrollDX: dx,
			ScrollDY: dy,
		})
	})
	c.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		c.input.mods = modMask(mods)
		e := &viewer.Event{Key: int(key)}
		switch action {
		case glfw.Press, glfw.Repeat:
			e.Type = viewer.EventKeyDown
		case glfw.Release:
			e.Type = viewer.EventKeyUp
		default:
			return
		}
		if key == glfw.KeyEscape && action == glfw.Press {
			c.win.SetShouldClose(true)
		}
		c.dispatch(e)
	})
	c.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		old := c.Traits()
		c.Resize(old.X, old.Y, width, height)
		if c.target != nil {
			c.target.Resized(old.Width, old.Height, width, height)
		}
		c.dispatch(&viewer.Event{Type: viewer.EventResize, WindowWidth: width, WindowHeight: height})
	})
	c.win.SetCloseCallback(func(*glfw.Window) {
		c.dispatch(&viewer.Event{Type: viewer.EventCloseWindow})
	})
}

// dispatch fills in the pointer state and delivers e to the attached Window.
func (c *Context) dispatch(e *viewer.Event) {
	if c.target == nil {
		return
	}
	e.X, e.Y = c.input.x, c.input.y
	e.MouseYOrientation = viewer.YIncreasingDownwards
	e.ButtonMask = c.input.buttons
	e.ModKeyMask = c.input.mods
	e.Context = c
	e.Time = c.target.ElapsedTime()
	c.target.Event(e)
}
