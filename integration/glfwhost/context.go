// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glfwhost

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/viewer"
)

// ErrInvalidSize is returned by New for a non-positive window size.
var ErrInvalidSize = errors.New("glfwhost: invalid window size")

// Config describes the window New creates.
type Config struct {
	Title  string
	Width  int
	Height int

	// VSync synchronizes buffer swaps with the display refresh.
	VSync bool

	// Samples requests a multisampled default framebuffer when > 0.
	Samples int
}

// Context is a viewer.GraphicsContext backed by a GLFW window.
type Context struct {
	viewer.ContextBase

	win    *glfw.Window
	target *viewer.Window
	input  inputState
}

// New initializes GLFW, opens a window and creates its OpenGL context. The
// context is left released; the Window makes it current for each frame.
func New(cfg Config) (*Context, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfwhost: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	if cfg.Samples > 0 {
		glfw.WindowHint(glfw.Samples, cfg.Samples)
	}
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfwhost: create window: %w", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("glfwhost: init opengl: %w", err)
	}
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	c := &Context{win: win}
	fbw, fbh := win.GetFramebufferSize()
	traits := viewer.Traits{
		Width:        fbw,
		Height:       fbh,
		WindowName:   cfg.Title,
		DoubleBuffer: true,
		Format:       gputypes.TextureFormatRGBA8Unorm,
	}
	queries := NewTimerQueries()
	c.Init(c, traits, viewer.NewState(0, queries))
	viewer.Logger().Info("glfwhost: context created",
		"width", fbw, "height", fbh,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"timestampBits", queries.Capabilities().TimestampBits)

	c.installCallbacks()
	glfw.DetachCurrentContext()
	return c, nil
}

// Window returns the underlying GLFW window.
func (c *Context) Window() *glfw.Window { return c.win }

// Attach routes the context's input to w. Run attaches automatically.
func (c *Context) Attach(w *viewer.Window) { c.target = w }

// MakeCurrent binds the OpenGL context to the calling thread.
func (c *Context) MakeCurrent() bool {
	if c.win == nil {
		return false
	}
	c.win.MakeContextCurrent()
	return true
}

// ReleaseContext unbinds the OpenGL context.
func (c *Context) ReleaseContext() bool {
	glfw.DetachCurrentContext()
	return true
}

// SwapBuffers presents the back buffer.
func (c *Context) SwapBuffers() {
	if c.win != nil {
		c.win.SwapBuffers()
	}
}

// WarpPointer moves the cursor to (x, y) in framebuffer pixels with Y up.
func (c *Context) WarpPointer(x, y float64) bool {
	if c.win == nil {
		return false
	}
	sx, sy := c.pixelScale()
	t := c.Traits()
	c.win.SetCursorPos(x/sx, (float64(t.Height)-y)/sy)
	c.input.x, c.input.y = x, float64(t.Height)-y
	return true
}

// pixelScale returns framebuffer pixels per screen coordinate.
func (c *Context) pixelScale() (float64, float64) {
	ww, wh := c.win.GetSize()
	fw, fh := c.win.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}

// Destroy closes the window and terminates GLFW.
func (c *Context) Destroy() {
	if c.win == nil {
		return
	}
	c.win.Destroy()
	c.win = nil
	glfw.Terminate()
}

// Run drives w until the window is closed or ctx is done. In the OnDemand
// scheme it sleeps in WaitEventsTimeout between frames that have no work.
func (c *Context) Run(ctx context.Context, w *viewer.Window) error {
	if c.win == nil {
		return viewer.ErrNoContext
	}
	c.Attach(w)
	if !w.Initialized() {
		w.Init()
	}
	for !c.win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.FrameScheme() == viewer.OnDemand && !w.CheckNeedToDoFrame() {
			glfw.WaitEventsTimeout(0.1)
		} else {
			glfw.PollEvents()
		}
		if !w.CheckNeedToDoFrame() {
			continue
		}
		w.Advance()
		w.UpdateSimulationTime(viewer.UseElapsedTime)
		w.Frame()
	}
	return nil
}

var (
	_ viewer.GraphicsContext = (*Context)(nil)
	_ viewer.PointerWarper   = (*Context)(nil)
)
