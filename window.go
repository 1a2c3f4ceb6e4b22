package viewer

import (
	"slices"

	"github.com/gogpu/viewer/stats"
)

// FrameScheme decides whether a Window renders on every tick or only when
// something changed.
type FrameScheme int

const (
	// Continuous renders a frame on every tick.
	Continuous FrameScheme = iota
	// OnDemand renders only when CheckNeedToDoFrame reports work.
	OnDemand
)

// Object is the identity exposed to tools that list live viewer objects.
type Object interface {
	ClassName() string
	LibraryName() string
}

// Window drives the frames of one graphics context shared by several
// viewports. It owns the frame clock, routes input events to viewports and
// runs the update and rendering traversals.
//
// A Window is driven by a single goroutine: the host calls Event for each
// input event and, once per tick, Advance followed by Frame when
// CheckNeedToDoFrame allows it. Only the operation queues may be fed from
// other goroutines.
type Window struct {
	ctx        GraphicsContext
	clock      frameClock
	frameStamp *FrameStamp

	viewports  []*Viewport
	continuous map[*Viewport]struct{}
	focused    *Viewport

	initialized bool
	inFrame     bool
	gpuChecked  bool

	scheme            FrameScheme
	requestContinuous bool
	redrawRequested   bool

	stats     *stats.Stats
	handlers  []EventHandler
	updateOps OperationQueue[*Window]

	// accumulated is the pointer chain of the last press/release, reused by
	// key events and reprojected by moves.
	accumulated []PointerData

	registry      *SceneRegistry
	engine        Engine
	addPolicy     AddViewportPolicy
	removePolicy  RemoveViewportPolicy
	statsPolicy   WindowStatsPolicy
	rendererStats RendererStatsPolicy
}

// NewWindow creates a window driving ctx.
func NewWindow(ctx GraphicsContext, opts ...WindowOption) (*Window, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	o := defaultWindowOptions()
	for _, opt := range opts {
		opt(&o)
	}

	w := &Window{
		ctx:           ctx,
		clock:         newFrameClock(o.clock),
		frameStamp:    &FrameStamp{},
		continuous:    make(map[*Viewport]struct{}),
		scheme:        o.scheme,
		stats:         o.stats,
		registry:      o.registry,
		engine:        o.engine,
		addPolicy:     o.addPolicy,
		removePolicy:  o.removePolicy,
		statsPolicy:   o.statsPolicy,
		rendererStats: o.rendererStats,
	}
	if st := ctx.State(); st != nil {
		st.setClock(w.clock.elapsed)
	}
	return w, nil
}

// ClassName implements Object.
func (w *Window) ClassName() string { return "Window" }

// LibraryName implements Object.
func (w *Window) LibraryName() string { return "viewer" }

// GraphicsContext returns the driven context.
func (w *Window) GraphicsContext() GraphicsContext { return w.ctx }

// FrameStamp returns the window frame stamp shared with its viewports.
func (w *Window) FrameStamp() *FrameStamp { return w.frameStamp }

// Stats returns the window statistics sink.
func (w *Window) Stats() *stats.Stats { return w.stats }

// ElapsedTime returns seconds since the window was created.
func (w *Window) ElapsedTime() float64 { return w.clock.elapsed() }

// SetFrameScheme switches between continuous and on-demand rendering.
func (w *Window) SetFrameScheme(s FrameScheme) { w.scheme = s }

// FrameScheme returns the rendering scheme.
func (w *Window) FrameScheme() FrameScheme { return w.scheme }

// Initialized reports whether Init has been called.
func (w *Window) Initialized() bool { return w.initialized }

// Init initializes every attached viewport with the drawable size.
// Viewports added later are initialized on attach. Calling Init again does
// nothing.
func (w *Window) Init() {
	if w.initialized {
		return
	}
	w.initialized = true

	t := w.ctx.Traits()
	for _, v := range w.viewports {
		v.Init(t.Width, t.Height)
	}
	Logger().Info("viewer: window initialized", "width", t.Width, "height", t.Height, "viewports", len(w.viewports))
}

// NewViewport creates a viewport sharing scenes through the window's
// registry and attaches it.
func (w *Window) NewViewport(opts ...ViewportOption) *Viewport {
	v := NewViewport(append([]ViewportOption{WithViewportRegistry(w.registry)}, opts...)...)
	w.AddViewport(v)
	return v
}

// AddViewport attaches v through the add-viewport policy. It returns false
// when v is already attached.
func (w *Window) AddViewport(v *Viewport) bool {
	return w.addPolicy.AddViewport(w, v)
}

// RemoveViewport detaches v through the remove-viewport policy.
func (w *Window) RemoveViewport(v *Viewport) bool {
	return w.removePolicy.RemoveViewport(w, v)
}

// Contains reports whether v is attached.
func (w *Window) Contains(v *Viewport) bool { return w.indexOf(v) >= 0 }

func (w *Window) indexOf(v *Viewport) int {
	if v == nil {
		return -1
	}
	return slices.Index(w.viewports, v)
}

// Viewports returns a copy of the attached viewports in attach order.
func (w *Window) Viewports() []*Viewport { return slices.Clone(w.viewports) }

// FocusedViewport returns the viewport receiving focused events, or nil.
func (w *Window) FocusedViewport() *Viewport { return w.focused }

// Scenes returns the distinct scenes of the attached viewports. With
// onlyValid set, scenes without a root are skipped.
func (w *Window) Scenes(onlyValid bool) []*Scene {
	var scenes []*Scene
	for _, v := range w.viewports {
		s := v.Scene()
		if s == nil || (onlyValid && s.Root() == nil) || slices.Contains(scenes, s) {
			continue
		}
		scenes = append(scenes, s)
	}
	return scenes
}

// AddEventHandler appends a window-level handler unless already present.
func (w *Window) AddEventHandler(h EventHandler) {
	if h == nil || slices.Contains(w.handlers, h) {
		return
	}
	w.handlers = append(w.handlers, h)
}

// RemoveEventHandler removes a window-level handler.
func (w *Window) RemoveEventHandler(h EventHandler) {
	if i := slices.Index(w.handlers, h); i >= 0 {
		w.handlers = slices.Delete(w.handlers, i, i+1)
	}
}

// EventHandlers returns the window-level handlers.
func (w *Window) EventHandlers() []EventHandler { return w.handlers }

// AddUpdateOperation queues an operation for the next update traversal.
// It may be called from any goroutine.
func (w *Window) AddUpdateOperation(op Operation[*Window]) {
	if op != nil {
		w.updateOps.Add(op)
	}
}

// RemoveUpdateOperation removes a queued update operation.
func (w *Window) RemoveUpdateOperation(op Operation[*Window]) {
	if op != nil {
		w.updateOps.Remove(op)
	}
}

// RequestRedraw asks for one more frame in on-demand mode.
func (w *Window) RequestRedraw() { w.redrawRequested = true }

// RequestContinuousUpdate keeps frames coming in on-demand mode until it is
// called again with false.
func (w *Window) RequestContinuousUpdate(on bool) { w.requestContinuous = on }

// RequestWarpPointer moves the pointer to (x, y) in drawable pixels with Y
// up. It reports false when the context cannot warp the pointer.
func (w *Window) RequestWarpPointer(x, y float64) bool {
	p, ok := w.ctx.(PointerWarper)
	if !ok {
		return false
	}
	return p.WarpPointer(x, y)
}

// ComputeIntersections is not available on a Window, whose events are not
// bound to one camera. It always reports false; use the Viewport method or
// ComputeEventIntersections.
func (w *Window) ComputeIntersections(*Event, NodeMask) ([]Intersection, bool) {
	return nil, false
}

func (w *Window) requestViewportRedraw(*Viewport) { w.RequestRedraw() }

func (w *Window) requestViewportContinuousUpdate(v *Viewport, on bool) {
	if on && w.Contains(v) {
		w.continuous[v] = struct{}{}
		return
	}
	delete(w.continuous, v)
}

func (w *Window) requestViewportWarpPointer(_ *Viewport, x, y float64) bool {
	return w.RequestWarpPointer(x, y)
}

// Resized forwards a drawable resize to every viewport.
func (w *Window) Resized(oldWidth, oldHeight, width, height int) {
	for _, v := range w.viewports {
		v.Resized(oldWidth, oldHeight, width, height)
	}
}

var (
	_ Object        = (*Window)(nil)
	_ ActionAdapter = (*Window)(nil)
	_ ActionAdapter = (*Viewport)(nil)
)
