package viewer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer/stats"
)

// Event routes e to the window handlers and then to the viewports.
//
// Pointer events get a pointer chain: the window entry in drawable pixels,
// the topmost camera under the pointer in its normalized range and, for
// slave cameras, the reprojected entries described on PointerData. Press,
// double click and scroll move the focus to the viewport under the pointer.
// Pointer and key events go to the focused viewport only; other events go
// to every viewport, one phase at a time: scene traversal, handlers,
// manipulator.
//
// Event reports whether any handler handled e and sets e.Handled
// accordingly.
func (w *Window) Event(e *Event) bool {
	w.frameStamp.SetReferenceTime(w.clock.elapsed())
	begin := w.clock.elapsed()

	if e.Context == nil {
		e.Context = w.ctx
	}

	focusMode, updateFocus := false, false
	switch e.Type {
	case EventKeyDown, EventKeyUp:
		focusMode = true
		if len(w.accumulated) == 0 {
			w.generatePointerData(e)
			w.accumulated = slices.Clone(e.pointers)
		} else {
			e.pointers = slices.Clone(w.accumulated)
		}
	case EventPush, EventDoubleClick, EventScroll, EventRelease:
		updateFocus = e.Type != EventRelease
		focusMode = true
		w.generatePointerData(e)
		w.accumulated = slices.Clone(e.pointers)
	case EventMove, EventDrag:
		focusMode = true
		if len(w.accumulated) < 2 {
			w.generatePointerData(e)
		} else {
			w.reprojectPointerData(w.accumulated, e)
		}
	default:
		e.pointers = slices.Clone(w.accumulated)
	}

	if updateFocus || w.focused == nil {
		w.updateFocus(e)
	}

	handled := false
	for _, h := range w.handlers {
		handled = h.Handle(e, w, w.frameStamp) || handled
	}

	if focusMode && w.focused != nil {
		v := w.focused
		w.traverseEvent(v, e)
		handled = w.handleViewportEvent(v, e) || handled
		handled = w.manipulateEvent(v, e) || handled
	} else {
		// Handlers may detach viewports; each phase walks a snapshot and
		// skips the detached ones.
		for _, v := range w.Viewports() {
			if v.Window() == w {
				w.traverseEvent(v, e)
			}
		}
		for _, v := range w.Viewports() {
			if v.Window() == w {
				handled = w.handleViewportEvent(v, e) || handled
			}
		}
		for _, v := range w.Viewports() {
			if v.Window() == w {
				handled = w.manipulateEvent(v, e) || handled
			}
		}
	}
	if handled {
		e.Handled = true
	}

	end := w.clock.elapsed()
	if w.stats.CollectStats(stats.CategoryEvent) {
		frame := w.frameStamp.FrameNumber()
		if _, ok := w.stats.Attribute(frame, stats.EventTraversalBeginTime); !ok {
			w.stats.SetAttribute(frame, stats.EventTraversalBeginTime, begin)
		}
		w.stats.SetAttribute(frame, stats.EventTraversalEndTime, end)
		taken, _ := w.stats.Attribute(frame, stats.EventTraversalTimeTaken)
		w.stats.SetAttribute(frame, stats.EventTraversalTimeTaken, taken+end-begin)
	}
	return handled
}

func (w *Window) updateFocus(e *Event) {
	pd, ok := e.lastPointer()
	if !ok || pd.Camera == nil {
		return
	}
	if v := pd.Camera.View(); v != nil && w.Contains(v) {
		w.focused = v
	}
}

// traverseEvent runs the event pass over the viewport's scene, the slaves
// rendering their own subgraphs and the callbacks of the other cameras.
func (w *Window) traverseEvent(v *Viewport, e *Event) {
	root := v.SceneData()
	if root == nil {
		return
	}
	nv := &NodeVisitor{
		Kind:            EventVisitor,
		Mode:            TraverseAll,
		TraversalMask:   AllNodes,
		FrameStamp:      w.frameStamp,
		TraversalNumber: w.frameStamp.FrameNumber(),
		Events:          []*Event{e},
		ActionAdapter:   v,
	}
	root.Accept(nv)
	for _, s := range v.slaves {
		if !s.UseMastersSceneData {
			s.Camera.Accept(nv)
		}
	}

	nv.Mode = TraverseNone
	v.camera.Accept(nv)
	for _, s := range v.slaves {
		if s.UseMastersSceneData {
			s.Camera.Accept(nv)
		}
	}
}

func (w *Window) handleViewportEvent(v *Viewport, e *Event) bool {
	handled := false
	for _, h := range v.handlers {
		handled = h.Handle(e, v, w.frameStamp) || handled
	}
	return handled
}

func (w *Window) manipulateEvent(v *Viewport, e *Event) bool {
	if v.manipulator == nil {
		return false
	}
	return v.manipulator.Handle(e, v, w.frameStamp)
}

// windowPointer flips e to Y up and appends the window entry of the chain.
// It returns the pointer position in drawable pixels.
func (w *Window) windowPointer(e *Event) (x, y float64) {
	t := w.ctx.Traits()
	if e.MouseYOrientation == YIncreasingDownwards {
		e.Y = float64(t.Height) - e.Y
		e.MouseYOrientation = YIncreasingUpwards
	}
	e.addPointerData(PointerData{
		Context: w.ctx,
		X:       e.X,
		XMax:    float64(t.Width),
		Y:       e.Y,
		YMax:    float64(t.Height),
	})
	return e.X, e.Y
}

// generatePointerData builds the pointer chain of e by hit testing the
// cameras of every viewport.
func (w *Window) generatePointerData(e *Event) {
	if e.Context != w.ctx {
		return
	}
	x, y := w.windowPointer(e)

	var active []*Camera
	for _, v := range w.viewports {
		for _, c := range v.cameras() {
			if !c.AllowEventFocus() || c.RenderTarget() != FrameBuffer {
				continue
			}
			if r, ok := c.Viewport(); ok && x >= r.X && y >= r.Y && x < r.X+r.Width && y < r.Y+r.Height {
				active = append(active, c)
			}
		}
	}
	if len(active) == 0 {
		return
	}
	sortByRenderOrder(active)
	w.addCameraPointerData(e, active[len(active)-1], x, y)
}

// reprojectPointerData builds the pointer chain of e against the camera
// recorded in src without hit testing, so drags keep their camera when the
// pointer leaves its viewport.
func (w *Window) reprojectPointerData(src []PointerData, e *Event) {
	if e.Context != w.ctx {
		return
	}
	x, y := w.windowPointer(e)
	if len(src) < 2 || src[1].Camera == nil {
		return
	}
	w.addCameraPointerData(e, src[1].Camera, x, y)
}

func (w *Window) addCameraPointerData(e *Event, c *Camera, x, y float64) {
	r, ok := c.Viewport()
	if !ok || r.Width <= 0 || r.Height <= 0 {
		return
	}
	e.addPointerData(PointerData{
		Context: w.ctx,
		Camera:  c,
		X:       (x-r.X)/r.Width*2 - 1,
		XMin:    -1,
		XMax:    1,
		Y:       (y-r.Y)/r.Height*2 - 1,
		YMin:    -1,
		YMax:    1,
	})

	if v := c.View(); v != nil && c != v.Camera() {
		w.generateSlavePointerData(e, v, c, x, y)
	}
}

// generateSlavePointerData extends the chain of a pointer over slave c. A
// relative slave sharing the master's scene maps the pointer into the
// master camera; a slave with its own subgraph looks for a render target
// texture under the pointer and maps into the slave rendering it.
func (w *Window) generateSlavePointerData(e *Event, v *Viewport, c *Camera, x, y float64) {
	s, ok := v.slaveFor(c)
	if !ok {
		return
	}

	switch {
	case c.ReferenceFrame() == RelativeRF && s.UseMastersSceneData:
		master := v.Camera()
		masterVPW := cameraMatrix(master, WindowFrame)
		localVPW := cameraMatrix(c, WindowFrame)
		if localVPW.Det() == 0 {
			return
		}
		p := mgl64.TransformCoordinate(mgl64.Vec3{x, y, 0}, masterVPW.Mul4(localVPW.Inv()))

		pd := PointerData{Context: w.ctx, Camera: master, X: p.X(), XMin: -1, XMax: 1, Y: p.Y(), YMin: -1, YMax: 1}
		if r, ok := master.Viewport(); ok {
			pd.XMin, pd.XMax = r.X, r.X+r.Width
			pd.YMin, pd.YMax = r.Y, r.Y+r.Height
		}
		e.addPointerData(pd)

	case !s.UseMastersSceneData:
		hits := ComputeIntersections(c, WindowFrame, x, y, AllNodes)
		if len(hits) == 0 {
			return
		}
		tex, tc, ok := hits[0].TextureLookup()
		if !ok {
			return
		}
		for _, rtt := range v.slaves {
			if rtt.Camera.ColorAttachment() != tex {
				continue
			}
			switch tex.Kind {
			case TextureRectangle:
				e.addPointerData(PointerData{
					Context: w.ctx, Camera: rtt.Camera,
					X: tc.X(), XMax: float64(tex.Width),
					Y: tc.Y(), YMax: float64(tex.Height),
				})
			case TextureCubeMap:
				Logger().Warn("viewer: pointer lookup into cube map render target is not supported",
					"camera", rtt.Camera.Name(), "texture", tex.Name)
			default:
				e.addPointerData(PointerData{
					Context: w.ctx, Camera: rtt.Camera,
					X: tc.X(), XMax: 1,
					Y: tc.Y(), YMax: 1,
				})
			}
		}
	}
}
