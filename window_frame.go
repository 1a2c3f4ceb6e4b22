package viewer

import (
	"github.com/gogpu/viewer/stats"
)

// CheckNeedToDoFrame reports whether Frame has work to do. It is always
// true in the Continuous scheme; in OnDemand it is true while a redraw or
// continuous update is requested, window update operations are queued, or
// a viewport needs an update traversal or a redraw.
func (w *Window) CheckNeedToDoFrame() bool {
	if w.scheme == Continuous {
		return true
	}
	if w.requestContinuous || w.redrawRequested || len(w.continuous) > 0 {
		return true
	}
	if w.updateOps.Len() > 0 {
		return true
	}
	for _, v := range w.viewports {
		if v.RequiresUpdateSceneGraph() || v.RequiresRedraw() {
			return true
		}
	}
	return false
}

// Advance closes the current frame and starts the next one.
//
// With the "frame_rate" category enabled, the duration and rate of the
// frame being closed are recorded under its number, measured from its
// "Reference time" to now, and now becomes the "Reference time" of the
// next frame. Rates are therefore available one frame late.
func (w *Window) Advance() {
	frame := w.frameStamp.FrameNumber()
	if w.stats.CollectStats(stats.CategoryFrameRate) {
		begin, _ := w.stats.Attribute(frame, stats.ReferenceTime)
		end := w.clock.elapsed()
		d := end - begin
		w.stats.SetAttribute(frame, stats.FrameDuration, d)
		w.stats.SetAttribute(frame, stats.FrameRate, 1/d)
		w.stats.SetAttribute(frame+1, stats.ReferenceTime, end)
	}
	w.frameStamp.SetFrameNumber(frame + 1)
}

// UpdateSimulationTime sets the simulation time of the frame stamp. Pass
// UseElapsedTime to follow the window clock.
func (w *Window) UpdateSimulationTime(t float64) {
	if t == UseElapsedTime {
		t = w.clock.elapsed()
	}
	w.frameStamp.SetSimulationTime(t)
}

// Frame runs the update and rendering traversals of the current frame.
// Frame must not be called again while it runs; doing so panics.
func (w *Window) Frame() {
	if w.inFrame {
		invariant("Frame called while a frame is in progress")
	}
	w.inFrame = true
	defer func() { w.inFrame = false }()

	w.redrawRequested = false
	w.frameStamp.SetReferenceTime(w.clock.elapsed())

	w.UpdateTraversal()
	w.RenderingTraversals()
}

// UpdateTraversal brings scenes and cameras up to date for the frame.
func (w *Window) UpdateTraversal() {
	begin := w.clock.elapsed()
	frame := w.frameStamp.FrameNumber()

	nv := &NodeVisitor{
		Kind:            UpdateVisitor,
		Mode:            TraverseAll,
		TraversalMask:   AllNodes,
		FrameStamp:      w.frameStamp,
		TraversalNumber: frame,
		ActionAdapter:   w,
	}
	for _, s := range w.Scenes(false) {
		s.UpdateSceneGraph(nv)
	}

	w.updateOps.Run(w)

	for _, v := range w.Viewports() {
		if v.Window() != w {
			continue
		}
		for _, s := range v.slaves {
			if !s.UseMastersSceneData {
				s.Camera.Accept(nv)
			}
		}

		// The scene was updated above; only run the camera callbacks.
		nv.Mode = TraverseNone
		v.camera.Accept(nv)
		for _, s := range v.slaves {
			if s.UseMastersSceneData {
				s.Camera.Accept(nv)
			}
		}
		nv.Mode = TraverseAll

		if m := v.manipulator; m != nil {
			v.SetFusionDistance(m.FusionDistance())
			m.UpdateCamera(v.camera)
		}
		v.UpdateSlaves()
	}

	if w.stats.CollectStats(stats.CategoryUpdate) {
		end := w.clock.elapsed()
		w.stats.SetAttribute(frame, stats.UpdateTraversalBeginTime, begin)
		w.stats.SetAttribute(frame, stats.UpdateTraversalEndTime, end)
		w.stats.SetAttribute(frame, stats.UpdateTraversalTimeTaken, end-begin)
	}
}

// RenderingTraversals draws every viewport into the context: it makes the
// context current, draws the cameras, runs the context operations, swaps
// and releases the context.
func (w *Window) RenderingTraversals() {
	begin := w.clock.elapsed()
	frame := w.frameStamp.FrameNumber()

	scenes := w.Scenes(true)
	for _, s := range scenes {
		s.DatabasePager().SignalBeginFrame(w.frameStamp)
		s.ImagePager().SignalBeginFrame(w.frameStamp)
		if root := s.Root(); root != nil {
			root.Bound()
		}
	}

	if !w.ctx.MakeCurrent() {
		Logger().Warn("viewer: cannot make context current, frame skipped", "frame", frame)
		for _, s := range scenes {
			s.DatabasePager().SignalEndFrame()
			s.ImagePager().SignalEndFrame()
		}
		return
	}
	w.viewportsRenderingTraversals()
	w.ctx.RunOperations()
	w.ctx.SwapBuffers()
	if st := w.ctx.State(); st != nil {
		st.FrameCompleted()
	}
	w.ctx.ReleaseContext()

	for _, s := range scenes {
		s.DatabasePager().SignalEndFrame()
		s.ImagePager().SignalEndFrame()
	}

	if w.stats.CollectStats(stats.CategoryRendering) {
		end := w.clock.elapsed()
		w.stats.SetAttribute(frame, stats.RenderingTraversalsBeginTime, begin)
		w.stats.SetAttribute(frame, stats.RenderingTraversalsEndTime, end)
		w.stats.SetAttribute(frame, stats.RenderingTraversalsTimeTaken, end-begin)
	}

	w.checkGPUTiming()
	w.statsPolicy.CollectWindowStats(w)
}

// viewportsRenderingTraversals draws the master cameras in render order,
// each together with its slaves in render order.
func (w *Window) viewportsRenderingTraversals() {
	masters := make([]*Camera, 0, len(w.viewports))
	for _, v := range w.viewports {
		masters = append(masters, v.camera)
	}
	sortByRenderOrder(masters)

	for _, m := range masters {
		cams := m.View().cameras()
		sortByRenderOrder(cams)
		for _, c := range cams {
			c.rendererFor(w.engine, w.rendererStats).Draw(w.ctx)
		}
	}
}

// checkGPUTiming turns GPU statistics off after the first rendered frame
// when no renderer could obtain a timer query.
func (w *Window) checkGPUTiming() {
	if w.gpuChecked || len(w.viewports) == 0 {
		return
	}
	w.gpuChecked = true

	for _, v := range w.viewports {
		for _, c := range v.cameras() {
			if r := c.Renderer(); r != nil && r.TimerQuery() != nil {
				return
			}
		}
	}

	sinks := []*stats.Stats{w.stats}
	for _, v := range w.viewports {
		sinks = append(sinks, v.stats)
		for _, c := range v.cameras() {
			if st := c.Stats(); st != nil {
				sinks = append(sinks, st)
			}
		}
	}
	enabled := false
	for _, st := range sinks {
		enabled = enabled || st.CollectStats(stats.CategoryGPU)
		st.SetCollectStats(stats.CategoryGPU, false)
	}
	if enabled {
		Logger().Info("viewer: no GPU timer queries available, gpu statistics disabled")
	}
}
