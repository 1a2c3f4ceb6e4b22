package viewer

import "github.com/gogpu/viewer/stats"

// The policies below let applications replace or wrap the built-in
// behavior of Window, Viewport and Renderer. Each has a Default
// implementation that custom policies may call.

// AddViewportPolicy attaches a viewport to a window.
type AddViewportPolicy interface {
	AddViewport(w *Window, v *Viewport) bool
}

// RemoveViewportPolicy detaches a viewport from a window.
type RemoveViewportPolicy interface {
	RemoveViewport(w *Window, v *Viewport) bool
}

// WindowStatsPolicy runs at the end of every rendered frame.
type WindowStatsPolicy interface {
	CollectWindowStats(w *Window)
}

// InitPolicy initializes a viewport for a drawable size.
type InitPolicy interface {
	Init(v *Viewport, width, height int)
}

// ResizedPolicy adapts a viewport to a drawable resize.
type ResizedPolicy interface {
	Resized(v *Viewport, oldWidth, oldHeight, width, height int)
}

// SceneDataPolicy assigns a scene graph root to a viewport.
type SceneDataPolicy interface {
	SetSceneData(v *Viewport, root Node)
}

// RendererStatsPolicy records per-camera statistics after each draw.
type RendererStatsPolicy interface {
	CollectRendererStats(r *Renderer, s *stats.Stats, frame uint64)
}

// DefaultAddViewport attaches v unless it is nil or already attached, hands
// it the window frame stamp and initializes it when the window already is.
type DefaultAddViewport struct{}

func (DefaultAddViewport) AddViewport(w *Window, v *Viewport) bool {
	if v == nil || w.Contains(v) {
		return false
	}
	v.SetWindow(w)
	w.viewports = append(w.viewports, v)
	v.setFrameStamp(w.frameStamp)

	if w.initialized {
		t := w.ctx.Traits()
		v.Init(t.Width, t.Height)
	}
	return true
}

// DefaultRemoveViewport detaches v and forgets its pending requests.
type DefaultRemoveViewport struct{}

func (DefaultRemoveViewport) RemoveViewport(w *Window, v *Viewport) bool {
	i := w.indexOf(v)
	if i < 0 {
		return false
	}
	v.setFrameStamp(nil)
	v.SetWindow(nil)

	w.viewports = append(w.viewports[:i], w.viewports[i+1:]...)
	delete(w.continuous, v)
	if w.focused == v {
		w.focused = nil
	}
	return true
}

// DefaultWindowStats records whole-graph statistics for every scene when
// the window collects the "scene" category.
type DefaultWindowStats struct{}

func (DefaultWindowStats) CollectWindowStats(w *Window) {
	if w.stats == nil || !w.stats.CollectStats(stats.CategoryScene) {
		return
	}
	frame := w.frameStamp.FrameNumber()
	for _, s := range w.Scenes(true) {
		c, ok := s.Root().(GraphStatisticsCollector)
		if !ok {
			continue
		}
		var gs GraphStatistics
		c.CollectGraphStatistics(&gs)
		gs.Record(s.Stats(), frame)
	}
}

// DefaultRendererStats records the visible set under "scene".
type DefaultRendererStats struct{}

func (DefaultRendererStats) CollectRendererStats(r *Renderer, s *stats.Stats, frame uint64) {
	if !s.CollectStats(stats.CategoryScene) || r.SceneView() == nil {
		return
	}
	rs := r.SceneView().Statistics()
	s.SetAttribute(frame, stats.VisibleVertexCount, float64(rs.Vertices))
	s.SetAttribute(frame, stats.VisibleDrawableCount, float64(rs.Drawables))
	s.SetAttribute(frame, stats.VisibleGeometryCount, float64(rs.Geometry))
	s.SetAttribute(frame, stats.VisibleLightCount, float64(rs.Lights))
	s.SetAttribute(frame, stats.VisiblePrimitives, float64(rs.Primitives))
}
