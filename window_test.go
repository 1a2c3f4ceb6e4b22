package viewer

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer/stats"
)

func TestNewWindowNilContext(t *testing.T) {
	w, err := NewWindow(nil)
	if !errors.Is(err, ErrNoContext) {
		t.Fatalf("NewWindow(nil) error = %v, want ErrNoContext", err)
	}
	if w != nil {
		t.Error("NewWindow(nil) returned a window")
	}
}

func TestAdvanceFrameNumber(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)

	if got := w.FrameStamp().FrameNumber(); got != 0 {
		t.Fatalf("initial frame number = %d, want 0", got)
	}
	for i := uint64(1); i <= 10; i++ {
		w.Advance()
		if got := w.FrameStamp().FrameNumber(); got != i {
			t.Fatalf("frame number after %d advances = %d, want %d", i, got, i)
		}
	}
}

func TestAdvanceFrameRate(t *testing.T) {
	w, _, clock, _ := newTestWindow(640, 480, WithStats(stats.New("Window", stats.WithCategories(stats.CategoryFrameRate))))
	st := w.Stats()

	steps := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 16 * time.Millisecond, 40 * time.Millisecond}
	for _, d := range steps {
		clock.advance(d)
		w.Advance()
	}

	for n := uint64(0); n+1 < uint64(len(steps)); n++ {
		ref0, ok0 := st.Attribute(n, stats.ReferenceTime)
		ref1, ok1 := st.Attribute(n+1, stats.ReferenceTime)
		if n > 0 && !ok0 {
			t.Fatalf("frame %d has no reference time", n)
		}
		if !ok1 {
			t.Fatalf("frame %d has no reference time", n+1)
		}
		rate, ok := st.Attribute(n, stats.FrameRate)
		if !ok {
			t.Fatalf("frame %d has no frame rate", n)
		}
		want := 1 / (ref1 - ref0)
		if math.Abs(rate-want) > 1e-9 {
			t.Errorf("frame %d rate = %v, want %v", n, rate, want)
		}
		dur, _ := st.Attribute(n, stats.FrameDuration)
		if math.Abs(dur-steps[n].Seconds()) > 1e-9 {
			t.Errorf("frame %d duration = %v, want %v", n, dur, steps[n].Seconds())
		}
	}
}

func TestAdvanceWithoutFrameRateCategory(t *testing.T) {
	w, _, clock, _ := newTestWindow(640, 480)
	clock.advance(time.Second)
	w.Advance()

	if _, ok := w.Stats().Attribute(0, stats.FrameRate); ok {
		t.Error("frame rate recorded with the category disabled")
	}
}

func TestAddViewportIdempotent(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	v := NewViewport()

	if !w.AddViewport(v) {
		t.Fatal("first AddViewport returned false")
	}
	if w.AddViewport(v) {
		t.Error("second AddViewport returned true")
	}
	if n := len(w.Viewports()); n != 1 {
		t.Errorf("len(Viewports()) = %d, want 1", n)
	}
	if v.Window() != w {
		t.Error("viewport window not set")
	}
	if v.FrameStamp() != w.FrameStamp() {
		t.Error("viewport frame stamp not bound to the window")
	}
}

func TestAddViewportNil(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	if w.AddViewport(nil) {
		t.Error("AddViewport(nil) returned true")
	}
}

func TestAddViewportAfterInit(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	before := NewViewport()
	w.AddViewport(before)
	if _, ok := before.Camera().Viewport(); ok {
		t.Fatal("viewport initialized before Window.Init")
	}

	w.Init()
	r, ok := before.Camera().Viewport()
	if !ok || r != (Rect{Width: 640, Height: 480}) {
		t.Errorf("viewport after Init = %+v, %v", r, ok)
	}

	m := &testManipulator{}
	after := NewViewport()
	after.SetCameraManipulator(m, false)
	w.AddViewport(after)
	if _, ok := after.Camera().Viewport(); !ok {
		t.Error("viewport added after Init was not initialized")
	}
	if m.inits != 1 {
		t.Errorf("manipulator inits = %d, want 1", m.inits)
	}
}

func TestInitOnce(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	m := &testManipulator{}
	v := w.NewViewport()
	v.SetCameraManipulator(m, false)

	w.Init()
	w.Init()
	if m.inits != 1 {
		t.Errorf("manipulator inits = %d, want 1", m.inits)
	}
	if !w.Initialized() {
		t.Error("Initialized() = false after Init")
	}
}

func TestRemoveViewport(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480, WithFrameScheme(OnDemand))
	v := w.NewViewport()
	v.RequestContinuousUpdate(true)
	if !w.CheckNeedToDoFrame() {
		t.Fatal("continuous update request not seen")
	}

	if !w.RemoveViewport(v) {
		t.Fatal("RemoveViewport returned false")
	}
	if w.RemoveViewport(v) {
		t.Error("second RemoveViewport returned true")
	}
	if v.Window() != nil || v.FrameStamp() != nil {
		t.Error("viewport still bound after removal")
	}
	if w.CheckNeedToDoFrame() {
		t.Error("continuous update request survived removal")
	}

	// A detached viewport can join another window.
	other, _, _, _ := newTestWindow(320, 240)
	if !other.AddViewport(v) {
		t.Error("re-attaching a removed viewport failed")
	}
}

func TestViewportSetWindowTwicePanics(t *testing.T) {
	w1, _, _, _ := newTestWindow(640, 480)
	w2, _, _, _ := newTestWindow(640, 480)
	v := w1.NewViewport()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("attaching a viewport to a second window did not panic")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, "viewer: ") {
			t.Errorf("panic = %v, want viewer-prefixed message", r)
		}
	}()
	w2.AddViewport(v)
}

func TestCheckNeedToDoFrame(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *Window, v *Viewport, root *testNode)
	}{
		{"continuous scheme", func(w *Window, _ *Viewport, _ *testNode) { w.SetFrameScheme(Continuous) }},
		{"window continuous update", func(w *Window, _ *Viewport, _ *testNode) { w.RequestContinuousUpdate(true) }},
		{"viewport continuous update", func(_ *Window, v *Viewport, _ *testNode) { v.RequestContinuousUpdate(true) }},
		{"redraw request", func(_ *Window, v *Viewport, _ *testNode) { v.RequestRedraw() }},
		{"window update operation", func(w *Window, _ *Viewport, _ *testNode) {
			w.AddUpdateOperation(NewOperation("op", false, func(*Window) {}))
		}},
		{"scene update operation", func(_ *Window, v *Viewport, _ *testNode) {
			v.Scene().AddUpdateOperation(NewOperation("op", false, func(*Scene) {}))
		}},
		{"scene update callbacks", func(_ *Window, _ *Viewport, root *testNode) { root.update = true }},
		{"camera update callback", func(_ *Window, v *Viewport, _ *testNode) {
			v.Camera().SetUpdateCallback(func(*Camera, *NodeVisitor) {})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _, _ := newTestWindow(640, 480, WithFrameScheme(OnDemand))
			v := w.NewViewport()
			root := &testNode{name: "root"}
			v.SetSceneData(root)

			if w.CheckNeedToDoFrame() {
				t.Fatal("CheckNeedToDoFrame() = true with nothing pending")
			}
			tt.setup(w, v, root)
			if !w.CheckNeedToDoFrame() {
				t.Error("CheckNeedToDoFrame() = false")
			}
		})
	}
}

func TestRedrawRequestConsumedByFrame(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480, WithFrameScheme(OnDemand))
	w.NewViewport()
	w.Init()

	w.RequestRedraw()
	if !w.CheckNeedToDoFrame() {
		t.Fatal("redraw request not seen")
	}
	w.Frame()
	if w.CheckNeedToDoFrame() {
		t.Error("redraw request survived a frame")
	}
}

func TestFrameContextCallOrder(t *testing.T) {
	w, ctx, _, _ := newTestWindow(640, 480)
	v := w.NewViewport()
	v.Camera().name = "main"
	w.Init()

	w.Frame()

	want := []string{"make-current", "draw main", "run-operations", "swap", "release"}
	if !slices.Equal(ctx.calls, want) {
		t.Errorf("context calls = %v, want %v", ctx.calls, want)
	}
	if ctx.Swaps() != 1 {
		t.Errorf("Swaps() = %d, want 1", ctx.Swaps())
	}
}

func TestFrameSkippedWhenContextNotCurrent(t *testing.T) {
	w, ctx, _, engine := newTestWindow(640, 480)
	w.NewViewport()
	w.Init()
	ctx.refuse = true

	w.Frame()
	if len(engine.views) != 0 {
		t.Error("cameras drawn without a current context")
	}
	if ctx.Swaps() != 0 {
		t.Error("buffers swapped without a current context")
	}
}

func TestFrameRenderOrder(t *testing.T) {
	w, ctx, _, _ := newTestWindow(640, 480)

	post := w.NewViewport()
	post.Camera().name = "post"
	post.Camera().SetRenderOrder(PostRender, 0)

	nested := w.NewViewport()
	nested.Camera().name = "nested"

	pre := w.NewViewport()
	pre.Camera().name = "pre"
	pre.Camera().SetRenderOrder(PreRender, 0)

	hud := NewCamera("hud")
	hud.SetRenderOrder(PostRender, 1)
	nested.AddSlave(hud, mgl64.Ident4(), mgl64.Ident4(), true)
	rtt := NewCamera("rtt")
	rtt.SetRenderOrder(PreRender, 0)
	nested.AddSlave(rtt, mgl64.Ident4(), mgl64.Ident4(), false)

	w.Init()
	w.Frame()

	var draws []string
	for _, c := range ctx.calls {
		if name, ok := strings.CutPrefix(c, "draw "); ok {
			draws = append(draws, name)
		}
	}
	want := []string{"pre", "rtt", "nested", "hud", "post"}
	if !slices.Equal(draws, want) {
		t.Errorf("draw order = %v, want %v", draws, want)
	}
}

func TestFrameReentrantPanics(t *testing.T) {
	w, _, _, engine := newTestWindow(640, 480)
	w.NewViewport()
	w.Init()

	engine.onDraw = func(*Camera) { w.Frame() }
	func() {
		defer func() {
			r := recover()
			msg, _ := r.(string)
			if !strings.Contains(msg, "in progress") {
				t.Errorf("panic = %v, want reentrancy message", r)
			}
		}()
		w.Frame()
	}()

	// The window recovers once the outer call has unwound.
	engine.onDraw = nil
	w.Frame()
}

func TestUpdateTraversal(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480, WithStats(stats.New("Window", stats.WithCategories(stats.CategoryUpdate))))
	v := w.NewViewport()
	root := &testNode{name: "root"}
	v.SetSceneData(root)

	own := &testNode{name: "own"}
	slave := NewCamera("slave")
	slave.AddChild(own)
	v.AddSlave(slave, mgl64.Ident4(), mgl64.Ident4(), false)

	var cameraUpdates []string
	v.Camera().SetUpdateCallback(func(c *Camera, nv *NodeVisitor) {
		cameraUpdates = append(cameraUpdates, c.Name())
		if nv.Mode != TraverseNone {
			t.Error("master camera callback run with a descending traversal")
		}
	})

	m := &testManipulator{eye: mgl64.Vec3{0, 0, 10}}
	v.SetCameraManipulator(m, false)

	var sceneOps, windowOps int
	v.Scene().AddUpdateOperation(NewOperation("once", false, func(*Scene) { sceneOps++ }))
	w.AddUpdateOperation(NewOperation("keep", true, func(*Window) { windowOps++ }))

	w.Init()
	w.UpdateTraversal()
	w.UpdateTraversal()

	if sceneOps != 1 {
		t.Errorf("scene operation ran %d times, want 1", sceneOps)
	}
	if windowOps != 2 {
		t.Errorf("window operation ran %d times, want 2", windowOps)
	}
	if got := len(root.visits); got != 2 {
		t.Errorf("scene root visited %d times, want 2", got)
	}
	if got := len(own.visits); got != 2 {
		t.Errorf("slave subgraph visited %d times, want 2", got)
	}
	if len(cameraUpdates) != 2 {
		t.Errorf("camera update callback ran %d times, want 2", len(cameraUpdates))
	}
	if m.updates != 2 {
		t.Errorf("manipulator UpdateCamera ran %d times, want 2", m.updates)
	}
	if mode, value := v.FusionDistance(); mode != FusionUseValue || value != 2.5 {
		t.Errorf("FusionDistance() = %v, %v, want manipulator values", mode, value)
	}
	if _, ok := w.Stats().Attribute(0, stats.UpdateTraversalTimeTaken); !ok {
		t.Error("update traversal time not recorded")
	}
}

func TestUpdateSimulationTime(t *testing.T) {
	w, _, clock, _ := newTestWindow(640, 480)

	w.UpdateSimulationTime(42)
	if got := w.FrameStamp().SimulationTime(); got != 42 {
		t.Errorf("SimulationTime() = %v, want 42", got)
	}

	clock.advance(1500 * time.Millisecond)
	w.UpdateSimulationTime(UseElapsedTime)
	if got := w.FrameStamp().SimulationTime(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("SimulationTime() = %v, want 1.5", got)
	}
}

func TestFrameSetsReferenceTime(t *testing.T) {
	w, _, clock, _ := newTestWindow(640, 480)
	w.NewViewport()
	w.Init()

	clock.advance(250 * time.Millisecond)
	w.Frame()
	if got := w.FrameStamp().ReferenceTime(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("ReferenceTime() = %v, want 0.25", got)
	}
}

func TestRenderingStats(t *testing.T) {
	cats := stats.WithCategories(stats.CategoryRendering, stats.CategoryScene)
	w, _, _, engine := newTestWindow(640, 480, WithStats(stats.New("Window", cats)))
	v := w.NewViewport(WithViewportStats(stats.New("Viewport", cats)))
	v.SetSceneData(&testNode{name: "root"})
	w.Init()
	w.Advance()

	w.Frame()
	engine.views[v.Camera()].stats = RenderStatistics{Vertices: 30, Drawables: 2, Primitives: 10}
	w.Frame()

	frame := w.FrameStamp().FrameNumber()
	if _, ok := w.Stats().Attribute(frame, stats.RenderingTraversalsTimeTaken); !ok {
		t.Error("rendering traversals time not recorded")
	}
	if _, ok := v.Stats().Attribute(frame, stats.DrawTraversalTimeTaken); !ok {
		t.Error("draw traversal time not recorded")
	}
	if got, _ := v.Stats().Attribute(frame, stats.VisibleVertexCount); got != 30 {
		t.Errorf("visible vertices = %v, want 30", got)
	}
	if got, _ := v.Stats().Attribute(frame, stats.VisiblePrimitives); got != 10 {
		t.Errorf("visible primitives = %v, want 10", got)
	}
}

type countingStatsPolicy struct{ calls int }

func (p *countingStatsPolicy) CollectWindowStats(*Window) { p.calls++ }

func TestWindowStatsPolicy(t *testing.T) {
	p := &countingStatsPolicy{}
	w, _, _, _ := newTestWindow(640, 480, WithWindowStatsPolicy(p))
	w.NewViewport()
	w.Init()

	w.Frame()
	w.Frame()
	if p.calls != 2 {
		t.Errorf("stats policy calls = %d, want 2", p.calls)
	}
}

func TestGPUStatsDisabledWithoutTimerQueries(t *testing.T) {
	cats := stats.WithCategories(stats.CategoryGPU)
	w, _, _, _ := newTestWindow(640, 480, WithStats(stats.New("Window", cats)))
	v := w.NewViewport(WithViewportStats(stats.New("Viewport", cats)))
	w.Init()

	w.Frame()
	if w.Stats().CollectStats(stats.CategoryGPU) {
		t.Error("window still collects gpu stats")
	}
	if v.Stats().CollectStats(stats.CategoryGPU) {
		t.Error("viewport still collects gpu stats")
	}
}

func TestGPUStatsKeptWithTimerQueries(t *testing.T) {
	ctx := newRecordingContext(640, 480)
	ctx.State().SetTimerQueries(newFakeQueries(timerCaps(true, 0)))
	w, err := NewWindow(ctx, WithStats(stats.New("Window", stats.WithCategories(stats.CategoryGPU))), WithSceneRegistry(NewSceneRegistry()))
	if err != nil {
		t.Fatal(err)
	}
	w.NewViewport()
	w.Init()

	w.Frame()
	if !w.Stats().CollectStats(stats.CategoryGPU) {
		t.Error("gpu stats disabled although a timer query is available")
	}
}

func TestResized(t *testing.T) {
	w, _, _, _ := newTestWindow(800, 600)
	full := w.NewViewport()
	inset := w.NewViewport()
	inset.Camera().SetViewport(400, 300, 200, 150)
	w.Init()

	before := full.Camera().ProjectionMatrix()
	w.Resized(800, 600, 1600, 600)

	if r, _ := full.Camera().Viewport(); r != (Rect{Width: 1600, Height: 600}) {
		t.Errorf("full viewport = %+v, want 1600x600", r)
	}
	if r, _ := inset.Camera().Viewport(); r != (Rect{X: 800, Y: 300, Width: 400, Height: 150}) {
		t.Errorf("inset viewport = %+v", r)
	}
	// Horizontal policy halves x scale when the aspect ratio doubles.
	after := full.Camera().ProjectionMatrix()
	if math.Abs(after.At(0, 0)-before.At(0, 0)/2) > 1e-12 {
		t.Errorf("projection x scale = %v, want %v", after.At(0, 0), before.At(0, 0)/2)
	}
	if after.At(1, 1) != before.At(1, 1) {
		t.Error("projection y scale changed under horizontal policy")
	}
}

func TestResizedSkipsRenderToTexture(t *testing.T) {
	w, _, _, _ := newTestWindow(800, 600)
	v := w.NewViewport()
	rtt := NewCamera("rtt")
	rtt.SetViewport(0, 0, 256, 256)
	rtt.Attach(&Texture{Name: "color", Width: 256, Height: 256})
	v.AddSlave(rtt, mgl64.Ident4(), mgl64.Ident4(), false)
	w.Init()

	w.Resized(800, 600, 400, 300)
	if r, _ := rtt.Viewport(); r != (Rect{Width: 256, Height: 256}) {
		t.Errorf("render-to-texture viewport resized to %+v", r)
	}
}

func TestRequestWarpPointer(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	v := w.NewViewport()
	if v.RequestWarpPointer(1, 2) {
		t.Error("RequestWarpPointer succeeded on a context without a pointer")
	}
	if NewViewport().RequestWarpPointer(1, 2) {
		t.Error("RequestWarpPointer succeeded on a detached viewport")
	}

	rc := newRecordingContext(640, 480)
	ww, err := NewWindow(warpingContext{rc})
	if err != nil {
		t.Fatal(err)
	}
	if !ww.RequestWarpPointer(10, 20) {
		t.Fatal("RequestWarpPointer failed on a warping context")
	}
	if len(rc.warps) != 1 || rc.warps[0] != [2]float64{10, 20} {
		t.Errorf("warps = %v", rc.warps)
	}
}

func TestWindowComputeIntersectionsUnsupported(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	if hits, ok := w.ComputeIntersections(&Event{}, AllNodes); ok || hits != nil {
		t.Error("Window.ComputeIntersections reported support")
	}
}

func TestWindowObject(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	var o Object = w
	if o.ClassName() != "Window" || o.LibraryName() != "viewer" {
		t.Errorf("Object = %s/%s", o.LibraryName(), o.ClassName())
	}
}

func TestScenesDistinct(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	root := &testNode{name: "root"}
	a := w.NewViewport()
	b := w.NewViewport()
	w.NewViewport()
	a.SetSceneData(root)
	b.SetSceneData(root)

	if got := len(w.Scenes(true)); got != 1 {
		t.Errorf("len(Scenes(true)) = %d, want 1", got)
	}
	if got := len(w.Scenes(false)); got != 2 {
		t.Errorf("len(Scenes(false)) = %d, want 2", got)
	}
}
