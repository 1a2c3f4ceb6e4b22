package viewer

import (
	"weak"

	"github.com/gogpu/viewer/stats"
	"github.com/gogpu/viewer/timerquery"
)

// drawState is the per-camera state carried between frames.
type drawState struct {
	sceneView  SceneView
	frameStamp FrameStamp
	global     *StateSet
	secondary  *StateSet
}

// Renderer draws one camera with cull/draw timing and GPU timer queries.
// It is created the first time its camera is drawn and initializes itself
// lazily on that draw, when the GPU context is current.
type Renderer struct {
	camera weak.Pointer[Camera]
	engine Engine
	policy RendererStatsPolicy

	initialized       bool
	compileOnNextDraw bool

	state drawState
	query timerquery.Support
}

func newRenderer(cam *Camera, engine Engine, policy RendererStatsPolicy) *Renderer {
	if engine == nil {
		engine = nopEngine{}
	}
	if policy == nil {
		policy = DefaultRendererStats{}
	}
	return &Renderer{
		camera:            weak.Make(cam),
		engine:            engine,
		policy:            policy,
		compileOnNextDraw: true,
	}
}

// Camera returns the camera drawn by r, or nil if it no longer exists.
func (r *Renderer) Camera() *Camera { return r.camera.Value() }

// Initialized reports whether the first draw has happened.
func (r *Renderer) Initialized() bool { return r.initialized }

// CompileOnNextDraw reports whether a compile pass is pending.
func (r *Renderer) CompileOnNextDraw() bool { return r.compileOnNextDraw }

// SetCompileOnNextDraw schedules or cancels a compile pass.
func (r *Renderer) SetCompileOnNextDraw(on bool) { r.compileOnNextDraw = on }

// TimerQuery returns the GPU timing strategy, or nil when the context
// cannot time GPU work or the renderer is not yet initialized.
func (r *Renderer) TimerQuery() timerquery.Support { return r.query }

// SceneView returns the engine draw state, or nil before initialization.
func (r *Renderer) SceneView() SceneView { return r.state.sceneView }

func (r *Renderer) initialize(cam *Camera, gs *State) {
	r.state.sceneView = r.engine.NewSceneView(cam)

	r.state.global, r.state.secondary = cam.StateSet(), nil
	if v := cam.View(); v != nil {
		if master := v.Camera(); master != nil && master != cam {
			r.state.global, r.state.secondary = master.StateSet(), cam.StateSet()
		}
	}

	r.query = nil
	bits := 0
	if gs != nil {
		r.query = timerquery.Select(gs.TimerQueries(), gs.now, gs)
		bits = gs.TimestampBits()
	}
	Logger().Debug("viewer: renderer initialized",
		"camera", cam.Name(),
		"timerQuery", timerQueryName(r.query),
		"timestampBits", bits)

	r.initialized = true
}

func timerQueryName(s timerquery.Support) string {
	switch s.(type) {
	case *timerquery.Timestamp:
		return "timestamp"
	case *timerquery.Elapsed:
		return "elapsed"
	}
	return "none"
}

func (r *Renderer) updateSceneView(cam *Camera) {
	sv := r.state.sceneView
	sv.SetStateSets(r.state.global, r.state.secondary)

	v := cam.View()
	if v == nil {
		return
	}
	if fs := v.FrameStamp(); fs != nil {
		r.state.frameStamp = *fs
	}
	sv.SetFrameStamp(r.state.frameStamp)

	if s := v.Scene(); s != nil {
		sv.SetPagers(s.DatabasePager(), s.ImagePager())
	}
	sv.SetFusionDistance(v.FusionDistance())
}

// clock returns the CPU clock of the context state, falling back to the
// window clock for contexts without GPU state.
func clock(cam *Camera, gs *State) func() float64 {
	if gs != nil {
		return gs.now
	}
	if v := cam.View(); v != nil {
		if w := v.Window(); w != nil {
			return w.ElapsedTime
		}
	}
	return func() float64 { return 0 }
}

func (r *Renderer) compile(cam *Camera, ctx GraphicsContext, now func() float64) {
	start := now()
	r.state.sceneView.Compile(ctx)
	r.compileOnNextDraw = false

	if v := cam.View(); v != nil {
		if st := v.Stats(); st != nil && st.CollectStats(stats.CategoryCompile) {
			st.SetAttribute(r.state.frameStamp.FrameNumber(), stats.Compile, now()-start)
		}
	}
}

// Draw culls and draws the camera into ctx, which must be current.
func (r *Renderer) Draw(ctx GraphicsContext) {
	cam := r.camera.Value()
	if cam == nil {
		return
	}
	gs := ctx.State()
	now := clock(cam, gs)

	if !r.initialized {
		r.initialize(cam, gs)
	}
	r.updateSceneView(cam)

	if r.compileOnNextDraw {
		r.compile(cam, ctx, now)
	}

	frame := r.state.frameStamp.FrameNumber()
	st := cam.Stats()
	gpu := st != nil && r.query != nil && st.CollectStats(stats.CategoryGPU)

	if gpu {
		r.query.CheckQuery(st)
	}
	beforeCull := now()
	r.state.sceneView.Cull()
	afterCull := now()

	if gpu {
		r.query.CheckQuery(st)
		r.query.BeginQuery(frame)
	}
	beforeDraw := now()
	r.state.sceneView.Draw(ctx)
	if gpu {
		r.query.EndQuery()
		r.query.CheckQuery(st)
	}
	afterDraw := now()

	if st == nil {
		return
	}
	if st.CollectStats(stats.CategoryRendering) {
		st.SetAttribute(frame, stats.CullTraversalBeginTime, beforeCull)
		st.SetAttribute(frame, stats.CullTraversalEndTime, afterCull)
		st.SetAttribute(frame, stats.CullTraversalTimeTaken, afterCull-beforeCull)

		st.SetAttribute(frame, stats.DrawTraversalBeginTime, beforeDraw)
		st.SetAttribute(frame, stats.DrawTraversalEndTime, afterDraw)
		st.SetAttribute(frame, stats.DrawTraversalTimeTaken, afterDraw-beforeDraw)
	}
	r.policy.CollectRendererStats(r, st, frame)
}
