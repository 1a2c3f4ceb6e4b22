package viewer

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer/timerquery"
)

// manualClock is a Clock advanced explicitly by tests.
type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time { return c.t }

func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingContext is an embedded context that logs the calls a Window
// makes on it.
type recordingContext struct {
	EmbeddedContext
	calls   []string
	current bool
	refuse  bool
	warps   [][2]float64
}

func newRecordingContext(width, height int) *recordingContext {
	c := &recordingContext{}
	c.Init(c, Traits{Width: width, Height: height}, nil)
	return c
}

func (c *recordingContext) MakeCurrent() bool {
	c.calls = append(c.calls, "make-current")
	if c.refuse {
		return false
	}
	c.current = true
	return true
}

func (c *recordingContext) ReleaseContext() bool {
	c.calls = append(c.calls, "release")
	c.current = false
	return true
}

func (c *recordingContext) RunOperations() {
	c.calls = append(c.calls, "run-operations")
	c.EmbeddedContext.RunOperations()
}

func (c *recordingContext) SwapBuffers() {
	c.calls = append(c.calls, "swap")
	c.EmbeddedContext.SwapBuffers()
}

func (c *recordingContext) log(s string) { c.calls = append(c.calls, s) }

// warpingContext adds pointer warping to recordingContext.
type warpingContext struct {
	*recordingContext
}

func (c warpingContext) WarpPointer(x, y float64) bool {
	c.warps = append(c.warps, [2]float64{x, y})
	return true
}

// fakeEngine creates fakeSceneViews that report cull and draw calls.
type fakeEngine struct {
	views  map[*Camera]*fakeSceneView
	onDraw func(cam *Camera)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{views: make(map[*Camera]*fakeSceneView)}
}

func (e *fakeEngine) NewSceneView(cam *Camera) SceneView {
	sv := &fakeSceneView{engine: e, camera: cam}
	e.views[cam] = sv
	return sv
}

type fakeSceneView struct {
	engine *fakeEngine
	camera *Camera

	frameStamp FrameStamp
	global     *StateSet
	secondary  *StateSet
	culls      int
	draws      int
	compiles   int
	stats      RenderStatistics
}

func (sv *fakeSceneView) SetFrameStamp(fs FrameStamp)                   { sv.frameStamp = fs }
func (sv *fakeSceneView) SetStateSets(global, secondary *StateSet)      { sv.global, sv.secondary = global, secondary }
func (sv *fakeSceneView) SetPagers(_, _ Pager)                          {}
func (sv *fakeSceneView) SetFusionDistance(FusionDistanceMode, float64) {}
func (sv *fakeSceneView) Cull()                                         { sv.culls++ }
func (sv *fakeSceneView) Compile(GraphicsContext)                       { sv.compiles++ }
func (sv *fakeSceneView) Statistics() RenderStatistics                  { return sv.stats }

func (sv *fakeSceneView) Draw(ctx GraphicsContext) {
	sv.draws++
	if rc, ok := ctx.(*recordingContext); ok {
		rc.log("draw " + sv.camera.Name())
	}
	if sv.engine.onDraw != nil {
		sv.engine.onDraw(sv.camera)
	}
}

// testNode is a leaf node recording the visits it receives.
type testNode struct {
	name    string
	bound   BoundingSphere
	visits  []VisitorKind
	events  int
	update  bool
	static  bool
	buffers int
	log     *[]string

	// plane, when set, makes the node intersectable at z = planeZ.
	plane   bool
	planeZ  float64
	texture *Texture
}

func (n *testNode) Accept(nv *NodeVisitor) {
	n.visits = append(n.visits, nv.Kind)
	if nv.Kind == EventVisitor {
		n.events += len(nv.Events)
	}
	if n.log != nil {
		*n.log = append(*n.log, "scene "+n.name)
	}
}

func (n *testNode) Bound() BoundingSphere         { return n.bound }
func (n *testNode) RequiresUpdateTraversal() bool { return n.update }
func (n *testNode) MarkStatic()                   { n.static = true }
func (n *testNode) ResizeGPUObjectBuffers(c int)  { n.buffers = c }

func (n *testNode) Intersect(seg Segment, _ NodeMask) []Intersection {
	if !n.plane {
		return nil
	}
	dz := seg.End.Z() - seg.Start.Z()
	if dz == 0 {
		return nil
	}
	r := (n.planeZ - seg.Start.Z()) / dz
	if r < 0 || r > 1 {
		return nil
	}
	p := seg.At(r)
	hit := Intersection{
		Ratio:    r,
		Point:    p,
		Normal:   mgl64.Vec3{0, 0, 1},
		NodePath: []Node{n},
	}
	if n.texture != nil {
		// The plane spans [-1, 1] in x and y.
		hit.Texture = n.texture
		hit.TexCoord = mgl64.Vec3{(p.X() + 1) / 2, (p.Y() + 1) / 2, 0}
	}
	return []Intersection{hit}
}

// recordingHandler logs the events it sees and optionally handles them.
type recordingHandler struct {
	name    string
	handle  bool
	events  []*Event
	log     *[]string
	adapter ActionAdapter
}

func (h *recordingHandler) Handle(e *Event, aa ActionAdapter, _ *FrameStamp) bool {
	h.events = append(h.events, e)
	h.adapter = aa
	if h.log != nil {
		*h.log = append(*h.log, "handler "+h.name)
	}
	return h.handle
}

// testManipulator is a CameraManipulator with a fixed eye.
type testManipulator struct {
	recordingHandler
	node    Node
	inits   int
	homes   int
	updates int
	eye     mgl64.Vec3
}

func (m *testManipulator) Handle(e *Event, aa ActionAdapter, fs *FrameStamp) bool {
	if m.log != nil {
		*m.log = append(*m.log, "manipulator "+m.name)
	}
	m.events = append(m.events, e)
	return m.handle
}

func (m *testManipulator) SetNode(n Node)             { m.node = n }
func (m *testManipulator) Init(*Event, ActionAdapter) { m.inits++ }
func (m *testManipulator) Home(*Event, ActionAdapter) { m.homes++ }
func (m *testManipulator) FusionDistance() (FusionDistanceMode, float64) {
	return FusionUseValue, 2.5
}

func (m *testManipulator) UpdateCamera(c *Camera) {
	m.updates++
	c.SetViewLookAt(m.eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// fakeQueries is a timerquery.Device whose results become available when
// the test says so.
type fakeQueries struct {
	caps      timerquery.Capabilities
	next      timerquery.Query
	available map[timerquery.Query]bool
	results   map[timerquery.Query]uint64
	begun     []timerquery.Query
	clock     uint64
}

func newFakeQueries(caps timerquery.Capabilities) *fakeQueries {
	return &fakeQueries{
		caps:      caps,
		available: make(map[timerquery.Query]bool),
		results:   make(map[timerquery.Query]uint64),
	}
}

func (d *fakeQueries) Capabilities() timerquery.Capabilities { return d.caps }

func (d *fakeQueries) GenQuery() timerquery.Query {
	d.next++
	return d.next
}

func (d *fakeQueries) BeginTimeElapsed(q timerquery.Query)     { d.begun = append(d.begun, q) }
func (d *fakeQueries) EndTimeElapsed()                         {}
func (d *fakeQueries) QueryCounter(q timerquery.Query)         { d.begun = append(d.begun, q) }
func (d *fakeQueries) ResultAvailable(q timerquery.Query) bool { return d.available[q] }
func (d *fakeQueries) Result(q timerquery.Query) uint64        { return d.results[q] }
func (d *fakeQueries) Timestamp() uint64                       { return d.clock }

func timerCaps(elapsed bool, bits int) timerquery.Capabilities {
	return timerquery.Capabilities{ElapsedTime: elapsed, TimestampBits: bits}
}

// complete makes every begun query available with the given result.
func (d *fakeQueries) complete(result uint64) {
	for _, q := range d.begun {
		d.available[q] = true
		d.results[q] = result
	}
	d.begun = d.begun[:0]
}

// newTestWindow creates a window over a recording context with a manual
// clock and a fake engine.
func newTestWindow(width, height int, opts ...WindowOption) (*Window, *recordingContext, *manualClock, *fakeEngine) {
	ctx := newRecordingContext(width, height)
	clock := newManualClock()
	engine := newFakeEngine()
	opts = append([]WindowOption{WithClock(clock.now), WithEngine(engine), WithSceneRegistry(NewSceneRegistry())}, opts...)
	w, err := NewWindow(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return w, ctx, clock, engine
}
