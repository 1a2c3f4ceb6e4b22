package viewer

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// countingPager records the calls the viewer makes on a pager.
type countingPager struct {
	NopPager
	pending    bool
	merged     bool
	updates    int
	begins     int
	ends       int
	registered []Node
}

func (p *countingPager) RequiresUpdateSceneGraph() bool { return p.pending }
func (p *countingPager) UpdateSceneGraph(*FrameStamp)   { p.updates++ }
func (p *countingPager) RequiresRedraw() bool           { return p.merged }
func (p *countingPager) SignalBeginFrame(*FrameStamp)   { p.begins++ }
func (p *countingPager) SignalEndFrame()                { p.ends++ }
func (p *countingPager) RegisterPagedNodes(n Node)      { p.registered = append(p.registered, n) }

func TestSceneSharedBetweenViewports(t *testing.T) {
	reg := NewSceneRegistry()
	a := NewViewport(WithViewportRegistry(reg))
	b := NewViewport(WithViewportRegistry(reg))
	root := &testNode{name: "root"}

	a.SetSceneData(root)
	b.SetSceneData(root)

	if a.Scene() != b.Scene() {
		t.Fatal("viewports with the same root have different scenes")
	}
	if got := a.Scene().Owners(); got != 2 {
		t.Errorf("Owners() = %d, want 2", got)
	}
	if got := reg.Len(); got != 1 {
		t.Errorf("registry Len() = %d, want 1", got)
	}
	if reg.Lookup(root) != a.Scene() {
		t.Error("Lookup(root) did not return the shared scene")
	}
}

func TestSceneReleasedByAllOwners(t *testing.T) {
	reg := NewSceneRegistry()
	a := NewViewport(WithViewportRegistry(reg))
	b := NewViewport(WithViewportRegistry(reg))
	root := &testNode{name: "root"}
	a.SetSceneData(root)
	b.SetSceneData(root)
	old := a.Scene()

	a.Release()
	if reg.Lookup(root) != old {
		t.Fatal("scene unregistered while still owned")
	}
	b.Release()
	if reg.Lookup(root) != nil {
		t.Fatal("scene still registered after its last owner released it")
	}
	if a.SceneData() != nil || len(a.Camera().Children()) != 0 {
		t.Error("released viewport still renders the root")
	}

	c := NewViewport(WithViewportRegistry(reg))
	c.SetSceneData(root)
	if c.Scene() == old {
		t.Error("a released scene was handed out again")
	}
	if c.Scene().Owners() != 1 {
		t.Errorf("Owners() = %d, want 1", c.Scene().Owners())
	}
}

func TestSceneReusedForNewRoot(t *testing.T) {
	reg := NewSceneRegistry()
	v := NewViewport(WithViewportRegistry(reg))
	first := v.Scene()

	v.SetSceneData(&testNode{name: "one"})
	v.SetSceneData(&testNode{name: "two"})

	if v.Scene() != first {
		t.Error("sole owner did not reuse its scene")
	}
	if got := reg.Len(); got != 1 {
		t.Errorf("registry Len() = %d, want 1", got)
	}
}

func TestSceneSplitWhenShared(t *testing.T) {
	reg := NewSceneRegistry()
	a := NewViewport(WithViewportRegistry(reg))
	b := NewViewport(WithViewportRegistry(reg))
	root := &testNode{name: "root"}
	other := &testNode{name: "other"}
	a.SetSceneData(root)
	b.SetSceneData(root)
	shared := a.Scene()

	a.SetSceneData(other)

	if a.Scene() == shared {
		t.Fatal("reassigning a shared viewport modified the shared scene")
	}
	if b.SceneData() != Node(root) {
		t.Error("the other owner lost its root")
	}
	if shared.Owners() != 1 {
		t.Errorf("shared Owners() = %d, want 1", shared.Owners())
	}
}

func TestSceneSameRootIsNoop(t *testing.T) {
	v := NewViewport(WithViewportRegistry(NewSceneRegistry()))
	m := &testManipulator{}
	v.SetCameraManipulator(m, false)
	root := &testNode{name: "root"}

	v.SetSceneData(root)
	v.SetSceneData(root)
	if m.homes != 1 {
		t.Errorf("manipulator homes = %d, want 1", m.homes)
	}
}

func TestScenePreparesRoot(t *testing.T) {
	v := NewViewport(
		WithViewportRegistry(NewSceneRegistry()),
		WithDisplaySettings(&DisplaySettings{MaxGraphicsContexts: 3}),
	)
	root := &testNode{name: "root"}
	v.SetSceneData(root)

	if !root.static {
		t.Error("root not marked static")
	}
	if root.buffers != 3 {
		t.Errorf("GPU object buffers = %d, want 3", root.buffers)
	}
}

func TestSceneAssignedToCameras(t *testing.T) {
	v := NewViewport(WithViewportRegistry(NewSceneRegistry()))
	own := &testNode{name: "own"}
	sharing := NewCamera("sharing")
	private := NewCamera("private")
	private.AddChild(own)
	v.AddSlave(sharing, mgl64.Ident4(), mgl64.Ident4(), true)
	v.AddSlave(private, mgl64.Ident4(), mgl64.Ident4(), false)
	m := &testManipulator{}
	v.SetCameraManipulator(m, false)

	root := &testNode{name: "root"}
	v.SetSceneData(root)

	if !slices.Equal(v.Camera().Children(), []Node{root}) {
		t.Errorf("master children = %v", v.Camera().Children())
	}
	if !slices.Equal(sharing.Children(), []Node{root}) {
		t.Errorf("sharing slave children = %v", sharing.Children())
	}
	if !slices.Equal(private.Children(), []Node{own}) {
		t.Errorf("private slave children = %v", private.Children())
	}
	if m.node != Node(root) || m.homes != 1 {
		t.Errorf("manipulator node = %v, homes = %d", m.node, m.homes)
	}
}

func TestSceneRecompiledAfterAssignment(t *testing.T) {
	w, _, _, engine := newTestWindow(640, 480)
	v := w.NewViewport()
	v.SetSceneData(&testNode{name: "one"})
	w.Init()

	w.Frame()
	r := v.Camera().Renderer()
	if r == nil || r.CompileOnNextDraw() {
		t.Fatal("first draw did not compile")
	}

	v.SetSceneData(&testNode{name: "two"})
	if !r.CompileOnNextDraw() {
		t.Fatal("new scene did not schedule a compile")
	}
	w.Frame()
	if got := engine.views[v.Camera()].compiles; got != 2 {
		t.Errorf("compiles = %d, want 2", got)
	}
}

func TestSceneUpdate(t *testing.T) {
	v := NewViewport(WithViewportRegistry(NewSceneRegistry()))
	root := &testNode{name: "root"}
	v.SetSceneData(root)
	s := v.Scene()

	db, img := &countingPager{}, &countingPager{}
	s.SetDatabasePager(db)
	s.SetImagePager(img)
	if !slices.Equal(db.registered, []Node{root}) {
		t.Errorf("database pager registered %v", db.registered)
	}

	if s.RequiresUpdateSceneGraph() {
		t.Fatal("RequiresUpdateSceneGraph() = true with nothing pending")
	}
	img.pending = true
	if !s.RequiresUpdateSceneGraph() {
		t.Error("image pager work not seen")
	}
	img.pending = false

	ran := 0
	s.AddUpdateOperation(NewOperation("count", false, func(*Scene) { ran++ }))
	if !s.RequiresUpdateSceneGraph() {
		t.Error("queued operation not seen")
	}

	nv := &NodeVisitor{Kind: UpdateVisitor, Mode: TraverseAll, FrameStamp: &FrameStamp{}}
	s.UpdateSceneGraph(nv)

	if db.updates != 1 || img.updates != 1 {
		t.Errorf("pager updates = %d/%d, want 1/1", db.updates, img.updates)
	}
	if len(root.visits) != 1 || root.visits[0] != UpdateVisitor {
		t.Errorf("root visits = %v", root.visits)
	}
	if ran != 1 || s.RequiresUpdateSceneGraph() {
		t.Errorf("operation ran %d times, want 1 and dequeued", ran)
	}
	if nv.ImageRequests != nil {
		t.Error("image requests pager leaked out of the update pass")
	}

	db.merged = true
	if !s.RequiresRedraw() {
		t.Error("merged database content did not request a redraw")
	}
}

func TestScenePagersSignalledPerFrame(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	v := w.NewViewport()
	v.SetSceneData(&testNode{name: "root"})
	db := &countingPager{}
	v.Scene().SetDatabasePager(db)
	w.Init()

	w.Frame()
	w.Frame()
	if db.begins != 2 || db.ends != 2 || db.updates != 2 {
		t.Errorf("begins/ends/updates = %d/%d/%d, want 2/2/2", db.begins, db.ends, db.updates)
	}
}
