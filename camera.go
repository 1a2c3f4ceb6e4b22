package viewer

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/viewer/stats"
)

// Rect is a camera viewport rectangle in drawable pixels, Y up.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// AspectRatio returns Width/Height.
func (r Rect) AspectRatio() float64 {
	if r.Height == 0 {
		return 1
	}
	return r.Width / r.Height
}

// WindowMatrix maps normalized device coordinates to window coordinates:
// x and y in [-1, 1] to the rectangle and z in [-1, 1] to [0, 1].
func (r Rect) WindowMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(r.X, r.Y, 0).
		Mul4(mgl64.Scale3D(0.5*r.Width, 0.5*r.Height, 0.5)).
		Mul4(mgl64.Translate3D(1, 1, 1))
}

// RenderOrder positions a camera's draw relative to the others.
type RenderOrder int

const (
	PreRender RenderOrder = iota
	NestedRender
	PostRender
)

// ReferenceFrame tells whether a slave camera's matrices are offsets from
// its master or absolute.
type ReferenceFrame int

const (
	RelativeRF ReferenceFrame = iota
	AbsoluteRF
)

// RenderTarget selects where a camera draws.
type RenderTarget int

const (
	// FrameBuffer draws into the window.
	FrameBuffer RenderTarget = iota
	// FrameBufferObject draws into the camera's attachment texture.
	FrameBufferObject
)

// ProjectionResizePolicy controls how a camera's projection follows
// viewport resizes.
type ProjectionResizePolicy int

const (
	FixedProjection ProjectionResizePolicy = iota
	HorizontalResize
	VerticalResize
)

// CameraCallback runs during update or event passes.
type CameraCallback func(c *Camera, nv *NodeVisitor)

// Camera views a scene graph through a viewport rectangle.
type Camera struct {
	name string

	viewport   Rect
	hasRect    bool
	view       mgl64.Mat4
	projection mgl64.Mat4

	renderOrder     RenderOrder
	renderOrderNum  int
	referenceFrame  ReferenceFrame
	renderTarget    RenderTarget
	colorAttachment *Texture
	resizePolicy    ProjectionResizePolicy
	allowEventFocus bool
	clearColor      gputypes.Color
	stateSet        *StateSet

	children       []Node
	updateCallback CameraCallback
	eventCallback  CameraCallback

	stats    *stats.Stats
	renderer *Renderer
	owner    *Viewport
}

// NewCamera returns a camera with identity matrices that renders to the
// window, accepts event focus and resizes horizontally.
func NewCamera(name string) *Camera {
	return &Camera{
		name:            name,
		view:            mgl64.Ident4(),
		projection:      mgl64.Ident4(),
		renderOrder:     NestedRender,
		resizePolicy:    HorizontalResize,
		allowEventFocus: true,
		clearColor:      gputypes.Color{R: 0.2, G: 0.2, B: 0.4, A: 1},
		stateSet:        &StateSet{Name: name},
	}
}

// Name returns the camera name.
func (c *Camera) Name() string { return c.name }

// SetViewport sets the viewport rectangle.
func (c *Camera) SetViewport(x, y, width, height float64) {
	c.viewport = Rect{X: x, Y: y, Width: width, Height: height}
	c.hasRect = true
}

// Viewport returns the viewport rectangle and whether one is set.
func (c *Camera) Viewport() (Rect, bool) { return c.viewport, c.hasRect }

func (c *Camera) ViewMatrix() mgl64.Mat4           { return c.view }
func (c *Camera) SetViewMatrix(m mgl64.Mat4)       { c.view = m }
func (c *Camera) ProjectionMatrix() mgl64.Mat4     { return c.projection }
func (c *Camera) SetProjectionMatrix(m mgl64.Mat4) { c.projection = m }

// SetViewLookAt sets the view matrix from an eye position.
func (c *Camera) SetViewLookAt(eye, center, up mgl64.Vec3) {
	c.view = mgl64.LookAtV(eye, center, up)
}

// SetProjectionPerspective sets a perspective projection. fovy is in
// degrees.
func (c *Camera) SetProjectionPerspective(fovy, aspect, near, far float64) {
	c.projection = mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far)
}

// SetRenderOrder sets the render order and its tie-breaking number.
func (c *Camera) SetRenderOrder(order RenderOrder, num int) {
	c.renderOrder, c.renderOrderNum = order, num
}

// RenderOrder returns the render order and its tie-breaking number.
func (c *Camera) RenderOrder() (RenderOrder, int) { return c.renderOrder, c.renderOrderNum }

func (c *Camera) ReferenceFrame() ReferenceFrame      { return c.referenceFrame }
func (c *Camera) SetReferenceFrame(rf ReferenceFrame) { c.referenceFrame = rf }

func (c *Camera) RenderTarget() RenderTarget      { return c.renderTarget }
func (c *Camera) SetRenderTarget(rt RenderTarget) { c.renderTarget = rt }

// Attach sets the texture the camera renders into and switches the
// camera to a framebuffer object target.
func (c *Camera) Attach(tex *Texture) {
	c.colorAttachment = tex
	c.renderTarget = FrameBufferObject
}

// ColorAttachment returns the attached texture, or nil.
func (c *Camera) ColorAttachment() *Texture { return c.colorAttachment }

func (c *Camera) ProjectionResizePolicy() ProjectionResizePolicy     { return c.resizePolicy }
func (c *Camera) SetProjectionResizePolicy(p ProjectionResizePolicy) { c.resizePolicy = p }

func (c *Camera) AllowEventFocus() bool            { return c.allowEventFocus }
func (c *Camera) SetAllowEventFocus(on bool)       { c.allowEventFocus = on }
func (c *Camera) ClearColor() gputypes.Color       { return c.clearColor }
func (c *Camera) SetClearColor(col gputypes.Color) { c.clearColor = col }
func (c *Camera) StateSet() *StateSet              { return c.stateSet }

func (c *Camera) SetUpdateCallback(cb CameraCallback) { c.updateCallback = cb }
func (c *Camera) SetEventCallback(cb CameraCallback)  { c.eventCallback = cb }

// RequiresUpdateTraversal reports whether the camera has an update
// callback.
func (c *Camera) RequiresUpdateTraversal() bool { return c.updateCallback != nil }

// AddChild appends a subgraph.
func (c *Camera) AddChild(n Node) { c.children = append(c.children, n) }

// RemoveChildren detaches every subgraph.
func (c *Camera) RemoveChildren() {
	clear(c.children)
	c.children = c.children[:0]
}

// Children returns the attached subgraphs.
func (c *Camera) Children() []Node { return c.children }

// Accept runs the callback matching nv's kind and descends into the
// children when nv.Mode is TraverseAll.
func (c *Camera) Accept(nv *NodeVisitor) {
	switch nv.Kind {
	case UpdateVisitor:
		if c.updateCallback != nil {
			c.updateCallback(c, nv)
		}
	case EventVisitor:
		if c.eventCallback != nil {
			c.eventCallback(c, nv)
		}
	}
	if nv.Mode != TraverseAll {
		return
	}
	for _, child := range c.children {
		child.Accept(nv)
	}
}

// Bound encloses every child.
func (c *Camera) Bound() BoundingSphere {
	b := EmptyBound()
	for _, child := range c.children {
		b = b.Expand(child.Bound())
	}
	return b
}

// Stats returns the camera's statistics sink, or nil.
func (c *Camera) Stats() *stats.Stats     { return c.stats }
func (c *Camera) SetStats(s *stats.Stats) { c.stats = s }

// Renderer returns the camera's renderer, or nil before its first draw.
func (c *Camera) Renderer() *Renderer { return c.renderer }

// View returns the viewport that owns the camera, or nil.
func (c *Camera) View() *Viewport { return c.owner }

func (c *Camera) rendererFor(engine Engine, policy RendererStatsPolicy) *Renderer {
	if c.renderer == nil {
		c.renderer = newRenderer(c, engine, policy)
	}
	return c.renderer
}

func compareRenderOrder(a, b *Camera) int {
	if c := cmp.Compare(a.renderOrder, b.renderOrder); c != 0 {
		return c
	}
	return cmp.Compare(a.renderOrderNum, b.renderOrderNum)
}

// sortByRenderOrder sorts cameras into draw order, keeping insertion order
// among equals.
func sortByRenderOrder(cams []*Camera) {
	slices.SortStableFunc(cams, compareRenderOrder)
}
