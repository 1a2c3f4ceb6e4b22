package viewer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer/stats"
)

// Slave is a secondary camera of a Viewport. A relative slave derives its
// matrices from the master camera through the offsets on every update.
type Slave struct {
	Camera           *Camera
	ProjectionOffset mgl64.Mat4
	ViewOffset       mgl64.Mat4

	// UseMastersSceneData makes the slave render the viewport's scene. A
	// slave without it renders its own children.
	UseMastersSceneData bool
}

// Viewport binds a master camera and its slaves to a Scene, an optional
// camera manipulator and event handlers.
//
// A Viewport is attached to at most one Window at a time. It implements
// ActionAdapter so handlers can request redraws through it.
type Viewport struct {
	window   *Window
	registry *SceneRegistry
	scene    *Scene

	camera *Camera
	slaves []Slave

	handlers    []EventHandler
	manipulator CameraManipulator

	displaySettings *DisplaySettings
	fusionMode      FusionDistanceMode
	fusionValue     float64

	stats      *stats.Stats
	frameStamp *FrameStamp

	initPolicy      InitPolicy
	resizedPolicy   ResizedPolicy
	sceneDataPolicy SceneDataPolicy
}

// NewViewport creates a viewport with a default master camera and an empty
// scene.
func NewViewport(opts ...ViewportOption) *Viewport {
	o := defaultViewportOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &Viewport{
		registry:        o.registry,
		displaySettings: o.displaySettings,
		fusionMode:      FusionProportionalToScreenDistance,
		fusionValue:     1,
		stats:           o.stats,
		initPolicy:      o.initPolicy,
		resizedPolicy:   o.resizedPolicy,
		sceneDataPolicy: o.sceneDataPolicy,
	}

	v.camera = NewCamera("master")
	v.camera.owner = v
	v.camera.SetStats(v.stats)
	v.scene = newScene(v.registry)
	return v
}

// SetWindow sets the owning window. Attaching a viewport that already has
// a window panics; detach it first by passing nil.
func (v *Viewport) SetWindow(w *Window) {
	if v.window != nil && w != nil {
		invariant("viewport already attached to a window")
	}
	v.window = w
}

// Window returns the owning window, or nil.
func (v *Viewport) Window() *Window { return v.window }

func (v *Viewport) setFrameStamp(fs *FrameStamp) { v.frameStamp = fs }

// FrameStamp returns the frame stamp of the owning window, or nil while
// detached.
func (v *Viewport) FrameStamp() *FrameStamp { return v.frameStamp }

// Camera returns the master camera.
func (v *Viewport) Camera() *Camera { return v.camera }

// Stats returns the viewport statistics sink.
func (v *Viewport) Stats() *stats.Stats { return v.stats }

// Scene returns the scene the viewport renders, or nil after Release.
func (v *Viewport) Scene() *Scene { return v.scene }

// SceneData returns the scene root, or nil.
func (v *Viewport) SceneData() Node {
	if v.scene == nil {
		return nil
	}
	return v.scene.Root()
}

// SetSceneData assigns root through the scene data policy.
func (v *Viewport) SetSceneData(root Node) {
	v.sceneDataPolicy.SetSceneData(v, root)
}

// Release drops the viewport's ownership of its scene. The viewport renders
// nothing afterwards until SetSceneData is called again.
func (v *Viewport) Release() {
	if v.scene == nil {
		return
	}
	v.scene.release()
	v.scene = nil
	v.assignSceneDataToCameras()
}

// DisplaySettings returns the viewport display settings.
func (v *Viewport) DisplaySettings() *DisplaySettings { return v.displaySettings }

// AddSlave adds cam as a slave camera with the given offsets. The slave
// shares the viewport's stats sink unless it has its own.
func (v *Viewport) AddSlave(cam *Camera, projectionOffset, viewOffset mgl64.Mat4, useMastersSceneData bool) {
	if cam == nil || v.FindSlave(cam) >= 0 {
		return
	}
	cam.owner = v
	if cam.Stats() == nil {
		cam.SetStats(v.stats)
	}
	v.slaves = append(v.slaves, Slave{
		Camera:              cam,
		ProjectionOffset:    projectionOffset,
		ViewOffset:          viewOffset,
		UseMastersSceneData: useMastersSceneData,
	})

	if useMastersSceneData {
		cam.RemoveChildren()
		if root := v.SceneData(); root != nil {
			cam.AddChild(root)
		}
	}
	v.UpdateSlaves()
}

// RemoveSlave removes cam from the slaves.
func (v *Viewport) RemoveSlave(cam *Camera) bool {
	i := v.FindSlave(cam)
	if i < 0 {
		return false
	}
	v.slaves[i].Camera.owner = nil
	v.slaves = slices.Delete(v.slaves, i, i+1)
	return true
}

// FindSlave returns the index of cam among the slaves, or -1.
func (v *Viewport) FindSlave(cam *Camera) int {
	return slices.IndexFunc(v.slaves, func(s Slave) bool { return s.Camera == cam })
}

// Slaves returns the slave cameras.
func (v *Viewport) Slaves() []Slave { return v.slaves }

func (v *Viewport) slaveFor(cam *Camera) (Slave, bool) {
	if i := v.FindSlave(cam); i >= 0 {
		return v.slaves[i], true
	}
	return Slave{}, false
}

// UpdateSlaves recomputes the matrices of relative slaves from the master
// camera.
func (v *Viewport) UpdateSlaves() {
	for _, s := range v.slaves {
		if s.Camera.ReferenceFrame() != RelativeRF {
			continue
		}
		s.Camera.SetViewMatrix(s.ViewOffset.Mul4(v.camera.ViewMatrix()))
		s.Camera.SetProjectionMatrix(s.ProjectionOffset.Mul4(v.camera.ProjectionMatrix()))
	}
}

// cameras returns the master camera followed by the slaves.
func (v *Viewport) cameras() []*Camera {
	cams := make([]*Camera, 0, len(v.slaves)+1)
	cams = append(cams, v.camera)
	for _, s := range v.slaves {
		cams = append(cams, s.Camera)
	}
	return cams
}

// Init initializes the viewport for a drawable size through the init
// policy.
func (v *Viewport) Init(width, height int) {
	v.initPolicy.Init(v, width, height)
}

// Resized adapts the cameras to a drawable resize through the resized
// policy.
func (v *Viewport) Resized(oldWidth, oldHeight, width, height int) {
	v.resizedPolicy.Resized(v, oldWidth, oldHeight, width, height)
}

// RequiresUpdateSceneGraph reports whether the master camera has an update
// callback or the scene needs an update traversal.
func (v *Viewport) RequiresUpdateSceneGraph() bool {
	if v.camera.RequiresUpdateTraversal() {
		return true
	}
	return v.scene != nil && v.scene.RequiresUpdateSceneGraph()
}

// RequiresRedraw reports whether the scene needs a redraw.
func (v *Viewport) RequiresRedraw() bool {
	return v.scene != nil && v.scene.RequiresRedraw()
}

// RequestRedraw asks the owning window for a frame.
func (v *Viewport) RequestRedraw() {
	if v.window != nil {
		v.window.requestViewportRedraw(v)
	}
}

// RequestContinuousUpdate asks the owning window to keep producing frames
// for this viewport, or stops asking.
func (v *Viewport) RequestContinuousUpdate(on bool) {
	if v.window != nil {
		v.window.requestViewportContinuousUpdate(v, on)
	}
}

// RequestWarpPointer moves the pointer to (x, y) in drawable pixels with Y
// up. It reports false when detached or when the context has no pointer.
func (v *Viewport) RequestWarpPointer(x, y float64) bool {
	if v.window == nil {
		return false
	}
	return v.window.requestViewportWarpPointer(v, x, y)
}

// ComputeIntersections ray casts through the event's pointer position.
func (v *Viewport) ComputeIntersections(e *Event, mask NodeMask) ([]Intersection, bool) {
	return ComputeEventIntersections(e, mask)
}

// ComputeIntersectionsOnPath ray casts through the event's pointer position
// against the last node of path.
func (v *Viewport) ComputeIntersectionsOnPath(e *Event, path []Node, mask NodeMask) ([]Intersection, bool) {
	return ComputeEventIntersectionsOnPath(e, path, mask)
}

// AddEventHandler appends h unless it is already present.
func (v *Viewport) AddEventHandler(h EventHandler) {
	if h == nil || slices.Contains(v.handlers, h) {
		return
	}
	v.handlers = append(v.handlers, h)
}

// RemoveEventHandler removes h.
func (v *Viewport) RemoveEventHandler(h EventHandler) {
	if i := slices.Index(v.handlers, h); i >= 0 {
		v.handlers = slices.Delete(v.handlers, i, i+1)
	}
}

// EventHandlers returns the viewport event handlers.
func (v *Viewport) EventHandlers() []EventHandler { return v.handlers }

// SetCameraManipulator installs m. When reset is true the manipulator is
// sent to its home position.
func (v *Viewport) SetCameraManipulator(m CameraManipulator, reset bool) {
	v.manipulator = m
	if m == nil {
		return
	}
	if root := v.SceneData(); root != nil {
		m.SetNode(root)
	}
	if reset {
		m.Home(&Event{}, v)
	}
}

// CameraManipulator returns the installed manipulator, or nil.
func (v *Viewport) CameraManipulator() CameraManipulator { return v.manipulator }

// SetFusionDistance sets the stereo fusion parameters.
func (v *Viewport) SetFusionDistance(mode FusionDistanceMode, value float64) {
	v.fusionMode, v.fusionValue = mode, value
}

// FusionDistance returns the stereo fusion parameters.
func (v *Viewport) FusionDistance() (FusionDistanceMode, float64) {
	return v.fusionMode, v.fusionValue
}

// prepareSceneData readies a freshly assigned root for rendering.
func (v *Viewport) prepareSceneData() {
	root := v.SceneData()
	if root == nil {
		return
	}
	if m, ok := root.(StaticMarker); ok {
		m.MarkStatic()
	}
	if r, ok := root.(ThreadSafeReferencer); ok && v.displaySettings.ThreadSafeReferences {
		r.SetThreadSafeReferences(true)
	}
	if s, ok := root.(GPUObjectSizer); ok {
		s.ResizeGPUObjectBuffers(max(v.displaySettings.MaxGraphicsContexts, 1))
	}
}

// assignSceneDataToCameras attaches the scene root to the master camera and
// every slave rendering it, and schedules a compile pass.
func (v *Viewport) assignSceneDataToCameras() {
	root := v.SceneData()

	if v.manipulator != nil {
		v.manipulator.SetNode(root)
		v.manipulator.Home(&Event{}, v)
	}

	attach := func(c *Camera) {
		c.RemoveChildren()
		if root != nil {
			c.AddChild(root)
		}
		if r := c.Renderer(); r != nil {
			r.SetCompileOnNextDraw(true)
		}
	}
	attach(v.camera)
	for _, s := range v.slaves {
		if s.UseMastersSceneData {
			attach(s.Camera)
		}
	}
}

// DefaultInit gives the master camera a full-drawable viewport when it has
// none, shares the viewport stats with the cameras and initializes the
// manipulator.
type DefaultInit struct{}

func (DefaultInit) Init(v *Viewport, width, height int) {
	if _, ok := v.camera.Viewport(); !ok {
		v.camera.SetViewport(0, 0, float64(width), float64(height))
	}
	for _, c := range v.cameras() {
		if c.Stats() == nil {
			c.SetStats(v.stats)
		}
	}
	if v.manipulator != nil {
		v.manipulator.Init(&Event{Type: EventFrame}, v)
	}
}

// DefaultResized scales camera viewports with the drawable and corrects
// projections for the aspect ratio change. Cameras rendering to textures
// are left alone.
type DefaultResized struct{}

func (DefaultResized) Resized(v *Viewport, oldWidth, oldHeight, width, height int) {
	if oldWidth <= 0 || oldHeight <= 0 || width <= 0 || height <= 0 {
		return
	}
	wr := float64(width) / float64(oldWidth)
	hr := float64(height) / float64(oldHeight)
	arc := wr / hr

	for _, c := range v.cameras() {
		if c.RenderTarget() == FrameBufferObject {
			continue
		}
		if r, ok := c.Viewport(); ok {
			if r.X == 0 && r.Y == 0 && r.Width >= float64(oldWidth) && r.Height >= float64(oldHeight) {
				c.SetViewport(0, 0, float64(width), float64(height))
			} else {
				c.SetViewport(float64(int(r.X*wr)), float64(int(r.Y*hr)), float64(int(r.Width*wr)), float64(int(r.Height*hr)))
			}
		}

		if arc == 1 {
			continue
		}
		if c != v.camera && c.ReferenceFrame() == RelativeRF {
			// follows the master through UpdateSlaves
			continue
		}
		switch c.ProjectionResizePolicy() {
		case HorizontalResize:
			c.SetProjectionMatrix(mgl64.Scale3D(1/arc, 1, 1).Mul4(c.ProjectionMatrix()))
		case VerticalResize:
			c.SetProjectionMatrix(mgl64.Scale3D(1, arc, 1).Mul4(c.ProjectionMatrix()))
		}
	}
}

// DefaultSceneData shares scenes between viewports displaying the same
// root. A viewport adopts the registered Scene of root if there is one,
// otherwise it reuses its own Scene when nobody else holds it.
type DefaultSceneData struct{}

func (DefaultSceneData) SetSceneData(v *Viewport, root Node) {
	if v.scene != nil && v.scene.Root() == root {
		return
	}

	if shared := v.registry.Lookup(root); shared != nil {
		Logger().Debug("viewer: sharing scene", "owners", shared.Owners())
		shared.acquire()
		if v.scene != nil {
			v.scene.release()
		}
		v.scene = shared
	} else {
		switch {
		case v.scene == nil:
			v.scene = newScene(v.registry)
			Logger().Debug("viewer: allocating scene")
		case v.scene.Owners() != 1:
			v.scene.release()
			v.scene = newScene(v.registry)
			Logger().Debug("viewer: allocating scene")
		default:
			Logger().Debug("viewer: reusing scene")
		}
		v.scene.setRoot(root)
	}

	v.prepareSceneData()
	v.assignSceneDataToCameras()
}
