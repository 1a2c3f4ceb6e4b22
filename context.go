package viewer

import (
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/viewer/timerquery"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host owns the device; viewer only polls it between frames so that
// mapped buffers and completed submissions are retired. DeviceHandle is an
// alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle without a device, used by headless and
// embedded contexts.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// Traits describes the drawable a context renders to.
type Traits struct {
	X, Y          int
	Width, Height int
	WindowName    string
	DoubleBuffer  bool
	Format        gputypes.TextureFormat
}

// Size returns the drawable size.
func (t Traits) Size() gputypes.Extent3D {
	return gputypes.Extent3D{Width: uint32(max(t.Width, 0)), Height: uint32(max(t.Height, 0)), DepthOrArrayLayers: 1}
}

// GraphicsContext is the GPU-capable drawable driven by a Window.
type GraphicsContext interface {
	Traits() Traits

	// MakeCurrent binds the context to the calling thread.
	MakeCurrent() bool

	// ReleaseContext unbinds the context.
	ReleaseContext() bool

	// RunOperations runs the context's deferred GPU operations.
	RunOperations()

	SwapBuffers()

	// State returns the per-context GPU state.
	State() *State
}

// PointerWarper is implemented by contexts that can move the pointer.
type PointerWarper interface {
	WarpPointer(x, y float64) bool
}

// State is the per-context GPU state shared by all renderers drawing into
// one context: the timer query device and the GPU clock reference.
type State struct {
	contextID int
	queries   timerquery.Device
	clock     func() float64

	gpuTimestamp uint64
	gpuTime      float64
	sampled      bool
}

// NewState creates GPU state. queries may be nil when the context cannot
// time GPU work. The CPU clock is installed by the Window the context is
// attached to.
func NewState(contextID int, queries timerquery.Device) *State {
	return &State{contextID: contextID, queries: queries}
}

// ContextID returns the context identifier.
func (s *State) ContextID() int { return s.contextID }

// TimerQueries returns the timer query device, or nil.
func (s *State) TimerQueries() timerquery.Device { return s.queries }

// SetTimerQueries installs the timer query device.
func (s *State) SetTimerQueries(d timerquery.Device) { s.queries = d }

// TimestampBits returns the valid bits of GPU timestamps, 0 when
// unsupported.
func (s *State) TimestampBits() int {
	if s.queries == nil {
		return 0
	}
	return s.queries.Capabilities().TimestampBits
}

func (s *State) setClock(clock func() float64) { s.clock = clock }

func (s *State) now() float64 {
	if s.clock == nil {
		return 0
	}
	return s.clock()
}

// FrameCompleted samples the GPU clock against the CPU clock. The Window
// calls it after each swap while the context is still current.
func (s *State) FrameCompleted() {
	if s.TimestampBits() == 0 {
		return
	}
	s.gpuTimestamp = s.queries.Timestamp()
	s.gpuTime = s.now()
	s.sampled = true
}

// GPUReference returns the latest GPU clock sample, taking one if none
// exists yet.
func (s *State) GPUReference() (uint64, float64) {
	if !s.sampled {
		s.FrameCompleted()
	}
	return s.gpuTimestamp, s.gpuTime
}

var _ timerquery.ClockReference = (*State)(nil)

// ContextBase implements the bookkeeping shared by GraphicsContext
// implementations. Embed it and provide MakeCurrent, ReleaseContext and
// SwapBuffers.
type ContextBase struct {
	mu     sync.Mutex
	traits Traits

	ops    OperationQueue[GraphicsContext]
	state  *State
	device DeviceHandle

	// self is the outer context passed to operations.
	self GraphicsContext
}

// Init prepares the base. self is the embedding context.
func (c *ContextBase) Init(self GraphicsContext, traits Traits, state *State) {
	if state == nil {
		state = NewState(0, nil)
	}
	c.self = self
	c.traits = traits
	c.state = state
}

// Traits returns a copy of the context traits.
func (c *ContextBase) Traits() Traits {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.traits
}

// Resize updates the drawable geometry.
func (c *ContextBase) Resize(x, y, width, height int) {
	c.mu.Lock()
	c.traits.X, c.traits.Y = x, y
	c.traits.Width, c.traits.Height = width, height
	c.mu.Unlock()
}

// State returns the per-context GPU state.
func (c *ContextBase) State() *State { return c.state }

// SetDeviceHandle attaches the host GPU device.
func (c *ContextBase) SetDeviceHandle(h DeviceHandle) {
	c.mu.Lock()
	c.device = h
	if h != nil && c.traits.Format == gputypes.TextureFormatUndefined {
		c.traits.Format = h.SurfaceFormat()
	}
	c.mu.Unlock()
}

// DeviceHandle returns the attached device handle, or nil.
func (c *ContextBase) DeviceHandle() DeviceHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// AddOperation queues a GPU operation.
func (c *ContextBase) AddOperation(op Operation[GraphicsContext]) { c.ops.Add(op) }

// RemoveOperation removes a queued GPU operation.
func (c *ContextBase) RemoveOperation(op Operation[GraphicsContext]) { c.ops.Remove(op) }

// PendingOperations returns the number of queued GPU operations.
func (c *ContextBase) PendingOperations() int { return c.ops.Len() }

type poller interface {
	Poll(wait bool)
}

// RunOperations runs queued GPU operations and then polls the attached
// device without blocking.
func (c *ContextBase) RunOperations() {
	target := c.self
	c.ops.Run(target)

	h := c.DeviceHandle()
	if h == nil {
		return
	}
	if p, ok := h.Device().(poller); ok {
		p.Poll(false)
	}
}

// EmbeddedContext is a context whose drawable is managed by the host. All
// context-switching calls succeed without doing anything.
type EmbeddedContext struct {
	ContextBase
	swaps int
}

// NewEmbeddedContext creates an embedded context of the given size.
func NewEmbeddedContext(x, y, width, height int) *EmbeddedContext {
	c := &EmbeddedContext{}
	c.Init(c, Traits{X: x, Y: y, Width: width, Height: height, Format: gputypes.TextureFormatRGBA8Unorm}, nil)
	return c
}

// MakeCurrent does nothing.
func (c *EmbeddedContext) MakeCurrent() bool { return true }

// ReleaseContext does nothing.
func (c *EmbeddedContext) ReleaseContext() bool { return true }

// SwapBuffers counts swaps.
func (c *EmbeddedContext) SwapBuffers() { c.swaps++ }

// Swaps returns the number of SwapBuffers calls.
func (c *EmbeddedContext) Swaps() int { return c.swaps }

var _ GraphicsContext = (*EmbeddedContext)(nil)
