package viewer

// EventType is the kind of an input event.
type EventType uint16

// EventNone is the zero event type.
const EventNone EventType = 0

const (
	EventPush EventType = 1 << iota
	EventRelease
	EventDoubleClick
	EventDrag
	EventMove
	EventKeyDown
	EventKeyUp
	EventFrame
	EventResize
	EventScroll
	EventCloseWindow
)

var eventTypeNames = map[EventType]string{
	EventNone:        "none",
	EventPush:        "push",
	EventRelease:     "release",
	EventDoubleClick: "double-click",
	EventDrag:        "drag",
	EventMove:        "move",
	EventKeyDown:     "keydown",
	EventKeyUp:       "keyup",
	EventFrame:       "frame",
	EventResize:      "resize",
	EventScroll:      "scroll",
	EventCloseWindow: "close",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MouseButtonMask is a bit set of pressed mouse buttons.
type MouseButtonMask uint8

const (
	LeftMouseButton MouseButtonMask = 1 << iota
	MiddleMouseButton
	RightMouseButton
)

// ModKeyMask is a bit set of held modifier keys.
type ModKeyMask uint16

const (
	ModShift ModKeyMask = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// ScrollMotion is the direction of a scroll event.
type ScrollMotion uint8

const (
	ScrollNone ScrollMotion = iota
	ScrollUp
	ScrollDown
	ScrollLeft
	ScrollRight
	Scroll2D
)

// ScrollMotionFromDelta classifies a scroll delta, with positive dy
// scrolling up and positive dx scrolling right.
func ScrollMotionFromDelta(dx, dy float64) ScrollMotion {
	switch {
	case dx != 0 && dy != 0:
		return Scroll2D
	case dy > 0:
		return ScrollUp
	case dy < 0:
		return ScrollDown
	case dx > 0:
		return ScrollRight
	case dx < 0:
		return ScrollLeft
	}
	return ScrollNone
}

// YOrientation tells whether event Y grows up or down the drawable.
type YOrientation uint8

const (
	YIncreasingUpwards YOrientation = iota
	YIncreasingDownwards
)

// PointerData is the pointer position expressed in one coordinate space.
// The Window entry has Camera nil and uses drawable pixels; camera entries
// use the camera's normalized range.
type PointerData struct {
	Context GraphicsContext
	Camera  *Camera

	X, XMin, XMax float64
	Y, YMin, YMax float64
}

// XNormalized maps X to [-1, 1] across [XMin, XMax].
func (p PointerData) XNormalized() float64 {
	return (p.X-p.XMin)/(p.XMax-p.XMin)*2 - 1
}

// YNormalized maps Y to [-1, 1] across [YMin, YMax].
func (p PointerData) YNormalized() float64 {
	return (p.Y-p.YMin)/(p.YMax-p.YMin)*2 - 1
}

// Event is an input or window event. Window.Event fills in the pointer
// data chain of pointer events.
type Event struct {
	Type EventType

	// X, Y are in drawable pixels with the orientation in MouseYOrientation.
	X, Y              float64
	MouseYOrientation YOrientation

	Button     MouseButtonMask
	ButtonMask MouseButtonMask
	Key        int
	ModKeyMask ModKeyMask

	Scroll   ScrollMotion
	ScrollDX float64
	ScrollDY float64

	// WindowWidth and WindowHeight are set on resize events.
	WindowWidth  int
	WindowHeight int

	Time    float64
	Context GraphicsContext
	Handled bool

	pointers []PointerData
}

// PointerData returns the pointer chain: the Window entry first, then the
// camera under the pointer, then any reprojected entries.
func (e *Event) PointerData() []PointerData { return e.pointers }

func (e *Event) lastPointer() (PointerData, bool) {
	if len(e.pointers) == 0 {
		return PointerData{}, false
	}
	return e.pointers[len(e.pointers)-1], true
}

// SetPointerData replaces the pointer chain.
func (e *Event) SetPointerData(pd []PointerData) { e.pointers = pd }

func (e *Event) addPointerData(pd PointerData) { e.pointers = append(e.pointers, pd) }

// ActionAdapter receives requests from event handlers.
type ActionAdapter interface {
	RequestRedraw()
	RequestContinuousUpdate(on bool)

	// RequestWarpPointer moves the pointer and reports whether the
	// request could be served.
	RequestWarpPointer(x, y float64) bool
}

// EventHandler reacts to events. Returning true marks the event handled.
//
// Handlers are registered and removed by identity, so implementations
// should be pointer types. EventHandlerFunc values are not comparable;
// register at most one per list.
type EventHandler interface {
	Handle(e *Event, aa ActionAdapter, fs *FrameStamp) bool
}

// EventHandlerFunc adapts a function to an EventHandler.
type EventHandlerFunc func(e *Event, aa ActionAdapter, fs *FrameStamp) bool

// Handle calls f.
func (f EventHandlerFunc) Handle(e *Event, aa ActionAdapter, fs *FrameStamp) bool {
	return f(e, aa, fs)
}

// FusionDistanceMode selects how stereo fusion distance is derived.
type FusionDistanceMode int

const (
	FusionUseValue FusionDistanceMode = iota
	FusionProportionalToScreenDistance
)

// CameraManipulator drives a viewport's master camera from input.
type CameraManipulator interface {
	EventHandler

	// SetNode gives the manipulator the scene it orbits.
	SetNode(n Node)

	// Init is called when the viewport is initialized.
	Init(e *Event, aa ActionAdapter)

	// Home resets the camera to its home position.
	Home(e *Event, aa ActionAdapter)

	// UpdateCamera writes the manipulator's view into c.
	UpdateCamera(c *Camera)

	// FusionDistance returns the stereo fusion distance.
	FusionDistance() (FusionDistanceMode, float64)
}
