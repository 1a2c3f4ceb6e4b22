package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/viewer/stats"
)

// NodeMask selects nodes during traversals and ray casts.
type NodeMask uint32

// AllNodes matches every node.
const AllNodes NodeMask = ^NodeMask(0)

// BoundingSphere bounds a subgraph. A negative radius marks an empty bound.
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// EmptyBound returns an invalid bound that expands to the first sphere added.
func EmptyBound() BoundingSphere { return BoundingSphere{Radius: -1} }

// Valid reports whether the bound contains anything.
func (b BoundingSphere) Valid() bool { return b.Radius >= 0 }

// Expand returns the smallest sphere enclosing b and o.
func (b BoundingSphere) Expand(o BoundingSphere) BoundingSphere {
	switch {
	case !o.Valid():
		return b
	case !b.Valid():
		return o
	}
	d := o.Center.Sub(b.Center)
	dist := d.Len()
	if dist+o.Radius <= b.Radius {
		return b
	}
	if dist+b.Radius <= o.Radius {
		return o
	}
	r := (dist + b.Radius + o.Radius) * 0.5
	c := b.Center.Add(d.Mul((r - b.Radius) / dist))
	return BoundingSphere{Center: c, Radius: r}
}

// VisitorKind identifies the pass a NodeVisitor performs.
type VisitorKind int

const (
	UpdateVisitor VisitorKind = iota
	EventVisitor
)

// TraversalMode controls whether a visit descends into children.
type TraversalMode int

const (
	// TraverseNone runs callbacks on the visited node only.
	TraverseNone TraversalMode = iota
	// TraverseAll descends into every child.
	TraverseAll
)

// NodeVisitor carries the state of an update or event pass.
type NodeVisitor struct {
	Kind            VisitorKind
	Mode            TraversalMode
	TraversalMask   NodeMask
	FrameStamp      *FrameStamp
	TraversalNumber uint64

	// Events holds the events being dispatched during an event pass.
	Events []*Event

	// ActionAdapter receives redraw and continuous update requests from
	// event callbacks.
	ActionAdapter ActionAdapter

	// ImageRequests is the scene's image pager during update passes.
	ImageRequests Pager
}

// Node is the minimal scene graph node the viewer drives.
//
// Implementations must be comparable (pointer types) because a root node
// is the identity a Scene is registered under.
type Node interface {
	// Accept runs the node's callbacks for nv and, when nv.Mode is
	// TraverseAll, visits its children.
	Accept(nv *NodeVisitor)

	// Bound computes, or returns the cached, bounding sphere.
	Bound() BoundingSphere
}

// UpdateRequirer is implemented by nodes whose subgraph has update
// callbacks.
type UpdateRequirer interface {
	RequiresUpdateTraversal() bool
}

// StaticMarker is implemented by nodes that can be flagged as not changing
// after the scene is prepared.
type StaticMarker interface {
	MarkStatic()
}

// ThreadSafeReferencer is implemented by nodes that can switch their
// reference counting to a thread-safe mode.
type ThreadSafeReferencer interface {
	SetThreadSafeReferences(on bool)
}

// GPUObjectSizer is implemented by nodes holding per-context GPU objects.
type GPUObjectSizer interface {
	ResizeGPUObjectBuffers(contexts int)
}

// Intersectable is implemented by nodes that can be ray cast. seg is in the
// node's parent coordinate frame.
type Intersectable interface {
	Intersect(seg Segment, mask NodeMask) []Intersection
}

// Transformer is implemented by nodes that change the coordinate frame of
// their children.
type Transformer interface {
	LocalMatrix() mgl64.Mat4
}

// GraphStatisticsCollector is implemented by nodes that can report the
// composition of their subgraph.
type GraphStatisticsCollector interface {
	CollectGraphStatistics(gs *GraphStatistics)
}

// GraphStatistics counts unique and instanced objects in a scene graph.
type GraphStatistics struct {
	UniqueStateSets, UniqueGroups, UniqueTransforms, UniqueGeodes     int
	UniqueDrawables, UniqueGeometry, UniqueVertices, UniquePrimitives int

	InstancedStateSets, InstancedGroups, InstancedTransforms, InstancedGeodes     int
	InstancedDrawables, InstancedGeometry, InstancedVertices, InstancedPrimitives int
}

// Record writes every counter to s under frame.
func (gs *GraphStatistics) Record(s *stats.Stats, frame uint64) {
	for _, a := range []struct {
		name  string
		value int
	}{
		{stats.UniqueStateSets, gs.UniqueStateSets},
		{stats.UniqueGroups, gs.UniqueGroups},
		{stats.UniqueTransforms, gs.UniqueTransforms},
		{stats.UniqueGeodes, gs.UniqueGeodes},
		{stats.UniqueDrawables, gs.UniqueDrawables},
		{stats.UniqueGeometry, gs.UniqueGeometry},
		{stats.UniqueVertices, gs.UniqueVertices},
		{stats.UniquePrimitives, gs.UniquePrimitives},
		{stats.InstancedStateSets, gs.InstancedStateSets},
		{stats.InstancedGroups, gs.InstancedGroups},
		{stats.InstancedTransforms, gs.InstancedTransforms},
		{stats.InstancedGeodes, gs.InstancedGeodes},
		{stats.InstancedDrawables, gs.InstancedDrawables},
		{stats.InstancedGeometry, gs.InstancedGeometry},
		{stats.InstancedVertices, gs.InstancedVertices},
		{stats.InstancedPrimitives, gs.InstancedPrimitives},
	} {
		s.SetAttribute(frame, a.name, float64(a.value))
	}
}

// Pager streams scene content in the background. The viewer only
// synchronises with it at frame boundaries.
type Pager interface {
	RequiresUpdateSceneGraph() bool
	UpdateSceneGraph(fs *FrameStamp)
	RequiresRedraw() bool
	SignalBeginFrame(fs *FrameStamp)
	SignalEndFrame()
	RegisterPagedNodes(root Node)
}

// NopPager is a Pager that never has work.
type NopPager struct{}

func (NopPager) RequiresUpdateSceneGraph() bool { return false }
func (NopPager) UpdateSceneGraph(*FrameStamp)   {}
func (NopPager) RequiresRedraw() bool           { return false }
func (NopPager) SignalBeginFrame(*FrameStamp)   {}
func (NopPager) SignalEndFrame()                {}
func (NopPager) RegisterPagedNodes(Node)        {}

var _ Pager = NopPager{}

// TextureKind distinguishes texture targets for render-to-texture lookups.
type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureRectangle
	TextureCubeMap
)

// Texture is a render target texture a camera may draw into.
type Texture struct {
	Name   string
	Kind   TextureKind
	Width  int
	Height int
	Format gputypes.TextureFormat
}

// Size returns the texture extent.
func (t *Texture) Size() gputypes.Extent3D {
	layers := uint32(1)
	if t.Kind == TextureCubeMap {
		layers = 6
	}
	return gputypes.Extent3D{Width: uint32(t.Width), Height: uint32(t.Height), DepthOrArrayLayers: layers}
}

// StateSet is an opaque set of render state handed to the engine.
type StateSet struct {
	Name string
}

// DisplaySettings holds viewport-wide rendering preferences.
type DisplaySettings struct {
	// MaxGraphicsContexts pre-sizes per-context GPU object buffers.
	MaxGraphicsContexts int

	// ThreadSafeReferences switches scene graphs to thread-safe reference
	// counting when they are prepared.
	ThreadSafeReferences bool
}

// DefaultDisplaySettings returns settings for a single context.
func DefaultDisplaySettings() *DisplaySettings {
	return &DisplaySettings{MaxGraphicsContexts: 1}
}
