package viewer

// Engine is the external scene graph renderer. It creates one SceneView
// per camera; the viewer drives the SceneView through cull and draw.
type Engine interface {
	NewSceneView(cam *Camera) SceneView
}

// SceneView is an engine's persistent per-camera draw state.
type SceneView interface {
	SetFrameStamp(fs FrameStamp)
	SetStateSets(global, secondary *StateSet)
	SetPagers(database, image Pager)
	SetFusionDistance(mode FusionDistanceMode, value float64)

	// Cull builds the render lists from the camera's subgraphs.
	Cull()

	// Draw submits the render lists. A camera without subgraphs only
	// clears.
	Draw(ctx GraphicsContext)

	// Compile uploads GPU objects for the camera's subgraphs.
	Compile(ctx GraphicsContext)

	// Statistics describes the last culled frame.
	Statistics() RenderStatistics
}

// RenderStatistics counts what a SceneView culled as visible.
type RenderStatistics struct {
	Vertices   int
	Drawables  int
	Geometry   int
	Lights     int
	Primitives int
}

// nopEngine is used when no Engine is configured. Its views only clear.
type nopEngine struct{}

func (nopEngine) NewSceneView(*Camera) SceneView { return nopSceneView{} }

type nopSceneView struct{}

func (nopSceneView) SetFrameStamp(FrameStamp)                      {}
func (nopSceneView) SetStateSets(_, _ *StateSet)                   {}
func (nopSceneView) SetPagers(_, _ Pager)                          {}
func (nopSceneView) SetFusionDistance(FusionDistanceMode, float64) {}
func (nopSceneView) Cull()                                         {}
func (nopSceneView) Draw(GraphicsContext)                          {}
func (nopSceneView) Compile(GraphicsContext)                       {}
func (nopSceneView) Statistics() RenderStatistics                  { return RenderStatistics{} }
