package viewer

import "github.com/gogpu/viewer/stats"

// WindowOption configures a Window during creation.
//
// Example:
//
//	// Continuous rendering with the default policies
//	w, err := viewer.NewWindow(ctx)
//
//	// On-demand rendering with a custom engine
//	w, err := viewer.NewWindow(ctx,
//		viewer.WithFrameScheme(viewer.OnDemand),
//		viewer.WithEngine(engine))
type WindowOption func(*windowOptions)

// windowOptions holds optional configuration for Window creation.
type windowOptions struct {
	scheme        FrameScheme
	clock         Clock
	registry      *SceneRegistry
	engine        Engine
	stats         *stats.Stats
	addPolicy     AddViewportPolicy
	removePolicy  RemoveViewportPolicy
	statsPolicy   WindowStatsPolicy
	rendererStats RendererStatsPolicy
}

// defaultWindowOptions returns the default window options.
func defaultWindowOptions() windowOptions {
	return windowOptions{
		scheme:        Continuous,
		registry:      globalRegistry,
		engine:        nopEngine{},
		stats:         stats.New("Window"),
		addPolicy:     DefaultAddViewport{},
		removePolicy:  DefaultRemoveViewport{},
		statsPolicy:   DefaultWindowStats{},
		rendererStats: DefaultRendererStats{},
	}
}

// WithFrameScheme selects continuous or on-demand rendering.
func WithFrameScheme(s FrameScheme) WindowOption {
	return func(o *windowOptions) {
		o.scheme = s
	}
}

// WithClock replaces the wall clock used for frame times. Tests pass a
// manual clock.
func WithClock(c Clock) WindowOption {
	return func(o *windowOptions) {
		o.clock = c
	}
}

// WithSceneRegistry sets the registry used by viewports created with
// Window.NewViewport.
func WithSceneRegistry(r *SceneRegistry) WindowOption {
	return func(o *windowOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithEngine sets the scene graph engine that culls and draws cameras.
// Without one, cameras only clear.
func WithEngine(e Engine) WindowOption {
	return func(o *windowOptions) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithStats replaces the window statistics sink.
func WithStats(s *stats.Stats) WindowOption {
	return func(o *windowOptions) {
		if s != nil {
			o.stats = s
		}
	}
}

// WithAddViewportPolicy replaces the add-viewport behavior.
func WithAddViewportPolicy(p AddViewportPolicy) WindowOption {
	return func(o *windowOptions) {
		if p != nil {
			o.addPolicy = p
		}
	}
}

// WithRemoveViewportPolicy replaces the remove-viewport behavior.
func WithRemoveViewportPolicy(p RemoveViewportPolicy) WindowOption {
	return func(o *windowOptions) {
		if p != nil {
			o.removePolicy = p
		}
	}
}

// WithWindowStatsPolicy replaces the end-of-frame statistics hook.
func WithWindowStatsPolicy(p WindowStatsPolicy) WindowOption {
	return func(o *windowOptions) {
		if p != nil {
			o.statsPolicy = p
		}
	}
}

// WithRendererStatsPolicy replaces the per-camera statistics hook.
func WithRendererStatsPolicy(p RendererStatsPolicy) WindowOption {
	return func(o *windowOptions) {
		if p != nil {
			o.rendererStats = p
		}
	}
}

// ViewportOption configures a Viewport during creation.
type ViewportOption func(*viewportOptions)

type viewportOptions struct {
	registry        *SceneRegistry
	displaySettings *DisplaySettings
	stats           *stats.Stats
	initPolicy      InitPolicy
	resizedPolicy   ResizedPolicy
	sceneDataPolicy SceneDataPolicy
}

func defaultViewportOptions() viewportOptions {
	return viewportOptions{
		registry:        globalRegistry,
		displaySettings: DefaultDisplaySettings(),
		stats:           stats.New("Viewport"),
		initPolicy:      DefaultInit{},
		resizedPolicy:   DefaultResized{},
		sceneDataPolicy: DefaultSceneData{},
	}
}

// WithViewportRegistry sets the registry the viewport shares scenes
// through.
func WithViewportRegistry(r *SceneRegistry) ViewportOption {
	return func(o *viewportOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithDisplaySettings sets the viewport display settings.
func WithDisplaySettings(ds *DisplaySettings) ViewportOption {
	return func(o *viewportOptions) {
		if ds != nil {
			o.displaySettings = ds
		}
	}
}

// WithViewportStats replaces the viewport statistics sink shared with its
// cameras.
func WithViewportStats(s *stats.Stats) ViewportOption {
	return func(o *viewportOptions) {
		if s != nil {
			o.stats = s
		}
	}
}

// WithInitPolicy replaces the viewport initialization behavior.
func WithInitPolicy(p InitPolicy) ViewportOption {
	return func(o *viewportOptions) {
		if p != nil {
			o.initPolicy = p
		}
	}
}

// WithResizedPolicy replaces the viewport resize behavior.
func WithResizedPolicy(p ResizedPolicy) ViewportOption {
	return func(o *viewportOptions) {
		if p != nil {
			o.resizedPolicy = p
		}
	}
}

// WithSceneDataPolicy replaces the scene assignment behavior.
func WithSceneDataPolicy(p SceneDataPolicy) ViewportOption {
	return func(o *viewportOptions) {
		if p != nil {
			o.sceneDataPolicy = p
		}
	}
}
