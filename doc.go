// Package viewer hosts several viewports in one GPU window and drives their
// frames.
//
// # Overview
//
// A Window owns one GraphicsContext and any number of Viewports. Each
// Viewport has a master Camera, optional slave cameras, a Scene and an
// optional CameraManipulator. Viewports that are given the same root node
// share one Scene. Drawing itself is delegated to an Engine, reached through
// the SceneView it creates per camera; viewer only schedules and measures.
//
// # Quick Start
//
//	ctx := viewer.NewEmbeddedContext(0, 0, 800, 600)
//	w, err := viewer.NewWindow(ctx, viewer.WithEngine(engine))
//	if err != nil {
//		return err
//	}
//
//	v := w.NewViewport()
//	v.SetSceneData(root)
//	w.Init()
//
//	for running {
//		for _, e := range pendingEvents {
//			w.Event(e)
//		}
//		if w.CheckNeedToDoFrame() {
//			w.Advance()
//			w.Frame()
//		}
//	}
//
// # Frames
//
// Frame runs the update traversal (pagers, scene update callbacks, queued
// operations, camera callbacks and manipulators) and then the rendering
// traversals: the context is made current, every camera is drawn by its
// Renderer in render order, context operations run, buffers are swapped and
// the context is released.
//
// # Events
//
// Window.Event attaches pointer data to pointer events so that handlers
// bound to nested cameras receive coordinates in their own camera space.
// Press, double click and scroll events move the focus to the viewport
// under the pointer.
//
// # Statistics
//
// Window, Viewport and Scene each carry a stats.Stats sink. Writers check
// the category of an attribute ("event", "update", "rendering", "gpu",
// "scene", "compile", "frame_rate") before collecting it. GPU times come
// from the timerquery package and arrive one or more frames late.
//
// # Logging
//
// viewer is silent by default. Use SetLogger to route its diagnostics to a
// slog.Logger.
package viewer
