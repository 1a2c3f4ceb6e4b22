// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scenegraph is a small retained scene graph and culling engine for
// the viewer package.
//
// Graphs are built from three node types:
//
//   - Group holds children and an optional update callback.
//   - Transform is a Group with a local matrix.
//   - Mesh is an indexed triangle list with optional texture coordinates.
//
// All three implement the optional viewer capabilities (update requirement,
// static marking, GPU buffer sizing, ray casting and graph statistics), so a
// graph can be handed directly to Viewport.SetSceneData.
//
// Engine implements viewer.Engine. Its SceneViews cull meshes against the
// camera frustum and pass the visible list to a Backend. Without a Backend
// the engine is headless and only counts what it would draw, which is what
// the benchmarks and tests use.
//
// Example:
//
//	quad := scenegraph.NewQuad("floor", 2, 2, nil)
//	spin := scenegraph.NewTransform("spin", mgl64.Ident4(), quad)
//	spin.SetUpdateCallback(func(n viewer.Node, nv *viewer.NodeVisitor) {
//		t := nv.FrameStamp.SimulationTime()
//		spin.SetMatrix(mgl64.HomogRotate3DY(t))
//	})
//
//	w, _ := viewer.NewWindow(ctx, viewer.WithEngine(scenegraph.NewEngine(nil)))
//	w.NewViewport().SetSceneData(spin)
package scenegraph
