// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenegraph

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
)

// Item is a mesh that survived culling, with its accumulated model matrix.
type Item struct {
	Mesh  *Mesh
	Model mgl64.Mat4
}

// Backend submits culled meshes to a GPU API.
type Backend interface {
	// Compile uploads m for ctx. It is called once per mesh and context.
	Compile(ctx viewer.GraphicsContext, m *Mesh) error

	// Draw clears the camera viewport and draws items.
	Draw(ctx viewer.GraphicsContext, cam *viewer.Camera, items []Item) error
}

// Engine is a viewer.Engine over Group, Transform and Mesh graphs.
type Engine struct {
	backend Backend

	draws    atomic.Uint64
	compiles atomic.Uint64
}

// NewEngine returns an engine drawing through b. A nil Backend makes the
// engine headless.
func NewEngine(b Backend) *Engine {
	return &Engine{backend: b}
}

// NewSceneView implements viewer.Engine.
func (e *Engine) NewSceneView(cam *viewer.Camera) viewer.SceneView {
	return &SceneView{engine: e, cam: cam, compiled: make(map[compileKey]bool)}
}

// Draws returns the number of Draw calls made by the engine's views.
func (e *Engine) Draws() uint64 { return e.draws.Load() }

// Compiles returns the number of meshes uploaded.
func (e *Engine) Compiles() uint64 { return e.compiles.Load() }

type compileKey struct {
	mesh *Mesh
	ctx  int
}

// SceneView culls a camera's children and hands the result to the
// engine's Backend.
type SceneView struct {
	engine *Engine
	cam    *viewer.Camera

	frame             viewer.FrameStamp
	global, secondary *viewer.StateSet
	database, image   viewer.Pager
	fusionMode        viewer.FusionDistanceMode
	fusionValue       float64

	items    []Item
	stats    viewer.RenderStatistics
	compiled map[compileKey]bool
}

func (sv *SceneView) SetFrameStamp(fs viewer.FrameStamp) { sv.frame = fs }

func (sv *SceneView) SetStateSets(global, secondary *viewer.StateSet) {
	sv.global, sv.secondary = global, secondary
}

func (sv *SceneView) SetPagers(database, image viewer.Pager) {
	sv.database, sv.image = database, image
}

func (sv *SceneView) SetFusionDistance(mode viewer.FusionDistanceMode, value float64) {
	sv.fusionMode, sv.fusionValue = mode, value
}

// FrameStamp returns the stamp of the frame being culled.
func (sv *SceneView) FrameStamp() viewer.FrameStamp { return sv.frame }

// StateSets returns the global and secondary state sets.
func (sv *SceneView) StateSets() (global, secondary *viewer.StateSet) {
	return sv.global, sv.secondary
}

// Items returns the render list built by the last Cull.
func (sv *SceneView) Items() []Item { return sv.items }

// Cull rebuilds the render list from the camera's children. Meshes whose
// world bound lies outside the view frustum are dropped.
func (sv *SceneView) Cull() {
	sv.items = sv.items[:0]
	sv.stats = viewer.RenderStatistics{}
	f := newFrustum(sv.cam.ProjectionMatrix().Mul4(sv.cam.ViewMatrix()))
	for _, n := range sv.cam.Children() {
		sv.cull(n, mgl64.Ident4(), f)
	}
}

func (sv *SceneView) cull(n viewer.Node, model mgl64.Mat4, f frustum) {
	if m, ok := n.(Masked); ok && m.NodeMask() == 0 {
		return
	}
	if t, ok := n.(viewer.Transformer); ok {
		model = model.Mul4(t.LocalMatrix())
	}
	if mesh, ok := n.(*Mesh); ok {
		if !f.contains(transformBound(mesh.Bound(), model)) {
			return
		}
		sv.items = append(sv.items, Item{Mesh: mesh, Model: model})
		sv.stats.Drawables++
		sv.stats.Geometry++
		sv.stats.Vertices += len(mesh.vertices)
		sv.stats.Primitives += mesh.Triangles()
		return
	}
	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			sv.cull(c, model, f)
		}
	}
}

// Draw submits the render list. Meshes not yet compiled for ctx are
// compiled first.
func (sv *SceneView) Draw(ctx viewer.GraphicsContext) {
	sv.engine.draws.Add(1)
	b := sv.engine.backend
	if b == nil {
		return
	}
	for _, it := range sv.items {
		sv.compileMesh(ctx, it.Mesh)
	}
	if err := b.Draw(ctx, sv.cam, sv.items); err != nil {
		viewer.Logger().Warn("scenegraph: draw failed", "camera", sv.cam.Name(), "err", err)
	}
}

// Compile uploads every mesh below the camera, visible or not.
func (sv *SceneView) Compile(ctx viewer.GraphicsContext) {
	for _, n := range sv.cam.Children() {
		walkMeshes(n, func(m *Mesh) { sv.compileMesh(ctx, m) })
	}
}

func (sv *SceneView) compileMesh(ctx viewer.GraphicsContext, m *Mesh) {
	key := compileKey{mesh: m, ctx: contextID(ctx)}
	if sv.compiled[key] {
		return
	}
	sv.compiled[key] = true
	sv.engine.compiles.Add(1)
	if b := sv.engine.backend; b != nil {
		if err := b.Compile(ctx, m); err != nil {
			viewer.Logger().Warn("scenegraph: compile failed", "mesh", m.Name(), "err", err)
		}
	}
}

// Statistics implements viewer.SceneView.
func (sv *SceneView) Statistics() viewer.RenderStatistics { return sv.stats }

func contextID(ctx viewer.GraphicsContext) int {
	if ctx == nil || ctx.State() == nil {
		return 0
	}
	return ctx.State().ContextID()
}

func walkMeshes(n viewer.Node, fn func(*Mesh)) {
	if m, ok := n.(*Mesh); ok {
		fn(m)
		return
	}
	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			walkMeshes(c, fn)
		}
	}
}

// frustum holds the six clip planes extracted from a view-projection
// matrix, each as (a, b, c, d) with the inside where ax+by+cz+d >= 0.
type frustum [6]mgl64.Vec4

func newFrustum(vp mgl64.Mat4) frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	return frustum{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	}
}

func (f frustum) contains(b viewer.BoundingSphere) bool {
	if !b.Valid() {
		return false
	}
	for _, p := range f {
		n := p.Vec3()
		l := n.Len()
		if l == 0 {
			continue
		}
		if n.Dot(b.Center)+p.W() < -b.Radius*l {
			return false
		}
	}
	return true
}

var (
	_ viewer.Engine    = (*Engine)(nil)
	_ viewer.SceneView = (*SceneView)(nil)
)
