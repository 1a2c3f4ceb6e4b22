// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenegraph

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
)

// UpdateCallback runs during update traversals, before the node's children
// are visited.
type UpdateCallback func(n viewer.Node, nv *viewer.NodeVisitor)

// Parent is implemented by nodes with children.
type Parent interface {
	Children() []viewer.Node
}

// Masked is implemented by nodes that can be excluded from traversals.
type Masked interface {
	NodeMask() viewer.NodeMask
}

// Group is a node with children.
type Group struct {
	name     string
	mask     viewer.NodeMask
	children []viewer.Node
	update   UpdateCallback

	static     bool
	threadSafe bool
	contexts   int
}

// NewGroup creates a group visible to every traversal.
func NewGroup(name string, children ...viewer.Node) *Group {
	g := &Group{name: name, mask: viewer.AllNodes}
	for _, c := range children {
		g.AddChild(c)
	}
	return g
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// NodeMask returns the traversal mask of the group.
func (g *Group) NodeMask() viewer.NodeMask { return g.mask }

// SetNodeMask sets the traversal mask. A zero mask hides the group.
func (g *Group) SetNodeMask(m viewer.NodeMask) { g.mask = m }

// AddChild appends c. nil children are ignored.
func (g *Group) AddChild(c viewer.Node) {
	if c != nil {
		g.children = append(g.children, c)
	}
}

// RemoveChild removes the first occurrence of c.
func (g *Group) RemoveChild(c viewer.Node) bool {
	i := slices.Index(g.children, c)
	if i < 0 {
		return false
	}
	g.children = slices.Delete(g.children, i, i+1)
	return true
}

// Children returns the children of the group.
func (g *Group) Children() []viewer.Node { return g.children }

// SetUpdateCallback installs the update callback; nil removes it.
func (g *Group) SetUpdateCallback(cb UpdateCallback) { g.update = cb }

// Static reports whether the group was marked static.
func (g *Group) Static() bool { return g.static }

// ThreadSafeReferences reports whether thread-safe references were
// requested.
func (g *Group) ThreadSafeReferences() bool { return g.threadSafe }

// GPUObjectBuffers returns the number of per-context GPU object slots.
func (g *Group) GPUObjectBuffers() int { return g.contexts }

// Accept runs the update callback for update visitors and visits the
// children when nv.Mode is TraverseAll.
func (g *Group) Accept(nv *viewer.NodeVisitor) {
	g.accept(g, nv)
}

// accept is shared with Transform so callbacks receive the outer node.
func (g *Group) accept(self viewer.Node, nv *viewer.NodeVisitor) {
	if nv.TraversalMask&g.mask == 0 {
		return
	}
	if nv.Kind == viewer.UpdateVisitor && g.update != nil {
		g.update(self, nv)
	}
	if nv.Mode != viewer.TraverseAll {
		return
	}
	for _, c := range g.children {
		c.Accept(nv)
	}
}

// Bound encloses the bounds of every child.
func (g *Group) Bound() viewer.BoundingSphere {
	b := viewer.EmptyBound()
	for _, c := range g.children {
		b = b.Expand(c.Bound())
	}
	return b
}

// RequiresUpdateTraversal reports whether the group or a descendant has an
// update callback.
func (g *Group) RequiresUpdateTraversal() bool {
	if g.update != nil {
		return true
	}
	for _, c := range g.children {
		if u, ok := c.(viewer.UpdateRequirer); ok && u.RequiresUpdateTraversal() {
			return true
		}
	}
	return false
}

// MarkStatic marks the group and its descendants static.
func (g *Group) MarkStatic() {
	g.static = true
	for _, c := range g.children {
		if m, ok := c.(viewer.StaticMarker); ok {
			m.MarkStatic()
		}
	}
}

// SetThreadSafeReferences propagates the reference mode to the subgraph.
func (g *Group) SetThreadSafeReferences(on bool) {
	g.threadSafe = on
	for _, c := range g.children {
		if r, ok := c.(viewer.ThreadSafeReferencer); ok {
			r.SetThreadSafeReferences(on)
		}
	}
}

// ResizeGPUObjectBuffers sizes per-context GPU slots in the subgraph.
func (g *Group) ResizeGPUObjectBuffers(contexts int) {
	g.contexts = contexts
	for _, c := range g.children {
		if s, ok := c.(viewer.GPUObjectSizer); ok {
			s.ResizeGPUObjectBuffers(contexts)
		}
	}
}

// Intersect casts seg into the children and prefixes each hit path with the
// group.
func (g *Group) Intersect(seg viewer.Segment, mask viewer.NodeMask) []viewer.Intersection {
	return g.intersect(g, seg, mask)
}

func (g *Group) intersect(self viewer.Node, seg viewer.Segment, mask viewer.NodeMask) []viewer.Intersection {
	if mask&g.mask == 0 {
		return nil
	}
	var hits []viewer.Intersection
	for _, c := range g.children {
		in, ok := c.(viewer.Intersectable)
		if !ok {
			continue
		}
		for _, h := range in.Intersect(seg, mask) {
			h.NodePath = append([]viewer.Node{self}, h.NodePath...)
			hits = append(hits, h)
		}
	}
	return hits
}

// CollectGraphStatistics counts the subgraph rooted at the group.
func (g *Group) CollectGraphStatistics(gs *viewer.GraphStatistics) {
	newCollector(gs).visit(g)
}

// Transform is a Group whose children are placed by a local matrix.
type Transform struct {
	Group
	matrix mgl64.Mat4
}

// NewTransform creates a transform node.
func NewTransform(name string, m mgl64.Mat4, children ...viewer.Node) *Transform {
	t := &Transform{matrix: m}
	t.name, t.mask = name, viewer.AllNodes
	for _, c := range children {
		t.AddChild(c)
	}
	return t
}

// LocalMatrix returns the matrix applied to the children.
func (t *Transform) LocalMatrix() mgl64.Mat4 { return t.matrix }

// SetMatrix replaces the local matrix.
func (t *Transform) SetMatrix(m mgl64.Mat4) { t.matrix = m }

// Accept runs the group callbacks with t as the visited node.
func (t *Transform) Accept(nv *viewer.NodeVisitor) {
	t.accept(t, nv)
}

// Bound returns the children bound placed by the local matrix.
func (t *Transform) Bound() viewer.BoundingSphere {
	return transformBound(t.Group.Bound(), t.matrix)
}

// Intersect casts seg into the children in their own frame and maps the
// hits back.
func (t *Transform) Intersect(seg viewer.Segment, mask viewer.NodeMask) []viewer.Intersection {
	if t.matrix.Det() == 0 {
		return nil
	}
	local := seg.Transform(t.matrix.Inv())
	hits := t.intersect(t, local, mask)
	normal := t.matrix.Inv().Transpose()
	for i := range hits {
		hits[i].Point = mgl64.TransformCoordinate(hits[i].Point, t.matrix)
		hits[i].Normal = mgl64.TransformNormal(hits[i].Normal, normal).Normalize()
	}
	return hits
}

// CollectGraphStatistics counts the subgraph rooted at the transform.
func (t *Transform) CollectGraphStatistics(gs *viewer.GraphStatistics) {
	newCollector(gs).visit(t)
}

// transformBound maps b through m, scaling the radius by the largest axis
// scale of m.
func transformBound(b viewer.BoundingSphere, m mgl64.Mat4) viewer.BoundingSphere {
	if !b.Valid() {
		return b
	}
	scale := max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
	return viewer.BoundingSphere{
		Center: mgl64.TransformCoordinate(b.Center, m),
		Radius: b.Radius * scale,
	}
}

var (
	_ viewer.Node                     = (*Group)(nil)
	_ viewer.UpdateRequirer           = (*Group)(nil)
	_ viewer.StaticMarker             = (*Group)(nil)
	_ viewer.ThreadSafeReferencer     = (*Group)(nil)
	_ viewer.GPUObjectSizer           = (*Group)(nil)
	_ viewer.Intersectable            = (*Group)(nil)
	_ viewer.GraphStatisticsCollector = (*Group)(nil)
	_ viewer.Transformer              = (*Transform)(nil)
	_ viewer.Intersectable            = (*Transform)(nil)
)
