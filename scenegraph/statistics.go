// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenegraph

import "github.com/gogpu/viewer"

// collector walks a graph counting every object once as unique and once
// per occurrence as instanced. A mesh counts as a geode holding one
// drawable and one geometry; a textured mesh contributes a state set.
type collector struct {
	gs   *viewer.GraphStatistics
	seen map[any]bool
}

func newCollector(gs *viewer.GraphStatistics) *collector {
	return &collector{gs: gs, seen: make(map[any]bool)}
}

// first reports whether o is seen for the first time.
func (c *collector) first(o any) bool {
	if c.seen[o] {
		return false
	}
	c.seen[o] = true
	return true
}

func (c *collector) visit(n viewer.Node) {
	gs := c.gs
	switch n := n.(type) {
	case *Mesh:
		tris, verts := n.Triangles(), len(n.vertices)
		gs.InstancedGeodes++
		gs.InstancedDrawables++
		gs.InstancedGeometry++
		gs.InstancedVertices += verts
		gs.InstancedPrimitives += tris
		if c.first(n) {
			gs.UniqueGeodes++
			gs.UniqueDrawables++
			gs.UniqueGeometry++
			gs.UniqueVertices += verts
			gs.UniquePrimitives += tris
		}
		if n.texture != nil {
			gs.InstancedStateSets++
			if c.first(n.texture) {
				gs.UniqueStateSets++
			}
		}
		return
	case *Transform:
		gs.InstancedTransforms++
		if c.first(n) {
			gs.UniqueTransforms++
		}
	case *Group:
		gs.InstancedGroups++
		if c.first(n) {
			gs.UniqueGroups++
		}
	}
	if p, ok := n.(Parent); ok {
		for _, child := range p.Children() {
			c.visit(child)
		}
	}
}
