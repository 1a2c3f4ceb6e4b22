// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	name      string
	mask      viewer.NodeMask
	vertices  []mgl64.Vec3
	texCoords []mgl64.Vec2
	indices   []uint32
	texture   *viewer.Texture
	color     [4]float32

	bound    viewer.BoundingSphere
	bounded  bool
	static   bool
	contexts int

	// GPU holds backend objects for the mesh, one per context.
	GPU []any
}

// NewMesh creates a mesh. texCoords may be nil; otherwise it must have one
// entry per vertex. indices lists triangles and its length must be a
// multiple of three.
func NewMesh(name string, vertices []mgl64.Vec3, texCoords []mgl64.Vec2, indices []uint32) *Mesh {
	if texCoords != nil && len(texCoords) != len(vertices) {
		panic("scenegraph: texture coordinate count does not match vertex count")
	}
	if len(indices)%3 != 0 {
		panic("scenegraph: index count is not a multiple of three")
	}
	return &Mesh{
		name:      name,
		mask:      viewer.AllNodes,
		vertices:  vertices,
		texCoords: texCoords,
		indices:   indices,
		color:     [4]float32{0.8, 0.8, 0.8, 1},
	}
}

// NewQuad creates a w by h rectangle centered at the origin in the z = 0
// plane, facing +z, with texture coordinates spanning [0, 1].
func NewQuad(name string, w, h float64, tex *viewer.Texture) *Mesh {
	x, y := w/2, h/2
	m := NewMesh(name,
		[]mgl64.Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}},
		[]mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	m.texture = tex
	return m
}

// NewBox creates an axis-aligned cube of the given edge length centered at
// the origin.
func NewBox(name string, size float64) *Mesh {
	s := size / 2
	corners := []mgl64.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	faces := [][4]uint32{
		{4, 5, 6, 7}, // +z
		{1, 0, 3, 2}, // -z
		{5, 1, 2, 6}, // +x
		{0, 4, 7, 3}, // -x
		{7, 6, 2, 3}, // +y
		{0, 1, 5, 4}, // -y
	}
	indices := make([]uint32, 0, len(faces)*6)
	for _, f := range faces {
		indices = append(indices, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return NewMesh(name, corners, nil, indices)
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

func (m *Mesh) NodeMask() viewer.NodeMask        { return m.mask }
func (m *Mesh) SetNodeMask(mask viewer.NodeMask) { m.mask = mask }

// Vertices returns the vertex positions.
func (m *Mesh) Vertices() []mgl64.Vec3 { return m.vertices }

// TexCoords returns the texture coordinates, or nil.
func (m *Mesh) TexCoords() []mgl64.Vec2 { return m.texCoords }

// Indices returns the triangle indices.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int { return len(m.indices) / 3 }

// Texture returns the texture mapped on the mesh, or nil.
func (m *Mesh) Texture() *viewer.Texture { return m.texture }

// SetTexture maps tex on the mesh.
func (m *Mesh) SetTexture(tex *viewer.Texture) { m.texture = tex }

// Color returns the RGBA base color.
func (m *Mesh) Color() [4]float32 { return m.color }

// SetColor sets the RGBA base color.
func (m *Mesh) SetColor(c [4]float32) { m.color = c }

// Static reports whether the mesh was marked static.
func (m *Mesh) Static() bool { return m.static }

// Accept does nothing: meshes have no callbacks or children.
func (m *Mesh) Accept(*viewer.NodeVisitor) {}

// Bound returns a sphere around the vertices. It is computed once.
func (m *Mesh) Bound() viewer.BoundingSphere {
	if m.bounded {
		return m.bound
	}
	m.bounded = true
	if len(m.vertices) == 0 {
		m.bound = viewer.EmptyBound()
		return m.bound
	}
	lo, hi := m.vertices[0], m.vertices[0]
	for _, v := range m.vertices[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], v[i])
			hi[i] = math.Max(hi[i], v[i])
		}
	}
	c := lo.Add(hi).Mul(0.5)
	r := 0.0
	for _, v := range m.vertices {
		r = math.Max(r, v.Sub(c).Len())
	}
	m.bound = viewer.BoundingSphere{Center: c, Radius: r}
	return m.bound
}

// MarkStatic marks the mesh static.
func (m *Mesh) MarkStatic() { m.static = true }

// ResizeGPUObjectBuffers grows the per-context GPU slots.
func (m *Mesh) ResizeGPUObjectBuffers(contexts int) {
	m.contexts = contexts
	if len(m.GPU) < contexts {
		m.GPU = append(m.GPU, make([]any, contexts-len(m.GPU))...)
	}
}

const intersectEpsilon = 1e-12

// Intersect returns the triangles crossed by seg.
func (m *Mesh) Intersect(seg viewer.Segment, mask viewer.NodeMask) []viewer.Intersection {
	if mask&m.mask == 0 {
		return nil
	}
	dir := seg.End.Sub(seg.Start)
	var hits []viewer.Intersection
	for i := 0; i+2 < len(m.indices); i += 3 {
		i0, i1, i2 := m.indices[i], m.indices[i+1], m.indices[i+2]
		r, u, v, ok := intersectTriangle(seg.Start, dir, m.vertices[i0], m.vertices[i1], m.vertices[i2])
		if !ok {
			continue
		}
		e1 := m.vertices[i1].Sub(m.vertices[i0])
		e2 := m.vertices[i2].Sub(m.vertices[i0])
		hit := viewer.Intersection{
			Ratio:    r,
			Point:    seg.At(r),
			Normal:   e1.Cross(e2).Normalize(),
			NodePath: []viewer.Node{m},
		}
		if m.texCoords != nil {
			t0, t1, t2 := m.texCoords[i0], m.texCoords[i1], m.texCoords[i2]
			tc := t0.Mul(1 - u - v).Add(t1.Mul(u)).Add(t2.Mul(v))
			hit.TexCoord = mgl64.Vec3{tc.X(), tc.Y(), 0}
			hit.Texture = m.texture
		}
		hits = append(hits, hit)
	}
	return hits
}

// intersectTriangle is the Möller–Trumbore test for the segment start +
// r*dir, r in [0, 1]. It returns r and the barycentric coordinates of the
// hit relative to p1 and p2.
func intersectTriangle(start, dir, p0, p1, p2 mgl64.Vec3) (r, u, v float64, ok bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < intersectEpsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det
	s := start.Sub(p0)
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	r = e2.Dot(q) * inv
	if r < 0 || r > 1 {
		return 0, 0, 0, false
	}
	return r, u, v, true
}

// CollectGraphStatistics counts the mesh.
func (m *Mesh) CollectGraphStatistics(gs *viewer.GraphStatistics) {
	newCollector(gs).visit(m)
}

var (
	_ viewer.Node                     = (*Mesh)(nil)
	_ viewer.Intersectable            = (*Mesh)(nil)
	_ viewer.StaticMarker             = (*Mesh)(nil)
	_ viewer.GPUObjectSizer           = (*Mesh)(nil)
	_ viewer.GraphStatisticsCollector = (*Mesh)(nil)
)
