package viewer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Segment is a line segment used for ray casting.
type Segment struct {
	Start, End mgl64.Vec3
}

// At returns the point at ratio r along the segment.
func (s Segment) At(r float64) mgl64.Vec3 {
	return s.Start.Add(s.End.Sub(s.Start).Mul(r))
}

// Transform returns the segment mapped through m with perspective divide.
func (s Segment) Transform(m mgl64.Mat4) Segment {
	return Segment{
		Start: mgl64.TransformCoordinate(s.Start, m),
		End:   mgl64.TransformCoordinate(s.End, m),
	}
}

// Intersection is a ray cast hit.
type Intersection struct {
	// Ratio is the hit position along the segment, 0 at Start.
	Ratio float64

	// Point and Normal are in the coordinate frame of the segment the
	// intersection was computed with.
	Point  mgl64.Vec3
	Normal mgl64.Vec3

	// NodePath lists the nodes from the intersected root to the hit node.
	NodePath []Node

	// Texture and TexCoord describe the texel under the hit, if any.
	Texture  *Texture
	TexCoord mgl64.Vec3
}

// TextureLookup returns the texture under the hit and its coordinates.
func (i Intersection) TextureLookup() (*Texture, mgl64.Vec3, bool) {
	return i.Texture, i.TexCoord, i.Texture != nil
}

// CoordinateFrame names the space ray cast coordinates are given in.
type CoordinateFrame int

const (
	// WindowFrame coordinates are drawable pixels.
	WindowFrame CoordinateFrame = iota
	// ProjectionFrame coordinates are normalized device coordinates.
	ProjectionFrame
)

func cameraMatrix(cam *Camera, frame CoordinateFrame) mgl64.Mat4 {
	m := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	if frame == WindowFrame {
		if r, ok := cam.Viewport(); ok {
			m = r.WindowMatrix().Mul4(m)
		}
	}
	return m
}

func segmentThrough(m mgl64.Mat4, frame CoordinateFrame, x, y float64) (Segment, bool) {
	if m.Det() == 0 {
		return Segment{}, false
	}
	inv := m.Inv()
	zNear := -1.0
	if frame == WindowFrame {
		zNear = 0
	}
	return Segment{
		Start: mgl64.TransformCoordinate(mgl64.Vec3{x, y, zNear}, inv),
		End:   mgl64.TransformCoordinate(mgl64.Vec3{x, y, 1}, inv),
	}, true
}

// ComputeIntersections casts a ray through (x, y) from cam into its
// subgraphs and returns the hits nearest first.
func ComputeIntersections(cam *Camera, frame CoordinateFrame, x, y float64, mask NodeMask) []Intersection {
	seg, ok := segmentThrough(cameraMatrix(cam, frame), frame, x, y)
	if !ok {
		return nil
	}
	var hits []Intersection
	for _, child := range cam.Children() {
		hits = append(hits, intersectNode(child, seg, mask)...)
	}
	sortIntersections(hits)
	return hits
}

// ComputeIntersectionsOnPath casts a ray through (x, y) against the last
// node of path only. The transforms of the preceding nodes place it in the
// camera's world.
func ComputeIntersectionsOnPath(cam *Camera, frame CoordinateFrame, x, y float64, path []Node, mask NodeMask) []Intersection {
	if len(path) == 0 {
		return nil
	}
	local := mgl64.Ident4()
	for _, n := range path[:len(path)-1] {
		if t, ok := n.(Transformer); ok {
			local = local.Mul4(t.LocalMatrix())
		}
	}
	seg, ok := segmentThrough(cameraMatrix(cam, frame).Mul4(local), frame, x, y)
	if !ok {
		return nil
	}
	hits := intersectNode(path[len(path)-1], seg, mask)
	for i := range hits {
		hits[i].NodePath = append(slices.Clone(path[:len(path)-1]), hits[i].NodePath...)
	}
	sortIntersections(hits)
	return hits
}

// ComputeEventIntersections casts a ray through the event's pointer
// position in the camera it was last resolved to. It reports false when
// the event carries no camera pointer data.
func ComputeEventIntersections(e *Event, mask NodeMask) ([]Intersection, bool) {
	pd, ok := e.lastPointer()
	if !ok || pd.Camera == nil {
		return nil, false
	}
	return ComputeIntersections(pd.Camera, ProjectionFrame, pd.XNormalized(), pd.YNormalized(), mask), true
}

// ComputeEventIntersectionsOnPath is ComputeEventIntersections restricted
// to the last node of path.
func ComputeEventIntersectionsOnPath(e *Event, path []Node, mask NodeMask) ([]Intersection, bool) {
	pd, ok := e.lastPointer()
	if !ok || pd.Camera == nil {
		return nil, false
	}
	return ComputeIntersectionsOnPath(pd.Camera, ProjectionFrame, pd.XNormalized(), pd.YNormalized(), path, mask), true
}

func intersectNode(n Node, seg Segment, mask NodeMask) []Intersection {
	in, ok := n.(Intersectable)
	if !ok {
		return nil
	}
	return in.Intersect(seg, mask)
}

func sortIntersections(hits []Intersection) {
	slices.SortStableFunc(hits, func(a, b Intersection) int {
		switch {
		case a.Ratio < b.Ratio:
			return -1
		case a.Ratio > b.Ratio:
			return 1
		}
		return 0
	})
}
