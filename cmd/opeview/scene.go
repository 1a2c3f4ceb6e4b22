// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/scenegraph"
	"github.com/gogpu/viewer/stats"
)

const boxSpacing = 2.0

// layout describes how the demo is split over a drawable.
type layout struct {
	viewports int
	grid      int
	width     int
	height    int
	mirror    int // render-to-texture size, 0 disables the mirror camera
	history   int
}

func (l layout) validate() error {
	switch {
	case l.viewports < 1:
		return fmt.Errorf("opeview: need at least one viewport, got %d", l.viewports)
	case l.grid < 1:
		return fmt.Errorf("opeview: grid must be positive, got %d", l.grid)
	case l.width < l.viewports || l.height < 1:
		return fmt.Errorf("opeview: %dx%d is too small for %d viewports", l.width, l.height, l.viewports)
	case l.mirror < 0:
		return fmt.Errorf("opeview: negative mirror size %d", l.mirror)
	}
	return nil
}

// demo is the scene shared by every viewport.
type demo struct {
	root   *scenegraph.Group
	boxes  *scenegraph.Group
	mirror *viewer.Texture
}

// newDemo builds a grid of spinning boxes. With a mirror texture the boxes
// stand on a floor showing the grid seen from above.
func newDemo(grid, mirrorSize int) *demo {
	d := &demo{boxes: scenegraph.NewGroup("boxes")}
	offset := float64(grid-1) * boxSpacing / 2
	for i := range grid {
		for j := range grid {
			box := scenegraph.NewBox(fmt.Sprintf("box-%d-%d", i, j), 1)
			box.SetColor([4]float32{float32(i+1) / float32(grid), 0.6, float32(j+1) / float32(grid), 1})
			box.MarkStatic()

			at := mgl64.Translate3D(float64(i)*boxSpacing-offset, 0, float64(j)*boxSpacing-offset)
			rate := 0.5 + 0.25*float64((i+j)%3)
			spin := scenegraph.NewTransform(box.Name(), at, box)
			spin.SetUpdateCallback(func(n viewer.Node, nv *viewer.NodeVisitor) {
				if nv.FrameStamp == nil {
					return
				}
				angle := rate * nv.FrameStamp.SimulationTime()
				n.(*scenegraph.Transform).SetMatrix(at.Mul4(mgl64.HomogRotate3DY(angle)))
			})
			d.boxes.AddChild(spin)
		}
	}

	d.root = scenegraph.NewGroup("demo", d.boxes)
	if mirrorSize > 0 {
		d.mirror = &viewer.Texture{
			Name:   "mirror",
			Kind:   viewer.Texture2D,
			Width:  mirrorSize,
			Height: mirrorSize,
			Format: gputypes.TextureFormatRGBA8Unorm,
		}
		size := float64(grid) * boxSpacing
		floor := scenegraph.NewQuad("floor", size, size, d.mirror)
		floor.MarkStatic()
		place := mgl64.Translate3D(0, -1, 0).Mul4(mgl64.HomogRotate3DX(-math.Pi / 2))
		d.root.AddChild(scenegraph.NewTransform("floor", place, floor))
	}
	return d
}

// addMirror renders the boxes from above into the mirror texture before
// v's master camera draws. The floor is left out so the texture is never
// sampled while it is being drawn.
func (d *demo) addMirror(v *viewer.Viewport) {
	if d.mirror == nil {
		return
	}
	cam := viewer.NewCamera("mirror")
	cam.Attach(d.mirror)
	cam.SetRenderOrder(viewer.PreRender, 0)
	cam.SetReferenceFrame(viewer.AbsoluteRF)
	cam.SetAllowEventFocus(false)
	cam.SetViewport(0, 0, float64(d.mirror.Width), float64(d.mirror.Height))
	cam.SetClearColor(gputypes.Color{R: 0.05, G: 0.05, B: 0.1, A: 1})

	b := d.boxes.Bound()
	cam.SetProjectionPerspective(45, 1, 0.1, 100*b.Radius)
	cam.SetViewLookAt(b.Center.Add(mgl64.Vec3{0, 3 * b.Radius, 0}), b.Center, mgl64.Vec3{0, 0, -1})
	cam.AddChild(d.boxes)
	v.AddSlave(cam, mgl64.Ident4(), mgl64.Ident4(), false)
}

// attach splits the drawable of w into side by side viewports showing the
// demo, each with its own orbit manipulator and stats.
func (d *demo) attach(w *viewer.Window, l layout) []*viewer.Viewport {
	cols := l.width / l.viewports
	vs := make([]*viewer.Viewport, 0, l.viewports)
	for i := range l.viewports {
		var categories []string
		if ws := w.Stats(); ws != nil {
			categories = ws.Categories()
		}
		sink := stats.New(fmt.Sprintf("Viewport %d", i), stats.WithHistory(l.history), stats.WithCategories(categories...))
		v := w.NewViewport(viewer.WithViewportStats(sink))

		cam := v.Camera()
		cam.SetViewport(float64(i*cols), 0, float64(cols), float64(l.height))
		cam.SetProjectionPerspective(45, float64(cols)/float64(l.height), 0.1, 1000)
		if i == 0 {
			cam.SetClearColor(gputypes.Color{R: 0.15, G: 0.15, B: 0.2, A: 1})
		}

		v.SetSceneData(d.root)
		v.SetCameraManipulator(scenegraph.NewOrbit(), true)
		d.addMirror(v)
		vs = append(vs, v)
	}
	return vs
}
