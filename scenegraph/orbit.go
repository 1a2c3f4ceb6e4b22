// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scenegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
)

// HomeKey is the key code that sends an Orbit to its home position.
const HomeKey = ' '

const maxPitch = math.Pi/2 - 0.01

// Orbit is a viewer.CameraManipulator that circles the camera around the
// bound of its node. Left drag rotates, right drag and scroll zoom and
// HomeKey resets the view.
type Orbit struct {
	node viewer.Node

	center     mgl64.Vec3
	distance   float64
	yaw, pitch float64

	lastX, lastY float64
}

// NewOrbit returns an Orbit looking at the origin from distance 1.
func NewOrbit() *Orbit {
	return &Orbit{distance: 1}
}

// SetNode sets the node whose bound defines the home position.
func (o *Orbit) SetNode(n viewer.Node) { o.node = n }

// Init places the camera at home.
func (o *Orbit) Init(e *viewer.Event, aa viewer.ActionAdapter) { o.Home(e, aa) }

// Home centers the view on the node bound, three radii away.
func (o *Orbit) Home(_ *viewer.Event, aa viewer.ActionAdapter) {
	o.center, o.distance = mgl64.Vec3{}, 1
	if o.node != nil {
		if b := o.node.Bound(); b.Valid() && b.Radius > 0 {
			o.center, o.distance = b.Center, 3*b.Radius
		}
	}
	o.yaw, o.pitch = 0, 0
	if aa != nil {
		aa.RequestRedraw()
	}
}

// Distance returns the distance from the eye to the center.
func (o *Orbit) Distance() float64 { return o.distance }

// Angles returns the yaw and pitch in radians.
func (o *Orbit) Angles() (yaw, pitch float64) { return o.yaw, o.pitch }

// Handle implements viewer.EventHandler.
func (o *Orbit) Handle(e *viewer.Event, aa viewer.ActionAdapter, _ *viewer.FrameStamp) bool {
	switch e.Type {
	case viewer.EventPush:
		o.lastX, o.lastY = pointer(e)
		return false
	case viewer.EventDrag:
		x, y := pointer(e)
		dx, dy := x-o.lastX, y-o.lastY
		o.lastX, o.lastY = x, y
		switch {
		case e.ButtonMask&viewer.LeftMouseButton != 0:
			o.yaw -= dx * math.Pi
			o.pitch = mgl64.Clamp(o.pitch+dy*math.Pi/2, -maxPitch, maxPitch)
		case e.ButtonMask&viewer.RightMouseButton != 0:
			o.zoom(1 - dy)
		default:
			return false
		}
	case viewer.EventScroll:
		switch e.Scroll {
		case viewer.ScrollUp:
			o.zoom(0.9)
		case viewer.ScrollDown:
			o.zoom(1 / 0.9)
		default:
			return false
		}
	case viewer.EventKeyDown:
		if e.Key != HomeKey {
			return false
		}
		o.Home(e, aa)
		return true
	default:
		return false
	}
	aa.RequestRedraw()
	return true
}

func (o *Orbit) zoom(f float64) {
	if f > 0 {
		o.distance *= f
	}
}

// pointer returns the normalized pointer position of the camera under the
// pointer, or of the window when no camera was hit.
func pointer(e *viewer.Event) (float64, float64) {
	pd := e.PointerData()
	if len(pd) == 0 {
		return 0, 0
	}
	p := pd[min(len(pd)-1, 1)]
	return p.XNormalized(), p.YNormalized()
}

// Eye returns the eye position.
func (o *Orbit) Eye() mgl64.Vec3 {
	rot := mgl64.AnglesToQuat(o.yaw, o.pitch, 0, mgl64.YXZ)
	return o.center.Add(rot.Rotate(mgl64.Vec3{0, 0, o.distance}))
}

// UpdateCamera writes the orbit view into c.
func (o *Orbit) UpdateCamera(c *viewer.Camera) {
	c.SetViewLookAt(o.Eye(), o.center, mgl64.Vec3{0, 1, 0})
}

// FusionDistance returns the orbit distance.
func (o *Orbit) FusionDistance() (viewer.FusionDistanceMode, float64) {
	return viewer.FusionUseValue, o.distance
}

var _ viewer.CameraManipulator = (*Orbit)(nil)
