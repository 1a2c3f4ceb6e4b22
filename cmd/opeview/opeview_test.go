// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/scenegraph"
)

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		l       layout
		wantErr bool
	}{
		{"ok", layout{viewports: 2, grid: 3, width: 640, height: 480, mirror: 64}, false},
		{"no viewports", layout{viewports: 0, grid: 3, width: 640, height: 480}, true},
		{"no grid", layout{viewports: 1, grid: 0, width: 640, height: 480}, true},
		{"too narrow", layout{viewports: 4, grid: 1, width: 3, height: 480}, true},
		{"no height", layout{viewports: 1, grid: 1, width: 640, height: 0}, true},
		{"negative mirror", layout{viewports: 1, grid: 1, width: 640, height: 480, mirror: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.l.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDemo(t *testing.T) {
	d := newDemo(3, 64)
	if n := len(d.boxes.Children()); n != 9 {
		t.Errorf("boxes = %d, want 9", n)
	}
	if n := len(d.root.Children()); n != 2 {
		t.Errorf("root children = %d, want boxes and floor", n)
	}
	if d.mirror == nil || d.mirror.Width != 64 || d.mirror.Height != 64 {
		t.Errorf("mirror = %+v, want 64x64", d.mirror)
	}

	if d := newDemo(1, 0); d.mirror != nil || len(d.root.Children()) != 1 {
		t.Errorf("demo without mirror has %d root children, mirror %v", len(d.root.Children()), d.mirror)
	}
}

func TestDemoBoxesSpin(t *testing.T) {
	d := newDemo(1, 0)
	spin := d.boxes.Children()[0].(*scenegraph.Transform)
	start := spin.LocalMatrix()

	fs := &viewer.FrameStamp{}
	// The first box turns at half a radian per second.
	fs.SetSimulationTime(2 * math.Pi)
	spin.Accept(&viewer.NodeVisitor{Kind: viewer.UpdateVisitor, TraversalMask: viewer.AllNodes, FrameStamp: fs})

	want := start.Mul4(mgl64.HomogRotate3DY(math.Pi))
	if !spin.LocalMatrix().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("LocalMatrix() = %v, want %v", spin.LocalMatrix(), want)
	}

	spin.Accept(&viewer.NodeVisitor{Kind: viewer.UpdateVisitor, TraversalMask: viewer.AllNodes})
	if !spin.LocalMatrix().ApproxEqualThreshold(want, 1e-9) {
		t.Error("update without a frame stamp moved the box")
	}
}

func TestBench(t *testing.T) {
	l := layout{viewports: 2, grid: 2, width: 200, height: 100, mirror: 32, history: 5}
	res, err := bench(l, 5)
	if err != nil {
		t.Fatalf("bench: %v", err)
	}

	if got := res.window.FrameStamp().FrameNumber(); got != 5 {
		t.Errorf("FrameNumber() = %d, want 5", got)
	}
	if res.ctx.Swaps() != 5 {
		t.Errorf("Swaps() = %d, want 5", res.ctx.Swaps())
	}
	if res.engine.Draws() == 0 || res.engine.Compiles() == 0 {
		t.Errorf("engine draws = %d, compiles = %d, want both > 0", res.engine.Draws(), res.engine.Compiles())
	}

	vs := res.window.Viewports()
	if len(vs) != 2 {
		t.Fatalf("len(Viewports()) = %d, want 2", len(vs))
	}
	for i, v := range vs {
		r, ok := v.Camera().Viewport()
		if !ok || r.X != float64(i*100) || r.Width != 100 || r.Height != 100 {
			t.Errorf("viewport %d rect = %+v, want x=%d 100x100", i, r, i*100)
		}
		if len(v.Slaves()) != 1 {
			t.Errorf("viewport %d has %d slaves, want the mirror camera", i, len(v.Slaves()))
		}
		if v.CameraManipulator() == nil {
			t.Errorf("viewport %d has no manipulator", i)
		}
	}
	if n := len(res.window.Scenes(true)); n != 1 {
		t.Errorf("viewports share %d scenes, want 1", n)
	}
}

func TestBenchRejectsBadInput(t *testing.T) {
	if _, err := bench(layout{viewports: 1, grid: 1, width: 10, height: 10}, 0); err == nil {
		t.Error("bench with zero frames succeeded")
	}
	if _, err := bench(layout{grid: 1, width: 10, height: 10}, 1); err == nil {
		t.Error("bench without viewports succeeded")
	}
}

func TestBenchCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run([]string{"opeview", "bench",
		"--frames", "3", "--viewports", "1", "--grid", "1",
		"--width", "64", "--height", "64", "--plain"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Window", "Viewport 0", "3 frames, 3 swaps"} {
		if !strings.Contains(got, want) {
			t.Errorf("output is missing %q:\n%s", want, got)
		}
	}
}
