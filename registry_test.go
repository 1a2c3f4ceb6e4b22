package viewer

import (
	"runtime"
	"testing"
)

func TestRegistryLookupNil(t *testing.T) {
	reg := NewSceneRegistry()
	v := NewViewport(WithViewportRegistry(reg))
	v.SetSceneData(nil)

	if reg.Lookup(nil) != nil {
		t.Error("Lookup(nil) matched a scene")
	}
}

func TestRegistryForgetsCollectedScenes(t *testing.T) {
	reg := NewSceneRegistry()
	root := &testNode{name: "root"}

	func() {
		v := NewViewport(WithViewportRegistry(reg))
		v.SetSceneData(root)
	}()

	// The viewport never released its scene, but nothing references it
	// any more.
	for i := 0; i < 5 && reg.Len() > 0; i++ {
		runtime.GC()
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after collection, want 0", reg.Len())
	}
	if reg.Lookup(root) != nil {
		t.Error("Lookup found a collected scene")
	}
}

func TestRegistryIsolation(t *testing.T) {
	root := &testNode{name: "root"}
	a := NewViewport(WithViewportRegistry(NewSceneRegistry()))
	b := NewViewport(WithViewportRegistry(NewSceneRegistry()))
	a.SetSceneData(root)
	b.SetSceneData(root)

	if a.Scene() == b.Scene() {
		t.Error("viewports in different registries share a scene")
	}
}

func TestDefaultSceneRegistry(t *testing.T) {
	if DefaultSceneRegistry() == nil {
		t.Fatal("DefaultSceneRegistry() = nil")
	}
	root := &testNode{name: "global"}
	v := NewViewport()
	v.SetSceneData(root)
	defer v.Release()

	if DefaultSceneRegistry().Lookup(root) != v.Scene() {
		t.Error("default viewport scene not in the default registry")
	}
}
