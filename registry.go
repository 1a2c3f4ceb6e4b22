package viewer

import (
	"sync"
	"weak"
)

// globalRegistry is the default scene registry.
var globalRegistry = NewSceneRegistry()

// DefaultSceneRegistry returns the process-wide registry used by viewports
// created without WithSceneRegistry.
func DefaultSceneRegistry() *SceneRegistry { return globalRegistry }

// SceneRegistry finds the live Scene wrapping a root node. Entries are weak:
// the registry never keeps a Scene alive.
type SceneRegistry struct {
	mu      sync.Mutex
	entries []weak.Pointer[Scene]
}

// NewSceneRegistry creates an empty registry. Most code should use
// DefaultSceneRegistry; tests use private registries.
func NewSceneRegistry() *SceneRegistry {
	return &SceneRegistry{}
}

func (r *SceneRegistry) add(s *Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compact()
	r.entries = append(r.entries, weak.Make(s))
}

func (r *SceneRegistry) remove(s *Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, wp := range r.entries {
		if v := wp.Value(); v != nil && v != s {
			kept = append(kept, wp)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}

// compact drops entries whose scene has been collected. Callers hold mu.
func (r *SceneRegistry) compact() {
	kept := r.entries[:0]
	for _, wp := range r.entries {
		if wp.Value() != nil {
			kept = append(kept, wp)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}

// Lookup returns the live Scene whose root is root, or nil. A nil root
// never matches.
func (r *SceneRegistry) Lookup(root Node) *Scene {
	if root == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wp := range r.entries {
		if s := wp.Value(); s != nil && s.root == root {
			return s
		}
	}
	return nil
}

// Len returns the number of live scenes.
func (r *SceneRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, wp := range r.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}
