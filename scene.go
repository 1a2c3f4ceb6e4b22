package viewer

import (
	"github.com/gogpu/viewer/stats"
)

// Scene is a scene graph root shared by the viewports that display it,
// together with its pagers, statistics and deferred update operations.
//
// Scenes are created by Viewport.SetSceneData and discovered through a
// SceneRegistry, so two viewports assigned the same root node share one
// Scene. The viewports own the Scene; when the last one releases it the
// registry entry is removed.
type Scene struct {
	registry *SceneRegistry

	// root is guarded by registry.mu.
	root Node

	databasePager Pager
	imagePager    Pager
	stats         *stats.Stats
	ops           OperationQueue[*Scene]

	refs int
}

func newScene(reg *SceneRegistry) *Scene {
	s := &Scene{
		registry:      reg,
		databasePager: NopPager{},
		imagePager:    NopPager{},
		stats:         stats.New("Scene"),
		refs:          1,
	}
	reg.add(s)
	return s
}

// Root returns the scene graph root, or nil.
func (s *Scene) Root() Node {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	return s.root
}

func (s *Scene) setRoot(n Node) {
	s.registry.mu.Lock()
	s.root = n
	s.registry.mu.Unlock()
	if n != nil {
		s.databasePager.RegisterPagedNodes(n)
	}
}

// DatabasePager returns the pager streaming scene content.
func (s *Scene) DatabasePager() Pager { return s.databasePager }

// SetDatabasePager replaces the database pager. nil installs a NopPager.
func (s *Scene) SetDatabasePager(p Pager) {
	if p == nil {
		p = NopPager{}
	}
	s.databasePager = p
	if root := s.Root(); root != nil {
		p.RegisterPagedNodes(root)
	}
}

// ImagePager returns the pager streaming images.
func (s *Scene) ImagePager() Pager { return s.imagePager }

// SetImagePager replaces the image pager. nil installs a NopPager.
func (s *Scene) SetImagePager(p Pager) {
	if p == nil {
		p = NopPager{}
	}
	s.imagePager = p
}

// Stats returns the scene statistics sink.
func (s *Scene) Stats() *stats.Stats { return s.stats }

// AddUpdateOperation queues an operation to run during the next update
// traversal.
func (s *Scene) AddUpdateOperation(op Operation[*Scene]) { s.ops.Add(op) }

// RemoveUpdateOperation removes a queued operation.
func (s *Scene) RemoveUpdateOperation(op Operation[*Scene]) { s.ops.Remove(op) }

// RequiresUpdateSceneGraph reports whether either pager has pending work,
// the graph has update callbacks, or operations are queued.
func (s *Scene) RequiresUpdateSceneGraph() bool {
	if s.databasePager.RequiresUpdateSceneGraph() || s.imagePager.RequiresUpdateSceneGraph() {
		return true
	}
	if u, ok := s.Root().(UpdateRequirer); ok && u.RequiresUpdateTraversal() {
		return true
	}
	return s.ops.Len() > 0
}

// UpdateSceneGraph synchronises the pagers, runs the update pass over the
// graph and then the queued operations.
func (s *Scene) UpdateSceneGraph(nv *NodeVisitor) {
	s.databasePager.UpdateSceneGraph(nv.FrameStamp)
	s.imagePager.UpdateSceneGraph(nv.FrameStamp)

	if root := s.Root(); root != nil {
		prev := nv.ImageRequests
		nv.ImageRequests = s.imagePager
		root.Accept(nv)
		nv.ImageRequests = prev
	}

	s.ops.Run(s)
}

// RequiresRedraw reports whether the database pager merged new content.
func (s *Scene) RequiresRedraw() bool {
	return s.databasePager.RequiresRedraw()
}

// Owners returns the number of viewports holding the scene.
func (s *Scene) Owners() int { return s.refs }

func (s *Scene) acquire() { s.refs++ }

func (s *Scene) release() {
	s.refs--
	if s.refs == 0 {
		s.registry.remove(s)
	}
}
