// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stats

// Categories.
const (
	CategoryEvent     = "event"
	CategoryUpdate    = "update"
	CategoryRendering = "rendering"
	CategoryGPU       = "gpu"
	CategoryScene     = "scene"
	CategoryCompile   = "compile"
	CategoryFrameRate = "frame_rate"
)

// Frame clock attributes.
const (
	ReferenceTime = "Reference time"
	FrameDuration = "Frame duration"
	FrameRate     = "Frame rate"
)

// Window traversal attributes.
const (
	EventTraversalBeginTime = "Event traversal begin time"
	EventTraversalEndTime   = "Event traversal end time"
	EventTraversalTimeTaken = "Event traversal time taken"

	UpdateTraversalBeginTime = "Update traversal begin time"
	UpdateTraversalEndTime   = "Update traversal end time"
	UpdateTraversalTimeTaken = "Update traversal time taken"

	RenderingTraversalsBeginTime = "Rendering traversals begin time"
	RenderingTraversalsEndTime   = "Rendering traversals end time"
	RenderingTraversalsTimeTaken = "Rendering traversals time taken"
)

// Renderer attributes.
const (
	CullTraversalBeginTime = "Cull traversal begin time"
	CullTraversalEndTime   = "Cull traversal end time"
	CullTraversalTimeTaken = "Cull traversal time taken"

	DrawTraversalBeginTime = "Draw traversal begin time"
	DrawTraversalEndTime   = "Draw traversal end time"
	DrawTraversalTimeTaken = "Draw traversal time taken"

	GPUDrawBeginTime = "GPU draw begin time"
	GPUDrawEndTime   = "GPU draw end time"
	GPUDrawTimeTaken = "GPU draw time taken"

	Compile = "compile"
)

// Scene statistics recorded by renderers for the visible set.
const (
	VisibleVertexCount   = "Visible vertex count"
	VisibleDrawableCount = "Visible number of drawables"
	VisibleGeometryCount = "Visible number of geometry"
	VisibleLightCount    = "Visible number of lights"
	VisiblePrimitives    = "Visible number of primitives"
)

// Scene statistics recorded by the window for whole graphs.
const (
	UniqueStateSets  = "Number of unique StateSet"
	UniqueGroups     = "Number of unique Group"
	UniqueTransforms = "Number of unique Transform"
	UniqueGeodes     = "Number of unique Geode"
	UniqueDrawables  = "Number of unique Drawable"
	UniqueGeometry   = "Number of unique Geometry"
	UniqueVertices   = "Number of unique Vertices"
	UniquePrimitives = "Number of unique Primitives"

	InstancedStateSets  = "Number of instanced Stateset"
	InstancedGroups     = "Number of instanced Group"
	InstancedTransforms = "Number of instanced Transform"
	InstancedGeodes     = "Number of instanced Geode"
	InstancedDrawables  = "Number of instanced Drawable"
	InstancedGeometry   = "Number of instanced Geometry"
	InstancedVertices   = "Number of instanced Vertices"
	InstancedPrimitives = "Number of instanced Primitives"
)
