// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glfwhost runs a viewer.Window in a GLFW window with an OpenGL 3.3
// core context.
//
// The package provides three pieces:
//
//   - Context is a viewer.GraphicsContext over a GLFW window. It translates
//     GLFW input callbacks into viewer events and can warp the pointer.
//   - TimerQueries is a timerquery.Device over the OpenGL timer query API,
//     so GPU draw times show up in the "gpu" statistics category.
//   - Backend is a scenegraph.Backend that draws meshes with a single flat
//     shaded program.
//
// # Usage
//
// GLFW must be driven from the main thread:
//
//	func init() { runtime.LockOSThread() }
//
//	func main() {
//		host, err := glfwhost.New(glfwhost.Config{Title: "viewer", Width: 1280, Height: 720})
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer host.Destroy()
//
//		w, _ := viewer.NewWindow(host, viewer.WithEngine(scenegraph.NewEngine(glfwhost.NewBackend())))
//		w.NewViewport().SetSceneData(scene)
//		host.Run(context.Background(), w)
//	}
//
// # Thread Safety
//
// Context methods must be called from the thread that created it.
package glfwhost
