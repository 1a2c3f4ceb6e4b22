// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glfwhost

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/viewer"
	"github.com/gogpu/viewer/scenegraph"
)

const vertexSource = `#version 330 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec2 aTexCoord;
uniform mat4 uMVP;
uniform mat4 uModel;
out vec3 vWorld;
out vec2 vTexCoord;
void main() {
	vWorld = (uModel * vec4(aPosition, 1.0)).xyz;
	vTexCoord = aTexCoord;
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const fragmentSource = `#version 330 core
in vec3 vWorld;
in vec2 vTexCoord;
uniform vec4 uColor;
uniform bool uTextured;
uniform sampler2D uTexture;
out vec4 fragColor;
void main() {
	vec3 n = normalize(cross(dFdx(vWorld), dFdy(vWorld)));
	float light = 0.35 + 0.65 * abs(dot(n, normalize(vec3(0.3, 0.5, 0.8))));
	vec4 base = uTextured ? texture(uTexture, vTexCoord) : uColor;
	fragColor = vec4(base.rgb * light, base.a);
}
`

// floatsPerVertex is the interleaved layout: position xyz, texcoord uv.
const floatsPerVertex = 5

// Backend draws scenegraph meshes with OpenGL. Cameras rendering to a
// texture get a framebuffer object sized to their color attachment, and
// meshes mapped with that texture sample it.
type Backend struct {
	ready   bool
	program uint32

	mvpLoc, modelLoc, colorLoc, texturedLoc, samplerLoc int32

	targets map[*viewer.Texture]*renderTarget
}

type glMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type renderTarget struct {
	fbo, texture, depth uint32
	width, height       int32
}

// NewBackend returns a backend. GL objects are created on first use, with
// the context current.
func NewBackend() *Backend {
	return &Backend{targets: make(map[*viewer.Texture]*renderTarget)}
}

func (b *Backend) init() error {
	if b.ready {
		return nil
	}
	program, err := linkProgram(vertexSource, fragmentSource)
	if err != nil {
		return err
	}
	b.program = program
	b.mvpLoc = gl.GetUniformLocation(program, gl.Str("uMVP\x00"))
	b.modelLoc = gl.GetUniformLocation(program, gl.Str("uModel\x00"))
	b.colorLoc = gl.GetUniformLocation(program, gl.Str("uColor\x00"))
	b.texturedLoc = gl.GetUniformLocation(program, gl.Str("uTextured\x00"))
	b.samplerLoc = gl.GetUniformLocation(program, gl.Str("uTexture\x00"))
	b.ready = true
	return nil
}

// Compile uploads m's vertices and indices into buffers owned by the
// context.
func (b *Backend) Compile(ctx viewer.GraphicsContext, m *scenegraph.Mesh) error {
	if err := b.init(); err != nil {
		return err
	}
	id := contextID(ctx)
	m.ResizeGPUObjectBuffers(id + 1)
	if m.GPU[id] != nil {
		return nil
	}

	verts, tcs := m.Vertices(), m.TexCoords()
	data := make([]float32, 0, len(verts)*floatsPerVertex)
	for i, v := range verts {
		var u, w float32
		if tcs != nil {
			u, w = float32(tcs[i].X()), float32(tcs[i].Y())
		}
		data = append(data, float32(v.X()), float32(v.Y()), float32(v.Z()), u, w)
	}

	gm := &glMesh{count: int32(len(m.Indices()))}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	if idx := m.Indices(); len(idx) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), gl.STATIC_DRAW)
	}

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.BindVertexArray(0)

	m.GPU[id] = gm
	return nil
}

// Draw binds the camera's render target, clears its viewport and draws
// items.
func (b *Backend) Draw(ctx viewer.GraphicsContext, cam *viewer.Camera, items []scenegraph.Item) error {
	if err := b.init(); err != nil {
		return err
	}
	id := contextID(ctx)

	b.bindTarget(cam)
	if r, ok := cam.Viewport(); ok {
		x, y, w, h := int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height)
		gl.Viewport(x, y, w, h)
		gl.Scissor(x, y, w, h)
		gl.Enable(gl.SCISSOR_TEST)
	}
	cc := cam.ClearColor()
	gl.ClearColor(float32(cc.R), float32(cc.G), float32(cc.B), float32(cc.A))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Enable(gl.DEPTH_TEST)

	gl.UseProgram(b.program)
	gl.Uniform1i(b.samplerLoc, 0)
	vp := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	for _, it := range items {
		if len(it.Mesh.GPU) <= id {
			continue
		}
		gm, ok := it.Mesh.GPU[id].(*glMesh)
		if !ok || gm.count == 0 {
			continue
		}
		mvp, model := toFloat32(vp.Mul4(it.Model)), toFloat32(it.Model)
		gl.UniformMatrix4fv(b.mvpLoc, 1, false, &mvp[0])
		gl.UniformMatrix4fv(b.modelLoc, 1, false, &model[0])
		c := it.Mesh.Color()
		gl.Uniform4f(b.colorLoc, c[0], c[1], c[2], c[3])
		if t, ok := b.targets[it.Mesh.Texture()]; ok {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, t.texture)
			gl.Uniform1i(b.texturedLoc, 1)
		} else {
			gl.Uniform1i(b.texturedLoc, 0)
		}
		gl.BindVertexArray(gm.vao)
		gl.DrawElements(gl.TRIANGLES, gm.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// bindTarget binds the framebuffer object of a render-to-texture camera,
// creating it on first use, or the default framebuffer.
func contextID(ctx viewer.GraphicsContext) int {
	if st := ctx.State(); st != nil {
		return st.ContextID()
	}
	return 0
}

func (b *Backend) bindTarget(cam *viewer.Camera) {
	tex := cam.ColorAttachment()
	if cam.RenderTarget() != viewer.FrameBufferObject || tex == nil || tex.Kind == viewer.TextureCubeMap {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	t, ok := b.targets[tex]
	if !ok {
		t = newRenderTarget(int32(tex.Width), int32(tex.Height))
		b.targets[tex] = t
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
}

func newRenderTarget(width, height int32) *renderTarget {
	t := &renderTarget{width: width, height: height}
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		viewer.Logger().Warn("glfwhost: incomplete framebuffer", "status", status)
	}
	return t
}

// Close deletes the program and render targets. Mesh buffers belong to the
// meshes and are left alone.
func (b *Backend) Close() {
	for tex, t := range b.targets {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteRenderbuffers(1, &t.depth)
		gl.DeleteTextures(1, &t.texture)
		delete(b.targets, tex)
	}
	if b.program != 0 {
		gl.DeleteProgram(b.program)
		b.program = 0
	}
	b.ready = false
}

func toFloat32(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func linkProgram(vertex, fragment string) (uint32, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertex)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragment)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(program, n, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("glfwhost: link program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	src, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, src, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(shader, n, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("glfwhost: compile shader: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

var _ scenegraph.Backend = (*Backend)(nil)
