// Package gl implements backend.Device over OpenGL 4.1 core using the
// go-gl bindings.
//
// The device must be created and used on the thread that owns the GL
// context (lock it with runtime.LockOSThread), and the context must be
// current before Init is called. Import the package blank to register
// it:
//
//	import _ "github.com/gogpu/glstate/backend/gl"
package gl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/glstate/backend"
)

func init() {
	backend.Register("gl", func() backend.Device { return New() })
}

// Device is the OpenGL implementation of backend.Device. Every method is
// a direct pass-through; the state caching above it assumes the device
// never skips or reorders calls.
type Device struct {
	initialized bool
	vao         uint32
	maxSamples  int32
}

// New returns an uninitialized device.
func New() *Device { return &Device{} }

// Name returns "gl".
func (d *Device) Name() string { return "gl" }

// Init loads the GL function pointers and prepares the context. The core
// profile requires a vertex array object before any attribute pointer
// call, so one is created here and stays bound for the context lifetime.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl: init: %w", err)
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	// Texture rows are tightly packed regardless of width.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.GetIntegerv(gl.MAX_SAMPLES, &d.maxSamples)
	d.initialized = true
	return nil
}

// Close releases the context-lifetime vertex array object.
func (d *Device) Close() {
	if !d.initialized {
		return
	}
	gl.DeleteVertexArrays(1, &d.vao)
	d.vao = 0
	d.initialized = false
}

// MaxSamples returns GL_MAX_SAMPLES.
func (d *Device) MaxSamples() int32 { return d.maxSamples }

// checkErr drains the GL error flag after a fallible operation.
func checkErr(call string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gl: %s failed with 0x%04x", call, e)
	}
	return nil
}

func compileShader(typ uint32, src string) (uint32, error) {
	h := gl.CreateShader(typ)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(h, 1, csources, nil)
	free()
	gl.CompileShader(h)

	var status int32
	gl.GetShaderiv(h, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(h, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(h)
		return 0, fmt.Errorf("gl: shader compile: %s", log)
	}
	return h, nil
}

// infoLog reads a shader or program info log using the matching iv and
// log getters.
func infoLog(h uint32, iv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var n int32
	iv(h, gl.INFO_LOG_LENGTH, &n)
	if n < 1 {
		return "no info log"
	}
	log := strings.Repeat("\x00", int(n+1))
	getLog(h, n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// CreateProgram compiles both shader stages and links them.
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (backend.ProgramID, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	p := gl.CreateProgram()
	gl.AttachShader(p, vs)
	gl.AttachShader(p, fs)
	gl.LinkProgram(p)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(p, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(p)
		return 0, fmt.Errorf("gl: program link: %s", log)
	}
	return backend.ProgramID(p), nil
}

func (d *Device) DeleteProgram(p backend.ProgramID) { gl.DeleteProgram(uint32(p)) }

func (d *Device) CreateBuffer() (backend.BufferID, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	return backend.BufferID(id), checkErr("GenBuffers")
}

func (d *Device) DeleteBuffer(b backend.BufferID) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) CreateTexture() (backend.TextureID, error) {
	var id uint32
	gl.GenTextures(1, &id)
	return backend.TextureID(id), checkErr("GenTextures")
}

func (d *Device) DeleteTexture(t backend.TextureID) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (d *Device) CreateRenderbuffer() (backend.RenderbufferID, error) {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return backend.RenderbufferID(id), checkErr("GenRenderbuffers")
}

func (d *Device) DeleteRenderbuffer(r backend.RenderbufferID) {
	id := uint32(r)
	gl.DeleteRenderbuffers(1, &id)
}

func (d *Device) CreateFramebuffer() (backend.FramebufferID, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return backend.FramebufferID(id), checkErr("GenFramebuffers")
}

func (d *Device) DeleteFramebuffer(f backend.FramebufferID) {
	id := uint32(f)
	gl.DeleteFramebuffers(1, &id)
}

// attribComponents maps a GLSL attribute type to its float component
// count. Matrix attributes span multiple locations and are not supported.
func attribComponents(xtype uint32) (int32, error) {
	switch xtype {
	case gl.FLOAT:
		return 1, nil
	case gl.FLOAT_VEC2:
		return 2, nil
	case gl.FLOAT_VEC3:
		return 3, nil
	case gl.FLOAT_VEC4:
		return 4, nil
	}
	return 0, fmt.Errorf("gl: unsupported attribute type 0x%04x", xtype)
}

// ActiveAttribs enumerates the attributes the linker kept. Builtins
// (gl_VertexID and friends) are skipped.
func (d *Device) ActiveAttribs(p backend.ProgramID) ([]backend.ActiveAttrib, error) {
	var count, bufLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &bufLen)
	if bufLen < 1 {
		bufLen = 1
	}

	attribs := make([]backend.ActiveAttrib, 0, count)
	buf := make([]uint8, bufLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(uint32(p), uint32(i), bufLen, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		comps, err := attribComponents(xtype)
		if err != nil {
			return nil, fmt.Errorf("%w (attribute %q)", err, name)
		}
		loc := gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		attribs = append(attribs, backend.ActiveAttrib{
			Name:     name,
			Location: uint32(loc),
			Size:     comps * size,
		})
	}
	return attribs, checkErr("GetActiveAttrib")
}

// uniformType maps a GLSL uniform type to its wire-level tag.
func uniformType(xtype uint32) (backend.UniformType, error) {
	switch xtype {
	case gl.FLOAT:
		return backend.UniformFloat, nil
	case gl.INT, gl.BOOL:
		return backend.UniformInt, nil
	case gl.FLOAT_VEC2:
		return backend.UniformVec2, nil
	case gl.FLOAT_VEC3:
		return backend.UniformVec3, nil
	case gl.FLOAT_VEC4:
		return backend.UniformVec4, nil
	case gl.FLOAT_MAT3:
		return backend.UniformMat3, nil
	case gl.FLOAT_MAT4:
		return backend.UniformMat4, nil
	case gl.SAMPLER_2D:
		return backend.UniformSampler2D, nil
	}
	return 0, fmt.Errorf("gl: unsupported uniform type 0x%04x", xtype)
}

// ActiveUniforms enumerates the uniforms the linker kept. Array uniforms
// report their base name without the "[0]" suffix.
func (d *Device) ActiveUniforms(p backend.ProgramID) ([]backend.ActiveUniform, error) {
	var count, bufLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_MAX_LENGTH, &bufLen)
	if bufLen < 1 {
		bufLen = 1
	}

	uniforms := make([]backend.ActiveUniform, 0, count)
	buf := make([]uint8, bufLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(uint32(p), uint32(i), bufLen, &length, &size, &xtype, &buf[0])
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		typ, err := uniformType(xtype)
		if err != nil {
			return nil, fmt.Errorf("%w (uniform %q)", err, name)
		}
		loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		uniforms = append(uniforms, backend.ActiveUniform{
			Name:     name,
			Location: backend.UniformLocation(loc),
			Type:     typ,
		})
	}
	return uniforms, checkErr("GetActiveUniform")
}

func glBufferTarget(t backend.BufferTarget) uint32 {
	if t == backend.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glFramebufferSlot(s backend.FramebufferSlot) uint32 {
	if s == backend.ReadFramebuffer {
		return gl.READ_FRAMEBUFFER
	}
	return gl.DRAW_FRAMEBUFFER
}

func glUsage(u backend.Usage) uint32 {
	switch u {
	case backend.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case backend.StreamDraw:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func glTopology(t backend.Topology) uint32 {
	switch t {
	case backend.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case backend.TriangleFan:
		return gl.TRIANGLE_FAN
	case backend.Lines:
		return gl.LINES
	case backend.LineStrip:
		return gl.LINE_STRIP
	case backend.Points:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

func glIndexType(t backend.IndexType) uint32 {
	if t == backend.IndexUint32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}

func glCapability(c backend.Capability) uint32 {
	switch c {
	case backend.CapBlend:
		return gl.BLEND
	case backend.CapCullFace:
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func glBlendFactor(f backend.BlendFactor) uint32 {
	switch f {
	case backend.BlendZero:
		return gl.ZERO
	case backend.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case backend.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case backend.BlendDstAlpha:
		return gl.DST_ALPHA
	case backend.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	}
	return gl.ONE
}

// glFormats returns the internal format and the client pixel format.
func glFormats(f backend.PixelFormat) (internal int32, format uint32) {
	switch f {
	case backend.FormatR8:
		return gl.R8, gl.RED
	case backend.FormatRGB8:
		return gl.RGB8, gl.RGB
	case backend.FormatSRGB8:
		return gl.SRGB8, gl.RGB
	case backend.FormatSRGBA8:
		return gl.SRGB8_ALPHA8, gl.RGBA
	}
	return gl.RGBA8, gl.RGBA
}

func glMinFilter(f backend.MinFilter) int32 {
	switch f {
	case backend.MinLinear:
		return gl.LINEAR
	case backend.MinNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case backend.MinNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	case backend.MinLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case backend.MinLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.NEAREST
}

func (d *Device) UseProgram(p backend.ProgramID) error {
	gl.UseProgram(uint32(p))
	return nil
}

func (d *Device) BindBuffer(target backend.BufferTarget, b backend.BufferID) error {
	gl.BindBuffer(glBufferTarget(target), uint32(b))
	return nil
}

func (d *Device) BindFramebuffer(slot backend.FramebufferSlot, f backend.FramebufferID) error {
	gl.BindFramebuffer(glFramebufferSlot(slot), uint32(f))
	return nil
}

func (d *Device) BindRenderbuffer(r backend.RenderbufferID) error {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(r))
	return nil
}

func (d *Device) ActiveTexture(unit uint32) error {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	return nil
}

func (d *Device) BindTexture(t backend.TextureID) error {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	return nil
}

func (d *Device) EnableVertexAttrib(location uint32) error {
	gl.EnableVertexAttribArray(location)
	return nil
}

func (d *Device) DisableVertexAttrib(location uint32) error {
	gl.DisableVertexAttribArray(location)
	return nil
}

func (d *Device) VertexAttribPointer(location uint32, size int32, typ backend.AttribType, stride, offset int) error {
	_ = typ // AttribFloat is the only component type
	gl.VertexAttribPointerWithOffset(location, size, gl.FLOAT, false, int32(stride), uintptr(offset))
	return nil
}

func (d *Device) VertexAttribDivisor(location, divisor uint32) error {
	gl.VertexAttribDivisor(location, divisor)
	return nil
}

func (d *Device) Enable(c backend.Capability) error {
	gl.Enable(glCapability(c))
	return nil
}

func (d *Device) Disable(c backend.Capability) error {
	gl.Disable(glCapability(c))
	return nil
}

func (d *Device) CullFace(m backend.CullMode) error {
	if m == backend.CullFront {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
	return nil
}

func (d *Device) FrontFace(w backend.Winding) error {
	if w == backend.WindingCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
	return nil
}

func (d *Device) BlendFunc(src, dst backend.BlendFactor) error {
	gl.BlendFunc(glBlendFactor(src), glBlendFactor(dst))
	return nil
}

func (d *Device) Viewport(x, y, width, height int32) error {
	gl.Viewport(x, y, width, height)
	return nil
}

func (d *Device) BufferData(target backend.BufferTarget, data []byte, usage backend.Usage) error {
	gl.BufferData(glBufferTarget(target), len(data), gl.Ptr(data), glUsage(usage))
	return checkErr("BufferData")
}

func (d *Device) BufferSubData(target backend.BufferTarget, offset int, data []byte) error {
	gl.BufferSubData(glBufferTarget(target), offset, len(data), gl.Ptr(data))
	return checkErr("BufferSubData")
}

func (d *Device) TexImage2D(width, height int32, format backend.PixelFormat, pixels []byte) error {
	internal, pixFormat := glFormats(format)
	var ptr = gl.Ptr(nil)
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, width, height, 0, pixFormat, gl.UNSIGNED_BYTE, ptr)
	return checkErr("TexImage2D")
}

func (d *Device) TexSubImage2D(x, y, width, height int32, format backend.PixelFormat, pixels []byte) error {
	_, pixFormat := glFormats(format)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, x, y, width, height, pixFormat, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return checkErr("TexSubImage2D")
}

func (d *Device) TexParameters(min backend.MinFilter, mag backend.MagFilter, wrap backend.WrapMode) error {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glMinFilter(min))
	if mag == backend.MagLinear {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	}
	wrapMode := int32(gl.CLAMP_TO_EDGE)
	if wrap == backend.WrapRepeat {
		wrapMode = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode)
	return checkErr("TexParameteri")
}

func (d *Device) GenerateMipmap() error {
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return checkErr("GenerateMipmap")
}

func (d *Device) RenderbufferStorage(samples int32, format backend.PixelFormat, width, height int32) error {
	internal, _ := glFormats(format)
	if samples > 1 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, uint32(internal), width, height)
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internal), width, height)
	}
	return checkErr("RenderbufferStorage")
}

func glAttachmentPoint(p backend.AttachmentPoint) uint32 {
	if p == backend.AttachDepth {
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0
}

func (d *Device) FramebufferTexture2D(point backend.AttachmentPoint, t backend.TextureID) error {
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, glAttachmentPoint(point), gl.TEXTURE_2D, uint32(t), 0)
	return checkErr("FramebufferTexture2D")
}

func (d *Device) FramebufferRenderbuffer(point backend.AttachmentPoint, r backend.RenderbufferID) error {
	gl.FramebufferRenderbuffer(gl.DRAW_FRAMEBUFFER, glAttachmentPoint(point), gl.RENDERBUFFER, uint32(r))
	return checkErr("FramebufferRenderbuffer")
}

func (d *Device) CheckFramebufferComplete() error {
	if status := gl.CheckFramebufferStatus(gl.DRAW_FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("gl: framebuffer status 0x%04x", status)
	}
	return nil
}

func (d *Device) Uniform1f(loc backend.UniformLocation, v float32) error {
	gl.Uniform1f(int32(loc), v)
	return checkErr("Uniform1f")
}

func (d *Device) Uniform2f(loc backend.UniformLocation, v [2]float32) error {
	gl.Uniform2fv(int32(loc), 1, &v[0])
	return checkErr("Uniform2fv")
}

func (d *Device) Uniform3f(loc backend.UniformLocation, v [3]float32) error {
	gl.Uniform3fv(int32(loc), 1, &v[0])
	return checkErr("Uniform3fv")
}

func (d *Device) Uniform4f(loc backend.UniformLocation, v [4]float32) error {
	gl.Uniform4fv(int32(loc), 1, &v[0])
	return checkErr("Uniform4fv")
}

func (d *Device) Uniform1i(loc backend.UniformLocation, v int32) error {
	gl.Uniform1i(int32(loc), v)
	return checkErr("Uniform1i")
}

func (d *Device) UniformMatrix3(loc backend.UniformLocation, v [9]float32) error {
	gl.UniformMatrix3fv(int32(loc), 1, false, &v[0])
	return checkErr("UniformMatrix3fv")
}

func (d *Device) UniformMatrix4(loc backend.UniformLocation, v [16]float32) error {
	gl.UniformMatrix4fv(int32(loc), 1, false, &v[0])
	return checkErr("UniformMatrix4fv")
}

func (d *Device) ClearColor(r, g, b, a float32) error {
	gl.ClearColor(r, g, b, a)
	return nil
}

func (d *Device) Clear(mask backend.ClearMask) error {
	var bits uint32
	if mask&backend.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&backend.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
	return nil
}

func (d *Device) DrawArrays(mode backend.Topology, first, count int32) error {
	gl.DrawArrays(glTopology(mode), first, count)
	return checkErr("DrawArrays")
}

func (d *Device) DrawElements(mode backend.Topology, count int32, typ backend.IndexType, offset int) error {
	gl.DrawElementsWithOffset(glTopology(mode), count, glIndexType(typ), uintptr(offset))
	return checkErr("DrawElements")
}

func (d *Device) DrawArraysInstanced(mode backend.Topology, first, count, instances int32) error {
	gl.DrawArraysInstanced(glTopology(mode), first, count, instances)
	return checkErr("DrawArraysInstanced")
}

func (d *Device) DrawElementsInstanced(mode backend.Topology, count int32, typ backend.IndexType, offset int, instances int32) error {
	gl.DrawElementsInstanced(glTopology(mode), count, glIndexType(typ), gl.PtrOffset(offset), instances)
	return checkErr("DrawElementsInstanced")
}

func (d *Device) BlitFramebuffer(width, height int32) error {
	// A multisampled read framebuffer only resolves when both rectangles
	// are identical, and LINEAR is likewise disallowed for it.
	gl.BlitFramebuffer(0, 0, width, height, 0, 0, width, height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	return checkErr("BlitFramebuffer")
}
