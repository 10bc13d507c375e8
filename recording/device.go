package recording

import (
	"github.com/gogpu/glstate/backend"
)

// ProgramStub describes the introspection results the device reports for
// a program compiled from a given vertex source. Tests register stubs via
// Define before creating the program.
type ProgramStub struct {
	Attribs  []backend.ActiveAttrib
	Uniforms []backend.ActiveUniform
}

// allocator hands out numeric ids the way a real driver does: freed ids
// are recycled before new ones are minted. Id 0 is never handed out; it is
// reserved for the default framebuffer.
type allocator struct {
	next uint32
	free []uint32
}

func (a *allocator) alloc() uint32 {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		return id
	}
	a.next++
	return a.next
}

func (a *allocator) release(id uint32) {
	a.free = append(a.free, id)
}

// Device is a backend.Device that records every call instead of issuing it.
// The zero Device is not usable; call New.
//
// Device is not safe for concurrent use, matching the single-owner model
// of the layer it stands in for.
type Device struct {
	calls []Call

	programs      allocator
	buffers       allocator
	textures      allocator
	renderbuffers allocator
	framebuffers  allocator

	stubs  map[string]ProgramStub
	linked map[backend.ProgramID]ProgramStub

	failNext map[Op]error

	maxSamples int32
	closed     bool
}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		stubs:      make(map[string]ProgramStub),
		linked:     make(map[backend.ProgramID]ProgramStub),
		failNext:   make(map[Op]error),
		maxSamples: 4,
	}
}

// Define registers the introspection stub reported for programs created
// from the given vertex source.
func (d *Device) Define(vertexSrc string, stub ProgramStub) {
	d.stubs[vertexSrc] = stub
}

// FailNext makes the next call with the given op return err. The call is
// still recorded, since it was attempted against the device.
func (d *Device) FailNext(op Op, err error) {
	d.failNext[op] = err
}

// Calls returns the recorded calls in issue order.
func (d *Device) Calls() []Call {
	return d.calls
}

// Ops returns just the op sequence of the recorded calls.
func (d *Device) Ops() []Op {
	ops := make([]Op, len(d.calls))
	for i, c := range d.calls {
		ops[i] = c.Op()
	}
	return ops
}

// CountOp returns how many recorded calls have the given op.
func (d *Device) CountOp(op Op) int {
	n := 0
	for _, c := range d.calls {
		if c.Op() == op {
			n++
		}
	}
	return n
}

// Reset discards the recorded calls but keeps resource allocator state,
// so tests can set up resources and then observe only the draws.
func (d *Device) Reset() {
	d.calls = d.calls[:0]
}

// SetMaxSamples overrides the reported multisample limit.
func (d *Device) SetMaxSamples(n int32) {
	d.maxSamples = n
}

func (d *Device) record(c Call) error {
	d.calls = append(d.calls, c)
	if err, ok := d.failNext[c.Op()]; ok {
		delete(d.failNext, c.Op())
		return err
	}
	return nil
}

// backend.Device implementation.

func (d *Device) Name() string { return "recording" }

func (d *Device) Init() error { return nil }

func (d *Device) Close() { d.closed = true }

func (d *Device) MaxSamples() int32 { return d.maxSamples }

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (backend.ProgramID, error) {
	p := backend.ProgramID(d.programs.alloc())
	if err := d.record(CreateProgram{Program: p, VertexSrc: vertexSrc, FragmentSrc: fragmentSrc}); err != nil {
		d.programs.release(uint32(p))
		return 0, err
	}
	d.linked[p] = d.stubs[vertexSrc]
	return p, nil
}

func (d *Device) DeleteProgram(p backend.ProgramID) {
	_ = d.record(DeleteProgram{Program: p})
	delete(d.linked, p)
	d.programs.release(uint32(p))
}

func (d *Device) CreateBuffer() (backend.BufferID, error) {
	b := backend.BufferID(d.buffers.alloc())
	if err := d.record(CreateBuffer{Buffer: b}); err != nil {
		d.buffers.release(uint32(b))
		return 0, err
	}
	return b, nil
}

func (d *Device) DeleteBuffer(b backend.BufferID) {
	_ = d.record(DeleteBuffer{Buffer: b})
	d.buffers.release(uint32(b))
}

func (d *Device) CreateTexture() (backend.TextureID, error) {
	t := backend.TextureID(d.textures.alloc())
	if err := d.record(CreateTexture{Texture: t}); err != nil {
		d.textures.release(uint32(t))
		return 0, err
	}
	return t, nil
}

func (d *Device) DeleteTexture(t backend.TextureID) {
	_ = d.record(DeleteTexture{Texture: t})
	d.textures.release(uint32(t))
}

func (d *Device) CreateRenderbuffer() (backend.RenderbufferID, error) {
	r := backend.RenderbufferID(d.renderbuffers.alloc())
	if err := d.record(CreateRenderbuffer{Renderbuffer: r}); err != nil {
		d.renderbuffers.release(uint32(r))
		return 0, err
	}
	return r, nil
}

func (d *Device) DeleteRenderbuffer(r backend.RenderbufferID) {
	_ = d.record(DeleteRenderbuffer{Renderbuffer: r})
	d.renderbuffers.release(uint32(r))
}

func (d *Device) CreateFramebuffer() (backend.FramebufferID, error) {
	f := backend.FramebufferID(d.framebuffers.alloc())
	if err := d.record(CreateFramebuffer{Framebuffer: f}); err != nil {
		d.framebuffers.release(uint32(f))
		return 0, err
	}
	return f, nil
}

func (d *Device) DeleteFramebuffer(f backend.FramebufferID) {
	_ = d.record(DeleteFramebuffer{Framebuffer: f})
	d.framebuffers.release(uint32(f))
}

func (d *Device) ActiveAttribs(p backend.ProgramID) ([]backend.ActiveAttrib, error) {
	return d.linked[p].Attribs, nil
}

func (d *Device) ActiveUniforms(p backend.ProgramID) ([]backend.ActiveUniform, error) {
	return d.linked[p].Uniforms, nil
}

func (d *Device) UseProgram(p backend.ProgramID) error {
	return d.record(UseProgram{Program: p})
}

func (d *Device) BindBuffer(target backend.BufferTarget, b backend.BufferID) error {
	return d.record(BindBuffer{Target: target, Buffer: b})
}

func (d *Device) BindFramebuffer(slot backend.FramebufferSlot, f backend.FramebufferID) error {
	return d.record(BindFramebuffer{Slot: slot, Framebuffer: f})
}

func (d *Device) BindRenderbuffer(r backend.RenderbufferID) error {
	return d.record(BindRenderbuffer{Renderbuffer: r})
}

func (d *Device) ActiveTexture(unit uint32) error {
	return d.record(ActiveTexture{Unit: unit})
}

func (d *Device) BindTexture(t backend.TextureID) error {
	return d.record(BindTexture{Texture: t})
}

func (d *Device) EnableVertexAttrib(location uint32) error {
	return d.record(EnableVertexAttrib{Location: location})
}

func (d *Device) DisableVertexAttrib(location uint32) error {
	return d.record(DisableVertexAttrib{Location: location})
}

func (d *Device) VertexAttribPointer(location uint32, size int32, typ backend.AttribType, stride, offset int) error {
	return d.record(VertexAttribPointer{Location: location, Size: size, Type: typ, Stride: stride, Offset: offset})
}

func (d *Device) VertexAttribDivisor(location, divisor uint32) error {
	return d.record(VertexAttribDivisor{Location: location, Divisor: divisor})
}

func (d *Device) Enable(c backend.Capability) error {
	return d.record(Enable{Cap: c})
}

func (d *Device) Disable(c backend.Capability) error {
	return d.record(Disable{Cap: c})
}

func (d *Device) CullFace(m backend.CullMode) error {
	return d.record(CullFace{Mode: m})
}

func (d *Device) FrontFace(w backend.Winding) error {
	return d.record(FrontFace{Winding: w})
}

func (d *Device) BlendFunc(src, dst backend.BlendFactor) error {
	return d.record(BlendFunc{Src: src, Dst: dst})
}

func (d *Device) Viewport(x, y, width, height int32) error {
	return d.record(Viewport{X: x, Y: y, Width: width, Height: height})
}

func (d *Device) BufferData(target backend.BufferTarget, data []byte, usage backend.Usage) error {
	return d.record(BufferData{Target: target, Len: len(data), Usage: usage})
}

func (d *Device) BufferSubData(target backend.BufferTarget, offset int, data []byte) error {
	return d.record(BufferSubData{Target: target, Offset: offset, Len: len(data)})
}

func (d *Device) TexImage2D(width, height int32, format backend.PixelFormat, pixels []byte) error {
	return d.record(TexImage2D{Width: width, Height: height, Format: format, Len: len(pixels)})
}

func (d *Device) TexSubImage2D(x, y, width, height int32, format backend.PixelFormat, pixels []byte) error {
	return d.record(TexSubImage2D{X: x, Y: y, Width: width, Height: height, Format: format, Len: len(pixels)})
}

func (d *Device) TexParameters(min backend.MinFilter, mag backend.MagFilter, wrap backend.WrapMode) error {
	return d.record(TexParameters{Min: min, Mag: mag, Wrap: wrap})
}

func (d *Device) GenerateMipmap() error {
	return d.record(GenerateMipmap{})
}

func (d *Device) RenderbufferStorage(samples int32, format backend.PixelFormat, width, height int32) error {
	return d.record(RenderbufferStorage{Samples: samples, Format: format, Width: width, Height: height})
}

func (d *Device) FramebufferTexture2D(point backend.AttachmentPoint, t backend.TextureID) error {
	return d.record(FramebufferTexture2D{Point: point, Texture: t})
}

func (d *Device) FramebufferRenderbuffer(point backend.AttachmentPoint, r backend.RenderbufferID) error {
	return d.record(FramebufferRenderbuffer{Point: point, Renderbuffer: r})
}

func (d *Device) CheckFramebufferComplete() error {
	return d.record(CheckFramebufferComplete{})
}

func (d *Device) Uniform1f(loc backend.UniformLocation, v float32) error {
	return d.record(Uniform1f{Loc: loc, Value: v})
}

func (d *Device) Uniform2f(loc backend.UniformLocation, v [2]float32) error {
	return d.record(Uniform2f{Loc: loc, Value: v})
}

func (d *Device) Uniform3f(loc backend.UniformLocation, v [3]float32) error {
	return d.record(Uniform3f{Loc: loc, Value: v})
}

func (d *Device) Uniform4f(loc backend.UniformLocation, v [4]float32) error {
	return d.record(Uniform4f{Loc: loc, Value: v})
}

func (d *Device) Uniform1i(loc backend.UniformLocation, v int32) error {
	return d.record(Uniform1i{Loc: loc, Value: v})
}

func (d *Device) UniformMatrix3(loc backend.UniformLocation, v [9]float32) error {
	return d.record(UniformMatrix3{Loc: loc, Value: v})
}

func (d *Device) UniformMatrix4(loc backend.UniformLocation, v [16]float32) error {
	return d.record(UniformMatrix4{Loc: loc, Value: v})
}

func (d *Device) ClearColor(r, g, b, a float32) error {
	return d.record(ClearColor{R: r, G: g, B: b, A: a})
}

func (d *Device) Clear(mask backend.ClearMask) error {
	return d.record(Clear{Mask: mask})
}

func (d *Device) DrawArrays(mode backend.Topology, first, count int32) error {
	return d.record(DrawArrays{Mode: mode, First: first, Count: count})
}

func (d *Device) DrawElements(mode backend.Topology, count int32, typ backend.IndexType, offset int) error {
	return d.record(DrawElements{Mode: mode, Count: count, Type: typ, Offset: offset})
}

func (d *Device) DrawArraysInstanced(mode backend.Topology, first, count, instances int32) error {
	return d.record(DrawArraysInstanced{Mode: mode, First: first, Count: count, Instances: instances})
}

func (d *Device) DrawElementsInstanced(mode backend.Topology, count int32, typ backend.IndexType, offset int, instances int32) error {
	return d.record(DrawElementsInstanced{Mode: mode, Count: count, Type: typ, Offset: offset, Instances: instances})
}

func (d *Device) BlitFramebuffer(width, height int32) error {
	return d.record(BlitFramebuffer{Width: width, Height: height})
}
