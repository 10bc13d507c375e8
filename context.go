package glstate

import (
	"fmt"

	"github.com/gogpu/glstate/backend"
)

// Context is the public entry point: it owns the handle registry and the
// state cache for one device and exposes the stateless drawing API on top
// of them. Callers describe each draw in full (target, program, mesh,
// uniforms, render state) and the context emits only the device calls
// the transition actually requires.
//
// A Context is single-owner: all calls must come from the thread that
// owns the underlying device, and concurrent use is a misuse. Multiple
// independent contexts (each with its own device) do not interact.
type Context struct {
	dev    backend.Device
	reg    *registry
	cache  *stateCache
	screen *ScreenSurface
}

// New initializes the device and creates a context for it, along with
// the screen surface representing the default framebuffer at the given
// size.
func New(dev backend.Device, width, height int) (*Context, *ScreenSurface, error) {
	if err := dev.Init(); err != nil {
		return nil, nil, err
	}
	c := &Context{dev: dev, reg: newRegistry(), cache: newStateCache(dev)}
	c.screen = &ScreenSurface{
		ctx:    c,
		h:      c.reg.create(KindFramebuffer, uint32(backend.NoFramebuffer)),
		width:  width,
		height: height,
	}
	Logger().Info("glstate: context created", "device", dev.Name())
	return c, c.screen, nil
}

// Device returns the underlying device.
func (c *Context) Device() backend.Device { return c.dev }

// Screen returns the screen surface.
func (c *Context) Screen() *ScreenSurface { return c.screen }

// Close releases the device. The context must not be used afterwards.
func (c *Context) Close() { c.dev.Close() }

// IsValid reports whether the handle refers to a live resource of this
// context.
func (c *Context) IsValid(h Handle) bool { return c.reg.isValid(h) }

// samplerBinding is one resolved texture bind of a draw call.
type samplerBinding struct {
	unit   uint32
	handle Handle
	id     backend.TextureID
}

// Draw renders the mesh with the program, the uniform set and the render
// state into the target surface.
//
// Validation happens strictly before any device call: a draw that fails
// with ErrAttributeMismatch or ErrInvalidHandle has not touched the
// context and the cache is unchanged. State transitions are applied in a
// fixed order: framebuffer, program, buffers, vertex attributes,
// textures, scalar flags. The program must be current before attribute
// configuration is meaningful, and the framebuffer switch must precede
// the draw's buffer work. Uniforms are re-sent on every draw.
func (c *Context) Draw(target Surface, program *Program, mesh *Mesh, uniforms Uniforms, state RenderState) error {
	return c.draw(target, program, mesh, uniforms, state, 0)
}

// DrawInstanced renders instances copies of the mesh in one call. The
// mesh layout must contain at least one per-instance attribute (nonzero
// Divisor); divisors are configured through the same cache-checked path
// as the rest of the vertex-attribute state.
func (c *Context) DrawInstanced(target Surface, program *Program, mesh *Mesh, uniforms Uniforms, state RenderState, instances int) error {
	if instances < 1 {
		return fmt.Errorf("%w: instance count %d", ErrInvalidDescriptor, instances)
	}
	if !mesh.hasInstanceAttribs() {
		return fmt.Errorf("%w: mesh has no per-instance attributes", ErrAttributeMismatch)
	}
	return c.draw(target, program, mesh, uniforms, state, int32(instances))
}

func (c *Context) draw(target Surface, program *Program, mesh *Mesh, uniforms Uniforms, state RenderState, instances int32) error {
	// Validation phase: resolve every handle and check every structural
	// requirement before the first device call.
	fbID, err := c.reg.underlying(target.handle())
	if err != nil {
		return err
	}
	progID, err := c.reg.underlying(program.h)
	if err != nil {
		return err
	}
	vboID, err := c.reg.underlying(mesh.vbo)
	if err != nil {
		return err
	}
	var iboID uint32
	if mesh.Indexed() {
		if iboID, err = c.reg.underlying(mesh.ibo); err != nil {
			return err
		}
	}

	for _, want := range program.attribs {
		got, ok := mesh.attribAt(want.Location)
		if !ok {
			return fmt.Errorf("%w: program attribute %q at location %d missing from mesh layout",
				ErrAttributeMismatch, want.Name, want.Location)
		}
		if got.Size != want.Size {
			return fmt.Errorf("%w: attribute %q has %d components, program expects %d",
				ErrAttributeMismatch, want.Name, got.Size, want.Size)
		}
	}

	samplers := make([]samplerBinding, 0, 4)
	for _, u := range uniforms {
		decl, ok := program.uniforms[u.Name]
		if !ok {
			return fmt.Errorf("%w: program has no uniform %q", ErrAttributeMismatch, u.Name)
		}
		if got := u.Value.uniformType(); got != decl.Type {
			return fmt.Errorf("%w: uniform %q is declared %v, value is %v",
				ErrAttributeMismatch, u.Name, decl.Type, got)
		}
		if s, ok := u.Value.(Sampler); ok {
			id, err := s.validate(c, u.Name)
			if err != nil {
				return err
			}
			samplers = append(samplers, samplerBinding{unit: s.Unit, handle: s.Texture.h, id: id})
		}
	}

	// Apply phase, in the fixed slot order.
	if err := c.cache.ensureDrawFramebuffer(target.handle(), backend.FramebufferID(fbID)); err != nil {
		return err
	}
	if err := c.cache.ensureViewport(target.Viewport()); err != nil {
		return err
	}
	if err := c.cache.ensureProgram(program.h, backend.ProgramID(progID)); err != nil {
		return err
	}
	if err := c.cache.ensureBuffer(backend.ArrayBuffer, mesh.vbo, backend.BufferID(vboID)); err != nil {
		return err
	}
	if mesh.Indexed() {
		if err := c.cache.ensureBuffer(backend.ElementArrayBuffer, mesh.ibo, backend.BufferID(iboID)); err != nil {
			return err
		}
	}

	var used [backend.MaxVertexAttribs]bool
	for _, a := range mesh.layout {
		used[a.Location] = true
		if err := c.cache.ensureAttrib(a.Location, mesh.vbo, a.Size, a.Type, a.Stride, a.Offset, a.Divisor); err != nil {
			return err
		}
	}
	// Attributes enabled by an earlier draw but absent from this layout
	// would feed stale data; switch them off through the same cache.
	for loc := uint32(0); loc < backend.MaxVertexAttribs; loc++ {
		if !used[loc] {
			if err := c.cache.ensureAttribDisabled(loc); err != nil {
				return err
			}
		}
	}

	for _, s := range samplers {
		if err := c.cache.ensureTexture(s.unit, s.handle, s.id); err != nil {
			return err
		}
	}

	if err := c.applyRenderState(state); err != nil {
		return err
	}

	for _, u := range uniforms {
		if err := u.Value.apply(c, program.uniforms[u.Name].Location); err != nil {
			return err
		}
	}

	switch {
	case mesh.Indexed() && instances > 0:
		err = ctxErr("DrawElementsInstanced",
			c.dev.DrawElementsInstanced(mesh.topology, mesh.indexCount, backend.IndexUint16, 0, instances))
	case mesh.Indexed():
		err = ctxErr("DrawElements",
			c.dev.DrawElements(mesh.topology, mesh.indexCount, backend.IndexUint16, 0))
	case instances > 0:
		err = ctxErr("DrawArraysInstanced",
			c.dev.DrawArraysInstanced(mesh.topology, 0, mesh.vertexCount, instances))
	default:
		err = ctxErr("DrawArrays",
			c.dev.DrawArrays(mesh.topology, 0, mesh.vertexCount))
	}
	return err
}

// ClearOp selects a buffer for Clear.
type ClearOp interface {
	clearMask() backend.ClearMask
}

type clearColorOp [4]float32

func (clearColorOp) clearMask() backend.ClearMask { return backend.ClearColorBit }

type clearDepthOp struct{}

func (clearDepthOp) clearMask() backend.ClearMask { return backend.ClearDepthBit }

// ClearColor clears the color buffer to the given value.
func ClearColor(r, g, b, a float32) ClearOp { return clearColorOp{r, g, b, a} }

// ClearDepth clears the depth buffer.
func ClearDepth() ClearOp { return clearDepthOp{} }

// Clear clears one or more buffers of the target surface.
//
//	ctx.Clear(screen, glstate.ClearColor(0, 0, 0, 1), glstate.ClearDepth())
func (c *Context) Clear(target Surface, ops ...ClearOp) error {
	if len(ops) == 0 {
		return fmt.Errorf("%w: clear with no buffers", ErrInvalidDescriptor)
	}
	fbID, err := c.reg.underlying(target.handle())
	if err != nil {
		return err
	}
	if err := c.cache.ensureDrawFramebuffer(target.handle(), backend.FramebufferID(fbID)); err != nil {
		return err
	}
	if err := c.cache.ensureViewport(target.Viewport()); err != nil {
		return err
	}
	var mask backend.ClearMask
	for _, op := range ops {
		mask |= op.clearMask()
		if col, ok := op.(clearColorOp); ok {
			if err := c.cache.ensureClearColor(col); err != nil {
				return err
			}
		}
	}
	return ctxErr("Clear", c.dev.Clear(mask))
}

// Blit copies the color contents of src into dst, resolving multisampled
// storage. The destination must not be multisampled. The copied rectangle
// is the source size in both framebuffers: a multisampled source only
// resolves when the two rectangles are identical, so the copy is never
// scaled.
func (c *Context) Blit(src, dst Surface) error {
	srcID, err := c.reg.underlying(src.handle())
	if err != nil {
		return err
	}
	dstID, err := c.reg.underlying(dst.handle())
	if err != nil {
		return err
	}
	if err := c.cache.ensureReadFramebuffer(src.handle(), backend.FramebufferID(srcID)); err != nil {
		return err
	}
	if err := c.cache.ensureDrawFramebuffer(dst.handle(), backend.FramebufferID(dstID)); err != nil {
		return err
	}
	if err := c.cache.ensureViewport(dst.Viewport()); err != nil {
		return err
	}
	sw, sh := src.Size()
	return ctxErr("BlitFramebuffer",
		c.dev.BlitFramebuffer(int32(sw), int32(sh)))
}

// Destroy releases the resource behind the handle. The matching state
// cache slots are forced back to "unknown", so a later bind of a new
// resource that happens to reuse the same numeric device id is never
// skipped. Destroying an unknown or already-destroyed handle returns
// ErrInvalidHandle.
func (c *Context) Destroy(h Handle) error {
	if h == c.screen.h {
		return fmt.Errorf("%w: the screen surface cannot be destroyed", ErrInvalidHandle)
	}
	if c.cache.holds(h) {
		Logger().Warn("glstate: destroying a bound resource", "handle", h.String())
	}
	id, err := c.reg.destroy(h)
	if err != nil {
		return err
	}
	c.cache.invalidate(h)
	Logger().Debug("glstate: destroyed", "handle", h.String())

	switch h.Kind() {
	case KindProgram:
		c.dev.DeleteProgram(backend.ProgramID(id))
	case KindBuffer:
		c.dev.DeleteBuffer(backend.BufferID(id))
	case KindTexture:
		c.dev.DeleteTexture(backend.TextureID(id))
	case KindRenderbuffer:
		c.dev.DeleteRenderbuffer(backend.RenderbufferID(id))
	case KindFramebuffer:
		c.dev.DeleteFramebuffer(backend.FramebufferID(id))
	}
	return nil
}

// DestroyProgram releases the program.
func (c *Context) DestroyProgram(p *Program) error { return c.Destroy(p.h) }

// DestroyMesh releases the mesh's vertex buffer and, for an indexed mesh,
// its index buffer.
func (c *Context) DestroyMesh(m *Mesh) error {
	if err := c.Destroy(m.vbo); err != nil {
		return err
	}
	if m.Indexed() {
		return c.Destroy(m.ibo)
	}
	return nil
}

// DestroyTexture releases the texture.
func (c *Context) DestroyTexture(t *Texture) error { return c.Destroy(t.h) }

// DestroyRenderbuffer releases the renderbuffer.
func (c *Context) DestroyRenderbuffer(r *Renderbuffer) error { return c.Destroy(r.h) }

// DestroyFramebuffer releases the framebuffer but not its attachments.
func (c *Context) DestroyFramebuffer(f *Framebuffer) error { return c.Destroy(f.h) }
