package glstate

import (
	"image"

	"github.com/gogpu/glstate/backend"
)

// flagState is a tri-state scalar cache slot.
type flagState uint8

const (
	flagUnknown flagState = iota
	flagOff
	flagOn
)

func flagFor(on bool) flagState {
	if on {
		return flagOn
	}
	return flagOff
}

// attribSlot caches one vertex attribute location: whether the attribute
// array is enabled, the pointer configuration last issued for it (keyed by
// the Handle of the buffer the pointer reads from), and its divisor.
type attribSlot struct {
	enabled flagState

	// Pointer configuration. bufferHandle is the zero Handle when unknown.
	bufferHandle Handle
	size         int32
	typ          backend.AttribType
	stride       int
	offset       int

	divisor      uint32
	divisorKnown bool
}

// stateCache is the process-wide record of what the device currently has
// bound or set. Every state-mutating operation goes through an ensure
// method: the desired value is compared against the recorded one and the
// device call is skipped when they already agree. After an emitted call
// the recorded value is updated; on a failed call it is not, so the cache
// never claims state the device refused.
//
// Handle-valued slots start at the zero-Handle "unknown" sentinel and are
// reset to it when a resource occupying them is destroyed. Scalar slots
// start from the defined initial state of a fresh context (capabilities
// off, attribute arrays disabled, divisors zero, cull mode back, winding
// counter-clockwise, blend func one/zero), which is why the first draw of
// a default render state emits no scalar calls.
type stateCache struct {
	dev backend.Device

	program         Handle
	drawFramebuffer Handle
	readFramebuffer Handle
	buffers         [2]Handle // indexed by backend.BufferTarget
	textures        [backend.MaxTextureUnits]Handle
	activeUnit      int32 // -1 when unknown
	attribs         [backend.MaxVertexAttribs]attribSlot

	caps [3]flagState // indexed by backend.Capability

	cullMode backend.CullMode
	winding  backend.Winding

	blendSrc, blendDst backend.BlendFactor

	viewport      image.Rectangle
	viewportKnown bool

	clearColor      [4]float32
	clearColorKnown bool
}

func newStateCache(dev backend.Device) *stateCache {
	c := &stateCache{dev: dev, activeUnit: -1}
	for i := range c.attribs {
		c.attribs[i].enabled = flagOff
		c.attribs[i].divisorKnown = true
	}
	for i := range c.caps {
		c.caps[i] = flagOff
	}
	c.cullMode = backend.CullBack
	c.winding = backend.WindingCCW
	c.blendSrc = backend.BlendOne
	c.blendDst = backend.BlendZero
	c.clearColorKnown = true
	return c
}

func (c *stateCache) ensureProgram(h Handle, id backend.ProgramID) error {
	if c.program == h {
		return nil
	}
	if err := c.dev.UseProgram(id); err != nil {
		return ctxErr("UseProgram", err)
	}
	c.program = h
	return nil
}

func (c *stateCache) ensureDrawFramebuffer(h Handle, id backend.FramebufferID) error {
	if c.drawFramebuffer == h {
		return nil
	}
	if err := c.dev.BindFramebuffer(backend.DrawFramebuffer, id); err != nil {
		return ctxErr("BindFramebuffer", err)
	}
	c.drawFramebuffer = h
	return nil
}

func (c *stateCache) ensureReadFramebuffer(h Handle, id backend.FramebufferID) error {
	if c.readFramebuffer == h {
		return nil
	}
	if err := c.dev.BindFramebuffer(backend.ReadFramebuffer, id); err != nil {
		return ctxErr("BindFramebuffer", err)
	}
	c.readFramebuffer = h
	return nil
}

func (c *stateCache) ensureBuffer(target backend.BufferTarget, h Handle, id backend.BufferID) error {
	if c.buffers[target] == h {
		return nil
	}
	if err := c.dev.BindBuffer(target, id); err != nil {
		return ctxErr("BindBuffer", err)
	}
	c.buffers[target] = h
	return nil
}

func (c *stateCache) ensureActiveUnit(unit uint32) error {
	if c.activeUnit == int32(unit) {
		return nil
	}
	if err := c.dev.ActiveTexture(unit); err != nil {
		return ctxErr("ActiveTexture", err)
	}
	c.activeUnit = int32(unit)
	return nil
}

func (c *stateCache) ensureTexture(unit uint32, h Handle, id backend.TextureID) error {
	if c.textures[unit] == h {
		return nil
	}
	if err := c.ensureActiveUnit(unit); err != nil {
		return err
	}
	if err := c.dev.BindTexture(id); err != nil {
		return ctxErr("BindTexture", err)
	}
	c.textures[unit] = h
	return nil
}

// ensureAttrib brings one attribute location to the desired enabled,
// pointer and divisor state. The caller must have ensured the array
// buffer binding first: pointer calls capture the bound array buffer.
func (c *stateCache) ensureAttrib(loc uint32, bufHandle Handle, size int32, typ backend.AttribType, stride, offset int, divisor uint32) error {
	s := &c.attribs[loc]
	if s.enabled != flagOn {
		if err := c.dev.EnableVertexAttrib(loc); err != nil {
			return ctxErr("EnableVertexAttrib", err)
		}
		s.enabled = flagOn
	}
	if s.bufferHandle != bufHandle || s.bufferHandle.IsZero() ||
		s.size != size || s.typ != typ || s.stride != stride || s.offset != offset {
		if err := c.dev.VertexAttribPointer(loc, size, typ, stride, offset); err != nil {
			return ctxErr("VertexAttribPointer", err)
		}
		s.bufferHandle = bufHandle
		s.size = size
		s.typ = typ
		s.stride = stride
		s.offset = offset
	}
	if !s.divisorKnown || s.divisor != divisor {
		if err := c.dev.VertexAttribDivisor(loc, divisor); err != nil {
			return ctxErr("VertexAttribDivisor", err)
		}
		s.divisor = divisor
		s.divisorKnown = true
	}
	return nil
}

func (c *stateCache) ensureAttribDisabled(loc uint32) error {
	s := &c.attribs[loc]
	if s.enabled == flagOff {
		return nil
	}
	if err := c.dev.DisableVertexAttrib(loc); err != nil {
		return ctxErr("DisableVertexAttrib", err)
	}
	s.enabled = flagOff
	return nil
}

func (c *stateCache) ensureCap(cap backend.Capability, on bool) error {
	want := flagFor(on)
	if c.caps[cap] == want {
		return nil
	}
	var err error
	if on {
		err = ctxErr("Enable", c.dev.Enable(cap))
	} else {
		err = ctxErr("Disable", c.dev.Disable(cap))
	}
	if err != nil {
		return err
	}
	c.caps[cap] = want
	return nil
}

func (c *stateCache) ensureCullMode(m backend.CullMode) error {
	if c.cullMode == m {
		return nil
	}
	if err := c.dev.CullFace(m); err != nil {
		return ctxErr("CullFace", err)
	}
	c.cullMode = m
	return nil
}

func (c *stateCache) ensureWinding(w backend.Winding) error {
	if c.winding == w {
		return nil
	}
	if err := c.dev.FrontFace(w); err != nil {
		return ctxErr("FrontFace", err)
	}
	c.winding = w
	return nil
}

func (c *stateCache) ensureBlendFunc(src, dst backend.BlendFactor) error {
	if c.blendSrc == src && c.blendDst == dst {
		return nil
	}
	if err := c.dev.BlendFunc(src, dst); err != nil {
		return ctxErr("BlendFunc", err)
	}
	c.blendSrc = src
	c.blendDst = dst
	return nil
}

func (c *stateCache) ensureViewport(r image.Rectangle) error {
	if c.viewportKnown && c.viewport == r {
		return nil
	}
	if err := c.dev.Viewport(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy())); err != nil {
		return ctxErr("Viewport", err)
	}
	c.viewport = r
	c.viewportKnown = true
	return nil
}

func (c *stateCache) ensureClearColor(rgba [4]float32) error {
	if c.clearColorKnown && c.clearColor == rgba {
		return nil
	}
	if err := c.dev.ClearColor(rgba[0], rgba[1], rgba[2], rgba[3]); err != nil {
		return ctxErr("ClearColor", err)
	}
	c.clearColor = rgba
	c.clearColorKnown = true
	return nil
}

// holds reports whether any cache slot currently records the handle as
// bound. Used to warn about destroying a bound resource.
func (c *stateCache) holds(h Handle) bool {
	if h.IsZero() {
		return false
	}
	if c.program == h || c.drawFramebuffer == h || c.readFramebuffer == h {
		return true
	}
	for _, b := range c.buffers {
		if b == h {
			return true
		}
	}
	for _, t := range c.textures {
		if t == h {
			return true
		}
	}
	for i := range c.attribs {
		if c.attribs[i].bufferHandle == h {
			return true
		}
	}
	return false
}

// invalidate clears every slot that records the handle, forcing the next
// ensure for that slot to emit. This is mandatory on destroy: the
// underlying allocator may recycle the numeric id, and a stale "equal"
// comparison would otherwise leave the wrong object bound.
func (c *stateCache) invalidate(h Handle) {
	switch h.Kind() {
	case KindProgram:
		if c.program == h {
			c.program = Handle{}
		}
	case KindFramebuffer:
		if c.drawFramebuffer == h {
			c.drawFramebuffer = Handle{}
		}
		if c.readFramebuffer == h {
			c.readFramebuffer = Handle{}
		}
	case KindBuffer:
		for i := range c.buffers {
			if c.buffers[i] == h {
				c.buffers[i] = Handle{}
			}
		}
		for i := range c.attribs {
			if c.attribs[i].bufferHandle == h {
				c.attribs[i].bufferHandle = Handle{}
			}
		}
	case KindTexture:
		for i := range c.textures {
			if c.textures[i] == h {
				c.textures[i] = Handle{}
			}
		}
	}
}
