package glstate

import (
	"fmt"
	"image"

	"github.com/gogpu/glstate/backend"
)

// Attachment is a texture or renderbuffer that can back a framebuffer.
type Attachment interface {
	attachmentSize() (width, height int)
	attach(c *Context, point backend.AttachmentPoint) error
}

func (t *Texture) attachmentSize() (int, int) { return t.width, t.height }

func (t *Texture) attach(c *Context, point backend.AttachmentPoint) error {
	id, err := c.reg.underlying(t.h)
	if err != nil {
		return err
	}
	return ctxErr("FramebufferTexture2D",
		c.dev.FramebufferTexture2D(point, backend.TextureID(id)))
}

func (r *Renderbuffer) attachmentSize() (int, int) { return r.width, r.height }

func (r *Renderbuffer) attach(c *Context, point backend.AttachmentPoint) error {
	id, err := c.reg.underlying(r.h)
	if err != nil {
		return err
	}
	return ctxErr("FramebufferRenderbuffer",
		c.dev.FramebufferRenderbuffer(point, backend.RenderbufferID(id)))
}

// FramebufferSpec describes a framebuffer to create. Color is required;
// Depth is optional. All attachments must share the same dimensions.
type FramebufferSpec struct {
	Color Attachment
	Depth Attachment
}

// Framebuffer is an offscreen render target. It implements Surface; its
// viewport is always the full attachment size.
//
// Destroying a framebuffer does not destroy its attachments.
type Framebuffer struct {
	h             Handle
	color, depth  Attachment
	width, height int
}

// NewFramebuffer validates the attachment set, assembles the framebuffer
// and verifies its completeness. Structural validation happens before any
// device call.
func (c *Context) NewFramebuffer(spec FramebufferSpec) (*Framebuffer, error) {
	if spec.Color == nil {
		return nil, fmt.Errorf("%w: framebuffer has no color attachment", ErrInvalidDescriptor)
	}
	w, h := spec.Color.attachmentSize()
	if spec.Depth != nil {
		dw, dh := spec.Depth.attachmentSize()
		if dw != w || dh != h {
			return nil, fmt.Errorf("%w: depth attachment %dx%d does not match color %dx%d",
				ErrInvalidDescriptor, dw, dh, w, h)
		}
	}

	id, err := c.dev.CreateFramebuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: framebuffer: %v", ErrResourceCreation, err)
	}
	f := &Framebuffer{
		h:      c.reg.create(KindFramebuffer, uint32(id)),
		color:  spec.Color,
		depth:  spec.Depth,
		width:  w,
		height: h,
	}
	// Assembly targets the draw binding, so it goes through the cache
	// like every other bind.
	if err := c.cache.ensureDrawFramebuffer(f.h, id); err != nil {
		return nil, err
	}
	if err := spec.Color.attach(c, backend.AttachColor0); err != nil {
		return nil, err
	}
	if spec.Depth != nil {
		if err := spec.Depth.attach(c, backend.AttachDepth); err != nil {
			return nil, err
		}
	}
	if err := c.dev.CheckFramebufferComplete(); err != nil {
		return nil, fmt.Errorf("%w: framebuffer incomplete: %v", ErrResourceCreation, err)
	}
	return f, nil
}

// NewTextureFramebuffer creates an empty texture of the given size and a
// framebuffer rendering into it. The texture can then be sampled by later
// draws.
func (c *Context) NewTextureFramebuffer(width, height int, format PixelFormat, min MinFilter, mag MagFilter, wrap WrapMode) (*Framebuffer, *Texture, error) {
	t, err := c.NewTexture(TextureSpec{
		Width:     width,
		Height:    height,
		Format:    format,
		MinFilter: min,
		MagFilter: mag,
		Wrap:      wrap,
	})
	if err != nil {
		return nil, nil, err
	}
	f, err := c.NewFramebuffer(FramebufferSpec{Color: t})
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}

// NewRenderbufferFramebuffer creates a (multisampled) renderbuffer of the
// given size and a framebuffer rendering into it. Resolve it to another
// surface with Blit.
func (c *Context) NewRenderbufferFramebuffer(width, height int, format PixelFormat, samples int) (*Framebuffer, *Renderbuffer, error) {
	r, err := c.NewRenderbuffer(width, height, format, samples)
	if err != nil {
		return nil, nil, err
	}
	f, err := c.NewFramebuffer(FramebufferSpec{Color: r})
	if err != nil {
		return nil, nil, err
	}
	return f, r, nil
}

// Handle returns the framebuffer's resource handle.
func (f *Framebuffer) Handle() Handle { return f.h }

// Size returns the attachment dimensions in pixels.
func (f *Framebuffer) Size() (width, height int) { return f.width, f.height }

// Viewport returns the full-attachment viewport.
func (f *Framebuffer) Viewport() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

func (f *Framebuffer) handle() Handle { return f.h }
