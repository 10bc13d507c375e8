package glstate

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/glstate/backend"
)

// TextureSpec describes a 2D texture to create. Pixels are optional,
// tightly packed rows in the given format; a nil Pixels creates an empty
// texture, typically rendered to through a Framebuffer.
type TextureSpec struct {
	Width, Height int
	Format        PixelFormat
	MinFilter     MinFilter
	MagFilter     MagFilter
	Wrap          WrapMode
	Pixels        []byte
}

// Texture is an immutable descriptor of a 2D texture.
type Texture struct {
	h             Handle
	width, height int
	format        PixelFormat
}

func (spec TextureSpec) validate() error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalidDescriptor, spec.Width, spec.Height)
	}
	bpp := spec.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: unsupported pixel format", ErrInvalidDescriptor)
	}
	if spec.Pixels != nil && len(spec.Pixels) != spec.Width*spec.Height*bpp {
		return fmt.Errorf("%w: texture data is %d bytes, want %d",
			ErrInvalidDescriptor, len(spec.Pixels), spec.Width*spec.Height*bpp)
	}
	// Mipmaps can only be generated from uploaded data.
	if spec.Pixels == nil && spec.MinFilter.HasMipmap() {
		return fmt.Errorf("%w: mipmapped min filter on an empty texture", ErrInvalidDescriptor)
	}
	return nil
}

// NewTexture validates the spec, uploads the pixel data if any, and sets
// the sampling parameters. Texture uploads bind through the cache on
// texture unit 0, so the cache stays true to the device.
func (c *Context) NewTexture(spec TextureSpec) (*Texture, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	id, err := c.dev.CreateTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: texture: %v", ErrResourceCreation, err)
	}
	t := &Texture{
		h:      c.reg.create(KindTexture, uint32(id)),
		width:  spec.Width,
		height: spec.Height,
		format: spec.Format,
	}
	if err := c.cache.ensureTexture(0, t.h, id); err != nil {
		return nil, err
	}
	if err := c.dev.TexImage2D(int32(spec.Width), int32(spec.Height), spec.Format, spec.Pixels); err != nil {
		return nil, ctxErr("TexImage2D", err)
	}
	if err := c.dev.TexParameters(spec.MinFilter, spec.MagFilter, spec.Wrap); err != nil {
		return nil, ctxErr("TexParameters", err)
	}
	if spec.MinFilter.HasMipmap() {
		if err := c.dev.GenerateMipmap(); err != nil {
			return nil, ctxErr("GenerateMipmap", err)
		}
	}
	return t, nil
}

// NewTextureFromImage uploads an image.Image as an RGBA8 texture,
// converting the pixel format if needed.
func (c *Context) NewTextureFromImage(img image.Image, min MinFilter, mag MagFilter, wrap WrapMode) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDescriptor)
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		converted := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(converted, converted.Bounds(), img, b.Min, xdraw.Src)
		rgba = converted
	}
	return c.NewTexture(TextureSpec{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    FormatRGBA8,
		MinFilter: min,
		MagFilter: mag,
		Wrap:      wrap,
		Pixels:    rgba.Pix,
	})
}

// UpdateTexture replaces the full contents of a texture.
func (c *Context) UpdateTexture(t *Texture, pixels []byte) error {
	want := t.width * t.height * t.format.BytesPerPixel()
	if len(pixels) != want {
		return fmt.Errorf("%w: texture data is %d bytes, want %d", ErrInvalidDescriptor, len(pixels), want)
	}
	id, err := c.reg.underlying(t.h)
	if err != nil {
		return err
	}
	if err := c.cache.ensureTexture(0, t.h, backend.TextureID(id)); err != nil {
		return err
	}
	return ctxErr("TexSubImage2D",
		c.dev.TexSubImage2D(0, 0, int32(t.width), int32(t.height), t.format, pixels))
}

// Handle returns the texture's resource handle.
func (t *Texture) Handle() Handle { return t.h }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// Format returns the texture's storage format.
func (t *Texture) Format() PixelFormat { return t.format }

// IsSRGB reports whether the texture stores sRGB-encoded color.
func (t *Texture) IsSRGB() bool { return t.format.IsSRGB() }

// Renderbuffer is an immutable descriptor of an offscreen render storage,
// usable as a framebuffer attachment but not sampleable. Renderbuffers
// are how multisampled targets are created.
type Renderbuffer struct {
	h             Handle
	width, height int
	format        PixelFormat
	samples       int32
}

// NewRenderbuffer creates renderbuffer storage. samples <= 0 selects the
// device maximum; larger values are clamped to it.
//
// The renderbuffer binding point is creation-scoped (nothing draws
// against it), so it is not a cached slot.
func (c *Context) NewRenderbuffer(width, height int, format PixelFormat, samples int) (*Renderbuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: renderbuffer size %dx%d", ErrInvalidDescriptor, width, height)
	}
	if format.BytesPerPixel() == 0 {
		return nil, fmt.Errorf("%w: unsupported pixel format", ErrInvalidDescriptor)
	}

	max := c.dev.MaxSamples()
	s := int32(samples)
	if s <= 0 || s > max {
		s = max
	}

	id, err := c.dev.CreateRenderbuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: renderbuffer: %v", ErrResourceCreation, err)
	}
	if err := c.dev.BindRenderbuffer(id); err != nil {
		return nil, ctxErr("BindRenderbuffer", err)
	}
	if err := c.dev.RenderbufferStorage(s, format, int32(width), int32(height)); err != nil {
		return nil, ctxErr("RenderbufferStorage", err)
	}
	return &Renderbuffer{
		h:       c.reg.create(KindRenderbuffer, uint32(id)),
		width:   width,
		height:  height,
		format:  format,
		samples: s,
	}, nil
}

// Handle returns the renderbuffer's resource handle.
func (r *Renderbuffer) Handle() Handle { return r.h }

// Size returns the renderbuffer dimensions in pixels.
func (r *Renderbuffer) Size() (width, height int) { return r.width, r.height }

// Samples returns the multisample count of the storage.
func (r *Renderbuffer) Samples() int { return int(r.samples) }
