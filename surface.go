package glstate

import "image"

// Surface is a render target: the screen or an offscreen framebuffer.
// Binding a surface for drawing also applies its viewport, both through
// the state cache.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Viewport returns the viewport rectangle applied when the surface
	// is bound for drawing.
	Viewport() image.Rectangle

	handle() Handle
}

// ScreenSurface is the default framebuffer of the window or canvas the
// context was created for. It is created by New and destroyed with the
// context; it cannot be destroyed by handle.
type ScreenSurface struct {
	ctx           *Context
	h             Handle
	width, height int
}

// Size returns the screen dimensions in pixels.
func (s *ScreenSurface) Size() (width, height int) { return s.width, s.height }

// Viewport returns the full-screen viewport.
func (s *ScreenSurface) Viewport() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

func (s *ScreenSurface) handle() Handle { return s.h }

// SetSize records a new screen size after the window or canvas was
// resized. If the screen is the current draw target, the viewport is
// re-applied immediately; otherwise the next bind picks it up.
func (s *ScreenSurface) SetSize(width, height int) error {
	s.width = width
	s.height = height
	if s.ctx.cache.drawFramebuffer == s.h {
		return s.ctx.cache.ensureViewport(s.Viewport())
	}
	return nil
}
