package glstate

import "github.com/gogpu/glstate/backend"

// CullMode selects face culling for a draw. CullNone disables culling.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// RenderState is the scalar render configuration of one draw call. The
// zero value disables depth testing, blending and culling and uses
// counter-clockwise front faces.
//
// Like everything else, render state flows through the state cache: a
// sequence of draws with the same RenderState emits the flag calls once.
type RenderState struct {
	DepthTest bool

	Blend bool
	// Blend factors, used when Blend is set. The zero values are
	// BlendOne/BlendOne; most callers want one of the presets below.
	BlendSrc, BlendDst backend.BlendFactor

	Cull    CullMode
	Winding backend.Winding
}

// Common render states.
var (
	// Draw2D is the typical 2D overlay state: premultiplied-alpha
	// blending, no depth test, no culling.
	Draw2D = RenderState{
		Blend:    true,
		BlendSrc: backend.BlendOne,
		BlendDst: backend.BlendOneMinusSrcAlpha,
	}

	// Draw3D is the typical opaque 3D state: depth test and back-face
	// culling, no blending.
	Draw3D = RenderState{
		DepthTest: true,
		Cull:      CullBack,
	}
)

// applyRenderState routes every scalar flag through the cache. This is
// the final phase of the fixed slot order.
func (c *Context) applyRenderState(s RenderState) error {
	if err := c.cache.ensureCap(backend.CapDepthTest, s.DepthTest); err != nil {
		return err
	}
	if err := c.cache.ensureCap(backend.CapBlend, s.Blend); err != nil {
		return err
	}
	if s.Blend {
		if err := c.cache.ensureBlendFunc(s.BlendSrc, s.BlendDst); err != nil {
			return err
		}
	}
	if err := c.cache.ensureCap(backend.CapCullFace, s.Cull != CullNone); err != nil {
		return err
	}
	if s.Cull == CullFront {
		if err := c.cache.ensureCullMode(backend.CullFront); err != nil {
			return err
		}
	} else if s.Cull == CullBack {
		if err := c.cache.ensureCullMode(backend.CullBack); err != nil {
			return err
		}
	}
	return c.cache.ensureWinding(s.Winding)
}
