package glstate

import "github.com/gogpu/glstate/backend"

// Aliases for the wire-level types shared with device implementations, so
// embedding applications only import this package.
type (
	Topology    = backend.Topology
	Usage       = backend.Usage
	AttribType  = backend.AttribType
	PixelFormat = backend.PixelFormat
	MinFilter   = backend.MinFilter
	MagFilter   = backend.MagFilter
	WrapMode    = backend.WrapMode
	BlendFactor = backend.BlendFactor
	Winding     = backend.Winding
)

const (
	Triangles     = backend.Triangles
	TriangleStrip = backend.TriangleStrip
	TriangleFan   = backend.TriangleFan
	Lines         = backend.Lines
	LineStrip     = backend.LineStrip
	Points        = backend.Points

	StaticDraw  = backend.StaticDraw
	DynamicDraw = backend.DynamicDraw
	StreamDraw  = backend.StreamDraw

	AttribFloat = backend.AttribFloat

	FormatR8     = backend.FormatR8
	FormatRGB8   = backend.FormatRGB8
	FormatRGBA8  = backend.FormatRGBA8
	FormatSRGB8  = backend.FormatSRGB8
	FormatSRGBA8 = backend.FormatSRGBA8

	MinNearest              = backend.MinNearest
	MinLinear               = backend.MinLinear
	MinNearestMipmapNearest = backend.MinNearestMipmapNearest
	MinNearestMipmapLinear  = backend.MinNearestMipmapLinear
	MinLinearMipmapNearest  = backend.MinLinearMipmapNearest
	MinLinearMipmapLinear   = backend.MinLinearMipmapLinear

	MagNearest = backend.MagNearest
	MagLinear  = backend.MagLinear

	WrapClampToEdge = backend.WrapClampToEdge
	WrapRepeat      = backend.WrapRepeat

	BlendOne              = backend.BlendOne
	BlendZero             = backend.BlendZero
	BlendSrcAlpha         = backend.BlendSrcAlpha
	BlendOneMinusSrcAlpha = backend.BlendOneMinusSrcAlpha
	BlendDstAlpha         = backend.BlendDstAlpha
	BlendOneMinusDstAlpha = backend.BlendOneMinusDstAlpha

	WindingCCW = backend.WindingCCW
	WindingCW  = backend.WindingCW
)
