package backend

import (
	"errors"
)

// Common backend errors.
var (
	// ErrDeviceNotAvailable is returned when a requested device is not available.
	ErrDeviceNotAvailable = errors.New("backend: device not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Device limits shared by all implementations. A conforming device must
// support at least this many slots; the state cache sizes its tables to
// these values.
const (
	// MaxTextureUnits is the number of texture units tracked per context.
	MaxTextureUnits = 32

	// MaxVertexAttribs is the number of vertex attribute locations tracked
	// per context.
	MaxVertexAttribs = 16
)

// Resource identifiers as issued by the underlying context. They are only
// meaningful to the device that created them, and the underlying allocator
// is free to reuse a numeric id after the resource is deleted.
type (
	ProgramID      uint32
	BufferID       uint32
	TextureID      uint32
	RenderbufferID uint32
	FramebufferID  uint32
)

// NoFramebuffer is the default (window-system provided) framebuffer.
const NoFramebuffer FramebufferID = 0

// UniformLocation identifies a uniform slot within a linked program.
type UniformLocation int32

// BufferTarget selects a buffer binding point.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementArrayBuffer:
		return "element-array"
	}
	return "unknown"
}

// FramebufferSlot selects the draw or read framebuffer binding point.
type FramebufferSlot uint8

const (
	DrawFramebuffer FramebufferSlot = iota
	ReadFramebuffer
)

// Usage is the buffer data usage hint.
type Usage uint8

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// Topology is the primitive assembly mode for draw calls.
type Topology uint8

const (
	Triangles Topology = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

// IndexType is the element type of an index buffer.
type IndexType uint8

const (
	IndexUint16 IndexType = iota
	IndexUint32
)

// Size returns the size of one index in bytes.
func (t IndexType) Size() int {
	if t == IndexUint32 {
		return 4
	}
	return 2
}

// AttribType is the component type of a vertex attribute.
type AttribType uint8

const (
	AttribFloat AttribType = iota
)

// Capability is a toggleable scalar render state.
type Capability uint8

const (
	CapDepthTest Capability = iota
	CapBlend
	CapCullFace
)

func (c Capability) String() string {
	switch c {
	case CapDepthTest:
		return "depth-test"
	case CapBlend:
		return "blend"
	case CapCullFace:
		return "cull-face"
	}
	return "unknown"
}

// CullMode selects which triangle faces are discarded when face culling
// is enabled.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullFront
)

// Winding selects which vertex order is considered front-facing.
type Winding uint8

const (
	WindingCCW Winding = iota
	WindingCW
)

// BlendFactor is a source or destination blend weight. The zero value is
// BlendOne so that a zero-valued blend configuration passes color through
// rather than multiplying by zero.
type BlendFactor uint8

const (
	BlendOne BlendFactor = iota
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// PixelFormat is a texture or renderbuffer storage format.
type PixelFormat uint8

const (
	// FormatR8 stores a single red channel; the other channels read as
	// undefined.
	FormatR8 PixelFormat = iota
	FormatRGB8
	FormatRGBA8
	FormatSRGB8
	FormatSRGBA8
)

// BytesPerPixel returns the tightly packed size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRGB8, FormatSRGB8:
		return 3
	case FormatRGBA8, FormatSRGBA8:
		return 4
	}
	return 0
}

// IsSRGB reports whether the format stores sRGB-encoded color.
func (f PixelFormat) IsSRGB() bool {
	return f == FormatSRGB8 || f == FormatSRGBA8
}

// MinFilter is the texture minification filter.
type MinFilter uint8

const (
	MinNearest MinFilter = iota
	MinLinear
	MinNearestMipmapNearest
	MinNearestMipmapLinear
	MinLinearMipmapNearest
	MinLinearMipmapLinear
)

// HasMipmap reports whether the filter samples mipmap levels.
func (f MinFilter) HasMipmap() bool {
	return f >= MinNearestMipmapNearest
}

// MagFilter is the texture magnification filter.
type MagFilter uint8

const (
	MagNearest MagFilter = iota
	MagLinear
)

// WrapMode is the texture coordinate wrap behavior.
type WrapMode uint8

const (
	WrapClampToEdge WrapMode = iota
	WrapRepeat
)

// AttachmentPoint selects where a texture or renderbuffer attaches to a
// framebuffer.
type AttachmentPoint uint8

const (
	AttachColor0 AttachmentPoint = iota
	AttachDepth
)

// ClearMask selects which buffers a Clear call touches.
type ClearMask uint8

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// ActiveAttrib describes one vertex attribute exposed by a linked program.
type ActiveAttrib struct {
	Name     string
	Location uint32
	// Size is the number of float components the attribute consumes.
	Size int32
}

// UniformType is the declared GLSL type of a program uniform.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
	UniformSampler2D
)

func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "float"
	case UniformInt:
		return "int"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat3:
		return "mat3"
	case UniformMat4:
		return "mat4"
	case UniformSampler2D:
		return "sampler2D"
	}
	return "unknown"
}

// ActiveUniform describes one uniform exposed by a linked program.
type ActiveUniform struct {
	Name     string
	Location UniformLocation
	Type     UniformType
}

// Device is the boundary to the real graphics context: one method per
// primitive context operation, with standard bind-before-use semantics.
// A Device never makes caching or equality decisions; it is a pure
// pass-through, which is what makes the layer above it testable against
// a recording implementation.
//
// Devices must be registered via Register() and are selected via Get()
// or Default(). All methods must be called from the thread that owns the
// underlying context.
type Device interface {
	// Name returns the device identifier (e.g., "gl", "recording").
	Name() string

	// Init initializes the device. It must be called before any other
	// operation, on the thread that owns the underlying context.
	Init() error

	// Close releases the device. The device must not be used afterwards.
	Close()

	// MaxSamples returns the largest supported multisample count for
	// renderbuffer storage.
	MaxSamples() int32

	// Resource lifecycle. Creation returns an error when the underlying
	// context refuses the resource; deletion never fails.

	CreateProgram(vertexSrc, fragmentSrc string) (ProgramID, error)
	DeleteProgram(p ProgramID)
	CreateBuffer() (BufferID, error)
	DeleteBuffer(b BufferID)
	CreateTexture() (TextureID, error)
	DeleteTexture(t TextureID)
	CreateRenderbuffer() (RenderbufferID, error)
	DeleteRenderbuffer(r RenderbufferID)
	CreateFramebuffer() (FramebufferID, error)
	DeleteFramebuffer(f FramebufferID)

	// Program introspection, resolved once at program creation.

	ActiveAttribs(p ProgramID) ([]ActiveAttrib, error)
	ActiveUniforms(p ProgramID) ([]ActiveUniform, error)

	// Binding.

	UseProgram(p ProgramID) error
	BindBuffer(target BufferTarget, b BufferID) error
	BindFramebuffer(slot FramebufferSlot, f FramebufferID) error
	BindRenderbuffer(r RenderbufferID) error
	ActiveTexture(unit uint32) error
	BindTexture(t TextureID) error

	// Vertex attribute state. Pointer configuration captures the buffer
	// currently bound to ArrayBuffer.

	EnableVertexAttrib(location uint32) error
	DisableVertexAttrib(location uint32) error
	VertexAttribPointer(location uint32, size int32, typ AttribType, stride, offset int) error
	VertexAttribDivisor(location, divisor uint32) error

	// Scalar render state.

	Enable(c Capability) error
	Disable(c Capability) error
	CullFace(m CullMode) error
	FrontFace(w Winding) error
	BlendFunc(src, dst BlendFactor) error
	Viewport(x, y, width, height int32) error

	// Data upload. Targets the currently bound buffer or texture.

	BufferData(target BufferTarget, data []byte, usage Usage) error
	BufferSubData(target BufferTarget, offset int, data []byte) error
	TexImage2D(width, height int32, format PixelFormat, pixels []byte) error
	TexSubImage2D(x, y, width, height int32, format PixelFormat, pixels []byte) error
	TexParameters(min MinFilter, mag MagFilter, wrap WrapMode) error
	GenerateMipmap() error
	RenderbufferStorage(samples int32, format PixelFormat, width, height int32) error

	// Framebuffer assembly. Targets the draw framebuffer binding.

	FramebufferTexture2D(point AttachmentPoint, t TextureID) error
	FramebufferRenderbuffer(point AttachmentPoint, r RenderbufferID) error
	CheckFramebufferComplete() error

	// Uniforms. Target the currently bound program.

	Uniform1f(loc UniformLocation, v float32) error
	Uniform2f(loc UniformLocation, v [2]float32) error
	Uniform3f(loc UniformLocation, v [3]float32) error
	Uniform4f(loc UniformLocation, v [4]float32) error
	Uniform1i(loc UniformLocation, v int32) error
	UniformMatrix3(loc UniformLocation, v [9]float32) error
	UniformMatrix4(loc UniformLocation, v [16]float32) error

	// Clearing and drawing.

	ClearColor(r, g, b, a float32) error
	Clear(mask ClearMask) error
	DrawArrays(mode Topology, first, count int32) error
	DrawElements(mode Topology, count int32, typ IndexType, offset int) error
	DrawArraysInstanced(mode Topology, first, count, instances int32) error
	DrawElementsInstanced(mode Topology, count int32, typ IndexType, offset int, instances int32) error

	// BlitFramebuffer copies the (0,0,width,height) color rectangle from
	// the read framebuffer to the same rectangle of the draw framebuffer,
	// nearest filtered. The rectangles must be identical so that a
	// multisampled source is allowed to resolve.
	BlitFramebuffer(width, height int32) error
}
