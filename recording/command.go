// Package recording provides a device that records context calls.
//
// The recording device implements backend.Device by capturing every call
// as a typed Call value instead of touching a real graphics context.
// Commands are stored in order and can be inspected afterwards, which is
// how the state-caching layer is tested: a sequence of draws is issued
// and the recorded call stream is compared against the calls the cache
// was required to emit.
//
// Design follows typed command structs for inspectability rather than a
// positional argument encoding: each call is its own struct and tests can
// type-assert to reach its arguments.
//
// # Example
//
//	dev := recording.New()
//	ctx, screen, _ := glstate.New(dev, 640, 480)
//	// ... issue draws ...
//	for _, call := range dev.Calls() {
//	    fmt.Println(call.Op())
//	}
package recording

import "github.com/gogpu/glstate/backend"

// Op identifies the kind of a recorded call. Each op corresponds to one
// backend.Device method.
type Op uint8

const (
	// Resource lifecycle
	OpCreateProgram Op = iota
	OpDeleteProgram
	OpCreateBuffer
	OpDeleteBuffer
	OpCreateTexture
	OpDeleteTexture
	OpCreateRenderbuffer
	OpDeleteRenderbuffer
	OpCreateFramebuffer
	OpDeleteFramebuffer

	// Binding
	OpUseProgram
	OpBindBuffer
	OpBindFramebuffer
	OpBindRenderbuffer
	OpActiveTexture
	OpBindTexture

	// Vertex attribute state
	OpEnableVertexAttrib
	OpDisableVertexAttrib
	OpVertexAttribPointer
	OpVertexAttribDivisor

	// Scalar render state
	OpEnable
	OpDisable
	OpCullFace
	OpFrontFace
	OpBlendFunc
	OpViewport

	// Data upload
	OpBufferData
	OpBufferSubData
	OpTexImage2D
	OpTexSubImage2D
	OpTexParameters
	OpGenerateMipmap
	OpRenderbufferStorage

	// Framebuffer assembly
	OpFramebufferTexture2D
	OpFramebufferRenderbuffer
	OpCheckFramebufferComplete

	// Uniforms
	OpUniform1f
	OpUniform2f
	OpUniform3f
	OpUniform4f
	OpUniform1i
	OpUniformMatrix3
	OpUniformMatrix4

	// Clearing and drawing
	OpClearColor
	OpClear
	OpDrawArrays
	OpDrawElements
	OpDrawArraysInstanced
	OpDrawElementsInstanced
	OpBlitFramebuffer
)

// opNames maps Op values to their string representation.
var opNames = [...]string{
	OpCreateProgram:            "CreateProgram",
	OpDeleteProgram:            "DeleteProgram",
	OpCreateBuffer:             "CreateBuffer",
	OpDeleteBuffer:             "DeleteBuffer",
	OpCreateTexture:            "CreateTexture",
	OpDeleteTexture:            "DeleteTexture",
	OpCreateRenderbuffer:       "CreateRenderbuffer",
	OpDeleteRenderbuffer:       "DeleteRenderbuffer",
	OpCreateFramebuffer:        "CreateFramebuffer",
	OpDeleteFramebuffer:        "DeleteFramebuffer",
	OpUseProgram:               "UseProgram",
	OpBindBuffer:               "BindBuffer",
	OpBindFramebuffer:          "BindFramebuffer",
	OpBindRenderbuffer:         "BindRenderbuffer",
	OpActiveTexture:            "ActiveTexture",
	OpBindTexture:              "BindTexture",
	OpEnableVertexAttrib:       "EnableVertexAttrib",
	OpDisableVertexAttrib:      "DisableVertexAttrib",
	OpVertexAttribPointer:      "VertexAttribPointer",
	OpVertexAttribDivisor:      "VertexAttribDivisor",
	OpEnable:                   "Enable",
	OpDisable:                  "Disable",
	OpCullFace:                 "CullFace",
	OpFrontFace:                "FrontFace",
	OpBlendFunc:                "BlendFunc",
	OpViewport:                 "Viewport",
	OpBufferData:               "BufferData",
	OpBufferSubData:            "BufferSubData",
	OpTexImage2D:               "TexImage2D",
	OpTexSubImage2D:            "TexSubImage2D",
	OpTexParameters:            "TexParameters",
	OpGenerateMipmap:           "GenerateMipmap",
	OpRenderbufferStorage:      "RenderbufferStorage",
	OpFramebufferTexture2D:     "FramebufferTexture2D",
	OpFramebufferRenderbuffer:  "FramebufferRenderbuffer",
	OpCheckFramebufferComplete: "CheckFramebufferComplete",
	OpUniform1f:                "Uniform1f",
	OpUniform2f:                "Uniform2f",
	OpUniform3f:                "Uniform3f",
	OpUniform4f:                "Uniform4f",
	OpUniform1i:                "Uniform1i",
	OpUniformMatrix3:           "UniformMatrix3",
	OpUniformMatrix4:           "UniformMatrix4",
	OpClearColor:               "ClearColor",
	OpClear:                    "Clear",
	OpDrawArrays:               "DrawArrays",
	OpDrawElements:             "DrawElements",
	OpDrawArraysInstanced:      "DrawArraysInstanced",
	OpDrawElementsInstanced:    "DrawElementsInstanced",
	OpBlitFramebuffer:          "BlitFramebuffer",
}

// String returns the string representation of an Op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "Unknown"
}

// Call is the interface implemented by all recorded call types.
type Call interface {
	// Op returns the Op for this call.
	Op() Op
}

// Resource lifecycle calls. Creation calls record the id they handed out.

type CreateProgram struct {
	Program               backend.ProgramID
	VertexSrc, FragmentSrc string
}

type DeleteProgram struct{ Program backend.ProgramID }

type CreateBuffer struct{ Buffer backend.BufferID }

type DeleteBuffer struct{ Buffer backend.BufferID }

type CreateTexture struct{ Texture backend.TextureID }

type DeleteTexture struct{ Texture backend.TextureID }

type CreateRenderbuffer struct{ Renderbuffer backend.RenderbufferID }

type DeleteRenderbuffer struct{ Renderbuffer backend.RenderbufferID }

type CreateFramebuffer struct{ Framebuffer backend.FramebufferID }

type DeleteFramebuffer struct{ Framebuffer backend.FramebufferID }

func (CreateProgram) Op() Op      { return OpCreateProgram }
func (DeleteProgram) Op() Op      { return OpDeleteProgram }
func (CreateBuffer) Op() Op       { return OpCreateBuffer }
func (DeleteBuffer) Op() Op       { return OpDeleteBuffer }
func (CreateTexture) Op() Op      { return OpCreateTexture }
func (DeleteTexture) Op() Op      { return OpDeleteTexture }
func (CreateRenderbuffer) Op() Op { return OpCreateRenderbuffer }
func (DeleteRenderbuffer) Op() Op { return OpDeleteRenderbuffer }
func (CreateFramebuffer) Op() Op  { return OpCreateFramebuffer }
func (DeleteFramebuffer) Op() Op  { return OpDeleteFramebuffer }

// Binding calls.

type UseProgram struct{ Program backend.ProgramID }

type BindBuffer struct {
	Target backend.BufferTarget
	Buffer backend.BufferID
}

type BindFramebuffer struct {
	Slot        backend.FramebufferSlot
	Framebuffer backend.FramebufferID
}

type BindRenderbuffer struct{ Renderbuffer backend.RenderbufferID }

type ActiveTexture struct{ Unit uint32 }

type BindTexture struct{ Texture backend.TextureID }

func (UseProgram) Op() Op       { return OpUseProgram }
func (BindBuffer) Op() Op       { return OpBindBuffer }
func (BindFramebuffer) Op() Op  { return OpBindFramebuffer }
func (BindRenderbuffer) Op() Op { return OpBindRenderbuffer }
func (ActiveTexture) Op() Op    { return OpActiveTexture }
func (BindTexture) Op() Op      { return OpBindTexture }

// Vertex attribute calls.

type EnableVertexAttrib struct{ Location uint32 }

type DisableVertexAttrib struct{ Location uint32 }

type VertexAttribPointer struct {
	Location       uint32
	Size           int32
	Type           backend.AttribType
	Stride, Offset int
}

type VertexAttribDivisor struct{ Location, Divisor uint32 }

func (EnableVertexAttrib) Op() Op  { return OpEnableVertexAttrib }
func (DisableVertexAttrib) Op() Op { return OpDisableVertexAttrib }
func (VertexAttribPointer) Op() Op { return OpVertexAttribPointer }
func (VertexAttribDivisor) Op() Op { return OpVertexAttribDivisor }

// Scalar render state calls.

type Enable struct{ Cap backend.Capability }

type Disable struct{ Cap backend.Capability }

type CullFace struct{ Mode backend.CullMode }

type FrontFace struct{ Winding backend.Winding }

type BlendFunc struct{ Src, Dst backend.BlendFactor }

type Viewport struct{ X, Y, Width, Height int32 }

func (Enable) Op() Op    { return OpEnable }
func (Disable) Op() Op   { return OpDisable }
func (CullFace) Op() Op  { return OpCullFace }
func (FrontFace) Op() Op { return OpFrontFace }
func (BlendFunc) Op() Op { return OpBlendFunc }
func (Viewport) Op() Op  { return OpViewport }

// Data upload calls. Payloads record lengths, not contents; the cache layer
// never inspects vertex data and the tests only care that an upload happened.

type BufferData struct {
	Target backend.BufferTarget
	Len    int
	Usage  backend.Usage
}

type BufferSubData struct {
	Target backend.BufferTarget
	Offset int
	Len    int
}

type TexImage2D struct {
	Width, Height int32
	Format        backend.PixelFormat
	Len           int
}

type TexSubImage2D struct {
	X, Y, Width, Height int32
	Format              backend.PixelFormat
	Len                 int
}

type TexParameters struct {
	Min  backend.MinFilter
	Mag  backend.MagFilter
	Wrap backend.WrapMode
}

type GenerateMipmap struct{}

type RenderbufferStorage struct {
	Samples       int32
	Format        backend.PixelFormat
	Width, Height int32
}

func (BufferData) Op() Op          { return OpBufferData }
func (BufferSubData) Op() Op       { return OpBufferSubData }
func (TexImage2D) Op() Op          { return OpTexImage2D }
func (TexSubImage2D) Op() Op       { return OpTexSubImage2D }
func (TexParameters) Op() Op       { return OpTexParameters }
func (GenerateMipmap) Op() Op      { return OpGenerateMipmap }
func (RenderbufferStorage) Op() Op { return OpRenderbufferStorage }

// Framebuffer assembly calls.

type FramebufferTexture2D struct {
	Point   backend.AttachmentPoint
	Texture backend.TextureID
}

type FramebufferRenderbuffer struct {
	Point        backend.AttachmentPoint
	Renderbuffer backend.RenderbufferID
}

type CheckFramebufferComplete struct{}

func (FramebufferTexture2D) Op() Op     { return OpFramebufferTexture2D }
func (FramebufferRenderbuffer) Op() Op  { return OpFramebufferRenderbuffer }
func (CheckFramebufferComplete) Op() Op { return OpCheckFramebufferComplete }

// Uniform calls.

type Uniform1f struct {
	Loc   backend.UniformLocation
	Value float32
}

type Uniform2f struct {
	Loc   backend.UniformLocation
	Value [2]float32
}

type Uniform3f struct {
	Loc   backend.UniformLocation
	Value [3]float32
}

type Uniform4f struct {
	Loc   backend.UniformLocation
	Value [4]float32
}

type Uniform1i struct {
	Loc   backend.UniformLocation
	Value int32
}

type UniformMatrix3 struct {
	Loc   backend.UniformLocation
	Value [9]float32
}

type UniformMatrix4 struct {
	Loc   backend.UniformLocation
	Value [16]float32
}

func (Uniform1f) Op() Op      { return OpUniform1f }
func (Uniform2f) Op() Op      { return OpUniform2f }
func (Uniform3f) Op() Op      { return OpUniform3f }
func (Uniform4f) Op() Op      { return OpUniform4f }
func (Uniform1i) Op() Op      { return OpUniform1i }
func (UniformMatrix3) Op() Op { return OpUniformMatrix3 }
func (UniformMatrix4) Op() Op { return OpUniformMatrix4 }

// Clearing and drawing calls.

type ClearColor struct{ R, G, B, A float32 }

type Clear struct{ Mask backend.ClearMask }

type DrawArrays struct {
	Mode         backend.Topology
	First, Count int32
}

type DrawElements struct {
	Mode   backend.Topology
	Count  int32
	Type   backend.IndexType
	Offset int
}

type DrawArraysInstanced struct {
	Mode                    backend.Topology
	First, Count, Instances int32
}

type DrawElementsInstanced struct {
	Mode      backend.Topology
	Count     int32
	Type      backend.IndexType
	Offset    int
	Instances int32
}

type BlitFramebuffer struct {
	Width, Height int32
}

func (ClearColor) Op() Op            { return OpClearColor }
func (Clear) Op() Op                 { return OpClear }
func (DrawArrays) Op() Op            { return OpDrawArrays }
func (DrawElements) Op() Op          { return OpDrawElements }
func (DrawArraysInstanced) Op() Op   { return OpDrawArraysInstanced }
func (DrawElementsInstanced) Op() Op { return OpDrawElementsInstanced }
func (BlitFramebuffer) Op() Op       { return OpBlitFramebuffer }
