package glstate

import "fmt"

// Kind identifies the resource kind a Handle refers to.
type Kind uint8

const (
	KindProgram Kind = iota + 1
	KindBuffer
	KindTexture
	KindRenderbuffer
	KindFramebuffer
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindRenderbuffer:
		return "renderbuffer"
	case KindFramebuffer:
		return "framebuffer"
	}
	return "unknown"
}

// Handle is an opaque, typed, non-owning reference to a device resource.
// Handles are issued by a Context and are valid only for that Context's
// lifetime; they are cheap to copy and comparable with ==.
//
// Unlike the numeric ids of the underlying context, a Handle value is
// never reused after its resource is destroyed, so a stale Handle fails
// with ErrInvalidHandle instead of silently aliasing a newer resource.
//
// The zero Handle means "none"; the state cache also uses it as its
// "unknown" sentinel.
type Handle struct {
	kind Kind
	id   uint32
}

// Kind returns the resource kind, or 0 for the zero Handle.
func (h Handle) Kind() Kind { return h.kind }

// IsZero reports whether the handle refers to nothing.
func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", h.kind, h.id)
}
