package glstate

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/glstate/backend"
)

// VertexAttrib describes one entry of a mesh's vertex layout. Stride and
// Offset are in bytes into the mesh's vertex buffer. A nonzero Divisor
// makes the attribute advance per instance instead of per vertex.
type VertexAttrib struct {
	Location uint32
	// Size is the number of components, 1 through 4.
	Size    int32
	Type    AttribType
	Stride  int
	Offset  int
	Divisor uint32
}

// MeshSpec describes a mesh to create. Vertices are tightly packed floats
// laid out according to Layout. Indices are optional; an indexed mesh
// draws with DrawElements, otherwise with DrawArrays.
type MeshSpec struct {
	Vertices []float32
	Indices  []uint16
	Layout   []VertexAttrib
	Topology Topology
	Usage    Usage

	// VertexCount overrides the count derived from the vertex data and
	// the first per-vertex attribute's stride. Needed only when instance
	// data shares the vertex buffer.
	VertexCount int
}

// Mesh is an immutable descriptor of uploaded geometry: a vertex buffer
// handle, an optional index buffer handle, a vertex layout and a
// topology. Which program a mesh is drawn with is decided per draw call.
type Mesh struct {
	vbo Handle
	ibo Handle // zero when non-indexed

	layout   []VertexAttrib
	topology Topology
	usage    Usage

	vertexCount int32
	indexCount  int32
	maxIndex    int32
}

func validateLayout(spec MeshSpec) (vertexStride int, err error) {
	if len(spec.Layout) == 0 {
		return 0, fmt.Errorf("%w: mesh has no vertex layout", ErrInvalidDescriptor)
	}
	seen := make(map[uint32]bool, len(spec.Layout))
	for _, a := range spec.Layout {
		if a.Location >= backend.MaxVertexAttribs {
			return 0, fmt.Errorf("%w: attribute location %d exceeds limit %d",
				ErrInvalidDescriptor, a.Location, backend.MaxVertexAttribs)
		}
		if seen[a.Location] {
			return 0, fmt.Errorf("%w: duplicate attribute location %d", ErrInvalidDescriptor, a.Location)
		}
		seen[a.Location] = true
		if a.Size < 1 || a.Size > 4 {
			return 0, fmt.Errorf("%w: attribute size %d at location %d", ErrInvalidDescriptor, a.Size, a.Location)
		}
		if a.Type != AttribFloat {
			return 0, fmt.Errorf("%w: unsupported attribute type at location %d", ErrInvalidDescriptor, a.Location)
		}
		if a.Stride <= 0 || a.Offset < 0 {
			return 0, fmt.Errorf("%w: attribute stride/offset at location %d", ErrInvalidDescriptor, a.Location)
		}
		if a.Divisor == 0 && vertexStride == 0 {
			vertexStride = a.Stride
		}
	}
	if vertexStride == 0 {
		return 0, fmt.Errorf("%w: mesh has no per-vertex attributes", ErrInvalidDescriptor)
	}
	return vertexStride, nil
}

func deriveCounts(spec MeshSpec, vertexStride int) (vertexCount, maxIndex int32, err error) {
	if spec.VertexCount > 0 {
		vertexCount = int32(spec.VertexCount)
	} else {
		vertexCount = int32(len(spec.Vertices) * 4 / vertexStride)
	}
	if vertexCount == 0 {
		return 0, 0, fmt.Errorf("%w: vertex data smaller than one vertex", ErrInvalidDescriptor)
	}
	maxIndex = -1
	for _, i := range spec.Indices {
		if int32(i) >= vertexCount {
			return 0, 0, fmt.Errorf("%w: index %d out of range for %d vertices",
				ErrInvalidDescriptor, i, vertexCount)
		}
		if int32(i) > maxIndex {
			maxIndex = int32(i)
		}
	}
	return vertexCount, maxIndex, nil
}

// NewMesh validates the spec and uploads the vertex (and index) data.
// Validation happens before any device call.
func (c *Context) NewMesh(spec MeshSpec) (*Mesh, error) {
	if len(spec.Vertices) == 0 {
		return nil, fmt.Errorf("%w: zero-length vertex buffer", ErrInvalidDescriptor)
	}
	vertexStride, err := validateLayout(spec)
	if err != nil {
		return nil, err
	}
	vertexCount, maxIndex, err := deriveCounts(spec, vertexStride)
	if err != nil {
		return nil, err
	}

	vboID, err := c.dev.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: vertex buffer: %v", ErrResourceCreation, err)
	}
	m := &Mesh{
		vbo:         c.reg.create(KindBuffer, uint32(vboID)),
		layout:      append([]VertexAttrib(nil), spec.Layout...),
		topology:    spec.Topology,
		usage:       spec.Usage,
		vertexCount: vertexCount,
		indexCount:  int32(len(spec.Indices)),
		maxIndex:    maxIndex,
	}
	if err := c.cache.ensureBuffer(backend.ArrayBuffer, m.vbo, vboID); err != nil {
		return nil, err
	}
	if err := c.dev.BufferData(backend.ArrayBuffer, floatBytes(spec.Vertices), spec.Usage); err != nil {
		return nil, ctxErr("BufferData", err)
	}

	if len(spec.Indices) > 0 {
		iboID, err := c.dev.CreateBuffer()
		if err != nil {
			return nil, fmt.Errorf("%w: index buffer: %v", ErrResourceCreation, err)
		}
		m.ibo = c.reg.create(KindBuffer, uint32(iboID))
		if err := c.cache.ensureBuffer(backend.ElementArrayBuffer, m.ibo, iboID); err != nil {
			return nil, err
		}
		if err := c.dev.BufferData(backend.ElementArrayBuffer, uint16Bytes(spec.Indices), spec.Usage); err != nil {
			return nil, ctxErr("BufferData", err)
		}
	}
	return m, nil
}

// UpdateMesh replaces the mesh's vertex data, reusing its layout and
// usage hint. The new data must still cover every index of an indexed
// mesh.
func (c *Context) UpdateMesh(m *Mesh, vertices []float32) error {
	if len(vertices) == 0 {
		return fmt.Errorf("%w: zero-length vertex buffer", ErrInvalidDescriptor)
	}
	vertexStride := 0
	for _, a := range m.layout {
		if a.Divisor == 0 {
			vertexStride = a.Stride
			break
		}
	}
	count := int32(len(vertices) * 4 / vertexStride)
	if count <= m.maxIndex {
		return fmt.Errorf("%w: %d vertices but indices reach %d", ErrInvalidDescriptor, count, m.maxIndex)
	}
	vboID, err := c.reg.underlying(m.vbo)
	if err != nil {
		return err
	}
	if err := c.cache.ensureBuffer(backend.ArrayBuffer, m.vbo, backend.BufferID(vboID)); err != nil {
		return err
	}
	if err := c.dev.BufferData(backend.ArrayBuffer, floatBytes(vertices), m.usage); err != nil {
		return ctxErr("BufferData", err)
	}
	m.vertexCount = count
	return nil
}

// VertexBuffer returns the handle of the mesh's vertex buffer.
func (m *Mesh) VertexBuffer() Handle { return m.vbo }

// IndexBuffer returns the handle of the mesh's index buffer, or the zero
// Handle for a non-indexed mesh.
func (m *Mesh) IndexBuffer() Handle { return m.ibo }

// Indexed reports whether the mesh draws through an index buffer.
func (m *Mesh) Indexed() bool { return !m.ibo.IsZero() }

// Topology returns the mesh's primitive topology.
func (m *Mesh) Topology() Topology { return m.topology }

// Layout returns the mesh's vertex layout.
func (m *Mesh) Layout() []VertexAttrib { return m.layout }

// attribAt returns the layout entry for a location.
func (m *Mesh) attribAt(location uint32) (VertexAttrib, bool) {
	for _, a := range m.layout {
		if a.Location == location {
			return a, true
		}
	}
	return VertexAttrib{}, false
}

// hasInstanceAttribs reports whether any layout entry advances per
// instance.
func (m *Mesh) hasInstanceAttribs() bool {
	for _, a := range m.layout {
		if a.Divisor > 0 {
			return true
		}
	}
	return false
}

// floatBytes views a float slice as raw bytes for upload. The device
// consumes the bytes before returning, so the aliasing never escapes.
func floatBytes(v []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uint16Bytes(v []uint16) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*2)
}
