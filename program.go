package glstate

import (
	"fmt"

	"github.com/gogpu/glstate/backend"
)

// Program is an immutable descriptor of a linked shader program: its
// handle plus the attributes and uniforms it exposes, resolved once at
// creation. A program places no constraint on which meshes it is drawn
// with until draw time, where the mesh layout is checked against the
// program's attributes.
type Program struct {
	h Handle

	attribs  []backend.ActiveAttrib
	uniforms map[string]backend.ActiveUniform
}

// NewProgram compiles and links a program from the given shader sources
// and resolves its attribute and uniform tables.
func (c *Context) NewProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := c.dev.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: program: %v", ErrResourceCreation, err)
	}

	attribs, err := c.dev.ActiveAttribs(id)
	if err != nil {
		c.dev.DeleteProgram(id)
		return nil, fmt.Errorf("%w: program attributes: %v", ErrResourceCreation, err)
	}
	uniforms, err := c.dev.ActiveUniforms(id)
	if err != nil {
		c.dev.DeleteProgram(id)
		return nil, fmt.Errorf("%w: program uniforms: %v", ErrResourceCreation, err)
	}

	p := &Program{
		attribs:  attribs,
		uniforms: make(map[string]backend.ActiveUniform, len(uniforms)),
	}
	for _, a := range attribs {
		if a.Location >= backend.MaxVertexAttribs {
			c.dev.DeleteProgram(id)
			return nil, fmt.Errorf("%w: attribute %q at location %d exceeds limit %d",
				ErrResourceCreation, a.Name, a.Location, backend.MaxVertexAttribs)
		}
	}
	for _, u := range uniforms {
		p.uniforms[u.Name] = u
	}

	p.h = c.reg.create(KindProgram, uint32(id))
	return p, nil
}

// Handle returns the program's resource handle.
func (p *Program) Handle() Handle { return p.h }

// Attribs returns the attributes the program expects, as reported by the
// device at link time.
func (p *Program) Attribs() []backend.ActiveAttrib { return p.attribs }

// UniformLocation returns the location of a named uniform and whether the
// program exposes it.
func (p *Program) UniformLocation(name string) (backend.UniformLocation, bool) {
	u, ok := p.uniforms[name]
	return u.Location, ok
}
