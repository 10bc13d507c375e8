package glstate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glstate/backend"
)

// UniformValue is a closed tagged variant over the value types a program
// uniform can accept: scalar float, vec2/3/4, mat3/4, integer, and a
// texture-unit reference. Values are bound to a program's named uniform
// slot only at draw time and are always re-sent; per-draw uniform traffic
// is cheap and caching its equality is not worth the bookkeeping.
type UniformValue interface {
	// apply sends the value to the given location. The owning program is
	// already bound when this runs.
	apply(c *Context, loc backend.UniformLocation) error

	// uniformType reports the GLSL type the value is compatible with,
	// checked against the program's uniform table before the draw.
	uniformType() backend.UniformType
}

// Uniform pairs a program uniform name with the value to send.
type Uniform struct {
	Name  string
	Value UniformValue
}

// Uniforms is the ordered uniform set of one draw call.
type Uniforms []Uniform

// Float is a scalar float uniform.
type Float float32

// Int is a scalar integer uniform.
type Int int32

// Vec2 is a 2-component vector uniform.
type Vec2 mgl32.Vec2

// Vec3 is a 3-component vector uniform.
type Vec3 mgl32.Vec3

// Vec4 is a 4-component vector uniform.
type Vec4 mgl32.Vec4

// Mat3 is a 3x3 matrix uniform, column-major.
type Mat3 mgl32.Mat3

// Mat4 is a 4x4 matrix uniform, column-major.
type Mat4 mgl32.Mat4

// Sampler references a texture bound to a texture unit. The texture is
// bound through the state cache during the draw's texture phase; the
// sampler uniform itself carries the unit index.
type Sampler struct {
	Texture *Texture
	Unit    uint32
}

func (v Float) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform1f", c.dev.Uniform1f(loc, float32(v)))
}

func (v Int) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform1i", c.dev.Uniform1i(loc, int32(v)))
}

func (v Vec2) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform2f", c.dev.Uniform2f(loc, [2]float32(v)))
}

func (v Vec3) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform3f", c.dev.Uniform3f(loc, [3]float32(v)))
}

func (v Vec4) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform4f", c.dev.Uniform4f(loc, [4]float32(v)))
}

func (v Mat3) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("UniformMatrix3", c.dev.UniformMatrix3(loc, [9]float32(v)))
}

func (v Mat4) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("UniformMatrix4", c.dev.UniformMatrix4(loc, [16]float32(v)))
}

func (v Sampler) apply(c *Context, loc backend.UniformLocation) error {
	return ctxErr("Uniform1i", c.dev.Uniform1i(loc, int32(v.Unit)))
}

func (Float) uniformType() backend.UniformType   { return backend.UniformFloat }
func (Int) uniformType() backend.UniformType     { return backend.UniformInt }
func (Vec2) uniformType() backend.UniformType    { return backend.UniformVec2 }
func (Vec3) uniformType() backend.UniformType    { return backend.UniformVec3 }
func (Vec4) uniformType() backend.UniformType    { return backend.UniformVec4 }
func (Mat3) uniformType() backend.UniformType    { return backend.UniformMat3 }
func (Mat4) uniformType() backend.UniformType    { return backend.UniformMat4 }
func (Sampler) uniformType() backend.UniformType { return backend.UniformSampler2D }

// validate checks a sampler before the draw mutates anything.
func (v Sampler) validate(c *Context, name string) (backend.TextureID, error) {
	if v.Texture == nil {
		return 0, fmt.Errorf("%w: sampler %q has no texture", ErrAttributeMismatch, name)
	}
	if v.Unit >= backend.MaxTextureUnits {
		return 0, fmt.Errorf("%w: sampler %q unit %d out of range", ErrAttributeMismatch, name, v.Unit)
	}
	id, err := c.reg.underlying(v.Texture.h)
	if err != nil {
		return 0, err
	}
	return backend.TextureID(id), nil
}
