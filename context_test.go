package glstate

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glstate/backend"
	"github.com/gogpu/glstate/recording"
)

const (
	spriteVertexSrc   = "#version 410 core\n// sprite vs\n"
	spriteFragmentSrc = "#version 410 core\n// sprite fs\n"

	solidVertexSrc   = "#version 410 core\n// solid vs\n"
	solidFragmentSrc = "#version 410 core\n// solid fs\n"

	particleVertexSrc   = "#version 410 core\n// particle vs\n"
	particleFragmentSrc = "#version 410 core\n// particle fs\n"
)

// newTestContext builds a context over a recording device with stubs for
// the shader programs the tests use.
func newTestContext(t *testing.T) (*Context, *ScreenSurface, *recording.Device) {
	t.Helper()
	dev := recording.New()
	dev.Define(spriteVertexSrc, recording.ProgramStub{
		Attribs: []backend.ActiveAttrib{
			{Name: "position", Location: 0, Size: 2},
			{Name: "uv", Location: 1, Size: 2},
		},
		Uniforms: []backend.ActiveUniform{
			{Name: "transform", Location: 3, Type: backend.UniformMat4},
			{Name: "tex", Location: 7, Type: backend.UniformSampler2D},
		},
	})
	dev.Define(solidVertexSrc, recording.ProgramStub{
		Attribs: []backend.ActiveAttrib{
			{Name: "position", Location: 0, Size: 2},
		},
		Uniforms: []backend.ActiveUniform{
			{Name: "color", Location: 1, Type: backend.UniformVec4},
		},
	})
	dev.Define(particleVertexSrc, recording.ProgramStub{
		Attribs: []backend.ActiveAttrib{
			{Name: "position", Location: 0, Size: 2},
			{Name: "offset", Location: 2, Size: 2},
		},
	})
	ctx, screen, err := New(dev, 640, 480)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ctx, screen, dev
}

func newSpriteProgram(t *testing.T, ctx *Context) *Program {
	t.Helper()
	p, err := ctx.NewProgram(spriteVertexSrc, spriteFragmentSrc)
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}
	return p
}

// newQuadMesh builds an indexed unit quad with interleaved position and
// uv, matching the sprite program.
func newQuadMesh(t *testing.T, ctx *Context) *Mesh {
	t.Helper()
	m, err := ctx.NewMesh(MeshSpec{
		Vertices: []float32{
			-1, -1, 0, 0,
			1, -1, 1, 0,
			1, 1, 1, 1,
			-1, 1, 0, 1,
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 16, Offset: 0},
			{Location: 1, Size: 2, Type: AttribFloat, Stride: 16, Offset: 8},
		},
		Topology: Triangles,
		Usage:    StaticDraw,
	})
	if err != nil {
		t.Fatalf("NewMesh() error = %v", err)
	}
	return m
}

func spriteUniforms(tex *Texture) Uniforms {
	u := Uniforms{
		{Name: "transform", Value: Mat4(mgl32.Ident4())},
	}
	if tex != nil {
		u = append(u, Uniform{Name: "tex", Value: Sampler{Texture: tex, Unit: 0}})
	}
	return u
}

// opIndex returns the position of the first recorded call with the given
// op, or -1.
func opIndex(ops []recording.Op, want recording.Op) int {
	for i, op := range ops {
		if op == want {
			return i
		}
	}
	return -1
}

func TestDrawEmitsFullStateOnFirstDraw(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	// Creating a second mesh moves the cached buffer bindings off the
	// first one, so drawing it must re-emit its binds.
	newQuadMesh(t, ctx)

	dev.Reset()
	uniforms := Uniforms{{Name: "transform", Value: Mat4(mgl32.Ident4())}}
	if err := ctx.Draw(screen, prog, mesh, uniforms, RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	wantOnce := []recording.Op{
		recording.OpBindFramebuffer,
		recording.OpViewport,
		recording.OpUseProgram,
		recording.OpUniformMatrix4,
		recording.OpDrawElements,
	}
	for _, op := range wantOnce {
		if got := dev.CountOp(op); got != 1 {
			t.Errorf("CountOp(%v) = %d, want 1", op, got)
		}
	}
	for _, op := range []recording.Op{
		recording.OpBindBuffer,
		recording.OpEnableVertexAttrib,
		recording.OpVertexAttribPointer,
	} {
		if got := dev.CountOp(op); got != 2 {
			t.Errorf("CountOp(%v) = %d, want 2", op, got)
		}
	}
}

func TestDrawSkipsRedundantBinds(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)
	uniforms := Uniforms{{Name: "transform", Value: Mat4(mgl32.Ident4())}}

	if err := ctx.Draw(screen, prog, mesh, uniforms, RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	// Second identical draw: only the uniform upload and the draw itself
	// may reach the device.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, uniforms, RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	want := []recording.Op{recording.OpUniformMatrix4, recording.OpDrawElements}
	got := dev.Ops()
	if len(got) != len(want) {
		t.Fatalf("second draw recorded %d calls %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDrawAppliesStateInFixedOrder(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)
	tex, err := ctx.NewTexture(TextureSpec{
		Width: 2, Height: 2, Format: FormatRGBA8, Pixels: make([]byte, 16),
	})
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}

	// Decoy resources take over the cached buffer and texture slots, so
	// the draw below re-emits every bind.
	newQuadMesh(t, ctx)
	if _, err := ctx.NewTexture(TextureSpec{
		Width: 1, Height: 1, Format: FormatRGBA8, Pixels: make([]byte, 4),
	}); err != nil {
		t.Fatalf("NewTexture(decoy) error = %v", err)
	}

	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(tex), Draw2D); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	// Framebuffer, program, buffers, attributes, textures, flags,
	// uniforms, draw.
	ops := dev.Ops()
	order := []recording.Op{
		recording.OpBindFramebuffer,
		recording.OpUseProgram,
		recording.OpBindBuffer,
		recording.OpVertexAttribPointer,
		recording.OpBindTexture,
		recording.OpEnable,
		recording.OpUniformMatrix4,
		recording.OpDrawElements,
	}
	last := -1
	for _, op := range order {
		i := opIndex(ops, op)
		if i < 0 {
			t.Fatalf("op %v missing from %v", op, ops)
		}
		if i < last {
			t.Errorf("op %v at %d emitted before its predecessor at %d (ops: %v)", op, i, last, ops)
		}
		last = i
	}
}

func TestDrawRejectsMissingAttribute(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)

	// Position only; the sprite program also wants uv at location 1.
	mesh, err := ctx.NewMesh(MeshSpec{
		Vertices: []float32{-1, -1, 1, -1, 0, 1},
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 8, Offset: 0},
		},
		Topology: Triangles,
	})
	if err != nil {
		t.Fatalf("NewMesh() error = %v", err)
	}

	dev.Reset()
	err = ctx.Draw(screen, prog, mesh, nil, RenderState{})
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Fatalf("Draw() error = %v, want ErrAttributeMismatch", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls %v, want 0", n, dev.Ops())
	}
}

func TestDrawRejectsComponentCountMismatch(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)

	// uv declared vec3 in the layout while the program wants vec2.
	mesh, err := ctx.NewMesh(MeshSpec{
		Vertices: make([]float32, 15),
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 20, Offset: 0},
			{Location: 1, Size: 3, Type: AttribFloat, Stride: 20, Offset: 8},
		},
		Topology: Triangles,
	})
	if err != nil {
		t.Fatalf("NewMesh() error = %v", err)
	}

	dev.Reset()
	err = ctx.Draw(screen, prog, mesh, nil, RenderState{})
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Fatalf("Draw() error = %v, want ErrAttributeMismatch", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls, want 0", n)
	}
}

func TestDrawRejectsUnknownUniform(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	dev.Reset()
	err := ctx.Draw(screen, prog, mesh, Uniforms{
		{Name: "missing", Value: Float(1)},
	}, RenderState{})
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Fatalf("Draw() error = %v, want ErrAttributeMismatch", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls, want 0", n)
	}
}

func TestDrawRejectsUniformTypeMismatch(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)
	tex, err := ctx.NewTexture(TextureSpec{
		Width: 1, Height: 1, Format: FormatRGBA8, Pixels: make([]byte, 4),
	})
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}

	// transform is declared mat4; a scalar float must be rejected before
	// any device call instead of reaching the uniform setter.
	dev.Reset()
	err = ctx.Draw(screen, prog, mesh, Uniforms{
		{Name: "transform", Value: Float(1)},
	}, RenderState{})
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Fatalf("Draw() error = %v, want ErrAttributeMismatch", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls %v, want 0", n, dev.Ops())
	}

	// tex is declared sampler2D: a bare Int is not a texture binding.
	err = ctx.Draw(screen, prog, mesh, Uniforms{
		{Name: "transform", Value: Mat4(mgl32.Ident4())},
		{Name: "tex", Value: Int(0)},
	}, RenderState{})
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Fatalf("Draw() error = %v, want ErrAttributeMismatch", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls, want 0", n)
	}

	// The matching types pass.
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(tex), RenderState{}); err != nil {
		t.Fatalf("Draw() with matching types error = %v", err)
	}
}

func TestDrawDisablesStaleAttributes(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	sprite := newSpriteProgram(t, ctx)
	quad := newQuadMesh(t, ctx)

	solid, err := ctx.NewProgram(solidVertexSrc, solidFragmentSrc)
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}
	tri, err := ctx.NewMesh(MeshSpec{
		Vertices: []float32{-1, -1, 1, -1, 0, 1},
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 8, Offset: 0},
		},
		Topology: Triangles,
	})
	if err != nil {
		t.Fatalf("NewMesh() error = %v", err)
	}

	if err := ctx.Draw(screen, sprite, quad, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw(quad) error = %v", err)
	}

	// The quad enabled location 1; the triangle layout does not use it.
	dev.Reset()
	if err := ctx.Draw(screen, solid, tri, Uniforms{{Name: "color", Value: Vec4{1, 0, 0, 1}}}, RenderState{}); err != nil {
		t.Fatalf("Draw(tri) error = %v", err)
	}

	found := false
	for _, call := range dev.Calls() {
		if d, ok := call.(recording.DisableVertexAttrib); ok {
			if d.Location != 1 {
				t.Errorf("DisableVertexAttrib location = %d, want 1", d.Location)
			}
			found = true
		}
	}
	if !found {
		t.Error("stale attribute location 1 was not disabled")
	}
}

func TestDestroyInvalidatesCacheOnIDReuse(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	oldVBO, err := ctx.reg.underlying(mesh.VertexBuffer())
	if err != nil {
		t.Fatalf("underlying() error = %v", err)
	}

	if err := ctx.DestroyMesh(mesh); err != nil {
		t.Fatalf("DestroyMesh() error = %v", err)
	}

	// The recording device recycles freed ids, so the new mesh aliases
	// the destroyed one at the device level. Destroy cleared the cache
	// slots, so binding and pointer configuration must re-emit even
	// though the numeric ids match what was bound before.
	dev.Reset()
	mesh2 := newQuadMesh(t, ctx)
	newVBO, err := ctx.reg.underlying(mesh2.VertexBuffer())
	if err != nil {
		t.Fatalf("underlying() error = %v", err)
	}
	if newVBO != oldVBO && newVBO != oldVBO+1 {
		t.Fatalf("expected vertex buffer id reuse, old %d new %d", oldVBO, newVBO)
	}

	if err := ctx.Draw(screen, prog, mesh2, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw(mesh2) error = %v", err)
	}
	if got := dev.CountOp(recording.OpBindBuffer); got != 2 {
		t.Errorf("CountOp(BindBuffer) = %d, want 2 (binds must re-emit after destroy)", got)
	}
	if got := dev.CountOp(recording.OpVertexAttribPointer); got != 2 {
		t.Errorf("CountOp(VertexAttribPointer) = %d, want 2", got)
	}

	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Draw(destroyed mesh) error = %v, want ErrInvalidHandle", err)
	}
}

func TestDrawWithDestroyedHandleFails(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	if err := ctx.DestroyMesh(mesh); err != nil {
		t.Fatalf("DestroyMesh() error = %v", err)
	}

	dev.Reset()
	err := ctx.Draw(screen, prog, mesh, nil, RenderState{})
	if !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Draw() error = %v, want ErrInvalidHandle", err)
	}
	if n := len(dev.Calls()); n != 0 {
		t.Errorf("failed draw recorded %d calls, want 0", n)
	}

	if err := ctx.DestroyMesh(mesh); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("double destroy error = %v, want ErrInvalidHandle", err)
	}
}

func TestDestroyScreenFails(t *testing.T) {
	ctx, screen, _ := newTestContext(t)
	if err := ctx.Destroy(screen.handle()); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Destroy(screen) error = %v, want ErrInvalidHandle", err)
	}
}

func TestDestroyBoundProgramForcesRebind(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if err := ctx.DestroyProgram(prog); err != nil {
		t.Fatalf("DestroyProgram() error = %v", err)
	}

	// Recreated program receives the recycled device id.
	prog2 := newSpriteProgram(t, ctx)
	dev.Reset()
	if err := ctx.Draw(screen, prog2, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw(prog2) error = %v", err)
	}
	if got := dev.CountOp(recording.OpUseProgram); got != 1 {
		t.Errorf("CountOp(UseProgram) = %d, want 1", got)
	}
}

func TestDrawInstanced(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog, err := ctx.NewProgram(particleVertexSrc, particleFragmentSrc)
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}

	// Three shared vertices followed by per-instance offsets, in one
	// buffer. VertexCount pins the derived count.
	mesh, err := ctx.NewMesh(MeshSpec{
		Vertices: []float32{
			-1, -1, 1, -1, 0, 1,
			0.5, 0.5, -0.5, -0.5,
		},
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 8, Offset: 0},
			{Location: 2, Size: 2, Type: AttribFloat, Stride: 8, Offset: 24, Divisor: 1},
		},
		Topology:    Triangles,
		VertexCount: 3,
	})
	if err != nil {
		t.Fatalf("NewMesh() error = %v", err)
	}

	dev.Reset()
	if err := ctx.DrawInstanced(screen, prog, mesh, nil, RenderState{}, 2); err != nil {
		t.Fatalf("DrawInstanced() error = %v", err)
	}

	foundDivisor := false
	for _, call := range dev.Calls() {
		if d, ok := call.(recording.VertexAttribDivisor); ok {
			if d.Location != 2 || d.Divisor != 1 {
				t.Errorf("VertexAttribDivisor = %+v, want location 2 divisor 1", d)
			}
			foundDivisor = true
		}
		if d, ok := call.(recording.DrawArraysInstanced); ok {
			if d.Count != 3 || d.Instances != 2 {
				t.Errorf("DrawArraysInstanced = %+v, want count 3 instances 2", d)
			}
		}
	}
	if !foundDivisor {
		t.Error("instanced draw did not configure the attribute divisor")
	}
	if got := dev.CountOp(recording.OpDrawArraysInstanced); got != 1 {
		t.Errorf("CountOp(DrawArraysInstanced) = %d, want 1", got)
	}

	// The divisor is sticky attribute state; a second draw skips it.
	dev.Reset()
	if err := ctx.DrawInstanced(screen, prog, mesh, nil, RenderState{}, 5); err != nil {
		t.Fatalf("second DrawInstanced() error = %v", err)
	}
	if got := dev.CountOp(recording.OpVertexAttribDivisor); got != 0 {
		t.Errorf("CountOp(VertexAttribDivisor) = %d, want 0", got)
	}
}

func TestDrawInstancedRequiresInstanceAttribs(t *testing.T) {
	ctx, screen, _ := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	err := ctx.DrawInstanced(screen, prog, mesh, spriteUniforms(nil), RenderState{}, 4)
	if !errors.Is(err, ErrAttributeMismatch) {
		t.Errorf("DrawInstanced() error = %v, want ErrAttributeMismatch", err)
	}

	if err := ctx.DrawInstanced(screen, prog, mesh, spriteUniforms(nil), RenderState{}, 0); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("DrawInstanced(0) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestDrawDeviceFailureKeepsCacheHonest(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	boom := errors.New("context lost")
	dev.FailNext(recording.OpUseProgram, boom)

	err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{})
	if err == nil {
		t.Fatal("Draw() succeeded despite device failure")
	}
	var ce *ContextError
	if !errors.As(err, &ce) {
		t.Fatalf("Draw() error = %T, want *ContextError", err)
	}
	if ce.Call != "UseProgram" {
		t.Errorf("ContextError.Call = %q, want %q", ce.Call, "UseProgram")
	}
	if !errors.Is(err, boom) {
		t.Error("ContextError does not unwrap to the device error")
	}

	// The failed bind must not be cached: retrying emits it again.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("retry Draw() error = %v", err)
	}
	if got := dev.CountOp(recording.OpUseProgram); got != 1 {
		t.Errorf("CountOp(UseProgram) after failure = %d, want 1", got)
	}
}

func TestRenderStateTransitions(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	// Zero render state matches the fresh-context defaults: no scalar
	// calls at all.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	for _, op := range []recording.Op{
		recording.OpEnable, recording.OpDisable,
		recording.OpBlendFunc, recording.OpCullFace, recording.OpFrontFace,
	} {
		if got := dev.CountOp(op); got != 0 {
			t.Errorf("default state emitted %v %d times, want 0", op, got)
		}
	}

	// Switching to Draw3D enables depth test and culling once.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), Draw3D); err != nil {
		t.Fatalf("Draw(Draw3D) error = %v", err)
	}
	if got := dev.CountOp(recording.OpEnable); got != 2 {
		t.Errorf("CountOp(Enable) = %d, want 2", got)
	}

	// Staying in Draw3D emits nothing new.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), Draw3D); err != nil {
		t.Fatalf("Draw(Draw3D) again error = %v", err)
	}
	for _, op := range []recording.Op{recording.OpEnable, recording.OpDisable} {
		if got := dev.CountOp(op); got != 0 {
			t.Errorf("repeated state emitted %v %d times, want 0", op, got)
		}
	}

	// Back to the zero state disables both.
	dev.Reset()
	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw(zero) error = %v", err)
	}
	if got := dev.CountOp(recording.OpDisable); got != 2 {
		t.Errorf("CountOp(Disable) = %d, want 2", got)
	}
}

func TestClear(t *testing.T) {
	ctx, screen, dev := newTestContext(t)

	if err := ctx.Clear(screen); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Clear() with no ops error = %v, want ErrInvalidDescriptor", err)
	}

	dev.Reset()
	if err := ctx.Clear(screen, ClearColor(0, 0, 0, 1), ClearDepth()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := dev.CountOp(recording.OpClearColor); got != 1 {
		t.Errorf("CountOp(ClearColor) = %d, want 1", got)
	}
	for _, call := range dev.Calls() {
		if c, ok := call.(recording.Clear); ok {
			want := backend.ClearColorBit | backend.ClearDepthBit
			if c.Mask != want {
				t.Errorf("Clear mask = %v, want %v", c.Mask, want)
			}
		}
	}

	// Same clear color again: only the Clear call is emitted.
	dev.Reset()
	if err := ctx.Clear(screen, ClearColor(0, 0, 0, 1)); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
	got := dev.Ops()
	if len(got) != 1 || got[0] != recording.OpClear {
		t.Errorf("second clear ops = %v, want [Clear]", got)
	}
}

func TestBlitResolvesToScreen(t *testing.T) {
	ctx, screen, dev := newTestContext(t)

	fb, _, err := ctx.NewRenderbufferFramebuffer(320, 240, FormatRGBA8, 4)
	if err != nil {
		t.Fatalf("NewRenderbufferFramebuffer() error = %v", err)
	}

	dev.Reset()
	if err := ctx.Blit(fb, screen); err != nil {
		t.Fatalf("Blit() error = %v", err)
	}

	sawRead := false
	for _, call := range dev.Calls() {
		if b, ok := call.(recording.BindFramebuffer); ok && b.Slot == backend.ReadFramebuffer {
			sawRead = true
		}
		if b, ok := call.(recording.BlitFramebuffer); ok {
			// A multisampled source resolves only over identical
			// rectangles, so the blit covers the source size.
			if b.Width != 320 || b.Height != 240 {
				t.Errorf("BlitFramebuffer = %+v, want the 320x240 source rect", b)
			}
		}
	}
	if !sawRead {
		t.Error("blit did not bind the source to the read framebuffer slot")
	}
	if got := dev.CountOp(recording.OpBlitFramebuffer); got != 1 {
		t.Errorf("CountOp(BlitFramebuffer) = %d, want 1", got)
	}
}

func TestScreenSetSizeReappliesViewport(t *testing.T) {
	ctx, screen, dev := newTestContext(t)
	prog := newSpriteProgram(t, ctx)
	mesh := newQuadMesh(t, ctx)

	if err := ctx.Draw(screen, prog, mesh, spriteUniforms(nil), RenderState{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	// Screen is the bound draw target: resize reapplies immediately.
	dev.Reset()
	if err := screen.SetSize(800, 600); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	if got := dev.CountOp(recording.OpViewport); got != 1 {
		t.Errorf("CountOp(Viewport) = %d, want 1", got)
	}
	for _, call := range dev.Calls() {
		if v, ok := call.(recording.Viewport); ok {
			if v.Width != 800 || v.Height != 600 {
				t.Errorf("Viewport = %+v, want 800x600", v)
			}
		}
	}

	w, h := screen.Size()
	if w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d, want 800x600", w, h)
	}
}

func TestIsValid(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	mesh := newQuadMesh(t, ctx)

	if !ctx.IsValid(mesh.VertexBuffer()) {
		t.Error("IsValid(live handle) = false, want true")
	}
	if ctx.IsValid(Handle{}) {
		t.Error("IsValid(zero handle) = true, want false")
	}
	if err := ctx.DestroyMesh(mesh); err != nil {
		t.Fatalf("DestroyMesh() error = %v", err)
	}
	if ctx.IsValid(mesh.VertexBuffer()) {
		t.Error("IsValid(destroyed handle) = true, want false")
	}
}

func BenchmarkDrawCached(b *testing.B) {
	dev := recording.New()
	dev.Define(spriteVertexSrc, recording.ProgramStub{
		Attribs: []backend.ActiveAttrib{
			{Name: "position", Location: 0, Size: 2},
			{Name: "uv", Location: 1, Size: 2},
		},
		Uniforms: []backend.ActiveUniform{
			{Name: "transform", Location: 3, Type: backend.UniformMat4},
		},
	})
	ctx, screen, err := New(dev, 640, 480)
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	prog, err := ctx.NewProgram(spriteVertexSrc, spriteFragmentSrc)
	if err != nil {
		b.Fatalf("NewProgram() error = %v", err)
	}
	mesh, err := ctx.NewMesh(MeshSpec{
		Vertices: []float32{
			-1, -1, 0, 0,
			1, -1, 1, 0,
			1, 1, 1, 1,
			-1, 1, 0, 1,
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Layout: []VertexAttrib{
			{Location: 0, Size: 2, Type: AttribFloat, Stride: 16, Offset: 0},
			{Location: 1, Size: 2, Type: AttribFloat, Stride: 16, Offset: 8},
		},
		Topology: Triangles,
	})
	if err != nil {
		b.Fatalf("NewMesh() error = %v", err)
	}
	uniforms := Uniforms{{Name: "transform", Value: Mat4(mgl32.Ident4())}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ctx.Draw(screen, prog, mesh, uniforms, RenderState{}); err != nil {
			b.Fatal(err)
		}
		dev.Reset()
	}
}
