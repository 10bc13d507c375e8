// Command glstatedemo renders a spinning textured quad through the
// state-cached drawing API, on a GLFW window with an OpenGL 4.1 core
// context.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glstate"
	"github.com/gogpu/glstate/backend"
	_ "github.com/gogpu/glstate/backend/gl"
)

const vertexSrc = `#version 410 core
in vec2 position;
in vec2 uv;
uniform mat4 transform;
out vec2 fragUV;
void main() {
	fragUV = uv;
	gl_Position = transform * vec4(position, 0.0, 1.0);
}
`

const fragmentSrc = `#version 410 core
in vec2 fragUV;
uniform sampler2D tex;
out vec4 outColor;
void main() {
	outColor = texture(tex, fragUV);
}
`

func init() {
	// The GL context is bound to the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		width  = flag.Int("width", 800, "window width")
		height = flag.Int("height", 600, "window height")
	)
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw init: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(*width, *height, "glstate demo", nil, nil)
	if err != nil {
		log.Fatalf("create window: %v", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	fbw, fbh := win.GetFramebufferSize()
	ctx, screen, err := glstate.New(backend.Get("gl"), fbw, fbh)
	if err != nil {
		log.Fatalf("create context: %v", err)
	}
	defer ctx.Close()

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if err := screen.SetSize(w, h); err != nil {
			log.Printf("resize: %v", err)
		}
	})

	prog, err := ctx.NewProgram(vertexSrc, fragmentSrc)
	if err != nil {
		log.Fatalf("create program: %v", err)
	}

	// Unit quad with interleaved position and uv, two triangles.
	mesh, err := ctx.NewMesh(glstate.MeshSpec{
		Vertices: []float32{
			-0.5, -0.5, 0, 1,
			0.5, -0.5, 1, 1,
			0.5, 0.5, 1, 0,
			-0.5, 0.5, 0, 0,
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Layout: []glstate.VertexAttrib{
			{Location: 0, Size: 2, Type: glstate.AttribFloat, Stride: 16, Offset: 0},
			{Location: 1, Size: 2, Type: glstate.AttribFloat, Stride: 16, Offset: 8},
		},
		Topology: glstate.Triangles,
		Usage:    glstate.StaticDraw,
	})
	if err != nil {
		log.Fatalf("create mesh: %v", err)
	}

	tex, err := ctx.NewTexture(glstate.TextureSpec{
		Width:     checkerSize,
		Height:    checkerSize,
		Format:    glstate.FormatRGBA8,
		MinFilter: glstate.MinLinear,
		MagFilter: glstate.MagNearest,
		Wrap:      glstate.WrapClampToEdge,
		Pixels:    checkerboard(),
	})
	if err != nil {
		log.Fatalf("create texture: %v", err)
	}

	for !win.ShouldClose() {
		angle := float32(glfw.GetTime())
		transform := mgl32.HomogRotate3DZ(angle)

		if err := ctx.Clear(screen, glstate.ClearColor(0.08, 0.08, 0.12, 1)); err != nil {
			log.Fatalf("clear: %v", err)
		}
		err := ctx.Draw(screen, prog, mesh, glstate.Uniforms{
			{Name: "transform", Value: glstate.Mat4(transform)},
			{Name: "tex", Value: glstate.Sampler{Texture: tex, Unit: 0}},
		}, glstate.Draw2D)
		if err != nil {
			log.Fatalf("draw: %v", err)
		}

		win.SwapBuffers()
		glfw.PollEvents()
	}
}

const checkerSize = 64

// checkerboard builds an 8x8 two-tone RGBA checker pattern.
func checkerboard() []byte {
	pix := make([]byte, checkerSize*checkerSize*4)
	for y := 0; y < checkerSize; y++ {
		for x := 0; x < checkerSize; x++ {
			i := (y*checkerSize + x) * 4
			if (x/8+y/8)%2 == 0 {
				pix[i], pix[i+1], pix[i+2] = 0xe8, 0x7c, 0x2e
			} else {
				pix[i], pix[i+1], pix[i+2] = 0x2e, 0x86, 0xe8
			}
			pix[i+3] = 0xff
		}
	}
	return pix
}
