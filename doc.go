// Package glstate provides a stateless, type-safe layer over a stateful
// OpenGL-style graphics device.
//
// # Overview
//
// OpenGL is a hidden state machine: binds, flags and pointers set by one
// draw silently leak into the next, and redundant binds cost real driver
// time. glstate removes both problems. Every draw call carries its
// complete state (target surface, program, mesh, uniforms, render
// state), and an internal cache compares each requested binding against
// what the device already holds, emitting only the calls that actually
// change something.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/glstate"
//		"github.com/gogpu/glstate/backend"
//		_ "github.com/gogpu/glstate/backend/gl"
//	)
//
//	ctx, screen, err := glstate.New(backend.MustDefault(), 800, 600)
//	if err != nil {
//		log.Fatal(err)
//	}
//	prog, _ := ctx.NewProgram(vertexSrc, fragmentSrc)
//	mesh, _ := ctx.NewMesh(glstate.MeshSpec{ /* ... */ })
//
//	ctx.Clear(screen, glstate.ClearColor(0, 0, 0, 1))
//	ctx.Draw(screen, prog, mesh, nil, glstate.Draw2D)
//
// # Handles
//
// Resources are addressed by opaque Handle values issued by the context.
// Handles are never reused, so a stale handle fails with ErrInvalidHandle
// instead of silently aliasing a newer resource that received the same
// underlying device id. Destroying a resource also invalidates the cache
// slots that held it, so a later bind is never skipped by mistake.
//
// # Devices
//
// The context talks to the device only through backend.Device, a thin
// pass-through interface. Package backend/gl implements it over OpenGL;
// package recording implements it as an in-memory call recorder used
// throughout the tests.
//
// # Concurrency
//
// A Context and everything created from it belong to one goroutine,
// matching the thread affinity of the underlying GL context. Nothing in
// this package locks.
package glstate

// Version is the current version of the library.
const Version = "0.1.0"
