package glstate

import (
	"errors"
	"testing"
)

func TestRegistryHandlesAreNeverReused(t *testing.T) {
	r := newRegistry()

	h1 := r.create(KindBuffer, 1)
	id, err := r.destroy(h1)
	if err != nil {
		t.Fatalf("destroy() error = %v", err)
	}
	if id != 1 {
		t.Errorf("destroy() returned id %d, want 1", id)
	}

	// Same underlying id, new handle: must not compare equal to the old.
	h2 := r.create(KindBuffer, 1)
	if h1 == h2 {
		t.Error("handle was reused after destroy")
	}
	if r.isValid(h1) {
		t.Error("destroyed handle still valid")
	}
	if !r.isValid(h2) {
		t.Error("fresh handle not valid")
	}
}

func TestRegistryResolvesUnderlying(t *testing.T) {
	r := newRegistry()
	h := r.create(KindTexture, 42)

	id, err := r.underlying(h)
	if err != nil {
		t.Fatalf("underlying() error = %v", err)
	}
	if id != 42 {
		t.Errorf("underlying() = %d, want 42", id)
	}

	if _, err := r.underlying(Handle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("underlying(zero) error = %v, want ErrInvalidHandle", err)
	}
	if _, err := r.destroy(Handle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("destroy(zero) error = %v, want ErrInvalidHandle", err)
	}
}

func TestHandleString(t *testing.T) {
	r := newRegistry()
	h := r.create(KindTexture, 9)
	if got := h.String(); got != "texture#1" {
		t.Errorf("String() = %q, want %q", got, "texture#1")
	}
	if got := (Handle{}).String(); got != "none" {
		t.Errorf("zero String() = %q, want %q", got, "none")
	}
	if !(Handle{}).IsZero() {
		t.Error("zero handle IsZero() = false")
	}
	if h.Kind() != KindTexture {
		t.Errorf("Kind() = %v, want KindTexture", h.Kind())
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindProgram, "program"},
		{KindBuffer, "buffer"},
		{KindTexture, "texture"},
		{KindRenderbuffer, "renderbuffer"},
		{KindFramebuffer, "framebuffer"},
		{Kind(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
