package glstate

import "fmt"

// registry is the sole owner of resource liveness. It maps each live
// Handle to the numeric id the device issued for it. Handle values are
// minted from a monotonic counter and never reused.
type registry struct {
	next uint32
	live map[Handle]uint32
}

func newRegistry() *registry {
	return &registry{live: make(map[Handle]uint32)}
}

// create issues a new Handle for a device resource.
func (r *registry) create(kind Kind, underlying uint32) Handle {
	r.next++
	h := Handle{kind: kind, id: r.next}
	r.live[h] = underlying
	return h
}

// underlying resolves a Handle to its device id.
func (r *registry) underlying(h Handle) (uint32, error) {
	id, ok := r.live[h]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	return id, nil
}

// destroy removes a Handle and returns the device id to delete.
// Destroying an already-destroyed or unknown handle is an error, not a
// crash.
func (r *registry) destroy(h Handle) (uint32, error) {
	id, ok := r.live[h]
	if !ok {
		return 0, fmt.Errorf("%w: destroy of %s", ErrInvalidHandle, h)
	}
	delete(r.live, h)
	return id, nil
}

// isValid reports whether the handle refers to a live resource.
func (r *registry) isValid(h Handle) bool {
	_, ok := r.live[h]
	return ok
}
