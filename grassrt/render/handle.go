package render

import (
	"errors"
)

var ErrUnresolved = errors.New("resource not resolved")

// Handle lazily resolves a resource. The first successful result is cached;
// failures are not, so the next Get tries again.
type Handle[T any] struct {
	resolve  func() (T, error)
	value    T
	resolved bool
}

func NewHandle[T any](resolve func() (T, error)) *Handle[T] {
	return &Handle[T]{resolve: resolve}
}

// Resolved wraps an already available value.
func Resolved[T any](v T) *Handle[T] {
	return &Handle[T]{value: v, resolved: true}
}

func (h *Handle[T]) Get() (T, error) {
	if h.resolved {
		return h.value, nil
	}
	var zero T
	if h.resolve == nil {
		return zero, ErrUnresolved
	}
	v, err := h.resolve()
	if err != nil {
		return zero, err
	}
	h.value = v
	h.resolved = true
	return v, nil
}

func (h *Handle[T]) IsResolved() bool {
	return h.resolved
}

// Invalidate drops the cached value so the next Get resolves again.
func (h *Handle[T]) Invalidate() {
	if h.resolve == nil {
		return
	}
	var zero T
	h.value = zero
	h.resolved = false
}
