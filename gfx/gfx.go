// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers must implement.
package gfx

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedBackend is returned for backends that are not built in.
var ErrUnsupportedBackend = errors.New("gfx: backend not supported")

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Kind identifies a rendering backend.
type Kind int

// Known backends
const (
	OpenGL Kind = iota
	Vulkan
)

func (k Kind) String() string {
	switch k {
	case OpenGL:
		return "opengl"
	case Vulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the backend named by s.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "opengl", "gl":
		return OpenGL, nil
	case "vulkan", "vk":
		return Vulkan, nil
	}
	return 0, fmt.Errorf("gfx: unknown backend %q", s)
}

// Backend is the capability set every backend provides.
type Backend interface {
	Releasable

	// Kind reports which backend this is.
	Kind() Kind

	// Initialise brings the backend to a ready-to-render state.
	// A failed Initialise must still be followed by Release.
	Initialise() error

	// Resize rebuilds size dependent state for the new drawable size.
	Resize(width, height uint32) error
}

// Factory creates a backend that has not been initialised yet.
type Factory func() (Backend, error)

// Open picks the factory registered for kind and creates the backend.
func Open(kind Kind, factories map[Kind]Factory) (Backend, error) {
	factory, ok := factories[kind]
	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, kind)
	}
	return factory()
}
