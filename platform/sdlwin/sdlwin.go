// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdlwin provides an SDL2 window the vulkan renderer can present to.
package sdlwin

import (
	"errors"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

// Init initialises the SDL video subsystem and loads the vulkan library.
// The returned function undoes both.
func Init() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, err
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, err
	}
	return func() {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
	}, nil
}

// New creates a resizable vulkan capable window.
func New(title string, width, height uint32) (*Window, error) {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, err
	}
	return &Window{window: window}, nil
}

// Window is an SDL2 window.
type Window struct {
	window *sdl.Window
}

// CreateSurface creates a vulkan surface for the window.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, errors.New("sdl.VulkanCreateSurface(): " + err.Error())
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}

// RequiredInstanceExtensions lists the instance extensions SDL needs.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.window.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

// ProcAddr returns the loader entry point of the library SDL loaded.
func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// PollEvents drains pending events. It reports whether the window was
// asked to close and whether its size changed.
func (w *Window) PollEvents() (quit, resized bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if e.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
			}
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED || e.Event == sdl.WINDOWEVENT_RESIZED {
				resized = true
			}
		}
	}
	return quit, resized
}

// Release destroys the window.
func (w *Window) Release() {
	w.window.Destroy()
}
