// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package glfwwin provides a GLFW window the vulkan renderer can present to.
package glfwwin

import (
	"errors"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrVulkanUnsupported is returned when GLFW finds no vulkan loader.
var ErrVulkanUnsupported = errors.New("glfwwin: vulkan is not supported")

// Init initialises GLFW. The returned function terminates it.
func Init() (func(), error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, ErrVulkanUnsupported
	}
	return glfw.Terminate, nil
}

// New creates a resizable window without a client API.
func New(title string, width, height uint32) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		return nil, err
	}

	w := &Window{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
	})
	return w, nil
}

// Window is a GLFW window.
type Window struct {
	window  *glfw.Window
	resized bool
}

// CreateSurface creates a vulkan surface for the window.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return nil, errors.New("glfw.CreateWindowSurface(): " + err.Error())
	}
	return vk.SurfaceFromPointer(surface), nil
}

// RequiredInstanceExtensions lists the instance extensions GLFW needs.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// FramebufferSize returns the framebuffer size in pixels.
func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.window.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// ProcAddr returns the loader entry point GLFW found.
func (w *Window) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// PollEvents processes pending events. It reports whether the window was
// asked to close and whether its framebuffer size changed.
func (w *Window) PollEvents() (quit, resized bool) {
	glfw.PollEvents()
	resized, w.resized = w.resized, false
	return w.window.ShouldClose(), resized
}

// Release destroys the window.
func (w *Window) Release() {
	w.window.Destroy()
}
