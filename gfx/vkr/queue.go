// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"
)

// QueueFamilies holds the queue family indices the renderer submits to.
type QueueFamilies struct {
	graphics, present       uint32
	hasGraphics, hasPresent bool
}

// NewQueueFamilies returns a complete set with the given indices.
func NewQueueFamilies(graphics, present uint32) QueueFamilies {
	return QueueFamilies{
		graphics:    graphics,
		present:     present,
		hasGraphics: true,
		hasPresent:  true,
	}
}

// Graphics returns the graphics family index, if one was found.
func (q QueueFamilies) Graphics() (uint32, bool) {
	return q.graphics, q.hasGraphics
}

// Present returns the present family index, if one was found.
func (q QueueFamilies) Present() (uint32, bool) {
	return q.present, q.hasPresent
}

// Complete is true when both families are known.
func (q QueueFamilies) Complete() bool {
	return q.hasGraphics && q.hasPresent
}

// Shared is true when graphics and present are different families,
// so swapchain images are accessed from both.
func (q QueueFamilies) Shared() bool {
	return q.Complete() && q.graphics != q.present
}

// Indices returns the distinct family indices, graphics first.
func (q QueueFamilies) Indices() []uint32 {
	var indices []uint32
	if q.hasGraphics {
		indices = append(indices, q.graphics)
	}
	if q.hasPresent && (!q.hasGraphics || q.present != q.graphics) {
		indices = append(indices, q.present)
	}
	return indices
}

// ResolveQueueFamilies picks the first family able to do graphics and the first
// family able to present. Both roles are checked on every index and may land on
// the same one. It stops as soon as both are found.
func ResolveQueueFamilies(families []vk.QueueFlags, presentable func(family uint32) bool) QueueFamilies {
	var q QueueFamilies
	for idx, flags := range families {
		family := uint32(idx)
		if !q.hasGraphics && flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			q.graphics, q.hasGraphics = family, true
		}
		if !q.hasPresent && presentable(family) {
			q.present, q.hasPresent = family, true
		}
		if q.Complete() {
			break
		}
	}
	return q
}
