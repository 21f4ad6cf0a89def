// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"
)

// SurfaceSupport is what an adapter can do with a surface.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Valid reports whether a swapchain can be built from the support details.
func (s SurfaceSupport) Valid() bool {
	caps := s.Capabilities
	if caps.MinImageCount == 0 {
		return false
	}
	if caps.MaxImageCount != 0 && caps.MaxImageCount < caps.MinImageCount {
		return false
	}
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// ProbeSurface queries capabilities, formats and present modes of the
// adapter and surface pair.
func ProbeSurface(drv Driver, adapter vk.PhysicalDevice, surface vk.Surface) (SurfaceSupport, error) {
	caps, err := drv.SurfaceCapabilities(adapter, surface)
	if err != nil {
		return SurfaceSupport{}, err
	}
	formats, err := drv.SurfaceFormats(adapter, surface)
	if err != nil {
		return SurfaceSupport{}, err
	}
	modes, err := drv.PresentModes(adapter, surface)
	if err != nil {
		return SurfaceSupport{}, err
	}
	return SurfaceSupport{
		Capabilities: caps,
		Formats:      formats,
		PresentModes: modes,
	}, nil
}
