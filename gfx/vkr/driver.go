// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// AdapterProperties is what the renderer needs to know about an adapter.
type AdapterProperties struct {
	Name          string
	VendorID      uint32
	DeviceID      uint32
	DriverVersion uint32
	Type          vk.PhysicalDeviceType

	// MaxImageDimension2D is the largest supported 2D image side.
	MaxImageDimension2D uint32

	// Memory is the total size of all memory heaps.
	Memory uint64
}

// Discrete reports whether the adapter is a discrete GPU.
func (p AdapterProperties) Discrete() bool {
	return p.Type == vk.PhysicalDeviceTypeDiscreteGpu
}

// DebugFunc receives validation layer reports.
type DebugFunc func(flags vk.DebugReportFlags, layerPrefix, message string)

// Driver is the subset of the native Vulkan API the bootstrap drives.
// Every call is blocking. Create calls return a *Error on failure.
type Driver interface {
	// Init loads the API entry points. procAddr may be nil to use the
	// platform loader.
	Init(procAddr unsafe.Pointer) error

	InstanceLayers() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)

	CreateDebugCallback(instance vk.Instance, flags vk.DebugReportFlags, fn DebugFunc) (vk.DebugReportCallback, error)
	DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback)

	DestroySurface(instance vk.Instance, surface vk.Surface)

	EnumerateAdapters(instance vk.Instance) ([]vk.PhysicalDevice, error)
	AdapterProperties(adapter vk.PhysicalDevice) AdapterProperties
	DeviceExtensions(adapter vk.PhysicalDevice) ([]string, error)
	QueueFamilies(adapter vk.PhysicalDevice) []vk.QueueFlags
	PresentSupport(adapter vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error)
	SurfaceFormats(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	PresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)

	CreateDevice(adapter vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error)
	DeviceQueue(device vk.Device, family uint32) vk.Queue
	DeviceWaitIdle(device vk.Device) error
	DestroyDevice(device vk.Device)

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)

	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)

	CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)

	CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(device vk.Device, renderPass vk.RenderPass)

	CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)

	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)

	CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)

	CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)

	AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
}
