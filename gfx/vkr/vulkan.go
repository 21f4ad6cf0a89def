// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// NewVulkanDriver returns the Driver backed by the system Vulkan loader.
func NewVulkanDriver() Driver {
	return &vulkanDriver{}
}

type vulkanDriver struct {
	// callbacks keeps debug report closures reachable while registered.
	callbacks map[vk.DebugReportCallback]DebugFunc
}

func (d *vulkanDriver) Init(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return errors.New("vk.SetDefaultGetInstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return errors.New("vk.Init(): " + err.Error())
	}
	return nil
}

func (d *vulkanDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, newError("vk.EnumerateInstanceLayerProperties", res)
	}
	props := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, props); res != vk.Success {
		return nil, newError("vk.EnumerateInstanceLayerProperties", res)
	}

	layers := make([]string, 0, count)
	for _, layer := range props {
		layer.Deref()
		layers = append(layers, vk.ToString(layer.LayerName[:]))
	}
	return layers, nil
}

func (d *vulkanDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if res := vk.CreateInstance(info, nil, &instance); res != vk.Success {
		return nil, newError("vk.CreateInstance", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.New("vk.InitInstance(): " + err.Error())
	}
	return instance, nil
}

func (d *vulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (d *vulkanDriver) CreateDebugCallback(instance vk.Instance, flags vk.DebugReportFlags, fn DebugFunc) (vk.DebugReportCallback, error) {
	info := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: flags,
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
			object uint, location uint, messageCode int32, layerPrefix string,
			message string, userData unsafe.Pointer) vk.Bool32 {
			fn(flags, layerPrefix, message)
			return vk.False
		},
	}

	var callback vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(instance, &info, nil, &callback); res != vk.Success {
		return nil, newError("vk.CreateDebugReportCallback", res)
	}
	if d.callbacks == nil {
		d.callbacks = make(map[vk.DebugReportCallback]DebugFunc)
	}
	d.callbacks[callback] = fn
	return callback, nil
}

func (d *vulkanDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
	delete(d.callbacks, callback)
}

func (d *vulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (d *vulkanDriver) EnumerateAdapters(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success {
		return nil, newError("vk.EnumeratePhysicalDevices", res)
	}
	adapters := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, adapters); res != vk.Success {
		return nil, newError("vk.EnumeratePhysicalDevices", res)
	}
	return adapters[:count], nil
}

func (d *vulkanDriver) AdapterProperties(adapter vk.PhysicalDevice) AdapterProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(adapter, &props)
	props.Deref()
	props.Limits.Deref()

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(adapter, &memoryProperties)
	memoryProperties.Deref()

	var memory uint64
	for idx := uint32(0); idx < memoryProperties.MemoryHeapCount; idx++ {
		memoryProperties.MemoryHeaps[idx].Deref()
		memory += uint64(memoryProperties.MemoryHeaps[idx].Size)
	}

	return AdapterProperties{
		Name:                vk.ToString(props.DeviceName[:]),
		VendorID:            props.VendorID,
		DeviceID:            props.DeviceID,
		DriverVersion:       props.DriverVersion,
		Type:                props.DeviceType,
		MaxImageDimension2D: props.Limits.MaxImageDimension2D,
		Memory:              memory,
	}
}

func (d *vulkanDriver) DeviceExtensions(adapter vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(adapter, "", &count, nil); res != vk.Success {
		return nil, newError("vk.EnumerateDeviceExtensionProperties", res)
	}
	props := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(adapter, "", &count, props); res != vk.Success {
		return nil, newError("vk.EnumerateDeviceExtensionProperties", res)
	}

	extensions := make([]string, 0, count)
	for _, ext := range props[:count] {
		ext.Deref()
		extensions = append(extensions, vk.ToString(ext.ExtensionName[:]))
	}
	return extensions, nil
}

func (d *vulkanDriver) QueueFamilies(adapter vk.PhysicalDevice) []vk.QueueFlags {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(adapter, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(adapter, &count, props)

	flags := make([]vk.QueueFlags, 0, count)
	for _, family := range props[:count] {
		family.Deref()
		flags = append(flags, family.QueueFlags)
	}
	return flags
}

func (d *vulkanDriver) PresentSupport(adapter vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if res := vk.GetPhysicalDeviceSurfaceSupport(adapter, family, surface, &supported); res != vk.Success {
		return false, newError("vk.GetPhysicalDeviceSurfaceSupport", res)
	}
	return supported.B(), nil
}

func (d *vulkanDriver) SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(adapter, surface, &caps); res != vk.Success {
		return caps, newError("vk.GetPhysicalDeviceSurfaceCapabilities", res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (d *vulkanDriver) SurfaceFormats(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(adapter, surface, &count, nil); res != vk.Success {
		return nil, newError("vk.GetPhysicalDeviceSurfaceFormats", res)
	}
	formats := make([]vk.SurfaceFormat, count)
	if res := vk.GetPhysicalDeviceSurfaceFormats(adapter, surface, &count, formats); res != vk.Success {
		return nil, newError("vk.GetPhysicalDeviceSurfaceFormats", res)
	}
	for idx := range formats {
		formats[idx].Deref()
	}
	return formats[:count], nil
}

func (d *vulkanDriver) PresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(adapter, surface, &count, nil); res != vk.Success {
		return nil, newError("vk.GetPhysicalDeviceSurfacePresentModes", res)
	}
	modes := make([]vk.PresentMode, count)
	if res := vk.GetPhysicalDeviceSurfacePresentModes(adapter, surface, &count, modes); res != vk.Success {
		return nil, newError("vk.GetPhysicalDeviceSurfacePresentModes", res)
	}
	return modes[:count], nil
}

func (d *vulkanDriver) CreateDevice(adapter vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	var device vk.Device
	if res := vk.CreateDevice(adapter, info, nil, &device); res != vk.Success {
		return nil, newError("vk.CreateDevice", res)
	}
	return device, nil
}

func (d *vulkanDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return queue
}

func (d *vulkanDriver) DeviceWaitIdle(device vk.Device) error {
	if res := vk.DeviceWaitIdle(device); res != vk.Success {
		return newError("vk.DeviceWaitIdle", res)
	}
	return nil
}

func (d *vulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (d *vulkanDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(device, info, nil, &swapchain); res != vk.Success {
		return nil, newError("vk.CreateSwapchain", res)
	}
	return swapchain, nil
}

func (d *vulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if res := vk.GetSwapchainImages(device, swapchain, &count, nil); res != vk.Success {
		return nil, newError("vk.GetSwapchainImages", res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(device, swapchain, &count, images); res != vk.Success {
		return nil, newError("vk.GetSwapchainImages", res)
	}
	return images[:count], nil
}

func (d *vulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (d *vulkanDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if res := vk.CreateImageView(device, info, nil, &view); res != vk.Success {
		return nil, newError("vk.CreateImageView", res)
	}
	return view, nil
}

func (d *vulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (d *vulkanDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(device, info, nil, &framebuffer); res != vk.Success {
		return nil, newError("vk.CreateFramebuffer", res)
	}
	return framebuffer, nil
}

func (d *vulkanDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (d *vulkanDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(device, info, nil, &renderPass); res != vk.Success {
		return nil, newError("vk.CreateRenderPass", res)
	}
	return renderPass, nil
}

func (d *vulkanDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (d *vulkanDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(device, info, nil, &module); res != vk.Success {
		return nil, newError("vk.CreateShaderModule", res)
	}
	return module, nil
}

func (d *vulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (d *vulkanDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(device, info, nil, &layout); res != vk.Success {
		return nil, newError("vk.CreatePipelineLayout", res)
	}
	return layout, nil
}

func (d *vulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (d *vulkanDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	var cache vk.PipelineCache
	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(device, cache, 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines); res != vk.Success {
		return nil, newError("vk.CreateGraphicsPipelines", res)
	}
	return pipelines[0], nil
}

func (d *vulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (d *vulkanDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device, info, nil, &pool); res != vk.Success {
		return nil, newError("vk.CreateCommandPool", res)
	}
	return pool, nil
}

func (d *vulkanDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (d *vulkanDriver) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	if res := vk.AllocateCommandBuffers(device, info, buffers); res != vk.Success {
		return nil, newError("vk.AllocateCommandBuffers", res)
	}
	return buffers, nil
}

func (d *vulkanDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}
