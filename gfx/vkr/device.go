// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"
)

// Device is a logical device together with the queues it was created with.
type Device struct {
	driver  Driver
	adapter vk.PhysicalDevice
	device  vk.Device

	families      QueueFamilies
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

// NewDevice creates the logical device for adapter. families must be complete.
// Layers are only set in debug builds; modern loaders ignore them.
func NewDevice(drv Driver, adapter vk.PhysicalDevice, families QueueFamilies, extensions, layers []string) (*Device, error) {
	queueInfos := queueRequests(families)
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	device, err := drv.CreateDevice(adapter, &dci)
	if err != nil {
		return nil, err
	}

	graphics, _ := families.Graphics()
	present, _ := families.Present()
	return &Device{
		driver:        drv,
		adapter:       adapter,
		device:        device,
		families:      families,
		graphicsQueue: drv.DeviceQueue(device, graphics),
		presentQueue:  drv.DeviceQueue(device, present),
	}, nil
}

// queueRequests asks for one queue from each distinct family.
func queueRequests(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	indices := families.Indices()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(indices))
	for _, family := range indices {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}

// Handle returns the vulkan device handle.
func (d *Device) Handle() vk.Device {
	return d.device
}

// Adapter returns the physical device the device was created on.
func (d *Device) Adapter() vk.PhysicalDevice {
	return d.adapter
}

// Families returns the queue families the device was created with.
func (d *Device) Families() QueueFamilies {
	return d.families
}

// GraphicsQueue returns queue 0 of the graphics family.
func (d *Device) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

// PresentQueue returns queue 0 of the present family.
func (d *Device) PresentQueue() vk.Queue {
	return d.presentQueue
}

// WaitIdle blocks until the device has no pending work.
func (d *Device) WaitIdle() error {
	if d == nil || d.device == nil {
		return nil
	}
	return d.driver.DeviceWaitIdle(d.device)
}

// Release destroys the logical device. Everything created from it must be
// gone by then.
func (d *Device) Release() {
	if d == nil || d.device == nil {
		return
	}
	d.driver.DestroyDevice(d.device)
	d.device = nil
	d.graphicsQueue = nil
	d.presentQueue = nil
}
