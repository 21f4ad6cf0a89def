// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"
)

// AdapterInfo describes an adapter for diagnostics.
type AdapterInfo struct {
	Name                string            `json:"name"`
	ID                  uint32            `json:"id"`
	VendorID            uint32            `json:"vendorId"`
	DriverVersion       uint32            `json:"driverVersion"`
	Discrete            bool              `json:"discrete"`
	MaxImageDimension2D uint32            `json:"maxImageDimension2D"`
	Memory              uint64            `json:"memory"`
	Extensions          []string          `json:"extensions"`
	QueueFamilies       []QueueFamilyInfo `json:"queueFamilies"`

	// Invalid is set when the adapter could not be fully queried.
	Invalid bool `json:"invalid,omitempty"`
}

// QueueFamilyInfo lists the capabilities of a queue family.
type QueueFamilyInfo struct {
	Index         uint32 `json:"index"`
	Graphics      bool   `json:"graphics"`
	Compute       bool   `json:"compute"`
	Transfer      bool   `json:"transfer"`
	SparseBinding bool   `json:"sparseBinding"`
}

// Inventory describes every adapter the instance can see.
func Inventory(drv Driver, instance vk.Instance) ([]AdapterInfo, error) {
	adapters, err := drv.EnumerateAdapters(instance)
	if err != nil {
		return nil, err
	}

	infos := make([]AdapterInfo, len(adapters))
	for i, adapter := range adapters {
		props := drv.AdapterProperties(adapter)
		infos[i] = AdapterInfo{
			Name:                props.Name,
			ID:                  props.DeviceID,
			VendorID:            props.VendorID,
			DriverVersion:       props.DriverVersion,
			Discrete:            props.Discrete(),
			MaxImageDimension2D: props.MaxImageDimension2D,
			Memory:              props.Memory,
		}

		if exts, err := drv.DeviceExtensions(adapter); err != nil {
			infos[i].Invalid = true
		} else {
			infos[i].Extensions = exts
		}

		for idx, flags := range drv.QueueFamilies(adapter) {
			infos[i].QueueFamilies = append(infos[i].QueueFamilies, QueueFamilyInfo{
				Index:         uint32(idx),
				Graphics:      flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
				Compute:       flags&vk.QueueFlags(vk.QueueComputeBit) != 0,
				Transfer:      flags&vk.QueueFlags(vk.QueueTransferBit) != 0,
				SparseBinding: flags&vk.QueueFlags(vk.QueueSparseBindingBit) != 0,
			})
		}
	}
	return infos, nil
}

// HeadlessInstance loads the API and creates an instance without any
// extensions, enough to enumerate adapters.
func HeadlessInstance(drv Driver, name string) (vk.Instance, error) {
	if err := drv.Init(nil); err != nil {
		return nil, err
	}
	return drv.CreateInstance(&vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: applicationInfo(name),
	})
}
