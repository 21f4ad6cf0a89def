// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"math"

	vk "github.com/devblok/vulkan"
)

// undefinedExtent is the current extent width of surfaces whose size is
// decided by the swapchain.
const undefinedExtent = math.MaxUint32

// FramebufferSizer reports the drawable size of a window in pixels.
type FramebufferSizer interface {
	FramebufferSize() (width, height uint32)
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB, otherwise the first format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent, unless the surface leaves it
// to the swapchain, then the framebuffer size clamped to the allowed range.
// The window is only asked for its size in the latter case.
func ChooseExtent(caps vk.SurfaceCapabilities, window FramebufferSizer) vk.Extent2D {
	if caps.CurrentExtent.Width != undefinedExtent {
		return caps.CurrentExtent
	}
	width, height := window.FramebufferSize()
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ImageCount asks for one image more than the minimum, within the maximum.
// A zero maximum means there is no limit.
func ImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func sharingMode(families QueueFamilies) (vk.SharingMode, []uint32) {
	if families.Shared() {
		return vk.SharingModeConcurrent, families.Indices()
	}
	return vk.SharingModeExclusive, nil
}

func compositeAlpha(caps vk.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	compositeAlphaFlags := []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	}
	for _, flag := range compositeAlphaFlags {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SwapchainElement is everything kept per presentable image.
// The image belongs to the swapchain and is never destroyed directly.
type SwapchainElement struct {
	Image         vk.Image
	View          vk.ImageView
	Framebuffer   vk.Framebuffer
	CommandBuffer vk.CommandBuffer
}

// Swapchain owns the presentation chain and its per image resources.
type Swapchain struct {
	driver Driver
	device vk.Device

	swapchain   vk.Swapchain
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D

	elements    []SwapchainElement
	commandPool vk.CommandPool
}

// NewSwapchain negotiates the swapchain parameters from support, creates the
// swapchain and an image view for each of its images. On failure everything
// built so far is released.
func NewSwapchain(drv Driver, device *Device, surface vk.Surface, support SurfaceSupport, window FramebufferSizer) (*Swapchain, error) {
	caps := support.Capabilities
	extent := ChooseExtent(caps, window)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, ErrZeroExtent
	}

	s := &Swapchain{
		driver:      drv,
		device:      device.Handle(),
		format:      ChooseSurfaceFormat(support.Formats),
		presentMode: ChoosePresentMode(support.PresentModes),
		extent:      extent,
	}

	mode, indices := sharingMode(device.Families())
	scci := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         ImageCount(caps),
		ImageFormat:           s.format.Format,
		ImageColorSpace:       s.format.ColorSpace,
		ImageExtent:           extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      mode,
		QueueFamilyIndexCount: uint32(len(indices)),
		PQueueFamilyIndices:   indices,
		PreTransform:          caps.CurrentTransform,
		CompositeAlpha:        compositeAlpha(caps),
		PresentMode:           s.presentMode,
		Clipped:               vk.True,
	}

	swapchain, err := drv.CreateSwapchain(s.device, &scci)
	if err != nil {
		return nil, err
	}
	s.swapchain = swapchain

	images, err := drv.SwapchainImages(s.device, s.swapchain)
	if err != nil {
		s.Release()
		return nil, err
	}

	s.elements = make([]SwapchainElement, len(images))
	for idx, image := range images {
		s.elements[idx].Image = image
		if err := s.createImageView(idx); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

func (s *Swapchain) createImageView(idx int) error {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    s.elements[idx].Image,
		ViewType: vk.ImageViewType2d,
		Format:   s.format.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	view, err := s.driver.CreateImageView(s.device, &ivci)
	if err != nil {
		return fmt.Errorf("image %d: %w", idx, err)
	}
	s.elements[idx].View = view
	return nil
}

// CreateFramebuffers creates a framebuffer per image for renderPass.
// On failure the framebuffers created so far are destroyed.
func (s *Swapchain) CreateFramebuffers(renderPass vk.RenderPass) error {
	for idx := range s.elements {
		attachments := []vk.ImageView{
			s.elements[idx].View,
		}
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           s.extent.Width,
			Height:          s.extent.Height,
			Layers:          1,
		}

		framebuffer, err := s.driver.CreateFramebuffer(s.device, &fci)
		if err != nil {
			s.DestroyFramebuffers()
			return fmt.Errorf("image %d: %w", idx, err)
		}
		s.elements[idx].Framebuffer = framebuffer
	}
	return nil
}

// AllocateCommandBuffers allocates one primary command buffer per image.
func (s *Swapchain) AllocateCommandBuffers(pool vk.CommandPool) error {
	if len(s.elements) == 0 {
		return nil
	}
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(s.elements)),
	}

	buffers, err := s.driver.AllocateCommandBuffers(s.device, &cbai)
	if err != nil {
		return err
	}
	s.commandPool = pool
	for idx := range s.elements {
		s.elements[idx].CommandBuffer = buffers[idx]
	}
	return nil
}

// FreeCommandBuffers returns the per image command buffers to their pool.
func (s *Swapchain) FreeCommandBuffers() {
	if s == nil || s.commandPool == nil {
		return
	}
	var buffers []vk.CommandBuffer
	for idx := range s.elements {
		if s.elements[idx].CommandBuffer != nil {
			buffers = append(buffers, s.elements[idx].CommandBuffer)
			s.elements[idx].CommandBuffer = nil
		}
	}
	s.driver.FreeCommandBuffers(s.device, s.commandPool, buffers)
	s.commandPool = nil
}

// DestroyFramebuffers destroys the per image framebuffers.
func (s *Swapchain) DestroyFramebuffers() {
	if s == nil {
		return
	}
	for idx := range s.elements {
		if s.elements[idx].Framebuffer != nil {
			s.driver.DestroyFramebuffer(s.device, s.elements[idx].Framebuffer)
			s.elements[idx].Framebuffer = nil
		}
	}
}

// Release tears down command buffers, framebuffers, image views and the
// swapchain itself, in that order. It is safe on a partially built swapchain
// and on one that was already released.
func (s *Swapchain) Release() {
	if s == nil {
		return
	}
	s.FreeCommandBuffers()
	s.DestroyFramebuffers()
	for idx := range s.elements {
		if s.elements[idx].View != nil {
			s.driver.DestroyImageView(s.device, s.elements[idx].View)
			s.elements[idx].View = nil
		}
	}
	s.elements = nil

	if s.swapchain != nil {
		s.driver.DestroySwapchain(s.device, s.swapchain)
		s.swapchain = nil
	}
}

// Handle returns the vulkan swapchain handle.
func (s *Swapchain) Handle() vk.Swapchain {
	return s.swapchain
}

// Format returns the negotiated surface format.
func (s *Swapchain) Format() vk.SurfaceFormat {
	return s.format
}

// PresentMode returns the negotiated present mode.
func (s *Swapchain) PresentMode() vk.PresentMode {
	return s.presentMode
}

// Extent returns the size of the swapchain images.
func (s *Swapchain) Extent() vk.Extent2D {
	return s.extent
}

// Elements returns the per image resources in swapchain image order.
func (s *Swapchain) Elements() []SwapchainElement {
	return s.elements
}
