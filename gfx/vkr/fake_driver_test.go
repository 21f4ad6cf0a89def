// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"strings"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// minted keeps every handle's backing word on the heap and reachable,
// so no two handles ever share an address.
var minted []*uint64

// mint returns a unique non-nil handle of any vulkan handle type.
func mint[T any]() T {
	word := new(uint64)
	minted = append(minted, word)
	p := unsafe.Pointer(word)
	return *(*T)(unsafe.Pointer(&p))
}

var errFake = errors.New("fake failure")

type fakeAdapter struct {
	props      AdapterProperties
	extensions []string
	families   []vk.QueueFlags
	present    map[uint32]bool
	support    SurfaceSupport
}

// goodAdapter is an adapter that passes every requirement.
func goodAdapter(name string, kind vk.PhysicalDeviceType, maxDim uint32) *fakeAdapter {
	return &fakeAdapter{
		props: AdapterProperties{
			Name:                name,
			Type:                kind,
			MaxImageDimension2D: maxDim,
		},
		extensions: []string{"VK_KHR_swapchain"},
		families:   []vk.QueueFlags{vk.QueueFlags(vk.QueueGraphicsBit)},
		present:    map[uint32]bool{0: true},
		support:    fakeSupport(),
	}
}

func fakeSupport() SurfaceSupport {
	return SurfaceSupport{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  3,
			CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}
}

// fakeDriver records every create and destroy call and fails the
// operations listed in fail. An operation listed in failAfter succeeds
// that many times before failing with errFake.
type fakeDriver struct {
	adapters  []vk.PhysicalDevice
	byHandle  map[vk.PhysicalDevice]*fakeAdapter
	layers    []string
	images    int
	fail      map[string]error
	failAfter map[string]int

	calls         []string
	instanceInfo  *vk.InstanceCreateInfo
	deviceInfo    *vk.DeviceCreateInfo
	swapchainInfo *vk.SwapchainCreateInfo
	debugFunc     DebugFunc
	debugFlags    vk.DebugReportFlags
}

func newFakeDriver(adapters ...*fakeAdapter) *fakeDriver {
	d := &fakeDriver{
		byHandle:  make(map[vk.PhysicalDevice]*fakeAdapter),
		layers:    []string{"VK_LAYER_KHRONOS_validation"},
		images:    3,
		fail:      make(map[string]error),
		failAfter: make(map[string]int),
	}
	for _, a := range adapters {
		handle := mint[vk.PhysicalDevice]()
		d.adapters = append(d.adapters, handle)
		d.byHandle[handle] = a
	}
	return d
}

func (d *fakeDriver) call(name string) error {
	d.calls = append(d.calls, name)
	if n, ok := d.failAfter[name]; ok && d.count(name) > n {
		return errFake
	}
	return d.fail[name]
}

// destroys returns the recorded teardown calls in order.
func (d *fakeDriver) destroys() []string {
	var out []string
	for _, c := range d.calls {
		if strings.HasPrefix(c, "Destroy") || strings.HasPrefix(c, "Free") {
			out = append(out, c)
		}
	}
	return out
}

func (d *fakeDriver) count(name string) int {
	var n int
	for _, c := range d.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (d *fakeDriver) Init(procAddr unsafe.Pointer) error {
	return d.call("Init")
}

func (d *fakeDriver) InstanceLayers() ([]string, error) {
	return d.layers, d.fail["InstanceLayers"]
}

func (d *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	d.instanceInfo = info
	if err := d.call("CreateInstance"); err != nil {
		return nil, err
	}
	return mint[vk.Instance](), nil
}

func (d *fakeDriver) DestroyInstance(instance vk.Instance) {
	d.call("DestroyInstance")
}

func (d *fakeDriver) CreateDebugCallback(instance vk.Instance, flags vk.DebugReportFlags, fn DebugFunc) (vk.DebugReportCallback, error) {
	if err := d.call("CreateDebugCallback"); err != nil {
		return nil, err
	}
	d.debugFunc = fn
	d.debugFlags = flags
	return mint[vk.DebugReportCallback](), nil
}

func (d *fakeDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	d.call("DestroyDebugCallback")
}

func (d *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	d.call("DestroySurface")
}

func (d *fakeDriver) EnumerateAdapters(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	return d.adapters, d.fail["EnumerateAdapters"]
}

func (d *fakeDriver) AdapterProperties(adapter vk.PhysicalDevice) AdapterProperties {
	return d.byHandle[adapter].props
}

func (d *fakeDriver) DeviceExtensions(adapter vk.PhysicalDevice) ([]string, error) {
	return d.byHandle[adapter].extensions, nil
}

func (d *fakeDriver) QueueFamilies(adapter vk.PhysicalDevice) []vk.QueueFlags {
	return d.byHandle[adapter].families
}

func (d *fakeDriver) PresentSupport(adapter vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	if err := d.fail["PresentSupport"]; err != nil {
		return false, err
	}
	return d.byHandle[adapter].present[family], nil
}

func (d *fakeDriver) SurfaceCapabilities(adapter vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	return d.byHandle[adapter].support.Capabilities, d.fail["SurfaceCapabilities"]
}

func (d *fakeDriver) SurfaceFormats(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	return d.byHandle[adapter].support.Formats, nil
}

func (d *fakeDriver) PresentModes(adapter vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	return d.byHandle[adapter].support.PresentModes, nil
}

func (d *fakeDriver) CreateDevice(adapter vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	d.deviceInfo = info
	if err := d.call("CreateDevice"); err != nil {
		return nil, err
	}
	return mint[vk.Device](), nil
}

func (d *fakeDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	return mint[vk.Queue]()
}

func (d *fakeDriver) DeviceWaitIdle(device vk.Device) error {
	return d.call("DeviceWaitIdle")
}

func (d *fakeDriver) DestroyDevice(device vk.Device) {
	d.call("DestroyDevice")
}

func (d *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	d.swapchainInfo = info
	if err := d.call("CreateSwapchain"); err != nil {
		return nil, err
	}
	return mint[vk.Swapchain](), nil
}

func (d *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	if err := d.call("SwapchainImages"); err != nil {
		return nil, err
	}
	images := make([]vk.Image, d.images)
	for i := range images {
		images[i] = mint[vk.Image]()
	}
	return images, nil
}

func (d *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	d.call("DestroySwapchain")
}

func (d *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	if err := d.call("CreateImageView"); err != nil {
		return nil, err
	}
	return mint[vk.ImageView](), nil
}

func (d *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	d.call("DestroyImageView")
}

func (d *fakeDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	if err := d.call("CreateFramebuffer"); err != nil {
		return nil, err
	}
	return mint[vk.Framebuffer](), nil
}

func (d *fakeDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	d.call("DestroyFramebuffer")
}

func (d *fakeDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	if err := d.call("CreateRenderPass"); err != nil {
		return nil, err
	}
	return mint[vk.RenderPass](), nil
}

func (d *fakeDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	d.call("DestroyRenderPass")
}

func (d *fakeDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	if err := d.call("CreateShaderModule"); err != nil {
		return nil, err
	}
	return mint[vk.ShaderModule](), nil
}

func (d *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	d.call("DestroyShaderModule")
}

func (d *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	if err := d.call("CreatePipelineLayout"); err != nil {
		return nil, err
	}
	return mint[vk.PipelineLayout](), nil
}

func (d *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	d.call("DestroyPipelineLayout")
}

func (d *fakeDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	if err := d.call("CreateGraphicsPipeline"); err != nil {
		return nil, err
	}
	return mint[vk.Pipeline](), nil
}

func (d *fakeDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	d.call("DestroyPipeline")
}

func (d *fakeDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	if err := d.call("CreateCommandPool"); err != nil {
		return nil, err
	}
	return mint[vk.CommandPool](), nil
}

func (d *fakeDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	d.call("DestroyCommandPool")
}

func (d *fakeDriver) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	if err := d.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		buffers[i] = mint[vk.CommandBuffer]()
	}
	return buffers, nil
}

func (d *fakeDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	d.call("FreeCommandBuffers")
}

// fakeWindow is a window of a fixed size.
type fakeWindow struct {
	width, height uint32
	extensions    []string
	surfaceErr    error
	sizeQueries   int
}

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	if w.surfaceErr != nil {
		return nil, w.surfaceErr
	}
	return mint[vk.Surface](), nil
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) {
	w.sizeQueries++
	return w.width, w.height
}

// fakeShaders serves the same valid bytecode for every name.
type fakeShaders map[string][]byte

func (s fakeShaders) Bytes(name string) ([]byte, error) {
	code, ok := s[name]
	if !ok {
		return nil, errors.New("no shader " + name)
	}
	return code, nil
}

func triangleShaders() fakeShaders {
	return fakeShaders{
		"triangle.vert.spv": {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
		"triangle.frag.spv": {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
	}
}
