// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/devblok/vkboot/core"
	"github.com/devblok/vkboot/gfx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotInitialised is returned when the renderer is used before Initialise.
var ErrNotInitialised = errors.New("vkr: renderer is not initialised")

// Window is what the renderer needs from the windowing system.
type Window interface {
	FramebufferSizer

	// CreateSurface creates a presentation surface for the window.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// RequiredInstanceExtensions lists the instance extensions
	// the window needs to create a surface.
	RequiredInstanceExtensions() []string
}

// ProcAddrProvider is implemented by windows that load the vulkan
// library themselves and hand out its entry point.
type ProcAddrProvider interface {
	ProcAddr() unsafe.Pointer
}

type framebufferSize struct {
	width, height uint32
}

func (f framebufferSize) FramebufferSize() (uint32, uint32) {
	return f.width, f.height
}

// Bootstrapper takes a window to a ready to render vulkan device and
// owns every object created on the way.
// It is not safe for concurrent use.
type Bootstrapper struct {
	driver  Driver
	window  Window
	shaders ShaderSource
	cfg     core.Configuration
	log     logrus.FieldLogger
	guard   *Guard

	layers        []string
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface
	adapter       Candidate
	candidates    []Candidate
	device        *Device
	swapchain     *Swapchain
	pipeline      *Pipeline
	commandPool   vk.CommandPool
}

// New creates a renderer that is not yet initialised.
func New(drv Driver, window Window, shaders ShaderSource, cfg core.Configuration, log logrus.FieldLogger) *Bootstrapper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bootstrapper{
		driver:  drv,
		window:  window,
		shaders: shaders,
		cfg:     cfg,
		log:     log,
		guard:   NewGuard(log),
	}
}

// Kind implements gfx.Backend
func (b *Bootstrapper) Kind() gfx.Kind {
	return gfx.Vulkan
}

// Initialise implements gfx.Backend. On failure the objects created so far
// stay owned by the renderer until Release.
func (b *Bootstrapper) Initialise() error {
	steps := []step{
		{"loader", b.loadLibrary},
		b.acquire("instance", b.createInstance, b.destroyInstance),
	}
	if b.cfg.Instance.DebugMode {
		steps = append(steps, b.acquire("debug callback", b.createDebugCallback, b.destroyDebugCallback))
	}
	steps = append(steps,
		b.acquire("surface", b.createSurface, b.destroySurface),
		step{"adapter", b.selectAdapter},
		b.acquire("device", b.createDevice, b.destroyDevice),
		b.acquire("swapchain", func() error { return b.createSwapchain(b.window, b.adapter.Support) }, b.destroySwapchain),
		b.acquire("pipeline", b.createPipeline, b.destroyPipeline),
		b.acquire("framebuffers", b.createFramebuffers, b.destroyFramebuffers),
		b.acquire("command pool", b.createCommandPool, b.destroyCommandPool),
		b.acquire("command buffers", b.allocateCommandBuffers, b.freeCommandBuffers),
	)
	return runSteps(steps, b.log)
}

// acquire makes a step that registers release with the guard once create
// succeeds.
func (b *Bootstrapper) acquire(name string, create func() error, release func()) step {
	return step{name, func() error {
		if err := create(); err != nil {
			return err
		}
		b.guard.Defer(name, release)
		return nil
	}}
}

// Resize implements gfx.Backend
func (b *Bootstrapper) Resize(width, height uint32) error {
	return b.Recreate(framebufferSize{width, height})
}

// Recreate rebuilds the swapchain and everything sized by it against
// the current surface capabilities. If the surface has no area, nothing
// is torn down and ErrZeroExtent is returned so the caller retries later.
func (b *Bootstrapper) Recreate(window FramebufferSizer) error {
	if b.device == nil {
		return ErrNotInitialised
	}

	support, err := ProbeSurface(b.driver, b.adapter.Adapter, b.surface)
	if err != nil {
		return errors.Wrap(err, "surface")
	}
	if !support.Valid() {
		return errors.New("surface: support is inadequate")
	}
	if extent := ChooseExtent(support.Capabilities, window); extent.Width == 0 || extent.Height == 0 {
		return ErrZeroExtent
	}

	if err := b.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "idle")
	}
	b.freeCommandBuffers()
	b.destroyFramebuffers()
	b.destroyPipeline()
	b.destroySwapchain()

	return runSteps([]step{
		{"swapchain", func() error { return b.createSwapchain(window, support) }},
		{"pipeline", b.createPipeline},
		{"framebuffers", b.createFramebuffers},
		{"command buffers", b.allocateCommandBuffers},
	}, b.log)
}

// Release implements gfx.Releasable. It waits for the device to finish
// and destroys everything in reverse order of creation.
func (b *Bootstrapper) Release() {
	if err := b.device.WaitIdle(); err != nil {
		b.log.WithError(err).Error("Device did not become idle")
	}
	b.guard.Release()
}

// Destroy is an alias of Release.
func (b *Bootstrapper) Destroy() {
	b.Release()
}

func (b *Bootstrapper) loadLibrary() error {
	var procAddr unsafe.Pointer
	if p, ok := b.window.(ProcAddrProvider); ok {
		procAddr = p.ProcAddr()
	}
	return b.driver.Init(procAddr)
}

func (b *Bootstrapper) createInstance() error {
	cfg := b.cfg.Instance
	if cfg.DebugMode && len(cfg.ValidationLayers) > 0 {
		available, err := b.driver.InstanceLayers()
		if err != nil {
			return err
		}
		b.layers = availableLayers(available, cfg.ValidationLayers, b.log)
	}

	extensions := instanceExtensions(b.window.RequiredInstanceExtensions(), cfg)
	b.log.WithFields(logrus.Fields{
		"extensions": extensions,
		"layers":     b.layers,
	}).Debug("Creating instance")

	ici := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        applicationInfo(cfg.ApplicationName),
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(b.layers)),
		PpEnabledLayerNames:     safeStrings(b.layers),
	}

	instance, err := b.driver.CreateInstance(&ici)
	if err != nil {
		return err
	}
	b.instance = instance
	return nil
}

func (b *Bootstrapper) destroyInstance() {
	if b.instance != nil {
		b.driver.DestroyInstance(b.instance)
		b.instance = nil
	}
}

func (b *Bootstrapper) createDebugCallback() error {
	flags := debugReportFlags(b.cfg.Instance.DebugReport)
	callback, err := b.driver.CreateDebugCallback(b.instance, flags, debugReporter(b.log))
	if err != nil {
		return err
	}
	b.debugCallback = callback
	return nil
}

func (b *Bootstrapper) destroyDebugCallback() {
	if b.debugCallback != nil {
		b.driver.DestroyDebugCallback(b.instance, b.debugCallback)
		b.debugCallback = nil
	}
}

func (b *Bootstrapper) createSurface() error {
	surface, err := b.window.CreateSurface(b.instance)
	if err != nil {
		return err
	}
	b.surface = surface
	return nil
}

func (b *Bootstrapper) destroySurface() {
	if b.surface != nil {
		b.driver.DestroySurface(b.instance, b.surface)
		b.surface = nil
	}
}

func (b *Bootstrapper) selectAdapter() error {
	adapters, err := b.driver.EnumerateAdapters(b.instance)
	if err != nil {
		return err
	}

	selector := NewSelector(b.driver, b.cfg.Renderer.DeviceExtensions, b.log)
	best, candidates, err := selector.Select(adapters, b.surface)
	b.candidates = candidates
	if err != nil {
		return err
	}
	b.adapter = best

	graphics, _ := best.Families.Graphics()
	present, _ := best.Families.Present()
	b.log.WithFields(logrus.Fields{
		"adapter":  best.Properties.Name,
		"score":    best.Score,
		"graphics": graphics,
		"present":  present,
	}).Info("Adapter selected")
	return nil
}

func (b *Bootstrapper) createDevice() error {
	device, err := NewDevice(b.driver, b.adapter.Adapter, b.adapter.Families, b.cfg.Renderer.DeviceExtensions, b.layers)
	if err != nil {
		return err
	}
	b.device = device
	return nil
}

func (b *Bootstrapper) destroyDevice() {
	b.device.Release()
	b.device = nil
}

func (b *Bootstrapper) createSwapchain(window FramebufferSizer, support SurfaceSupport) error {
	swapchain, err := NewSwapchain(b.driver, b.device, b.surface, support, window)
	if err != nil {
		return err
	}
	b.swapchain = swapchain

	extent := swapchain.Extent()
	b.log.WithFields(logrus.Fields{
		"width":  extent.Width,
		"height": extent.Height,
		"images": len(swapchain.Elements()),
		"mode":   swapchain.PresentMode(),
	}).Debug("Swapchain created")
	return nil
}

func (b *Bootstrapper) destroySwapchain() {
	b.swapchain.Release()
	b.swapchain = nil
}

func (b *Bootstrapper) createPipeline() error {
	pipeline, err := NewPipeline(b.driver, b.device.Handle(), b.swapchain.Format().Format, b.swapchain.Extent(), b.shaders, PipelineConfig{
		VertexShader:   b.cfg.Renderer.VertexShader,
		FragmentShader: b.cfg.Renderer.FragmentShader,
		DepthRange:     b.cfg.Pipeline.DepthRange,
	})
	if err != nil {
		return err
	}
	b.pipeline = pipeline
	return nil
}

func (b *Bootstrapper) destroyPipeline() {
	b.pipeline.Release()
	b.pipeline = nil
}

func (b *Bootstrapper) createFramebuffers() error {
	return b.swapchain.CreateFramebuffers(b.pipeline.RenderPass())
}

func (b *Bootstrapper) destroyFramebuffers() {
	b.swapchain.DestroyFramebuffers()
}

func (b *Bootstrapper) createCommandPool() error {
	graphics, _ := b.device.Families().Graphics()
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: graphics,
	}

	pool, err := b.driver.CreateCommandPool(b.device.Handle(), &cpci)
	if err != nil {
		return err
	}
	b.commandPool = pool
	return nil
}

func (b *Bootstrapper) destroyCommandPool() {
	if b.commandPool != nil {
		b.driver.DestroyCommandPool(b.device.Handle(), b.commandPool)
		b.commandPool = nil
	}
}

func (b *Bootstrapper) allocateCommandBuffers() error {
	return b.swapchain.AllocateCommandBuffers(b.commandPool)
}

func (b *Bootstrapper) freeCommandBuffers() {
	b.swapchain.FreeCommandBuffers()
}

// Instance returns the vulkan instance.
func (b *Bootstrapper) Instance() vk.Instance {
	return b.instance
}

// Surface returns the window surface.
func (b *Bootstrapper) Surface() vk.Surface {
	return b.surface
}

// Adapter returns the selected adapter.
func (b *Bootstrapper) Adapter() Candidate {
	return b.adapter
}

// Candidates returns every adapter evaluated during selection.
func (b *Bootstrapper) Candidates() []Candidate {
	return b.candidates
}

// Device returns the logical device, nil before Initialise.
func (b *Bootstrapper) Device() *Device {
	return b.device
}

// Swapchain returns the current swapchain.
func (b *Bootstrapper) Swapchain() *Swapchain {
	return b.swapchain
}

// Pipeline returns the current graphics pipeline.
func (b *Bootstrapper) Pipeline() *Pipeline {
	return b.pipeline
}

// CommandPool returns the pool the per image command buffers come from.
func (b *Bootstrapper) CommandPool() vk.CommandPool {
	return b.commandPool
}
