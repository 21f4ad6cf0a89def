// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
)

// ShaderSource provides precompiled shader bytecode by name.
type ShaderSource interface {
	Bytes(name string) ([]byte, error)
}

// PipelineConfig names the shaders and fixed values of the pipeline.
type PipelineConfig struct {
	VertexShader   string
	FragmentShader string

	// DepthRange is the viewport min and max depth.
	DepthRange glm.Vec2
}

// Pipeline owns the render pass and graphics pipeline drawn into swapchain images.
type Pipeline struct {
	driver Driver
	device vk.Device

	renderPass     vk.RenderPass
	vertexShader   vk.ShaderModule
	fragmentShader vk.ShaderModule
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
}

// NewPipeline builds the render pass for format and the graphics pipeline
// drawing into extent. If any step fails, everything it built is destroyed.
func NewPipeline(drv Driver, device vk.Device, format vk.Format, extent vk.Extent2D, shaders ShaderSource, cfg PipelineConfig) (*Pipeline, error) {
	p := &Pipeline{
		driver: drv,
		device: device,
	}

	steps := []step{
		{"render pass", func() error { return p.createRenderPass(format) }},
		{"vertex shader", func() (err error) {
			p.vertexShader, err = p.loadShader(shaders, cfg.VertexShader)
			return err
		}},
		{"fragment shader", func() (err error) {
			p.fragmentShader, err = p.loadShader(shaders, cfg.FragmentShader)
			return err
		}},
		{"pipeline layout", p.createPipelineLayout},
		{"graphics pipeline", func() error { return p.createPipeline(extent, cfg.DepthRange) }},
	}
	if err := runSteps(steps, nil); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) createRenderPass(format vk.Format) error {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	renderPass, err := p.driver.CreateRenderPass(p.device, &rpci)
	if err != nil {
		return err
	}
	p.renderPass = renderPass
	return nil
}

func (p *Pipeline) loadShader(shaders ShaderSource, name string) (vk.ShaderModule, error) {
	code, err := shaders.Bytes(name)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrShaderBytecode)
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}
	module, err := p.driver.CreateShaderModule(p.device, &smci)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return module, nil
}

func (p *Pipeline) createPipelineLayout() error {
	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	pipelineLayout, err := p.driver.CreatePipelineLayout(p.device, &plci)
	if err != nil {
		return err
	}
	p.pipelineLayout = pipelineLayout
	return nil
}

func (p *Pipeline) createPipeline(extent vk.Extent2D, depthRange glm.Vec2) error {
	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: p.vertexShader,
		PName:  safeString("main"),
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: p.fragmentShader,
		PName:  safeString("main"),
	}}

	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: depthRange.X(),
		MaxDepth: depthRange.Y(),
	}

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{
			X: 0,
			Y: 0,
		},
		Extent: extent,
	}

	gpci := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: vk.ColorComponentFlags(
					vk.ColorComponentRBit | vk.ColorComponentGBit |
						vk.ColorComponentBBit | vk.ColorComponentABit),
				BlendEnable: vk.False,
			}},
		},
		Layout:     p.pipelineLayout,
		RenderPass: p.renderPass,
		Subpass:    0,
	}

	pipeline, err := p.driver.CreateGraphicsPipeline(p.device, &gpci)
	if err != nil {
		return err
	}
	p.pipeline = pipeline
	return nil
}

// Release destroys the pipeline, its layout, the shader modules and the
// render pass. Safe to call on a partially built or released pipeline.
func (p *Pipeline) Release() {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		p.driver.DestroyPipeline(p.device, p.pipeline)
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		p.driver.DestroyPipelineLayout(p.device, p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.fragmentShader != nil {
		p.driver.DestroyShaderModule(p.device, p.fragmentShader)
		p.fragmentShader = nil
	}
	if p.vertexShader != nil {
		p.driver.DestroyShaderModule(p.device, p.vertexShader)
		p.vertexShader = nil
	}
	if p.renderPass != nil {
		p.driver.DestroyRenderPass(p.device, p.renderPass)
		p.renderPass = nil
	}
}

// RenderPass returns the render pass the pipeline is bound to.
func (p *Pipeline) RenderPass() vk.RenderPass {
	return p.renderPass
}

// Layout returns the pipeline layout.
func (p *Pipeline) Layout() vk.PipelineLayout {
	return p.pipelineLayout
}

// Handle returns the graphics pipeline handle.
func (p *Pipeline) Handle() vk.Pipeline {
	return p.pipeline
}
