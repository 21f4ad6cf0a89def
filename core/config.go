// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration     `toml:"time"`
	Instance InstanceConfiguration `toml:"instance"`
	Renderer RendererConfiguration `toml:"renderer"`
	Pipeline PipelineConfiguration `toml:"pipeline"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the delay between window event polls in milliseconds.
	EventPollDelay int `toml:"event_poll_delay"`
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	ApplicationName string `toml:"application_name"`

	// DebugMode enables validation layers and the debug report callback.
	DebugMode bool `toml:"debug_mode"`

	// ValidationLayers are only requested when DebugMode is set.
	ValidationLayers []string `toml:"validation_layers"`

	// Extensions are requested on top of what the window requires.
	Extensions []string `toml:"extensions"`

	DebugReport DebugReportConfiguration `toml:"debug_report"`
}

// DebugReportConfiguration selects which validation messages are reported
type DebugReportConfiguration struct {
	Information        bool `toml:"information"`
	Warning            bool `toml:"warning"`
	PerformanceWarning bool `toml:"performance_warning"`
	Error              bool `toml:"error"`
	Debug              bool `toml:"debug"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	DeviceExtensions []string `toml:"device_extensions"`

	ScreenWidth  uint32 `toml:"screen_width"`
	ScreenHeight uint32 `toml:"screen_height"`

	// ShaderDirectory is where compiled shaders are read from when
	// ShaderArchive is empty.
	ShaderDirectory string `toml:"shader_directory"`
	ShaderArchive   string `toml:"shader_archive"`

	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
}

// PipelineConfiguration is used to configure the fixed function pipeline
type PipelineConfiguration struct {
	// DepthRange is the viewport min and max depth.
	DepthRange glm.Vec2 `toml:"depth_range"`
}

// DefaultConfiguration returns the configuration used when nothing else
// is provided. DebugMode follows the build mode.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			EventPollDelay: 16,
		},
		Instance: InstanceConfiguration{
			ApplicationName: "Koru3D",
			DebugMode:       DebugBuild,
			ValidationLayers: []string{
				"VK_LAYER_KHRONOS_validation",
			},
			DebugReport: DebugReportConfiguration{
				Information:        true,
				Warning:            true,
				PerformanceWarning: true,
				Error:              true,
			},
		},
		Renderer: RendererConfiguration{
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
			ScreenWidth:     800,
			ScreenHeight:    600,
			ShaderDirectory: "shaders",
			VertexShader:    "triangle.vert.spv",
			FragmentShader:  "triangle.frag.spv",
		},
		Pipeline: PipelineConfiguration{
			DepthRange: glm.Vec2{0, 1},
		},
	}
}
