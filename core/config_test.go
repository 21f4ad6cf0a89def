// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/pelletier/go-toml/v2"

	"github.com/devblok/vkboot/core"
)

func TestDefaultConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg := core.DefaultConfiguration()
	c.Assert(cfg.Instance.DebugMode, qt.Equals, core.DebugBuild)
	c.Assert(cfg.Instance.ValidationLayers, qt.DeepEquals, []string{"VK_LAYER_KHRONOS_validation"})
	c.Assert(cfg.Renderer.DeviceExtensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(cfg.Renderer.VertexShader, qt.Equals, "triangle.vert.spv")
	c.Assert(cfg.Renderer.FragmentShader, qt.Equals, "triangle.frag.spv")
	c.Assert(cfg.Pipeline.DepthRange, qt.Equals, glm.Vec2{0, 1})
	c.Assert(cfg.Instance.DebugReport.Debug, qt.IsFalse)
}

func TestDecode(t *testing.T) {
	c := qt.New(t)
	cfg := core.DefaultConfiguration()
	err := cfg.Decode(strings.NewReader(`
[instance]
debug_mode = true
validation_layers = ["VK_LAYER_LUNARG_api_dump"]

[instance.debug_report]
information = false

[renderer]
screen_width = 1280
screen_height = 720

[pipeline]
depth_range = [0.25, 0.75]
`))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Instance.DebugMode, qt.IsTrue)
	c.Assert(cfg.Instance.ValidationLayers, qt.DeepEquals, []string{"VK_LAYER_LUNARG_api_dump"})
	c.Assert(cfg.Instance.DebugReport.Information, qt.IsFalse)
	c.Assert(cfg.Instance.DebugReport.Error, qt.IsTrue)
	c.Assert(cfg.Renderer.ScreenWidth, qt.Equals, uint32(1280))
	c.Assert(cfg.Renderer.ScreenHeight, qt.Equals, uint32(720))
	c.Assert(cfg.Renderer.DeviceExtensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(cfg.Pipeline.DepthRange, qt.Equals, glm.Vec2{0.25, 0.75})
}

func TestDecodeUnknownKey(t *testing.T) {
	c := qt.New(t)
	cfg := core.DefaultConfiguration()
	err := cfg.Decode(strings.NewReader("[renderer]\nswapchain_size = 3\n"))
	var strict *toml.StrictMissingError
	c.Assert(err, qt.ErrorAs, &strict)
	c.Assert(strict.String(), qt.Contains, "swapchain_size")
}

func TestLoadConfiguration(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "koru.toml")
	c.Assert(os.WriteFile(path, []byte("[time]\nevent_poll_delay = 50\n"), 0o644), qt.IsNil)

	cfg, err := core.LoadConfiguration(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Time.EventPollDelay, qt.Equals, 50)
	c.Assert(cfg.Renderer.ScreenWidth, qt.Equals, uint32(800))

	_, err = core.LoadConfiguration(filepath.Join(c.TempDir(), "missing.toml"))
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)

	bad := filepath.Join(c.TempDir(), "bad.toml")
	c.Assert(os.WriteFile(bad, []byte("[bogus]\nkey = 1\n"), 0o644), qt.IsNil)
	_, err = core.LoadConfiguration(bad)
	c.Assert(err, qt.ErrorMatches, "config .*bad.toml: .*")
}

func TestApplyEnvironment(t *testing.T) {
	envy.Temp(func() {
		c := qt.New(t)
		envy.Set(core.EnvDebug, "false")
		envy.Set(core.EnvWidth, "1920")
		envy.Set(core.EnvShaders, "/opt/koru/shaders")

		cfg := core.DefaultConfiguration()
		cfg.Instance.DebugMode = true
		c.Assert(cfg.ApplyEnvironment(), qt.IsNil)
		c.Assert(cfg.Instance.DebugMode, qt.IsFalse)
		c.Assert(cfg.Renderer.ScreenWidth, qt.Equals, uint32(1920))
		c.Assert(cfg.Renderer.ScreenHeight, qt.Equals, uint32(600))
		c.Assert(cfg.Renderer.ShaderDirectory, qt.Equals, "/opt/koru/shaders")
	})
}

func TestApplyEnvironmentDotenv(t *testing.T) {
	envy.Temp(func() {
		c := qt.New(t)
		envy.Set(core.EnvWidth, "1024")

		path := filepath.Join(c.TempDir(), ".env")
		c.Assert(os.WriteFile(path, []byte("KORU_WIDTH=640\nKORU_HEIGHT=480\nKORU_ARCHIVE=shaders.kar\n"), 0o644), qt.IsNil)

		cfg := core.DefaultConfiguration()
		c.Assert(cfg.ApplyEnvironment(path), qt.IsNil)
		c.Assert(cfg.Renderer.ScreenWidth, qt.Equals, uint32(1024))
		c.Assert(cfg.Renderer.ScreenHeight, qt.Equals, uint32(480))
		c.Assert(cfg.Renderer.ShaderArchive, qt.Equals, "shaders.kar")
	})
}

func TestApplyEnvironmentInvalid(t *testing.T) {
	envy.Temp(func() {
		c := qt.New(t)
		envy.Set(core.EnvHeight, "tall")

		cfg := core.DefaultConfiguration()
		c.Assert(cfg.ApplyEnvironment(), qt.ErrorMatches, "KORU_HEIGHT: .*")
	})
}
