// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:generate glslangValidator -V -o ../../shaders/triangle.vert.spv ../../shaders/triangle.vert
//go:generate glslangValidator -V -o ../../shaders/triangle.frag.spv ../../shaders/triangle.frag

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkboot/core"
	"github.com/devblok/vkboot/gfx"
	"github.com/devblok/vkboot/gfx/shader"
	"github.com/devblok/vkboot/gfx/vkr"
	"github.com/devblok/vkboot/platform/glfwwin"
	"github.com/devblok/vkboot/platform/sdlwin"
)

func init() {
	runtime.LockOSThread()
}

var (
	configFile  = flag.String("config", "", "TOML configuration file")
	envFile     = flag.String("env", "", "Dotenv file with configuration overrides")
	backendName = flag.String("backend", "vulkan", "Rendering backend")
	windowName  = flag.String("window", "sdl", "Window system to use, sdl or glfw")
	embedded    = flag.Bool("box", false, "Read shaders embedded in the binary")
	debug       = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

// appWindow is what the event loop needs on top of a renderer window.
type appWindow interface {
	vkr.Window
	vkr.ProcAddrProvider
	PollEvents() (quit, resized bool)
	Release()
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := profiled(run); err != nil {
		log.WithError(err).Error("Exiting")
		os.Exit(1)
	}
}

// profiled runs fn with the profiles requested on the command line.
func profiled(fn func() error) error {
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	if err := fn(); err != nil {
		return err
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		return pprof.WriteHeapProfile(f)
	}
	return nil
}

func loadConfiguration() (core.Configuration, error) {
	cfg := core.DefaultConfiguration()
	if *configFile != "" {
		var err error
		if cfg, err = core.LoadConfiguration(*configFile); err != nil {
			return cfg, err
		}
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	if err := cfg.ApplyEnvironment(envFiles...); err != nil {
		return cfg, err
	}
	if *debug {
		cfg.Instance.DebugMode = true
	}
	return cfg, nil
}

func openWindow(cfg core.RendererConfiguration) (appWindow, func(), error) {
	switch *windowName {
	case "sdl":
		quit, err := sdlwin.Init()
		if err != nil {
			return nil, nil, errors.Wrap(err, "sdl")
		}
		w, err := sdlwin.New("Koru3D", cfg.ScreenWidth, cfg.ScreenHeight)
		if err != nil {
			quit()
			return nil, nil, errors.Wrap(err, "sdl")
		}
		return w, func() { w.Release(); quit() }, nil
	case "glfw":
		quit, err := glfwwin.Init()
		if err != nil {
			return nil, nil, errors.Wrap(err, "glfw")
		}
		w, err := glfwwin.New("Koru3D", cfg.ScreenWidth, cfg.ScreenHeight)
		if err != nil {
			quit()
			return nil, nil, errors.Wrap(err, "glfw")
		}
		return w, func() { w.Release(); quit() }, nil
	}
	return nil, nil, errors.Errorf("unknown window system %q", *windowName)
}

func openShaders(cfg core.RendererConfiguration) (shader.Source, func(), error) {
	if *embedded {
		return shader.NewBox(packr.NewBox("../../shaders")), func() {}, nil
	}
	src, closer, err := shader.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("Closing shader source")
		}
	}, nil
}

func run() error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	kind, err := gfx.ParseKind(*backendName)
	if err != nil {
		return err
	}

	window, closeWindow, err := openWindow(cfg.Renderer)
	if err != nil {
		return err
	}
	defer closeWindow()

	shaders, closeShaders, err := openShaders(cfg.Renderer)
	if err != nil {
		return err
	}
	defer closeShaders()

	backend, err := gfx.Open(kind, map[gfx.Kind]gfx.Factory{
		gfx.Vulkan: func() (gfx.Backend, error) {
			return vkr.New(vkr.NewVulkanDriver(), window, shaders, cfg, log.StandardLogger()), nil
		},
	})
	if err != nil {
		return err
	}
	defer backend.Release()

	if err := backend.Initialise(); err != nil {
		return err
	}
	log.WithField("backend", backend.Kind()).Info("Renderer ready")

	return eventLoop(window, backend, core.NewTime(cfg.Time))
}

func eventLoop(window appWindow, backend gfx.Backend, timeService *core.Time) error {
	defer timeService.Stop()

	var pending bool
	for range timeService.EventTicker().C {
		quit, resized := window.PollEvents()
		if quit {
			log.Info("Event loop exited")
			return nil
		}
		if !resized && !pending {
			continue
		}

		width, height := window.FramebufferSize()
		err := backend.Resize(width, height)
		switch {
		case errors.Is(err, vkr.ErrZeroExtent):
			if !pending {
				log.Debug("Window has no area, deferring swapchain recreation")
			}
			pending = true
		case err != nil:
			return errors.Wrap(err, "resize")
		default:
			pending = false
			log.WithFields(log.Fields{
				"width":  width,
				"height": height,
			}).Debug("Swapchain recreated")
		}
	}
	return nil
}
