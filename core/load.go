// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io"
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Environment variables that override the configuration
const (
	EnvDebug   = "KORU_DEBUG"
	EnvWidth   = "KORU_WIDTH"
	EnvHeight  = "KORU_HEIGHT"
	EnvShaders = "KORU_SHADERS"
	EnvArchive = "KORU_ARCHIVE"
)

// LoadConfiguration reads a TOML configuration file on top of the defaults.
// Keys that are not part of Configuration are rejected.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := cfg.Decode(f); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Decode overlays TOML read from r on the configuration.
func (c *Configuration) Decode(r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// ApplyEnvironment overrides configuration values from the process environment.
// Dotenv files, if given, provide values for variables the process does not set.
func (c *Configuration) ApplyEnvironment(files ...string) error {
	fileVars := map[string]string{}
	if len(files) > 0 {
		vars, err := godotenv.Read(files...)
		if err != nil {
			return errors.Wrap(err, "godotenv.Read()")
		}
		fileVars = vars
	}
	lookup := func(key string) string {
		return envy.Get(key, fileVars[key])
	}

	if v := lookup(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDebug)
		}
		c.Instance.DebugMode = debug
	}
	if v := lookup(EnvWidth); v != "" {
		width, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvWidth)
		}
		c.Renderer.ScreenWidth = uint32(width)
	}
	if v := lookup(EnvHeight); v != "" {
		height, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvHeight)
		}
		c.Renderer.ScreenHeight = uint32(height)
	}
	if v := lookup(EnvShaders); v != "" {
		c.Renderer.ShaderDirectory = v
	}
	if v := lookup(EnvArchive); v != "" {
		c.Renderer.ShaderArchive = v
	}
	return nil
}
