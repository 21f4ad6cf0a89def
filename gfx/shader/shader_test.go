// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/packr"

	"github.com/devblok/vkboot/core"
	"github.com/devblok/vkboot/gfx/shader"
	"github.com/devblok/vkboot/utility/kar"
)

var vertex = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

func TestDir(t *testing.T) {
	c := qt.New(t)
	src := shader.Dir("testdata")

	data, err := src.Bytes("triangle.vert.spv")
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, vertex)

	_, err = src.Bytes("missing.spv")
	c.Assert(err, qt.ErrorMatches, "shader missing.spv: .*")
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)
}

func TestBox(t *testing.T) {
	c := qt.New(t)
	src := shader.NewBox(packr.NewBox("./testdata"))

	data, err := src.Bytes("triangle.frag.spv")
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.HasLen, 12)

	_, err = src.Bytes("missing.spv")
	c.Assert(err, qt.ErrorMatches, "shader missing.spv: .*")
}

func writeArchive(c *qt.C) string {
	builder := kar.NewBuilder(kar.Header{Author: "test", Version: 1})
	c.Assert(builder.Add("triangle.vert.spv", bytes.NewReader(vertex)), qt.IsNil)

	path := filepath.Join(c.TempDir(), "shaders.kar")
	f, err := os.Create(path)
	c.Assert(err, qt.IsNil)
	_, err = builder.WriteTo(f)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)
	return path
}

func TestArchive(t *testing.T) {
	c := qt.New(t)
	ar, err := shader.OpenArchive(writeArchive(c))
	c.Assert(err, qt.IsNil)
	defer ar.Close()

	data, err := ar.Bytes("triangle.vert.spv")
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, vertex)

	_, err = ar.Bytes("triangle.frag.spv")
	c.Assert(err, qt.ErrorIs, kar.ErrNotFound)
}

func TestOpen(t *testing.T) {
	c := qt.New(t)
	cfg := core.DefaultConfiguration().Renderer

	cfg.ShaderDirectory = "testdata"
	src, closer, err := shader.Open(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(src, qt.Equals, shader.Source(shader.Dir("testdata")))
	c.Assert(closer.Close(), qt.IsNil)

	cfg.ShaderArchive = writeArchive(c)
	src, closer, err = shader.Open(cfg)
	c.Assert(err, qt.IsNil)
	_, err = src.Bytes(cfg.VertexShader)
	c.Assert(err, qt.IsNil)
	c.Assert(closer.Close(), qt.IsNil)

	cfg.ShaderArchive = filepath.Join(c.TempDir(), "missing.kar")
	_, _, err = shader.Open(cfg)
	c.Assert(err, qt.ErrorMatches, "archive .*missing.kar: .*")
}
