// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader provides compiled shader bytecode from the places
// it ships in: a directory, a packr box or a kar archive.
package shader

import (
	"io"
	"os"
	"path/filepath"

	"github.com/devblok/vkboot/core"
	"github.com/devblok/vkboot/utility/kar"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
)

// Source returns bytecode by name. Names use forward slashes.
type Source interface {
	Bytes(name string) ([]byte, error)
}

// Dir reads shaders from a directory on disk.
type Dir string

// Bytes implements Source
func (d Dir) Bytes(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return data, nil
}

// Box reads shaders from a packr box, so they can be embedded in the binary.
type Box struct {
	box packr.Box
}

// NewBox wraps box.
func NewBox(box packr.Box) Box {
	return Box{box: box}
}

// Bytes implements Source
func (b Box) Bytes(name string) ([]byte, error) {
	data, err := b.box.Find(name)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return data, nil
}

// Archive reads shaders from a memory mapped kar archive.
type Archive struct {
	archive *kar.Archive
}

// OpenArchive maps the kar archive at path.
func OpenArchive(path string) (*Archive, error) {
	ar, err := kar.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "archive %s", path)
	}
	return &Archive{archive: ar}, nil
}

// Bytes implements Source
func (a *Archive) Bytes(name string) ([]byte, error) {
	data, err := a.archive.ReadAll(name)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return data, nil
}

// Close unmaps the archive.
func (a *Archive) Close() error {
	return a.archive.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the source the renderer configuration points at: the archive
// when one is set, the shader directory otherwise. The closer must be
// called once the shaders are no longer needed.
func Open(cfg core.RendererConfiguration) (Source, io.Closer, error) {
	if cfg.ShaderArchive != "" {
		ar, err := OpenArchive(cfg.ShaderArchive)
		if err != nil {
			return nil, nil, err
		}
		return ar, ar, nil
	}
	return Dir(cfg.ShaderDirectory), nopCloser{}, nil
}
