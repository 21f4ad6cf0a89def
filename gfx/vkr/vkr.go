// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements the vulkan renderer bootstrap: adapter selection,
// logical device creation, swapchain and pipeline lifecycle.
package vkr

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// package errors
var (
	ErrNoAdapters        = errors.New("vkr: no vulkan capable adapters found")
	ErrNoSuitableAdapter = errors.New("vkr: no adapter satisfies the renderer requirements")
	ErrZeroExtent        = errors.New("vkr: surface has a zero sized extent")
	ErrShaderBytecode    = errors.New("vkr: shader bytecode is not a sequence of 32-bit words")
)

// Error is a failed native API call. Result holds the status the call returned.
type Error struct {
	Op     string
	Result vk.Result
	Err    error
}

func newError(op string, result vk.Result) *Error {
	err := vk.Error(result)
	if err == nil {
		err = fmt.Errorf("vulkan result %d", result)
	}
	return &Error{
		Op:     op,
		Result: result,
		Err:    err,
	}
}

func (e *Error) Error() string {
	return e.Op + "(): " + e.Err.Error()
}

// Unwrap returns the underlying status error.
func (e *Error) Unwrap() error {
	return e.Err
}

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func safeString(s string) string {
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}
